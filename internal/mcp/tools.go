package mcp

import "github.com/mark3labs/mcp-go/mcp"

var suggestDesignTool = mcp.NewTool("suggest_design",
	mcp.WithDescription("Capture a web page and return AI design suggestions: what needs improvement, common beginner issues, suggested HTML and CSS, and why the changes help."),
	mcp.WithString("url",
		mcp.Required(),
		mcp.Description("Absolute http or https URL of the page"),
	),
)

var askFollowUpTool = mcp.NewTool("ask_followup",
	mcp.WithDescription("Ask a follow-up question about the most recent suggest_design result."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to ask"),
	),
)
