package llm

import "unicode/utf8"

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable maps model identifiers to their pricing. Local models cost
// nothing and are absent.
var priceTable = map[string]modelPricing{
	"claude-sonnet-4-5-20250929": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku-4-5-20251001":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},

	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},

	"openai/gpt-4o-mini":          {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"anthropic/claude-sonnet-4.5": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

// EstimateTokens approximates a token count at one token per four
// characters. Page markup is mostly ASCII, so characters are runes.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n > 0 && n < 4 {
		return 1
	}
	return n / 4
}

// Usage returns the token counts of a response, estimating either side the
// provider did not report.
func Usage(req CompletionRequest, resp *CompletionResponse) (input, output int) {
	input, output = resp.InputTokens, resp.OutputTokens
	if input == 0 {
		input = EstimateTokens(req.Prompt())
	}
	if output == 0 {
		output = EstimateTokens(resp.Content)
	}
	return input, output
}
