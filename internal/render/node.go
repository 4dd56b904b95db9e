// Package render builds the popup's display fragments as html.Node trees.
// Nothing here touches a live page: the web UI swaps the serialized output
// into its containers.
package render

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Stable element ids the web UI and tests address.
const (
	IDSuggestions         = "suggestions-content"
	IDConversationHistory = "conversation-history"
	IDPromptInput         = "input-prompt"
	IDPromptSubmit        = "prompt-submit-btn"
	IDHTMLOutput          = "html-output"
	IDCSSOutput           = "css-output"

	// AttrCopyTarget names the element whose text a copy control copies.
	AttrCopyTarget = "data-copy-target"
)

var (
	policy    = bluemonday.UGCPolicy()
	idSeq     atomic.Uint64
	divParent = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
)

// newID returns an element id unique for the life of the process, so copy
// controls from separate renders never point at each other's code.
func newID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idSeq.Add(1))
}

// el creates an element; attrs alternate key, value.
func el(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func add(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

// trusted parses a markup fragment after sanitizing it. It is the only way
// markup strings enter a tree.
func trusted(fragment string) []*html.Node {
	nodes, err := html.ParseFragment(strings.NewReader(policy.Sanitize(fragment)), divParent)
	if err != nil {
		return []*html.Node{text(fragment)}
	}
	return nodes
}

// Group wraps several fragments in one container, in order.
func Group(nodes ...*html.Node) *html.Node {
	return add(el("div", "class", "stack"), nodes...)
}

// HTML serializes n.
func HTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}
