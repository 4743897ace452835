package render

import (
	"strings"

	"golang.org/x/net/html"
)

// flattenInline reduces text that may still carry markup fragments or
// entities to plain text. Extracted block text is usually clean, but
// table cells and scanned fragments occasionally keep inline tags.
func flattenInline(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(b.String()), " ")
}
