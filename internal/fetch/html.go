package fetch

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractText strips an HTML document down to its visible text:
// script, style and noscript subtrees are dropped, block elements
// become line breaks, and runs of whitespace collapse. The result is
// truncated to maxLen bytes (0 means no cap).
func ExtractText(htmlSrc string, maxLen int) string {
	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		// Treat unparseable input as already-plain text.
		return truncate(collapseWhitespace(htmlSrc), maxLen)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "br", "p", "div", "tr", "li", "h1", "h2", "h3", "h4", "h5", "h6", "table", "section":
				b.WriteByte('\n')
			case "td", "th":
				b.WriteByte(' ')
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return truncate(collapseWhitespace(b.String()), maxLen)
}

// collapseWhitespace trims every line and drops empty ones.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func truncate(s string, maxLen int) string {
	if maxLen > 0 && len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
