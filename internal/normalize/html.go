package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	trailingSpace  = regexp.MustCompile(`[ \t\x{00a0}]+\n`)
)

// HTMLToText flattens markup into plain text. List items become bulleted lines,
// table rows become lines with tab-separated cells, and entities are decoded.
// Input without markup is only tidied.
func HTMLToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return Tidy(s)
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return Tidy(html.UnescapeString(s))
	}

	var sb strings.Builder
	writeText(doc, &sb)
	return Tidy(sb.String())
}

func writeText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" && n.Parent != nil && layoutOnly(n.Parent.Data) {
			return
		}
		sb.WriteString(strings.ReplaceAll(n.Data, "\u00a0", " "))
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "head":
			return
		case "br":
			sb.WriteString("\n")
			return
		case "li":
			sb.WriteString("\n• ")
		case "tr":
			sb.WriteString("\n")
		case "td", "th":
			if previousCell(n) {
				sb.WriteString("\t")
			}
		case "p", "div", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre":
			sb.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, sb)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "ul", "ol", "table", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre":
			sb.WriteString("\n")
		}
	}
}

// layoutOnly elements never carry meaningful whitespace between their children
func layoutOnly(tag string) bool {
	switch tag {
	case "ul", "ol", "table", "thead", "tbody", "tfoot", "tr":
		return true
	}
	return false
}

// previousCell reports whether a td/th has an earlier cell in the same row
func previousCell(n *html.Node) bool {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && (s.Data == "td" || s.Data == "th") {
			return true
		}
	}
	return false
}

// Tidy normalizes line endings, strips trailing whitespace on every line,
// collapses runs of three or more newlines to two and trims the result.
func Tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = trailingSpace.ReplaceAllString(s+"\n", "\n")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
