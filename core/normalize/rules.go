package normalize

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/net/html"
)

// latexMarker prefixes the alt text of equation images produced by the
// Canvas rich-content editor.
const latexMarker = "LaTeX:"

// listIndent is prepended once per nesting level to sub-bullets.
const listIndent = "    "

func registerCanvasRules(conv *converter.Converter) {
	conv.Register.RendererFor("ul", converter.TagTypeBlock, renderList, converter.PriorityEarly)
	conv.Register.RendererFor("ol", converter.TagTypeBlock, renderList, converter.PriorityEarly)
	conv.Register.RendererFor("img", converter.TagTypeInline, renderEquation, converter.PriorityEarly)
}

// renderEquation turns <img alt="LaTeX: x^2"> into inline math "$x^2$".
// Other images fall through to the standard image rule.
func renderEquation(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	alt, ok := attr(n, "alt")
	if !ok || !strings.HasPrefix(alt, latexMarker) {
		return converter.RenderTryNext
	}
	w.WriteString("$" + strings.TrimSpace(strings.TrimPrefix(alt, latexMarker)) + "$")
	return converter.RenderSuccess
}

// renderList writes every item as "- text" and flattens lists nested
// directly inside an item into sub-bullets indented beneath it. Ordered
// lists use the same marker.
func renderList(ctx converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	lines := listLines(ctx, n, 0)
	if len(lines) == 0 {
		return converter.RenderSuccess
	}
	w.WriteString("\n\n")
	w.WriteString(strings.Join(lines, "\n"))
	w.WriteString("\n\n")
	return converter.RenderSuccess
}

func listLines(ctx converter.Context, list *html.Node, depth int) []string {
	var lines []string
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}

		var text bytes.Buffer
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if isList(c) {
				nested = append(nested, c)
				continue
			}
			ctx.RenderNodes(ctx, &text, c)
		}

		lines = append(lines, strings.Repeat(listIndent, depth)+"- "+collapseSpace(text.String()))
		for _, sub := range nested {
			lines = append(lines, listLines(ctx, sub, depth+1)...)
		}
	}
	return lines
}

func isList(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol")
}

// collapseSpace folds block output (paragraphs, line breaks) onto one line.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
