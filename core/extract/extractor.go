// Package extract prepares Canvas page HTML for conversion.
// It parses the page body and removes executable content so that nothing
// from <script> elements can leak into stored Markdown.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// noiseSelector matches elements removed before conversion.
var noiseSelector = cascadia.MustCompile("script")

// HTMLExtractor strips script elements and returns the body fragment.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract returns the inner HTML of the document body with every <script>
// element (and its content) removed. The input string is not modified.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.FindMatcher(noiseSelector).Remove()

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return "", fmt.Errorf("no body element in parsed HTML")
	}

	result, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return result, nil
}

// Title returns the text of the first heading in html, or "".
// Canvas page bodies have no <title>, so the first heading stands in for it.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1, h2, h3").First().Text())
}
