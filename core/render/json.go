package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/canvaspipe/core"
)

// JSONRenderer produces structured JSON output from Markdown: metadata,
// plain text, heading-delimited sections and structure counts.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render converts Markdown and metadata into a core.PageJSON document.
func (r *JSONRenderer) Render(markdown string, meta core.PageMetadata) ([]byte, error) {
	headings := extractHeadings(markdown)

	page := core.PageJSON{
		Metadata: meta,
		Content: core.PageContent{
			Text:     stripMarkdown(markdown),
			Markdown: markdown,
			Sections: buildSections(markdown, headings),
		},
		Structure: core.PageStructure{
			Headings: headings,
			Links:    extractLinks(markdown),
			Tables:   countTables(markdown),
			Lists:    countLists(markdown),
			Math:     countMath(markdown),
		},
	}

	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

var (
	headingRegex  = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	linkRegex     = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	tableRowRegex = regexp.MustCompile(`(?m)^\|[-:| ]+\|$`)
	// Top-level items only; sub-bullets are indented.
	listItemRegex = regexp.MustCompile(`(?m)^(?:[-*+]|\d+\.)\s`)
	mathRegex     = regexp.MustCompile(`\$[^$\n]+\$`)
	emphasisRegex = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	imageRegex    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

func extractHeadings(md string) []core.Heading {
	matches := headingRegex.FindAllStringSubmatch(md, -1)
	headings := make([]core.Heading, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, core.Heading{
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
		})
	}
	return headings
}

func extractLinks(md string) []core.Link {
	md = imageRegex.ReplaceAllString(md, "")
	matches := linkRegex.FindAllStringSubmatch(md, -1)
	links := make([]core.Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, core.Link{Text: m[1], Href: m[2]})
	}
	return links
}

func buildSections(md string, headings []core.Heading) []core.Section {
	if len(headings) == 0 {
		return nil
	}

	sections := make([]core.Section, 0, len(headings))
	var current *core.Section
	var body []string
	flush := func() {
		if current != nil {
			current.Text = strings.TrimSpace(strings.Join(body, "\n"))
			sections = append(sections, *current)
		}
	}

	i := 0
	for _, line := range strings.Split(md, "\n") {
		if headingRegex.MatchString(line) && i < len(headings) {
			flush()
			current = &core.Section{Heading: headings[i].Text, Level: headings[i].Level}
			body = nil
			i++
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return sections
}

func countTables(md string) int {
	return len(tableRowRegex.FindAllString(md, -1))
}

func countLists(md string) int {
	return len(listItemRegex.FindAllString(md, -1))
}

// countMath counts inline $...$ equations recovered from LaTeX images.
func countMath(md string) int {
	return len(mathRegex.FindAllString(md, -1))
}

// stripMarkdown removes common Markdown formatting to produce plain text.
func stripMarkdown(md string) string {
	text := headingRegex.ReplaceAllString(md, "$2")
	text = imageRegex.ReplaceAllString(text, "$1")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
