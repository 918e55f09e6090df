// Package render provides output renderers for canvaspipe.
// Page renderers (Markdown, JSON, PDF) implement core.Renderer and work on
// the canonical Markdown produced by the normalizer. Office-hours renderers
// (text, JSON, iCalendar) work on officehours.ParsedOfficeHours.
package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/canvaspipe/core"
)

// MarkdownRenderer writes the Markdown body behind a YAML header carrying
// the page metadata.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

type markdownHeader struct {
	Title     string `yaml:"title,omitempty"`
	CourseID  string `yaml:"courseId,omitempty"`
	PageURL   string `yaml:"pageUrl,omitempty"`
	UpdatedAt string `yaml:"updatedAt,omitempty"`
	FetchedAt string `yaml:"fetchedAt,omitempty"`
}

// Render returns front matter followed by the Markdown.
func (r *MarkdownRenderer) Render(markdown string, meta core.PageMetadata) ([]byte, error) {
	header, err := yaml.Marshal(markdownHeader{
		Title:     meta.Title,
		CourseID:  meta.CourseID,
		PageURL:   meta.PageURL,
		UpdatedAt: meta.UpdatedAt,
		FetchedAt: meta.FetchedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(markdown)
	return buf.Bytes(), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
