// Package normalize converts Canvas page HTML into Markdown, the canonical
// format written to the content store and fed to every renderer.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/gaurav-prasanna/canvaspipe/core/extract"
)

// ErrTransform matches every *TransformError with errors.Is.
var ErrTransform = errors.New("content transformation failed")

// TransformError reports that a page could not be converted at all.
type TransformError struct {
	Msg string
	Err error
}

func (e *TransformError) Error() string {
	return "content transformation failed: " + e.Msg
}

func (e *TransformError) Unwrap() error { return e.Err }

func (e *TransformError) Is(target error) bool { return target == ErrTransform }

func transformError(err error) *TransformError {
	return &TransformError{Msg: err.Error(), Err: err}
}

// MarkdownNormalizer converts Canvas HTML to Markdown using html-to-markdown
// with Canvas-specific list and equation rules. Tables and struck-out
// text (rescheduled due dates) are kept.
type MarkdownNormalizer struct {
	extractor *extract.HTMLExtractor
}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{extractor: extract.New()}
}

// HTMLToMarkdown converts html with a fresh MarkdownNormalizer.
func HTMLToMarkdown(html string) (string, error) {
	return New().Transform(html)
}

// Transform strips scripts, converts the remaining HTML and post-processes
// the result. Every failure, including a panic inside the conversion
// library, comes back as a *TransformError.
func (n *MarkdownNormalizer) Transform(html string) (markdown string, err error) {
	defer func() {
		if r := recover(); r != nil {
			markdown = ""
			err = &TransformError{Msg: fmt.Sprint(r)}
		}
	}()

	cleaned, err := n.extractor.Extract(html)
	if err != nil {
		return "", transformError(err)
	}

	out, err := convertHTML(cleaned)
	if err != nil {
		return "", transformError(err)
	}
	return PostProcess(out), nil
}

// convertHTML runs a fresh converter per call so conversions stay
// independent. Tests swap it out.
var convertHTML = func(html string) (string, error) {
	return newConverter().ConvertString(html)
}

func newConverter() *converter.Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				// Lists are rendered as flat lines by renderList.
				commonmark.WithListEndComment(false),
			),
			table.NewTablePlugin(),
			strikethrough.NewStrikethroughPlugin(),
		),
	)
	registerCanvasRules(conv)
	return conv
}

var (
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
	// "- - item" and longer runs left behind by nested list markup.
	doubledListMarker = regexp.MustCompile(`(?m)^-(?:[ \t]+[*-])+[ \t]+`)
)

// PostProcess normalizes line endings, collapses runs of blank lines,
// removes doubled list markers and ends the document with exactly one
// newline. Applying it twice is the same as applying it once.
func PostProcess(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	md = strings.ReplaceAll(md, "\r", "\n")
	md = blankLineRuns.ReplaceAllString(md, "\n\n")
	md = doubledListMarker.ReplaceAllString(md, "- ")
	return strings.TrimSpace(md) + "\n"
}
