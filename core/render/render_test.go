package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/canvaspipe/core"
)

const page = `## Day 3

Read [section 2.1](https://openstax.org/books/calculus/2-1) before class.

- Warm up
    - $x^2+y^2=1$
- Lecture

## Homework

| Problem | Due |
| --- | --- |
| 2.1 #4 | Friday |
`

var meta = core.PageMetadata{CourseID: "57795", PageURL: "day-3", Title: "Day 3"}

func TestMarkdownRenderer(t *testing.T) {
	out, err := NewMarkdownRenderer().Render(page, meta)
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "---\ntitle: Day 3\ncourseId: \"57795\"\npageUrl: day-3\n---\n\n"), s)
	assert.True(t, strings.HasSuffix(s, page))
	assert.Equal(t, ".md", NewMarkdownRenderer().Extension())
}

func TestJSONRenderer(t *testing.T) {
	out, err := NewJSONRenderer().Render(page, meta)
	require.NoError(t, err)

	var got core.PageJSON
	require.NoError(t, json.Unmarshal(out, &got))

	assert.Equal(t, meta, got.Metadata)
	assert.Equal(t, []core.Heading{{Level: 2, Text: "Day 3"}, {Level: 2, Text: "Homework"}}, got.Structure.Headings)
	assert.Equal(t, []core.Link{{Text: "section 2.1", Href: "https://openstax.org/books/calculus/2-1"}}, got.Structure.Links)
	assert.Equal(t, 1, got.Structure.Tables)
	assert.Equal(t, 2, got.Structure.Lists)
	assert.Equal(t, 1, got.Structure.Math)

	require.Len(t, got.Content.Sections, 2)
	assert.Equal(t, "Homework", got.Content.Sections[1].Heading)
	assert.Contains(t, got.Content.Sections[0].Text, "- Lecture")
	assert.Contains(t, got.Content.Text, "Read section 2.1 before class.")
}

func TestPDFRenderer(t *testing.T) {
	out, err := NewPDFRenderer().Render(page+"\nCafé résumé\n", meta)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, ".pdf", NewPDFRenderer().Extension())
}

func TestCleanInlineMarkdown(t *testing.T) {
	assert.Equal(t, "bold and link", cleanInlineMarkdown("**bold** and [link](https://x)"))
	assert.Equal(t, "$a+b$", cleanInlineMarkdown("$a+b$"))
}
