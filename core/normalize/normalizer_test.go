package normalize

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestedListsBecomeIndentedBullets(t *testing.T) {
	md, err := HTMLToMarkdown(`<ul><li>A<ul><li>B</li></ul></li></ul>`)
	require.NoError(t, err)
	assert.Equal(t, "- A\n    - B\n", md)
}

func TestDeepAgendaList(t *testing.T) {
	in := `<h3>Day 4</h3>
<ol>
  <li>Warm up
    <ul>
      <li>Review 2.3</li>
      <li>Quiz <ul><li>10 minutes</li></ul></li>
    </ul>
  </li>
  <li>Lecture</li>
</ol>`
	md, err := HTMLToMarkdown(in)
	require.NoError(t, err)
	assert.Contains(t, md, "- Warm up\n    - Review 2.3\n    - Quiz\n        - 10 minutes\n- Lecture")
	assert.NotContains(t, md, "- - ")
}

func TestCanvasStyleNestedList(t *testing.T) {
	// The rich-content editor nests a <ul> directly inside its parent list.
	md, err := HTMLToMarkdown(`<ul><li>Day 1</li><ul><li>Syllabus</li><li>1.1 Functions</li></ul><li>Day 2</li></ul>`)
	require.NoError(t, err)
	assert.Equal(t, "- Day 1\n    - Syllabus\n    - 1.1 Functions\n- Day 2\n", md)
}

func TestStrikethrough(t *testing.T) {
	md, err := HTMLToMarkdown(`<p><s>Due Friday</s> Due Monday</p>`)
	require.NoError(t, err)
	assert.Equal(t, "~~Due Friday~~ Due Monday\n", md)
}

func TestLatexImage(t *testing.T) {
	md, err := HTMLToMarkdown(`<p>Solve <img class="equation_image" alt="LaTeX: x^2+y^2=1" src="/equation_images/x"></p>`)
	require.NoError(t, err)
	assert.Contains(t, md, "$x^2+y^2=1$")
	assert.NotContains(t, md, "![")
	assert.NotContains(t, md, "equation_images")
}

func TestOrdinaryImageKept(t *testing.T) {
	md, err := HTMLToMarkdown(`<p><img alt="graph" src="https://example.com/g.png"></p>`)
	require.NoError(t, err)
	assert.Contains(t, md, "![graph](https://example.com/g.png)")
}

func TestScriptsRemoved(t *testing.T) {
	md, err := HTMLToMarkdown(`<p>Hello</p><script>alert("pwned")</script>`)
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", md)
}

func TestHeadingsAndEmphasis(t *testing.T) {
	md, err := HTMLToMarkdown(`<h2>Week 1</h2><p>Read <strong>chapter 1</strong>.</p>`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "## Week 1\n\n"), md)
	assert.Contains(t, md, "**chapter 1**")
	assert.True(t, strings.HasSuffix(md, ".\n"))
	assert.False(t, strings.HasSuffix(md, "\n\n"))
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb\rc", "a\nb\nc\n"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb\n"},
		{"doubled marker", "- - item\n- * other\n- - - deep", "- item\n- other\n- deep\n"},
		{"indented bullets untouched", "- A\n    - B", "- A\n    - B\n"},
		{"trailing", "text\n\n\n", "text\n"},
		{"empty", "", "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PostProcess(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, PostProcess(got), "post-processing must be idempotent")
		})
	}
}

func TestPostProcessIdempotentOnTransformerOutput(t *testing.T) {
	for _, in := range []string{
		`<ul><li>A<ul><li>B</li></ul></li></ul>`,
		`<h1>T</h1><p>one</p><p></p><p></p><p>two</p>`,
		`<table><tr><th>Day</th><th>Topic</th></tr><tr><td>1</td><td>Limits</td></tr></table>`,
	} {
		md, err := HTMLToMarkdown(in)
		require.NoError(t, err)
		assert.Equal(t, md, PostProcess(md), in)
	}
}

func TestTransformError(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := error(transformError(cause))

	assert.True(t, errors.Is(err, ErrTransform))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "content transformation failed: boom", err.Error())

	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "boom", te.Msg)
}

func TestTransformRecoversFromPanic(t *testing.T) {
	saved := convertHTML
	t.Cleanup(func() { convertHTML = saved })
	convertHTML = func(string) (string, error) { panic("converter blew up") }

	md, err := HTMLToMarkdown("<p>Hello</p>")
	assert.Empty(t, md)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransform))

	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "converter blew up", te.Msg)
}

func TestTransformWrapsConverterError(t *testing.T) {
	saved := convertHTML
	t.Cleanup(func() { convertHTML = saved })
	cause := errors.New("bad node")
	convertHTML = func(string) (string, error) { return "", cause }

	_, err := HTMLToMarkdown("<p>Hello</p>")
	assert.True(t, errors.Is(err, ErrTransform))
	assert.True(t, errors.Is(err, cause))
}
