package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = `<h2>Day 3</h2>
<p>Watch <a href="https://youtu.be/abc" title="Video">the video</a>,
read <a class="instructure_file_link" href="/courses/57795/files/991/download">the notes</a>
and see <a href="#homework">below</a>.</p>
<p><a href="https://openstax.org" target="_blank" rel="noopener">OpenStax</a>
<a href="javascript:void(0)">menu</a>
<a href="https://clc.instructure.com/courses/57795/pages/day-4" target="_self" rel="prev">Day 4</a></p>`

func TestAddTargetBlank(t *testing.T) {
	out, n, err := AddTargetBlank(body)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Contains(t, out, `<a href="https://youtu.be/abc" title="Video" target="_blank" rel="noopener noreferrer">the video</a>`)
	assert.Contains(t, out, `<a class="instructure_file_link" href="/courses/57795/files/991/download" target="_blank" rel="noopener noreferrer">`)
	assert.Contains(t, out, `<a href="https://clc.instructure.com/courses/57795/pages/day-4" target="_blank" rel="noopener noreferrer">Day 4</a>`)

	// untouched
	assert.Contains(t, out, `<a href="#homework">below</a>`)
	assert.Contains(t, out, `<a href="https://openstax.org" target="_blank" rel="noopener">OpenStax</a>`)
	assert.Contains(t, out, `<a href="javascript:void(0)">menu</a>`)
	assert.Contains(t, out, "<h2>Day 3</h2>\n<p>Watch ")
}

func TestAddTargetBlankIdempotent(t *testing.T) {
	once, _, err := AddTargetBlank(body)
	require.NoError(t, err)
	twice, n, err := AddTargetBlank(once)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, once, twice)
}

func TestAddTargetBlankNoAnchors(t *testing.T) {
	in := "<p>Nothing &amp; nobody</p><!-- note -->"
	out, n, err := AddTargetBlank(in)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, in, out)
}

func TestAnalyze(t *testing.T) {
	got, err := Analyze(body, "https://clc.instructure.com/courses/57795/pages/day-3")
	require.NoError(t, err)
	require.Len(t, got, 6)

	video := got[0]
	assert.Equal(t, "the video", video.Text)
	assert.True(t, video.Rewrite)
	assert.False(t, video.Internal)

	notes := got[1]
	assert.Equal(t, "https://clc.instructure.com/courses/57795/files/991/download", notes.Resolved)
	assert.True(t, notes.Internal)
	assert.True(t, notes.File)

	anchor := got[2]
	assert.False(t, anchor.Rewrite)
	assert.Equal(t, "", anchor.Resolved)

	assert.True(t, got[3].NewTab)
	assert.False(t, got[3].Rewrite)
	assert.False(t, got[4].Rewrite)
	assert.True(t, got[5].Rewrite)
	assert.True(t, got[5].Internal)

	rewrites := 0
	for _, l := range got {
		if l.Rewrite {
			rewrites++
		}
	}
	_, n, err := AddTargetBlank(body)
	require.NoError(t, err)
	assert.Equal(t, n, rewrites)
}

func TestRules(t *testing.T) {
	assert.True(t, IsSameHost("https://CLC.instructure.com/x", "clc.instructure.com"))
	assert.False(t, IsSameHost("https://example.com", "clc.instructure.com"))
	assert.True(t, IsFile("https://x/handout.PDF"))
	assert.False(t, IsFile("https://x/pages/day-1"))
	assert.True(t, skippable(" #top"))
	assert.True(t, skippable("JavaScript:alert(1)"))
	assert.False(t, skippable("mailto:prof@clcillinois.edu"))
}
