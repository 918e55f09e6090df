package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/canvaspipe/config"
	"github.com/gaurav-prasanna/canvaspipe/core"
	"github.com/gaurav-prasanna/canvaspipe/core/normalize"
	"github.com/gaurav-prasanna/canvaspipe/core/output"
)

var updated = time.Date(2025, 2, 3, 18, 30, 0, 0, time.UTC)

type fakeSource struct {
	pages   map[string][]core.PageBody
	listErr map[string]error
	fetched int
}

func (f *fakeSource) Pages(_ context.Context, courseID string) ([]core.PageRef, error) {
	if err := f.listErr[courseID]; err != nil {
		return nil, err
	}
	var refs []core.PageRef
	for _, p := range f.pages[courseID] {
		refs = append(refs, p.PageRef)
	}
	return refs, nil
}

func (f *fakeSource) Page(_ context.Context, courseID, pageURL string) (*core.PageBody, error) {
	f.fetched++
	for _, p := range f.pages[courseID] {
		if p.URL == pageURL {
			return &p, nil
		}
	}
	return nil, errors.New("page not found")
}

// failingTransformer fails on bodies containing "boom".
type failingTransformer struct{ next core.Transformer }

func (t failingTransformer) Transform(html string) (string, error) {
	if strings.Contains(html, "boom") {
		return "", &normalize.TransformError{Msg: "boom"}
	}
	return t.next.Transform(html)
}

func page(id, url, title, body string) core.PageBody {
	return core.PageBody{
		PageRef: core.PageRef{URL: url, Title: title, Published: true, UpdatedAt: updated},
		ID:      id,
		Body:    body,
	}
}

func newSource() *fakeSource {
	return &fakeSource{
		pages: map[string][]core.PageBody{
			"57795": {
				page("1", "day-1", "Day 1", "<ul><li>Syllabus</li></ul>"),
				page("2", "day-2", "Day 2", "<p>boom</p>"),
				page("3", "day-3", "Day 3", "<p>Limits</p>"),
			},
		},
		listErr: map[string]error{},
	}
}

var mappings = []config.CourseMapping{
	{CanvasID: "57795", Term: "spring-2025", CourseCode: "mth-122"},
	{CanvasID: "60001", Term: "spring-2025", CourseCode: "mth-141"},
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSyncer(t *testing.T, src core.PageSource, mutate func(*Config)) (*Syncer, *output.Writer) {
	t.Helper()
	store, err := output.New(t.TempDir())
	require.NoError(t, err)
	cfg := Config{
		Source:      src,
		Transformer: failingTransformer{next: normalize.New()},
		Store:       store,
		Mappings:    mappings,
		Logger:      discard(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg), store
}

func TestSyncCourseSkipsFailingPage(t *testing.T) {
	s, store := newSyncer(t, newSource(), nil)

	res, err := s.SyncCourse(context.Background(), "57795")
	require.NoError(t, err)
	assert.Equal(t, Result{Written: 2, Failed: 1}, res)

	item, err := store.ReadPage(filepath.Join("src", "content", "courses", "spring-2025", "mth-122", "pages", "day-1.md"))
	require.NoError(t, err)
	assert.Equal(t, "Day 1", item.Title)
	assert.Equal(t, "57795", item.CourseID)
	assert.Equal(t, "1", item.ID)
	assert.True(t, item.LastModified.Equal(updated))
	assert.Equal(t, "- Syllabus", item.Content)
	assert.Equal(t, true, item.Metadata["published"])

	_, err = os.Stat(filepath.Join(store.OutputDir, "src", "content", "courses", "spring-2025", "mth-122", "pages", "day-2.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncCourseUnchanged(t *testing.T) {
	src := newSource()
	s, store := newSyncer(t, src, nil)

	_, err := s.SyncCourse(context.Background(), "57795")
	require.NoError(t, err)
	fetched := src.fetched

	res, err := s.SyncCourse(context.Background(), "57795")
	require.NoError(t, err)
	assert.Equal(t, Result{Unchanged: 2, Failed: 1}, res)
	assert.Equal(t, fetched+1, src.fetched, "only the page that was never written is fetched again")

	forced := New(Config{
		Source:      src,
		Transformer: failingTransformer{next: normalize.New()},
		Store:       store,
		Mappings:    mappings,
		Force:       true,
		Logger:      discard(),
	})
	res, err = forced.SyncCourse(context.Background(), "57795")
	require.NoError(t, err)
	assert.Equal(t, Result{Written: 2, Failed: 1}, res)
}

func TestSyncCourseDryRun(t *testing.T) {
	s, store := newSyncer(t, newSource(), func(c *Config) { c.DryRun = true })

	res, err := s.SyncCourse(context.Background(), "57795")
	require.NoError(t, err)
	assert.Equal(t, Result{Planned: 2, Failed: 1}, res)

	entries, err := os.ReadDir(store.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSyncCourseTitleCollision(t *testing.T) {
	src := newSource()
	src.pages["57795"] = append(src.pages["57795"], page("4", "day-1-copy", "Day 1!", "<p>copy</p>"))
	s, _ := newSyncer(t, src, nil)

	res, err := s.SyncCourse(context.Background(), "57795")
	require.NoError(t, err)
	assert.Equal(t, Result{Written: 2, Failed: 2}, res)
}

func TestSyncCourseSkipsUnpublished(t *testing.T) {
	src := newSource()
	draft := page("5", "draft", "Draft", "<p>draft</p>")
	draft.Published = false
	src.pages["57795"] = append(src.pages["57795"], draft)
	s, _ := newSyncer(t, src, nil)

	res, err := s.SyncCourse(context.Background(), "57795")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
}

func TestSyncCourseNoMapping(t *testing.T) {
	s, _ := newSyncer(t, newSource(), nil)

	_, err := s.SyncCourse(context.Background(), "99999")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMapping)
}

func TestSyncAllContinuesPastFailingCourse(t *testing.T) {
	src := newSource()
	src.listErr["60001"] = errors.New("canvas unavailable")
	s, _ := newSyncer(t, src, func(c *Config) { c.Concurrency = 3 })

	report, err := s.SyncAll(context.Background(), []string{"60001", "57795", "99999"})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Courses)
	assert.Equal(t, 2, report.Written)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"60001", "99999"}, report.FailedCourses)
}

func TestSyncAllCancelled(t *testing.T) {
	s, _ := newSyncer(t, newSource(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SyncAll(ctx, []string{"57795"})
	assert.ErrorIs(t, err, context.Canceled)
}
