// Package syncer copies published Canvas pages into the content store.
//
// Each page is fetched, converted to Markdown and written with front
// matter. Failures are contained: a page that cannot be fetched, converted
// or written is logged and skipped, and a course that cannot be listed is
// logged without stopping the other courses.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/canvaspipe/config"
	"github.com/gaurav-prasanna/canvaspipe/core"
	"github.com/gaurav-prasanna/canvaspipe/core/output"
)

// ErrNoMapping is returned for a course with no COURSE_MAPPINGS entry.
var ErrNoMapping = errors.New("no mapping found for course")

// Store reads and writes content-store pages. *output.Writer satisfies it.
type Store interface {
	WritePage(item core.ContentItem) (string, error)
	ReadPage(relPath string) (*core.ContentItem, error)
}

// Config wires a Syncer.
type Config struct {
	Source      core.PageSource
	Transformer core.Transformer
	Store       Store
	Mappings    []config.CourseMapping

	// DryRun logs what would be written without touching the store.
	DryRun bool
	// Force rewrites pages whose stored lastModified matches Canvas.
	Force bool
	// Concurrency bounds how many courses SyncAll runs at once.
	Concurrency int

	Logger *slog.Logger
}

// Syncer runs course syncs.
type Syncer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Syncer.
func New(cfg Config) *Syncer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{cfg: cfg, logger: logger}
}

// Result counts page outcomes.
type Result struct {
	Written   int `json:"written"`
	Planned   int `json:"planned"` // dry run: pages that would be written
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

func (r *Result) add(o Result) {
	r.Written += o.Written
	r.Planned += o.Planned
	r.Unchanged += o.Unchanged
	r.Failed += o.Failed
}

// Report summarizes a SyncAll run.
type Report struct {
	Result
	Courses       int      `json:"courses"`
	FailedCourses []string `json:"failedCourses"`
}

func (s *Syncer) mapping(courseID string) (config.CourseMapping, bool) {
	for _, m := range s.cfg.Mappings {
		if m.CanvasID == courseID {
			return m, true
		}
	}
	return config.CourseMapping{}, false
}

// SyncCourse syncs every published page of one course. The returned error
// is course-level (no mapping, pages could not be listed, cancellation);
// page failures are only counted in the Result.
func (s *Syncer) SyncCourse(ctx context.Context, courseID string) (Result, error) {
	var res Result
	log := s.logger.With("course", courseID)

	m, ok := s.mapping(courseID)
	if !ok {
		return res, fmt.Errorf("%w %s", ErrNoMapping, courseID)
	}

	log.Info("starting course sync")
	pages, err := s.cfg.Source.Pages(ctx, courseID)
	if err != nil {
		return res, fmt.Errorf("listing pages for course %s: %w", courseID, err)
	}
	log.Info("found published pages", "count", len(pages))

	seen := make(map[string]string, len(pages))
	for _, ref := range pages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !ref.Published {
			continue
		}

		path := output.PagePath(m, ref.Title)
		if other, dup := seen[path]; dup {
			log.Warn("page title collides with another page, skipping",
				"page", ref.URL, "other", other, "path", path)
			res.Failed++
			continue
		}
		seen[path] = ref.URL

		outcome, err := s.syncPage(ctx, courseID, ref, path)
		if err != nil {
			log.Error("failed to sync page", "page", ref.URL, "title", ref.Title, "error", err)
			res.Failed++
			continue
		}
		res.add(outcome)
	}

	log.Info("course sync finished",
		"written", res.Written, "planned", res.Planned,
		"unchanged", res.Unchanged, "failed", res.Failed)
	return res, nil
}

func (s *Syncer) syncPage(ctx context.Context, courseID string, ref core.PageRef, path string) (Result, error) {
	log := s.logger.With("course", courseID, "page", ref.URL)

	if !s.cfg.Force && !ref.UpdatedAt.IsZero() {
		if stored, err := s.cfg.Store.ReadPage(path); err == nil && stored.LastModified.Equal(ref.UpdatedAt) {
			log.Debug("page unchanged", "path", path)
			return Result{Unchanged: 1}, nil
		}
	}

	page, err := s.cfg.Source.Page(ctx, courseID, ref.URL)
	if err != nil {
		return Result{}, fmt.Errorf("fetching page: %w", err)
	}

	md, err := s.cfg.Transformer.Transform(page.Body)
	if err != nil {
		return Result{}, err
	}

	if s.cfg.DryRun {
		log.Info("would write page", "title", page.Title, "path", path)
		return Result{Planned: 1}, nil
	}

	written, err := s.cfg.Store.WritePage(core.ContentItem{
		ID:           page.ID,
		Title:        page.Title,
		Content:      md,
		LastModified: page.UpdatedAt,
		Source:       core.SourceCanvas,
		Path:         path,
		CourseID:     courseID,
		Metadata: map[string]any{
			"published": page.Published,
			"frontPage": page.FrontPage,
		},
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("synced page", "title", page.Title, "path", written)
	return Result{Written: 1}, nil
}

// SyncAll syncs the given courses, at most Concurrency at a time. A failing
// course is logged and recorded in the report; only cancellation of ctx
// is returned as an error.
func (s *Syncer) SyncAll(ctx context.Context, courseIDs []string) (Report, error) {
	var (
		mu     sync.Mutex
		report Report
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	s.logger.Info("starting content sync", "courses", len(courseIDs), "dryRun", s.cfg.DryRun)
	for _, id := range courseIDs {
		g.Go(func() error {
			res, err := s.SyncCourse(gctx, id)

			mu.Lock()
			defer mu.Unlock()
			report.Courses++
			report.add(res)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Error("failed to sync course", "course", id, "error", err)
				report.FailedCourses = append(report.FailedCourses, id)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	sort.Strings(report.FailedCourses)
	s.logger.Info("content sync completed",
		"courses", report.Courses, "written", report.Written, "planned", report.Planned,
		"unchanged", report.Unchanged, "failed", report.Failed,
		"failedCourses", len(report.FailedCourses))
	return report, nil
}
