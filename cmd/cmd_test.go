package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/canvaspipe/config"
	"github.com/gaurav-prasanna/canvaspipe/core"
	"github.com/gaurav-prasanna/canvaspipe/core/render"
)

func resetFlags(t *testing.T) {
	t.Helper()
	flagAll, flagPDF, flagMarkdown, flagJSON = false, false, false, false
	flagFormat, flagTermStart, flagTermEnd = "text", "", ""
	cfg = config.Config{}
	t.Cleanup(func() {
		flagAll, flagPDF, flagMarkdown, flagJSON = false, false, false, false
		flagFormat, flagTermStart, flagTermEnd = "text", "", ""
		cfg = config.Config{}
	})
}

func TestValidateFlags(t *testing.T) {
	resetFlags(t)

	assert.ErrorContains(t, validateFlags(2), "exactly one output format")

	flagMarkdown = true
	assert.NoError(t, validateFlags(2))
	assert.ErrorContains(t, validateFlags(1), "page URL is required")

	flagAll = true
	assert.NoError(t, validateFlags(1))
	assert.ErrorContains(t, validateFlags(2), "mutually exclusive")

	flagPDF = true
	assert.ErrorContains(t, validateFlags(1), "only one output format")
}

func TestSelectRenderer(t *testing.T) {
	resetFlags(t)

	flagJSON = true
	r, err := selectRenderer()
	require.NoError(t, err)
	assert.Equal(t, ".json", r.Extension())
}

func TestBuildMetadata(t *testing.T) {
	page := &core.PageBody{PageRef: core.PageRef{
		URL:       "day-3",
		Title:     "Day 3",
		UpdatedAt: time.Date(2025, 2, 3, 12, 30, 0, 0, time.FixedZone("CST", -6*3600)),
	}}
	meta := buildMetadata("57795", page)
	assert.Equal(t, "57795", meta.CourseID)
	assert.Equal(t, "day-3", meta.PageURL)
	assert.Equal(t, "Day 3", meta.Title)
	assert.Equal(t, "2025-02-03T18:30:00Z", meta.UpdatedAt)
	assert.NotEmpty(t, meta.FetchedAt)

	page.UpdatedAt = time.Time{}
	assert.Empty(t, buildMetadata("57795", page).UpdatedAt)
}

func TestBuildMetadataTitleFromHeading(t *testing.T) {
	page := &core.PageBody{
		PageRef: core.PageRef{URL: "week-2"},
		Body:    "<p>Intro</p><h2>Week 2: Derivatives</h2><h3>Monday</h3>",
	}
	assert.Equal(t, "Week 2: Derivatives", buildMetadata("57795", page).Title)
}

func TestSelectOfficeHoursRenderer(t *testing.T) {
	resetFlags(t)
	cfg.BaseURL = "https://clc.instructure.com/"
	cfg.Mappings = config.CourseMappings{{CanvasID: "57795", Term: "spring-2026", CourseCode: "mth-122"}}

	r, err := selectOfficeHoursRenderer("57795")
	require.NoError(t, err)
	assert.Equal(t, render.OfficeHoursText{SourceURL: "https://clc.instructure.com/courses/57795"}, r)

	flagFormat = "ics"
	_, err = selectOfficeHoursRenderer("57795")
	assert.ErrorContains(t, err, "--term-start and --term-end are required")

	flagTermStart, flagTermEnd = "2026-01-12", "2026-05-15"
	r, err = selectOfficeHoursRenderer("57795")
	require.NoError(t, err)
	ics, ok := r.(render.OfficeHoursICS)
	require.True(t, ok)
	assert.Equal(t, "MTH 122 Student Hours", ics.Summary)
	assert.Equal(t, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC), ics.TermEnd)

	flagTermEnd = "May 15"
	_, err = selectOfficeHoursRenderer("57795")
	assert.ErrorContains(t, err, "invalid --term-end")

	flagFormat = "yaml"
	_, err = selectOfficeHoursRenderer("57795")
	assert.ErrorContains(t, err, "unknown format")
}

func TestEventSummaryWithoutMapping(t *testing.T) {
	resetFlags(t)
	assert.Equal(t, "Student Hours", eventSummary("1"))
}
