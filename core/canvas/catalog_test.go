package canvas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "mth-122-008", Slug("MTH 122-008"))
	assert.Equal(t, "spring-2025", Slug("Spring 2025"))
	assert.Equal(t, "notes-assignments", Slug("  Notes & Assignments!  "))
	assert.Equal(t, "resume-cafe", Slug("Résumé Café"))
	assert.Equal(t, "", Slug("---"))
}

func TestIsTermFall2024OrLater(t *testing.T) {
	for name, want := range map[string]bool{
		"Fall 2024":        true,
		"fall2024":         true,
		"Spring 2025":      true,
		"Summer 2024":      false,
		"Spring 2024":      false,
		"Fall 2023":        false,
		"Default Term":     false,
		"2025 Winter term": false,
	} {
		assert.Equal(t, want, IsTermFall2024OrLater(name), name)
	}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFilterCourses(t *testing.T) {
	courses := []Course{
		{ID: 1, Name: "College Algebra", CourseCode: "MTH 122", Term: &Term{ID: 10, Name: "Fall 2024"}},
		{ID: 2, Name: "Math Dept Resources", CourseCode: "MATH-RES", Term: &Term{ID: 30, Name: "Spring 2026"}},
		{ID: 3, Name: "Trig", CourseCode: "MTH 112", Term: &Term{ID: 20, Name: "Spring 2025"}},
		{ID: 4, Name: "Sandbox", CourseCode: "SBX"},
		{ID: 5, Name: "Old", CourseCode: "MTH 95", Term: &Term{ID: 5, Name: "Spring 2024"}},
		{ID: 6, Name: "Blank", CourseCode: "MTH 60", Term: &Term{ID: 40, Name: "  "}},
	}

	got := FilterCourses(courses)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, "mth-112", got[0].Slug)
	assert.Equal(t, "spring-2025", got[0].Term.Slug)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestCurrentAndArchived(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	courses := []CatalogCourse{
		{ID: 1, Term: &CatalogTerm{Slug: "spring-2025", EndAt: date(2025, 5, 20)}},
		{ID: 2, Term: &CatalogTerm{Slug: "summer-2025", EndAt: date(2025, 8, 20)}},
		{ID: 3, Term: &CatalogTerm{Slug: "open"}},
		{ID: 4, Term: &CatalogTerm{Slug: "edge", EndAt: &now}},
	}

	var current, archived []int64
	for _, c := range Current(courses, now) {
		current = append(current, c.ID)
	}
	for _, c := range Archived(courses, now) {
		archived = append(archived, c.ID)
	}
	assert.Equal(t, []int64{2, 3}, current)
	assert.Equal(t, []int64{1, 4}, archived)

	grouped := GroupByTerm(courses)
	assert.Len(t, grouped, 4)
	assert.Len(t, grouped["spring-2025"], 1)
}
