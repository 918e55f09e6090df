package canvas

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CatalogCourse is a course as shown on the website.
type CatalogCourse struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Code         string       `json:"code"`
	Slug         string       `json:"slug"`
	Term         *CatalogTerm `json:"term"`
	SyllabusHTML string       `json:"syllabusHtml,omitempty"`
}

// CatalogTerm is the website view of a Term.
type CatalogTerm struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Slug  string     `json:"slug"`
	EndAt *time.Time `json:"endAt"`
}

var (
	nonSlug       = regexp.MustCompile(`[^a-z0-9]+`)
	termName      = regexp.MustCompile(`(?i)(spring|summer|fall)\s*(\d{4})`)
	excludedTitle = regexp.MustCompile(`(?i)math\s*dept\s*resources`)
)

// Slug lowercases s, folds accents and joins the remaining alphanumeric
// runs with single dashes: "MTH 122-008" becomes "mth-122-008".
func Slug(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// ToCatalogCourse converts an API course.
func ToCatalogCourse(c Course) CatalogCourse {
	out := CatalogCourse{
		ID:           c.ID,
		Name:         c.Name,
		Code:         c.CourseCode,
		Slug:         Slug(c.CourseCode),
		SyllabusHTML: c.SyllabusBody,
	}
	if c.Term != nil {
		out.Term = &CatalogTerm{
			ID:    c.Term.ID,
			Name:  c.Term.Name,
			Slug:  Slug(c.Term.Name),
			EndAt: c.Term.EndAt,
		}
	}
	return out
}

// IsTermFall2024OrLater reports whether a term name such as "Spring 2025"
// falls on or after Fall 2024. Unparseable names are rejected.
func IsTermFall2024OrLater(name string) bool {
	m := termName.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	year, _ := strconv.Atoi(m[2])
	switch {
	case year > 2024:
		return true
	case year == 2024:
		return strings.EqualFold(m[1], "fall")
	default:
		return false
	}
}

// ShouldExcludeCourse reports whether a course is a department resource
// shell rather than a taught section.
func ShouldExcludeCourse(c CatalogCourse) bool {
	return excludedTitle.MatchString(c.Name) || excludedTitle.MatchString(c.Code)
}

// FilterCourses keeps taught courses with a named term from Fall 2024 on,
// newest term first.
func FilterCourses(courses []Course) []CatalogCourse {
	var out []CatalogCourse
	for _, c := range courses {
		cc := ToCatalogCourse(c)
		if cc.Term == nil || strings.TrimSpace(cc.Term.Name) == "" {
			continue
		}
		if !IsTermFall2024OrLater(cc.Term.Name) || ShouldExcludeCourse(cc) {
			continue
		}
		out = append(out, cc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Term.ID > out[j].Term.ID
	})
	return out
}

// GroupByTerm groups courses by term slug. Courses without a term are dropped.
func GroupByTerm(courses []CatalogCourse) map[string][]CatalogCourse {
	grouped := make(map[string][]CatalogCourse)
	for _, c := range courses {
		if c.Term == nil {
			continue
		}
		grouped[c.Term.Slug] = append(grouped[c.Term.Slug], c)
	}
	return grouped
}

// Current returns courses whose term has not ended at now. A term without
// an end date counts as current.
func Current(courses []CatalogCourse, now time.Time) []CatalogCourse {
	var out []CatalogCourse
	for _, c := range courses {
		if c.Term == nil || c.Term.EndAt == nil || c.Term.EndAt.After(now) {
			out = append(out, c)
		}
	}
	return out
}

// Archived returns courses whose term ended at or before now.
func Archived(courses []CatalogCourse, now time.Time) []CatalogCourse {
	var out []CatalogCourse
	for _, c := range courses {
		if c.Term != nil && c.Term.EndAt != nil && !c.Term.EndAt.After(now) {
			out = append(out, c)
		}
	}
	return out
}
