package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/gaurav-prasanna/canvaspipe/core"
)

// PageSummary is a wiki page as returned by the page listing endpoint.
type PageSummary struct {
	PageID    int64     `json:"page_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Published bool      `json:"published"`
	FrontPage bool      `json:"front_page"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page is a wiki page including its HTML body.
type Page struct {
	PageSummary
	Body             string `json:"body"`
	HideFromStudents bool   `json:"hide_from_students"`
}

// notesTitles are tried in order when looking for a course's schedule page.
var notesTitles = []*regexp.Regexp{
	regexp.MustCompile(`(?i)notes\s*(and|&)\s*assignments`),
	regexp.MustCompile(`(?i)calendar\s*(and|&)\s*daily\s*notes`),
	regexp.MustCompile(`(?i)daily\s*notes\s*(and|&)\s*calendar`),
	regexp.MustCompile(`(?i)course\s*calendar`),
	regexp.MustCompile(`(?i)schedule`),
}

var (
	dayTitle = regexp.MustCompile(`(?i)^day\s*\d+`)
	firstInt = regexp.MustCompile(`\d+`)
)

// ListPages returns the published pages of a course.
func (c *Client) ListPages(ctx context.Context, courseID string) ([]PageSummary, error) {
	endpoint := fmt.Sprintf("/api/v1/courses/%s/pages?per_page=%d", url.PathEscape(courseID), perPage)
	pages, err := getAll[PageSummary](ctx, c, endpoint)
	if err != nil {
		return nil, err
	}

	published := pages[:0]
	for _, p := range pages {
		if p.Published {
			published = append(published, p)
		}
	}
	return published, nil
}

// GetPage fetches a single page by its URL slug.
func (c *Client) GetPage(ctx context.Context, courseID, pageURL string) (*Page, error) {
	endpoint := fmt.Sprintf("/api/v1/courses/%s/pages/%s", url.PathEscape(courseID), url.PathEscape(pageURL))
	var page Page
	if err := c.get(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FrontPage fetches the course front page. A course without one returns
// (nil, nil).
func (c *Client) FrontPage(ctx context.Context, courseID string) (*Page, error) {
	var page Page
	err := c.get(ctx, fmt.Sprintf("/api/v1/courses/%s/front_page", url.PathEscape(courseID)), &page)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// NotesPage finds the page holding the course calendar and daily notes by
// title, falling back to the front page.
func (c *Client) NotesPage(ctx context.Context, courseID string) (*Page, error) {
	pages, err := c.ListPages(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if p := findNotesPage(pages); p != nil {
		return c.GetPage(ctx, courseID, p.URL)
	}
	return c.FrontPage(ctx, courseID)
}

func findNotesPage(pages []PageSummary) *PageSummary {
	for _, re := range notesTitles {
		for i := range pages {
			if re.MatchString(pages[i].Title) {
				return &pages[i]
			}
		}
	}
	return nil
}

// DayPages returns the "Day N" lecture pages of a course ordered by N.
func (c *Client) DayPages(ctx context.Context, courseID string) ([]PageSummary, error) {
	pages, err := c.ListPages(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return filterDayPages(pages), nil
}

func filterDayPages(pages []PageSummary) []PageSummary {
	var days []PageSummary
	for _, p := range pages {
		if dayTitle.MatchString(p.Title) {
			days = append(days, p)
		}
	}
	sort.SliceStable(days, func(i, j int) bool {
		return dayNumber(days[i].Title) < dayNumber(days[j].Title)
	})
	return days
}

func dayNumber(title string) int {
	n, _ := strconv.Atoi(firstInt.FindString(title))
	return n
}

// UpdatePageBody replaces the HTML body of a page.
func (c *Client) UpdatePageBody(ctx context.Context, courseID, pageURL, body string) error {
	endpoint := fmt.Sprintf("/api/v1/courses/%s/pages/%s", url.PathEscape(courseID), url.PathEscape(pageURL))
	payload := map[string]any{"wiki_page": map[string]string{"body": body}}
	_, err := c.do(ctx, http.MethodPut, c.baseURL+endpoint, endpoint, payload, nil)
	return err
}

// Pages implements core.PageSource.
func (c *Client) Pages(ctx context.Context, courseID string) ([]core.PageRef, error) {
	pages, err := c.ListPages(ctx, courseID)
	if err != nil {
		return nil, err
	}
	refs := make([]core.PageRef, 0, len(pages))
	for _, p := range pages {
		refs = append(refs, p.ref())
	}
	return refs, nil
}

// Page implements core.PageSource.
func (c *Client) Page(ctx context.Context, courseID, pageURL string) (*core.PageBody, error) {
	p, err := c.GetPage(ctx, courseID, pageURL)
	if err != nil {
		return nil, err
	}
	return &core.PageBody{
		PageRef: p.ref(),
		ID:      strconv.FormatInt(p.PageID, 10),
		Body:    p.Body,
	}, nil
}

func (p PageSummary) ref() core.PageRef {
	return core.PageRef{
		URL:       p.URL,
		Title:     p.Title,
		Published: p.Published,
		FrontPage: p.FrontPage,
		UpdatedAt: p.UpdatedAt,
	}
}
