// Package core defines the shared types and pipeline interfaces for canvaspipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"time"
)

// ContentSource names where a ContentItem came from.
type ContentSource string

const (
	SourceCanvas  ContentSource = "canvas"
	SourceWebsite ContentSource = "website"
)

// PageMetadata holds metadata about a single Canvas page.
type PageMetadata struct {
	CourseID  string `json:"course_id"`
	PageURL   string `json:"page_url"`
	Title     string `json:"title"`
	UpdatedAt string `json:"updated_at"` // ISO8601
	FetchedAt string `json:"fetched_at"` // ISO8601
}

// ContentItem is one page on its way into (or out of) the content store.
type ContentItem struct {
	ID           string
	Title        string
	Content      string
	LastModified time.Time
	Source       ContentSource
	Path         string
	CourseID     string
	Metadata     map[string]any
}

// Section represents a heading-delimited section of content.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// Heading represents a single heading found in the content.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link represents a hyperlink found in the content.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// PageContent holds the text and structured content of a page.
type PageContent struct {
	Text     string    `json:"text"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

// PageStructure holds structural metadata parsed from the content.
type PageStructure struct {
	Headings []Heading `json:"headings"`
	Links    []Link    `json:"links"`
	Tables   int       `json:"tables"`
	Lists    int       `json:"lists"`
	Math     int       `json:"math"`
}

// PageJSON is the complete JSON output for a single page.
type PageJSON struct {
	Metadata  PageMetadata  `json:"metadata"`
	Content   PageContent   `json:"content"`
	Structure PageStructure `json:"structure"`
}

// PageRef identifies a page inside a course.
type PageRef struct {
	URL       string
	Title     string
	Published bool
	FrontPage bool
	UpdatedAt time.Time
}

// PageBody is a fully fetched page.
type PageBody struct {
	PageRef
	ID   string
	Body string
}

// PageSource lists and fetches course pages. It is satisfied by the Canvas client.
type PageSource interface {
	Pages(ctx context.Context, courseID string) ([]PageRef, error)
	Page(ctx context.Context, courseID, pageURL string) (*PageBody, error)
}

// Transformer converts Canvas-authored HTML into Markdown (the canonical format).
type Transformer interface {
	Transform(html string) (string, error)
}

// Renderer converts Markdown (and metadata) into a final output format.
type Renderer interface {
	Render(markdown string, meta PageMetadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
