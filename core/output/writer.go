// Package output handles file naming and writing for canvaspipe outputs.
// Synced pages go to the content store as Markdown with YAML front matter
// under src/content/courses/<term>/<course>/pages/. One-off conversions are
// written as flat files named after the course and page.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/canvaspipe/config"
	"github.com/gaurav-prasanna/canvaspipe/core"
	"github.com/gaurav-prasanna/canvaspipe/core/canvas"
)

const fmDelim = "---\n"

// ErrNoFrontMatter is returned by ReadPage for files without a front matter block.
var ErrNoFrontMatter = errors.New("no front matter")

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// PagePath is the content-store path of a synced page, relative to the
// content root.
func PagePath(m config.CourseMapping, title string) string {
	return filepath.Join("src", "content", "courses", m.Term, m.CourseCode, "pages", canvas.Slug(title)+".md")
}

// frontMatter is the YAML header of a content-store page. Extra carries
// item metadata (published, frontPage, ...) after the fixed keys.
type frontMatter struct {
	Title        string         `yaml:"title"`
	LastModified string         `yaml:"lastModified"`
	CourseID     *string        `yaml:"courseId"`
	CanvasID     string         `yaml:"canvasId"`
	Extra        map[string]any `yaml:",inline"`
}

var reservedKeys = []string{"title", "lastModified", "courseId", "canvasId"}

// WritePage writes item under item.Path as front matter plus Markdown body
// and returns the full path written.
func (w *Writer) WritePage(item core.ContentItem) (string, error) {
	if item.Path == "" {
		return "", fmt.Errorf("writing page %q: empty path", item.Title)
	}

	fm := frontMatter{
		Title:        item.Title,
		LastModified: item.LastModified.UTC().Format(time.RFC3339),
		CanvasID:     item.ID,
	}
	if item.CourseID != "" {
		fm.CourseID = &item.CourseID
	}
	if len(item.Metadata) > 0 {
		fm.Extra = make(map[string]any, len(item.Metadata))
		for k, v := range item.Metadata {
			fm.Extra[k] = v
		}
		for _, k := range reservedKeys {
			delete(fm.Extra, k)
		}
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding front matter for %s: %w", item.Path, err)
	}

	var buf bytes.Buffer
	buf.WriteString(fmDelim)
	buf.Write(header)
	buf.WriteString(fmDelim)
	buf.WriteString("\n")
	buf.WriteString(item.Content)

	return w.write(item.Path, buf.Bytes())
}

// ReadPage parses a content-store page written by WritePage.
func (w *Writer) ReadPage(relPath string) (*core.ContentItem, error) {
	fullPath := filepath.Join(w.OutputDir, relPath)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fullPath, err)
	}

	header, body, ok := splitFrontMatter(string(data))
	if !ok {
		return nil, fmt.Errorf("reading %s: %w", fullPath, ErrNoFrontMatter)
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("parsing front matter in %s: %w", fullPath, err)
	}

	item := &core.ContentItem{
		ID:       fm.CanvasID,
		Title:    fm.Title,
		Content:  strings.TrimSpace(body),
		Source:   core.SourceWebsite,
		Path:     relPath,
		Metadata: fm.Extra,
	}
	if fm.CourseID != nil {
		item.CourseID = *fm.CourseID
	}
	if fm.LastModified != "" {
		t, err := time.Parse(time.RFC3339, fm.LastModified)
		if err != nil {
			return nil, fmt.Errorf("parsing lastModified in %s: %w", fullPath, err)
		}
		item.LastModified = t
	}
	return item, nil
}

func splitFrontMatter(s string) (header, body string, ok bool) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.HasPrefix(s, fmDelim) {
		return "", s, false
	}
	rest := s[len(fmDelim):]
	end := strings.Index(rest, "\n"+fmDelim)
	if end < 0 {
		return "", s, false
	}
	return rest[:end+1], rest[end+1+len(fmDelim):], true
}

// WriteFile writes a flat output file named after name (e.g. "1234 day-3"
// becomes 1234_day_3.md) and returns its path.
func (w *Writer) WriteFile(name string, data []byte, ext string) (string, error) {
	return w.write(sanitize(name)+ext, data)
}

func (w *Writer) write(relPath string, data []byte) (string, error) {
	fullPath := filepath.Join(w.OutputDir, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
