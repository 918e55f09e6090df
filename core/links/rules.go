package links

import (
	"net/url"
	"path"
	"strings"
)

// fileExtensions mark links to downloadable files rather than pages.
var fileExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".csv": true, ".txt": true,
	".mp4": true, ".mp3": true, ".zip": true,
}

// IsSameHost reports whether rawURL points at host.
func IsSameHost(rawURL, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, host)
}

// IsFile reports whether rawURL points at a file download: a known file
// extension or a Canvas /files/ path.
func IsFile(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.Contains(parsed.Path, "/files/") {
		return true
	}
	return fileExtensions[strings.ToLower(path.Ext(parsed.Path))]
}

// skippable reports hrefs that are never rewritten: in-page anchors and
// script URLs.
func skippable(href string) bool {
	href = strings.TrimSpace(href)
	return href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(strings.ToLower(href), "javascript:")
}

// resolve resolves a potentially relative href against base and strips
// the fragment. It returns "" for hrefs that cannot be parsed.
func resolve(href string, base *url.URL) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	parsed.Fragment = ""
	return parsed.String()
}
