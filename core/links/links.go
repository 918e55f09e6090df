// Package links inspects and rewrites anchors in Canvas page bodies so that
// links open in a new tab. Rewriting works on the token stream and leaves
// every byte outside the rewritten <a> start tags untouched.
package links

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const relNewTab = "noopener noreferrer"

var anchorSelector = cascadia.MustCompile("a[href]")

// Link is one anchor found in a page body.
type Link struct {
	Href     string `json:"href"`
	Text     string `json:"text"`
	Resolved string `json:"resolved"`
	// Internal is true for links to the Canvas host itself.
	Internal bool `json:"internal"`
	File     bool `json:"file"`
	// NewTab is true when the anchor already has target="_blank".
	NewTab bool `json:"newTab"`
	// Rewrite is true when AddTargetBlank would change this anchor.
	Rewrite bool `json:"rewrite"`
}

// Analyze lists the anchors of body in document order. Relative hrefs are
// resolved against baseURL when it is non-empty.
func Analyze(body, baseURL string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var base *url.URL
	if baseURL != "" {
		if base, err = url.Parse(baseURL); err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
	}

	var out []Link
	doc.FindMatcher(anchorSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target, _ := s.Attr("target")
		l := Link{
			Href:   href,
			Text:   strings.Join(strings.Fields(s.Text()), " "),
			NewTab: strings.EqualFold(strings.TrimSpace(target), "_blank"),
		}
		if !skippable(href) {
			l.Resolved = resolve(href, base)
			l.Rewrite = !l.NewTab
		}
		if base != nil && l.Resolved != "" {
			l.Internal = IsSameHost(l.Resolved, base.Host)
		}
		l.File = l.Resolved != "" && IsFile(l.Resolved)
		out = append(out, l)
	})
	return out, nil
}

// AddTargetBlank adds target="_blank" rel="noopener noreferrer" to every
// anchor with a real href that does not already open in a new tab. Any
// existing target and rel attributes on those anchors are replaced. It
// returns the new body and the number of anchors changed.
func AddTargetBlank(body string) (string, int, error) {
	var out bytes.Buffer
	out.Grow(len(body) + 64)

	z := html.NewTokenizer(strings.NewReader(body))
	changed := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return "", 0, fmt.Errorf("tokenizing HTML: %w", err)
			}
			return out.String(), changed, nil
		}

		raw := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		// Raw is only valid until the next call; copy before Token().
		rawCopy := append([]byte(nil), raw...)
		tok := z.Token()
		if tok.Data != "a" || !needsNewTab(tok) {
			out.Write(rawCopy)
			continue
		}

		writeAnchor(&out, tok, tt == html.SelfClosingTagToken)
		changed++
	}
}

func needsNewTab(tok html.Token) bool {
	hasHref := false
	for _, a := range tok.Attr {
		switch strings.ToLower(a.Key) {
		case "href":
			if skippable(a.Val) {
				return false
			}
			hasHref = true
		case "target":
			if strings.EqualFold(strings.TrimSpace(a.Val), "_blank") {
				return false
			}
		}
	}
	return hasHref
}

func writeAnchor(w *bytes.Buffer, tok html.Token, selfClosing bool) {
	w.WriteString("<a")
	for _, a := range tok.Attr {
		switch strings.ToLower(a.Key) {
		case "target", "rel":
			continue
		}
		w.WriteByte(' ')
		if a.Namespace != "" {
			w.WriteString(a.Namespace)
			w.WriteByte(':')
		}
		w.WriteString(a.Key)
		w.WriteString(`="`)
		w.WriteString(html.EscapeString(a.Val))
		w.WriteByte('"')
	}
	w.WriteString(` target="_blank" rel="` + relNewTab + `"`)
	if selfClosing {
		w.WriteString(" />")
		return
	}
	w.WriteByte('>')
}
