package officehours

import (
	stdhtml "html"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/text/unicode/norm"
)

// DefaultMeetingProviders are URL fragments that identify a virtual meeting link.
var DefaultMeetingProviders = []string{"zoom", "teams.microsoft", "meet.google", "webex"}

var (
	// "Office C162", "In Person Room C162", "Office: Room B204".
	roomPattern = regexp.MustCompile(`(?i:\b(?:office|in[\s-]*person))[\s:#-]*(?i:room)?[\s:#-]*\b([A-Z]\d+)\b`)

	virtualMarker  = regexp.MustCompile(`(?i)\b(?:zoom|virtual|online|teams)\s*:`)
	inPersonMarker = regexp.MustCompile(`(?i)\bin[\s-]*person(?:\s+(?:room\s+)?[A-Z]\d+)?\s*:`)

	// The note stops at a tag or a sentence terminator; a period inside a
	// token (an address, a domain) does not end the sentence.
	notePattern = regexp.MustCompile(`(?i)\bemail\s+for\s+(?:additional|different)(?:[^<.!?]|\.[^\s<])*`)

	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)

	hrefMatcher = cascadia.MustCompile("[href]")
)

// Config configures an Extractor.
type Config struct {
	// MeetingProviders are matched case-insensitively against href values.
	MeetingProviders []string

	Logger *slog.Logger
}

// Extractor pulls office hours out of Canvas front-page HTML. It holds no
// per-call state and is safe for concurrent use.
type Extractor struct {
	providers []string
	logger    *slog.Logger
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	providers := cfg.MeetingProviders
	if len(providers) == 0 {
		providers = DefaultMeetingProviders
	}
	lowered := make([]string, len(providers))
	for i, p := range providers {
		lowered[i] = strings.ToLower(p)
	}
	return &Extractor{providers: lowered, logger: cfg.Logger}
}

var defaultExtractor = New(Config{})

// Extract runs the default Extractor.
func Extract(html string) ParsedOfficeHours {
	return defaultExtractor.Extract(html)
}

// ExtractBytes runs the default Extractor on raw bytes.
func ExtractBytes(b []byte) (ParsedOfficeHours, error) {
	return defaultExtractor.ExtractBytes(b)
}

// ExtractBytes rejects input that is not UTF-8 text and otherwise behaves
// like Extract.
func (e *Extractor) ExtractBytes(b []byte) (ParsedOfficeHours, error) {
	if !utf8.Valid(b) {
		return Empty(), ErrInvalidInput
	}
	return e.Extract(string(b)), nil
}

// Extract finds the room, meeting link, virtual and in-person blocks and
// notes in html. Every step degrades to "nothing found" independently; a
// failure inside the matchers yields the empty result.
func (e *Extractor) Extract(html string) (result ParsedOfficeHours) {
	defer func() {
		if r := recover(); r != nil {
			e.log().Warn("officehours: extraction aborted", "panic", r)
			result = Empty()
		}
	}()

	result = Empty()
	text := TextView(html)

	result.Room = matchRoom(text)
	result.MeetingLink = e.findMeetingLink(html)

	var slots []Slot
	slots = append(slots, findBlock(text, inPersonMarker, InPerson)...)
	slots = append(slots, findBlock(text, virtualMarker, Virtual)...)
	result.Schedule = groupByDay(slots)

	if note := findNote(html); note != "" {
		result.AdditionalNotes = append(result.AdditionalNotes, note)
	}

	e.log().Debug("officehours: extracted",
		"days", len(result.Schedule),
		"room", result.Room,
		"link", result.MeetingLink != "",
		"notes", len(result.AdditionalNotes))
	return result
}

func (e *Extractor) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// TextView is an approximate plain-text rendering of html: tags become
// spaces, entities are decoded and non-breaking spaces are flattened.
func TextView(html string) string {
	s := tagPattern.ReplaceAllString(html, " ")
	s = stdhtml.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return norm.NFC.String(s)
}

// matchRoom is swapped out in tests.
var matchRoom = findRoom

func findRoom(text string) string {
	m := roomPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func (e *Extractor) findMeetingLink(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.log().Debug("officehours: parsing HTML for links", "error", err)
		return ""
	}
	var link string
	doc.FindMatcher(hrefMatcher).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		for _, p := range e.providers {
			if strings.Contains(lower, p) {
				link = href
				return false
			}
		}
		return true
	})
	return link
}

// findBlock locates the first marker whose following run of day/time clauses
// yields at least one slot.
func findBlock(text string, marker *regexp.Regexp, medium Medium) []Slot {
	for _, loc := range marker.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		end := runEnd(tokenize(rest))
		if end == 0 {
			continue
		}
		if slots := ParseScheduleLine(rest[:end], medium); len(slots) > 0 {
			return slots
		}
	}
	return nil
}

// runEnd returns the byte offset where a run of clauses ends. A clause is an
// optional day word (and comma) followed by a time range; clauses continue
// only across a separator.
func runEnd(toks []token) int {
	end := 0
	i := 0
	for {
		j := i
		if j < len(toks) && toks[j].kind == tokWord {
			j++
			if j < len(toks) && toks[j].kind == tokPunct && toks[j].text == "," {
				j++
			}
		}
		if j >= len(toks) || toks[j].kind != tokTimeRange {
			return end
		}
		end = toks[j].end
		j++
		if j >= len(toks) || toks[j].kind != tokSeparator {
			return end
		}
		i = j + 1
	}
}

func findNote(html string) string {
	raw := notePattern.FindString(html)
	if raw == "" {
		return ""
	}
	note := stdhtml.UnescapeString(raw)
	note = strings.ReplaceAll(note, "\u00a0", " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(note, " "))
}

// groupByDay merges slots per weekday, keeping parse order within a day, and
// emits canonical Monday-to-Sunday order. Non-weekday labels are dropped.
func groupByDay(slots []Slot) []DaySchedule {
	byDay := make(map[string][]TimeSlot, len(Weekdays))
	for _, s := range slots {
		if !IsWeekday(s.Day) {
			continue
		}
		byDay[s.Day] = append(byDay[s.Day], TimeSlot{Start: s.Start, End: s.End, Medium: s.Medium})
	}
	schedule := []DaySchedule{}
	for _, day := range Weekdays {
		if times := byDay[day]; len(times) > 0 {
			schedule = append(schedule, DaySchedule{Day: day, Times: times})
		}
	}
	return schedule
}
