package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/gaurav-prasanna/canvaspipe/core/officehours"
)

// OfficeHoursRenderer renders parsed office hours.
type OfficeHoursRenderer interface {
	Render(oh officehours.ParsedOfficeHours) ([]byte, error)
	Extension() string
}

// OfficeHoursText renders a plain-text summary. When nothing could be
// parsed it prints a neutral pointer to the Canvas page instead.
type OfficeHoursText struct {
	// SourceURL is the Canvas page the hours were read from.
	SourceURL string
}

// Render implements OfficeHoursRenderer.
func (r OfficeHoursText) Render(oh officehours.ParsedOfficeHours) ([]byte, error) {
	var buf bytes.Buffer

	if !oh.HasSchedule() {
		buf.WriteString("Student hours are posted on the course's Canvas page.\n")
		if r.SourceURL != "" {
			fmt.Fprintf(&buf, "See %s\n", r.SourceURL)
		}
		return buf.Bytes(), nil
	}

	buf.WriteString("Weekly Student Hours\n\n")
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for _, day := range oh.Schedule {
		for i, slot := range day.Times {
			label := day.Day
			if i > 0 {
				label = ""
			}
			fmt.Fprintf(tw, "%s\t%s - %s\t%s\n", label, slot.Start, slot.End, slot.Medium)
		}
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}

	if oh.Room != "" || oh.MeetingLink != "" {
		buf.WriteString("\n")
	}
	if oh.Room != "" {
		fmt.Fprintf(&buf, "In-person location: Room %s\n", oh.Room)
	}
	if oh.MeetingLink != "" {
		fmt.Fprintf(&buf, "Virtual hours: %s\n", oh.MeetingLink)
	}
	if len(oh.AdditionalNotes) > 0 {
		buf.WriteString("\n")
		for _, note := range oh.AdditionalNotes {
			fmt.Fprintf(&buf, "%s.\n", strings.TrimSuffix(note, "."))
		}
	}
	return buf.Bytes(), nil
}

// Extension implements OfficeHoursRenderer.
func (r OfficeHoursText) Extension() string { return ".txt" }

// OfficeHoursJSON renders the ParsedOfficeHours record.
type OfficeHoursJSON struct{}

// Render implements OfficeHoursRenderer.
func (OfficeHoursJSON) Render(oh officehours.ParsedOfficeHours) ([]byte, error) {
	data, err := json.MarshalIndent(oh, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling office hours: %w", err)
	}
	return append(data, '\n'), nil
}

// Extension implements OfficeHoursRenderer.
func (OfficeHoursJSON) Extension() string { return ".json" }

// OfficeHoursICS renders one weekly recurring event per time slot between
// TermStart and TermEnd. Times are floating (no time zone): they mean the
// wall-clock time wherever the calendar is opened.
type OfficeHoursICS struct {
	TermStart time.Time
	TermEnd   time.Time
	// Summary is the event title, e.g. "MTH 122 Student Hours".
	Summary string
	// CourseID keeps event UIDs distinct between courses.
	CourseID string
	// Now stamps DTSTAMP; defaults to time.Now.
	Now func() time.Time
	// Logger reports skipped slots; defaults to slog.Default.
	Logger *slog.Logger
}

const (
	icsFloating = "20060102T150405"
	slotLayout  = "3:04 PM"
)

var icsWeekday = map[string]time.Weekday{
	"Monday": time.Monday, "Tuesday": time.Tuesday, "Wednesday": time.Wednesday,
	"Thursday": time.Thursday, "Friday": time.Friday, "Saturday": time.Saturday,
	"Sunday": time.Sunday,
}

// Render implements OfficeHoursRenderer.
func (r OfficeHoursICS) Render(oh officehours.ParsedOfficeHours) ([]byte, error) {
	if r.TermStart.IsZero() || r.TermEnd.IsZero() {
		return nil, fmt.Errorf("calendar export needs a term start and end date")
	}
	if r.TermEnd.Before(r.TermStart) {
		return nil, fmt.Errorf("term end %s is before term start %s",
			r.TermEnd.Format(time.DateOnly), r.TermStart.Format(time.DateOnly))
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	summary := r.Summary
	if summary == "" {
		summary = "Student Hours"
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//canvaspipe//office hours//EN")

	until := r.TermEnd.Format("20060102") + "T235959"
	for _, day := range oh.Schedule {
		wd, ok := icsWeekday[day.Day]
		if !ok {
			continue
		}
		first := firstWeekday(r.TermStart, wd)
		if first.After(r.TermEnd) {
			continue
		}

		for i, slot := range day.Times {
			start, err := atClock(first, slot.Start)
			if err != nil {
				return nil, fmt.Errorf("%s slot %d: %w", day.Day, i, err)
			}
			end, err := atClock(first, slot.End)
			if err != nil {
				return nil, fmt.Errorf("%s slot %d: %w", day.Day, i, err)
			}
			// A VEVENT may not end before it starts.
			if !end.After(start) {
				logger.Warn("skipping office-hours slot that ends before it starts",
					"day", day.Day, "start", slot.Start, "end", slot.End)
				continue
			}

			uid := fmt.Sprintf("officehours-%s-%s-%d@canvaspipe", r.CourseID, strings.ToLower(day.Day), i)
			event := cal.AddEvent(uid)
			event.SetDtStampTime(now())
			event.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsFloating))
			event.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsFloating))
			event.SetProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;UNTIL="+until)
			event.SetSummary(fmt.Sprintf("%s (%s)", summary, slot.Medium))

			switch {
			case slot.Medium == officehours.Virtual && oh.MeetingLink != "":
				event.SetLocation(oh.MeetingLink)
				event.SetURL(oh.MeetingLink)
			case slot.Medium == officehours.InPerson && oh.Room != "":
				event.SetLocation("Room " + oh.Room)
			}
			if len(oh.AdditionalNotes) > 0 {
				event.SetDescription(strings.Join(oh.AdditionalNotes, "\n"))
			}
		}
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("serializing calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension implements OfficeHoursRenderer.
func (OfficeHoursICS) Extension() string { return ".ics" }

func firstWeekday(from time.Time, wd time.Weekday) time.Time {
	d := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(slotLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
