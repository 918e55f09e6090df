// Package officehours recovers a structured weekly office-hours schedule
// from free-form HTML written in the Canvas rich-text editor.
//
// Extraction is best effort: missing pieces come back as zero values and
// unparseable fragments are dropped, never reported as errors.
package officehours

import (
	"encoding/json"
	"errors"
)

// Medium says whether a slot is held in person or online.
type Medium string

const (
	InPerson Medium = "in-person"
	Virtual  Medium = "virtual"
)

// ErrInvalidInput is returned by ExtractBytes when the input is not text.
var ErrInvalidInput = errors.New("officehours: input is not valid UTF-8 text")

// TimeSlot is one block of time on a given day.
type TimeSlot struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Medium Medium `json:"medium"`
}

// DaySchedule groups the slots of one weekday. Times is never empty.
type DaySchedule struct {
	Day   string     `json:"day"`
	Times []TimeSlot `json:"times"`
}

// ParsedOfficeHours is the result of Extract. An empty Room or MeetingLink
// means none was found.
type ParsedOfficeHours struct {
	Schedule        []DaySchedule `json:"schedule"`
	Room            string        `json:"room"`
	MeetingLink     string        `json:"meetingLink"`
	AdditionalNotes []string      `json:"additionalNotes"`
}

// Empty returns the "no data extracted" result.
func Empty() ParsedOfficeHours {
	return ParsedOfficeHours{
		Schedule:        []DaySchedule{},
		AdditionalNotes: []string{},
	}
}

// HasSchedule reports whether at least one slot was found.
func (p ParsedOfficeHours) HasSchedule() bool {
	return len(p.Schedule) > 0
}

// MarshalJSON encodes absent room and link as null.
func (p ParsedOfficeHours) MarshalJSON() ([]byte, error) {
	out := struct {
		Schedule        []DaySchedule `json:"schedule"`
		Room            *string       `json:"room"`
		MeetingLink     *string       `json:"meetingLink"`
		AdditionalNotes []string      `json:"additionalNotes"`
	}{
		Schedule:        p.Schedule,
		AdditionalNotes: p.AdditionalNotes,
	}
	if out.Schedule == nil {
		out.Schedule = []DaySchedule{}
	}
	if out.AdditionalNotes == nil {
		out.AdditionalNotes = []string{}
	}
	if p.Room != "" {
		out.Room = &p.Room
	}
	if p.MeetingLink != "" {
		out.MeetingLink = &p.MeetingLink
	}
	return json.Marshal(out)
}

// Slot is a single line-parser result, before grouping by day.
type Slot struct {
	Day    string `json:"day"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Medium Medium `json:"medium"`
}
