package officehours

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TimeRange is a normalized start/end pair in "H:MM AM" form.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// timeRangePattern matches H[:MM][period]-H[:MM]period at the start of the input.
// The trailing period is mandatory; the start period is optional.
var timeRangePattern = regexp.MustCompile(
	`^(?i)(\d{1,2})(?::(\d{2}))?\s*(a\.?\s?m\.?|p\.?\s?m\.?)?\s*[-–—]\s*(\d{1,2})(?::(\d{2}))?\s*(a\.?\s?m\.?|p\.?\s?m\.?)`,
)

// ParseTimeRange normalizes a free-form range such as "9-10am" or
// "12:30-1pm". The whole input (ignoring surrounding space) must be a range.
func ParseTimeRange(s string) (TimeRange, bool) {
	s = strings.TrimSpace(s)
	tr, n, ok := matchTimeRange(s)
	if !ok || n != len(s) {
		return TimeRange{}, false
	}
	return tr, true
}

// matchTimeRange parses a range at the start of s and returns the number of
// bytes consumed.
func matchTimeRange(s string) (TimeRange, int, bool) {
	m := timeRangePattern.FindStringSubmatchIndex(s)
	if m == nil {
		return TimeRange{}, 0, false
	}
	end := m[1]
	// "9-10 amazing" is not a range.
	if r, _ := utf8.DecodeRuneInString(s[end:]); r != utf8.RuneError && unicode.IsLetter(r) {
		return TimeRange{}, 0, false
	}

	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return s[m[2*i]:m[2*i+1]]
	}

	startHour, startMin, ok := clock(group(1), group(2))
	if !ok {
		return TimeRange{}, 0, false
	}
	endHour, endMin, ok := clock(group(4), group(5))
	if !ok {
		return TimeRange{}, 0, false
	}
	endPeriod := period(group(6))
	startPeriod := period(group(3))
	if startPeriod == "" {
		startPeriod = inferStartPeriod(startHour, endHour, endPeriod)
	}

	return TimeRange{
		Start: formatClock(startHour, startMin, startPeriod),
		End:   formatClock(endHour, endMin, endPeriod),
	}, end, true
}

// inferStartPeriod fills in an omitted start period. Only a PM end period
// can move the start: a 12 o'clock start stays at noon, and a start of 10 or
// 11 that is numerically after the end hour is a morning that crosses noon.
// "10-9pm" therefore reads as 10 AM to 9 PM, typo or not; that case is
// ambiguous and deliberately not special-cased.
func inferStartPeriod(startHour, endHour int, endPeriod string) string {
	if endPeriod != "PM" {
		return endPeriod
	}
	switch {
	case startHour == 12:
		return "PM"
	case startHour > endHour && startHour >= 10:
		return "AM"
	default:
		return endPeriod
	}
}

func clock(hour, minute string) (int, int, bool) {
	h, err := strconv.Atoi(hour)
	if err != nil || h < 1 || h > 12 {
		return 0, 0, false
	}
	if minute == "" {
		return h, 0, true
	}
	mm, err := strconv.Atoi(minute)
	if err != nil || mm > 59 {
		return 0, 0, false
	}
	return h, mm, true
}

func period(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "p") {
		return "PM"
	}
	return "AM"
}

func formatClock(hour, minute int, period string) string {
	return fmt.Sprintf("%d:%02d %s", hour, minute, period)
}
