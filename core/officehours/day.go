package officehours

import "strings"

// Weekdays lists the canonical day names in schedule order.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var dayAliases = map[string]string{
	"mon": "Monday", "monday": "Monday",
	"tue": "Tuesday", "tues": "Tuesday", "tuesday": "Tuesday",
	"wed": "Wednesday", "weds": "Wednesday", "wednesday": "Wednesday",
	"thu": "Thursday", "thur": "Thursday", "thurs": "Thursday", "thursday": "Thursday",
	"fri": "Friday", "friday": "Friday",
	"sat": "Saturday", "saturday": "Saturday",
	"sun": "Sunday", "sunday": "Sunday",

	"mondays": "Monday", "tuesdays": "Tuesday", "wednesdays": "Wednesday",
	"thursdays": "Thursday", "fridays": "Friday", "saturdays": "Saturday", "sundays": "Sunday",
}

// NormalizeDay maps a day name or abbreviation to its canonical form.
// Unrecognized tokens are returned unchanged.
func NormalizeDay(token string) string {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(token), "."))
	if day, ok := dayAliases[key]; ok {
		return day
	}
	return token
}

// IsWeekday reports whether day is one of the canonical names.
func IsWeekday(day string) bool {
	return dayIndex(day) >= 0
}

func dayIndex(day string) int {
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}
