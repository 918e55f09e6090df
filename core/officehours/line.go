package officehours

// clause shapes recognised by the line parser.
type clauseKind int

const (
	clauseNone clauseKind = iota // nothing usable, dropped
	clauseDay                    // <word> <time-range>
	clauseBare                   // <time-range> with no day before it
)

// lineState is the accumulator threaded through the clause fold.
type lineState struct {
	lastDay string
	slots   []Slot
}

// ParseScheduleLine parses text such as "Tuesday 9-10am; 3:15-3:45pm & Wed
// 10-11am" into slots tagged with medium. Clauses that match neither a day
// clause nor a bare time range are skipped; a bare range belongs to the most
// recent day, and is skipped if no day has been seen yet.
func ParseScheduleLine(text string, medium Medium) []Slot {
	st := lineState{}
	for _, c := range splitClauses(tokenize(text)) {
		st = foldClause(st, c, medium)
	}
	if st.slots == nil {
		return []Slot{}
	}
	return st.slots
}

func foldClause(st lineState, clause []token, medium Medium) lineState {
	kind, day, rng := classifyClause(clause)
	switch kind {
	case clauseDay:
		st.lastDay = day
	case clauseBare:
		if st.lastDay == "" {
			return st
		}
	default:
		return st
	}
	st.slots = append(st.slots, Slot{
		Day:    st.lastDay,
		Start:  rng.Start,
		End:    rng.End,
		Medium: medium,
	})
	return st
}

// classifyClause finds the first time range in a clause and decides whether
// a day word leads it. A single comma between the word and the range is
// tolerated ("Tuesday, 9-10am").
func classifyClause(clause []token) (clauseKind, string, TimeRange) {
	at := -1
	for i, t := range clause {
		if t.kind == tokTimeRange {
			at = i
			break
		}
	}
	if at < 0 {
		return clauseNone, "", TimeRange{}
	}
	rng := clause[at].rng

	prev := at - 1
	if prev >= 0 && clause[prev].kind == tokPunct && clause[prev].text == "," {
		prev--
	}
	if prev >= 0 && clause[prev].kind == tokWord {
		return clauseDay, NormalizeDay(clause[prev].text), rng
	}
	return clauseBare, "", rng
}
