package officehours

import (
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokTimeRange
	tokSeparator
	tokNumber
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokWord:
		return "word"
	case tokTimeRange:
		return "time-range"
	case tokSeparator:
		return "separator"
	case tokNumber:
		return "number"
	default:
		return "punct"
	}
}

// token is a lexeme with its byte span in the source text.
type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
	rng   TimeRange // set for tokTimeRange
}

// tokenize splits schedule text into words, time ranges, clause separators
// (";" and "&"), bare numbers and other punctuation. Whitespace is dropped.
func tokenize(s string) []token {
	var toks []token
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			i += size

		case r == ';' || r == '&':
			toks = append(toks, token{kind: tokSeparator, text: s[i : i+size], start: i, end: i + size})
			i += size

		case unicode.IsDigit(r):
			if tr, n, ok := matchTimeRange(s[i:]); ok {
				toks = append(toks, token{kind: tokTimeRange, text: s[i : i+n], start: i, end: i + n, rng: tr})
				i += n
				continue
			}
			j := i + size
			for j < len(s) {
				r2, sz := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsDigit(r2) {
					break
				}
				j += sz
			}
			toks = append(toks, token{kind: tokNumber, text: s[i:j], start: i, end: j})
			i = j

		case unicode.IsLetter(r):
			j := i + size
			for j < len(s) {
				r2, sz := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsLetter(r2) {
					break
				}
				j += sz
			}
			// Keep an abbreviation's period with the word ("Tues.").
			if j < len(s) && s[j] == '.' {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: s[i:j], start: i, end: j})
			i = j

		default:
			toks = append(toks, token{kind: tokPunct, text: s[i : i+size], start: i, end: i + size})
			i += size
		}
	}
	return toks
}

// splitClauses groups tokens into clauses delimited by separator tokens.
// Empty clauses are kept so callers see the original clause count.
func splitClauses(toks []token) [][]token {
	clauses := [][]token{nil}
	for _, t := range toks {
		if t.kind == tokSeparator {
			clauses = append(clauses, nil)
			continue
		}
		clauses[len(clauses)-1] = append(clauses[len(clauses)-1], t)
	}
	return clauses
}
