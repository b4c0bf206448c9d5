package query

import "strings"

// Mode classifies a raw query string and governs which backend query shape is used.
type Mode int

const (
	ModeGeneral Mode = iota
	ModePhrase
	ModeTitle
	ModeCategory
)

func (m Mode) String() string {
	switch m {
	case ModePhrase:
		return "phrase"
	case ModeTitle:
		return "title"
	case ModeCategory:
		return "category"
	default:
		return "general"
	}
}

const (
	titlePrefix    = "title:"
	categoryPrefix = "category:"
)

// Classify inspects a raw query string and returns its mode together with the
// term to pass downstream (quotes/prefix already stripped). It never fails:
// an empty string classifies as general with an empty term.
//
// Priority order: quoted phrase, title: prefix, category: prefix, general.
// Quote detection deliberately checks only that the first and last characters
// are the same quote char — nested or unbalanced quotes inside are passed
// through as-is.
func Classify(raw string) (Mode, string) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return ModeGeneral, ""
	}

	if len(q) > 2 && isQuote(q[0]) && q[len(q)-1] == q[0] {
		return ModePhrase, q[1 : len(q)-1]
	}
	if strings.HasPrefix(q, titlePrefix) {
		return ModeTitle, strings.TrimSpace(strings.TrimPrefix(q, titlePrefix))
	}
	if strings.HasPrefix(q, categoryPrefix) {
		return ModeCategory, strings.TrimSpace(strings.TrimPrefix(q, categoryPrefix))
	}
	return ModeGeneral, q
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}
