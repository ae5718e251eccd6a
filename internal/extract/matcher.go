package extract

import (
	"fmt"
	"strings"
)

// Direction identifies one half of a round-trip search.
type Direction int

const (
	Outbound Direction = iota
	Inbound
)

func (d Direction) String() string {
	if d == Inbound {
		return "inbound"
	}
	return "outbound"
}

// Criteria holds the user-supplied time hints used to pick one result row
// per direction. Empty strings are absent hints and impose no constraint.
type Criteria struct {
	OutboundStart string
	OutboundEnd   string
	InboundStart  string
	InboundEnd    string
}

// hints returns the non-absent hints relevant to the given direction.
func (c Criteria) hints(dir Direction) []string {
	var pair [2]string
	if dir == Inbound {
		pair = [2]string{c.InboundStart, c.InboundEnd}
	} else {
		pair = [2]string{c.OutboundStart, c.OutboundEnd}
	}

	var hints []string
	for _, h := range pair {
		if h != "" {
			hints = append(hints, strings.ToLower(h))
		}
	}
	return hints
}

// MatchRow scans the rows' displayed itinerary texts in document order and
// returns the index of the first row for which every provided hint is a
// case-insensitive substring. It fails with ErrNoMatch when nothing matches,
// and also when no hint is provided for the direction: a run without
// criteria is rejected, never resolved to the first row.
func MatchRow(rowTexts []string, criteria Criteria, dir Direction) (int, error) {
	hints := criteria.hints(dir)
	if len(hints) == 0 {
		return 0, fmt.Errorf("%s: no criteria provided: %w", dir, ErrNoMatch)
	}

	for i, text := range rowTexts {
		lower := strings.ToLower(text)
		matched := true
		for _, hint := range hints {
			if !strings.Contains(lower, hint) {
				matched = false
				break
			}
		}
		if matched {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%s: %d rows scanned: %w", dir, len(rowTexts), ErrNoMatch)
}
