package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayOffsetPattern matches "+N day" style annotations rendered next to a
// displayed time, e.g. "+1" or "+ 2 days".
var dayOffsetPattern = regexp.MustCompile(`\+\s*(\d+)`)

// ParseClock converts a displayed "HH:MM" 24-hour clock string into an
// absolute instant on the reference date, advanced by N calendar days when a
// "+N day" annotation accompanies the time. All times are treated as UTC
// wall-clock; the source site renders local-to-route times without
// conversion, so no timezone math is applied.
func ParseClock(clock string, ref time.Time, annotations []string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return time.Time{}, &ParseError{Input: clock, Reason: "expected HH:MM"}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, &ParseError{Input: clock, Reason: "hour is not an integer"}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, &ParseError{Input: clock, Reason: "minute is not an integer"}
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, &ParseError{Input: clock, Reason: "hour out of range"}
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, &ParseError{Input: clock, Reason: "minute out of range"}
	}

	t := time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, time.UTC)
	if offset := dayOffset(annotations); offset > 0 {
		t = t.AddDate(0, 0, offset)
	}
	return t, nil
}

// dayOffset extracts the day count from the first parseable annotation. The
// source site renders at most one annotation per time, so the first wins.
func dayOffset(annotations []string) int {
	for _, a := range annotations {
		m := dayOffsetPattern.FindStringSubmatch(a)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n
	}
	return 0
}
