package clock

import (
	"fmt"
	"time"
)

// Layout is the canonical timestamp format used in storage and API
// responses. Always UTC, second precision, lexicographically sortable.
const Layout = "2006-01-02T15:04:05Z"

func Now() string {
	return time.Now().UTC().Format(Layout)
}

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a valid time: %s", s)
	}
	return t, nil
}

// Duration duration between two times represented as strings
func Duration(from, to string) (time.Duration, error) {
	fromTime, err := Parse(from)
	if err != nil {
		return 0, err
	}
	toTime, err := Parse(to)
	if err != nil {
		return 0, err
	}
	return toTime.Sub(fromTime), nil
}

// Expired reports whether a window starting at the given timestamp has
// run out at the moment now. The boundary is exclusive on the valid
// side: at exactly start+window the window is already expired.
func Expired(start string, window time.Duration, now time.Time) bool {
	startTime, err := Parse(start)
	if err != nil {
		return true
	}
	return !now.UTC().Before(startTime.Add(window))
}
