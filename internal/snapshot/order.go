package snapshot

import (
	"sort"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	hoursPerDay    = 24
)

// Order returns tasks in widget priority order: incomplete before completed,
// then timed before untimed, then by time of day ascending. Ties fall back to
// id order, then input order. The input slice is not modified.
func Order(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func less(a, b Task) bool {
	if a.Completed != b.Completed {
		return !a.Completed
	}

	am, aTimed := ParseClock(a.Time)
	bm, bTimed := ParseClock(b.Time)
	if aTimed != bTimed {
		return aTimed
	}
	if aTimed && am != bm {
		return am < bm
	}

	return a.ID < b.ID
}

// ParseClock parses an "H:MM" or "HH:MM" time of day into minutes after
// midnight. ok is false for empty or out-of-range values.
func ParseClock(s string) (minutes int, ok bool) {
	s = strings.TrimSpace(s)
	h, m, found := strings.Cut(s, ":")
	if !found || len(m) != 2 || h == "" || len(h) > 2 || !digits(h) || !digits(m) {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour >= hoursPerDay {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute >= minutesPerHour {
		return 0, false
	}
	return hour*minutesPerHour + minute, true
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
