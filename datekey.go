package main

import (
	"fmt"
	"time"
)

// dateKeyLayout is the canonical per-day partition key format for all logs.
const dateKeyLayout = "2006-01-02"

// logZone is the fixed UTC+05:30 offset every date key is computed in.
// Keys must not depend on the host timezone or a tz database lookup.
var logZone = time.FixedZone("UTC+05:30", 5*60*60+30*60)

// todayKey returns the YYYY-MM-DD key for now, shifted to logZone.
func todayKey(now time.Time) string {
	return now.In(logZone).Format(dateKeyLayout)
}

// daysAgoKey returns the key for the calendar day n days before todayKey(now).
// AddDate works on the shifted calendar date, so month/year boundaries and
// leap days are handled by the time package.
func daysAgoKey(now time.Time, n int) string {
	return now.In(logZone).AddDate(0, 0, -n).Format(dateKeyLayout)
}

// parseDateKey validates a YYYY-MM-DD key and returns midnight UTC of that day.
func parseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q, expected YYYY-MM-DD", key)
	}
	return t, nil
}

// isDateKey reports whether s is a well-formed YYYY-MM-DD key.
func isDateKey(s string) bool {
	_, err := parseDateKey(s)
	return err == nil
}

// windowKeys returns the ascending keys of the last `days` days, ending today.
// days <= 0 yields nil.
func windowKeys(now time.Time, days int) []string {
	if days <= 0 {
		return nil
	}
	keys := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		keys = append(keys, daysAgoKey(now, i))
	}
	return keys
}

// keysBetween returns every key from start to end inclusive, ascending.
func keysBetween(start, end string) ([]string, error) {
	s, err := parseDateKey(start)
	if err != nil {
		return nil, err
	}
	e, err := parseDateKey(end)
	if err != nil {
		return nil, err
	}
	if s.After(e) {
		return nil, fmt.Errorf("start %s is after end %s", start, end)
	}
	var keys []string
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(dateKeyLayout))
	}
	return keys, nil
}
