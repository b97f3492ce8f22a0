package main

import (
	"sort"
	"time"
)

// streakInfo holds the current and longest consecutive-day logging streaks.
type streakInfo struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// computeStreak calculates streaks from the date keys of a user's meal logs.
// Keys may repeat and arrive in any order; malformed keys are ignored.
//
// The current streak ends today, or yesterday if nothing is logged yet today
// (one day of grace). Two missed days reset it to 0. The longest streak is the
// longest run of consecutive days anywhere in the history, and is never less
// than the current streak.
func computeStreak(dates []string, now time.Time) streakInfo {
	present := make(map[string]bool, len(dates))
	for _, d := range dates {
		if isDateKey(d) {
			present[d] = true
		}
	}
	if len(present) == 0 {
		return streakInfo{}
	}

	// Current streak: pick the anchor, then walk backward one day at a time.
	var current int
	start := -1
	if present[todayKey(now)] {
		start = 0
	} else if present[daysAgoKey(now, 1)] {
		start = 1
	}
	if start >= 0 {
		for n := start; present[daysAgoKey(now, n)]; n++ {
			current++
		}
	}

	// Longest streak: scan distinct keys ascending. Zero-padded keys sort
	// lexicographically in calendar order.
	asc := make([]string, 0, len(present))
	for d := range present {
		asc = append(asc, d)
	}
	sort.Strings(asc)

	longest, run := 1, 1
	for i := 1; i < len(asc); i++ {
		prev, _ := parseDateKey(asc[i-1])
		if prev.AddDate(0, 0, 1).Format(dateKeyLayout) == asc[i] {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}

	return streakInfo{Current: current, Longest: max(longest, current)}
}

// streakMessage returns the motivational line shown under the streak counter.
func streakMessage(current int) string {
	switch {
	case current == 0:
		return "Start your streak today!"
	case current == 1:
		return "Great start! Keep going!"
	case current < 7:
		return "You're on fire!"
	case current < 30:
		return "Incredible consistency!"
	default:
		return "You're a legend!"
	}
}

// nextStreakMilestone returns the next milestone (7, 30 or 100 days) above current.
func nextStreakMilestone(current int) int {
	switch {
	case current < 7:
		return 7
	case current < 30:
		return 30
	default:
		return 100
	}
}
