package entity

import (
	"strings"
	"time"
)

// Level grades both the priority and the difficulty of a study item.
type Level string

const (
	LevelUnspecified Level = ""
	LevelHigh        Level = "high"
	LevelMedium      Level = "medium"
	LevelLow         Level = "low"
	LevelCompleted   Level = "completed"
)

// Levels lists the levels a user may assign, most urgent first.
var Levels = []Level{LevelHigh, LevelMedium, LevelLow}

// Rank orders levels for scheduling: high=0, medium=1, low=2, anything else=3.
func (l Level) Rank() int {
	switch l {
	case LevelHigh:
		return 0
	case LevelMedium:
		return 1
	case LevelLow:
		return 2
	default:
		return 3
	}
}

// Assignable reports whether a user may set this level as a priority.
func (l Level) Assignable() bool {
	return l == LevelHigh || l == LevelMedium || l == LevelLow
}

// Valid reports whether the level is one of the known values.
func (l Level) Valid() bool {
	return l.Assignable() || l == LevelCompleted
}

// ParseLevel converts an arbitrary string into a Level value.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return LevelHigh
	case "medium":
		return LevelMedium
	case "low":
		return LevelLow
	case "completed":
		return LevelCompleted
	default:
		return LevelUnspecified
	}
}

// WeekdayNames are Monday-first labels matching WeeklyAvailability indexes.
var WeekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MondayIndex maps a time.Weekday onto the Monday=0..Sunday=6 scale.
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
