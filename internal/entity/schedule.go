package entity

import (
	"math"
	"time"
)

// ScheduleEntry is the allocator's date range for one study item. Entries are
// rebuilt in full on every allocation run.
type ScheduleEntry struct {
	Item         StudyItem
	CategoryID   int
	CategoryName string
	StartDate    *time.Time
	EndDate      *time.Time
	DaysNeeded   int
}

// Placed reports whether the allocator found at least one study day.
func (e ScheduleEntry) Placed() bool {
	return e.StartDate != nil && e.EndDate != nil
}

// SpanDays is the inclusive calendar length of the entry, 0 when unplaced.
func (e ScheduleEntry) SpanDays() int {
	if !e.Placed() {
		return 0
	}
	return int(math.Round(StartOfDay(*e.EndDate).Sub(StartOfDay(*e.StartDate)).Hours()/24)) + 1
}
