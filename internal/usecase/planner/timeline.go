package planner

import (
	"fmt"
	"time"

	"github.com/eslsoft/studyplan/internal/entity"
)

// WeekMarker labels the start of each study week up to the exam.
type WeekMarker struct {
	Label string
	Date  time.Time
}

// TimelineBar is one placed schedule entry.
type TimelineBar struct {
	Entry        entity.ScheduleEntry
	Label        string
	Start        time.Time
	End          time.Time
	DurationDays int
	Started      bool
}

// TimelineRow groups the bars of one category.
type TimelineRow struct {
	CategoryID   int
	CategoryName string
	Bars         []TimelineBar
}

// Timeline is the Gantt view of a schedule.
type Timeline struct {
	Today    time.Time
	ExamDate time.Time
	Weeks    []WeekMarker
	Rows     []TimelineRow
	Unplaced []entity.ScheduleEntry
}

// maxWeekMarkers caps the week axis at roughly ten years.
const maxWeekMarkers = 520

// BuildTimeline arranges the schedule by category in catalog order.
func BuildTimeline(categories []entity.Category, schedule []entity.ScheduleEntry, examDate, now time.Time) Timeline {
	today := entity.StartOfDay(now)
	examDay := entity.StartOfDay(examDate)
	tl := Timeline{Today: today, ExamDate: examDay}

	for i := 0; i < maxWeekMarkers; i++ {
		date := today.AddDate(0, 0, 7*i)
		if date.After(examDay) {
			break
		}
		tl.Weeks = append(tl.Weeks, WeekMarker{Label: fmt.Sprintf("Week %d", i), Date: date})
	}

	byCategory := make(map[int][]TimelineBar, len(categories))
	for _, entry := range schedule {
		if !entry.Placed() {
			tl.Unplaced = append(tl.Unplaced, entry)
			continue
		}
		byCategory[entry.CategoryID] = append(byCategory[entry.CategoryID], TimelineBar{
			Entry:        entry,
			Label:        entry.Item.ShortName(),
			Start:        entity.StartOfDay(*entry.StartDate),
			End:          entity.StartOfDay(*entry.EndDate),
			DurationDays: entry.SpanDays(),
			Started:      entry.Item.Started(),
		})
	}

	for _, cat := range categories {
		bars := byCategory[cat.ID]
		if len(bars) == 0 {
			continue
		}
		tl.Rows = append(tl.Rows, TimelineRow{CategoryID: cat.ID, CategoryName: cat.Name, Bars: bars})
	}
	return tl
}
