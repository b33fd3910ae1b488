package planner

import (
	"testing"

	"github.com/eslsoft/studyplan/internal/entity"
)

func TestBuildTimeline(t *testing.T) {
	started := item("LKAS 1", entity.LevelHigh, entity.LevelHigh, 4, 2)
	started.HoursSpent = 1
	cats := []entity.Category{
		{ID: 1, Name: "First", Items: []entity.StudyItem{item("X", entity.LevelLow, entity.LevelLow, 2, 1)}},
		{ID: 2, Name: "Second", Items: []entity.StudyItem{started}},
		{ID: 3, Name: "Nothing pending"},
	}
	exam := monday.AddDate(0, 0, 15)
	schedule := Allocate(cats, entity.DefaultWeeklyAvailability, exam, monday)
	tl := BuildTimeline(cats, schedule, exam, monday)

	if len(tl.Weeks) != 3 {
		t.Fatalf("expected 3 week markers, got %d", len(tl.Weeks))
	}
	if tl.Weeks[0].Label != "Week 0" || !tl.Weeks[2].Date.Equal(entity.StartOfDay(monday).AddDate(0, 0, 14)) {
		t.Fatalf("unexpected week markers: %+v", tl.Weeks)
	}
	if len(tl.Rows) != 2 || tl.Rows[0].CategoryName != "First" || tl.Rows[1].CategoryName != "Second" {
		t.Fatalf("rows not in category order: %+v", tl.Rows)
	}
	bar := tl.Rows[1].Bars[0]
	if !bar.Started || bar.Label != "LKAS 1" || bar.DurationDays != 2 {
		t.Fatalf("unexpected bar: %+v", bar)
	}
	if len(tl.Unplaced) != 0 {
		t.Fatalf("expected everything placed, got %d unplaced", len(tl.Unplaced))
	}
}

func TestBuildTimelineCollectsUnplaced(t *testing.T) {
	cats := []entity.Category{{ID: 1, Items: []entity.StudyItem{item("A", entity.LevelHigh, entity.LevelHigh, 1, 1)}}}
	schedule := Allocate(cats, entity.DefaultWeeklyAvailability, monday, monday)
	tl := BuildTimeline(cats, schedule, monday, monday)
	if len(tl.Rows) != 0 || len(tl.Unplaced) != 1 {
		t.Fatalf("expected one unplaced entry, got rows=%d unplaced=%d", len(tl.Rows), len(tl.Unplaced))
	}
	if len(tl.Weeks) != 1 {
		t.Fatalf("expected a single marker for today, got %d", len(tl.Weeks))
	}
}

func TestBuildTimelineCapsWeekMarkers(t *testing.T) {
	exam := monday.AddDate(7000, 0, 0)
	tl := BuildTimeline(nil, nil, exam, monday)
	if len(tl.Weeks) != maxWeekMarkers {
		t.Fatalf("expected %d week markers, got %d", maxWeekMarkers, len(tl.Weeks))
	}
}
