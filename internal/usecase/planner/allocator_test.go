package planner

import (
	"reflect"
	"testing"
	"time"

	"github.com/eslsoft/studyplan/internal/entity"
)

// 2025-01-06 is a Monday.
var monday = time.Date(2025, time.January, 6, 9, 30, 0, 0, time.UTC)

func item(id string, priority, difficulty entity.Level, total float64, days int) entity.StudyItem {
	return entity.StudyItem{
		ID:              id,
		Name:            id + " - Standard",
		Priority:        priority,
		Difficulty:      difficulty,
		TotalHours:      total,
		RecommendedDays: days,
	}
}

func dayOffset(t *testing.T, now time.Time, d *time.Time) int {
	t.Helper()
	if d == nil {
		t.Fatalf("expected placed date, got nil")
	}
	return int(entity.StartOfDay(*d).Sub(entity.StartOfDay(now)).Hours() / 24)
}

func TestAllocateHighPriorityItemTakesFirstAvailableDays(t *testing.T) {
	cats := []entity.Category{{ID: 1, Name: "Core", Items: []entity.StudyItem{
		item("A", entity.LevelHigh, entity.LevelHigh, 4, 3),
	}}}

	entries := Allocate(cats, entity.DefaultWeeklyAvailability, monday.AddDate(0, 0, 30), monday)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := dayOffset(t, monday, entries[0].StartDate); got != 0 {
		t.Fatalf("expected start offset 0, got %d", got)
	}
	if got := dayOffset(t, monday, entries[0].EndDate); got != 2 {
		t.Fatalf("expected end offset 2, got %d", got)
	}
	if entries[0].EndDate.Weekday() != time.Wednesday {
		t.Fatalf("expected end on Wednesday, got %s", entries[0].EndDate.Weekday())
	}
	if entries[0].DaysNeeded != 3 || entries[0].SpanDays() != 3 {
		t.Fatalf("unexpected span: needed=%d span=%d", entries[0].DaysNeeded, entries[0].SpanDays())
	}
}

func TestAllocateSkipsUnavailableDays(t *testing.T) {
	// Only Monday and Thursday are study days.
	avail := entity.WeeklyAvailability{2, 0, 0, 2, 0, 0, 0}
	cats := []entity.Category{{ID: 1, Items: []entity.StudyItem{
		item("A", entity.LevelHigh, entity.LevelHigh, 4, 2),
		item("B", entity.LevelHigh, entity.LevelHigh, 4, 1),
	}}}

	entries := Allocate(cats, avail, monday.AddDate(0, 0, 30), monday)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if s, e := dayOffset(t, monday, entries[0].StartDate), dayOffset(t, monday, entries[0].EndDate); s != 0 || e != 3 {
		t.Fatalf("expected A on offsets 0..3, got %d..%d", s, e)
	}
	if s, e := dayOffset(t, monday, entries[1].StartDate), dayOffset(t, monday, entries[1].EndDate); s != 7 || e != 7 {
		t.Fatalf("expected B on offset 7, got %d..%d", s, e)
	}
}

func TestAllocateOrdersByPriorityThenDifficultyStably(t *testing.T) {
	cats := []entity.Category{
		{ID: 1, Items: []entity.StudyItem{
			item("low", entity.LevelLow, entity.LevelHigh, 1, 1),
			item("med-easy", entity.LevelMedium, entity.LevelLow, 1, 1),
			item("high-1", entity.LevelHigh, entity.LevelMedium, 1, 1),
		}},
		{ID: 2, Items: []entity.StudyItem{
			item("med-hard", entity.LevelMedium, entity.LevelHigh, 1, 1),
			item("high-2", entity.LevelHigh, entity.LevelMedium, 1, 1),
			item("odd", entity.LevelCompleted, entity.LevelLow, 1, 1),
		}},
	}

	entries := Allocate(cats, entity.DefaultWeeklyAvailability, monday.AddDate(0, 0, 30), monday)
	var got []string
	for _, e := range entries {
		got = append(got, e.Item.ID)
	}
	want := []string{"high-1", "high-2", "med-hard", "med-easy", "low", "odd"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %v want %v", got, want)
	}
}

func TestAllocateDropsCompletedAndExhaustedItems(t *testing.T) {
	done := item("done", entity.LevelHigh, entity.LevelHigh, 3, 1)
	done.Completed = true
	done.HoursSpent = 3
	over := item("over", entity.LevelHigh, entity.LevelHigh, 2, 1)
	over.HoursSpent = 5
	cats := []entity.Category{{ID: 1, Items: []entity.StudyItem{done, over, item("open", entity.LevelLow, entity.LevelLow, 2, 1)}}}

	entries := Allocate(cats, entity.DefaultWeeklyAvailability, monday.AddDate(0, 0, 30), monday)
	if len(entries) != 1 || entries[0].Item.ID != "open" {
		t.Fatalf("expected only the open item, got %+v", entries)
	}
}

func TestAllocateNeverSharesDays(t *testing.T) {
	cats := entity.DefaultCurriculum(monday, 60).Categories
	entries := Allocate(cats, entity.DefaultWeeklyAvailability, monday.AddDate(0, 0, 60), monday)

	var prevEnd *time.Time
	for _, e := range entries {
		if !e.Placed() {
			continue
		}
		if e.StartDate.After(*e.EndDate) {
			t.Fatalf("entry %s starts after it ends", e.Item.ID)
		}
		if prevEnd != nil && !prevEnd.Before(*e.StartDate) {
			t.Fatalf("entry %s starts %s, not after previous end %s", e.Item.ID, e.StartDate, prevEnd)
		}
		prevEnd = e.EndDate
	}
}

func TestAllocateRunsOutOfHorizon(t *testing.T) {
	cats := []entity.Category{{ID: 1, Items: []entity.StudyItem{
		item("A", entity.LevelHigh, entity.LevelHigh, 10, 5),
		item("B", entity.LevelHigh, entity.LevelHigh, 10, 5),
	}}}

	entries := Allocate(cats, entity.DefaultWeeklyAvailability, monday.AddDate(0, 0, 3), monday)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if s, e := dayOffset(t, monday, entries[0].StartDate), dayOffset(t, monday, entries[0].EndDate); s != 0 || e != 2 {
		t.Fatalf("expected partial span 0..2, got %d..%d", s, e)
	}
	if entries[1].Placed() {
		t.Fatalf("expected second item unplaced, got %v..%v", entries[1].StartDate, entries[1].EndDate)
	}
}

func TestAllocateExamTodayLeavesEverythingUnplaced(t *testing.T) {
	cats := entity.DefaultCurriculum(monday, 30).Categories
	entries := Allocate(cats, entity.DefaultWeeklyAvailability, monday, monday)
	if len(entries) == 0 {
		t.Fatalf("expected unplaced entries for outstanding items")
	}
	for _, e := range entries {
		if e.Placed() {
			t.Fatalf("entry %s unexpectedly placed", e.Item.ID)
		}
	}

	past := Allocate(cats, entity.DefaultWeeklyAvailability, monday.AddDate(0, 0, -5), monday)
	for _, e := range past {
		if e.Placed() {
			t.Fatalf("entry %s placed after the exam", e.Item.ID)
		}
	}
}

func TestAllocateZeroAvailability(t *testing.T) {
	cats := entity.DefaultCurriculum(monday, 30).Categories
	entries := Allocate(cats, entity.WeeklyAvailability{}, monday.AddDate(0, 0, 30), monday)
	for _, e := range entries {
		if e.Placed() {
			t.Fatalf("entry %s placed without availability", e.Item.ID)
		}
	}
}

func TestAllocateIsDeterministicAndPure(t *testing.T) {
	snap := entity.DefaultCurriculum(monday, 45)
	before := snap.Clone()

	first := Allocate(snap.Categories, snap.WeeklyAvailability, snap.ExamDate, monday)
	second := Allocate(snap.Categories, snap.WeeklyAvailability, snap.ExamDate, monday)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("allocation is not deterministic")
	}
	if !reflect.DeepEqual(before, snap) {
		t.Fatalf("allocation mutated its input")
	}
}

func TestDaysRemainingFloors(t *testing.T) {
	cases := []struct {
		name string
		exam time.Time
		want int
	}{
		{"same instant", monday, 0},
		{"half a day", monday.Add(12 * time.Hour), 0},
		{"thirty days", monday.AddDate(0, 0, 30), 30},
		{"yesterday", monday.Add(-1 * time.Hour), -1},
	}
	for _, tc := range cases {
		if got := DaysRemaining(tc.exam, monday); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestStudyDayOffsetsRespectsWeekday(t *testing.T) {
	wednesday := monday.AddDate(0, 0, 2)
	// Sunday only.
	avail := entity.WeeklyAvailability{0, 0, 0, 0, 0, 0, 3}
	got := StudyDayOffsets(avail, wednesday.AddDate(0, 0, 14), wednesday)
	want := []int{4, 11}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
