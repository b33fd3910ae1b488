// Package planner holds the pure scheduling and reporting logic of a study
// plan. Nothing here mutates its inputs or keeps state between calls.
package planner

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/studyplan/internal/entity"
)

// DaysRemaining is the whole number of days between now and the exam, rounded
// towards negative infinity. Zero or less means no time is left.
func DaysRemaining(examDate, now time.Time) int {
	return int(math.Floor(examDate.Sub(now).Hours() / 24))
}

// PendingItems returns the incomplete items of the catalog in scheduling order.
func PendingItems(categories []entity.Category) []entity.CategorizedItem {
	pending := lo.Filter(entity.FlattenItems(categories), func(item entity.CategorizedItem, _ int) bool {
		return !item.Completed
	})
	SortForScheduling(pending)
	return pending
}

// SortForScheduling orders items by priority rank, then difficulty rank. Ties
// keep their catalog order.
func SortForScheduling(items []entity.CategorizedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Priority.Rank(), items[j].Priority.Rank()
		if pi != pj {
			return pi < pj
		}
		return items[i].Difficulty.Rank() < items[j].Difficulty.Rank()
	})
}

// StudyDayOffsets enumerates the day offsets from today, before the exam, on
// which the weekly pattern grants any study time.
func StudyDayOffsets(availability entity.WeeklyAvailability, examDate, now time.Time) []int {
	horizon := DaysRemaining(examDate, now)
	var offsets []int
	for offset := 0; offset < horizon; offset++ {
		if studyDay(availability, now, offset) {
			offsets = append(offsets, offset)
		}
	}
	return offsets
}

func studyDay(availability entity.WeeklyAvailability, now time.Time, offset int) bool {
	return availability.HoursOn(time.Weekday((int(now.Weekday())+offset)%7)) > 0
}

// Allocate assigns consecutive study days to every incomplete item that still
// needs hours. A single cursor walks forward from today: each item claims up to
// RecommendedDays available days and the next item starts after the last day
// claimed. Items that run out of horizon before finding a day are returned
// unplaced.
func Allocate(categories []entity.Category, availability entity.WeeklyAvailability, examDate, now time.Time) []entity.ScheduleEntry {
	pending := PendingItems(categories)
	horizon := DaysRemaining(examDate, now)

	entries := make([]entity.ScheduleEntry, 0, len(pending))
	cursor := 0
	for _, item := range pending {
		if item.RemainingHours() <= 0 {
			continue
		}

		daysNeeded := max(item.RecommendedDays, 1)
		first, last, claimed := -1, -1, 0
		for cursor < horizon && claimed < daysNeeded {
			if studyDay(availability, now, cursor) {
				if first < 0 {
					first = cursor
				}
				last = cursor
				claimed++
			}
			cursor++
		}

		entry := entity.ScheduleEntry{
			Item:         item.StudyItem,
			CategoryID:   item.CategoryID,
			CategoryName: item.CategoryName,
			DaysNeeded:   daysNeeded,
		}
		if first >= 0 {
			start := now.AddDate(0, 0, first)
			end := now.AddDate(0, 0, last)
			entry.StartDate = &start
			entry.EndDate = &end
		}
		entries = append(entries, entry)
	}
	return entries
}
