package planner

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/eslsoft/studyplan/internal/entity"
)

// CategoryHours is the effort summary of one category.
type CategoryHours struct {
	CategoryID          int
	Name                string
	TotalHours          float64
	CompletedHours      float64
	PercentCompleted    float64
	PercentOfCurriculum float64
}

// LevelCounts tallies incomplete items per level.
type LevelCounts struct {
	High   int
	Medium int
	Low    int
}

// EfficiencyBand buckets the efficiency score for display.
type EfficiencyBand string

const (
	BandGreen  EfficiencyBand = "green"
	BandOrange EfficiencyBand = "orange"
	BandRed    EfficiencyBand = "red"
)

// BandFor maps a score onto its band.
func BandFor(score int) EfficiencyBand {
	switch {
	case score >= 85:
		return BandGreen
	case score >= 60:
		return BandOrange
	default:
		return BandRed
	}
}

// Analytics gathers the secondary views of a plan.
type Analytics struct {
	Categories             []CategoryHours
	ByPriority             LevelCounts
	ByDifficulty           LevelCounts
	ThisWeek               []entity.ScheduleEntry
	NextWeek               []entity.ScheduleEntry
	LightestDay            int
	HasLightestDay         bool
	StandardsPerWeekTarget int
	Band                   EfficiencyBand
}

// ComputeAnalytics derives category, distribution and focus views.
func ComputeAnalytics(categories []entity.Category, availability entity.WeeklyAvailability, schedule []entity.ScheduleEntry, m Metrics) Analytics {
	a := Analytics{
		Categories:             CategoryBreakdown(categories),
		ByPriority:             countLevels(categories, func(item entity.StudyItem) entity.Level { return item.Priority }),
		ByDifficulty:           countLevels(categories, func(item entity.StudyItem) entity.Level { return item.Difficulty }),
		ThisWeek:               window(schedule, 0, 3),
		NextWeek:               window(schedule, 3, 6),
		StandardsPerWeekTarget: StandardsPerWeekTarget(m.ItemsOutstanding, m.DaysRemaining),
		Band:                   BandFor(m.EfficiencyScore),
	}
	a.LightestDay, a.HasLightestDay = LightestStudyDay(availability)
	return a
}

// CategoryBreakdown lists categories with any estimated hours, largest first.
func CategoryBreakdown(categories []entity.Category) []CategoryHours {
	grand := lo.SumBy(categories, func(cat entity.Category) float64 {
		return lo.SumBy(cat.Items, func(item entity.StudyItem) float64 { return item.TotalHours })
	})

	var out []CategoryHours
	for _, cat := range categories {
		total := lo.SumBy(cat.Items, func(item entity.StudyItem) float64 { return item.TotalHours })
		if total <= 0 {
			continue
		}
		done := lo.SumBy(cat.Items, func(item entity.StudyItem) float64 { return item.HoursSpent })
		out = append(out, CategoryHours{
			CategoryID:          cat.ID,
			Name:                cat.Name,
			TotalHours:          total,
			CompletedHours:      done,
			PercentCompleted:    done / total * 100,
			PercentOfCurriculum: total / grand * 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalHours > out[j].TotalHours })
	return out
}

func countLevels(categories []entity.Category, level func(entity.StudyItem) entity.Level) LevelCounts {
	var counts LevelCounts
	for _, cat := range categories {
		for _, item := range cat.Items {
			if item.Completed {
				continue
			}
			switch level(item) {
			case entity.LevelHigh:
				counts.High++
			case entity.LevelMedium:
				counts.Medium++
			case entity.LevelLow:
				counts.Low++
			}
		}
	}
	return counts
}

func window(schedule []entity.ScheduleEntry, from, to int) []entity.ScheduleEntry {
	if from >= len(schedule) {
		return nil
	}
	return schedule[from:min(to, len(schedule))]
}

// LightestStudyDay returns the Monday-based index of the day with the fewest
// positive hours. Ties go to the earlier day.
func LightestStudyDay(availability entity.WeeklyAvailability) (int, bool) {
	day, least := -1, math.Inf(1)
	for i, hours := range availability {
		if hours > 0 && hours < least {
			day, least = i, hours
		}
	}
	return day, day >= 0
}

// StandardsPerWeekTarget is how many items must be finished each week to
// stay on track.
func StandardsPerWeekTarget(outstanding, daysRemaining int) int {
	if daysRemaining <= 0 {
		return 0
	}
	return int(math.Round(float64(outstanding) / float64(daysRemaining) * 7))
}
