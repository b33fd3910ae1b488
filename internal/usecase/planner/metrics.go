package planner

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/studyplan/internal/entity"
)

// DefaultForecastHorizonDays is the assumed length of the whole study period
// used to derive the current completion rate.
const DefaultForecastHorizonDays = 30

// Options tunes the derived figures.
type Options struct {
	ForecastHorizonDays int
}

func (o Options) horizon() int {
	if o.ForecastHorizonDays <= 0 {
		return DefaultForecastHorizonDays
	}
	return o.ForecastHorizonDays
}

// Metrics aggregates the headline figures of a plan.
type Metrics struct {
	ItemsOutstanding      int
	ItemsCompleted        int
	TotalHours            float64
	CompletedHours        float64
	RemainingHours        float64
	WeeklyCapacity        float64
	DaysRemaining         int
	StudyDaysRemaining    int
	AvailableHours        float64
	RequiredDailyHours    float64
	Feasible              bool
	EfficiencyScore       int
	AdditionalWeeklyHours float64
	Forecast              Forecast
}

// Forecast projects the completion pace of outstanding items.
type Forecast struct {
	CurrentRate         float64
	RequiredRate        float64
	EstimatedCompletion *time.Time
}

// ComputeMetrics derives every figure from the catalog, weekly pattern and exam date.
func ComputeMetrics(categories []entity.Category, availability entity.WeeklyAvailability, examDate, now time.Time, opts Options) Metrics {
	items := entity.FlattenItems(categories)
	completed := lo.CountBy(items, func(item entity.CategorizedItem) bool { return item.Completed })

	m := Metrics{
		ItemsOutstanding: len(items) - completed,
		ItemsCompleted:   completed,
		TotalHours:       lo.SumBy(items, func(item entity.CategorizedItem) float64 { return item.TotalHours }),
		CompletedHours:   lo.SumBy(items, func(item entity.CategorizedItem) float64 { return item.HoursSpent }),
		WeeklyCapacity:   availability.Total(),
		DaysRemaining:    DaysRemaining(examDate, now),
	}
	m.RemainingHours = m.TotalHours - m.CompletedHours
	m.StudyDaysRemaining = len(StudyDayOffsets(availability, examDate, now))
	m.AvailableHours = ProjectedHours(m.WeeklyCapacity, m.DaysRemaining)
	m.RequiredDailyHours = RequiredDailyHours(m.RemainingHours, m.DaysRemaining)
	m.Feasible = m.AvailableHours >= m.RemainingHours
	m.EfficiencyScore = EfficiencyScore(m.WeeklyCapacity, m.RemainingHours, m.DaysRemaining)
	m.AdditionalWeeklyHours = AdditionalWeeklyHours(m.WeeklyCapacity, m.RemainingHours, m.DaysRemaining)
	m.Forecast = ComputeForecast(m.ItemsCompleted, m.ItemsOutstanding, m.DaysRemaining, now, opts)
	return m
}

// ProjectedHours spreads the weekly capacity over the remaining days,
// fractional weeks included.
func ProjectedHours(weeklyCapacity float64, daysRemaining int) float64 {
	return weeklyCapacity * float64(daysRemaining) / 7
}

// RequiredDailyHours is the pace needed to finish; 0 once no days are left.
func RequiredDailyHours(remainingHours float64, daysRemaining int) float64 {
	if daysRemaining <= 0 {
		return 0
	}
	return remainingHours / float64(daysRemaining)
}

// EfficiencyScore rates in [0,100] how well the projected capacity covers the
// remaining hours.
func EfficiencyScore(weeklyCapacity, remainingHours float64, daysRemaining int) int {
	if weeklyCapacity <= 0 {
		return 0
	}
	if remainingHours <= 0 {
		return 100
	}
	available := ProjectedHours(weeklyCapacity, daysRemaining)
	if available <= 0 {
		return 0
	}
	return int(math.Round(math.Min(100, available/remainingHours*100)))
}

// AdditionalWeeklyHours is how many more hours per week would make the plan
// feasible; 0 when it already is or no days are left.
func AdditionalWeeklyHours(weeklyCapacity, remainingHours float64, daysRemaining int) float64 {
	if daysRemaining <= 0 {
		return 0
	}
	extra := remainingHours/(float64(daysRemaining)/7) - weeklyCapacity
	if extra <= 0 {
		return 0
	}
	return extra
}

// ComputeForecast compares the pace so far with the pace still required.
func ComputeForecast(completed, outstanding, daysRemaining int, now time.Time, opts Options) Forecast {
	f := Forecast{
		CurrentRate:  float64(completed) / float64(max(1, opts.horizon()-daysRemaining)),
		RequiredRate: float64(outstanding) / float64(max(1, daysRemaining)),
	}
	if f.CurrentRate > 0 {
		eta := addDays(now, float64(outstanding)/f.CurrentRate)
		f.EstimatedCompletion = &eta
	}
	return f
}

// maxForecastDays bounds projections so a stale exam date cannot overflow time.Time.
const maxForecastDays = 1_000_000

// addDays moves t forward by a fractional number of days. Whole days go
// through AddDate so the result stays valid beyond the time.Duration range.
func addDays(t time.Time, days float64) time.Time {
	days = math.Min(days, maxForecastDays)
	whole := math.Floor(days)
	return t.AddDate(0, 0, int(whole)).Add(time.Duration((days - whole) * float64(24*time.Hour)))
}
