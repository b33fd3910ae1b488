package mapping

import (
	"testing"
	"time"

	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/usecase/planner"
)

func TestToCategorySumsHours(t *testing.T) {
	pinned := time.Date(2025, time.March, 5, 15, 0, 0, 0, time.UTC)
	cat := entity.Category{ID: 2, Name: "Balance Sheet", Items: []entity.StudyItem{
		{ID: "A", Name: "LKAS 38 - Intangible Assets", TotalHours: 3, HoursSpent: 1, Priority: entity.LevelHigh, Difficulty: entity.LevelHigh, RecommendedDays: 2, ScheduledDate: &pinned},
		{ID: "B", Name: "LKAS 40", TotalHours: 2, HoursSpent: 2, Completed: true, Priority: entity.LevelCompleted, Difficulty: entity.LevelCompleted},
	}}

	got := ToCategory(cat)
	if got.TotalHours != 5 || got.CompletedHours != 2 {
		t.Fatalf("unexpected hours %+v", got)
	}
	first := got.Standards[0]
	if first.ShortName != "LKAS 38" || first.RemainingHours != 2 || first.CategoryID != 2 {
		t.Fatalf("unexpected item %+v", first)
	}
	if first.ScheduledDate == nil || *first.ScheduledDate != "2025-03-05" {
		t.Fatalf("unexpected scheduled date %v", first.ScheduledDate)
	}
	if got.Standards[1].ScheduledDate != nil {
		t.Fatalf("unset date must map to null")
	}
}

func TestToAnalyticsLightestDay(t *testing.T) {
	avail := entity.WeeklyAvailability{2, 2, 0.5, 2, 2, 1, 1}
	a := planner.Analytics{LightestDay: 2, HasLightestDay: true, Band: planner.BandOrange}
	got := ToAnalytics(a, avail)
	if got.LightestDay == nil || got.LightestDay.Name != "Wednesday" || got.LightestDay.Hours != 0.5 {
		t.Fatalf("unexpected lightest day %+v", got.LightestDay)
	}
	if got.EfficiencyBand != "orange" {
		t.Fatalf("unexpected band %q", got.EfficiencyBand)
	}

	if ToAnalytics(planner.Analytics{}, entity.WeeklyAvailability{}).LightestDay != nil {
		t.Fatalf("expected no lightest day without availability")
	}
}

func TestToMetricsForecastDate(t *testing.T) {
	eta := time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC)
	got := ToMetrics(planner.Metrics{EfficiencyScore: 90, Forecast: planner.Forecast{EstimatedCompletion: &eta}})
	if got.EfficiencyBand != "green" || got.Forecast.EstimatedCompletion == nil || *got.Forecast.EstimatedCompletion != "2025-04-01" {
		t.Fatalf("unexpected metrics %+v", got)
	}
}
