package mapping

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/usecase"
	"github.com/eslsoft/studyplan/internal/usecase/planner"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

type StudyItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ShortName       string  `json:"shortName"`
	CategoryID      int     `json:"categoryId,omitempty"`
	CategoryName    string  `json:"categoryName,omitempty"`
	Completed       bool    `json:"completed"`
	Priority        string  `json:"priority"`
	Difficulty      string  `json:"difficulty"`
	TotalHours      float64 `json:"totalHours"`
	HoursSpent      float64 `json:"hoursSpent"`
	RemainingHours  float64 `json:"remainingHours"`
	Notes           string  `json:"notes"`
	ScheduledDate   *string `json:"scheduledDate"`
	RecommendedDays int     `json:"recommendedDays"`
}

type Category struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	Expanded       bool        `json:"expanded"`
	TotalHours     float64     `json:"totalHours"`
	CompletedHours float64     `json:"completedHours"`
	Standards      []StudyItem `json:"standards"`
}

type ScheduleEntry struct {
	ItemID       string  `json:"itemId"`
	Name         string  `json:"name"`
	CategoryID   int     `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Priority     string  `json:"priority"`
	Difficulty   string  `json:"difficulty"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	DaysNeeded   int     `json:"daysNeeded"`
	SpanDays     int     `json:"spanDays"`
}

type Forecast struct {
	CurrentRate         float64 `json:"currentRate"`
	RequiredRate        float64 `json:"requiredRate"`
	EstimatedCompletion *string `json:"estimatedCompletion"`
}

type Metrics struct {
	ItemsOutstanding      int      `json:"itemsOutstanding"`
	ItemsCompleted        int      `json:"itemsCompleted"`
	TotalHours            float64  `json:"totalHours"`
	CompletedHours        float64  `json:"completedHours"`
	RemainingHours        float64  `json:"remainingHours"`
	WeeklyCapacity        float64  `json:"weeklyCapacity"`
	DaysRemaining         int      `json:"daysRemaining"`
	StudyDaysRemaining    int      `json:"studyDaysRemaining"`
	AvailableHours        float64  `json:"availableHours"`
	RequiredDailyHours    float64  `json:"requiredDailyHours"`
	Feasible              bool     `json:"feasible"`
	EfficiencyScore       int      `json:"efficiencyScore"`
	EfficiencyBand        string   `json:"efficiencyBand"`
	AdditionalWeeklyHours float64  `json:"additionalWeeklyHours"`
	Forecast              Forecast `json:"forecast"`
}

type Overview struct {
	Today        string       `json:"today"`
	ExamDate     string       `json:"examDate"`
	Availability Availability `json:"availability"`
	Metrics      Metrics      `json:"metrics"`
}

type DayHours struct {
	Day   int     `json:"day"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

type Availability struct {
	Days  []DayHours `json:"days"`
	Total float64    `json:"total"`
}

type CategoryHours struct {
	CategoryID          int     `json:"categoryId"`
	Name                string  `json:"name"`
	TotalHours          float64 `json:"totalHours"`
	CompletedHours      float64 `json:"completedHours"`
	PercentCompleted    float64 `json:"percentCompleted"`
	PercentOfCurriculum float64 `json:"percentOfCurriculum"`
}

type LevelCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type Analytics struct {
	Categories             []CategoryHours `json:"categories"`
	ByPriority             LevelCounts     `json:"byPriority"`
	ByDifficulty           LevelCounts     `json:"byDifficulty"`
	ThisWeek               []ScheduleEntry `json:"thisWeek"`
	NextWeek               []ScheduleEntry `json:"nextWeek"`
	LightestDay            *DayHours       `json:"lightestDay"`
	StandardsPerWeekTarget int             `json:"standardsPerWeekTarget"`
	EfficiencyBand         string          `json:"efficiencyBand"`
}

type TimelineBar struct {
	ItemID       string `json:"itemId"`
	Label        string `json:"label"`
	Start        string `json:"start"`
	End          string `json:"end"`
	DurationDays int    `json:"durationDays"`
	Started      bool   `json:"started"`
}

type TimelineRow struct {
	CategoryID   int           `json:"categoryId"`
	CategoryName string        `json:"categoryName"`
	Bars         []TimelineBar `json:"bars"`
}

type WeekMarker struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

type Timeline struct {
	Today    string          `json:"today"`
	ExamDate string          `json:"examDate"`
	Weeks    []WeekMarker    `json:"weeks"`
	Rows     []TimelineRow   `json:"rows"`
	Unplaced []ScheduleEntry `json:"unplaced"`
}

// Change is the payload pushed to event stream subscribers.
type Change struct {
	Kind       string  `json:"kind"`
	CategoryID int     `json:"categoryId,omitempty"`
	ItemID     string  `json:"itemId,omitempty"`
	At         string  `json:"at"`
	Metrics    Metrics `json:"metrics"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

func ToStudyItem(item entity.StudyItem) StudyItem {
	return StudyItem{
		ID:              item.ID,
		Name:            item.Name,
		ShortName:       item.ShortName(),
		Completed:       item.Completed,
		Priority:        string(item.Priority),
		Difficulty:      string(item.Difficulty),
		TotalHours:      item.TotalHours,
		HoursSpent:      item.HoursSpent,
		RemainingHours:  item.RemainingHours(),
		Notes:           item.Notes,
		ScheduledDate:   formatDate(item.ScheduledDate),
		RecommendedDays: item.RecommendedDays,
	}
}

func ToCategorizedItem(item entity.CategorizedItem) StudyItem {
	out := ToStudyItem(item.StudyItem)
	out.CategoryID = item.CategoryID
	out.CategoryName = item.CategoryName
	return out
}

func ToCategory(cat entity.Category) Category {
	return Category{
		ID:       cat.ID,
		Name:     cat.Name,
		Expanded: cat.Expanded,
		TotalHours: lo.SumBy(cat.Items, func(item entity.StudyItem) float64 {
			return item.TotalHours
		}),
		CompletedHours: lo.SumBy(cat.Items, func(item entity.StudyItem) float64 {
			if item.Completed {
				return item.TotalHours
			}
			return 0
		}),
		Standards: lo.Map(cat.Items, func(item entity.StudyItem, _ int) StudyItem {
			out := ToStudyItem(item)
			out.CategoryID = cat.ID
			return out
		}),
	}
}

func ToCategories(categories []entity.Category) []Category {
	return lo.Map(categories, func(cat entity.Category, _ int) Category { return ToCategory(cat) })
}

func ToScheduleEntry(entry entity.ScheduleEntry) ScheduleEntry {
	return ScheduleEntry{
		ItemID:       entry.Item.ID,
		Name:         entry.Item.Name,
		CategoryID:   entry.CategoryID,
		CategoryName: entry.CategoryName,
		Priority:     string(entry.Item.Priority),
		Difficulty:   string(entry.Item.Difficulty),
		StartDate:    formatDate(entry.StartDate),
		EndDate:      formatDate(entry.EndDate),
		DaysNeeded:   entry.DaysNeeded,
		SpanDays:     entry.SpanDays(),
	}
}

func ToSchedule(entries []entity.ScheduleEntry) []ScheduleEntry {
	return lo.Map(entries, func(entry entity.ScheduleEntry, _ int) ScheduleEntry { return ToScheduleEntry(entry) })
}

func ToMetrics(m planner.Metrics) Metrics {
	return Metrics{
		ItemsOutstanding:      m.ItemsOutstanding,
		ItemsCompleted:        m.ItemsCompleted,
		TotalHours:            m.TotalHours,
		CompletedHours:        m.CompletedHours,
		RemainingHours:        m.RemainingHours,
		WeeklyCapacity:        m.WeeklyCapacity,
		DaysRemaining:         m.DaysRemaining,
		StudyDaysRemaining:    m.StudyDaysRemaining,
		AvailableHours:        m.AvailableHours,
		RequiredDailyHours:    m.RequiredDailyHours,
		Feasible:              m.Feasible,
		EfficiencyScore:       m.EfficiencyScore,
		EfficiencyBand:        string(planner.BandFor(m.EfficiencyScore)),
		AdditionalWeeklyHours: m.AdditionalWeeklyHours,
		Forecast: Forecast{
			CurrentRate:         m.Forecast.CurrentRate,
			RequiredRate:        m.Forecast.RequiredRate,
			EstimatedCompletion: formatDate(m.Forecast.EstimatedCompletion),
		},
	}
}

func ToAvailability(avail entity.WeeklyAvailability) Availability {
	days := make([]DayHours, len(avail))
	for i, h := range avail {
		days[i] = DayHours{Day: i, Name: entity.WeekdayNames[i], Hours: h}
	}
	return Availability{Days: days, Total: avail.Total()}
}

func ToOverview(d *usecase.Dashboard) Overview {
	return Overview{
		Today:        d.Now.Format(DateLayout),
		ExamDate:     d.ExamDate.Format(DateLayout),
		Availability: ToAvailability(d.Availability),
		Metrics:      ToMetrics(d.Metrics),
	}
}

func toLevelCounts(c planner.LevelCounts) LevelCounts {
	return LevelCounts{High: c.High, Medium: c.Medium, Low: c.Low}
}

func ToAnalytics(a planner.Analytics, avail entity.WeeklyAvailability) Analytics {
	out := Analytics{
		Categories: lo.Map(a.Categories, func(c planner.CategoryHours, _ int) CategoryHours {
			return CategoryHours(c)
		}),
		ByPriority:             toLevelCounts(a.ByPriority),
		ByDifficulty:           toLevelCounts(a.ByDifficulty),
		ThisWeek:               ToSchedule(a.ThisWeek),
		NextWeek:               ToSchedule(a.NextWeek),
		StandardsPerWeekTarget: a.StandardsPerWeekTarget,
		EfficiencyBand:         string(a.Band),
	}
	if a.HasLightestDay {
		out.LightestDay = &DayHours{Day: a.LightestDay, Name: entity.WeekdayNames[a.LightestDay], Hours: avail[a.LightestDay]}
	}
	return out
}

func ToTimeline(tl planner.Timeline) Timeline {
	return Timeline{
		Today:    tl.Today.Format(DateLayout),
		ExamDate: tl.ExamDate.Format(DateLayout),
		Weeks: lo.Map(tl.Weeks, func(w planner.WeekMarker, _ int) WeekMarker {
			return WeekMarker{Label: w.Label, Date: w.Date.Format(DateLayout)}
		}),
		Rows: lo.Map(tl.Rows, func(row planner.TimelineRow, _ int) TimelineRow {
			return TimelineRow{
				CategoryID:   row.CategoryID,
				CategoryName: row.CategoryName,
				Bars: lo.Map(row.Bars, func(bar planner.TimelineBar, _ int) TimelineBar {
					return TimelineBar{
						ItemID:       bar.Entry.Item.ID,
						Label:        bar.Label,
						Start:        bar.Start.Format(DateLayout),
						End:          bar.End.Format(DateLayout),
						DurationDays: bar.DurationDays,
						Started:      bar.Started,
					}
				}),
			}
		}),
		Unplaced: ToSchedule(tl.Unplaced),
	}
}

func ToChange(c usecase.Change) Change {
	return Change{
		Kind:       string(c.Kind),
		CategoryID: c.CategoryID,
		ItemID:     c.ItemID,
		At:         c.At.UTC().Format(time.RFC3339),
		Metrics:    ToMetrics(c.Metrics),
	}
}
