package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/eslsoft/studyplan/internal/adapter/mapping"
	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/usecase"
	"github.com/eslsoft/studyplan/internal/usecase/planner"
)

const timelineWidth = 56

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(mapping.DateLayout)
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

func renderOverview(w io.Writer, d *usecase.Dashboard) error {
	m := d.Metrics
	tw := newTable(w)
	fmt.Fprintf(tw, "Today\t%s\n", d.Now.Format(mapping.DateLayout))
	fmt.Fprintf(tw, "Exam date\t%s (%d days)\n", d.ExamDate.Format(mapping.DateLayout), m.DaysRemaining)
	fmt.Fprintf(tw, "Standards\t%d outstanding, %d completed\n", m.ItemsOutstanding, m.ItemsCompleted)
	fmt.Fprintf(tw, "Hours\t%s of %s done, %s remaining\n", formatHours(m.CompletedHours), formatHours(m.TotalHours), formatHours(m.RemainingHours))
	fmt.Fprintf(tw, "Weekly capacity\t%s (%s until the exam)\n", formatHours(m.WeeklyCapacity), formatHours(m.AvailableHours))
	fmt.Fprintf(tw, "Required per day\t%s\n", formatHours(m.RequiredDailyHours))
	fmt.Fprintf(tw, "Efficiency\t%d%% (%s)\n", m.EfficiencyScore, planner.BandFor(m.EfficiencyScore))
	if m.Feasible {
		fmt.Fprintf(tw, "Feasible\tyes\n")
	} else {
		fmt.Fprintf(tw, "Feasible\tno, add %s per week\n", formatHours(m.AdditionalWeeklyHours))
	}
	fmt.Fprintf(tw, "Pace\t%.2f standards/day now, %.2f needed\n", m.Forecast.CurrentRate, m.Forecast.RequiredRate)
	fmt.Fprintf(tw, "Estimated completion\t%s\n", formatDate(m.Forecast.EstimatedCompletion))
	return tw.Flush()
}

func renderStandards(w io.Writer, items []entity.CategorizedItem, total int64) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tID\tNAME\tPRIORITY\tDIFFICULTY\tSPENT\tTOTAL\tDONE\tPLANNED")
	for _, item := range items {
		done := ""
		if item.Completed {
			done = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.CategoryID, item.ID, item.Name, item.Priority, item.Difficulty,
			formatHours(item.HoursSpent), formatHours(item.TotalHours), done, formatDate(item.ScheduledDate))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d standards\n", len(items), total)
	return err
}

func renderSchedule(w io.Writer, schedule []entity.ScheduleEntry) error {
	if len(schedule) == 0 {
		_, err := fmt.Fprintln(w, "Nothing left to schedule")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tID\tNAME\tPRIORITY\tDIFFICULTY\tSTART\tEND\tDAYS")
	for i, entry := range schedule {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			i+1, entry.Item.ID, entry.Item.Name, entry.Item.Priority, entry.Item.Difficulty,
			formatDate(entry.StartDate), formatDate(entry.EndDate), entry.DaysNeeded)
	}
	return tw.Flush()
}

func renderTimeline(w io.Writer, tl planner.Timeline) error {
	horizon := int(math.Round(tl.ExamDate.Sub(tl.Today).Hours() / 24))
	scale := 1.0
	if horizon > timelineWidth {
		scale = float64(timelineWidth) / float64(horizon)
	}
	column := func(t time.Time) int {
		return int(math.Round(t.Sub(tl.Today).Hours() / 24 * scale))
	}

	fmt.Fprintf(w, "Today %s, exam %s\n", tl.Today.Format(mapping.DateLayout), tl.ExamDate.Format(mapping.DateLayout))
	for _, week := range tl.Weeks {
		fmt.Fprintf(w, "  %-8s %s\n", week.Label, week.Date.Format(mapping.DateLayout))
	}

	tw := newTable(w)
	for _, row := range tl.Rows {
		fmt.Fprintf(tw, "%s\t\t\n", row.CategoryName)
		for _, bar := range row.Bars {
			start := column(bar.Start)
			width := max(column(bar.End)-start+1, 1)
			mark := "="
			if bar.Started {
				mark = "#"
			}
			fmt.Fprintf(tw, "  %s\t|%s%s\t%s .. %s (%dd)\n", bar.Label,
				strings.Repeat(" ", max(start, 0)), strings.Repeat(mark, width),
				bar.Start.Format(mapping.DateLayout), bar.End.Format(mapping.DateLayout), bar.DurationDays)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(tl.Unplaced) > 0 {
		ids := make([]string, 0, len(tl.Unplaced))
		for _, entry := range tl.Unplaced {
			ids = append(ids, entry.Item.ID)
		}
		fmt.Fprintf(w, "Not scheduled before the exam: %s\n", strings.Join(ids, ", "))
	}
	return nil
}

func renderAnalytics(w io.Writer, a planner.Analytics, avail entity.WeeklyAvailability) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tHOURS\tDONE\tCOMPLETED\tSHARE")
	for _, c := range a.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f%%\t%.0f%%\n", c.Name, formatHours(c.TotalHours), formatHours(c.CompletedHours), c.PercentCompleted, c.PercentOfCurriculum)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nOutstanding by priority:   high %d, medium %d, low %d\n", a.ByPriority.High, a.ByPriority.Medium, a.ByPriority.Low)
	fmt.Fprintf(w, "Outstanding by difficulty: high %d, medium %d, low %d\n", a.ByDifficulty.High, a.ByDifficulty.Medium, a.ByDifficulty.Low)

	focus := func(title string, entries []entity.ScheduleEntry) {
		fmt.Fprintf(w, "\n%s:\n", title)
		if len(entries) == 0 {
			fmt.Fprintln(w, "  nothing planned")
		}
		for _, entry := range entries {
			fmt.Fprintf(w, "  %s (%s .. %s)\n", entry.Item.Name, formatDate(entry.StartDate), formatDate(entry.EndDate))
		}
	}
	focus("This week", a.ThisWeek)
	focus("Next week", a.NextWeek)

	fmt.Fprintln(w, "\nRecommendations:")
	fmt.Fprintf(w, "  Aim for %d standards per week\n", a.StandardsPerWeekTarget)
	if a.HasLightestDay {
		fmt.Fprintf(w, "  %s is your lightest study day (%s)\n", entity.WeekdayNames[a.LightestDay], formatHours(avail[a.LightestDay]))
	}
	_, err := fmt.Fprintf(w, "  Efficiency band: %s\n", a.Band)
	return err
}

func renderItem(w io.Writer, categoryID int, item *entity.StudyItem) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Standard\t%s (%s, category %d)\n", item.Name, item.ID, categoryID)
	fmt.Fprintf(tw, "Completed\t%t\n", item.Completed)
	fmt.Fprintf(tw, "Priority\t%s\n", item.Priority)
	fmt.Fprintf(tw, "Difficulty\t%s\n", item.Difficulty)
	fmt.Fprintf(tw, "Hours\t%s of %s\n", formatHours(item.HoursSpent), formatHours(item.TotalHours))
	fmt.Fprintf(tw, "Planned date\t%s\n", formatDate(item.ScheduledDate))
	if item.Notes != "" {
		fmt.Fprintf(tw, "Notes\t%s\n", item.Notes)
	}
	return tw.Flush()
}

func renderAvailability(w io.Writer, avail entity.WeeklyAvailability) error {
	tw := newTable(w)
	for i, h := range avail {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, entity.WeekdayNames[i], formatHours(h))
	}
	fmt.Fprintf(tw, "\tTotal\t%s\n", formatHours(avail.Total()))
	return tw.Flush()
}
