/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/eslsoft/studyplan/internal/adapter/mapping"
	"github.com/eslsoft/studyplan/internal/app"
	"github.com/eslsoft/studyplan/internal/entity"
	"github.com/eslsoft/studyplan/internal/repository"
	"github.com/eslsoft/studyplan/internal/usecase"
)

// dashboardCommand builds a read-only command over the current dashboard.
func dashboardCommand(use, short string, text func(cmd *cobra.Command, d *usecase.Dashboard) error, asJSON func(d *usecase.Dashboard) any) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, func(ctx context.Context, c *app.Container) error {
				d, err := c.Plan.Dashboard(ctx)
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), asJSON(d))
				}
				return text(cmd, d)
			})
		},
	}
	c.Flags().Bool("json", false, "print JSON instead of a table")
	return c
}

var overviewCmd = dashboardCommand("overview", "Show progress, capacity and the completion forecast",
	func(cmd *cobra.Command, d *usecase.Dashboard) error { return renderOverview(cmd.OutOrStdout(), d) },
	func(d *usecase.Dashboard) any { return mapping.ToOverview(d) },
)

var scheduleCmd = dashboardCommand("schedule", "Show the generated study schedule",
	func(cmd *cobra.Command, d *usecase.Dashboard) error {
		return renderSchedule(cmd.OutOrStdout(), d.Schedule)
	},
	func(d *usecase.Dashboard) any { return mapping.ToSchedule(d.Schedule) },
)

var timelineCmd = dashboardCommand("timeline", "Show the schedule as a timeline grouped by category",
	func(cmd *cobra.Command, d *usecase.Dashboard) error {
		return renderTimeline(cmd.OutOrStdout(), d.Timeline)
	},
	func(d *usecase.Dashboard) any { return mapping.ToTimeline(d.Timeline) },
)

var analyticsCmd = dashboardCommand("analytics", "Show category breakdown, distributions and focus areas",
	func(cmd *cobra.Command, d *usecase.Dashboard) error {
		return renderAnalytics(cmd.OutOrStdout(), d.Analytics, d.Availability)
	},
	func(d *usecase.Dashboard) any { return mapping.ToAnalytics(d.Analytics, d.Availability) },
)

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "List standards with an optional filter and ordering",
	Example: `  studyplan standards --filter "priority == 'high' && status == 'incomplete'"
  studyplan standards --filter "category == 4" --order-by "remaining_hours desc"
  studyplan standards --filter "name.startsWith('SLFRS')" --page-size 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")
		pageNo, _ := cmd.Flags().GetInt32("page")
		pageSize, _ := cmd.Flags().GetInt32("page-size")
		jsonOut, _ := cmd.Flags().GetBool("json")

		return withApp(cmd, func(ctx context.Context, c *app.Container) error {
			items, total, err := c.Plan.ListStudyItems(ctx, &repository.ListStudyItemQuery{
				Pagination:  repository.Pagination{PageNo: pageNo, PageSize: pageSize},
				FilterOrder: repository.FilterOrder{Filter: filter, OrderBy: orderBy},
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"standards": lo.Map(items, func(item entity.CategorizedItem, _ int) mapping.StudyItem {
						return mapping.ToCategorizedItem(item)
					}),
					"total": total,
				})
			}
			return renderStandards(cmd.OutOrStdout(), items, total)
		})
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd, scheduleCmd, timelineCmd, analyticsCmd, standardsCmd)

	standardsCmd.Flags().String("filter", "", "CEL filter over priority, difficulty, status, category, name and id")
	standardsCmd.Flags().String("order-by", "", "ordering, e.g. \"priority, remaining_hours desc\"")
	standardsCmd.Flags().Int32("page", 1, "page number")
	standardsCmd.Flags().Int32("page-size", 100, "standards per page")
	standardsCmd.Flags().Bool("json", false, "print JSON instead of a table")
}
