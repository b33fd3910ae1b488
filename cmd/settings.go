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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/studyplan/internal/adapter/mapping"
	"github.com/eslsoft/studyplan/internal/app"
	"github.com/eslsoft/studyplan/internal/entity"
)

var availabilityCmd = &cobra.Command{
	Use:   "availability [<day> <hours>]",
	Short: "Show or change the weekly study hours",
	Long:  "Without arguments prints the weekly availability. With a day (0-6 from Monday, or a weekday name) and hours it updates that day.",
	Example: `  studyplan availability
  studyplan availability saturday 4
  studyplan availability 0 1.5`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <day> <hours>, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, c *app.Container) error {
			var avail entity.WeeklyAvailability
			if len(args) == 0 {
				d, err := c.Plan.Dashboard(ctx)
				if err != nil {
					return err
				}
				avail = d.Availability
			} else {
				day, err := parseWeekday(args[0])
				if err != nil {
					return err
				}
				hours, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("%w: %q", entity.ErrInvalidHours, args[1])
				}
				if avail, err = c.Plan.SetWeeklyAvailability(ctx, day, hours); err != nil {
					return err
				}
			}
			return renderAvailability(cmd.OutOrStdout(), avail)
		})
	},
}

var examDateCmd = &cobra.Command{
	Use:   "exam-date [YYYY-MM-DD]",
	Short: "Show or change the exam date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, c *app.Container) error {
			if len(args) == 0 {
				d, err := c.Plan.Dashboard(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("%s (%d days)\n", d.ExamDate.Format(mapping.DateLayout), d.Metrics.DaysRemaining)
				return nil
			}
			date, err := parseDateArg(args[0])
			if err != nil {
				return err
			}
			updated, err := c.Plan.SetExamDate(ctx, date)
			if err != nil {
				return err
			}
			cmd.Printf("exam date set to %s\n", updated.Format(mapping.DateLayout))
			return nil
		})
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand <category-id>",
	Short: "Toggle whether a category is shown expanded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryID, err := parseCategoryID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, c *app.Container) error {
			cat, err := c.Plan.ToggleCategoryExpansion(ctx, categoryID)
			if err != nil {
				return err
			}
			state := "collapsed"
			if cat.Expanded {
				state = "expanded"
			}
			cmd.Printf("%s is now %s\n", cat.Name, state)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(availabilityCmd, examDateCmd, expandCmd)
}

func parseCategoryID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", entity.ErrCategoryNotFound, raw)
	}
	return id, nil
}

// parseWeekday accepts a Monday based index or an English weekday name or prefix of at least three letters.
func parseWeekday(raw string) (int, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if idx, err := strconv.Atoi(raw); err == nil {
		if idx < 0 || idx >= len(entity.WeekdayNames) {
			return 0, fmt.Errorf("%w: %d", entity.ErrInvalidWeekday, idx)
		}
		return idx, nil
	}
	if len(raw) >= 3 {
		for i, name := range entity.WeekdayNames {
			if strings.HasPrefix(strings.ToLower(name), raw) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", entity.ErrInvalidWeekday, raw)
}

// parseDateArg reads YYYY-MM-DD as local midnight.
func parseDateArg(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(mapping.DateLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}
