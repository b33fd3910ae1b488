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
	"github.com/eslsoft/studyplan/internal/usecase"
)

type itemAction func(ctx context.Context, plan usecase.StudyPlanUsecase, categoryID int, itemID string, args []string) (*entity.StudyItem, error)

// itemCommand wires a standard mutation taking "<category-id> <item-id>" plus extra arguments.
func itemCommand(use, short string, args cobra.PositionalArgs, action itemAction) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseCategoryID(args[0])
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			return withApp(cmd, func(ctx context.Context, c *app.Container) error {
				item, err := action(ctx, c.Plan, categoryID, args[1], args[2:])
				if err != nil {
					return err
				}
				if jsonOut {
					return printJSON(cmd.OutOrStdout(), mapping.ToStudyItem(*item))
				}
				return renderItem(cmd.OutOrStdout(), categoryID, item)
			})
		},
	}
	c.Flags().Bool("json", false, "print JSON instead of a table")
	return c
}

var toggleCmd = itemCommand("toggle <category-id> <item-id>", "Flip a standard between completed and outstanding", cobra.ExactArgs(2),
	func(ctx context.Context, plan usecase.StudyPlanUsecase, categoryID int, itemID string, _ []string) (*entity.StudyItem, error) {
		return plan.ToggleCompletion(ctx, categoryID, itemID)
	})

var hoursCmd = itemCommand("hours <category-id> <item-id> <hours>", "Record the hours spent on a standard", cobra.ExactArgs(3),
	func(ctx context.Context, plan usecase.StudyPlanUsecase, categoryID int, itemID string, args []string) (*entity.StudyItem, error) {
		hours, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", entity.ErrInvalidHours, args[0])
		}
		return plan.SetHoursSpent(ctx, categoryID, itemID, hours)
	})

var priorityCmd = itemCommand("priority <category-id> <item-id> <high|medium|low>", "Change the priority of a standard", cobra.ExactArgs(3),
	func(ctx context.Context, plan usecase.StudyPlanUsecase, categoryID int, itemID string, args []string) (*entity.StudyItem, error) {
		return plan.SetPriority(ctx, categoryID, itemID, entity.ParseLevel(args[0]))
	})

var notesCmd = itemCommand("notes <category-id> <item-id> [text...]", "Replace the notes of a standard, no text clears them", cobra.MinimumNArgs(2),
	func(ctx context.Context, plan usecase.StudyPlanUsecase, categoryID int, itemID string, args []string) (*entity.StudyItem, error) {
		return plan.SetNotes(ctx, categoryID, itemID, strings.Join(args, " "))
	})

var planDateCmd = itemCommand("plan-date <category-id> <item-id> <YYYY-MM-DD|none>", "Pin a standard to a start date or clear the pin", cobra.ExactArgs(3),
	func(ctx context.Context, plan usecase.StudyPlanUsecase, categoryID int, itemID string, args []string) (*entity.StudyItem, error) {
		var date *time.Time
		if !strings.EqualFold(args[0], "none") {
			parsed, err := parseDateArg(args[0])
			if err != nil {
				return nil, err
			}
			date = &parsed
		}
		return plan.SetScheduledDate(ctx, categoryID, itemID, date)
	})

func init() {
	rootCmd.AddCommand(toggleCmd, hoursCmd, priorityCmd, notesCmd, planDateCmd)
}
