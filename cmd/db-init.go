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

	"github.com/spf13/cobra"

	"github.com/eslsoft/studyplan/internal/app"
)

var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create the schema and seed the default curriculum",
	Long:  "db-init creates the tables if needed and stores the built-in curriculum when the plan is empty.\nWith --reset any existing progress is discarded and the default plan is written again.",
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		return withApp(cmd, func(ctx context.Context, c *app.Container) error {
			seeded, err := c.Plan.Seed(ctx, reset)
			if err != nil {
				return err
			}
			if seeded {
				cmd.Println("Schema ready, default curriculum stored")
			} else {
				cmd.Println("Schema ready, existing plan kept")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)

	dbInitCmd.Flags().Bool("reset", false, "discard the stored plan and seed the default curriculum")
}
