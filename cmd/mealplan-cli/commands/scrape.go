package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mealplan-backend/internal/mealplan"
	"mealplan-backend/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeJson *bool

func init() {
	scrapeJson = scrapeCmd.Flags().Bool("json", false, "Print the plans as json instead of a table.")
	rootCmd.AddCommand(scrapeCmd)
}

// dayCell formats one day of a plan as "<dish> (<ordered>)".
func dayCell(plan mealplan.MealPlan, day string) string {
	entry, ok := plan.Days[day]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s (%d)", entry.DishOr(mealplan.NoDish), entry.Ordered)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--json]",
	Short: "Logs into the meal portal and prints the meal plan of every child.",
	Run: func(cmd *cobra.Command, args []string) {
		svc := createService(readConfig())

		t1 := time.Now()
		plans, err := svc.RunScrape(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to scrape", err)
		}
		slog.Debug("scraping time", "seconds", time.Since(t1).Seconds())

		if *scrapeJson {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			err = encoder.Encode(plans)
			if err != nil {
				serviceutil.Fatal("failed to encode plans", err)
			}
			return
		}

		days := mealplan.DayAxis(plans)

		t := newTable()
		header := table.Row{"Child", "Meal type"}
		for _, day := range days {
			header = append(header, day)
		}
		t.AppendHeader(header)

		for _, plan := range plans {
			row := table.Row{plan.Child, plan.MealType}
			for _, day := range days {
				row = append(row, dayCell(plan, day))
			}
			t.AppendRow(row)
		}
		t.Render()
	},
}
