package commands

import (
	"fmt"

	"mealplan-backend/pkg/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(todayCmd)
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Prints the children that have no lunch ordered for today.",
	Run: func(cmd *cobra.Command, args []string) {
		svc := createService(readConfig())

		children, err := svc.RunTodayCheck(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to check today", err)
		}

		if len(children) == 0 {
			fmt.Printf("Every child has lunch on %s.\n", svc.Today())
			return
		}
		fmt.Printf("No lunch ordered on %s:\n", svc.Today())
		for _, child := range children {
			fmt.Printf("  - %s\n", child)
		}
	},
}
