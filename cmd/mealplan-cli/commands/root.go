package commands

import (
	"context"
	"fmt"
	"os"

	"mealplan-backend/internal/components/telemetry"
	"mealplan-backend/internal/config"
	"mealplan-backend/internal/scrapers/mealportal"
	"mealplan-backend/internal/service"
	"mealplan-backend/pkg/restyutil"
	"mealplan-backend/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

var rootCmd = &cobra.Command{
	Use:   "mealplan-cli",
	Short: "mealplan-cli scrapes the meal portal and prints the meal plans in the terminal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", config.DefaultPath, "The config file to read.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func readConfig() config.Config {
	cfg, err := config.Read(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func createService(cfg config.Config) service.Service {
	tel := telemetry.SlogAPI{}

	portalOpts := cfg.PortalOptions()
	if *verbose {
		output, err := restyutil.NewFilesystemOutput(".dev/resty/mealportal")
		if err != nil {
			serviceutil.Fatal("failed to initialize resty output", err)
		}
		portalOpts.Dumper = restyutil.NewDumper(output, "password")
	}

	portal, err := mealportal.NewClient(portalOpts, tel)
	if err != nil {
		serviceutil.Fatal("failed to initialize portal client", err)
	}
	timeAPI, err := cfg.TimeAPI()
	if err != nil {
		serviceutil.Fatal("failed to initialize time api", err)
	}
	svc, err := service.NewService(
		portal,
		cfg.PortalCredentials(),
		cfg.AliasTable(),
		service.WithCustomTimeAPI(timeAPI),
		service.WithCustomTelemetryAPI(tel),
	)
	if err != nil {
		serviceutil.Fatal("failed to initialize service", err)
	}
	return svc
}
