package main

import (
	"flag"

	"mealplan-backend/internal/components/telemetry"
	"mealplan-backend/internal/config"
	"mealplan-backend/internal/scrapers/mealportal"
	"mealplan-backend/internal/server"
	"mealplan-backend/internal/service"
	"mealplan-backend/pkg/restyutil"
	"mealplan-backend/pkg/serviceutil"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", config.DefaultPath, "The config file to read.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := config.Read(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	timeAPI, err := cfg.TimeAPI()
	if err != nil {
		serviceutil.Fatal("init time api", err)
	}

	tel := telemetry.SlogAPI{}

	portalOpts := cfg.PortalOptions()
	if *verbose {
		output, err := restyutil.NewFilesystemOutput(".dev/resty/mealportal")
		if err != nil {
			serviceutil.Fatal("init resty output", err)
		}
		portalOpts.Dumper = restyutil.NewDumper(output, "password")
	}

	portal, err := mealportal.NewClient(portalOpts, tel)
	if err != nil {
		serviceutil.Fatal("init portal client", err)
	}
	svc, err := service.NewService(
		portal,
		cfg.PortalCredentials(),
		cfg.AliasTable(),
		service.WithCustomTimeAPI(timeAPI),
		service.WithCustomTelemetryAPI(tel),
	)
	if err != nil {
		serviceutil.Fatal("init service", err)
	}

	srv := server.NewServer(svc, cfg.Display, tel)
	err = serviceutil.StartHttpServer(ctx, cfg.Server.Port, srv.Handler(cfg.Server.AllowedOrigins))
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
