package service

import (
	"context"
	"fmt"

	"mealplan-backend/internal/aliases"
	"mealplan-backend/internal/components/assert"
	"mealplan-backend/internal/components/chrono"
	"mealplan-backend/internal/components/telemetry"
	"mealplan-backend/internal/mealplan"
	"mealplan-backend/internal/scrapers/mealportal"

	"github.com/google/uuid"
)

// PortalAPI is an abstraction over logging into the meal portal and fetching the meal
// plan page, a fake implementation makes the pipeline testable without a portal.
//
// note: fault injection point
type PortalAPI interface {
	AuthenticateAndFetch(ctx context.Context, creds mealportal.Credentials) (string, error)
}

const (
	report_service_scrape = "service.scrape"
	report_service_today  = "service.today"
)

type serviceConfig struct {
	time chrono.API
	tel  telemetry.API
}

type ServiceOption func(cfg *serviceConfig)

func WithCustomTimeAPI(time chrono.API) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.time = time
	}
}

func WithCustomTelemetryAPI(tel telemetry.API) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.tel = tel
	}
}

// Service runs the scrape pipeline: login, fetch, extract. Nothing is cached between
// runs, every call logs into the portal again.
type Service struct {
	portal    PortalAPI
	creds     mealportal.Credentials
	extractor mealportal.Extractor
	time      chrono.API
	tel       telemetry.API
}

// NewService creates a Service, the time API defaults to the portal's timezone.
func NewService(
	portal PortalAPI,
	creds mealportal.Credentials,
	table aliases.Table,
	options ...ServiceOption,
) (Service, error) {
	assert.NotNil(portal, "portal API implementation")

	cfg := serviceConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.SlogAPI{}
	}
	if cfg.time == nil {
		standard, err := chrono.NewStandardImpl(chrono.DefaultLocation)
		if err != nil {
			return Service{}, err
		}
		cfg.time = standard
	}

	return Service{
		portal:    portal,
		creds:     creds,
		extractor: mealportal.NewExtractor(table, cfg.tel),
		time:      cfg.time,
		tel:       telemetry.NewScopedAPI("service", cfg.tel),
	}, nil
}

// RunScrape logs in, fetches the meal plan page and extracts all plans on it.
func (s Service) RunScrape(ctx context.Context) ([]mealplan.MealPlan, error) {
	runId := uuid.NewString()
	s.tel.ReportDebug(report_service_scrape, "start", runId)

	markup, err := s.portal.AuthenticateAndFetch(ctx, s.creds)
	if err != nil {
		return nil, fmt.Errorf("scrape meal plan: %w", err)
	}

	plans := s.extractor.Extract(markup)
	s.tel.ReportDebug(report_service_scrape, "done", runId, len(plans))
	return plans, nil
}

// Today returns today's date the way the portal formats it in day labels.
func (s Service) Today() string {
	return mealplan.FormatDay(s.time.Now())
}

// RunTodayCheck returns the children that have no lunch ordered for today.
func (s Service) RunTodayCheck(ctx context.Context) ([]string, error) {
	plans, err := s.RunScrape(ctx)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	children := mealplan.ChildrenWithoutLunch(plans, today)
	s.tel.ReportDebug(report_service_today, today, children)
	return children, nil
}
