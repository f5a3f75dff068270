// Package server exposes the meal plan over http: an html table at `/`, the extracted
// plans as json at `/menu` and the children without lunch today at `/no_lunch_today`.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/http"

	"mealplan-backend/internal/components/assert"
	"mealplan-backend/internal/components/telemetry"
	"mealplan-backend/internal/mealplan"
	"mealplan-backend/internal/scrapers/mealportal"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// ScrapeAPI is the pipeline the endpoints are served from.
//
// note: fault injection point
type ScrapeAPI interface {
	RunScrape(ctx context.Context) ([]mealplan.MealPlan, error)
	RunTodayCheck(ctx context.Context) ([]string, error)
}

const (
	report_server_index          = "server.index"
	report_server_menu           = "server.menu"
	report_server_no_lunch_today = "server.no-lunch-today"
)

// error kinds of the json error payload
const (
	KindTransport      = "transport"
	KindMissingToken   = "missing_token"
	KindAuthentication = "authentication"
	KindInternal       = "internal"
)

type Server struct {
	api     ScrapeAPI
	display Display
	tel     telemetry.API
}

func NewServer(api ScrapeAPI, display Display, tel telemetry.API) Server {
	assert.NotNil(api, "scrape API implementation")
	assert.NotNil(tel, "tel")
	return Server{
		api:     api,
		display: display,
		tel:     telemetry.NewScopedAPI("server", tel),
	}
}

// Handler returns the routes wrapped with CORS and otel instrumentation. An empty
// allowedOrigins allows every origin.
func (s Server) Handler(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /menu", s.handleMenu)
	mux.HandleFunc("GET /no_lunch_today", s.handleNoLunchToday)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return otelhttp.NewHandler(corsHandler.Handler(mux), "mealplan-server")
}

// classifyError maps a pipeline error to its json kind and http status.
func classifyError(err error) (kind string, status int) {
	var transportErr *mealportal.TransportError
	switch {
	case errors.As(err, &transportErr):
		return KindTransport, http.StatusBadGateway
	case errors.Is(err, mealportal.ErrMissingToken):
		return KindMissingToken, http.StatusBadGateway
	case errors.Is(err, mealportal.ErrAuthenticationFailed):
		return KindAuthentication, http.StatusUnauthorized
	default:
		return KindInternal, http.StatusInternalServerError
	}
}

func (s Server) writeJson(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(value)
	if err != nil {
		s.tel.ReportBroken("server.write-json", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s Server) writeJsonError(w http.ResponseWriter, reportId string, err error) {
	kind, status := classifyError(err)
	s.tel.ReportWarning(reportId, kind, err)
	s.writeJson(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

type menuResponse struct {
	Children []mealplan.MealPlan `json:"children"`
}

func (s Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	plans, err := s.api.RunScrape(r.Context())
	if err != nil {
		s.writeJsonError(w, report_server_menu, err)
		return
	}
	s.writeJson(w, http.StatusOK, menuResponse{Children: plans})
}

type noLunchTodayResponse struct {
	NoLunchToday []string `json:"no_lunch_today"`
}

func (s Server) handleNoLunchToday(w http.ResponseWriter, r *http.Request) {
	children, err := s.api.RunTodayCheck(r.Context())
	if err != nil {
		s.writeJsonError(w, report_server_no_lunch_today, err)
		return
	}
	if children == nil {
		children = []string{}
	}
	s.writeJson(w, http.StatusOK, noLunchTodayResponse{NoLunchToday: children})
}

type pageCell struct {
	Known   bool
	Ordered int
}

type pageRow struct {
	Child    string
	MealType string
	Cells    []pageCell
}

type pageData struct {
	Display Display
	Days    []string
	Headers mealplan.Headers
	Rows    []pageRow
}

func newPageData(display Display, plans []mealplan.MealPlan) pageData {
	days := mealplan.DayAxis(plans)
	data := pageData{
		Display: display,
		Days:    days,
		Headers: mealplan.BuildHeaders(days, plans),
		Rows:    make([]pageRow, len(plans)),
	}
	for i, plan := range plans {
		row := pageRow{
			Child:    plan.Child,
			MealType: plan.MealType,
			Cells:    make([]pageCell, len(days)),
		}
		for j, day := range days {
			entry, ok := plan.Days[day]
			row.Cells[j] = pageCell{Known: ok, Ordered: entry.Ordered}
		}
		data.Rows[i] = row
	}
	return data
}

func (s Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	plans, err := s.api.RunScrape(r.Context())
	if err != nil {
		kind, _ := classifyError(err)
		s.tel.ReportWarning(report_server_index, kind, err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "<p>Fehler: %s</p>", html.EscapeString(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = indexTemplate.Execute(w, newPageData(s.display, plans))
	if err != nil {
		s.tel.ReportBroken(report_server_index, fmt.Errorf("render template: %w", err))
	}
}
