package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mealplan-backend/internal/components/telemetry"
	"mealplan-backend/internal/mealplan"
	"mealplan-backend/internal/scrapers/mealportal"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeScrapeAPI struct {
	plans    []mealplan.MealPlan
	children []string
	err      error
}

func (f fakeScrapeAPI) RunScrape(ctx context.Context) ([]mealplan.MealPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plans, nil
}

func (f fakeScrapeAPI) RunTodayCheck(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.children, nil
}

func testPlans() []mealplan.MealPlan {
	return []mealplan.MealPlan{
		{
			Child:    "Anna",
			MealType: "Mittag",
			Days: map[string]mealplan.DayEntry{
				"Montag, 01.07.24":   {Dish: mealplan.Dish("Nudeln"), Ordered: 0},
				"Dienstag, 02.07.24": {Dish: mealplan.Dish("Reis"), Ordered: 2},
			},
		},
		{
			Child:    "Ben",
			MealType: "Mittag",
			Days: map[string]mealplan.DayEntry{
				"Dienstag, 02.07.24": {Ordered: 1},
			},
		},
	}
}

func serve(t testing.TB, api ScrapeAPI, path string) *httptest.ResponseRecorder {
	srv := NewServer(api, DefaultDisplay(), telemetry.NewMemoryAPI())
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	srv.Handler(nil).ServeHTTP(rec, req)
	return rec
}

func TestMenu(t *testing.T) {
	rec := serve(t, fakeScrapeAPI{plans: testPlans()}, "/menu")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	expected := map[string]any{
		"children": []any{
			map[string]any{
				"child":     "Anna",
				"meal_type": "Mittag",
				"days": map[string]any{
					"Montag, 01.07.24":   map[string]any{"dish": "Nudeln", "ordered": float64(0)},
					"Dienstag, 02.07.24": map[string]any{"dish": "Reis", "ordered": float64(2)},
				},
			},
			map[string]any{
				"child":     "Ben",
				"meal_type": "Mittag",
				"days": map[string]any{
					"Dienstag, 02.07.24": map[string]any{"ordered": float64(1)},
				},
			},
		},
	}
	diff := cmp.Diff(expected, body)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestNoLunchToday(t *testing.T) {
	rec := serve(t, fakeScrapeAPI{children: []string{"Anna"}}, "/no_lunch_today")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"no_lunch_today": ["Anna"]}`, rec.Body.String())

	rec = serve(t, fakeScrapeAPI{}, "/no_lunch_today")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"no_lunch_today": []}`, rec.Body.String())
}

func TestJsonErrors(t *testing.T) {
	testCases := []struct {
		err    error
		kind   string
		status int
	}{
		{
			err:    &mealportal.TransportError{Method: "GET", Url: "https://portal/login/", StatusCode: 503},
			kind:   KindTransport,
			status: http.StatusBadGateway,
		},
		{
			err:    mealportal.ErrMissingToken,
			kind:   KindMissingToken,
			status: http.StatusBadGateway,
		},
		{
			err:    mealportal.ErrAuthenticationFailed,
			kind:   KindAuthentication,
			status: http.StatusUnauthorized,
		},
		{
			err:    errors.New("something else"),
			kind:   KindInternal,
			status: http.StatusInternalServerError,
		},
	}

	for _, test := range testCases {
		for _, path := range []string{"/menu", "/no_lunch_today"} {
			rec := serve(t, fakeScrapeAPI{err: test.err}, path)
			require.Equal(t, test.status, rec.Code, path)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, test.kind, body.Kind)
			require.Equal(t, test.err.Error(), body.Error)
		}
	}
}

func TestIndex(t *testing.T) {
	rec := serve(t, fakeScrapeAPI{plans: testPlans()}, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	page := rec.Body.String()
	for _, fragment := range []string{
		"<th class=\"title\">01.07.24</th><th class=\"title\">02.07.24</th>",
		"<th class=\"title\">Montag</th><th class=\"title\">Dienstag</th>",
		"<th class=\"title\">Nudeln</th><th class=\"title\">Reis</th>",
		"<th class=\"child\">Anna</th>",
		"<th class=\"child\">Ben</th>",
		"<td class=\"yes\">2</td>",
		"<td class=\"no\">0</td>",
		"<td class=\"empty\"></td>",
		"#00ff00",
	} {
		require.Contains(t, page, fragment)
	}
	require.Less(t, strings.Index(page, "Anna"), strings.Index(page, "Ben"))
}

func TestIndexError(t *testing.T) {
	rec := serve(t, fakeScrapeAPI{err: errors.New("<boom>")}, "/")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "<p>Fehler: &lt;boom&gt;</p>", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(t, fakeScrapeAPI{}, "/admin")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewPageData(t *testing.T) {
	data := newPageData(DefaultDisplay(), testPlans())
	require.Equal(t, []string{"Montag, 01.07.24", "Dienstag, 02.07.24"}, data.Days)
	require.Equal(t, []pageRow{
		{Child: "Anna", MealType: "Mittag", Cells: []pageCell{{Known: true, Ordered: 0}, {Known: true, Ordered: 2}}},
		{Child: "Ben", MealType: "Mittag", Cells: []pageCell{{Known: false}, {Known: true, Ordered: 1}}},
	}, data.Rows)
}
