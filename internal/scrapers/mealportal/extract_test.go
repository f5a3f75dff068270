package mealportal

import (
	"fmt"
	"strings"
	"testing"

	"mealplan-backend/internal/aliases"
	"mealplan-backend/internal/components/telemetry"
	"mealplan-backend/internal/mealplan"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/meals_page.html
var mealsPageTest string

func dish(s string) *string {
	return mealplan.Dish(s)
}

func TestExtractMealsPage(t *testing.T) {
	tel := telemetry.NewMemoryAPI()
	extractor := NewExtractor(aliases.New(map[string]string{"max müller": "Max"}), tel)

	plans := extractor.Extract(mealsPageTest)

	expected := []mealplan.MealPlan{
		{
			Child:    "Max",
			MealType: "Mittagessen",
			Days: map[string]mealplan.DayEntry{
				"Montag, 01.07.24":   {Dish: dish("Nudeln mit Tomatensoße"), Ordered: 1},
				"Dienstag, 02.07.24": {Dish: dish("Reis"), Ordered: 0},
				"Mittwoch, 03.07.24": {Dish: dish("Kartoffeln (vegetarisch)"), Ordered: 0},
			},
			Order: []string{"Montag, 01.07.24", "Dienstag, 02.07.24", "Mittwoch, 03.07.24"},
		},
		{
			Child:    "Clara",
			MealType: "Mittagessen",
			Days: map[string]mealplan.DayEntry{
				"Montag, 01.07.24":   {Dish: dish("Nudeln mit Tomatensoße"), Ordered: 2},
				"Dienstag, 02.07.24": {Dish: dish("Reis"), Ordered: 0},
			},
			Order: []string{"Montag, 01.07.24", "Dienstag, 02.07.24"},
		},
	}
	diff := cmp.Diff(expected, plans)
	if diff != "" {
		t.Fatal(diff)
	}

	// the short dish row and the panel without a table
	panelWarnings := 0
	for _, r := range tel.Reports(telemetry.KindWarning) {
		if r.ID == "mealportal: "+report_extract_panel {
			panelWarnings++
		}
	}
	require.Equal(t, 2, panelWarnings)

	counts := tel.Reports(telemetry.KindCount)
	require.Len(t, counts, 1)
	require.Equal(t, int64(2), counts[0].Count)
}

func panelHtml(child string, headers []string, rows ...string) string {
	var out strings.Builder
	out.WriteString(`<div class="panel-mealplan">`)
	if child != "" {
		fmt.Fprintf(&out, `<span class="childname">%s</span>`, child)
	}
	out.WriteString(`<table class="food-order"><thead><tr><th></th>`)
	for _, h := range headers {
		fmt.Fprintf(&out, `<th>%s</th>`, h)
	}
	out.WriteString(`</tr></thead><tbody>`)
	for _, r := range rows {
		out.WriteString(r)
	}
	out.WriteString(`</tbody></table></div>`)
	return out.String()
}

func row(cells ...string) string {
	var out strings.Builder
	out.WriteString("<tr>")
	for _, c := range cells {
		fmt.Fprintf(&out, "<td>%s</td>", c)
	}
	out.WriteString("</tr>")
	return out.String()
}

func qty(text string) string {
	return fmt.Sprintf(`<div class="order-quantity">%s</div>`, text)
}

func newTestExtractor() Extractor {
	return NewExtractor(aliases.Table{}, telemetry.NewMemoryAPI())
}

func TestExtractEndToEndScenario(t *testing.T) {
	page := panelHtml(
		"Anna",
		[]string{"Montag, 01.07.24", "Dienstag, 02.07.24"},
		row("Mittag", "Nudeln", "Reis"),
		row(qty("Anzahl: 0"), qty("Anzahl: 2")),
	)

	plans := newTestExtractor().Extract(page)
	require.Equal(t, []mealplan.MealPlan{
		{
			Child:    "Anna",
			MealType: "Mittag",
			Days: map[string]mealplan.DayEntry{
				"Montag, 01.07.24":   {Dish: dish("Nudeln"), Ordered: 0},
				"Dienstag, 02.07.24": {Dish: dish("Reis"), Ordered: 2},
			},
			Order: []string{"Montag, 01.07.24", "Dienstag, 02.07.24"},
		},
	}, plans)

	require.Equal(t, []string{"Anna"}, mealplan.ChildrenWithoutLunch(plans, "01.07.24"))
	require.Equal(t, []string{}, mealplan.ChildrenWithoutLunch(plans, "02.07.24"))
}

func TestExtractMalformedQuantities(t *testing.T) {
	malformed := []string{
		qty("Anzahl 2"),
		qty("Anzahl: zwei"),
		qty("Anzahl:"),
		qty("Anzahl: -1"),
		qty("Anzahl: 1.5"),
		qty(""),
		"kein Element",
	}

	for _, cell := range malformed {
		page := panelHtml(
			"Anna",
			[]string{"Montag, 01.07.24"},
			row("Mittag", "Nudeln"),
			row(qty("Anzahl: 9"), cell),
			// the first row with a marker wins, this one is never read
			row(qty("Anzahl: 7")),
		)
		// the first cell is under Monday, the malformed cell has no header
		plans := newTestExtractor().Extract(page)
		require.Len(t, plans, 1)
		require.Equal(t, 9, plans[0].Days["Montag, 01.07.24"].Ordered)

		page = panelHtml(
			"Anna",
			[]string{"Montag, 01.07.24"},
			row("Mittag", "Nudeln"),
			row(cell),
		)
		plans = newTestExtractor().Extract(page)
		require.Len(t, plans, 1)
		require.Equal(t, 0, plans[0].Days["Montag, 01.07.24"].Ordered, cell)
	}
}

func TestExtractQuantityAfterFirstColon(t *testing.T) {
	page := panelHtml(
		"Anna",
		[]string{"Montag, 01.07.24", "Dienstag, 02.07.24"},
		row("Mittag", "Nudeln", "Reis"),
		row(qty(" Anzahl :  3 "), qty("Anzahl: <b>4</b>")),
	)
	plans := newTestExtractor().Extract(page)
	require.Len(t, plans, 1)
	require.Equal(t, 3, plans[0].Days["Montag, 01.07.24"].Ordered)
	require.Equal(t, 4, plans[0].Days["Dienstag, 02.07.24"].Ordered)
}

func TestExtractPlaceholderDays(t *testing.T) {
	page := panelHtml(
		"Anna",
		[]string{"Montag, 01.07.24"},
		row("Mittag", "Nudeln", "Reis", "Suppe"),
		row(qty("Anzahl: 1"), qty("Anzahl: 5"), qty("Anzahl: 5")),
	)
	plans := newTestExtractor().Extract(page)
	require.Len(t, plans, 1)
	require.Equal(t, map[string]mealplan.DayEntry{
		"Montag, 01.07.24": {Dish: dish("Nudeln"), Ordered: 1},
		"Day 2":            {Dish: dish("Reis"), Ordered: 0},
		"Day 3":            {Dish: dish("Suppe"), Ordered: 0},
	}, plans[0].Days)
}

func TestExtractOrderWithoutDish(t *testing.T) {
	page := panelHtml(
		"Anna",
		[]string{"Montag, 01.07.24", "Dienstag, 02.07.24", "Mittwoch, 03.07.24"},
		row("Mittag", "Nudeln"),
		row(qty("Anzahl: 1"), qty("Anzahl: 0"), qty("Anzahl: 2")),
	)
	plans := newTestExtractor().Extract(page)
	require.Len(t, plans, 1)
	require.Equal(t, map[string]mealplan.DayEntry{
		"Montag, 01.07.24":   {Dish: dish("Nudeln"), Ordered: 1},
		"Dienstag, 02.07.24": {Ordered: 0},
		"Mittwoch, 03.07.24": {Ordered: 2},
	}, plans[0].Days)
	require.Nil(t, plans[0].Days["Dienstag, 02.07.24"].Dish)
}

func TestExtractOrderRowMapsPositionally(t *testing.T) {
	// no order possible on Monday, the trailing cell links to the order form
	page := panelHtml(
		"Anna",
		[]string{"Montag, 01.07.24", "Dienstag, 02.07.24"},
		row("Mittag", "Nudeln", "Reis"),
		row("geschlossen", qty("Anzahl: 2"), `<a href="/kunden/essen/bearbeiten/">Ändern</a>`),
	)
	plans := newTestExtractor().Extract(page)
	require.Len(t, plans, 1)
	require.Equal(t, 0, plans[0].Days["Montag, 01.07.24"].Ordered)
	require.Equal(t, 2, plans[0].Days["Dienstag, 02.07.24"].Ordered)
	require.Len(t, plans[0].Days, 2)

	require.Equal(t, []string{"Anna"}, mealplan.ChildrenWithoutLunch(plans, "01.07.24"))
	require.Equal(t, []string{}, mealplan.ChildrenWithoutLunch(plans, "02.07.24"))
}

func TestExtractRecordsPageOrder(t *testing.T) {
	page := panelHtml(
		"Anna",
		[]string{"Montag, 01.07.24", "Mo, 01.07.24", "Dienstag, 02.07.24"},
		row("Mittag", "Nudeln", "Reis"),
		row(qty("Anzahl: 0"), qty("Anzahl: 2"), qty("Anzahl: 1")),
	)
	plans := newTestExtractor().Extract(page)
	require.Len(t, plans, 1)
	require.Equal(t, []string{"Montag, 01.07.24", "Mo, 01.07.24", "Dienstag, 02.07.24"}, plans[0].Order)

	// the first label on the page wins, not the first in sorted order
	require.Equal(t, []string{"Anna"}, mealplan.ChildrenWithoutLunch(plans, "01.07.24"))
}

func TestExtractShortDishRowSkipsOnlyThatPanel(t *testing.T) {
	page := panelHtml(
		"Anna",
		[]string{"Montag, 01.07.24"},
		row("Mittag"),
	) + panelHtml(
		"Ben",
		[]string{"Montag, 01.07.24"},
		row("Mittag", "Nudeln"),
	) + panelHtml(
		"Clara",
		[]string{"Montag, 01.07.24"},
	)

	plans := newTestExtractor().Extract(page)
	require.Len(t, plans, 1)
	require.Equal(t, "Ben", plans[0].Child)
}

func TestExtractMissingChildName(t *testing.T) {
	tel := telemetry.NewMemoryAPI()
	extractor := NewExtractor(aliases.New(map[string]string{"": "nobody"}), tel)

	page := panelHtml(
		"",
		[]string{"Montag, 01.07.24"},
		row("Mittag", "Nudeln"),
	)
	plans := extractor.Extract(page)
	require.Len(t, plans, 1)
	require.Equal(t, "", plans[0].Child)

	warnings := tel.Reports(telemetry.KindWarning)
	require.Len(t, warnings, 1)
	require.Equal(t, "mealportal: "+report_extract_child, warnings[0].ID)
}

func TestExtractAliasSuggestion(t *testing.T) {
	tel := telemetry.NewMemoryAPI()
	extractor := NewExtractor(aliases.New(map[string]string{"maximilian mustermann": "Max"}), tel)

	page := panelHtml(
		"Maximilian  Musterman",
		[]string{"Montag, 01.07.24"},
		row("Mittag", "Nudeln"),
	)
	plans := extractor.Extract(page)
	require.Len(t, plans, 1)
	require.Equal(t, "Maximilian Musterman", plans[0].Child)

	warnings := tel.Reports(telemetry.KindWarning)
	require.Len(t, warnings, 1)
	require.Equal(t, "mealportal: "+report_extract_alias, warnings[0].ID)
	require.Equal(t, "maximilian mustermann", warnings[0].Params[2])
}

func TestExtractNoPanels(t *testing.T) {
	require.Equal(t, []mealplan.MealPlan{}, newTestExtractor().Extract("<html><body>Wartung</body></html>"))
	require.Equal(t, []mealplan.MealPlan{}, newTestExtractor().Extract(""))
}
