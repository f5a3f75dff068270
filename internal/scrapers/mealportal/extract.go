package mealportal

import (
	"fmt"
	"strconv"
	"strings"

	"mealplan-backend/internal/aliases"
	"mealplan-backend/internal/components/assert"
	"mealplan-backend/internal/components/telemetry"
	"mealplan-backend/internal/mealplan"
	"mealplan-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	panelSelector         = "div.panel-mealplan"
	childNameSelector     = "span.childname"
	tableSelector         = "table.food-order"
	orderQuantitySelector = "div.order-quantity"

	// placeholderDay names dish columns that have no day header, the argument is the
	// 1-based column position.
	placeholderDay = "Day %d"
)

const (
	report_extract_panel    = "extract.panel"
	report_extract_child    = "extract.child"
	report_extract_alias    = "extract.alias"
	report_extract_quantity = "extract.quantity"
	report_extract_plans    = "extract.plans"
)

// Extractor turns the meal plan page into mealplan.MealPlan values. It tolerates markup
// it does not understand: a panel it cannot read is skipped and reported, values it
// cannot parse fall back to their defaults.
type Extractor struct {
	aliases aliases.Table
	tel     telemetry.API
}

func NewExtractor(table aliases.Table, tel telemetry.API) Extractor {
	assert.NotNil(tel, "tel")
	return Extractor{
		aliases: table,
		tel:     telemetry.NewScopedAPI("mealportal", tel),
	}
}

// Extract parses markup and returns one plan per readable meal plan panel, in document order.
func (e Extractor) Extract(markup string) []mealplan.MealPlan {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.tel.ReportBroken(report_extract_plans, fmt.Errorf("parse html: %w", err))
		return []mealplan.MealPlan{}
	}
	return e.ExtractDocument(doc)
}

func (e Extractor) ExtractDocument(doc *goquery.Document) []mealplan.MealPlan {
	plans := []mealplan.MealPlan{}
	doc.Find(panelSelector).Each(func(i int, panel *goquery.Selection) {
		plan, ok := e.extractPanel(i, panel)
		if !ok {
			return
		}
		plans = append(plans, plan)
	})
	e.tel.ReportCount(report_extract_plans, int64(len(plans)))
	return plans
}

func (e Extractor) childName(idx int, panel *goquery.Selection) string {
	label := panel.Find(childNameSelector).First()
	if label.Length() == 0 {
		e.tel.ReportWarning(report_extract_child, "panel has no child name", idx)
		return ""
	}

	raw := htmlutil.CollapseWhitespace(htmlutil.GetText(label.Nodes[0]))
	if e.aliases.Len() > 0 && !e.aliases.Has(raw) {
		if key, score, ok := e.aliases.Suggest(raw); ok {
			e.tel.ReportWarning(report_extract_alias, "name has no alias but is close to one", raw, key, score)
		}
	}
	return e.aliases.Resolve(raw)
}

func dayHeaders(table *goquery.Selection) []string {
	var headers []string
	row := table.Find("thead").First().Find("tr").First()
	row.Find("th").Each(func(i int, th *goquery.Selection) {
		// the first column labels the rows
		if i == 0 {
			return
		}
		headers = append(headers, htmlutil.StrippedText(th, ""))
	})
	return headers
}

func (e Extractor) extractPanel(idx int, panel *goquery.Selection) (mealplan.MealPlan, bool) {
	child := e.childName(idx, panel)

	table := panel.Find(tableSelector).First()
	if table.Length() == 0 {
		e.tel.ReportWarning(report_extract_panel, "panel has no food order table", idx, child)
		return mealplan.MealPlan{}, false
	}

	headers := dayHeaders(table)

	rows := table.Find("tbody").First().Find("tr")
	if rows.Length() == 0 {
		e.tel.ReportWarning(report_extract_panel, "food order table has no body rows", idx, child)
		return mealplan.MealPlan{}, false
	}

	dishCells := rows.First().Find("td")
	if dishCells.Length() < 2 {
		e.tel.ReportWarning(report_extract_panel, "dish row has less than 2 cells", idx, child)
		return mealplan.MealPlan{}, false
	}

	plan := mealplan.MealPlan{
		Child:    child,
		MealType: htmlutil.StrippedText(dishCells.First(), ""),
		Days:     map[string]mealplan.DayEntry{},
	}

	dishCells.Slice(1, dishCells.Length()).Each(func(i int, cell *goquery.Selection) {
		label := fmt.Sprintf(placeholderDay, i+1)
		if i < len(headers) {
			label = headers[i]
		}
		if _, ok := plan.Days[label]; !ok {
			plan.Order = append(plan.Order, label)
		}
		plan.Days[label] = mealplan.DayEntry{
			Dish:    mealplan.Dish(htmlutil.StrippedText(cell, " ")),
			Ordered: 0,
		}
	})

	orderRow := rows.Slice(1, rows.Length()).FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Find(orderQuantitySelector).Length() > 0
	}).First()
	if orderRow.Length() == 0 {
		return plan, true
	}

	// cell i belongs to day header i, cells past the last header are ignored
	orderRow.Find("td").Each(func(i int, cell *goquery.Selection) {
		if i >= len(headers) {
			return
		}
		label := headers[i]
		qty := e.orderQuantity(cell.Find(orderQuantitySelector).First(), label)

		entry, ok := plan.Days[label]
		if !ok {
			plan.Order = append(plan.Order, label)
		}
		entry.Ordered = qty
		plan.Days[label] = entry
	})

	return plan, true
}

// orderQuantity reads "Anzahl: 2" style text, anything unreadable counts as 0.
func (e Extractor) orderQuantity(sel *goquery.Selection, label string) int {
	if sel.Length() == 0 {
		return 0
	}
	text := htmlutil.StrippedText(sel, "")
	_, after, found := strings.Cut(text, ":")
	if !found {
		e.tel.ReportWarning(report_extract_quantity, "no colon in order quantity", label, text)
		return 0
	}
	qty, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil || qty < 0 {
		e.tel.ReportWarning(report_extract_quantity, "order quantity is not a count", label, text)
		return 0
	}
	return qty
}
