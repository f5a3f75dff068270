// Package mealplan holds the normalized form of the weekly meal plan page and the
// queries derived from it.
package mealplan

import (
	"maps"
	"slices"
)

// DayEntry is what a child gets on one day.
type DayEntry struct {
	// Dish is nil when the order-quantity row has a column the dish row lacks.
	Dish *string `json:"dish,omitempty"`
	// Ordered is the number of meals ordered, never negative.
	Ordered int `json:"ordered"`
}

// DishOr returns the dish or fallback if there is none.
func (d DayEntry) DishOr(fallback string) string {
	if d.Dish == nil {
		return fallback
	}
	return *d.Dish
}

// MealPlan is the week of one child for one meal type, keyed by day label
// ("<Weekday>, <dd.mm.yy>").
type MealPlan struct {
	// Child is the display name after alias resolution, empty when the panel has no name label.
	Child    string              `json:"child"`
	MealType string              `json:"meal_type"`
	Days     map[string]DayEntry `json:"days"`
	// Order lists the day labels in the order they appeared on the page.
	Order []string `json:"-"`
}

// Labels returns the day labels of the plan in date order.
func (p MealPlan) Labels() []string {
	return SortDayKeys(slices.Sorted(maps.Keys(p.Days)))
}

// PageLabels returns the day labels in page order. Labels missing from Order follow in
// date order.
func (p MealPlan) PageLabels() []string {
	out := make([]string, 0, len(p.Days))
	seen := make(map[string]struct{}, len(p.Days))
	for _, label := range p.Order {
		if _, ok := p.Days[label]; !ok {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	for _, label := range p.Labels() {
		if _, ok := seen[label]; !ok {
			out = append(out, label)
		}
	}
	return out
}

// Dish returns a pointer to a copy of s, for building a DayEntry.
func Dish(s string) *string {
	return &s
}
