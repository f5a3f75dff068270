package mealplan

import "time"

// FormatDay formats t the way the portal writes dates in day labels.
func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

// ChildrenWithoutLunch returns the children of all plans that ordered nothing on today
// (formatted as dd.mm.yy). Only the first day of a plan in page order that matches today is
// considered, so a child is listed at most once per plan.
func ChildrenWithoutLunch(plans []MealPlan, today string) []string {
	result := []string{}
	for _, plan := range plans {
		for _, label := range plan.PageLabels() {
			_, date, ok := SplitDayLabel(label)
			if !ok || date != today {
				continue
			}
			if plan.Days[label].Ordered == 0 {
				result = append(result, plan.Child)
			}
			break
		}
	}
	return result
}
