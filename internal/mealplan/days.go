package mealplan

import (
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	// DateLayout is how the portal writes the date part of a day label.
	DateLayout = "02.01.06"
	// parseLayout also accepts days and months without a leading zero.
	parseLayout = "2.1.06"
)

// SplitDayLabel splits "Montag, 01.07.24" into "Montag" and "01.07.24". The date is the
// segment between the first and the second comma, anything after it is ignored.
// ok is false if the label has no comma.
func SplitDayLabel(label string) (weekday, date string, ok bool) {
	weekday, rest, ok := strings.Cut(label, ",")
	if !ok {
		return label, "", false
	}
	date, _, _ = strings.Cut(rest, ",")
	return strings.TrimSpace(weekday), strings.TrimSpace(date), true
}

// ParseDayLabel returns the calendar date of a day label, labels without a comma or
// with an unparseable date return the zero time and false.
func ParseDayLabel(label string) (time.Time, bool) {
	_, date, ok := SplitDayLabel(label)
	if !ok {
		return time.Time{}, false
	}
	parsed, err := time.Parse(parseLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// SortDayKeys returns a copy of labels sorted ascending by date. Labels that cannot be
// parsed sort as the earliest possible date, ties keep their input order.
func SortDayKeys(labels []string) []string {
	type keyed struct {
		label string
		date  time.Time
	}
	items := make([]keyed, len(labels))
	for i, l := range labels {
		date, _ := ParseDayLabel(l)
		items[i] = keyed{label: l, date: date}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return a.date.Compare(b.date)
	})

	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.label
	}
	return out
}

// DayAxis returns the union of the day labels of all plans in date order.
func DayAxis(plans []MealPlan) []string {
	set := map[string]struct{}{}
	for _, p := range plans {
		for label := range p.Days {
			set[label] = struct{}{}
		}
	}
	return SortDayKeys(slices.Sorted(maps.Keys(set)))
}

// Headers are the three header rows of the display table, parallel to the day axis.
type Headers struct {
	Dates    []string
	Weekdays []string
	Dishes   []string
}

// NoDish is shown in the dish header when the representative plan has no dish for a day.
const NoDish = "-"

// BuildHeaders derives the date, weekday and dish header rows for the given day axis. The
// dish of each day is taken from the first plan, the rows stay empty if there is no plan
// or the first plan has no days.
func BuildHeaders(days []string, plans []MealPlan) Headers {
	var headers Headers
	if len(plans) == 0 || len(plans[0].Days) == 0 {
		return headers
	}
	representative := plans[0]

	for _, day := range days {
		weekday, date, ok := SplitDayLabel(day)
		if !ok {
			weekday = day
			date = day
		}
		headers.Dates = append(headers.Dates, date)
		headers.Weekdays = append(headers.Weekdays, weekday)

		dish := NoDish
		if entry, ok := representative.Days[day]; ok {
			dish = entry.DishOr(NoDish)
		}
		headers.Dishes = append(headers.Dishes, dish)
	}
	return headers
}
