package main

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// nutritionTotals is a sum over the six tracked nutrients.
type nutritionTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Fiber    float64 `json:"fiber"`
	Sugars   float64 `json:"sugars"`
}

func (t *nutritionTotals) addMeal(m mealLog) {
	t.Calories += m.Calories
	t.Protein += m.Protein
	t.Carbs += m.Carbs
	t.Fats += m.Fats
	t.Fiber += m.Fiber
	t.Sugars += m.Sugars
}

func (t *nutritionTotals) add(o nutritionTotals) {
	t.Calories += o.Calories
	t.Protein += o.Protein
	t.Carbs += o.Carbs
	t.Fats += o.Fats
	t.Fiber += o.Fiber
	t.Sugars += o.Sugars
}

// rounded returns a copy with every field rounded to one decimal.
func (t nutritionTotals) rounded() nutritionTotals {
	return nutritionTotals{
		Calories: round1(t.Calories),
		Protein:  round1(t.Protein),
		Carbs:    round1(t.Carbs),
		Fats:     round1(t.Fats),
		Fiber:    round1(t.Fiber),
		Sugars:   round1(t.Sugars),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// sumMeals totals every record in meals.
func sumMeals(meals []mealLog) nutritionTotals {
	var t nutritionTotals
	for _, m := range meals {
		t.addMeal(m)
	}
	return t
}

// totalsByMealType groups meals by meal type and sums each group. All four
// meal types are always present, even when empty. Unknown meal types get
// their own key.
func totalsByMealType(meals []mealLog) map[string]nutritionTotals {
	out := make(map[string]nutritionTotals, len(mealTypes))
	for _, mt := range mealTypes {
		out[mt] = nutritionTotals{}
	}
	for _, m := range meals {
		t := out[m.MealType]
		t.addMeal(m)
		out[m.MealType] = t
	}
	return out
}

// dayTotals is one point of a per-day series.
type dayTotals struct {
	Date      string          `json:"date"`
	MealCount int             `json:"mealCount"`
	Totals    nutritionTotals `json:"totals"`
}

// dailySeries groups meals by date over keys. Every key gets an entry, zero
// valued if nothing was logged, so chart axes stay dense. Meals whose date is
// not in keys are dropped.
func dailySeries(meals []mealLog, keys []string) []dayTotals {
	idx := make(map[string]int, len(keys))
	series := make([]dayTotals, len(keys))
	for i, k := range keys {
		idx[k] = i
		series[i].Date = k
	}
	for _, m := range meals {
		i, ok := idx[m.Date]
		if !ok {
			continue
		}
		series[i].MealCount++
		series[i].Totals.addMeal(m)
	}
	return series
}

// rangeStats summarises a per-day series.
type rangeStats struct {
	Days         int             `json:"days"`
	DaysTracked  int             `json:"daysTracked"`
	DaysOnTarget int             `json:"daysOnTarget"`
	Totals       nutritionTotals `json:"totals"`
	Averages     nutritionTotals `json:"averages"`
}

// seriesStats totals a series and averages it over the days with calories > 0.
// A day is on target when it has data and stays within calorieTarget.
func seriesStats(series []dayTotals, calorieTarget int) rangeStats {
	s := rangeStats{Days: len(series)}
	for _, d := range series {
		s.Totals.add(d.Totals)
		if d.Totals.Calories > 0 {
			s.DaysTracked++
			if calorieTarget > 0 && d.Totals.Calories <= float64(calorieTarget) {
				s.DaysOnTarget++
			}
		}
	}
	if s.DaysTracked > 0 {
		n := float64(s.DaysTracked)
		s.Averages = nutritionTotals{
			Calories: s.Totals.Calories / n,
			Protein:  s.Totals.Protein / n,
			Carbs:    s.Totals.Carbs / n,
			Fats:     s.Totals.Fats / n,
			Fiber:    s.Totals.Fiber / n,
			Sugars:   s.Totals.Sugars / n,
		}
	}
	s.Totals = s.Totals.rounded()
	s.Averages = s.Averages.rounded()
	return s
}

// summaryRanges maps a named window to its length in days. "all" is resolved
// against the earliest logged date.
var summaryRanges = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
	"year":    365,
}

// rangeKeys resolves a named window into ascending date keys ending today.
// For "all", earliest is the first logged date key (empty means no logs, which
// yields just today).
func rangeKeys(name string, earliest string, now time.Time) ([]string, error) {
	if days, ok := summaryRanges[name]; ok {
		return windowKeys(now, days), nil
	}
	if name != "all" {
		return nil, fmt.Errorf("unknown range %q", name)
	}
	today := todayKey(now)
	if earliest == "" || earliest > today {
		return []string{today}, nil
	}
	return keysBetween(earliest, today)
}

// distinctDates returns the sorted distinct date keys of meals.
func distinctDates(meals []mealLog) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range meals {
		if !seen[m.Date] {
			seen[m.Date] = true
			out = append(out, m.Date)
		}
	}
	sort.Strings(out)
	return out
}
