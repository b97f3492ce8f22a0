package main

import (
	"math"
	"testing"
	"time"
)

// scenarioMeals is a two-meal day: 300 kcal breakfast and 500 kcal lunch.
func scenarioMeals() []mealLog {
	return []mealLog{
		{Date: "2024-01-01", MealType: "breakfast", Calories: 300, Protein: 10, Carbs: 40, Fats: 5, Fiber: 3, Sugars: 2},
		{Date: "2024-01-01", MealType: "lunch", Calories: 500, Protein: 20, Carbs: 60, Fats: 15, Fiber: 5, Sugars: 4},
	}
}

func TestSumMeals(t *testing.T) {
	got := sumMeals(scenarioMeals())
	want := nutritionTotals{Calories: 800, Protein: 30, Carbs: 100, Fats: 20, Fiber: 8, Sugars: 6}
	if got != want {
		t.Errorf("sumMeals = %+v, want %+v", got, want)
	}
	if sumMeals(nil) != (nutritionTotals{}) {
		t.Error("expected zero totals for no meals")
	}
}

func TestTotalsByMealType(t *testing.T) {
	got := totalsByMealType(scenarioMeals())
	for _, mt := range mealTypes {
		if _, ok := got[mt]; !ok {
			t.Errorf("missing meal type %s", mt)
		}
	}
	if got["breakfast"].Calories != 300 || got["lunch"].Calories != 500 {
		t.Errorf("unexpected groups %+v", got)
	}
	if got["dinner"] != (nutritionTotals{}) {
		t.Errorf("dinner = %+v, want zero", got["dinner"])
	}
}

// Summing the per-meal-type groups reproduces the overall total.
func TestTotalsByMealType_SumsToTotal(t *testing.T) {
	meals := append(scenarioMeals(),
		mealLog{Date: "2024-01-02", MealType: "snacks", Calories: 120.5, Protein: 2.25, Carbs: 18, Fats: 4.5, Fiber: 1, Sugars: 9},
		mealLog{Date: "2024-01-02", MealType: "dinner", Calories: 640, Protein: 31, Carbs: 70.4, Fats: 22, Fiber: 6.6},
		mealLog{Date: "2024-01-03", MealType: "breakfast", Calories: 210},
	)
	var grouped nutritionTotals
	for _, group := range totalsByMealType(meals) {
		grouped.add(group)
	}
	total := sumMeals(meals)
	fields := [][2]float64{
		{grouped.Calories, total.Calories}, {grouped.Protein, total.Protein}, {grouped.Carbs, total.Carbs},
		{grouped.Fats, total.Fats}, {grouped.Fiber, total.Fiber}, {grouped.Sugars, total.Sugars},
	}
	for i, f := range fields {
		if math.Abs(f[0]-f[1]) > 1e-9 {
			t.Errorf("field %d: grouped %v != total %v", i, f[0], f[1])
		}
	}
}

func TestDailySeries_Dense(t *testing.T) {
	meals := append(scenarioMeals(), mealLog{Date: "2023-12-01", Calories: 999})
	keys := []string{"2023-12-31", "2024-01-01", "2024-01-02"}
	series := dailySeries(meals, keys)
	if len(series) != 3 {
		t.Fatalf("expected 3 days, got %d", len(series))
	}
	if series[0].Date != "2023-12-31" || series[0].MealCount != 0 || series[0].Totals.Calories != 0 {
		t.Errorf("day 0 = %+v", series[0])
	}
	if series[1].MealCount != 2 || series[1].Totals.Calories != 800 {
		t.Errorf("day 1 = %+v", series[1])
	}
}

func TestSeriesStats(t *testing.T) {
	series := dailySeries(append(scenarioMeals(),
		mealLog{Date: "2024-01-03", MealType: "lunch", Calories: 2500, Protein: 90},
		mealLog{Date: "2024-01-02", MealType: "lunch", Calories: 0, Protein: 3},
	), []string{"2024-01-01", "2024-01-02", "2024-01-03"})

	got := seriesStats(series, 2000)
	if got.Days != 3 || got.DaysTracked != 2 || got.DaysOnTarget != 1 {
		t.Errorf("days = %d/%d/%d, want 3/2/1", got.Days, got.DaysTracked, got.DaysOnTarget)
	}
	if got.Totals.Calories != 3300 {
		t.Errorf("total calories = %v, want 3300", got.Totals.Calories)
	}
	// Averages divide by tracked days, not window length.
	if got.Averages.Calories != 1650 {
		t.Errorf("avg calories = %v, want 1650", got.Averages.Calories)
	}
	if got.Averages.Protein != 61.5 {
		t.Errorf("avg protein = %v, want 61.5", got.Averages.Protein)
	}

	empty := seriesStats(dailySeries(nil, []string{"2024-01-01"}), 2000)
	if empty.DaysTracked != 0 || empty.Averages != (nutritionTotals{}) {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestRangeKeys(t *testing.T) {
	now := time.Date(2024, 3, 10, 6, 30, 0, 0, time.UTC)

	for name, days := range summaryRanges {
		keys, err := rangeKeys(name, "", now)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(keys) != days || keys[len(keys)-1] != "2024-03-10" {
			t.Errorf("%s: %d keys ending %s", name, len(keys), keys[len(keys)-1])
		}
	}

	keys, err := rangeKeys("all", "2024-03-07", now)
	if err != nil || len(keys) != 4 || keys[0] != "2024-03-07" {
		t.Errorf("all = %v, %v", keys, err)
	}
	keys, err = rangeKeys("all", "", now)
	if err != nil || len(keys) != 1 || keys[0] != "2024-03-10" {
		t.Errorf("all without logs = %v, %v", keys, err)
	}
	if _, err := rangeKeys("fortnight", "", now); err == nil {
		t.Error("expected error for unknown range")
	}
}

func TestBuildDailySummary(t *testing.T) {
	p := userProfile{HeightCM: 175, WeightKG: 70, Age: intPtr(25), Goal: goalMaintain, RDA: 2511, DailyCalorieTarget: intPtr(1800)}
	got := buildDailySummary("2024-01-01", scenarioMeals(), p)

	if got.CalorieTarget != 1800 || got.CaloriesLeft != 1000 {
		t.Errorf("target/left = %d/%v, want 1800/1000", got.CalorieTarget, got.CaloriesLeft)
	}
	if got.Totals.Calories != 800 || got.ByMealType["lunch"].Calories != 500 {
		t.Errorf("unexpected totals %+v", got)
	}
	if got.Targets.CarbsG != 225 {
		t.Errorf("carbs target = %d, want 225", got.Targets.CarbsG)
	}

	empty := buildDailySummary("2024-01-02", nil, userProfile{WeightKG: 70, HeightCM: 175, RDA: 2000})
	if empty.Meals == nil || len(empty.ByMealType) != 4 || empty.CaloriesLeft != 2000 {
		t.Errorf("empty summary = %+v", empty)
	}
}
