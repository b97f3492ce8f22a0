package main

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func exportMealsFixture() []mealLog {
	ts := time.Date(2024, 1, 1, 3, 15, 0, 0, time.UTC)
	return []mealLog{
		{
			ID: "m1", UserID: 7, FoodID: "f1", FoodName: `Idli "soft"`, Quantity: 2, Unit: "piece",
			Calories: 116, Protein: 4, Carbs: 24, Fats: 0.4, Fiber: 1.6, Sugars: 0.2,
			MealType: "breakfast", Date: "2024-01-01", Timestamp: ts,
		},
		{
			ID: "m2", UserID: 7, FoodID: "f2", FoodName: "Dal", Quantity: 1.5, Unit: "bowl",
			Calories: 225.7, Protein: 13.5, Carbs: 30, Fats: 6, Fiber: 7.5, Sugars: 1,
			MealType: "dinner", Date: "2024-01-02", Timestamp: ts.Add(36 * time.Hour),
		},
	}
}

func exportWaterFixture() []waterLog {
	amount, glasses := 750, 3
	return []waterLog{
		{ID: "w1", UserID: 7, Date: "2024-01-01", AmountMl: &amount},
		{ID: "w2", UserID: 7, Date: "2024-01-02", Glasses: &glasses},
		{ID: "w3", UserID: 7, Date: "2024-02-01", AmountMl: &amount},
	}
}

const wantCSVRows = `Date,Meal Type,Food Name,Quantity,Unit,Calories,Protein (g),Carbs (g),Fats (g),Fiber (g),Sugars (g)
"2024-01-01","breakfast","Idli ""soft""","2","piece","116.0","4.0","24.0","0.4","1.6","0.2"
"2024-01-02","dinner","Dal","1.5","bowl","225.7","13.5","30.0","6.0","7.5","1.0"`

func TestFormatCSV_Rows(t *testing.T) {
	got, err := formatCSV(exportMealsFixture(), exportWaterFixture(), exportOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != wantCSVRows {
		t.Errorf("csv mismatch\ngot:\n%s\nwant:\n%s", got, wantCSVRows)
	}
}

func TestFormatCSV_SummaryAndWater(t *testing.T) {
	opts := exportOptions{IncludeSummary: true, IncludeWater: true, Start: "2024-01-01", End: "2024-01-31"}
	got, err := formatCSV(exportMealsFixture(), exportWaterFixture(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := wantCSVRows + "\n\n--- SUMMARY ---\n" +
		"Total Meals,2\n" +
		"Days Tracked,2\n" +
		"Total Calories,342\n" +
		"Avg Calories/Day,171\n" +
		"Total Protein (g),18\n" +
		"Total Carbs (g),54\n" +
		"Total Fats (g),6\n" +
		"Total Fiber (g),9\n" +
		"Total Sugars (g),1\n" +
		"\nMeal Type Breakdown:\n" +
		"breakfast,1\n" +
		"dinner,1\n" +
		"\n\n--- WATER LOGS ---\n" +
		"Date,Amount (ml)\n" +
		"\"2024-01-01\",\"750\"\n" +
		"\"2024-01-02\",\"750\"\n"
	if got != want {
		t.Errorf("csv mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatCSV_Errors(t *testing.T) {
	if _, err := formatCSV(nil, nil, exportOptions{}); !errors.Is(err, errNothingToExport) {
		t.Errorf("empty input err = %v, want errNothingToExport", err)
	}
	opts := exportOptions{Start: "2023-01-01", End: "2023-12-31"}
	if _, err := formatCSV(exportMealsFixture(), nil, opts); !errors.Is(err, errNoDataInRange) {
		t.Errorf("out of range err = %v, want errNoDataInRange", err)
	}
}

func TestFormatCSV_RangeInclusive(t *testing.T) {
	got, err := formatCSV(exportMealsFixture(), nil, exportOptions{Start: "2024-01-02", End: "2024-01-02"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "Idli") || !strings.Contains(got, `"Dal"`) {
		t.Errorf("range not applied:\n%s", got)
	}
}

func TestExportSummaryOf(t *testing.T) {
	got := exportSummaryOf(scenarioMeals())
	if got.TotalCalories != 800 || got.DaysTracked != 1 || got.AvgCaloriesPerDay != 800 {
		t.Errorf("summary = %+v", got)
	}
	if got.TotalProtein != 30 || got.TotalCarbs != 100 || got.TotalFats != 20 || got.TotalFiber != 8 || got.TotalSugars != 6 {
		t.Errorf("macro totals = %+v", got)
	}

	// A day with only zero-calorie items is not tracked.
	withWater := append(scenarioMeals(), mealLog{Date: "2024-01-05", MealType: "snacks", Calories: 0})
	got = exportSummaryOf(withWater)
	if got.TotalMeals != 3 || got.DaysTracked != 1 || got.AvgCaloriesPerDay != 800 {
		t.Errorf("summary with zero-calorie day = %+v", got)
	}
	if got.MealTypeBreakdown["snacks"] != 1 {
		t.Errorf("breakdown = %v", got.MealTypeBreakdown)
	}
}

// Serializing then parsing the JSON export reproduces the meals and the
// summary computed from the original list.
func TestFormatJSON_RoundTrip(t *testing.T) {
	meals := exportMealsFixture()
	exportedAt := time.Date(2024, 1, 3, 10, 0, 0, 123e6, time.FixedZone("IST", 19800))
	data, err := formatJSON(meals, exportWaterFixture(), exportOptions{IncludeSummary: true}, exportedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Meals) != len(meals) {
		t.Fatalf("got %d meals, want %d", len(doc.Meals), len(meals))
	}
	for i := range meals {
		got, want := doc.Meals[i], meals[i]
		if !got.Timestamp.Equal(want.Timestamp) {
			t.Errorf("meal %d timestamp = %v, want %v", i, got.Timestamp, want.Timestamp)
		}
		got.Timestamp, want.Timestamp = time.Time{}, time.Time{}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("meal %d = %+v, want %+v", i, got, want)
		}
	}
	if doc.Summary == nil || !reflect.DeepEqual(*doc.Summary, exportSummaryOf(meals)) {
		t.Errorf("summary = %+v, want %+v", doc.Summary, exportSummaryOf(meals))
	}
	if doc.ExportedAt != "2024-01-03T04:30:00.123Z" {
		t.Errorf("exportedAt = %s", doc.ExportedAt)
	}
	if doc.WaterLogs != nil || doc.DateRange != nil {
		t.Errorf("unexpected optional fields: water=%v range=%v", doc.WaterLogs, doc.DateRange)
	}
	if !strings.Contains(string(data), "\n  \"meals\": [") {
		t.Error("expected two-space indentation")
	}
}

func TestFormatJSON_RangeAndWater(t *testing.T) {
	opts := exportOptions{IncludeWater: true, Start: "2024-01-01", End: "2024-01-01"}
	data, err := formatJSON(exportMealsFixture(), exportWaterFixture(), opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Meals) != 1 || len(doc.WaterLogs) != 1 || doc.Summary != nil {
		t.Errorf("meals=%d water=%d summary=%v", len(doc.Meals), len(doc.WaterLogs), doc.Summary)
	}
	if doc.DateRange == nil || *doc.DateRange != (dateRange{Start: "2024-01-01", End: "2024-01-01"}) {
		t.Errorf("dateRange = %+v", doc.DateRange)
	}
}

func TestFormatWaterCSV(t *testing.T) {
	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	logs := exportWaterFixture()[:2]
	logs[0].Timestamp = ts
	got, err := formatWaterCSV(logs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Date,Amount (ml),Timestamp\n" +
		`"2024-01-01","750","2024-01-01T08:00:00.000Z"` + "\n" +
		`"2024-01-02","750",""`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if _, err := formatWaterCSV(nil); !errors.Is(err, errNothingToExport) {
		t.Errorf("err = %v, want errNothingToExport", err)
	}
}

func TestFormatText(t *testing.T) {
	generated := time.Date(2024, 1, 3, 4, 30, 0, 0, time.UTC)
	got, err := formatText(exportMealsFixture(), &reportOwner{Name: "Asha", CalorieTarget: 2011}, generated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"NUTRITION TRACKING REPORT",
		"User: Asha",
		"Goal: 2011 calories/day",
		"Report Period: 2024-01-01 to 2024-01-02",
		"Generated: 2024-01-03 10:00",
		"Days Tracked: 2",
		"Total Calories: 342",
		"   Breakfast: 1 meals",
		"   Dinner: 1 meals",
		`   • breakfast: Idli "soft" (116 cal)`,
		"   Total: 226 calories",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Index(got, "2024-01-01\n   Total") > strings.Index(got, "2024-01-02\n   Total") {
		t.Error("days out of order")
	}

	if _, err := formatText(nil, nil, generated); !errors.Is(err, errNothingToExport) {
		t.Errorf("err = %v, want errNothingToExport", err)
	}
}

func TestFormatMailBody(t *testing.T) {
	got, err := formatMailBody(exportMealsFixture(), exportWaterFixture()[:2], nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Period: 2024-01-01 to 2024-01-02",
		"Avg Calories/Day: 171",
		"WATER INTAKE",
		"Total: 1500ml (1.5L)",
		"2024-01-02: 226 cal",
		"  - dinner: Dal (226 cal)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("mail body missing %q", want)
		}
	}
	if strings.Contains(got, "User:") {
		t.Error("owner lines should be omitted without an owner")
	}
}

func TestMailSubject(t *testing.T) {
	got := mailSubject(time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC))
	if got != "Nutrition Report - 2024-01-02" {
		t.Errorf("subject = %q", got)
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -1500: "-1,500"}
	for in, want := range cases {
		if got := groupThousands(in); got != want {
			t.Errorf("groupThousands(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestBreakdownOrder(t *testing.T) {
	got := breakdownOrder(map[string]int{"dinner": 1, "brunch": 2, "breakfast": 3, "afters": 1})
	want := []string{"breakfast", "dinner", "afters", "brunch"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("breakdownOrder = %v, want %v", got, want)
	}
}
