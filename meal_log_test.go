package main

import (
	"net/http"
	"testing"
	"time"
)

func TestNewMealLog(t *testing.T) {
	f := food{ID: "f1", Name: "Idli", CaloriesPerPortion: 58, ProteinG: 2, CarbsG: 12, FatG: 0.2, FiberG: 0.8, SugarG: 0.1, Unit: "piece"}
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.FixedZone("IST", 19800))

	m := newMealLog(7, f, 2, "breakfast", "2024-01-01", now)

	if m.ID == "" || m.UserID != 7 || m.FoodID != "f1" || m.FoodName != "Idli" || m.Unit != "piece" {
		t.Errorf("identity fields = %+v", m)
	}
	if m.Calories != 116 || m.Protein != 4 || m.Carbs != 24 || m.Fats != 0.4 || m.Fiber != 1.6 || m.Sugars != 0.2 {
		t.Errorf("scaled totals = %+v", m)
	}
	if m.Timestamp.Location() != time.UTC || !m.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v in UTC", m.Timestamp, now)
	}
	if other := newMealLog(7, f, 2, "breakfast", "2024-01-01", now); other.ID == m.ID {
		t.Error("meal log ids should be unique")
	}
}

func TestValidateDateRange(t *testing.T) {
	cases := []struct {
		start, end string
		required   bool
		want       string
	}{
		{"", "", false, ""},
		{"", "", true, "start and end query params are required"},
		{"2024-01-01", "", false, "start and end must be given together"},
		{"", "2024-01-01", true, "start and end must be given together"},
		{"2024-1-1", "2024-01-02", false, "invalid start, expected YYYY-MM-DD"},
		{"2024-01-01", "2024-02-30", false, "invalid end, expected YYYY-MM-DD"},
		{"2024-01-02", "2024-01-01", false, "start must not be after end"},
		{"2024-01-01", "2024-01-01", true, ""},
	}
	for _, tc := range cases {
		err := validateDateRange(tc.start, tc.end, tc.required)
		got := ""
		if err != nil {
			got = err.Error()
		}
		if got != tc.want {
			t.Errorf("validateDateRange(%q, %q, %v) = %q, want %q", tc.start, tc.end, tc.required, got, tc.want)
		}
	}
}

func TestCreateMealLog_Validation(t *testing.T) {
	h := &Handler{}
	const path = "/api/meal-logs"
	runHandlerCases(t, path, h.createMealLog, []handlerCase{
		{"missing food", http.MethodPost, path, `{"quantity":1,"mealType":"lunch"}`, http.StatusBadRequest, "foodId is required"},
		{"zero quantity", http.MethodPost, path, `{"foodId":"f1","quantity":0,"mealType":"lunch"}`, http.StatusBadRequest, "quantity is required"},
		{"negative quantity", http.MethodPost, path, `{"foodId":"f1","quantity":-2,"mealType":"lunch"}`, http.StatusBadRequest, "quantity must be greater than 0"},
		{"bad meal type", http.MethodPost, path, `{"foodId":"f1","quantity":1,"mealType":"supper"}`, http.StatusBadRequest, "mealType must be one of: breakfast, lunch, snacks, dinner"},
		{"bad date", http.MethodPost, path, `{"foodId":"f1","quantity":1,"mealType":"lunch","date":"01-01-2024"}`, http.StatusBadRequest, "date must be a date in YYYY-MM-DD format"},
	})
}

func TestMealLogQueries_Validation(t *testing.T) {
	h := &Handler{}
	runHandlerCases(t, "/api/meal-logs", h.listMealLogs, []handlerCase{
		{"half range", http.MethodGet, "/api/meal-logs?start=2024-01-01", "", http.StatusBadRequest, "start and end must be given together"},
		{"reversed range", http.MethodGet, "/api/meal-logs?start=2024-02-01&end=2024-01-01", "", http.StatusBadRequest, "start must not be after end"},
	})
	runHandlerCases(t, "/api/summary/daily", h.getDailySummary, []handlerCase{
		{"bad date", http.MethodGet, "/api/summary/daily?date=yesterday", "", http.StatusBadRequest, "invalid date, expected YYYY-MM-DD"},
	})
	runHandlerCases(t, "/api/summary/range", h.getRangeSummary, []handlerCase{
		{"unknown range", http.MethodGet, "/api/summary/range?range=decade", "", http.StatusBadRequest, "range must be one of: week, month, quarter, year, all"},
	})
}
