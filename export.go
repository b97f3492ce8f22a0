package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	errNothingToExport = errors.New("no data to export")
	errNoDataInRange   = errors.New("no data in the selected date range")
)

// exportedAtLayout is ISO 8601 with milliseconds, always rendered in UTC.
const exportedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// exportOptions controls what an export contains. Start and End are inclusive
// date keys; the range applies only when both are set.
type exportOptions struct {
	IncludeWater   bool
	IncludeSummary bool
	Start          string
	End            string
}

func (o exportOptions) hasRange() bool { return o.Start != "" && o.End != "" }

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// exportSummary is the summary block shared by every export format.
type exportSummary struct {
	TotalMeals        int            `json:"totalMeals"`
	TotalCalories     int            `json:"totalCalories"`
	AvgCaloriesPerDay int            `json:"avgCaloriesPerDay"`
	TotalProtein      int            `json:"totalProtein"`
	TotalCarbs        int            `json:"totalCarbs"`
	TotalFats         int            `json:"totalFats"`
	TotalFiber        int            `json:"totalFiber"`
	TotalSugars       int            `json:"totalSugars"`
	DaysTracked       int            `json:"daysTracked"`
	MealTypeBreakdown map[string]int `json:"mealTypeBreakdown"`
}

// exportSummaryOf computes the summary block. Days tracked counts days whose
// calories sum to more than zero; the daily average divides by that count.
func exportSummaryOf(meals []mealLog) exportSummary {
	perDay := make(map[string]float64)
	breakdown := make(map[string]int)
	var t nutritionTotals
	for _, m := range meals {
		t.addMeal(m)
		perDay[m.Date] += m.Calories
		breakdown[m.MealType]++
	}

	var days int
	for _, cal := range perDay {
		if cal > 0 {
			days++
		}
	}
	avg := 0
	if days > 0 {
		avg = roundInt(t.Calories / float64(days))
	}

	return exportSummary{
		TotalMeals:        len(meals),
		TotalCalories:     roundInt(t.Calories),
		AvgCaloriesPerDay: avg,
		TotalProtein:      roundInt(t.Protein),
		TotalCarbs:        roundInt(t.Carbs),
		TotalFats:         roundInt(t.Fats),
		TotalFiber:        roundInt(t.Fiber),
		TotalSugars:       roundInt(t.Sugars),
		DaysTracked:       days,
		MealTypeBreakdown: breakdown,
	}
}

func roundInt(v float64) int { return int(math.Round(v)) }

// breakdownOrder lists breakdown keys with known meal types first in display
// order, then any others alphabetically.
func breakdownOrder(b map[string]int) []string {
	var keys []string
	for _, mt := range mealTypes {
		if _, ok := b[mt]; ok {
			keys = append(keys, mt)
		}
	}
	var other []string
	for k := range b {
		if !validMealTypes[k] {
			other = append(other, k)
		}
	}
	sort.Strings(other)
	return append(keys, other...)
}

// filterByDateRange keeps meals whose date key lies in [start, end].
func filterByDateRange(meals []mealLog, start, end string) []mealLog {
	var out []mealLog
	for _, m := range meals {
		if m.Date >= start && m.Date <= end {
			out = append(out, m)
		}
	}
	return out
}

func filterWaterByDateRange(logs []waterLog, start, end string) []waterLog {
	var out []waterLog
	for _, w := range logs {
		if w.Date >= start && w.Date <= end {
			out = append(out, w)
		}
	}
	return out
}

// selectExport applies the empty-input and range rules shared by all formats.
func selectExport(meals []mealLog, water []waterLog, opts exportOptions) ([]mealLog, []waterLog, error) {
	if len(meals) == 0 {
		return nil, nil, errNothingToExport
	}
	if opts.hasRange() {
		meals = filterByDateRange(meals, opts.Start, opts.End)
		if len(meals) == 0 {
			return nil, nil, errNoDataInRange
		}
		water = filterWaterByDateRange(water, opts.Start, opts.End)
	}
	if !opts.IncludeWater {
		water = nil
	}
	return meals, water, nil
}

/* ─── CSV ────────────────────────────────────────────────────────────── */

var exportCSVHeader = []string{
	"Date", "Meal Type", "Food Name", "Quantity", "Unit", "Calories",
	"Protein (g)", "Carbs (g)", "Fats (g)", "Fiber (g)", "Sugars (g)",
}

// csvCell quotes a value, doubling embedded quotes.
func csvCell(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func csvRow(cells ...string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = csvCell(c)
	}
	return strings.Join(quoted, ",")
}

func fixed1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func plainNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// formatCSV renders one quoted row per meal, then the optional summary and
// water blocks, each after a blank line.
func formatCSV(meals []mealLog, water []waterLog, opts exportOptions) (string, error) {
	meals, water, err := selectExport(meals, water, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.Join(exportCSVHeader, ","))
	for _, m := range meals {
		b.WriteString("\n")
		b.WriteString(csvRow(
			m.Date, m.MealType, m.FoodName, plainNumber(m.Quantity), m.Unit,
			fixed1(m.Calories), fixed1(m.Protein), fixed1(m.Carbs),
			fixed1(m.Fats), fixed1(m.Fiber), fixed1(m.Sugars),
		))
	}

	if opts.IncludeSummary {
		s := exportSummaryOf(meals)
		b.WriteString("\n\n--- SUMMARY ---\n")
		fmt.Fprintf(&b, "Total Meals,%d\n", s.TotalMeals)
		fmt.Fprintf(&b, "Days Tracked,%d\n", s.DaysTracked)
		fmt.Fprintf(&b, "Total Calories,%d\n", s.TotalCalories)
		fmt.Fprintf(&b, "Avg Calories/Day,%d\n", s.AvgCaloriesPerDay)
		fmt.Fprintf(&b, "Total Protein (g),%d\n", s.TotalProtein)
		fmt.Fprintf(&b, "Total Carbs (g),%d\n", s.TotalCarbs)
		fmt.Fprintf(&b, "Total Fats (g),%d\n", s.TotalFats)
		fmt.Fprintf(&b, "Total Fiber (g),%d\n", s.TotalFiber)
		fmt.Fprintf(&b, "Total Sugars (g),%d\n", s.TotalSugars)
		b.WriteString("\nMeal Type Breakdown:\n")
		for _, k := range breakdownOrder(s.MealTypeBreakdown) {
			fmt.Fprintf(&b, "%s,%d\n", k, s.MealTypeBreakdown[k])
		}
	}

	if len(water) > 0 {
		b.WriteString("\n\n--- WATER LOGS ---\n")
		b.WriteString("Date,Amount (ml)\n")
		for _, w := range water {
			b.WriteString(csvRow(w.Date, strconv.Itoa(w.amount())))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// formatWaterCSV renders the standalone water export.
func formatWaterCSV(logs []waterLog) (string, error) {
	if len(logs) == 0 {
		return "", errNothingToExport
	}
	var b strings.Builder
	b.WriteString("Date,Amount (ml),Timestamp")
	for _, w := range logs {
		ts := ""
		if !w.Timestamp.IsZero() {
			ts = w.Timestamp.UTC().Format(exportedAtLayout)
		}
		b.WriteString("\n")
		b.WriteString(csvRow(w.Date, strconv.Itoa(w.amount()), ts))
	}
	return b.String(), nil
}

/* ─── JSON ───────────────────────────────────────────────────────────── */

type exportDocument struct {
	Meals      []mealLog      `json:"meals"`
	WaterLogs  []waterLog     `json:"waterLogs,omitempty"`
	Summary    *exportSummary `json:"summary,omitempty"`
	ExportedAt string         `json:"exportedAt"`
	DateRange  *dateRange     `json:"dateRange,omitempty"`
}

// formatJSON renders the export document with two-space indentation.
func formatJSON(meals []mealLog, water []waterLog, opts exportOptions, exportedAt time.Time) ([]byte, error) {
	meals, water, err := selectExport(meals, water, opts)
	if err != nil {
		return nil, err
	}
	doc := exportDocument{
		Meals:      meals,
		WaterLogs:  water,
		ExportedAt: exportedAt.UTC().Format(exportedAtLayout),
	}
	if opts.hasRange() {
		doc.DateRange = &dateRange{Start: opts.Start, End: opts.End}
	}
	if opts.IncludeSummary {
		s := exportSummaryOf(meals)
		doc.Summary = &s
	}
	return json.MarshalIndent(doc, "", "  ")
}

/* ─── Text report and mail body ──────────────────────────────────────── */

// reportOwner identifies the user on text reports. Optional.
type reportOwner struct {
	Name          string
	CalorieTarget int
}

// mealsByDate groups meals by date key, keeping input order within each day.
func mealsByDate(meals []mealLog) ([]string, map[string][]mealLog) {
	byDate := make(map[string][]mealLog)
	for _, m := range meals {
		byDate[m.Date] = append(byDate[m.Date], m)
	}
	return distinctDates(meals), byDate
}

func dayCalories(meals []mealLog) int {
	var cal float64
	for _, m := range meals {
		cal += m.Calories
	}
	return roundInt(cal)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// groupThousands renders n with comma thousands separators.
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

const (
	reportRule = "═══════════════════════════════════════"
	reportLine = "───────────────────────────────────────"
)

// formatText renders the downloadable plain-text report.
func formatText(meals []mealLog, owner *reportOwner, generatedAt time.Time) (string, error) {
	if len(meals) == 0 {
		return "", errNothingToExport
	}
	s := exportSummaryOf(meals)
	dates, byDate := mealsByDate(meals)

	var b strings.Builder
	b.WriteString(reportRule + "\n")
	b.WriteString("         NUTRITION TRACKING REPORT\n")
	b.WriteString(reportRule + "\n\n")
	if owner != nil {
		fmt.Fprintf(&b, "User: %s\n", owner.Name)
		fmt.Fprintf(&b, "Goal: %d calories/day\n\n", owner.CalorieTarget)
	}
	fmt.Fprintf(&b, "Report Period: %s to %s\n", dates[0], dates[len(dates)-1])
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.In(logZone).Format("2006-01-02 15:04"))

	b.WriteString(reportLine + "\n")
	b.WriteString("               SUMMARY\n")
	b.WriteString(reportLine + "\n\n")
	fmt.Fprintf(&b, "Days Tracked: %d\n", s.DaysTracked)
	fmt.Fprintf(&b, "Total Meals: %d\n\n", s.TotalMeals)
	fmt.Fprintf(&b, "Total Calories: %s\n", groupThousands(s.TotalCalories))
	fmt.Fprintf(&b, "Average/Day: %s\n\n", groupThousands(s.AvgCaloriesPerDay))

	b.WriteString("Macronutrients:\n")
	fmt.Fprintf(&b, "   Protein: %dg\n", s.TotalProtein)
	fmt.Fprintf(&b, "   Carbs: %dg\n", s.TotalCarbs)
	fmt.Fprintf(&b, "   Fats: %dg\n", s.TotalFats)
	fmt.Fprintf(&b, "   Fiber: %dg\n", s.TotalFiber)
	fmt.Fprintf(&b, "   Sugars: %dg\n\n", s.TotalSugars)

	b.WriteString("Meal Distribution:\n")
	for _, k := range breakdownOrder(s.MealTypeBreakdown) {
		fmt.Fprintf(&b, "   %s: %d meals\n", titleCase(k), s.MealTypeBreakdown[k])
	}

	b.WriteString("\n" + reportLine + "\n")
	b.WriteString("            DAILY BREAKDOWN\n")
	b.WriteString(reportLine + "\n\n")
	for _, d := range dates {
		day := byDate[d]
		fmt.Fprintf(&b, "%s\n", d)
		fmt.Fprintf(&b, "   Total: %d calories\n", dayCalories(day))
		for _, m := range day {
			fmt.Fprintf(&b, "   • %s: %s (%d cal)\n", m.MealType, m.FoodName, roundInt(m.Calories))
		}
		b.WriteString("\n")
	}
	b.WriteString(reportRule + "\n")
	return b.String(), nil
}

// mailSubject is the subject line for an emailed report.
func mailSubject(now time.Time) string {
	return "Nutrition Report - " + todayKey(now)
}

// formatMailBody renders the shorter report sent by e-mail. Water totals are
// included when water logs are given.
func formatMailBody(meals []mealLog, water []waterLog, owner *reportOwner) (string, error) {
	if len(meals) == 0 {
		return "", errNothingToExport
	}
	s := exportSummaryOf(meals)
	dates, byDate := mealsByDate(meals)

	var b strings.Builder
	b.WriteString("Nutrition Report\n")
	b.WriteString("================\n\n")
	if owner != nil {
		fmt.Fprintf(&b, "User: %s\n", owner.Name)
		fmt.Fprintf(&b, "Goal: %d calories/day\n\n", owner.CalorieTarget)
	}
	fmt.Fprintf(&b, "Period: %s to %s\n\n", dates[0], dates[len(dates)-1])

	b.WriteString("SUMMARY\n-------\n")
	fmt.Fprintf(&b, "Days Tracked: %d\n", s.DaysTracked)
	fmt.Fprintf(&b, "Total Meals: %d\n", s.TotalMeals)
	fmt.Fprintf(&b, "Total Calories: %d\n", s.TotalCalories)
	fmt.Fprintf(&b, "Avg Calories/Day: %d\n\n", s.AvgCaloriesPerDay)

	b.WriteString("MACRONUTRIENTS\n--------------\n")
	fmt.Fprintf(&b, "Protein: %dg\n", s.TotalProtein)
	fmt.Fprintf(&b, "Carbs: %dg\n", s.TotalCarbs)
	fmt.Fprintf(&b, "Fats: %dg\n", s.TotalFats)
	fmt.Fprintf(&b, "Fiber: %dg\n", s.TotalFiber)
	fmt.Fprintf(&b, "Sugars: %dg\n\n", s.TotalSugars)

	if len(water) > 0 {
		total := 0
		for _, w := range water {
			total += w.amount()
		}
		b.WriteString("WATER INTAKE\n------------\n")
		fmt.Fprintf(&b, "Entries: %d\n", len(water))
		fmt.Fprintf(&b, "Total: %dml (%sL)\n\n", total, fixed1(float64(total)/1000))
	}

	b.WriteString("DAILY BREAKDOWN\n---------------\n")
	for _, d := range dates {
		day := byDate[d]
		fmt.Fprintf(&b, "%s: %d cal\n", d, dayCalories(day))
		for _, m := range day {
			fmt.Fprintf(&b, "  - %s: %s (%d cal)\n", m.MealType, m.FoodName, roundInt(m.Calories))
		}
	}
	return b.String(), nil
}
