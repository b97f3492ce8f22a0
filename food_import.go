package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var errEmptyImport = errors.New("no data rows to import")

// maxImportErrorDetails caps the per-row reasons returned to the admin.
const maxImportErrorDetails = 10

const defaultGramsPerUnit = 100.0

// importAliases lists, per canonical field, the accepted header names in
// priority order. The first alias with a non-empty value wins.
var importAliases = []struct {
	field   string
	aliases []string
}{
	{"name", []string{"name", "food name", "food_name", "item", "food"}},
	{"calories", []string{"calories_per_portion", "calories", "cal", "energy"}},
	{"protein", []string{"protein_g", "protein", "prot"}},
	{"carbs", []string{"carbs_g", "carbs", "carbohydrates", "carb"}},
	{"fat", []string{"fat_g", "fats", "fat"}},
	{"fiber", []string{"fiber_g", "fiber", "fibre"}},
	{"sugar", []string{"sugar_g", "sugar", "sugars"}},
	{"unit", []string{"unit", "serving"}},
	{"grams_per_unit", []string{"grams_per_unit", "grams", "weight"}},
}

// importRow is one data line keyed by lower-cased header. Line is the 1-based
// data row number used in error messages.
type importRow struct {
	Line   int
	Values map[string]string
}

// resolve returns the first non-empty value among the aliases for field.
func (r importRow) resolve(field string) string {
	for _, a := range importAliases {
		if a.field != field {
			continue
		}
		for _, alias := range a.aliases {
			if v := r.Values[alias]; v != "" {
				return v
			}
		}
	}
	return ""
}

// cleanCell trims whitespace and strips every quote character.
func cleanCell(s string) string {
	return strings.NewReplacer(`"`, "", `'`, "").Replace(strings.TrimSpace(s))
}

// parseImportText splits pasted or uploaded text into rows. The separator is a
// tab if the header line contains one, else a comma. Blank lines are skipped
// and do not count towards row numbers.
func parseImportText(text string) ([]string, []importRow, error) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return nil, nil, errEmptyImport
	}

	sep := ","
	if strings.Contains(lines[0], "\t") {
		sep = "\t"
	}

	headers := strings.Split(lines[0], sep)
	for i, h := range headers {
		headers[i] = strings.ToLower(cleanCell(h))
	}

	rows := make([]importRow, 0, len(lines)-1)
	for i, l := range lines[1:] {
		cells := strings.Split(l, sep)
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(cells) {
				values[h] = cleanCell(cells[j])
			} else {
				values[h] = ""
			}
		}
		rows = append(rows, importRow{Line: i + 1, Values: values})
	}
	return headers, rows, nil
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseLeadingFloat parses the numeric prefix of s, so "120 kcal" yields 120.
func parseLeadingFloat(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// optionalFloat parses an optional numeric cell: missing or unparseable gives def.
func optionalFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if v, ok := parseLeadingFloat(s); ok {
		return v
	}
	return def
}

// normalizeImportRow maps a row onto a catalog food. A row is rejected only
// when its name is blank or a calorie value is present but not numeric. Zero
// calories are valid and unknown units become "piece".
func normalizeImportRow(row importRow) (food, error) {
	name := strings.TrimSpace(row.resolve("name"))
	if name == "" {
		return food{}, errors.New("missing name")
	}

	calories := 0.0
	if raw := row.resolve("calories"); raw != "" {
		v, ok := parseLeadingFloat(raw)
		if !ok {
			return food{}, fmt.Errorf("invalid calories for %s", name)
		}
		calories = v
	}

	unit := strings.ToLower(row.resolve("unit"))
	if !validUnits[unit] {
		unit = defaultUnit
	}

	return food{
		Name:               name,
		CaloriesPerPortion: calories,
		ProteinG:           optionalFloat(row.resolve("protein"), 0),
		CarbsG:             optionalFloat(row.resolve("carbs"), 0),
		FatG:               optionalFloat(row.resolve("fat"), 0),
		FiberG:             optionalFloat(row.resolve("fiber"), 0),
		SugarG:             optionalFloat(row.resolve("sugar"), 0),
		Unit:               unit,
		GramsPerUnit:       optionalFloat(row.resolve("grams_per_unit"), defaultGramsPerUnit),
	}, nil
}

// importResult reports the outcome of a bulk import.
type importResult struct {
	Total        int      `json:"total"`
	Success      int      `json:"success"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails"`
	Cancelled    bool     `json:"cancelled"`
}

func (r *importResult) fail(line int, reason string) {
	r.Errors++
	if len(r.ErrorDetails) < maxImportErrorDetails {
		r.ErrorDetails = append(r.ErrorDetails, fmt.Sprintf("Row %d: %s", line, reason))
	}
}

// runImport normalizes and inserts rows one at a time. A failing row is
// counted and skipped; rows already inserted stay inserted. Only ctx
// cancellation stops the run early.
func runImport(ctx context.Context, rows []importRow, insert func(context.Context, food) error) importResult {
	res := importResult{Total: len(rows), ErrorDetails: []string{}}
	for _, row := range rows {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		f, err := normalizeImportRow(row)
		if err != nil {
			res.fail(row.Line, err.Error())
			continue
		}
		if err := insert(ctx, f); err != nil {
			res.fail(row.Line, fmt.Sprintf("failed to save %s", f.Name))
			continue
		}
		res.Success++
	}
	return res
}

// duplicateFoodIDs groups foods by trimmed, lower-cased name and returns the
// ids of every member after the first in each group.
func duplicateFoodIDs(foods []food) []string {
	seen := make(map[string]bool, len(foods))
	var dups []string
	for _, f := range foods {
		key := strings.ToLower(strings.TrimSpace(f.Name))
		if seen[key] {
			dups = append(dups, f.ID)
			continue
		}
		seen[key] = true
	}
	return dups
}
