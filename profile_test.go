package main

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func basePatchProfile() userProfile {
	return userProfile{
		UserID:   1,
		HeightCM: 175,
		WeightKG: 70,
		Age:      intPtr(25),
		Gender:   strPtr("male"),
		Goal:     "maintain",
		RDA:      2511,
	}
}

func TestProfileUpdates(t *testing.T) {
	weight := 80.0
	cases := []struct {
		name    string
		body    patchProfileRequest
		clauses []string
		args    map[string]any
	}{
		{
			name:    "theme only leaves rda alone",
			body:    patchProfileRequest{Theme: strPtr("dark")},
			clauses: []string{"theme = @theme"},
			args:    map[string]any{"theme": "dark"},
		},
		{
			name:    "weight change recomputes rda",
			body:    patchProfileRequest{WeightKG: &weight},
			clauses: []string{"weight_kg = @weightKG", "rda = @rda"},
			args:    map[string]any{"weightKG": 80.0, "rda": 2661},
		},
		{
			name: "goal change resets the override",
			body: patchProfileRequest{Goal: strPtr("lose")},
			clauses: []string{
				"goal = @goal", "rda = @rda", "daily_calorie_target = @dailyCalorieTarget",
			},
			args: map[string]any{"goal": "lose", "rda": 2011, "dailyCalorieTarget": 2011},
		},
		{
			name: "explicit target wins over goal reset",
			body: patchProfileRequest{Goal: strPtr("gain"), DailyCalorieTarget: intPtr(1800)},
			clauses: []string{
				"goal = @goal", "rda = @rda", "daily_calorie_target = @dailyCalorieTarget",
			},
			args: map[string]any{"goal": "gain", "rda": 3011, "dailyCalorieTarget": 1800},
		},
		{
			name:    "zero target clears the override",
			body:    patchProfileRequest{DailyCalorieTarget: intPtr(0)},
			clauses: []string{"daily_calorie_target = @dailyCalorieTarget"},
			args:    map[string]any{"dailyCalorieTarget": nil},
		},
		{
			name:    "nothing to update",
			body:    patchProfileRequest{},
			clauses: []string{},
			args:    map[string]any{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clauses, args := profileUpdates(basePatchProfile(), tc.body)
			if !reflect.DeepEqual(clauses, tc.clauses) {
				t.Errorf("clauses = %v, want %v", clauses, tc.clauses)
			}
			if !reflect.DeepEqual(map[string]any(args), tc.args) {
				t.Errorf("args = %v, want %v", args, tc.args)
			}
		})
	}
}

func TestPopulateProfile(t *testing.T) {
	p := basePatchProfile()
	p.WaterAutoCalculate = true
	populateProfile(&p)

	if p.FavoriteFoodIDs == nil {
		t.Error("favorites should be an empty list, not nil")
	}
	if p.WaterSettings.GlassSizeMl != 250 {
		t.Errorf("glass size = %d, want default 250", p.WaterSettings.GlassSizeMl)
	}
	if p.WaterTargetMl != 2450 {
		t.Errorf("water target = %d, want 2450", p.WaterTargetMl)
	}
	if p.Targets == nil || p.Targets.CalorieTarget != 2511 {
		t.Errorf("targets = %+v, want calorie target 2511", p.Targets)
	}
	if p.BMI == nil || p.BMI.Value != 22.9 {
		t.Errorf("bmi = %+v, want 22.9", p.BMI)
	}
}

func TestPopulateProfile_OverrideAndCustomWater(t *testing.T) {
	p := basePatchProfile()
	p.DailyCalorieTarget = intPtr(1800)
	p.WaterCustomTargetMl = intPtr(3000)
	p.WaterGlassSizeMl = 300
	p.HeightCM = 0
	populateProfile(&p)

	if p.Targets.CalorieTarget != 1800 {
		t.Errorf("calorie target = %d, want override 1800", p.Targets.CalorieTarget)
	}
	if p.WaterTargetMl != 3000 || p.WaterSettings.GlassSizeMl != 300 {
		t.Errorf("water = %d ml, glass %d", p.WaterTargetMl, p.WaterSettings.GlassSizeMl)
	}
	if p.BMI != nil {
		t.Errorf("bmi should be omitted without a height, got %+v", p.BMI)
	}
}
