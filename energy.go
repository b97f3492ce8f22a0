package main

import (
	"math"
)

// Goals a user can pick. Each shifts the maintenance estimate by goalAdjustment.
const (
	goalLose     = "lose"
	goalMaintain = "maintain"
	goalGain     = "gain"
)

const (
	// activityMultiplier is the single "moderate activity" factor applied to BMR.
	activityMultiplier = 1.5
	// assumedAge is used while the user has not provided an age.
	assumedAge = 25
	// goalAdjustment is the daily kcal deficit (lose) or surplus (gain).
	goalAdjustment = 500

	femaleSexTerm = -161.0
	// defaultSexTerm applies to male, other and unspecified gender.
	defaultSexTerm = 5.0

	carbsCalorieShare = 0.5
	fatCalorieShare   = 0.3
	proteinGPerKG     = 2.0
	kcalPerGramCarbs  = 4.0
	kcalPerGramFat    = 9.0
)

// bodyProfile is the subset of a user profile the energy targets depend on.
type bodyProfile struct {
	WeightKG float64
	HeightCM float64
	Age      *int
	Gender   string
	Goal     string
}

// energyTargets is the computed daily budget and per-nutrient targets.
type energyTargets struct {
	BMR           float64 `json:"bmr"`
	Maintenance   int     `json:"maintenance"`
	CalorieTarget int     `json:"calorieTarget"`
	ProteinG      int     `json:"proteinG"`
	CarbsG        int     `json:"carbsG"`
	FatG          int     `json:"fatG"`
	FiberG        int     `json:"fiberG"`
	SugarG        int     `json:"sugarG"`
}

// computeBMR computes basal metabolic rate with Mifflin-St Jeor.
func computeBMR(p bodyProfile) float64 {
	age := assumedAge
	if p.Age != nil && *p.Age > 0 {
		age = *p.Age
	}
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(age)
	if p.Gender == "female" {
		return bmr + femaleSexTerm
	}
	return bmr + defaultSexTerm
}

// computeCalorieTarget returns the rounded maintenance calories and the
// goal-adjusted daily target. An unknown goal is treated as maintain.
func computeCalorieTarget(p bodyProfile) (maintenance, target int) {
	maintenance = int(math.Round(computeBMR(p) * activityMultiplier))
	switch p.Goal {
	case goalLose:
		return maintenance, maintenance - goalAdjustment
	case goalGain:
		return maintenance, maintenance + goalAdjustment
	default:
		return maintenance, maintenance
	}
}

// macroTargets splits a calorie target into gram targets. Carbs and fat are a
// share of calories; protein scales with body weight.
func macroTargets(calorieTarget int, weightKG float64) (proteinG, carbsG, fatG int) {
	cal := float64(calorieTarget)
	proteinG = int(math.Round(weightKG * proteinGPerKG))
	carbsG = int(math.Round(cal * carbsCalorieShare / kcalPerGramCarbs))
	fatG = int(math.Round(cal * fatCalorieShare / kcalPerGramFat))
	return proteinG, carbsG, fatG
}

// fiberSugarReference returns the fixed daily fiber and sugar references in grams.
func fiberSugarReference(gender string) (fiberG, sugarG int) {
	if gender == "female" {
		return 25, 25
	}
	return 38, 36
}

// computeEnergyTargets derives all daily targets from a body profile. If
// override is positive it replaces the computed calorie target before the
// macro split, so macros always follow the budget the user actually sees.
func computeEnergyTargets(p bodyProfile, override *int) energyTargets {
	maintenance, target := computeCalorieTarget(p)
	if override != nil && *override > 0 {
		target = *override
	}
	protein, carbs, fat := macroTargets(target, p.WeightKG)
	fiber, sugar := fiberSugarReference(p.Gender)
	return energyTargets{
		BMR:           computeBMR(p),
		Maintenance:   maintenance,
		CalorieTarget: target,
		ProteinG:      protein,
		CarbsG:        carbs,
		FatG:          fat,
		FiberG:        fiber,
		SugarG:        sugar,
	}
}

/* ─── Water ──────────────────────────────────────────────────────────── */

const (
	mlPerKGWater        = 35
	defaultWaterWeight  = 70.0
	defaultCustomTarget = 2000
	defaultGlassSizeMl  = 250
	// legacyGlassMl converts water rows that predate amountMl.
	legacyGlassMl = 250
)

// waterSettings mirrors the optional per-user water preferences.
type waterSettings struct {
	AutoCalculate  bool `json:"autoCalculate"`
	CustomTargetMl *int `json:"customTargetMl"`
	GlassSizeMl    int  `json:"glassSizeMl"`
}

// waterTargetMl returns the daily water target: weight × 35 ml when
// auto-calculating, otherwise the custom target.
func waterTargetMl(s waterSettings, weightKG float64) int {
	if s.AutoCalculate {
		if weightKG <= 0 {
			weightKG = defaultWaterWeight
		}
		return int(math.Round(weightKG * mlPerKGWater))
	}
	if s.CustomTargetMl != nil && *s.CustomTargetMl > 0 {
		return *s.CustomTargetMl
	}
	return defaultCustomTarget
}

// glassSize returns the configured glass size, defaulting to 250 ml.
func glassSize(s waterSettings) int {
	if s.GlassSizeMl > 0 {
		return s.GlassSizeMl
	}
	return defaultGlassSizeMl
}

// waterProgress is the response shape for a day's water intake.
type waterProgress struct {
	Date          string  `json:"date"`
	AmountMl      int     `json:"amountMl"`
	TargetMl      int     `json:"targetMl"`
	GlassSizeMl   int     `json:"glassSizeMl"`
	Glasses       int     `json:"glasses"`
	TargetGlasses int     `json:"targetGlasses"`
	Percentage    float64 `json:"percentage"`
	GoalReached   bool    `json:"goalReached"`
}

// computeWaterProgress fills glass counts and percentage for a day's amount.
// Percentage is capped at 100.
func computeWaterProgress(date string, amountMl int, s waterSettings, weightKG float64) waterProgress {
	target := waterTargetMl(s, weightKG)
	glass := glassSize(s)
	pct := 0.0
	if target > 0 {
		pct = math.Min(float64(amountMl)/float64(target)*100, 100)
	}
	return waterProgress{
		Date:          date,
		AmountMl:      amountMl,
		TargetMl:      target,
		GlassSizeMl:   glass,
		Glasses:       amountMl / glass,
		TargetGlasses: int(math.Ceil(float64(target) / float64(glass))),
		Percentage:    math.Round(pct*10) / 10,
		GoalReached:   amountMl >= target,
	}
}
