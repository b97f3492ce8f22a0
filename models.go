package main

import (
	"time"
)

/* ─── Enumerations ───────────────────────────────────────────────────── */

// validUnits is the fixed set of portion units a food may use.
var validUnits = map[string]bool{
	"piece": true,
	"bowl":  true,
	"cup":   true,
	"ml":    true,
	"bar":   true,
	"can":   true,
}

const defaultUnit = "piece"

// mealTypes lists meal types in display order (breakfast first).
var mealTypes = []string{"breakfast", "lunch", "snacks", "dinner"}

var validMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"snacks":    true,
	"dinner":    true,
}

const (
	statusPending  = "pending"
	statusApproved = "approved"
	statusRejected = "rejected"
)

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	Name      string     `json:"name" db:"name"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	IsAdmin   bool       `json:"isAdmin" db:"is_admin"`
	CreatedAt *time.Time `json:"createdAt" db:"created_at"`
}

// userProfile joins user_profiles with the identity columns of users.
// Water settings are stored flat and exposed as a nested object.
type userProfile struct {
	UserID              int        `json:"userId"              db:"user_id"`
	Email               string     `json:"email"               db:"email"`
	Name                string     `json:"name"                db:"name"`
	IsAdmin             bool       `json:"isAdmin"             db:"is_admin"`
	HeightCM            float64    `json:"heightCm"            db:"height_cm"`
	WeightKG            float64    `json:"weightKg"            db:"weight_kg"`
	Age                 *int       `json:"age"                 db:"age"`
	Gender              *string    `json:"gender"              db:"gender"`
	Goal                string     `json:"goal"                db:"goal"`
	RDA                 int        `json:"rda"                 db:"rda"`
	DailyCalorieTarget  *int       `json:"dailyCalorieTarget"  db:"daily_calorie_target"`
	FavoriteFoodIDs     []string   `json:"favoriteFoods"       db:"favorite_food_ids"`
	WaterAutoCalculate  bool       `json:"-"                   db:"water_auto_calculate"`
	WaterGlassSizeMl    int        `json:"-"                   db:"water_glass_size_ml"`
	WaterCustomTargetMl *int       `json:"-"                   db:"water_custom_target_ml"`
	Theme               string     `json:"theme"               db:"theme"`
	OnboardingCompleted bool       `json:"onboardingCompleted" db:"onboarding_completed"`
	CreatedAt           *time.Time `json:"createdAt"           db:"created_at"`
	UpdatedAt           *time.Time `json:"updatedAt"           db:"updated_at"`

	// Computed fields, populated server-side and never stored.
	WaterSettings waterSettings  `json:"waterSettings"       db:"-"`
	WaterTargetMl int            `json:"waterTargetMl"       db:"-"`
	Targets       *energyTargets `json:"targets,omitempty"   db:"-"`
	BMI           *bmiInfo       `json:"bmi,omitempty"       db:"-"`
}

// profileCols is the select list matching userProfile's db tags. The profile
// row is aliased p and the users row u.
const profileCols = `p.user_id, u.email, u.name, u.is_admin, p.height_cm, p.weight_kg,
	p.age, p.gender, p.goal, p.rda, p.daily_calorie_target, p.favorite_food_ids,
	p.water_auto_calculate, p.water_glass_size_ml, p.water_custom_target_ml,
	p.theme, p.onboarding_completed, p.created_at, p.updated_at`

// bodyProfile extracts the inputs of the energy calculator.
func (p *userProfile) bodyProfile() bodyProfile {
	var gender string
	if p.Gender != nil {
		gender = *p.Gender
	}
	return bodyProfile{WeightKG: p.WeightKG, HeightCM: p.HeightCM, Age: p.Age, Gender: gender, Goal: p.Goal}
}

// effectiveCalorieTarget is the override when set, otherwise the computed RDA.
func (p *userProfile) effectiveCalorieTarget() int {
	if p.DailyCalorieTarget != nil && *p.DailyCalorieTarget > 0 {
		return *p.DailyCalorieTarget
	}
	return p.RDA
}

// food maps to the foods catalog. JSON names follow the catalog import format.
type food struct {
	ID                 string     `json:"id"                   db:"id"                   yaml:"id"`
	Name               string     `json:"name"                 db:"name"                 yaml:"name"`
	CaloriesPerPortion float64    `json:"calories_per_portion" db:"calories_per_portion" yaml:"calories_per_portion"`
	ProteinG           float64    `json:"protein_g"            db:"protein_g"            yaml:"protein_g"`
	CarbsG             float64    `json:"carbs_g"              db:"carbs_g"              yaml:"carbs_g"`
	FatG               float64    `json:"fat_g"                db:"fat_g"                yaml:"fat_g"`
	FiberG             float64    `json:"fiber_g"              db:"fiber_g"              yaml:"fiber_g"`
	SugarG             float64    `json:"sugar_g"              db:"sugar_g"              yaml:"sugar_g"`
	Unit               string     `json:"unit"                 db:"unit"                 yaml:"unit"`
	GramsPerUnit       float64    `json:"grams_per_unit"       db:"grams_per_unit"       yaml:"grams_per_unit"`
	CreatedAt          *time.Time `json:"created_at,omitempty" db:"created_at"           yaml:"-"`
}

const foodCols = `id, name, calories_per_portion, protein_g, carbs_g, fat_g, fiber_g, sugar_g,
	unit, grams_per_unit, created_at`

// pendingFood is a user-submitted catalog candidate awaiting admin review.
type pendingFood struct {
	ID                 string     `json:"id"                   db:"id"`
	Name               string     `json:"name"                 db:"name"`
	CaloriesPerPortion float64    `json:"calories_per_portion" db:"calories_per_portion"`
	ProteinG           float64    `json:"protein_g"            db:"protein_g"`
	CarbsG             float64    `json:"carbs_g"              db:"carbs_g"`
	FatG               float64    `json:"fat_g"                db:"fat_g"`
	FiberG             float64    `json:"fiber_g"              db:"fiber_g"`
	SugarG             float64    `json:"sugar_g"              db:"sugar_g"`
	Unit               string     `json:"unit"                 db:"unit"`
	GramsPerUnit       float64    `json:"grams_per_unit"       db:"grams_per_unit"`
	SubmittedBy        int        `json:"submittedBy"          db:"submitted_by"`
	SubmittedByName    string     `json:"submittedByName"      db:"submitted_by_name"`
	Status             string     `json:"status"               db:"status"`
	SubmittedAt        time.Time  `json:"submittedAt"          db:"submitted_at"`
	ReviewedAt         *time.Time `json:"reviewedAt"           db:"reviewed_at"`
	ReviewedBy         *int       `json:"reviewedBy"           db:"reviewed_by"`
}

// toFood copies the nutrition fields of an approved submission into a catalog entry.
func (p pendingFood) toFood() food {
	return food{
		Name:               p.Name,
		CaloriesPerPortion: p.CaloriesPerPortion,
		ProteinG:           p.ProteinG,
		CarbsG:             p.CarbsG,
		FatG:               p.FatG,
		FiberG:             p.FiberG,
		SugarG:             p.SugarG,
		Unit:               p.Unit,
		GramsPerUnit:       p.GramsPerUnit,
	}
}

// mealLog maps to meal_logs. Food name and unit are copied at logging time and
// totals are per-portion values × quantity. Rows are never updated.
type mealLog struct {
	ID        string    `json:"id"        db:"id"`
	UserID    int       `json:"userId"    db:"user_id"`
	FoodID    string    `json:"foodId"    db:"food_id"`
	FoodName  string    `json:"foodName"  db:"food_name"`
	Quantity  float64   `json:"quantity"  db:"quantity"`
	Unit      string    `json:"unit"      db:"unit"`
	Calories  float64   `json:"calories"  db:"calories"`
	Protein   float64   `json:"protein"   db:"protein"`
	Carbs     float64   `json:"carbs"     db:"carbs"`
	Fats      float64   `json:"fats"      db:"fats"`
	Fiber     float64   `json:"fiber"     db:"fiber"`
	Sugars    float64   `json:"sugars"    db:"sugars"`
	MealType  string    `json:"mealType"  db:"meal_type"`
	Date      string    `json:"date"      db:"date"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// waterLog maps to water_logs: one row per user per date. Legacy rows carry a
// glasses count instead of amount_ml.
type waterLog struct {
	ID        string    `json:"id"                 db:"id"`
	UserID    int       `json:"userId"             db:"user_id"`
	Date      string    `json:"date"               db:"date"`
	AmountMl  *int      `json:"amountMl"           db:"amount_ml"`
	Glasses   *int      `json:"glasses,omitempty"  db:"glasses"`
	Timestamp time.Time `json:"timestamp"          db:"timestamp"`
}

// amount returns the day's total in ml, converting legacy glass counts.
func (w waterLog) amount() int {
	if w.AmountMl != nil {
		return *w.AmountMl
	}
	if w.Glasses != nil {
		return *w.Glasses * legacyGlassMl
	}
	return 0
}

// templateItem is one food entry of a meal template, with its own totals.
type templateItem struct {
	FoodID   string  `json:"foodId"`
	FoodName string  `json:"foodName"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Fiber    float64 `json:"fiber"`
	Sugars   float64 `json:"sugars"`
}

// mealTemplate maps to meal_templates. Items are stored as jsonb.
type mealTemplate struct {
	ID            string         `json:"id"            db:"id"`
	UserID        int            `json:"userId"        db:"user_id"`
	Name          string         `json:"name"          db:"name"`
	MealType      string         `json:"mealType"      db:"meal_type"`
	Foods         []templateItem `json:"foods"         db:"foods"`
	TotalCalories float64        `json:"totalCalories" db:"total_calories"`
	TotalProtein  float64        `json:"totalProtein"  db:"total_protein"`
	TotalCarbs    float64        `json:"totalCarbs"    db:"total_carbs"`
	TotalFats     float64        `json:"totalFats"     db:"total_fats"`
	TotalFiber    float64        `json:"totalFiber"    db:"total_fiber"`
	TotalSugars   float64        `json:"totalSugars"   db:"total_sugars"`
	CreatedAt     time.Time      `json:"createdAt"     db:"created_at"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// foodRequest is the body for admin create/update and for user submissions.
// Unit is required here; only the bulk importer coerces unknown units.
type foodRequest struct {
	Name               string   `json:"name"                 binding:"required,notblank"`
	CaloriesPerPortion *float64 `json:"calories_per_portion" binding:"required,gte=0"`
	ProteinG           float64  `json:"protein_g"            binding:"gte=0"`
	CarbsG             float64  `json:"carbs_g"              binding:"gte=0"`
	FatG               float64  `json:"fat_g"                binding:"gte=0"`
	FiberG             float64  `json:"fiber_g"              binding:"gte=0"`
	SugarG             float64  `json:"sugar_g"              binding:"gte=0"`
	Unit               string   `json:"unit"                 binding:"required,foodunit"`
	GramsPerUnit       float64  `json:"grams_per_unit"       binding:"gte=0"`
}

// toFood converts a validated request into a catalog entry.
func (r foodRequest) toFood() food {
	f := food{
		Name:               r.Name,
		CaloriesPerPortion: *r.CaloriesPerPortion,
		ProteinG:           r.ProteinG,
		CarbsG:             r.CarbsG,
		FatG:               r.FatG,
		FiberG:             r.FiberG,
		SugarG:             r.SugarG,
		Unit:               r.Unit,
		GramsPerUnit:       r.GramsPerUnit,
	}
	if f.GramsPerUnit == 0 {
		f.GramsPerUnit = defaultGramsPerUnit
	}
	return f
}

// createMealLogRequest is the request body for POST /api/meal-logs.
type createMealLogRequest struct {
	FoodID   string  `json:"foodId"   binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	MealType string  `json:"mealType" binding:"required,mealtype"`
	Date     string  `json:"date"     binding:"omitempty,datekey"`
}

// patchProfileRequest is the request body for PATCH /api/profile.
// All fields are pointers; only non-nil fields get written to the database.
type patchProfileRequest struct {
	Name                *string  `json:"name"                binding:"omitempty,notblank"`
	HeightCM            *float64 `json:"heightCm"            binding:"omitempty,gt=0,lte=300"`
	WeightKG            *float64 `json:"weightKg"            binding:"omitempty,gt=0,lte=700"`
	Age                 *int     `json:"age"                 binding:"omitempty,gt=0,lte=130"`
	Gender              *string  `json:"gender"              binding:"omitempty,oneof=male female other"`
	Goal                *string  `json:"goal"                binding:"omitempty,oneof=lose maintain gain"`
	DailyCalorieTarget  *int     `json:"dailyCalorieTarget"  binding:"omitempty,gte=0"`
	Theme               *string  `json:"theme"               binding:"omitempty,oneof=light dark system"`
	OnboardingCompleted *bool    `json:"onboardingCompleted"`
	WaterAutoCalculate  *bool    `json:"waterAutoCalculate"`
	WaterGlassSizeMl    *int     `json:"waterGlassSizeMl"    binding:"omitempty,gt=0"`
	WaterCustomTargetMl *int     `json:"waterCustomTargetMl" binding:"omitempty,gt=0"`
}

// templateItemRequest is one entry of a template being created.
type templateItemRequest struct {
	FoodID   string  `json:"foodId"   binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// createTemplateRequest is the request body for POST /api/meal-templates.
type createTemplateRequest struct {
	Name     string                `json:"name"     binding:"required,notblank"`
	MealType string                `json:"mealType" binding:"required,mealtype"`
	Items    []templateItemRequest `json:"items"    binding:"required,min=1,dive"`
}
