package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const mealLogCols = `id, user_id, food_id, food_name, quantity, unit, calories, protein, carbs,
	fats, fiber, sugars, meal_type, date, timestamp`

const insertMealLogSQL = `INSERT INTO meal_logs (id, user_id, food_id, food_name, quantity, unit,
		calories, protein, carbs, fats, fiber, sugars, meal_type, date, timestamp)
	 VALUES (@id, @userID, @foodID, @foodName, @quantity, @unit,
		@calories, @protein, @carbs, @fats, @fiber, @sugars, @mealType, @date, @timestamp)
	 RETURNING ` + mealLogCols

// newMealLog copies the food's name and unit and scales its per-portion
// values by quantity.
func newMealLog(userID int, f food, quantity float64, mealType, date string, now time.Time) mealLog {
	return mealLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		FoodID:    f.ID,
		FoodName:  f.Name,
		Quantity:  quantity,
		Unit:      f.Unit,
		Calories:  f.CaloriesPerPortion * quantity,
		Protein:   f.ProteinG * quantity,
		Carbs:     f.CarbsG * quantity,
		Fats:      f.FatG * quantity,
		Fiber:     f.FiberG * quantity,
		Sugars:    f.SugarG * quantity,
		MealType:  mealType,
		Date:      date,
		Timestamp: now.UTC(),
	}
}

func mealLogArgs(m mealLog) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id": m.ID, "userID": m.UserID, "foodID": m.FoodID, "foodName": m.FoodName,
		"quantity": m.Quantity, "unit": m.Unit, "calories": m.Calories, "protein": m.Protein,
		"carbs": m.Carbs, "fats": m.Fats, "fiber": m.Fiber, "sugars": m.Sugars,
		"mealType": m.MealType, "date": m.Date, "timestamp": m.Timestamp,
	}
}

// validateDateRange checks optional start/end query values. Both must be set
// together, be valid date keys, and start must not be after end.
func validateDateRange(start, end string, required bool) error {
	if start == "" && end == "" {
		if required {
			return errors.New("start and end query params are required")
		}
		return nil
	}
	if start == "" || end == "" {
		return errors.New("start and end must be given together")
	}
	if !isDateKey(start) {
		return errors.New("invalid start, expected YYYY-MM-DD")
	}
	if !isDateKey(end) {
		return errors.New("invalid end, expected YYYY-MM-DD")
	}
	if start > end {
		return errors.New("start must not be after end")
	}
	return nil
}

// createMealLog logs a portion of a food.
// POST /api/meal-logs. The food is looked up in the catalog, then the built-in
// list. Date defaults to today's key.
func (h *Handler) createMealLog(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createMealLogRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	now := h.clock()
	if body.Date == "" {
		body.Date = todayKey(now)
	}

	f, err := h.resolveFood(c, body.FoodID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "food not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch food")
		}
		return
	}

	m := newMealLog(userID, f, body.Quantity, body.MealType, body.Date, now)
	created, err := queryOne[mealLog](c, h.db, insertMealLogSQL, mealLogArgs(m))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create meal log")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// listMealLogs returns the user's meal logs, optionally within [start, end].
// GET /api/meal-logs?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) listMealLogs(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if err := validateDateRange(start, end, false); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	meals, err := h.mealsInRange(c, c.GetInt("user_id"), start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meal logs")
		return
	}
	c.JSON(http.StatusOK, meals)
}

// mealsInRange loads meal logs ordered by date then time. Empty start/end
// means no bound.
func (h *Handler) mealsInRange(c *gin.Context, userID int, start, end string) ([]mealLog, error) {
	return queryMany[mealLog](c, h.db,
		`SELECT `+mealLogCols+` FROM meal_logs
		 WHERE user_id = @userID
		   AND (@start = '' OR date >= @start)
		   AND (@end = '' OR date <= @end)
		 ORDER BY date, timestamp`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

// deleteMealLog removes a meal log entry. Returns 204 on success.
// DELETE /api/meal-logs/:id.
func (h *Handler) deleteMealLog(c *gin.Context) {
	result, err := h.db.Exec(c,
		"DELETE FROM meal_logs WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": c.Param("id"), "userID": c.GetInt("user_id")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete meal log")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "meal log not found")
		return
	}
	c.Status(http.StatusNoContent)
}

/* ─── Summaries ──────────────────────────────────────────────────────── */

// dailySummary is the response for GET /api/summary/daily.
type dailySummary struct {
	Date          string                     `json:"date"`
	CalorieTarget int                        `json:"calorieTarget"`
	CaloriesLeft  float64                    `json:"caloriesLeft"`
	Totals        nutritionTotals            `json:"totals"`
	ByMealType    map[string]nutritionTotals `json:"byMealType"`
	Targets       energyTargets              `json:"targets"`
	Meals         []mealLog                  `json:"meals"`
}

// buildDailySummary totals one day's meals against the profile's targets.
func buildDailySummary(date string, meals []mealLog, p userProfile) dailySummary {
	populateProfile(&p)
	totals := sumMeals(meals).rounded()
	byType := totalsByMealType(meals)
	for k, v := range byType {
		byType[k] = v.rounded()
	}
	if meals == nil {
		meals = []mealLog{}
	}
	return dailySummary{
		Date:          date,
		CalorieTarget: p.Targets.CalorieTarget,
		CaloriesLeft:  round1(float64(p.Targets.CalorieTarget) - totals.Calories),
		Totals:        totals,
		ByMealType:    byType,
		Targets:       *p.Targets,
		Meals:         meals,
	}
}

// getDailySummary returns a day's meals, totals and targets.
// GET /api/summary/daily?date=YYYY-MM-DD (defaults to today's key).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", todayKey(h.clock()))
	if !isDateKey(date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	meals, err := h.mealsInRange(c, userID, date, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meal logs")
		return
	}
	c.JSON(http.StatusOK, buildDailySummary(date, meals, p))
}

// rangeSummary is the response for GET /api/summary/range.
type rangeSummary struct {
	Range         string      `json:"range"`
	Start         string      `json:"start"`
	End           string      `json:"end"`
	CalorieTarget int         `json:"calorieTarget"`
	Days          []dayTotals `json:"days"`
	Stats         rangeStats  `json:"stats"`
}

// getRangeSummary returns a dense per-day series and averages over a window.
// GET /api/summary/range?range=week|month|quarter|year|all (default week).
func (h *Handler) getRangeSummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	name := c.DefaultQuery("range", "week")
	if _, ok := summaryRanges[name]; !ok && name != "all" {
		apiError(c, http.StatusBadRequest, "range must be one of: week, month, quarter, year, all")
		return
	}

	var earliest *string
	if name == "all" {
		err := h.db.QueryRow(c,
			"SELECT MIN(date) FROM meal_logs WHERE user_id = @userID",
			pgx.NamedArgs{"userID": userID}).Scan(&earliest)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to fetch earliest date")
			return
		}
	}
	first := ""
	if earliest != nil {
		first = *earliest
	}
	keys, err := rangeKeys(name, first, h.clock())
	if err != nil {
		apiError(c, http.StatusInternalServerError, fmt.Sprintf("failed to build range: %v", err))
		return
	}

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	meals, err := h.mealsInRange(c, userID, keys[0], keys[len(keys)-1])
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meal logs")
		return
	}

	target := p.effectiveCalorieTarget()
	series := dailySeries(meals, keys)
	for i := range series {
		series[i].Totals = series[i].Totals.rounded()
	}
	c.JSON(http.StatusOK, rangeSummary{
		Range:         name,
		Start:         keys[0],
		End:           keys[len(keys)-1],
		CalorieTarget: target,
		Days:          series,
		Stats:         seriesStats(series, target),
	})
}

// getStreak returns the user's current and longest logging streaks.
// GET /api/streak.
func (h *Handler) getStreak(c *gin.Context) {
	rows, err := h.db.Query(c,
		"SELECT DISTINCT date FROM meal_logs WHERE user_id = @userID",
		pgx.NamedArgs{"userID": c.GetInt("user_id")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch log dates")
		return
	}
	dates, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read log dates")
		return
	}

	s := computeStreak(dates, h.clock())
	c.JSON(http.StatusOK, gin.H{
		"current":       s.Current,
		"longest":       s.Longest,
		"message":       streakMessage(s.Current),
		"nextMilestone": nextStreakMilestone(s.Current),
	})
}
