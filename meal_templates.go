package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const mealTemplateCols = `id, user_id, name, meal_type, foods, total_calories, total_protein,
	total_carbs, total_fats, total_fiber, total_sugars, created_at`

// newTemplateItem snapshots a food's name, unit and scaled totals so later
// catalog edits don't change saved templates.
func newTemplateItem(f food, quantity float64) templateItem {
	return templateItem{
		FoodID:   f.ID,
		FoodName: f.Name,
		Quantity: quantity,
		Unit:     f.Unit,
		Calories: f.CaloriesPerPortion * quantity,
		Protein:  f.ProteinG * quantity,
		Carbs:    f.CarbsG * quantity,
		Fats:     f.FatG * quantity,
		Fiber:    f.FiberG * quantity,
		Sugars:   f.SugarG * quantity,
	}
}

// newMealTemplate builds a template and its precomputed totals.
func newMealTemplate(userID int, name, mealType string, items []templateItem) mealTemplate {
	var t nutritionTotals
	for _, it := range items {
		t.add(nutritionTotals{
			Calories: it.Calories, Protein: it.Protein, Carbs: it.Carbs,
			Fats: it.Fats, Fiber: it.Fiber, Sugars: it.Sugars,
		})
	}
	t = t.rounded()
	return mealTemplate{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          strings.TrimSpace(name),
		MealType:      mealType,
		Foods:         items,
		TotalCalories: t.Calories,
		TotalProtein:  t.Protein,
		TotalCarbs:    t.Carbs,
		TotalFats:     t.Fats,
		TotalFiber:    t.Fiber,
		TotalSugars:   t.Sugars,
	}
}

// templateMealLogs expands a template into one meal log per item, keeping the
// template's meal type.
func templateMealLogs(userID int, t mealTemplate, date string, now time.Time) []mealLog {
	logs := make([]mealLog, 0, len(t.Foods))
	for _, it := range t.Foods {
		logs = append(logs, mealLog{
			ID:        uuid.NewString(),
			UserID:    userID,
			FoodID:    it.FoodID,
			FoodName:  it.FoodName,
			Quantity:  it.Quantity,
			Unit:      it.Unit,
			Calories:  it.Calories,
			Protein:   it.Protein,
			Carbs:     it.Carbs,
			Fats:      it.Fats,
			Fiber:     it.Fiber,
			Sugars:    it.Sugars,
			MealType:  t.MealType,
			Date:      date,
			Timestamp: now.UTC(),
		})
	}
	return logs
}

// listMealTemplates returns the user's templates, newest first.
// GET /api/meal-templates.
func (h *Handler) listMealTemplates(c *gin.Context) {
	templates, err := queryMany[mealTemplate](c, h.db,
		"SELECT "+mealTemplateCols+" FROM meal_templates WHERE user_id = @userID ORDER BY created_at DESC",
		pgx.NamedArgs{"userID": c.GetInt("user_id")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meal templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// createMealTemplate saves a named group of foods.
// POST /api/meal-templates. Every food must resolve; totals are computed here.
func (h *Handler) createMealTemplate(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createTemplateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	items := make([]templateItem, 0, len(body.Items))
	for _, req := range body.Items {
		f, err := h.resolveFood(c, req.FoodID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				apiError(c, http.StatusNotFound, fmt.Sprintf("food %s not found", req.FoodID))
			} else {
				apiError(c, http.StatusInternalServerError, "failed to fetch food")
			}
			return
		}
		items = append(items, newTemplateItem(f, req.Quantity))
	}

	t := newMealTemplate(userID, body.Name, body.MealType, items)
	foodsJSON, err := json.Marshal(t.Foods)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to encode template")
		return
	}
	created, err := queryOne[mealTemplate](c, h.db,
		`INSERT INTO meal_templates (id, user_id, name, meal_type, foods, total_calories,
			total_protein, total_carbs, total_fats, total_fiber, total_sugars)
		 VALUES (@id, @userID, @name, @mealType, @foods::jsonb, @calories,
			@protein, @carbs, @fats, @fiber, @sugars)
		 RETURNING `+mealTemplateCols,
		pgx.NamedArgs{
			"id": t.ID, "userID": userID, "name": t.Name, "mealType": t.MealType,
			"foods": string(foodsJSON), "calories": t.TotalCalories, "protein": t.TotalProtein,
			"carbs": t.TotalCarbs, "fats": t.TotalFats, "fiber": t.TotalFiber, "sugars": t.TotalSugars,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create meal template")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// deleteMealTemplate removes a template. Returns 204 on success.
// DELETE /api/meal-templates/:id.
func (h *Handler) deleteMealTemplate(c *gin.Context) {
	result, err := h.db.Exec(c,
		"DELETE FROM meal_templates WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": c.Param("id"), "userID": c.GetInt("user_id")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete meal template")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "meal template not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// logMealTemplate logs every item of a template in one transaction.
// POST /api/meal-templates/:id/log with optional {"date": "YYYY-MM-DD"}.
func (h *Handler) logMealTemplate(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date string `json:"date" binding:"omitempty,datekey"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apiError(c, http.StatusBadRequest, bindErrorMessage(err))
			return
		}
	}
	now := h.clock()
	if body.Date == "" {
		body.Date = todayKey(now)
	}

	var created []mealLog
	err := h.inTx(c, func(tx pgx.Tx) error {
		t, err := queryOne[mealTemplate](c, tx,
			"SELECT "+mealTemplateCols+" FROM meal_templates WHERE id = @id AND user_id = @userID",
			pgx.NamedArgs{"id": c.Param("id"), "userID": userID})
		if err != nil {
			return err
		}
		for _, m := range templateMealLogs(userID, t, body.Date, now) {
			row, err := queryOne[mealLog](c, tx, insertMealLogSQL, mealLogArgs(m))
			if err != nil {
				return fmt.Errorf("insert meal log: %w", err)
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "meal template not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to log meal template")
		}
		return
	}
	if created == nil {
		created = []mealLog{}
	}
	c.JSON(http.StatusCreated, created)
}
