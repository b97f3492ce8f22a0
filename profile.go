package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

const profileQuery = `SELECT ` + profileCols + `
	FROM user_profiles p JOIN users u ON u.id = p.user_id
	WHERE p.user_id = @userID`

// populateProfile fills the computed fields: water settings and target,
// energy targets against the effective calorie budget, and BMI.
func populateProfile(p *userProfile) {
	if p.FavoriteFoodIDs == nil {
		p.FavoriteFoodIDs = []string{}
	}
	p.WaterSettings = waterSettings{
		AutoCalculate:  p.WaterAutoCalculate,
		CustomTargetMl: p.WaterCustomTargetMl,
		GlassSizeMl:    p.WaterGlassSizeMl,
	}
	p.WaterSettings.GlassSizeMl = glassSize(p.WaterSettings)
	p.WaterTargetMl = waterTargetMl(p.WaterSettings, p.WeightKG)

	target := p.effectiveCalorieTarget()
	t := computeEnergyTargets(p.bodyProfile(), &target)
	p.Targets = &t

	if bmi, err := computeBMI(p.HeightCM, p.WeightKG); err == nil {
		p.BMI = &bmi
	}
}

// loadProfile fetches a user's profile without computed fields.
func (h *Handler) loadProfile(c *gin.Context, userID int) (userProfile, error) {
	return queryOne[userProfile](c, h.db, profileQuery, pgx.NamedArgs{"userID": userID})
}

// getProfile returns the authenticated user's profile with computed targets.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.loadProfile(c, c.GetInt("user_id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		}
		return
	}
	populateProfile(&p)
	c.JSON(http.StatusOK, p)
}

// profileUpdates builds the SET clauses for a profile patch. When any body
// metric or the goal changes, rda is recomputed from the merged profile. A goal
// change without an explicit dailyCalorieTarget also resets the override to
// the new rda. An explicit dailyCalorieTarget of 0 clears the override.
func profileUpdates(current userProfile, body patchProfileRequest) ([]string, pgx.NamedArgs) {
	setClauses := []string{}
	args := pgx.NamedArgs{}
	merged := current

	if body.HeightCM != nil {
		setClauses = append(setClauses, "height_cm = @heightCM")
		args["heightCM"] = *body.HeightCM
		merged.HeightCM = *body.HeightCM
	}
	if body.WeightKG != nil {
		setClauses = append(setClauses, "weight_kg = @weightKG")
		args["weightKG"] = *body.WeightKG
		merged.WeightKG = *body.WeightKG
	}
	if body.Age != nil {
		setClauses = append(setClauses, "age = @age")
		args["age"] = *body.Age
		merged.Age = body.Age
	}
	if body.Gender != nil {
		setClauses = append(setClauses, "gender = @gender")
		args["gender"] = *body.Gender
		merged.Gender = body.Gender
	}
	if body.Goal != nil {
		setClauses = append(setClauses, "goal = @goal")
		args["goal"] = *body.Goal
		merged.Goal = *body.Goal
	}

	metricsChanged := body.HeightCM != nil || body.WeightKG != nil || body.Age != nil ||
		body.Gender != nil || body.Goal != nil
	if metricsChanged {
		_, rda := computeCalorieTarget(merged.bodyProfile())
		setClauses = append(setClauses, "rda = @rda")
		args["rda"] = rda
		if body.Goal != nil && body.DailyCalorieTarget == nil {
			setClauses = append(setClauses, "daily_calorie_target = @dailyCalorieTarget")
			args["dailyCalorieTarget"] = rda
		}
	}
	if body.DailyCalorieTarget != nil {
		setClauses = append(setClauses, "daily_calorie_target = @dailyCalorieTarget")
		if *body.DailyCalorieTarget == 0 {
			args["dailyCalorieTarget"] = nil
		} else {
			args["dailyCalorieTarget"] = *body.DailyCalorieTarget
		}
	}

	if body.Theme != nil {
		setClauses = append(setClauses, "theme = @theme")
		args["theme"] = *body.Theme
	}
	if body.OnboardingCompleted != nil {
		setClauses = append(setClauses, "onboarding_completed = @onboardingCompleted")
		args["onboardingCompleted"] = *body.OnboardingCompleted
	}
	if body.WaterAutoCalculate != nil {
		setClauses = append(setClauses, "water_auto_calculate = @waterAutoCalculate")
		args["waterAutoCalculate"] = *body.WaterAutoCalculate
	}
	if body.WaterGlassSizeMl != nil {
		setClauses = append(setClauses, "water_glass_size_ml = @waterGlassSizeMl")
		args["waterGlassSizeMl"] = *body.WaterGlassSizeMl
	}
	if body.WaterCustomTargetMl != nil {
		setClauses = append(setClauses, "water_custom_target_ml = @waterCustomTargetMl")
		args["waterCustomTargetMl"] = *body.WaterCustomTargetMl
	}
	return setClauses, args
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Pointer fields distinguish "not provided" from zero.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	current, err := h.loadProfile(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		}
		return
	}

	setClauses, args := profileUpdates(current, body)
	if len(setClauses) == 0 && body.Name == nil {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}
	args["userID"] = userID

	err = h.inTx(c, func(tx pgx.Tx) error {
		if body.Name != nil {
			if _, err := tx.Exec(c, "UPDATE users SET name = @name WHERE id = @userID",
				pgx.NamedArgs{"name": strings.TrimSpace(*body.Name), "userID": userID}); err != nil {
				return err
			}
		}
		if len(setClauses) > 0 {
			query := "UPDATE user_profiles SET " + strings.Join(setClauses, ", ") +
				", updated_at = now() WHERE user_id = @userID"
			if _, err := tx.Exec(c, query, args); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	populateProfile(&p)
	c.JSON(http.StatusOK, p)
}

/* ─── Favorites ──────────────────────────────────────────────────────── */

// getFavorites returns the user's favorite food ids.
// GET /api/favorites.
func (h *Handler) getFavorites(c *gin.Context) {
	var ids []string
	err := h.db.QueryRow(c,
		"SELECT favorite_food_ids FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": c.GetInt("user_id")}).Scan(&ids)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch favorites")
		}
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"favoriteFoods": ids})
}

// addFavorite adds a food to the user's favorites. Adding twice is a no-op.
// PUT /api/favorites/:foodId.
func (h *Handler) addFavorite(c *gin.Context) {
	foodID := c.Param("foodId")
	if _, err := h.resolveFood(c, foodID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "food not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch food")
		}
		return
	}
	h.updateFavorites(c,
		`UPDATE user_profiles
		 SET favorite_food_ids = CASE WHEN @foodID = ANY(favorite_food_ids)
		     THEN favorite_food_ids ELSE array_append(favorite_food_ids, @foodID) END
		 WHERE user_id = @userID
		 RETURNING favorite_food_ids`, foodID)
}

// removeFavorite removes a food from the user's favorites.
// DELETE /api/favorites/:foodId.
func (h *Handler) removeFavorite(c *gin.Context) {
	h.updateFavorites(c,
		`UPDATE user_profiles SET favorite_food_ids = array_remove(favorite_food_ids, @foodID)
		 WHERE user_id = @userID
		 RETURNING favorite_food_ids`, c.Param("foodId"))
}

func (h *Handler) updateFavorites(c *gin.Context, query, foodID string) {
	var ids []string
	err := h.db.QueryRow(c, query,
		pgx.NamedArgs{"foodID": foodID, "userID": c.GetInt("user_id")}).Scan(&ids)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "profile not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update favorites")
		}
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"favoriteFoods": ids})
}
