package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const waterLogCols = "id, user_id, date, amount_ml, glasses, timestamp"

// waterRequest is the body for POST /api/water/add and PUT /api/water.
// Add accepts negative amounts to undo a glass; the stored total never drops
// below zero.
type waterRequest struct {
	AmountMl *int   `json:"amountMl" binding:"required"`
	Date     string `json:"date"     binding:"omitempty,datekey"`
}

// waterForDay returns the day's stored amount in ml, or 0 when nothing was logged.
func (h *Handler) waterForDay(c *gin.Context, userID int, date string) (int, error) {
	w, err := queryOne[waterLog](c, h.db,
		"SELECT "+waterLogCols+" FROM water_logs WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": userID, "date": date})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.amount(), nil
}

// respondWaterProgress writes the day's progress against the profile's target.
func (h *Handler) respondWaterProgress(c *gin.Context, userID int, date string, amountMl int) {
	p, err := h.loadProfile(c, userID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	populateProfile(&p)
	c.JSON(http.StatusOK, computeWaterProgress(date, amountMl, p.WaterSettings, p.WeightKG))
}

// getWater returns one day's water intake and progress.
// GET /api/water?date=YYYY-MM-DD (defaults to today's key).
func (h *Handler) getWater(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", todayKey(h.clock()))
	if !isDateKey(date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	amount, err := h.waterForDay(c, userID, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch water log")
		return
	}
	h.respondWaterProgress(c, userID, date, amount)
}

// bindWater parses a water body and defaults the date to today's key.
func (h *Handler) bindWater(c *gin.Context) (waterRequest, bool) {
	var body waterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return body, false
	}
	if body.Date == "" {
		body.Date = todayKey(h.clock())
	}
	return body, true
}

// addWater adds to the day's cumulative amount, creating the row on the first
// log of the day. Legacy glass counts are converted before adding.
// POST /api/water/add.
func (h *Handler) addWater(c *gin.Context) {
	userID := c.GetInt("user_id")
	body, ok := h.bindWater(c)
	if !ok {
		return
	}
	w, err := queryOne[waterLog](c, h.db,
		`INSERT INTO water_logs (id, user_id, date, amount_ml, timestamp)
		 VALUES (@id, @userID, @date, GREATEST(0, @amount), now())
		 ON CONFLICT (user_id, date) DO UPDATE SET
			amount_ml = GREATEST(0, COALESCE(water_logs.amount_ml, water_logs.glasses * @glassMl, 0) + @amount),
			glasses = NULL,
			timestamp = now()
		 RETURNING `+waterLogCols,
		pgx.NamedArgs{
			"id": uuid.NewString(), "userID": userID, "date": body.Date,
			"amount": *body.AmountMl, "glassMl": legacyGlassMl,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log water")
		return
	}
	h.respondWaterProgress(c, userID, body.Date, w.amount())
}

// setWater overwrites the day's amount, clamped at zero.
// PUT /api/water.
func (h *Handler) setWater(c *gin.Context) {
	userID := c.GetInt("user_id")
	body, ok := h.bindWater(c)
	if !ok {
		return
	}
	amount := max(*body.AmountMl, 0)
	w, err := queryOne[waterLog](c, h.db,
		`INSERT INTO water_logs (id, user_id, date, amount_ml, timestamp)
		 VALUES (@id, @userID, @date, @amount, now())
		 ON CONFLICT (user_id, date) DO UPDATE SET
			amount_ml = @amount, glasses = NULL, timestamp = now()
		 RETURNING `+waterLogCols,
		pgx.NamedArgs{"id": uuid.NewString(), "userID": userID, "date": body.Date, "amount": amount})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save water log")
		return
	}
	h.respondWaterProgress(c, userID, body.Date, w.amount())
}

// waterInRange loads water rows ordered by date. Empty start/end means no bound.
func (h *Handler) waterInRange(c *gin.Context, userID int, start, end string) ([]waterLog, error) {
	return queryMany[waterLog](c, h.db,
		`SELECT `+waterLogCols+` FROM water_logs
		 WHERE user_id = @userID
		   AND (@start = '' OR date >= @start)
		   AND (@end = '' OR date <= @end)
		 ORDER BY date`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

// getWaterHistory returns water rows between start and end inclusive, with
// legacy rows reported in ml.
// GET /api/water/history?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *Handler) getWaterHistory(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if err := validateDateRange(start, end, true); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	logs, err := h.waterInRange(c, c.GetInt("user_id"), start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch water history")
		return
	}
	for i := range logs {
		amount := logs[i].amount()
		logs[i].AmountMl = &amount
	}
	c.JSON(http.StatusOK, logs)
}
