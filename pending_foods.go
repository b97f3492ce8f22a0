package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const pendingFoodCols = `id, name, calories_per_portion, protein_g, carbs_g, fat_g, fiber_g, sugar_g,
	unit, grams_per_unit, submitted_by, submitted_by_name, status, submitted_at, reviewed_at, reviewed_by`

// errNotPending is returned when a reviewed submission is reviewed again.
var errNotPending = errors.New("submission has already been reviewed")

// submitFood records a user's catalog suggestion for admin review.
// POST /api/foods/submissions.
func (h *Handler) submitFood(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body foodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	f := body.toFood()

	args := foodArgs(uuid.NewString(), f)
	args["userID"] = userID
	args["status"] = statusPending
	p, err := queryOne[pendingFood](c, h.db,
		`INSERT INTO pending_foods (id, name, calories_per_portion, protein_g, carbs_g, fat_g, fiber_g, sugar_g,
			unit, grams_per_unit, submitted_by, submitted_by_name, status)
		 VALUES (@id, @name, @calories, @protein, @carbs, @fat, @fiber, @sugar, @unit, @grams,
			@userID, (SELECT name FROM users WHERE id = @userID), @status)
		 RETURNING `+pendingFoodCols,
		args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to submit food")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// listSubmissions returns submissions with the given status, newest first.
// GET /api/admin/submissions?status=pending (default pending, "all" for every status).
func (h *Handler) listSubmissions(c *gin.Context) {
	status := c.DefaultQuery("status", statusPending)
	switch status {
	case statusPending, statusApproved, statusRejected, "all":
	default:
		apiError(c, http.StatusBadRequest, "status must be one of: pending, approved, rejected, all")
		return
	}

	subs, err := queryMany[pendingFood](c, h.db,
		`SELECT `+pendingFoodCols+` FROM pending_foods
		 WHERE @status = 'all' OR status = @status
		 ORDER BY submitted_at DESC`,
		pgx.NamedArgs{"status": status})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch submissions")
		return
	}
	c.JSON(http.StatusOK, subs)
}

// reviewSubmission moves a pending submission to status. Approving also
// creates the catalog food in the same transaction.
func (h *Handler) reviewSubmission(c *gin.Context, status string) {
	adminID := c.GetInt("user_id")
	id := c.Param("id")

	var (
		reviewed pendingFood
		created  *food
	)
	err := h.inTx(c, func(tx pgx.Tx) error {
		p, err := queryOne[pendingFood](c, tx,
			"SELECT "+pendingFoodCols+" FROM pending_foods WHERE id = @id FOR UPDATE",
			pgx.NamedArgs{"id": id})
		if err != nil {
			return err
		}
		if p.Status != statusPending {
			return errNotPending
		}
		if status == statusApproved {
			f, err := insertFood(c, tx, p.toFood())
			if err != nil {
				return fmt.Errorf("create food: %w", err)
			}
			created = &f
		}
		reviewed, err = queryOne[pendingFood](c, tx,
			`UPDATE pending_foods SET status = @status, reviewed_at = now(), reviewed_by = @adminID
			 WHERE id = @id
			 RETURNING `+pendingFoodCols,
			pgx.NamedArgs{"id": id, "status": status, "adminID": adminID})
		return err
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusNotFound, "submission not found")
	case errors.Is(err, errNotPending):
		apiError(c, http.StatusConflict, errNotPending.Error())
	case err != nil:
		apiError(c, http.StatusInternalServerError, "failed to review submission")
	default:
		c.JSON(http.StatusOK, gin.H{"submission": reviewed, "food": created})
	}
}

// approveSubmission handles POST /api/admin/submissions/:id/approve.
func (h *Handler) approveSubmission(c *gin.Context) { h.reviewSubmission(c, statusApproved) }

// rejectSubmission handles POST /api/admin/submissions/:id/reject.
func (h *Handler) rejectSubmission(c *gin.Context) { h.reviewSubmission(c, statusRejected) }
