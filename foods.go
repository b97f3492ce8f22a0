package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// maxImportBytes bounds an uploaded or pasted import.
const maxImportBytes = 5 << 20

// resolveFood finds a food by id in the catalog, then in the built-in list.
// Returns pgx.ErrNoRows when neither has it.
func (h *Handler) resolveFood(ctx context.Context, id string) (food, error) {
	if f, ok := fallbackFoodByID(id); ok {
		return f, nil
	}
	return queryOne[food](ctx, h.db, "SELECT "+foodCols+" FROM foods WHERE id = @id", pgx.NamedArgs{"id": id})
}

// listFoods searches the catalog by name.
// GET /api/foods?q=. When the catalog is unreachable or empty the built-in
// list is searched instead and the response carries fallback: true.
func (h *Handler) listFoods(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))

	foods, err := queryMany[food](c, h.db,
		`SELECT `+foodCols+` FROM foods
		 WHERE @q = '' OR name ILIKE '%' || @q || '%'
		 ORDER BY name`,
		pgx.NamedArgs{"q": q})
	if err == nil && len(foods) == 0 && q != "" {
		var exists bool
		err = h.db.QueryRow(c, "SELECT EXISTS (SELECT 1 FROM foods)").Scan(&exists)
		if err == nil && exists {
			c.JSON(http.StatusOK, gin.H{"foods": foods, "fallback": false})
			return
		}
	}
	if err != nil || len(foods) == 0 {
		if err != nil {
			slog.WarnContext(c, "food catalog unavailable, serving built-in foods", "error", err)
		}
		builtin, ferr := builtinFoods()
		if ferr != nil {
			apiError(c, http.StatusInternalServerError, "failed to load foods")
			return
		}
		c.JSON(http.StatusOK, gin.H{"foods": searchFoods(builtin, q), "fallback": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods, "fallback": false})
}

// getFood returns one food from the catalog or the built-in list.
// GET /api/foods/:id.
func (h *Handler) getFood(c *gin.Context) {
	f, err := h.resolveFood(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "food not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to fetch food")
		}
		return
	}
	c.JSON(http.StatusOK, f)
}

// insertFood adds a catalog entry with a fresh id.
func insertFood(ctx context.Context, q querier, f food) (food, error) {
	return queryOne[food](ctx, q,
		`INSERT INTO foods (id, name, calories_per_portion, protein_g, carbs_g, fat_g, fiber_g, sugar_g, unit, grams_per_unit)
		 VALUES (@id, @name, @calories, @protein, @carbs, @fat, @fiber, @sugar, @unit, @grams)
		 RETURNING `+foodCols,
		foodArgs(uuid.NewString(), f))
}

func foodArgs(id string, f food) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id": id, "name": strings.TrimSpace(f.Name), "calories": f.CaloriesPerPortion,
		"protein": f.ProteinG, "carbs": f.CarbsG, "fat": f.FatG, "fiber": f.FiberG,
		"sugar": f.SugarG, "unit": f.Unit, "grams": f.GramsPerUnit,
	}
}

// createFood adds a catalog entry.
// POST /api/admin/foods.
func (h *Handler) createFood(c *gin.Context) {
	var body foodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	f, err := insertFood(c, h.db, body.toFood())
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create food")
		return
	}
	c.JSON(http.StatusCreated, f)
}

// updateFood replaces every nutrition field of a catalog entry.
// PUT /api/admin/foods/:id.
func (h *Handler) updateFood(c *gin.Context) {
	var body foodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	f, err := queryOne[food](c, h.db,
		`UPDATE foods SET
			name = @name, calories_per_portion = @calories, protein_g = @protein,
			carbs_g = @carbs, fat_g = @fat, fiber_g = @fiber, sugar_g = @sugar,
			unit = @unit, grams_per_unit = @grams
		 WHERE id = @id
		 RETURNING `+foodCols,
		foodArgs(c.Param("id"), body.toFood()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "food not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update food")
		}
		return
	}
	c.JSON(http.StatusOK, f)
}

// deleteFood removes a catalog entry. Existing meal logs keep their copied
// name and totals.
// DELETE /api/admin/foods/:id.
func (h *Handler) deleteFood(c *gin.Context) {
	result, err := h.db.Exec(c, "DELETE FROM foods WHERE id = @id", pgx.NamedArgs{"id": c.Param("id")})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete food")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "food not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// importText reads the import payload: a multipart "file" upload, or a JSON
// body {"text": "..."}.
func importText(c *gin.Context) (string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", errors.New("file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return "", errors.New("failed to read file")
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxImportBytes+1))
		if err != nil {
			return "", errors.New("failed to read file")
		}
		if len(data) > maxImportBytes {
			return "", errors.New("file is too large")
		}
		return string(data), nil
	}

	var body struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		return "", errors.New(bindErrorMessage(err))
	}
	if len(body.Text) > maxImportBytes {
		return "", errors.New("text is too large")
	}
	return body.Text, nil
}

// importFoods bulk-inserts foods from CSV or tab-separated text. Rows are
// inserted one by one; bad rows are reported, never fatal.
// POST /api/admin/foods/import.
func (h *Handler) importFoods(c *gin.Context) {
	text, err := importText(c)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	_, rows, err := parseImportText(text)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	res := runImport(c.Request.Context(), rows, func(ctx context.Context, f food) error {
		_, err := insertFood(ctx, h.db, f)
		return err
	})
	slog.InfoContext(c, "food import finished",
		"total", res.Total, "success", res.Success, "errors", res.Errors, "cancelled", res.Cancelled)
	c.JSON(http.StatusOK, res)
}

// mergeDuplicateFoods keeps the oldest entry of each case-insensitive name
// group and deletes the rest, in one transaction.
// POST /api/admin/foods/merge-duplicates.
func (h *Handler) mergeDuplicateFoods(c *gin.Context) {
	var removed int
	err := h.inTx(c, func(tx pgx.Tx) error {
		foods, err := queryMany[food](c, tx,
			"SELECT "+foodCols+" FROM foods ORDER BY created_at, id FOR UPDATE", pgx.NamedArgs{})
		if err != nil {
			return err
		}
		for _, id := range duplicateFoodIDs(foods) {
			if _, err := tx.Exec(c, "DELETE FROM foods WHERE id = @id", pgx.NamedArgs{"id": id}); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to merge duplicates")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
