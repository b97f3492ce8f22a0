package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler holds shared dependencies for all route handlers. mailer and archive
// are nil when their integration is not configured.
type Handler struct {
	db            *pgxpool.Pool
	openAIBaseURL string // Base URL for OpenAI API (overridable for tests)
	openAIKey     string
	mailer        reportMailer
	archive       exportArchive
	archivePrefix string
	now           func() time.Time
}

// clock returns the current time, overridable in tests.
func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Query and scan errors are logged; pgx.ErrNoRows is not.
func queryOne[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		slog.ErrorContext(ctx, "query failed", "op", "queryOne", "error", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		slog.ErrorContext(ctx, "scan failed", "op", "queryOne", "error", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T. The result is never nil
// on success so it encodes as [] rather than null.
func queryMany[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		slog.ErrorContext(ctx, "query failed", "op", "queryMany", "error", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		slog.ErrorContext(ctx, "scan failed", "op", "queryMany", "error", err)
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// inTx runs fn in a transaction, committing only if fn returns nil.
func (h *Handler) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := h.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newDBPool creates a connection pool.
func newDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	registerValidators()

	// Public routes
	router.POST("/api/signup", h.signup)
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.GET("/favorites", h.getFavorites)
	api.PUT("/favorites/:foodId", h.addFavorite)
	api.DELETE("/favorites/:foodId", h.removeFavorite)

	api.GET("/foods", h.listFoods)
	api.GET("/foods/:id", h.getFood)
	api.POST("/foods/suggest", h.suggestFood)
	api.POST("/foods/submissions", h.submitFood)

	api.GET("/meal-logs", h.listMealLogs)
	api.POST("/meal-logs", h.createMealLog)
	api.DELETE("/meal-logs/:id", h.deleteMealLog)
	api.GET("/summary/daily", h.getDailySummary)
	api.GET("/summary/range", h.getRangeSummary)
	api.GET("/streak", h.getStreak)

	api.GET("/water", h.getWater)
	api.POST("/water/add", h.addWater)
	api.PUT("/water", h.setWater)
	api.GET("/water/history", h.getWaterHistory)

	api.GET("/meal-templates", h.listMealTemplates)
	api.POST("/meal-templates", h.createMealTemplate)
	api.DELETE("/meal-templates/:id", h.deleteMealTemplate)
	api.POST("/meal-templates/:id/log", h.logMealTemplate)

	api.GET("/export", h.exportMeals)
	api.GET("/export/water", h.exportWater)
	api.POST("/export/email", h.emailExport)
	api.POST("/export/archive", h.archiveExport)

	// Admin routes
	admin := api.Group("/admin", adminOnly())
	admin.POST("/foods", h.createFood)
	admin.PUT("/foods/:id", h.updateFood)
	admin.DELETE("/foods/:id", h.deleteFood)
	admin.POST("/foods/import", h.importFoods)
	admin.POST("/foods/merge-duplicates", h.mergeDuplicateFoods)
	admin.GET("/submissions", h.listSubmissions)
	admin.POST("/submissions/:id/approve", h.approveSubmission)
	admin.POST("/submissions/:id/reject", h.rejectSubmission)
}
