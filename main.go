package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine in production, where env comes from the process.
	envErr := godotenv.Load()

	cfg, err := loadConfig()
	logger := setupLogging(cfg.LogLevel)
	if envErr != nil {
		slog.Debug("no .env file loaded", "error", envErr)
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := newDBPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	h := &Handler{
		db:            pool,
		openAIBaseURL: cfg.OpenAIBaseURL,
		openAIKey:     cfg.OpenAIKey,
		archivePrefix: cfg.ExportPrefix,
	}
	if cfg.mailConfigured() {
		h.mailer = newSMTPMailer(cfg)
	} else {
		slog.Info("smtp not configured, email export disabled")
	}
	if cfg.archiveConfigured() {
		archive, err := newS3Archive(ctx, cfg.ExportBucket, cfg.ExportRegion)
		if err != nil {
			slog.Error("failed to configure export archive", "error", err)
			os.Exit(1)
		}
		h.archive = archive
	} else {
		slog.Info("export bucket not configured, archive export disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("nutrition log api starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
