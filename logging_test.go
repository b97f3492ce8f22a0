package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSetupLogging_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		logger := setupLogging(in)
		ctx := context.Background()
		if !logger.Enabled(ctx, want) || (want > slog.LevelDebug && logger.Enabled(ctx, want-4)) {
			t.Errorf("setupLogging(%q) not at level %v", in, want)
		}
		if slog.Default() != logger {
			t.Errorf("setupLogging(%q) did not install the default logger", in)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestLogger(logger))
	router.GET("/ok", func(c *gin.Context) {
		c.Set("user_id", 9)
		c.Status(http.StatusNoContent)
	})
	router.GET("/missing", func(c *gin.Context) { apiError(c, http.StatusNotFound, "nope") })
	router.GET("/broken", func(c *gin.Context) { apiError(c, http.StatusInternalServerError, "boom") })

	for _, tc := range []struct{ path, level, status string }{
		{"/ok", "level=INFO", "status=204"},
		{"/missing", "level=WARN", "status=404"},
		{"/broken", "level=ERROR", "status=500"},
	} {
		buf.Reset()
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))
		line := buf.String()
		for _, want := range []string{tc.level, tc.status, "method=GET", "path=" + tc.path} {
			if !strings.Contains(line, want) {
				t.Errorf("%s: log line %q missing %q", tc.path, line, want)
			}
		}
	}
	buf.Reset()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	if !strings.Contains(buf.String(), "user_id=9") {
		t.Errorf("expected user_id attr, got %q", buf.String())
	}
}
