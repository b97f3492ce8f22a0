package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc-123", "abc-123", true},
		{"Bearer   abc-123  ", "abc-123", true},
		{"Bearer ", "", false},
		{"abc-123", "abc-123", false},
		{"Basic dXNlcjpwYXNz", "Basic dXNlcjpwYXNz", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		if ok != tc.ok || (ok && token != tc.token) {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{}
	router := gin.New()
	router.GET("/api/profile", h.authMiddleware(), func(c *gin.Context) {
		t.Error("handler should not run without a token")
	})

	w := doJSON(router, http.MethodGet, "/api/profile", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := errorBody(t, w); got != "missing or invalid authorization header" {
		t.Errorf("error = %q", got)
	}
}

func TestAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, isAdmin := range []bool{false, true} {
		router := gin.New()
		router.POST("/api/admin/foods", func(c *gin.Context) {
			c.Set("is_admin", isAdmin)
			c.Next()
		}, adminOnly(), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/foods", nil))

		want := http.StatusForbidden
		if isAdmin {
			want = http.StatusNoContent
		}
		if w.Code != want {
			t.Errorf("is_admin=%v: expected %d, got %d", isAdmin, want, w.Code)
		}
	}
}

func TestSignup_Validation(t *testing.T) {
	h := &Handler{}
	valid := `"email":"a@b.co","name":"Asha","password":"longenough","heightCm":160,"weightKg":55`
	runHandlerCases(t, "/api/signup", h.signup, []handlerCase{
		{"missing goal", http.MethodPost, "/api/signup", `{` + valid + `}`, http.StatusBadRequest, "goal is required"},
		{"bad goal", http.MethodPost, "/api/signup", `{` + valid + `,"goal":"bulk"}`, http.StatusBadRequest, "goal must be one of: lose, maintain, gain"},
		{"short password", http.MethodPost, "/api/signup",
			`{"email":"a@b.co","name":"Asha","password":"short","heightCm":160,"weightKg":55,"goal":"lose"}`,
			http.StatusBadRequest, "password must be at least 8"},
		{"bad email", http.MethodPost, "/api/signup",
			`{"email":"nope","name":"Asha","password":"longenough","heightCm":160,"weightKg":55,"goal":"lose"}`,
			http.StatusBadRequest, "email must be a valid email address"},
		{"not json", http.MethodPost, "/api/signup", `{`, http.StatusBadRequest, "invalid request body"},
	})
}

func TestLogin_MissingFields(t *testing.T) {
	h := &Handler{}
	runHandlerCases(t, "/api/login", h.login, []handlerCase{
		{"no password", http.MethodPost, "/api/login", `{"email":"a@b.co"}`, http.StatusBadRequest, "password is required"},
	})
}
