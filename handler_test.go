package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// newTestRouter mounts one handler behind a stub auth step that sets user_id,
// so handlers can be exercised up to their first database call.
func newTestRouter(method, path string, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	registerValidators()
	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, handler)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// errorBody decodes an {"error": "..."} response.
func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response %q: %v", w.Body.String(), err)
	}
	return resp["error"]
}

type handlerCase struct {
	name    string
	method  string
	path    string
	body    string
	status  int
	message string
}

func runHandlerCases(t *testing.T, route string, handler gin.HandlerFunc, cases []handlerCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(tc.method, route, handler)
			w := doJSON(router, tc.method, tc.path, tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.message != "" {
				if got := errorBody(t, w); got != tc.message {
					t.Errorf("error = %q, want %q", got, tc.message)
				}
			}
		})
	}
}
