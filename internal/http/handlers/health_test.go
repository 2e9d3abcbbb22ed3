package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/accounthub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func newHealthRouter(ping func(ctx context.Context) error) *gin.Engine {
	h := handlers.NewHealthHandler(ping)

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReadyz(t *testing.T) {
	if w := get(newHealthRouter(nil), "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	down := newHealthRouter(func(ctx context.Context) error { return errors.New("connection refused") })

	if w := get(down, "/readyz"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503", w.Code)
	}
	if w := get(down, "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("liveness must not depend on the store, got %d", w.Code)
	}
}

func TestDocs(t *testing.T) {
	r := newHealthRouter(nil)

	w := get(r, "/docs")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/docs/openapi.yaml") {
		t.Fatalf("unexpected docs page: %d", w.Code)
	}

	w = get(r, "/docs/openapi.yaml")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	for _, path := range []string{"/api/users:", "/api/users/google:", "/api/users/login:", "/api/users/me:"} {
		if !strings.Contains(w.Body.String(), path) {
			t.Fatalf("openapi document missing %s", path)
		}
	}
}
