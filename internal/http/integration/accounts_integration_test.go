package integration__test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/accounthub/internal/account"
	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/db"
	apphttp "github.com/geocoder89/accounthub/internal/http"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key"

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Env:            "test",
		JWTSecret:      testSecret,
		StoreDriver:    config.DriverSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "accounthub.db"),
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   1 << 20,
	}
}

// setupRouter wires the full stack over a throwaway SQLite file.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := testConfig(t)

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	store, err := db.Open(context.Background(), cfg, prom, logger)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(store.Close)

	svc := account.NewService(
		store.Users,
		security.NewPasswordHasher(bcrypt.MinCost),
		auth.NewManager(cfg.JWTSecret),
		logger,
		prom,
	)

	return apphttp.NewRouter(logger, apphttp.RouterDeps{
		Config:   cfg,
		Accounts: svc,
		Ping:     store.Ping,
		Prom:     prom,
		Gatherer: reg,
	})
}

func doRequest(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func TestAccountFlow_RegisterLoginMe(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/users",
		`{"name":"Sam Doe","email":"sam@example.com","password":"password123"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: got %d, body=%s", w.Code, w.Body.String())
	}

	var profile map[string]string
	mustReadJSON(t, w, &profile)
	if profile["id"] == "" || profile["email"] != "sam@example.com" || profile["name"] != "Sam Doe" {
		t.Fatalf("unexpected profile %v", profile)
	}
	if _, ok := profile["password"]; ok {
		t.Fatalf("profile must not carry credentials: %v", profile)
	}

	w = doRequest(router, http.MethodPost, "/api/users/login",
		`{"email":"sam@example.com","password":"password123"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d, body=%s", w.Code, w.Body.String())
	}

	var login loginResponse
	mustReadJSON(t, w, &login)
	if login.Token == "" || login.User.ID != profile["id"] {
		t.Fatalf("unexpected login response %+v", login)
	}

	w = doRequest(router, http.MethodGet, "/api/users/me", "", map[string]string{
		"Authorization": "Bearer " + login.Token,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("me: got %d, body=%s", w.Code, w.Body.String())
	}

	var me map[string]string
	mustReadJSON(t, w, &me)
	if me["id"] != profile["id"] || me["email"] != "sam@example.com" {
		t.Fatalf("unexpected identity %v", me)
	}
}

func TestAccountFlow_DuplicateEmail(t *testing.T) {
	router := setupRouter(t)

	body := `{"name":"Sam","email":"sam@example.com","password":"password123"}`
	if w := doRequest(router, http.MethodPost, "/api/users", body, nil); w.Code != http.StatusCreated {
		t.Fatalf("first register: got %d", w.Code)
	}

	for _, tc := range []struct{ path, body string }{
		{"/api/users", body},
		{"/api/users/google", `{"name":"Sam","email":"sam@example.com","googleId":"g-1"}`},
	} {
		w := doRequest(router, http.MethodPost, tc.path, tc.body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: got %d, want 400", tc.path, w.Code)
		}

		var resp errorResponse
		mustReadJSON(t, w, &resp)
		if resp.Error != "User already exists" {
			t.Fatalf("%s: unexpected error %+v", tc.path, resp)
		}
	}
}

func TestAccountFlow_GoogleAccountCannotPasswordLogin(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/users/google",
		`{"name":"Gia","email":"gia@example.com","googleId":"g-42"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("sso register: got %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodPost, "/api/users/login",
		`{"email":"gia@example.com","password":"g-42"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("login: got %d, want 400", w.Code)
	}

	var resp errorResponse
	mustReadJSON(t, w, &resp)
	if resp.Error != "Invalid credentials" {
		t.Fatalf("unexpected error %+v", resp)
	}
}

func TestAccountFlow_MeRejections(t *testing.T) {
	router := setupRouter(t)

	stale, err := auth.NewManager(testSecret).WithClock(func() time.Time {
		return time.Now().Add(-25 * time.Hour)
	}).Issue("u1", "u1@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{name: "missing", header: "", wantMsg: "No token provided"},
		{name: "garbage", header: "Bearer not-a-token", wantMsg: "Invalid token"},
		{name: "expired", header: "Bearer " + stale, wantMsg: "Token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}

			w := doRequest(router, http.MethodGet, "/api/users/me", "", headers)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("got %d, want 401", w.Code)
			}

			var resp errorResponse
			mustReadJSON(t, w, &resp)
			if resp.Error != tt.wantMsg {
				t.Fatalf("got %q, want %q", resp.Error, tt.wantMsg)
			}
		})
	}
}

func TestOperationalEndpoints(t *testing.T) {
	router := setupRouter(t)

	if w := doRequest(router, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("readyz: got %d", w.Code)
	}

	_ = doRequest(router, http.MethodPost, "/api/users/login", `{"email":"ghost@example.com","password":"x"}`, nil)

	w := doRequest(router, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `accounthub_auth_results_total{op="login",result="invalid_credentials"} 1`) {
		t.Fatalf("auth outcome not exported:\n%s", w.Body.String())
	}
}
