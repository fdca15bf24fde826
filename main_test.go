package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnTengye/contractreview/backend/config"
	"github.com/AnTengye/contractreview/backend/service"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{MaxSizeMB: 10},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", TokenExpireHours: 1},
		Users: []config.User{
			{Username: "alice", Password: "secret", Tenant: "acme"},
		},
	}
}

func login(t *testing.T, router http.Handler) string {
	t.Helper()
	body := bytes.NewBufferString(`{"username":"alice","password":"secret"}`)
	req := httptest.NewRequest("POST", "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed with %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp["token"]
}

func TestRouterHealth(t *testing.T) {
	router := newRouter(testConfig(), service.NewWorkspaceRegistry(service.WorkspaceOptions{}))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}
}

func TestRouterRequiresAuth(t *testing.T) {
	router := newRouter(testConfig(), service.NewWorkspaceRegistry(service.WorkspaceOptions{}))

	req := httptest.NewRequest("GET", "/api/selection", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestRouterTenantWorkspace(t *testing.T) {
	registry := service.NewWorkspaceRegistry(service.WorkspaceOptions{})
	router := newRouter(testConfig(), registry)
	token := login(t, router)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := registry.Get("acme").LoadFixture(ctx); err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/selection", strings.NewReader(`{"clause_id":"c4"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if clause, ok := registry.Get("acme").Selection.CurrentClause(); !ok || clause.ID != "c4" {
		t.Errorf("Expected acme to have c4 selected, got %+v", clause)
	}
	if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Expected API response to be uncacheable, got %q", got)
	}

	req = httptest.NewRequest("DELETE", "/api/workspace", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, ok := registry.Lookup("acme"); ok {
		t.Error("Expected acme workspace to be closed")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newRouter(testConfig(), service.NewWorkspaceRegistry(service.WorkspaceOptions{}))

	req := httptest.NewRequest("OPTIONS", "/api/selection", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
}

func TestReportCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"report", "--output", out, "--high-risk"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.Contains(stdout.String(), out) {
		t.Errorf("Expected confirmation mentioning %s, got %q", out, stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	var report service.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}
	if len(report.Analysis) != 2 {
		t.Errorf("Expected 2 high risk clauses, got %d", len(report.Analysis))
	}
}
