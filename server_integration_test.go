package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"finreport/config"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body == nil {
		req.Body = http.NoBody
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func setupTestServer(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = "file:" + filepath.Join(t.TempDir(), "finreport.db") + "?_pragma=busy_timeout(5000)"
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "integration-secret"

	db, err := initDB(cfg)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return newRouter(cfg, db)
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Login as the seeded admin
	resp := performRequest(r, http.MethodPost, "/api/login", jsonBody(map[string]string{"username": "admin", "password": "admin123"}), "", "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["accessToken"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 2. Create a report and a data point linked to it
	resp = performRequest(r, http.MethodPost, "/api/Reports", jsonBody(map[string]any{"id": "r1", "title": "Q1"}), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create report failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/api/FinancialDataItems", jsonBody(map[string]any{"id": "f1", "reportId": "r1", "dataPoint": 42.5}), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create financial data failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 3. The report lists the data point
	resp = performRequest(r, http.MethodGet, "/api/Reports/r1/financialDataItems", nil, token, "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"f1"}, itemIDs(t, resp))

	// 4. Disconnect it and list again
	resp = performRequest(r, http.MethodDelete, "/api/Reports/r1/financialDataItems", jsonBody([]string{"f1"}), token, "application/json")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = performRequest(r, http.MethodGet, "/api/Reports/r1/financialDataItems", nil, token, "")
	assert.Equal(t, []string{}, itemIDs(t, resp))

	// 5. Count and delete
	resp = performRequest(r, http.MethodPost, "/api/Reports/meta", nil, token, "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, `{"count":1}`, resp.Body.String())
	resp = performRequest(r, http.MethodDelete, "/api/Reports/r1", nil, token, "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = performRequest(r, http.MethodGet, "/api/Reports/r1", nil, token, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// 6. Unauthorized access to a protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/api/Reports", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list reports got %d", unauth.Code)
	}
}

func itemIDs(t *testing.T, resp *httptest.ResponseRecorder) []string {
	t.Helper()
	var items []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode %s: %v", resp.Body.String(), err)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestMigrateCommand(t *testing.T) {
	cfg := config.Default()
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = "file:" + filepath.Join(t.TempDir(), "migrate.db")
	db, err := initDB(cfg)
	assert.Equal(t, nil, err)
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	var n int64
	assert.Equal(t, nil, db.Table("users").Where("username = ?", "admin").Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// seeding twice keeps one admin
	again, err := initDB(cfg)
	assert.Equal(t, nil, err)
	againDB, _ := again.DB()
	defer againDB.Close()
	assert.Equal(t, nil, again.Table("users").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
