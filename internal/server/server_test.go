package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"traderelay/config"
	"traderelay/internal/broker"
	"traderelay/internal/models"
	"traderelay/internal/repository"
	"traderelay/internal/risk"
	"traderelay/internal/service"
	"traderelay/utils"
)

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, []service.Action) error { return nil }

func newTestServer(t *testing.T, cfg config.Config) (*Server, *repository.Repository) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// A single connection keeps the in-memory database alive for the whole test.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Proposal{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	log := utils.InitLogger()
	repo := repository.NewRepository(db, log)
	svc := service.NewService(repo, noopNotifier{}, risk.AllowAll{}, broker.Manual{}, log)

	return NewServer(svc, &cfg, log), repo
}

func createEntitledUser(t *testing.T, repo *repository.Repository, email, apiKey string) *models.User {
	paidUntil := time.Now().UTC().Add(24 * time.Hour)
	user := &models.User{
		Email:     email,
		APIKey:    apiKey,
		IsActive:  true,
		PaidUntil: &paidUntil,
		Plan:      "basic",
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	s, repo := newTestServer(t, config.Config{})
	createEntitledUser(t, repo, "trader@example.com", "k1")

	rec, body := doJSON(t, s, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["ok"] != true {
		t.Error("expected ok: true")
	}
	if body["users"] != float64(1) {
		t.Errorf("expected 1 user, got %v", body["users"])
	}
}
