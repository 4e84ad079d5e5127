package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"traderelay/internal/models"
	"traderelay/internal/repository"
	"traderelay/utils"
)

type sentMessage struct {
	chatID  string
	text    string
	actions []Action
}

type fakeNotifier struct {
	mu       sync.Mutex
	fail     bool
	messages []sentMessage
}

func (f *fakeNotifier) Notify(chatID string, text string, actions []Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errDelivery
	}
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, actions: actions})
	return nil
}

func (f *fakeNotifier) sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.messages))
	copy(out, f.messages)
	return out
}

var errDelivery = errors.New("chat unreachable")

type fakeGate struct {
	allowed bool
	reason  string
}

func (f *fakeGate) Evaluate(_ *models.User, _ *models.Proposal) (bool, string) {
	return f.allowed, f.reason
}

type fakeAdapter struct {
	mu      sync.Mutex
	calls   int
	ok      bool
	message string
}

func (f *fakeAdapter) PlaceTrade(_ *models.User, _ *models.Proposal) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ok, f.message
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	svc      *Service
	repo     *repository.Repository
	notifier *fakeNotifier
	gate     *fakeGate
	adapter  *fakeAdapter
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// One connection keeps concurrent writers serialized instead of
	// tripping over sqlite's lock.
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
	notifier := &fakeNotifier{}
	gate := &fakeGate{allowed: true, reason: "OK"}
	adapter := &fakeAdapter{ok: true, message: "placed"}

	svc := NewService(repo, notifier, gate, adapter, log)
	return &testEnv{svc: svc, repo: repo, notifier: notifier, gate: gate, adapter: adapter}
}

func (e *testEnv) createUser(t *testing.T, email, apiKey string, chatID *string, paidUntil *time.Time, active bool) *models.User {
	user := &models.User{
		Email:     email,
		APIKey:    apiKey,
		IsActive:  active,
		PaidUntil: paidUntil,
		Plan:      "basic",
		TgChatID:  chatID,
	}
	if err := e.repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (e *testEnv) createEntitledUser(t *testing.T, email, apiKey, chatID string) *models.User {
	paidUntil := time.Now().UTC().Add(24 * time.Hour)
	return e.createUser(t, email, apiKey, &chatID, &paidUntil, true)
}
