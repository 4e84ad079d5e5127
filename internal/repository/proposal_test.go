package repository

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"traderelay/internal/models"
	"traderelay/utils"
)

func setupTestRepo(t *testing.T) *Repository {
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

	return NewRepository(db, utils.InitLogger())
}

func createTestProposal(t *testing.T, repo *Repository, id string) *models.Proposal {
	proposal := &models.Proposal{
		ID:     id,
		UserID: 1,
		Symbol: "MNQ",
		Side:   "LONG",
		Status: models.StatusPending,
	}
	if err := repo.CreateProposal(context.Background(), proposal); err != nil {
		t.Fatalf("failed to create proposal: %v", err)
	}
	return proposal
}

func TestUpdateProposalStatusClaimsOnce(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	createTestProposal(t, repo, "p1")

	rows, err := repo.UpdateProposalStatus(ctx, "p1", models.StatusPending, models.StatusApproved)
	if err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected first update to claim the row, got %d rows", rows)
	}

	// The proposal is settled now; a repeated decision must not touch it.
	rows, err = repo.UpdateProposalStatus(ctx, "p1", models.StatusPending, models.StatusRejected)
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected second update to lose the race, got %d rows", rows)
	}

	proposal, err := repo.GetProposal(ctx, "p1")
	if err != nil {
		t.Fatalf("failed to reload proposal: %v", err)
	}
	if proposal.Status != models.StatusApproved {
		t.Errorf("expected status APPROVED, got %s", proposal.Status)
	}
}

func TestUpdateProposalStatusUnknownID(t *testing.T) {
	repo := setupTestRepo(t)

	rows, err := repo.UpdateProposalStatus(context.Background(), "missing", models.StatusPending, models.StatusApproved)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected 0 rows for unknown proposal, got %d", rows)
	}
}

func TestUpdateProposalStatusFromClaimedState(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	createTestProposal(t, repo, "p1")

	if _, err := repo.UpdateProposalStatus(ctx, "p1", models.StatusPending, models.StatusApproved); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	// The claim holder may downgrade its own APPROVED row after an
	// execution failure.
	rows, err := repo.UpdateProposalStatus(ctx, "p1", models.StatusApproved, models.StatusBlocked)
	if err != nil {
		t.Fatalf("downgrade failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected downgrade to apply, got %d rows", rows)
	}

	proposal, _ := repo.GetProposal(ctx, "p1")
	if proposal.Status != models.StatusBlocked {
		t.Errorf("expected status BLOCKED, got %s", proposal.Status)
	}
}

func TestGetProposalForUserScopesOwner(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	createTestProposal(t, repo, "p1")

	proposal, err := repo.GetProposalForUser(ctx, "p1", 1)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if proposal == nil {
		t.Fatal("expected owner to see the proposal")
	}

	proposal, err = repo.GetProposalForUser(ctx, "p1", 2)
	if err != nil {
		t.Fatalf("cross-user lookup failed: %v", err)
	}
	if proposal != nil {
		t.Error("expected cross-user lookup to come back empty")
	}
}
