package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"traderelay/internal/models"
)

func (r *Repository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *Repository) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).First(&proposal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal %s: %w", id, err)
	}
	return &proposal, nil
}

// GetProposalForUser looks up a proposal scoped to its owner. A proposal
// owned by someone else is indistinguishable from a missing one.
func (r *Repository) GetProposalForUser(ctx context.Context, id string, userID uint) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).First(&proposal, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal %s for user %d: %w", id, userID, err)
	}
	return &proposal, nil
}

// UpdateProposalStatus transitions a proposal from one status to another as a
// single conditional UPDATE. The returned count is 0 when the proposal is
// missing or no longer in the expected status, so two racing decisions can
// never both claim the same proposal.
func (r *Repository) UpdateProposalStatus(ctx context.Context, id, from, to string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update proposal %s status: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Repository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff).
		Order("created_at ASC").
		Find(&proposals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending proposals: %w", err)
	}
	return proposals, nil
}

func (r *Repository) CountProposals(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Proposal{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
