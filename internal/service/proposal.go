package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"traderelay/internal/models"
)

// AlertInput is the payload of one inbound trade alert.
type AlertInput struct {
	Symbol    string
	Side      string
	Timeframe string
	Reason    string
	Entry     decimal.NullDecimal
	Stop      decimal.NullDecimal
	Target    decimal.NullDecimal
}

// IngestAlert authenticates the alert, records a PENDING proposal and pushes
// the approve/reject prompt to the owner's chat. A failed delivery never
// rolls the proposal back; it already exists and can still be decided later.
func (s *Service) IngestAlert(ctx context.Context, apiKey string, alert AlertInput) (*models.Proposal, error) {
	user, err := s.ResolveByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if !s.IsEntitled(user) {
		return nil, ErrMembershipInactive
	}

	if alert.Symbol == "" || alert.Side == "" {
		return nil, ErrValidation
	}

	proposal := &models.Proposal{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Symbol:    alert.Symbol,
		Side:      strings.ToUpper(alert.Side),
		Timeframe: alert.Timeframe,
		Reason:    alert.Reason,
		Entry:     alert.Entry,
		Stop:      alert.Stop,
		Target:    alert.Target,
		Status:    models.StatusPending,
	}
	if err := s.repo.CreateProposal(ctx, proposal); err != nil {
		return nil, err
	}

	s.logger.Infof("Created proposal %s for user %d: %s %s", proposal.ID, user.ID, proposal.Symbol, proposal.Side)

	if user.TgChatID != nil {
		s.notifyProposal(*user.TgChatID, proposal)
	}

	return proposal, nil
}

func (s *Service) notifyProposal(chatID string, proposal *models.Proposal) {
	var sb strings.Builder
	sb.WriteString("📌 <b>Trade Proposal</b>\n")
	sb.WriteString(fmt.Sprintf("<b>%s</b> — <b>%s</b>\n", proposal.Symbol, proposal.Side))
	if proposal.Timeframe != "" {
		sb.WriteString(fmt.Sprintf("TF: %s\n", proposal.Timeframe))
	}
	if proposal.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason: %s\n", proposal.Reason))
	}
	if proposal.Entry.Valid {
		sb.WriteString(fmt.Sprintf("Entry: %s", proposal.Entry.Decimal))
		if proposal.Stop.Valid {
			sb.WriteString(fmt.Sprintf(" | Stop: %s", proposal.Stop.Decimal))
		}
		if proposal.Target.Valid {
			sb.WriteString(fmt.Sprintf(" | Target: %s", proposal.Target.Decimal))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\nProposal ID: <code>%s</code>", proposal.ID))

	actions := []Action{
		{Label: "✅ Approve", Token: "approve:" + proposal.ID},
		{Label: "❌ Reject", Token: "reject:" + proposal.ID},
	}
	if err := s.notifier.Notify(chatID, sb.String(), actions); err != nil {
		s.logger.Warnf("Failed to deliver proposal %s to chat %s: %v", proposal.ID, chatID, err)
	}
}

// Decide applies one approve/reject callback. It returns the short text the
// transport should acknowledge with, plus whether the proposal is settled
// (so the transport can retire the buttons). All state changes go through
// the conditional status update, so a duplicate or racing callback settles
// the proposal exactly once.
func (s *Service) Decide(ctx context.Context, chatID, token string) (string, bool) {
	action, id, ok := strings.Cut(token, ":")
	if !ok || id == "" || (action != "approve" && action != "reject") {
		return "Unhandled action.", false
	}

	user, err := s.ResolveByChatID(ctx, chatID)
	if err != nil {
		s.logger.Errorf("Failed to resolve chat %s: %v", chatID, err)
		return "Something went wrong. Try again.", false
	}
	if user == nil {
		return "User not linked.", false
	}

	if !s.IsEntitled(user) {
		return "Membership inactive — renew to resume.", false
	}

	proposal, err := s.repo.GetProposalForUser(ctx, id, user.ID)
	if err != nil {
		s.logger.Errorf("Failed to load proposal %s: %v", id, err)
		return "Something went wrong. Try again.", false
	}
	if proposal == nil {
		return "Proposal not found.", false
	}
	if proposal.Settled() {
		return "Already decided.", true
	}

	if action == "reject" {
		return s.reject(ctx, user, proposal)
	}
	return s.approve(ctx, user, proposal)
}

func (s *Service) reject(ctx context.Context, user *models.User, proposal *models.Proposal) (string, bool) {
	rows, err := s.repo.UpdateProposalStatus(ctx, proposal.ID, models.StatusPending, models.StatusRejected)
	if err != nil {
		s.logger.Errorf("Failed to reject proposal %s: %v", proposal.ID, err)
		return "Something went wrong. Try again.", false
	}
	if rows == 0 {
		return "Already decided.", true
	}

	s.logger.Infof("Proposal %s rejected by user %d", proposal.ID, user.ID)
	s.send(user, fmt.Sprintf("❌ Rejected: <code>%s</code>", proposal.ID))
	return "Rejected ❌", true
}

func (s *Service) approve(ctx context.Context, user *models.User, proposal *models.Proposal) (string, bool) {
	allowed, reason := s.gate.Evaluate(user, proposal)
	if !allowed {
		rows, err := s.repo.UpdateProposalStatus(ctx, proposal.ID, models.StatusPending, models.StatusBlocked)
		if err != nil {
			s.logger.Errorf("Failed to block proposal %s: %v", proposal.ID, err)
			return "Something went wrong. Try again.", false
		}
		if rows == 0 {
			return "Already decided.", true
		}

		s.logger.Infof("Proposal %s blocked by risk gate: %s", proposal.ID, reason)
		s.send(user, fmt.Sprintf("⛔ Blocked: <code>%s</code>\nReason: %s", proposal.ID, reason))
		return fmt.Sprintf("Blocked ❌ (%s)", reason), true
	}

	// Claim the proposal before touching the broker. The losing side of a
	// double-tap stops here and the adapter runs at most once.
	rows, err := s.repo.UpdateProposalStatus(ctx, proposal.ID, models.StatusPending, models.StatusApproved)
	if err != nil {
		s.logger.Errorf("Failed to approve proposal %s: %v", proposal.ID, err)
		return "Something went wrong. Try again.", false
	}
	if rows == 0 {
		return "Already decided.", true
	}

	ok, message := s.adapter.PlaceTrade(user, proposal)
	if !ok {
		if _, err := s.repo.UpdateProposalStatus(ctx, proposal.ID, models.StatusApproved, models.StatusBlocked); err != nil {
			s.logger.Errorf("Failed to mark proposal %s blocked after execution failure: %v", proposal.ID, err)
		}

		s.logger.Warnf("Execution failed for proposal %s: %s", proposal.ID, message)
		s.send(user, fmt.Sprintf("⛔ Blocked: <code>%s</code>\n%s", proposal.ID, message))
		return "Blocked ❌ (execution failed)", true
	}

	s.logger.Infof("Proposal %s approved by user %d", proposal.ID, user.ID)
	s.send(user, fmt.Sprintf("✅ Approved: <code>%s</code>\n%s", proposal.ID, message))
	return "Approved ✅", true
}

func (s *Service) send(user *models.User, text string) {
	if user.TgChatID == nil {
		return
	}
	if err := s.notifier.Notify(*user.TgChatID, text, nil); err != nil {
		s.logger.Warnf("Failed to notify chat %s: %v", *user.TgChatID, err)
	}
}

// RemindStalePending nudges owners about proposals that have sat undecided
// for longer than the given age. Statuses are left untouched; proposals
// never expire on their own.
func (s *Service) RemindStalePending(ctx context.Context, olderThan time.Duration) error {
	cutoff := s.now().UTC().Add(-olderThan)
	proposals, err := s.repo.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, proposal := range proposals {
		user, err := s.repo.GetUserByID(ctx, proposal.UserID)
		if err != nil {
			return err
		}
		if user == nil || user.TgChatID == nil {
			continue
		}

		age := s.now().UTC().Sub(proposal.CreatedAt).Round(time.Minute)
		text := fmt.Sprintf(
			"⏳ Still pending: <b>%s</b> — <b>%s</b>\nWaiting %s for a decision.\nProposal ID: <code>%s</code>",
			proposal.Symbol, proposal.Side, age, proposal.ID,
		)
		actions := []Action{
			{Label: "✅ Approve", Token: "approve:" + proposal.ID},
			{Label: "❌ Reject", Token: "reject:" + proposal.ID},
		}
		if err := s.notifier.Notify(*user.TgChatID, text, actions); err != nil {
			s.logger.Warnf("Failed to remind chat %s about proposal %s: %v", *user.TgChatID, proposal.ID, err)
		}
	}
	return nil
}
