package service

import (
	"context"
	"time"

	"traderelay/internal/models"
	"traderelay/utils"
)

// ResolveByAPIKey maps an alert credential to a user. Nil means unknown
// credential, which callers must treat differently from "not entitled".
func (s *Service) ResolveByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	if apiKey == "" {
		return nil, nil
	}
	return s.repo.GetUserByAPIKey(ctx, apiKey)
}

// ResolveByChatID maps a chat identity to a user. Nil means the chat is not
// linked to anyone.
func (s *Service) ResolveByChatID(ctx context.Context, chatID string) (*models.User, error) {
	if chatID == "" {
		return nil, nil
	}
	return s.repo.GetUserByChatID(ctx, chatID)
}

// IsEntitled reports whether the membership is currently active. The expiry
// boundary is inclusive: an alert arriving at the exact PaidUntil instant is
// still entitled.
func (s *Service) IsEntitled(user *models.User) bool {
	if user == nil || !user.IsActive {
		return false
	}
	if user.PaidUntil == nil {
		return false
	}
	return !user.PaidUntil.Before(s.now().UTC())
}

// ProvisionUser creates a user with a fresh credential, or returns the
// existing record when the email is already registered. Membership starts
// unpaid; ExtendMembership activates it.
func (s *Service) ProvisionUser(ctx context.Context, email, plan string, tgChatID *string) (*models.User, bool, error) {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	apiKey, err := utils.NewAPIKey()
	if err != nil {
		return nil, false, err
	}

	if plan == "" {
		plan = "basic"
	}

	user := &models.User{
		Email:    email,
		APIKey:   apiKey,
		IsActive: true,
		Plan:     plan,
		TgChatID: tgChatID,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}

	s.logger.Infof("Provisioned user %s (id=%d)", email, user.ID)
	return user, true, nil
}

// ExtendMembership pushes PaidUntil to now+days and reactivates the account.
func (s *Service) ExtendMembership(ctx context.Context, email string, days int) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	paidUntil := s.now().UTC().Add(time.Duration(days) * 24 * time.Hour)
	user.PaidUntil = &paidUntil
	user.IsActive = true
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infof("Extended membership for %s until %s", email, paidUntil.Format(time.RFC3339))
	return user, nil
}

// DisableUser is the hard kill switch. Users are never deleted.
func (s *Service) DisableUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	user.IsActive = false
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Warnf("Disabled user %s", email)
	return user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
