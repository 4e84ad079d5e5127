package service

import (
	"context"
	"errors"
	"time"

	"traderelay/internal/broker"
	"traderelay/internal/models"
	"traderelay/internal/risk"
	"traderelay/utils"
)

// Outcomes the transports branch on.
var (
	ErrUnauthenticated    = errors.New("unknown api key")
	ErrMembershipInactive = errors.New("membership inactive")
	ErrValidation         = errors.New("missing required fields")
	ErrNotFound           = errors.New("not found")
)

type Repository interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	GetUserByChatID(ctx context.Context, chatID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	CountUsers(ctx context.Context) (int64, error)

	CreateProposal(ctx context.Context, proposal *models.Proposal) error
	GetProposal(ctx context.Context, id string) (*models.Proposal, error)
	GetProposalForUser(ctx context.Context, id string, userID uint) (*models.Proposal, error)
	UpdateProposalStatus(ctx context.Context, id, from, to string) (int64, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Proposal, error)
	CountProposals(ctx context.Context) (int64, error)
}

// Action is one approve/reject affordance attached to a notification.
type Action struct {
	Label string
	Token string
}

// Notifier delivers a message to a chat recipient. Delivery failures are
// non-fatal to proposal state; callers log and move on.
type Notifier interface {
	Notify(chatID string, text string, actions []Action) error
}

type Service struct {
	repo     Repository
	notifier Notifier
	gate     risk.Gate
	adapter  broker.Adapter
	logger   *utils.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	notifier Notifier,
	gate risk.Gate,
	adapter broker.Adapter,
	logger *utils.Logger,
) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		gate:     gate,
		adapter:  adapter,
		logger:   logger,
		now:      time.Now,
	}
}

type Stats struct {
	Users     int64 `json:"users"`
	Proposals int64 `json:"proposals"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	proposals, err := s.repo.CountProposals(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Users: users, Proposals: proposals}, nil
}
