package broker

import (
	"traderelay/internal/models"
)

// Adapter executes an approved proposal against a broker backend. The
// lifecycle controller guarantees at most one call per approval.
type Adapter interface {
	PlaceTrade(user *models.User, proposal *models.Proposal) (success bool, message string)
}
