package broker

import (
	"traderelay/internal/models"
)

// Manual is the default backend: the operator executes the trade themselves
// in their broker terminal, so placement always "succeeds".
type Manual struct{}

func (Manual) PlaceTrade(_ *models.User, _ *models.Proposal) (bool, string) {
	return true, "Manual mode: execute this trade in your broker terminal now."
}

// ForBackend selects an adapter by its configured name. Unknown names fall
// back to manual execution.
func ForBackend(name string) Adapter {
	switch name {
	case "manual", "":
		return Manual{}
	default:
		return Manual{}
	}
}
