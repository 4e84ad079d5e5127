package risk

import (
	"traderelay/internal/models"
)

// Gate is consulted before an approval is executed. Implementations must be
// side-effect free; they run synchronously in the callback path.
type Gate interface {
	Evaluate(user *models.User, proposal *models.Proposal) (allowed bool, reason string)
}

// AllowAll approves everything. Real prop-firm rules (daily loss caps,
// trailing drawdown, position size, cooldowns) plug in behind Gate later.
type AllowAll struct{}

func (AllowAll) Evaluate(_ *models.User, _ *models.Proposal) (bool, string) {
	return true, "OK"
}
