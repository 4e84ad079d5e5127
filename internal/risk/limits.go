package risk

import (
	"fmt"
	"strings"
	"time"

	"traderelay/internal/models"
)

// Limits is a data-driven gate: thresholds live in the struct, not in code,
// so rule changes never touch the lifecycle controller.
type Limits struct {
	// AllowedSymbols restricts tradable instruments when non-empty.
	AllowedSymbols []string

	// TradingStartUTC/TradingEndUTC bound the approval window as minutes
	// since midnight UTC. Both zero disables the window check.
	TradingStartUTC int
	TradingEndUTC   int

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (l Limits) Evaluate(_ *models.User, proposal *models.Proposal) (bool, string) {
	if len(l.AllowedSymbols) > 0 {
		ok := false
		for _, s := range l.AllowedSymbols {
			if strings.EqualFold(s, proposal.Symbol) {
				ok = true
				break
			}
		}
		if !ok {
			return false, fmt.Sprintf("symbol %s not allowed", proposal.Symbol)
		}
	}

	if l.TradingStartUTC != 0 || l.TradingEndUTC != 0 {
		now := time.Now
		if l.Now != nil {
			now = l.Now
		}
		t := now().UTC()
		minutes := t.Hour()*60 + t.Minute()
		if minutes < l.TradingStartUTC || minutes > l.TradingEndUTC {
			return false, "outside trading window"
		}
	}

	return true, "OK"
}
