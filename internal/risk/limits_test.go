package risk

import (
	"testing"
	"time"

	"traderelay/internal/models"
)

func TestAllowAll(t *testing.T) {
	allowed, reason := AllowAll{}.Evaluate(nil, &models.Proposal{Symbol: "MNQ"})
	if !allowed || reason != "OK" {
		t.Errorf("AllowAll returned (%v, %q)", allowed, reason)
	}
}

func TestLimitsSymbolAllowlist(t *testing.T) {
	gate := Limits{AllowedSymbols: []string{"MNQ", "MES"}}

	allowed, _ := gate.Evaluate(nil, &models.Proposal{Symbol: "mnq"})
	if !allowed {
		t.Error("allowlist match must be case-insensitive")
	}

	allowed, reason := gate.Evaluate(nil, &models.Proposal{Symbol: "BTCUSD"})
	if allowed {
		t.Error("expected veto for off-list symbol")
	}
	if reason == "" {
		t.Error("veto must carry a reason")
	}
}

func TestLimitsTradingWindow(t *testing.T) {
	at := func(hour, minute int) func() time.Time {
		return func() time.Time {
			return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
		}
	}

	// 13:30-20:00 UTC, roughly a US cash session.
	gate := Limits{TradingStartUTC: 13*60 + 30, TradingEndUTC: 20 * 60}

	gate.Now = at(14, 0)
	if allowed, _ := gate.Evaluate(nil, &models.Proposal{Symbol: "MNQ"}); !allowed {
		t.Error("expected approval inside the window")
	}

	gate.Now = at(21, 0)
	allowed, reason := gate.Evaluate(nil, &models.Proposal{Symbol: "MNQ"})
	if allowed {
		t.Error("expected veto outside the window")
	}
	if reason != "outside trading window" {
		t.Errorf("unexpected reason %q", reason)
	}
}
