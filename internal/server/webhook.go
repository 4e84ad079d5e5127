package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"traderelay/internal/service"
	"traderelay/utils"
)

type alertRequest struct {
	APIKey string `json:"api_key"`
	Secret string `json:"secret"`

	Symbol    string              `json:"symbol"`
	Side      string              `json:"side"`
	Timeframe string              `json:"timeframe"`
	Reason    string              `json:"reason"`
	Entry     decimal.NullDecimal `json:"entry"`
	Stop      decimal.NullDecimal `json:"stop"`
	Target    decimal.NullDecimal `json:"target"`
}

// HandleAlert ingests one TradingView alert. The membership check is a soft
// 200-level rejection so the alert sender does not retry; credential
// problems stay hard 401s.
func (s *Server) HandleAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if s.config.WebhookSecret != "" && !utils.SafeEqual(req.Secret, s.config.WebhookSecret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	// Header wins, body field is the fallback.
	apiKey := c.GetHeader("X-Api-Key")
	if apiKey == "" {
		apiKey = req.APIKey
	}
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing api key"})
		return
	}

	proposal, err := s.service.IngestAlert(c.Request.Context(), apiKey, service.AlertInput{
		Symbol:    req.Symbol,
		Side:      req.Side,
		Timeframe: req.Timeframe,
		Reason:    req.Reason,
		Entry:     req.Entry,
		Stop:      req.Stop,
		Target:    req.Target,
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "proposal_id": proposal.ID})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
	case errors.Is(err, service.ErrMembershipInactive):
		c.JSON(http.StatusOK, gin.H{"ok": false, "blocked": "membership_inactive"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and side required"})
	default:
		s.logger.Errorf("Alert ingestion failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
