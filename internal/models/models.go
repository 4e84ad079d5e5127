package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proposal statuses. PENDING is the only non-terminal state.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusBlocked  = "BLOCKED"
)

type User struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// Per-user secret for inbound alert webhooks.
	APIKey string `gorm:"uniqueIndex;not null" json:"api_key"`

	// Membership control: entitlement requires IsActive and an unexpired PaidUntil.
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	PaidUntil *time.Time `json:"paid_until"`
	Plan      string     `gorm:"default:basic" json:"plan"`

	// Telegram chat the user approves proposals from. Nil until linked.
	TgChatID *string `gorm:"uniqueIndex" json:"tg_chat_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Proposals []Proposal `gorm:"foreignKey:UserID" json:"proposals,omitempty"`
}

type Proposal struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`

	Symbol    string `gorm:"not null" json:"symbol"`
	Side      string `gorm:"not null" json:"side"`
	Timeframe string `json:"timeframe"`
	Reason    string `json:"reason"`

	// Optional price levels supplied by the alert.
	Entry  decimal.NullDecimal `gorm:"type:decimal(18,8)" json:"entry"`
	Stop   decimal.NullDecimal `gorm:"type:decimal(18,8)" json:"stop"`
	Target decimal.NullDecimal `gorm:"type:decimal(18,8)" json:"target"`

	Status    string    `gorm:"default:PENDING;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Settled reports whether the proposal has reached a terminal status.
func (p *Proposal) Settled() bool {
	return p.Status != StatusPending
}
