package models

import (
	"strings"
	"time"
)

// SubscriptionStatus is the billing state of a professional or company account.
type SubscriptionStatus string

const (
	// SubscriptionNone means the account never subscribed.
	SubscriptionNone SubscriptionStatus = "none"
	// SubscriptionTrial is a running free trial.
	SubscriptionTrial SubscriptionStatus = "trial"
	// SubscriptionActive is a paid, current subscription.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionPastDue means the last renewal payment failed.
	SubscriptionPastDue SubscriptionStatus = "past_due"
	// SubscriptionCancelled means the subscriber cancelled.
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	// SubscriptionExpired means the paid period ended without renewal.
	SubscriptionExpired SubscriptionStatus = "expired"
)

// ParseSubscriptionStatus normalizes a status coming from billing. Spelling
// variants are folded; anything else is kept verbatim so it still denies.
func ParseSubscriptionStatus(raw string) SubscriptionStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return SubscriptionNone
	case "trialing":
		return SubscriptionTrial
	case "canceled":
		return SubscriptionCancelled
	case "past-due", "pastdue":
		return SubscriptionPastDue
	}
	return SubscriptionStatus(s)
}

// GrantsPremium reports whether the status unlocks premium access. Only
// active and trial do; unknown values never grant.
func (s SubscriptionStatus) GrantsPremium() bool {
	return s == SubscriptionActive || s == SubscriptionTrial
}

// Known reports whether s is one of the recognised billing states.
func (s SubscriptionStatus) Known() bool {
	switch s {
	case SubscriptionNone, SubscriptionTrial, SubscriptionActive,
		SubscriptionPastDue, SubscriptionCancelled, SubscriptionExpired:
		return true
	}
	return false
}

// Subscription is the billing fact for one user, written by the billing
// integration and only read by the authorization layer.
type Subscription struct {
	UserID           uint               `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Status           SubscriptionStatus `gorm:"type:varchar(20);not null;default:'none'" json:"status"`
	Plan             string             `gorm:"size:64" json:"plan"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
