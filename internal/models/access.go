package models

import "time"

// AccessLevel is the breadth of profile fields a caller may see.
type AccessLevel string

const (
	// AccessPublic is the default field set.
	AccessPublic AccessLevel = "public"
	// AccessPremium adds contact and rate fields for subscribed callers.
	AccessPremium AccessLevel = "premium"
	// AccessFull is reserved for the resource owner and administrators.
	AccessFull AccessLevel = "full"
)

// Includes reports whether l grants at least the fields of other.
func (l AccessLevel) Includes(other AccessLevel) bool {
	return l.rank() >= other.rank()
}

func (l AccessLevel) rank() int {
	switch l {
	case AccessFull:
		return 2
	case AccessPremium:
		return 1
	default:
		return 0
	}
}

// Resource types recorded in access decisions.
const (
	ResourceProfile        = "profile"
	ResourcePremium        = "premium"
	ResourceContactRequest = "contact_request"
	ResourceConversation   = "conversation"
	ResourceUser           = "user"
)

// Actions recorded in access decisions.
const (
	ActionView     = "view"
	ActionInitiate = "initiate"
	ActionReply    = "reply"
	ActionRespond  = "respond"
	ActionCancel   = "cancel"
	ActionModerate = "moderate"
)

// AccessDecision is an append-only audit record of a granted or denied check.
type AccessDecision struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActorID      uint      `gorm:"not null;index" json:"actor_id"`
	ResourceType string    `gorm:"size:32;not null;index:idx_access_decisions_resource" json:"resource_type"`
	ResourceID   uint      `gorm:"not null;index:idx_access_decisions_resource" json:"resource_id"`
	Action       string    `gorm:"size:32;not null" json:"action"`
	Granted      bool      `gorm:"not null" json:"granted"`
	Reason       string    `gorm:"type:text" json:"reason"`
	Timestamp    time.Time `gorm:"column:decided_at;not null;index" json:"timestamp"`
}

// TableName specifies the table name for GORM
func (AccessDecision) TableName() string {
	return "access_decisions"
}
