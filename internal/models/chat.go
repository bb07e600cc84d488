package models

import "time"

// Conversation is a persistent two-party thread. The ordered pair
// (UserLowID, UserHighID) is unique, so any two users share at most one.
type Conversation struct {
	ID           uint                      `gorm:"primaryKey" json:"id"`
	UserLowID    uint                      `gorm:"not null;uniqueIndex:idx_conversations_pair,priority:1" json:"-"`
	UserHighID   uint                      `gorm:"not null;uniqueIndex:idx_conversations_pair,priority:2" json:"-"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `gorm:"index" json:"updated_at"`
	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
	UnreadCount  int64                     `gorm:"-" json:"unread_count"`
}

// TableName specifies the table name for GORM
func (Conversation) TableName() string {
	return "conversations"
}

// ParticipantIDs returns the two user ids of the pair.
func (c *Conversation) ParticipantIDs() []uint {
	return []uint{c.UserLowID, c.UserHighID}
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID uint) bool {
	return userID != 0 && (c.UserLowID == userID || c.UserHighID == userID)
}

// OtherParticipant returns the counterpart of userID in the conversation.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// ConversationParticipant is the immutable join record of a user in a conversation.
type ConversationParticipant struct {
	ConversationID uint      `gorm:"primaryKey;autoIncrement:false" json:"conversation_id"`
	UserID         uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	JoinedAt       time.Time `gorm:"not null" json:"joined_at"`
}

// TableName specifies the table name for GORM
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

// Message is a single chat message. ReadAt moves from nil to a timestamp once
// and is never cleared.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;index:idx_messages_conversation_created,priority:1" json:"conversation_id"`
	SenderID       uint       `gorm:"not null;index" json:"sender_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time  `gorm:"index:idx_messages_conversation_created,priority:2" json:"created_at"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}

// TableName specifies the table name for GORM
func (Message) TableName() string {
	return "messages"
}

// OrderedPair returns a and b with the smaller id first.
func OrderedPair(a, b uint) (low, high uint) {
	if a <= b {
		return a, b
	}
	return b, a
}
