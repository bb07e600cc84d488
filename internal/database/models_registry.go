package database

import "talents/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Subscription{},
		&models.ContactRequest{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.Profile{},
		&models.AccessDecision{},
	}
}
