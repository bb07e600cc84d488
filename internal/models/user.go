package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the account record the authorization layer reads roles from.
// Registration and credentials live outside this service.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'visitor';index" json:"role"`
	Subscription *Subscription  `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
