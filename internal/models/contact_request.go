package models

import "time"

// ContactRequestStatus defines lifecycle states for contact requests.
type ContactRequestStatus string

const (
	// ContactRequestPending is awaiting the talent's answer.
	ContactRequestPending ContactRequestStatus = "pending"
	// ContactRequestApproved means the talent accepted contact.
	ContactRequestApproved ContactRequestStatus = "approved"
	// ContactRequestDeclined means the talent refused contact.
	ContactRequestDeclined ContactRequestStatus = "declined"
	// ContactRequestCancelled means the requester withdrew the request.
	ContactRequestCancelled ContactRequestStatus = "cancelled"
	// ContactRequestExpired means nobody answered within the retention window.
	ContactRequestExpired ContactRequestStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s ContactRequestStatus) IsTerminal() bool {
	return s != ContactRequestPending
}

// Valid reports whether s is a known status.
func (s ContactRequestStatus) Valid() bool {
	switch s {
	case ContactRequestPending, ContactRequestApproved, ContactRequestDeclined,
		ContactRequestCancelled, ContactRequestExpired:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal edge. Every edge starts
// at pending and every target is terminal.
func CanTransition(from, to ContactRequestStatus) bool {
	if from != ContactRequestPending {
		return false
	}
	switch to {
	case ContactRequestApproved, ContactRequestDeclined, ContactRequestCancelled, ContactRequestExpired:
		return true
	}
	return false
}

// ProjectType classifies the work a contact request is about.
type ProjectType string

const (
	ProjectFeatureFilm ProjectType = "feature_film"
	ProjectShortFilm   ProjectType = "short_film"
	ProjectSeries      ProjectType = "series"
	ProjectCommercial  ProjectType = "commercial"
	ProjectTheater     ProjectType = "theater"
	ProjectMusicVideo  ProjectType = "music_video"
	ProjectPhotoShoot  ProjectType = "photo_shoot"
	ProjectOther       ProjectType = "other"
)

// Valid reports whether p is a known project type.
func (p ProjectType) Valid() bool {
	switch p {
	case ProjectFeatureFilm, ProjectShortFilm, ProjectSeries, ProjectCommercial,
		ProjectTheater, ProjectMusicVideo, ProjectPhotoShoot, ProjectOther:
		return true
	}
	return false
}

// ContactRequest is a structured outreach from a requester to a talent.
// Rows are never deleted; status changes exactly once.
type ContactRequest struct {
	ID              uint                 `gorm:"primaryKey" json:"id"`
	RequesterUserID uint                 `gorm:"not null;index:idx_contact_requests_pair" json:"requester_user_id"`
	Requester       *User                `gorm:"foreignKey:RequesterUserID" json:"requester,omitempty"`
	TalentUserID    uint                 `gorm:"not null;index:idx_contact_requests_pair;index" json:"talent_user_id"`
	Talent          *User                `gorm:"foreignKey:TalentUserID" json:"talent,omitempty"`
	ProjectType     ProjectType          `gorm:"type:varchar(32);not null" json:"project_type"`
	Purpose         string               `gorm:"type:text;not null" json:"purpose"`
	Message         *string              `gorm:"type:text" json:"message,omitempty"`
	Status          ContactRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DeclineReason   *string              `gorm:"type:text" json:"decline_reason,omitempty"`
	CreatedAt       time.Time            `gorm:"index" json:"created_at"`
	RespondedAt     *time.Time           `json:"responded_at,omitempty"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ContactRequest) TableName() string {
	return "contact_requests"
}

// Involves reports whether userID is the requester or the talent.
func (r *ContactRequest) Involves(userID uint) bool {
	return r.RequesterUserID == userID || r.TalentUserID == userID
}
