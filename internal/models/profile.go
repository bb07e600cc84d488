package models

import (
	"strings"
	"time"
)

// ProfileKind discriminates the three public profile flavours.
type ProfileKind string

const (
	ProfileTalent       ProfileKind = "talent"
	ProfileProfessional ProfileKind = "professional"
	ProfileCompany      ProfileKind = "company"
)

// Valid reports whether k is a known kind.
func (k ProfileKind) Valid() bool {
	return k == ProfileTalent || k == ProfileProfessional || k == ProfileCompany
}

// OwnerRole is the account role expected to own a profile of this kind.
func (k ProfileKind) OwnerRole() Role {
	switch k {
	case ProfileTalent:
		return RoleTalent
	case ProfileProfessional:
		return RoleProfessional
	case ProfileCompany:
		return RoleCompany
	}
	return RoleVisitor
}

// ProfileStatus is the moderation state of a profile.
type ProfileStatus string

const (
	ProfilePending   ProfileStatus = "pending"
	ProfileApproved  ProfileStatus = "approved"
	ProfileRejected  ProfileStatus = "rejected"
	ProfileSuspended ProfileStatus = "suspended"
)

// ModerationAction is an administrator decision applied to any profile kind.
type ModerationAction string

const (
	ModerationApprove ModerationAction = "approve"
	ModerationReject  ModerationAction = "reject"
	ModerationSuspend ModerationAction = "suspend"
)

// ParseModerationAction folds case and whitespace; unknown values return false.
func ParseModerationAction(raw string) (ModerationAction, bool) {
	a := ModerationAction(strings.ToLower(strings.TrimSpace(raw)))
	switch a {
	case ModerationApprove, ModerationReject, ModerationSuspend:
		return a, true
	}
	return "", false
}

// Transition returns the statuses the action may start from and the status it
// leads to.
func (a ModerationAction) Transition() (from []ProfileStatus, to ProfileStatus) {
	switch a {
	case ModerationApprove:
		return []ProfileStatus{ProfilePending, ProfileRejected, ProfileSuspended}, ProfileApproved
	case ModerationReject:
		return []ProfileStatus{ProfilePending}, ProfileRejected
	case ModerationSuspend:
		return []ProfileStatus{ProfileApproved}, ProfileSuspended
	}
	return nil, ""
}

// Profile is the marketplace listing of a talent, professional or company.
type Profile struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;uniqueIndex" json:"user_id"`
	Kind           ProfileKind   `gorm:"type:varchar(20);not null;index" json:"kind"`
	DisplayName    string        `gorm:"size:120;not null" json:"display_name"`
	Headline       string        `gorm:"size:255" json:"headline"`
	Location       string        `gorm:"size:120" json:"location"`
	ContactEmail   string        `gorm:"size:255" json:"contact_email"`
	Phone          string        `gorm:"size:40" json:"phone"`
	DayRate        *int          `json:"day_rate,omitempty"`
	Measurements   string        `gorm:"type:text" json:"measurements"`
	Status         ProfileStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ModerationNote *string       `gorm:"type:text" json:"moderation_note,omitempty"`
	ModeratedBy    *uint         `json:"moderated_by,omitempty"`
	ModeratedAt    *time.Time    `json:"moderated_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// ProfileView is the field set returned to a caller. Fields above the caller's
// access level are left empty and omitted from JSON.
type ProfileView struct {
	ID          uint        `json:"id"`
	UserID      uint        `json:"user_id"`
	Kind        ProfileKind `json:"kind"`
	DisplayName string      `json:"display_name"`
	Headline    string      `json:"headline"`
	Location    string      `json:"location"`
	AccessLevel AccessLevel `json:"access_level"`

	ContactEmail string `json:"contact_email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	DayRate      *int   `json:"day_rate,omitempty"`
	Measurements string `json:"measurements,omitempty"`

	Status         ProfileStatus `json:"status,omitempty"`
	ModerationNote *string       `json:"moderation_note,omitempty"`
}

// ViewAt projects p to the fields allowed at level.
func (p *Profile) ViewAt(level AccessLevel) ProfileView {
	v := ProfileView{
		ID:          p.ID,
		UserID:      p.UserID,
		Kind:        p.Kind,
		DisplayName: p.DisplayName,
		Headline:    p.Headline,
		Location:    p.Location,
		AccessLevel: level,
	}
	if level.Includes(AccessPremium) {
		v.ContactEmail = p.ContactEmail
		v.Phone = p.Phone
		v.DayRate = p.DayRate
		v.Measurements = p.Measurements
	}
	if level.Includes(AccessFull) {
		v.Status = p.Status
		v.ModerationNote = p.ModerationNote
	}
	return v
}
