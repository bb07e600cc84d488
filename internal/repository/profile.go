package repository

import (
	"context"
	"errors"
	"time"

	"talents/internal/models"

	"gorm.io/gorm"
)

// ModerationUpdate describes a compare-and-set moderation write.
type ModerationUpdate struct {
	From        []models.ProfileStatus
	To          models.ProfileStatus
	Note        *string
	ModeratorID uint
	At          time.Time
}

// ProfileRepository defines persistence operations for marketplace profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	// UpdateStatus moves a profile to update.To only while its status is one of
	// update.From. A profile in any other state yields a conflict.
	UpdateStatus(ctx context.Context, id uint, update ModerationUpdate) (*models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already has a profile")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile for user", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) UpdateStatus(ctx context.Context, id uint, update ModerationUpdate) (*models.Profile, error) {
	if len(update.From) == 0 {
		return nil, models.NewValidationError("Unknown moderation action")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ? AND status IN ?", id, update.From).
		Updates(map[string]interface{}{
			"status":          update.To,
			"moderation_note": update.Note,
			"moderated_by":    update.ModeratorID,
			"moderated_at":    update.At,
			"updated_at":      update.At,
		})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, models.NewConflictError("Profile cannot move from " + string(current.Status) + " to " + string(update.To))
	}
	return current, nil
}
