// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"talents/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository supplies the role and subscription facts the authorization
// layer reads. Subscription rows are written by the billing integration.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetRole(ctx context.Context, id uint) (models.Role, error)
	GetSubscriptionStatus(ctx context.Context, userID uint) (models.SubscriptionStatus, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uint, role models.Role) error
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetRole returns the stored role, normalized so unknown values read as visitor.
func (r *userRepository) GetRole(ctx context.Context, id uint) (models.Role, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("role", &roles).Error
	if err != nil {
		return models.RoleVisitor, models.NewInternalError(err)
	}
	if len(roles) == 0 {
		return models.RoleVisitor, models.NewNotFoundError("User", id)
	}
	return models.ParseRole(roles[0]), nil
}

// GetSubscriptionStatus returns none when billing never wrote a row.
func (r *userRepository) GetSubscriptionStatus(ctx context.Context, userID uint) (models.SubscriptionStatus, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SubscriptionNone, nil
		}
		return models.SubscriptionNone, models.NewInternalError(err)
	}
	return models.ParseSubscriptionStatus(string(sub.Status)), nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "plan", "current_period_end", "updated_at"}),
		}).
		Create(sub).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
