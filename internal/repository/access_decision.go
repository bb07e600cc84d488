package repository

import (
	"context"

	"talents/internal/models"

	"gorm.io/gorm"
)

// AccessDecisionRepository appends audit records. Rows are never updated.
type AccessDecisionRepository interface {
	Append(ctx context.Context, decision *models.AccessDecision) error
	ListForResource(ctx context.Context, resourceType string, resourceID uint, limit int) ([]models.AccessDecision, error)
}

type accessDecisionRepository struct {
	db *gorm.DB
}

// NewAccessDecisionRepository returns a new AccessDecisionRepository implementation.
func NewAccessDecisionRepository(db *gorm.DB) AccessDecisionRepository {
	return &accessDecisionRepository{db: db}
}

func (r *accessDecisionRepository) Append(ctx context.Context, decision *models.AccessDecision) error {
	if err := r.db.WithContext(ctx).Create(decision).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *accessDecisionRepository) ListForResource(ctx context.Context, resourceType string, resourceID uint, limit int) ([]models.AccessDecision, error) {
	var decisions []models.AccessDecision
	if err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("decided_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&decisions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return decisions, nil
}
