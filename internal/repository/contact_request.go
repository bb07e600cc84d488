package repository

import (
	"context"
	"errors"
	"time"

	"talents/internal/models"
	"talents/internal/observability"

	"gorm.io/gorm"
)

// ContactRequestUpdate carries the fields written alongside a status change.
type ContactRequestUpdate struct {
	Status        models.ContactRequestStatus
	DeclineReason *string
	RespondedAt   time.Time
}

// ContactRequestRepository defines the persistence operations for contact requests
type ContactRequestRepository interface {
	Create(ctx context.Context, req *models.ContactRequest) error
	GetByID(ctx context.Context, id uint) (*models.ContactRequest, error)
	// TransitionFromPending applies update only while the row is still pending.
	// A row that moved on first yields a conflict and stays untouched.
	TransitionFromPending(ctx context.Context, id uint, update ContactRequestUpdate) (*models.ContactRequest, error)
	ListForTalent(ctx context.Context, talentID uint, status *models.ContactRequestStatus, limit, offset int) ([]models.ContactRequest, error)
	ListForRequester(ctx context.Context, requesterID uint, status *models.ContactRequestStatus, limit, offset int) ([]models.ContactRequest, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ContactRequest, error)
	HasPending(ctx context.Context, requesterID, talentID uint) (bool, error)
	// HasApprovedBetween reports an approved request in either direction.
	HasApprovedBetween(ctx context.Context, userA, userB uint) (bool, error)
}

// contactRequestRepository implements ContactRequestRepository
type contactRequestRepository struct {
	db *gorm.DB
}

// NewContactRequestRepository creates a new contact request repository
func NewContactRequestRepository(db *gorm.DB) ContactRequestRepository {
	return &contactRequestRepository{db: db}
}

func (r *contactRequestRepository) Create(ctx context.Context, req *models.ContactRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("A pending contact request to this talent already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRequestRepository) GetByID(ctx context.Context, id uint) (*models.ContactRequest, error) {
	var req models.ContactRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("ContactRequest", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *contactRequestRepository) TransitionFromPending(ctx context.Context, id uint, update ContactRequestUpdate) (*models.ContactRequest, error) {
	if !models.CanTransition(models.ContactRequestPending, update.Status) {
		return nil, models.NewConflictError("Illegal contact request transition")
	}

	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "TransitionFromPending", "contact_requests")
	defer span.End()
	defer observability.TrackQuery("update", "contact_requests")()

	res := r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("id = ? AND status = ?", id, models.ContactRequestPending).
		Updates(map[string]interface{}{
			"status":         update.Status,
			"decline_reason": update.DeclineReason,
			"responded_at":   update.RespondedAt,
			"updated_at":     update.RespondedAt,
		})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, models.NewConflictError("Contact request is no longer pending (status: " + string(current.Status) + ")")
	}
	return current, nil
}

func (r *contactRequestRepository) ListForTalent(ctx context.Context, talentID uint, status *models.ContactRequestStatus, limit, offset int) ([]models.ContactRequest, error) {
	return r.list(ctx, "talent_user_id = ?", talentID, status, limit, offset)
}

func (r *contactRequestRepository) ListForRequester(ctx context.Context, requesterID uint, status *models.ContactRequestStatus, limit, offset int) ([]models.ContactRequest, error) {
	return r.list(ctx, "requester_user_id = ?", requesterID, status, limit, offset)
}

func (r *contactRequestRepository) list(ctx context.Context, where string, userID uint, status *models.ContactRequestStatus, limit, offset int) ([]models.ContactRequest, error) {
	var reqs []models.ContactRequest

	q := r.db.WithContext(ctx).Where(where, userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *contactRequestRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ContactRequest, error) {
	var reqs []models.ContactRequest
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.ContactRequestPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *contactRequestRepository) HasPending(ctx context.Context, requesterID, talentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("requester_user_id = ? AND talent_user_id = ? AND status = ?", requesterID, talentID, models.ContactRequestPending).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *contactRequestRepository) HasApprovedBetween(ctx context.Context, userA, userB uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContactRequest{}).
		Where("((requester_user_id = ? AND talent_user_id = ?) OR (requester_user_id = ? AND talent_user_id = ?)) AND status = ?",
			userA, userB, userB, userA, models.ContactRequestApproved).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
