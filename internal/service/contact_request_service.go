package service

import (
	"context"
	"time"

	"talents/internal/audit"
	"talents/internal/featureflags"
	"talents/internal/models"
	"talents/internal/notifications"
	"talents/internal/observability"
	"talents/internal/repository"
	"talents/internal/validation"
)

const expireBatchSize = 100

// ContactRequestService enforces the contact request lifecycle: who may
// create, answer, withdraw or expire a request, and which transitions are
// legal. Every transition is a compare-and-set on the pending status.
type ContactRequestService struct {
	requests repository.ContactRequestRepository
	users    repository.UserRepository
	audit    audit.Sink
	notifier ContactNotifier
	tasks    TaskDispatcher
	flags    FlagChecker
	now      func() time.Time
}

// NewContactRequestService returns a new ContactRequestService. A nil sink,
// notifier, dispatcher or flag checker disables that concern.
func NewContactRequestService(
	requests repository.ContactRequestRepository,
	users repository.UserRepository,
	sink audit.Sink,
	notifier ContactNotifier,
	tasks TaskDispatcher,
	flags FlagChecker,
) *ContactRequestService {
	return &ContactRequestService{
		requests: requests,
		users:    users,
		audit:    sinkOrDiscard(sink),
		notifier: notifier,
		tasks:    tasks,
		flags:    flagsOrDefault(flags),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ExpireResult summarizes an expiry sweep.
type ExpireResult struct {
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
}

// Create opens a pending contact request from requester to talentID.
func (s *ContactRequestService) Create(ctx context.Context, requester models.IdentityContext, talentID uint, in validation.ContactRequestInput) (*models.ContactRequest, error) {
	ctx, span := observability.GetTraceLayer().TraceContactRequest(ctx, "create", requester.UserID())
	defer span.End()

	if err := requireSignedIn(requester); err != nil {
		return nil, err
	}
	if talentID == 0 {
		return nil, models.NewValidationError("Talent is required")
	}
	if requester.UserID() == talentID {
		return nil, models.NewValidationError("You cannot send a contact request to yourself")
	}

	payload, err := validation.ValidateContactRequest(in)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	role, err := s.users.GetRole(ctx, talentID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleTalent {
		return nil, models.NewValidationError("Contact requests can only be sent to talents")
	}

	pending, err := s.requests.HasPending(ctx, requester.UserID(), talentID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, models.NewConflictError("A pending contact request to this talent already exists")
	}

	now := s.now()
	req := &models.ContactRequest{
		RequesterUserID: requester.UserID(),
		TalentUserID:    talentID,
		ProjectType:     payload.ProjectType,
		Purpose:         payload.Purpose,
		Message:         payload.Message,
		Status:          models.ContactRequestPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	span.SetAttributes(observability.ContactRequestAttributes(req.ID, string(req.Status))...)
	observability.ContactRequestTransitions.WithLabelValues(string(req.Status)).Inc()
	s.announce(ctx, notifications.EventContactRequestCreated, req)
	return req, nil
}

// Respond approves or declines a pending request. Only the receiving talent
// may answer, or an administrator while the override hook is on. The decline
// reason is dropped on approval.
func (s *ContactRequestService) Respond(ctx context.Context, actor models.IdentityContext, requestID uint, approve bool, declineReason *string) (*models.ContactRequest, error) {
	ctx, span := observability.GetTraceLayer().TraceContactRequest(ctx, "respond", actor.UserID())
	defer span.End()

	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	allowed := actor.UserID() == req.TalentUserID
	reason := ""
	if !allowed && actor.IsAdmin() && s.flags.Enabled(featureflags.ContactAdminOverride, actor.UserID()) {
		allowed = true
		reason = "administrator override"
	}
	if !allowed {
		reason = "only the receiving talent may respond"
	}
	recordDecision(ctx, s.audit, actor, models.ResourceContactRequest, req.ID, models.ActionRespond, allowed, reason)
	if !allowed {
		return nil, models.NewForbiddenError("Only the talent who received this request can respond")
	}

	update := repository.ContactRequestUpdate{Status: models.ContactRequestDeclined, RespondedAt: s.now()}
	if approve {
		update.Status = models.ContactRequestApproved
	} else {
		note, err := validation.ValidateDeclineReason(declineReason)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		update.DeclineReason = note
	}

	return s.transition(ctx, req, update)
}

// Cancel withdraws a pending request. Only its requester may cancel.
func (s *ContactRequestService) Cancel(ctx context.Context, actor models.IdentityContext, requestID uint) (*models.ContactRequest, error) {
	ctx, span := observability.GetTraceLayer().TraceContactRequest(ctx, "cancel", actor.UserID())
	defer span.End()

	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	allowed := actor.UserID() == req.RequesterUserID
	reason := ""
	if !allowed {
		reason = "only the requester may cancel"
	}
	recordDecision(ctx, s.audit, actor, models.ResourceContactRequest, req.ID, models.ActionCancel, allowed, reason)
	if !allowed {
		return nil, models.NewForbiddenError("Only the requester can cancel this contact request")
	}

	return s.transition(ctx, req, repository.ContactRequestUpdate{
		Status:      models.ContactRequestCancelled,
		RespondedAt: s.now(),
	})
}

// Expire closes a pending request on behalf of the scheduler.
func (s *ContactRequestService) Expire(ctx context.Context, requestID uint) (*models.ContactRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, req, repository.ContactRequestUpdate{
		Status:      models.ContactRequestExpired,
		RespondedAt: s.now(),
	})
}

// ExpireStale expires every request still pending after retention. Requests
// answered while the sweep runs are skipped. The sweep stops at the first
// error that is not a conflict.
func (s *ContactRequestService) ExpireStale(ctx context.Context, retention time.Duration) (ExpireResult, error) {
	ctx, span := observability.GetTraceLayer().TraceContactRequest(ctx, "expire_stale", 0)
	defer span.End()

	var result ExpireResult
	if retention <= 0 {
		return result, models.NewValidationError("Retention must be positive")
	}
	cutoff := s.now().Add(-retention)

	for {
		batch, err := s.requests.ListPendingCreatedBefore(ctx, cutoff, expireBatchSize)
		if err != nil {
			return result, err
		}
		for i := range batch {
			if _, err := s.Expire(ctx, batch[i].ID); err != nil {
				if models.IsCode(err, models.CodeConflict) {
					result.Skipped++
					continue
				}
				return result, err
			}
			result.Expired++
		}
		if len(batch) < expireBatchSize {
			break
		}
	}

	span.SetAttributes(observability.SweepAttributes(result.Expired, result.Skipped)...)
	return result, nil
}

// ListReceived returns requests addressed to the viewer, newest first.
func (s *ContactRequestService) ListReceived(ctx context.Context, viewer models.IdentityContext, status *models.ContactRequestStatus, limit, offset int) ([]models.ContactRequest, error) {
	if err := requireSignedIn(viewer); err != nil {
		return nil, err
	}
	if err := checkStatusFilter(status); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	return s.requests.ListForTalent(ctx, viewer.UserID(), status, limit, offset)
}

// ListSent returns requests the viewer created, newest first.
func (s *ContactRequestService) ListSent(ctx context.Context, viewer models.IdentityContext, status *models.ContactRequestStatus, limit, offset int) ([]models.ContactRequest, error) {
	if err := requireSignedIn(viewer); err != nil {
		return nil, err
	}
	if err := checkStatusFilter(status); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	return s.requests.ListForRequester(ctx, viewer.UserID(), status, limit, offset)
}

func checkStatusFilter(status *models.ContactRequestStatus) error {
	if status != nil && !status.Valid() {
		return models.NewValidationError("Unknown contact request status")
	}
	return nil
}

// transition fails fast on a request already known to be terminal; the store
// still guards the write against concurrent answers.
func (s *ContactRequestService) transition(ctx context.Context, req *models.ContactRequest, update repository.ContactRequestUpdate) (*models.ContactRequest, error) {
	if req.Status.IsTerminal() {
		return nil, models.NewConflictError("Contact request is no longer pending (status: " + string(req.Status) + ")")
	}

	updated, err := s.requests.TransitionFromPending(ctx, req.ID, update)
	if err != nil {
		return nil, err
	}

	observability.AddTraceAttributesToContext(ctx, observability.ContactRequestAttributes(updated.ID, string(updated.Status))...)
	observability.ContactRequestTransitions.WithLabelValues(string(updated.Status)).Inc()
	s.announce(ctx, notifications.EventContactRequestUpdated, updated)
	return updated, nil
}

func (s *ContactRequestService) announce(ctx context.Context, eventType string, req *models.ContactRequest) {
	if s.notifier == nil || s.tasks == nil {
		return
	}
	snapshot := *req
	s.tasks.Dispatch(ctx, "notify_contact_request", func(ctx context.Context) error {
		return s.notifier.NotifyContactRequest(ctx, eventType, &snapshot)
	})
}
