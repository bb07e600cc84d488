package service

import (
	"context"
	"time"

	"talents/internal/access"
	"talents/internal/audit"
	"talents/internal/cache"
	"talents/internal/models"
	"talents/internal/repository"
)

// ProfileService serves marketplace profiles at the caller's access level and
// applies moderation decisions.
type ProfileService struct {
	profiles repository.ProfileRepository
	audit    audit.Sink
	now      func() time.Time
}

// NewProfileService returns a new ProfileService.
func NewProfileService(profiles repository.ProfileRepository, sink audit.Sink) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		audit:    sinkOrDiscard(sink),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns the fields of profileID the viewer may see. Profiles that
// are not approved exist only for their owner and administrators. The cache
// holds the whole record and the projection runs on every read.
func (s *ProfileService) GetProfile(ctx context.Context, viewer models.IdentityContext, profileID uint) (*models.ProfileView, error) {
	var profile models.Profile
	err := cache.Aside(ctx, "profile", cache.ProfileKey(profileID), &profile, cache.ProfileTTL, func() (int64, error) {
		p, err := s.profiles.GetByID(ctx, profileID)
		if err != nil {
			return 0, err
		}
		profile = *p
		return p.UpdatedAt.UnixNano(), nil
	})
	if err != nil {
		return nil, err
	}

	owner := profile.UserID
	level := access.Evaluate(viewer, &owner)
	if profile.Status != models.ProfileApproved && level != models.AccessFull {
		recordDecision(ctx, s.audit, viewer, models.ResourceProfile, profile.ID, models.ActionView, false, "profile is not public")
		return nil, models.NewNotFoundError("Profile", profileID)
	}
	recordDecision(ctx, s.audit, viewer, models.ResourceProfile, profile.ID, models.ActionView, true, string(level))

	view := profile.ViewAt(level)
	return &view, nil
}

// CheckPremium backs route guards for premium-only sections.
func (s *ProfileService) CheckPremium(ctx context.Context, viewer models.IdentityContext) access.Result {
	res := access.CheckPremiumAccess(viewer)
	reason := ""
	if !res.Granted() {
		reason = res.Reason.String()
	}
	recordDecision(ctx, s.audit, viewer, models.ResourcePremium, 0, models.ActionView, res.Granted(), reason)
	return res
}

// Moderate applies action to a profile of any kind. The status change is a
// compare-and-set against the statuses the action may start from.
func (s *ProfileService) Moderate(ctx context.Context, actor models.IdentityContext, profileID uint, action models.ModerationAction, note *string) (*models.Profile, error) {
	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	allowed := actor.IsAdmin()
	reason := ""
	if !allowed {
		reason = "administrator role required"
	}
	recordDecision(ctx, s.audit, actor, models.ResourceProfile, profileID, models.ActionModerate, allowed, reason)
	if !allowed {
		return nil, models.NewForbiddenError("Only administrators can moderate profiles")
	}

	from, to := action.Transition()
	if to == "" {
		return nil, models.NewValidationError("Unknown moderation action")
	}

	updated, err := s.profiles.UpdateStatus(ctx, profileID, repository.ModerationUpdate{
		From:        from,
		To:          to,
		Note:        note,
		ModeratorID: actor.UserID(),
		At:          s.now(),
	})
	if err != nil {
		return nil, err
	}

	// The row is committed, so the cache must follow even if the caller left.
	storeCtx := context.WithoutCancel(ctx)
	if err := cache.StoreProfile(storeCtx, profileID, updated, updated.UpdatedAt.UnixNano()); err != nil {
		cache.InvalidateProfile(storeCtx, profileID)
	}
	return updated, nil
}
