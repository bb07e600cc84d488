// Package service provides application business logic: identity resolution,
// contact requests, messaging and profile access.
package service

import (
	"context"

	"talents/internal/audit"
	"talents/internal/models"
	"talents/internal/notifications"
)

// TaskDispatcher runs best-effort side tasks after a write has committed.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, name string, task notifications.SideTask)
}

// FlagChecker answers policy hook lookups.
type FlagChecker interface {
	Enabled(name string, userID uint) bool
}

// ContactNotifier delivers contact request status events.
type ContactNotifier interface {
	NotifyContactRequest(ctx context.Context, eventType string, req *models.ContactRequest) error
}

// MessageNotifier delivers new-message events.
type MessageNotifier interface {
	NotifyMessage(ctx context.Context, evt notifications.MessageEvent) error
}

type noFlags struct{}

func (noFlags) Enabled(string, uint) bool { return false }

func flagsOrDefault(f FlagChecker) FlagChecker {
	if f == nil {
		return noFlags{}
	}
	return f
}

func sinkOrDiscard(s audit.Sink) audit.Sink {
	if s == nil {
		return audit.Discard
	}
	return s
}

func recordDecision(ctx context.Context, sink audit.Sink, actor models.IdentityContext, resourceType string, resourceID uint, action string, granted bool, reason string) {
	sink.Record(ctx, models.AccessDecision{
		ActorID:      actor.UserID(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		Granted:      granted,
		Reason:       reason,
	})
}

func requireSignedIn(id models.IdentityContext) error {
	if id.IsAnonymous() {
		return models.NewUnauthorizedError("Sign in to continue")
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
