package service

import (
	"context"

	"talents/internal/models"
	"talents/internal/repository"
)

// IdentityResolver builds the per-request IdentityContext from the role and
// subscription facts. Results are never cached.
type IdentityResolver struct {
	users repository.UserRepository
}

// NewIdentityResolver returns a new IdentityResolver.
func NewIdentityResolver(users repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve returns the identity of userID. Zero resolves to the anonymous
// visitor. Roles outside the subscriber set always carry no subscription.
func (r *IdentityResolver) Resolve(ctx context.Context, userID uint) (models.IdentityContext, error) {
	if userID == 0 {
		return models.AnonymousIdentity(), nil
	}

	role, err := r.users.GetRole(ctx, userID)
	if err != nil {
		return models.AnonymousIdentity(), err
	}
	if !role.IsSubscriber() {
		return models.NewIdentityContext(userID, role, models.SubscriptionNone), nil
	}

	status, err := r.users.GetSubscriptionStatus(ctx, userID)
	if err != nil {
		return models.AnonymousIdentity(), err
	}
	return models.NewIdentityContext(userID, role, status), nil
}
