package models

// IdentityContext is the per-request snapshot of a caller. It is built fresh
// for every request and passed by value; nothing mutates or caches it.
type IdentityContext struct {
	userID       uint
	role         Role
	subscription SubscriptionStatus
}

// NewIdentityContext builds an identity from raw lookups. Unknown roles become
// visitors; a zero user id is always a visitor with no subscription.
func NewIdentityContext(userID uint, role Role, subscription SubscriptionStatus) IdentityContext {
	if userID == 0 {
		return AnonymousIdentity()
	}
	if subscription == "" {
		subscription = SubscriptionNone
	}
	return IdentityContext{
		userID:       userID,
		role:         ParseRole(string(role)),
		subscription: subscription,
	}
}

// AnonymousIdentity returns the identity of a caller that is not signed in.
func AnonymousIdentity() IdentityContext {
	return IdentityContext{role: RoleVisitor, subscription: SubscriptionNone}
}

// UserID returns the caller's user id, zero for anonymous callers.
func (c IdentityContext) UserID() uint { return c.userID }

// Role returns the caller's role.
func (c IdentityContext) Role() Role { return c.role }

// Subscription returns the caller's subscription status.
func (c IdentityContext) Subscription() SubscriptionStatus { return c.subscription }

// IsAnonymous reports whether the caller is not signed in.
func (c IdentityContext) IsAnonymous() bool { return c.userID == 0 }

// IsAdmin reports whether the caller is an administrator.
func (c IdentityContext) IsAdmin() bool { return c.role == RoleAdmin }
