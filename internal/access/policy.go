// Package access decides which profile field set a caller may see and whether
// premium sections are unlocked. Every function here is pure: the only input
// is the identity passed in, so results are safe to compute concurrently.
package access

import "talents/internal/models"

// Decision is the outcome of a premium access check.
type Decision int

const (
	// Deny means premium access is not granted.
	Deny Decision = iota

	// Allow means premium access is granted.
	Allow
)

// String returns "allow" or "deny".
func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// DenyReason describes why premium access was denied.
type DenyReason int

const (
	// ReasonNone is set on granted results.
	ReasonNone DenyReason = iota

	// ReasonNotSignedIn means the caller is anonymous.
	ReasonNotSignedIn

	// ReasonWrongRole means the caller's role cannot hold a subscription.
	ReasonWrongRole

	// ReasonNoSubscription means the account never subscribed.
	ReasonNoSubscription

	// ReasonExpired means the paid period ended.
	ReasonExpired

	// ReasonCancelled means the subscription was cancelled.
	ReasonCancelled

	// ReasonPastDue means the last renewal payment failed.
	ReasonPastDue

	// ReasonUnknownStatus means billing reported a state we do not recognise.
	ReasonUnknownStatus
)

// String returns a human-readable reason suitable for the UI.
func (r DenyReason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonNotSignedIn:
		return "sign in to view premium details"
	case ReasonWrongRole:
		return "premium details are available to professional and company accounts"
	case ReasonNoSubscription:
		return "an active subscription is required to view premium details"
	case ReasonExpired:
		return "your subscription has expired"
	case ReasonCancelled:
		return "your subscription was cancelled"
	case ReasonPastDue:
		return "your subscription payment is past due"
	default:
		return "your subscription status could not be verified"
	}
}

// Result describes a premium access check.
type Result struct {
	Decision Decision
	Level    models.AccessLevel
	Reason   DenyReason
}

// Granted reports whether the decision is Allow.
func (r Result) Granted() bool {
	return r.Decision == Allow
}

// RequiresSubscription reports whether a subscription change would lift the
// denial.
func (r Result) RequiresSubscription() bool {
	switch r.Reason {
	case ReasonNoSubscription, ReasonExpired, ReasonCancelled, ReasonPastDue, ReasonUnknownStatus:
		return true
	}
	return false
}

// Evaluate returns the access level of id against a resource owned by
// targetOwnerID. A nil owner means there is no specific owned resource.
//
// Owners and administrators get full. Subscriber roles with an active or
// trial subscription get premium. Everyone else gets public.
func Evaluate(id models.IdentityContext, targetOwnerID *uint) models.AccessLevel {
	if targetOwnerID != nil && !id.IsAnonymous() && id.UserID() == *targetOwnerID {
		return models.AccessFull
	}
	if id.IsAdmin() {
		return models.AccessFull
	}
	if id.Role().IsSubscriber() && id.Subscription().GrantsPremium() {
		return models.AccessPremium
	}
	return models.AccessPublic
}

// CheckPremiumAccess applies the premium rule without an owner bypass, for
// listing pages and route guards.
func CheckPremiumAccess(id models.IdentityContext) Result {
	level := Evaluate(id, nil)
	if level.Includes(models.AccessPremium) {
		return Result{Decision: Allow, Level: level, Reason: ReasonNone}
	}
	return Result{Decision: Deny, Level: level, Reason: denyReason(id)}
}

func denyReason(id models.IdentityContext) DenyReason {
	if id.IsAnonymous() {
		return ReasonNotSignedIn
	}
	if !id.Role().IsSubscriber() {
		return ReasonWrongRole
	}
	return SubscriptionDenyReason(id.Subscription())
}

// SubscriptionDenyReason maps a non-granting subscription status to its reason.
// Unrecognised statuses never grant.
func SubscriptionDenyReason(s models.SubscriptionStatus) DenyReason {
	switch s {
	case models.SubscriptionNone:
		return ReasonNoSubscription
	case models.SubscriptionExpired:
		return ReasonExpired
	case models.SubscriptionCancelled:
		return ReasonCancelled
	case models.SubscriptionPastDue:
		return ReasonPastDue
	default:
		return ReasonUnknownStatus
	}
}
