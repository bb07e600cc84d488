// Package messaging decides who may start, continue and read private
// conversations. The rules depend only on the arguments passed in.
package messaging

import (
	"talents/internal/access"
	"talents/internal/models"
)

// Denial messages shown to the sender.
const (
	ReasonSignIn             = "you must sign in to send messages"
	ReasonTalentInitiate     = "talents cannot initiate conversations"
	ReasonRecipientNotTalent = "only talents can be messaged directly"
	ReasonNotSubscriberRole  = "only professional and company accounts can start conversations"
	ReasonNotParticipant     = "you are not a participant in this conversation"
	ReasonSelfMessage        = "you cannot message yourself"
)

// Result is the outcome of a send check.
type Result struct {
	CanSend              bool
	Reason               string
	RequiresSubscription bool
}

// Err converts a denial into the matching application error. It returns nil
// when sending is allowed.
func (r Result) Err() error {
	if r.CanSend {
		return nil
	}
	if r.RequiresSubscription {
		return models.NewSubscriptionRequiredError(r.Reason)
	}
	return models.NewForbiddenError(r.Reason)
}

type options struct {
	approvedContact bool
}

// Option adjusts a send check.
type Option func(*options)

// WithApprovedContact marks the pair as having an approved contact request,
// which grants messaging without a subscription.
func WithApprovedContact(approved bool) Option {
	return func(o *options) {
		o.approvedContact = approved
	}
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func allow() Result {
	return Result{CanSend: true}
}

func deny(reason string) Result {
	return Result{Reason: reason}
}

// CheckNotSelf rejects a sender addressing themselves. It runs before any
// other rule.
func CheckNotSelf(senderID, recipientID uint) error {
	if senderID != 0 && senderID == recipientID {
		return models.NewValidationError(ReasonSelfMessage)
	}
	return nil
}

// CanInitiate decides whether sender may open a new conversation with a user
// of recipientRole.
//
// Talents can never initiate, whatever grant is passed in. An approved contact
// request lets a signed-in non-talent reach that talent without a subscription.
func CanInitiate(sender models.IdentityContext, recipientRole models.Role, opts ...Option) Result {
	o := collect(opts)

	switch {
	case sender.IsAdmin():
		return allow()
	case sender.IsAnonymous() || sender.Role() == models.RoleVisitor:
		return deny(ReasonSignIn)
	case sender.Role() == models.RoleTalent:
		return deny(ReasonTalentInitiate)
	case models.ParseRole(string(recipientRole)) != models.RoleTalent:
		return deny(ReasonRecipientNotTalent)
	case o.approvedContact:
		return allow()
	case !sender.Role().IsSubscriber():
		return deny(ReasonNotSubscriberRole)
	}
	return subscriptionGate(sender.Subscription())
}

// CanReply decides whether sender may post into a conversation. Participancy
// is checked first and no role overrides it.
func CanReply(sender models.IdentityContext, isParticipant bool, opts ...Option) Result {
	if !isParticipant {
		return deny(ReasonNotParticipant)
	}
	o := collect(opts)

	switch {
	case sender.IsAdmin(), sender.Role() == models.RoleTalent:
		return allow()
	case sender.IsAnonymous() || !sender.Role().IsSubscriber():
		return deny(ReasonSignIn)
	case o.approvedContact:
		return allow()
	}
	return subscriptionGate(sender.Subscription())
}

// CanView reports whether userID may read a conversation between participantIDs.
func CanView(userID uint, participantIDs []uint, role models.Role) bool {
	if models.ParseRole(string(role)) == models.RoleAdmin {
		return true
	}
	if userID == 0 {
		return false
	}
	for _, id := range participantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func subscriptionGate(status models.SubscriptionStatus) Result {
	if status.GrantsPremium() {
		return allow()
	}
	return Result{
		Reason:               subscriptionMessage(status),
		RequiresSubscription: true,
	}
}

func subscriptionMessage(status models.SubscriptionStatus) string {
	switch access.SubscriptionDenyReason(status) {
	case access.ReasonNoSubscription:
		return "subscribe to message talents"
	case access.ReasonExpired:
		return "your subscription has expired; renew it to message talents"
	case access.ReasonCancelled:
		return "your subscription was cancelled; resubscribe to message talents"
	case access.ReasonPastDue:
		return "your subscription payment is past due; update billing to message talents"
	default:
		return "an active subscription is required to message talents"
	}
}
