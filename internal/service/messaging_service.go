package service

import (
	"context"

	"talents/internal/audit"
	"talents/internal/featureflags"
	"talents/internal/messaging"
	"talents/internal/models"
	"talents/internal/notifications"
	"talents/internal/observability"
	"talents/internal/repository"
	"talents/internal/validation"
)

// MessagingService runs the send, reply, read and listing flows around the
// messaging authorization rules and the conversation store.
type MessagingService struct {
	conversations repository.ConversationStore
	users         repository.UserRepository
	requests      repository.ContactRequestRepository
	audit         audit.Sink
	notifier      MessageNotifier
	tasks         TaskDispatcher
	flags         FlagChecker
	maxLength     int
}

// MessagingServiceConfig carries the optional collaborators of MessagingService.
type MessagingServiceConfig struct {
	Audit            audit.Sink
	Notifier         MessageNotifier
	Tasks            TaskDispatcher
	Flags            FlagChecker
	MaxMessageLength int
}

// NewMessagingService returns a new MessagingService.
func NewMessagingService(
	conversations repository.ConversationStore,
	users repository.UserRepository,
	requests repository.ContactRequestRepository,
	cfg MessagingServiceConfig,
) *MessagingService {
	maxLength := cfg.MaxMessageLength
	if maxLength <= 0 {
		maxLength = validation.DefaultMaxMessageLength
	}
	return &MessagingService{
		conversations: conversations,
		users:         users,
		requests:      requests,
		audit:         sinkOrDiscard(cfg.Audit),
		notifier:      cfg.Notifier,
		tasks:         cfg.Tasks,
		flags:         flagsOrDefault(cfg.Flags),
		maxLength:     maxLength,
	}
}

// SendToUser delivers content from sender to recipientID. An existing
// conversation the sender belongs to is governed by the reply rule, anything
// else by the initiate rule. Nothing is stored unless the rule allows it.
func (s *MessagingService) SendToUser(ctx context.Context, sender models.IdentityContext, recipientID uint, content string) (*models.Message, error) {
	ctx, span := observability.GetTraceLayer().TraceMessaging(ctx, "send", sender.UserID())
	defer span.End()

	if recipientID == 0 {
		return nil, models.NewValidationError("Recipient is required")
	}
	if sender.IsAnonymous() || sender.Role() == models.RoleVisitor {
		res := messaging.CanInitiate(sender, models.RoleVisitor)
		recordDecision(ctx, s.audit, sender, models.ResourceUser, recipientID, models.ActionInitiate, false, res.Reason)
		return nil, res.Err()
	}
	if err := messaging.CheckNotSelf(sender.UserID(), recipientID); err != nil {
		return nil, err
	}
	content, err := validation.ValidateMessageContent(content, s.maxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	recipientRole, err := s.users.GetRole(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.conversations.FindBetween(ctx, sender.UserID(), recipientID)
	if err != nil {
		return nil, err
	}
	participant := false
	if existing != nil {
		if participant, err = s.conversations.IsParticipant(ctx, existing.ID, sender.UserID()); err != nil {
			return nil, err
		}
	}

	grant, err := s.approvedContact(ctx, sender, recipientID)
	if err != nil {
		return nil, err
	}

	var (
		res    messaging.Result
		action string
		path   string
	)
	if participant {
		res = messaging.CanReply(sender, true, messaging.WithApprovedContact(grant))
		action, path = models.ActionReply, "reply"
	} else {
		res = messaging.CanInitiate(sender, recipientRole, messaging.WithApprovedContact(grant))
		action, path = models.ActionInitiate, "initiate"
	}
	recordDecision(ctx, s.audit, sender, models.ResourceUser, recipientID, action, res.CanSend, res.Reason)
	if !res.CanSend {
		return nil, res.Err()
	}

	conversationID, err := s.conversations.FindOrCreate(ctx, sender.UserID(), recipientID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(observability.ConversationAttributes(conversationID, path)...)

	return s.record(ctx, conversationID, sender.UserID(), recipientID, content, path)
}

// Reply posts content into a conversation the sender already belongs to.
func (s *MessagingService) Reply(ctx context.Context, sender models.IdentityContext, conversationID uint, content string) (*models.Message, error) {
	ctx, span := observability.GetTraceLayer().TraceMessaging(ctx, "reply", sender.UserID())
	defer span.End()

	content, err := validation.ValidateMessageContent(content, s.maxLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	participant := conv.HasParticipant(sender.UserID())
	recipientID := conv.OtherParticipant(sender.UserID())

	grant := false
	if participant {
		if grant, err = s.approvedContact(ctx, sender, recipientID); err != nil {
			return nil, err
		}
	}

	res := messaging.CanReply(sender, participant, messaging.WithApprovedContact(grant))
	recordDecision(ctx, s.audit, sender, models.ResourceConversation, conv.ID, models.ActionReply, res.CanSend, res.Reason)
	if !res.CanSend {
		return nil, res.Err()
	}

	span.SetAttributes(observability.ConversationAttributes(conv.ID, "reply")...)
	return s.record(ctx, conv.ID, sender.UserID(), recipientID, content, "reply")
}

// ListConversations returns the viewer's conversations, most recent first,
// with unread counts.
func (s *MessagingService) ListConversations(ctx context.Context, viewer models.IdentityContext, limit, offset int) ([]*models.Conversation, error) {
	if err := requireSignedIn(viewer); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	return s.conversations.ListForUser(ctx, viewer.UserID(), limit, offset)
}

// GetMessages returns a page of messages, oldest first, to participants and
// administrators.
func (s *MessagingService) GetMessages(ctx context.Context, viewer models.IdentityContext, conversationID uint, limit, offset int) ([]*models.Message, error) {
	if err := requireSignedIn(viewer); err != nil {
		return nil, err
	}
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	allowed := messaging.CanView(viewer.UserID(), conv.ParticipantIDs(), viewer.Role())
	reason := ""
	if !allowed {
		reason = messaging.ReasonNotParticipant
	}
	recordDecision(ctx, s.audit, viewer, models.ResourceConversation, conv.ID, models.ActionView, allowed, reason)
	if !allowed {
		return nil, models.NewForbiddenError(messaging.ReasonNotParticipant)
	}

	limit, offset = clampPage(limit, offset)
	return s.conversations.ListMessages(ctx, conv.ID, limit, offset)
}

// MarkRead stamps the viewer's unread incoming messages and returns how many
// changed. Only participants may mark a conversation read.
func (s *MessagingService) MarkRead(ctx context.Context, viewer models.IdentityContext, conversationID uint) (int64, error) {
	if err := requireSignedIn(viewer); err != nil {
		return 0, err
	}
	ok, err := s.conversations.IsParticipant(ctx, conversationID, viewer.UserID())
	if err != nil {
		return 0, err
	}
	if !ok {
		if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
			return 0, err
		}
		return 0, models.NewForbiddenError(messaging.ReasonNotParticipant)
	}
	return s.conversations.MarkRead(ctx, conversationID, viewer.UserID())
}

// approvedContact reports whether an approved contact request links the two
// users while the grant hook is on.
func (s *MessagingService) approvedContact(ctx context.Context, sender models.IdentityContext, otherID uint) (bool, error) {
	if sender.IsAnonymous() || s.requests == nil {
		return false, nil
	}
	if !s.flags.Enabled(featureflags.ContactGrantMessaging, sender.UserID()) {
		return false, nil
	}
	return s.requests.HasApprovedBetween(ctx, sender.UserID(), otherID)
}

func (s *MessagingService) record(ctx context.Context, conversationID, senderID, recipientID uint, content, path string) (*models.Message, error) {
	msg, err := s.conversations.RecordMessage(ctx, conversationID, senderID, content)
	if err != nil {
		if models.IsCode(err, models.CodeInternal) {
			observability.LogServiceError(ctx, "MessagingService", "RecordMessage", err, map[string]interface{}{
				"conversation_id": conversationID,
				"sender_id":       senderID,
			})
		}
		return nil, err
	}
	observability.MessagesSent.WithLabelValues(path).Inc()

	if s.notifier != nil && s.tasks != nil {
		evt := notifications.MessageEvent{
			RecipientID:    recipientID,
			SenderID:       senderID,
			Preview:        validation.Preview(content),
			ConversationID: conversationID,
			MessageID:      msg.ID,
		}
		s.tasks.Dispatch(ctx, "notify_message", func(ctx context.Context) error {
			return s.notifier.NotifyMessage(ctx, evt)
		})
	}
	return msg, nil
}
