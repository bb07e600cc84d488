// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"talents/internal/models"
	"talents/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event types published to user channels.
const (
	EventContactRequestCreated = "contact_request.created"
	EventContactRequestUpdated = "contact_request.status_changed"
	EventMessageReceived       = "message.received"
)

// Event is the envelope published on every channel.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// ContactRequestEvent is keyed on the request and its new status.
type ContactRequestEvent struct {
	RequestID       uint                        `json:"request_id"`
	NewStatus       models.ContactRequestStatus `json:"new_status"`
	RequesterUserID uint                        `json:"requester_user_id"`
	TalentUserID    uint                        `json:"talent_user_id"`
}

// MessageEvent tells a recipient a message is waiting.
type MessageEvent struct {
	RecipientID    uint   `json:"recipient_id"`
	SenderID       uint   `json:"sender_id"`
	Preview        string `json:"preview"`
	ConversationID uint   `json:"conversation_id"`
	MessageID      uint   `json:"message_id"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(
	ctx context.Context, userID uint, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishConversation sends a payload to a conversation channel
func (n *Notifier) PublishConversation(
	ctx context.Context, conversationID uint, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, ConversationChannel(conversationID), payload).Err()
}

// NotifyContactRequest publishes a status event to both parties of the request.
func (n *Notifier) NotifyContactRequest(ctx context.Context, eventType string, req *models.ContactRequest) error {
	payload, err := encodeEvent(eventType, ContactRequestEvent{
		RequestID:       req.ID,
		NewStatus:       req.Status,
		RequesterUserID: req.RequesterUserID,
		TalentUserID:    req.TalentUserID,
	})
	if err != nil {
		return err
	}
	return errors.Join(
		n.PublishUser(ctx, req.RequesterUserID, payload),
		n.PublishUser(ctx, req.TalentUserID, payload),
	)
}

// NotifyMessage publishes a new-message event to the recipient and the conversation.
func (n *Notifier) NotifyMessage(ctx context.Context, evt MessageEvent) error {
	payload, err := encodeEvent(EventMessageReceived, evt)
	if err != nil {
		return err
	}
	return errors.Join(
		n.PublishUser(ctx, evt.RecipientID, payload),
		n.PublishConversation(ctx, evt.ConversationID, payload),
	)
}

func encodeEvent(eventType string, data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal event data: %w", err)
	}
	out, err := json.Marshal(Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
		Data:      raw,
	})
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(out), nil
}

// StartUserSubscriber subscribes to one user's channel and calls onMessage
// for each incoming payload until ctx is cancelled.
func (n *Notifier) StartUserSubscriber(
	ctx context.Context, userID uint, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, UserChannel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", UserChannel(userID), err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.GlobalLogger.Error("panic in user subscriber",
								"panic", fmt.Sprint(r), "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// ConversationChannel derives the Redis channel name for a conversation.
func ConversationChannel(conversationID uint) string {
	return "chat:conv:" + strconv.FormatUint(uint64(conversationID), 10)
}
