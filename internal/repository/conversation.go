package repository

import (
	"context"
	"errors"
	"time"

	"talents/internal/models"
	"talents/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const findOrCreateAttempts = 3

var errConversationRaced = errors.New("conversation insert lost a race")

// ConversationStore is the persistence contract the messaging core depends on.
type ConversationStore interface {
	// FindOrCreate returns the single conversation for the unordered pair,
	// creating it on first use. Concurrent callers converge on one id.
	FindOrCreate(ctx context.Context, userA, userB uint) (uint, error)
	// FindBetween returns nil without error when the pair has no conversation.
	FindBetween(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error)
	// RecordMessage stores the message and bumps the conversation timestamp
	// in one transaction. Non-participants are rejected.
	RecordMessage(ctx context.Context, conversationID, senderID uint, content string) (*models.Message, error)
	// MarkRead stamps unread messages not sent by userID and returns how many
	// changed. Repeated calls return zero.
	MarkRead(ctx context.Context, conversationID, userID uint) (int64, error)
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Conversation, error)
	ListMessages(ctx context.Context, conversationID uint, limit, offset int) ([]*models.Message, error)
}

// conversationStore implements ConversationStore
type conversationStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewConversationStore creates a new conversation store
func NewConversationStore(db *gorm.DB) ConversationStore {
	return &conversationStore{db: db, now: time.Now}
}

func (s *conversationStore) FindOrCreate(ctx context.Context, userA, userB uint) (uint, error) {
	if userA == 0 || userB == 0 || userA == userB {
		return 0, models.NewValidationError("A conversation needs two distinct users")
	}
	low, high := models.OrderedPair(userA, userB)

	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "FindOrCreate", "conversations")
	defer span.End()
	defer observability.TrackQuery("find_or_create", "conversations")()

	var lastErr error
	for attempt := 0; attempt < findOrCreateAttempts; attempt++ {
		id, err := s.insertOrFetch(ctx, low, high)
		if err == nil {
			return id, nil
		}
		if !isUniqueConstraintError(err) && !errors.Is(err, errConversationRaced) {
			return 0, models.NewInternalError(err)
		}
		lastErr = err
	}
	return 0, models.NewInternalError(lastErr)
}

func (s *conversationStore) insertOrFetch(ctx context.Context, low, high uint) (uint, error) {
	var id uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		conv := models.Conversation{UserLowID: low, UserHighID: high, CreatedAt: now, UpdatedAt: now}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}},
			DoNothing: true,
		}).Create(&conv)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var existing models.Conversation
			if err := tx.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&existing).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errConversationRaced
				}
				return err
			}
			id = existing.ID
			return nil
		}

		participants := []models.ConversationParticipant{
			{ConversationID: conv.ID, UserID: low, JoinedAt: now},
			{ConversationID: conv.ID, UserID: high, JoinedAt: now},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants).Error; err != nil {
			return err
		}
		id = conv.ID
		return nil
	})
	return id, err
}

func (s *conversationStore) FindBetween(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	low, high := models.OrderedPair(userA, userB)

	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

func (s *conversationStore) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Preload("Participants").
		First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conversation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

func (s *conversationStore) IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error) {
	ok, err := isParticipant(s.db.WithContext(ctx), conversationID, userID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return ok, nil
}

func isParticipant(db *gorm.DB, conversationID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *conversationStore) RecordMessage(ctx context.Context, conversationID, senderID uint, content string) (*models.Message, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "RecordMessage", "messages")
	defer span.End()
	defer observability.TrackQuery("insert", "messages")()

	var msg models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := isParticipant(tx, conversationID, senderID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewForbiddenError("Sender is not a participant in this conversation")
		}

		msg = models.Message{
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        content,
			CreatedAt:      s.now(),
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			UpdateColumn("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

func (s *conversationStore) MarkRead(ctx context.Context, conversationID, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, userID).
		UpdateColumn("read_at", s.now())
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *conversationStore) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	err := s.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON conversations.id = cp.conversation_id").
		Where("cp.user_id = ?", userID).
		Preload("Participants").
		Order("conversations.updated_at DESC").
		Order("conversations.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&conversations).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(conversations) == 0 {
		return conversations, nil
	}

	ids := make([]uint, len(conversations))
	for i, c := range conversations {
		ids[i] = c.ID
	}

	var unread []struct {
		ConversationID uint
		Count          int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("conversation_id IN ? AND sender_id <> ? AND read_at IS NULL", ids, userID).
		Group("conversation_id").
		Scan(&unread).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[uint]int64, len(unread))
	for _, row := range unread {
		counts[row.ConversationID] = row.Count
	}
	for _, c := range conversations {
		c.UnreadCount = counts[c.ID]
	}
	return conversations, nil
}

func (s *conversationStore) ListMessages(ctx context.Context, conversationID uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Fetched newest first for paging; callers expect oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
