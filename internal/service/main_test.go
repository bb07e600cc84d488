package service

import (
	"context"
	"sync"
	"testing"

	"talents/internal/models"
	"talents/internal/notifications"
	"talents/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.ContactRequest{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.Profile{},
		&models.AccessDecision{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func setSubscription(t *testing.T, db *gorm.DB, userID uint, status models.SubscriptionStatus) {
	t.Helper()
	err := repository.NewUserRepository(db).UpsertSubscription(context.Background(), &models.Subscription{UserID: userID, Status: status})
	require.NoError(t, err)
}

// recordingSink keeps every decision it receives.
type recordingSink struct {
	mu        sync.Mutex
	decisions []models.AccessDecision
}

func (s *recordingSink) Record(_ context.Context, d models.AccessDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, d)
}

func (s *recordingSink) last() models.AccessDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decisions[len(s.decisions)-1]
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decisions)
}

// syncDispatcher runs tasks inline and keeps their errors.
type syncDispatcher struct {
	mu     sync.Mutex
	names  []string
	errors []error
}

func (d *syncDispatcher) Dispatch(ctx context.Context, name string, task notifications.SideTask) {
	err := task(ctx)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
	d.errors = append(d.errors, err)
}

type flagStub map[string]bool

func (f flagStub) Enabled(name string, _ uint) bool { return f[name] }

type contactNotifierStub struct {
	mu     sync.Mutex
	events []notifications.ContactRequestEvent
	types  []string
	err    error
}

func (n *contactNotifierStub) NotifyContactRequest(_ context.Context, eventType string, req *models.ContactRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.types = append(n.types, eventType)
	n.events = append(n.events, notifications.ContactRequestEvent{
		RequestID:       req.ID,
		NewStatus:       req.Status,
		RequesterUserID: req.RequesterUserID,
		TalentUserID:    req.TalentUserID,
	})
	return n.err
}

type messageNotifierStub struct {
	notifyFn func(context.Context, notifications.MessageEvent) error
}

func (n *messageNotifierStub) NotifyMessage(ctx context.Context, evt notifications.MessageEvent) error {
	return n.notifyFn(ctx, evt)
}
