// Package seed fills a development database with a demo marketplace: talents
// with listed profiles, subscribers in every billing state, contact requests
// in every lifecycle state and a few running conversations.
package seed

import (
	"context"
	"fmt"
	"strings"

	"talents/internal/database"
	"talents/internal/models"
	"talents/internal/observability"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Talents                 int
	Professionals           int
	Companies               int
	MessagesPerConversation int
	RandSeed                int64
	Clean                   bool
	DryRun                  bool
}

// DefaultOptions is the preset used by the seed command and runtime bootstrap.
func DefaultOptions() Options {
	return Options{
		Talents:                 12,
		Professionals:           6,
		Companies:               4,
		MessagesPerConversation: 4,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users           int `json:"users"`
	Profiles        int `json:"profiles"`
	ContactRequests int `json:"contact_requests"`
	Conversations   int `json:"conversations"`
	Messages        int `json:"messages"`
}

func (s Summary) String() string {
	return fmt.Sprintf("users=%d profiles=%d contact_requests=%d conversations=%d messages=%d",
		s.Users, s.Profiles, s.ContactRequests, s.Conversations, s.Messages)
}

// subscriber billing states cycle through this list so every gate outcome is
// represented.
var subscriberStatuses = []models.SubscriptionStatus{
	models.SubscriptionActive,
	models.SubscriptionTrial,
	models.SubscriptionExpired,
	models.SubscriptionActive,
	models.SubscriptionNone,
	models.SubscriptionPastDue,
	models.SubscriptionCancelled,
}

var requestStatuses = []models.ContactRequestStatus{
	models.ContactRequestPending,
	models.ContactRequestApproved,
	models.ContactRequestDeclined,
	models.ContactRequestCancelled,
}

type subscriber struct {
	user   *models.User
	status models.SubscriptionStatus
}

// Seed populates db according to opts.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	if opts.Talents <= 0 {
		return nil, fmt.Errorf("seed needs at least one talent")
	}
	observability.GlobalLogger.Info("seeding database",
		"talents", opts.Talents,
		"professionals", opts.Professionals,
		"companies", opts.Companies,
		"dry_run", opts.DryRun,
	)

	if opts.Clean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	summary := &Summary{}

	if _, err := f.CreateUser(ctx, models.RoleAdmin, func(u *models.User) {
		u.Username = "admin"
		u.Email = "admin@talents.local"
	}); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	summary.Users++

	talents := make([]*models.User, 0, opts.Talents)
	for i := 0; i < opts.Talents; i++ {
		u, err := f.CreateUser(ctx, models.RoleTalent)
		if err != nil {
			return nil, fmt.Errorf("create talent: %w", err)
		}
		status := models.ProfileApproved
		if i%5 == 4 {
			status = models.ProfilePending
		}
		if _, err := f.CreateProfile(ctx, u, status); err != nil {
			return nil, fmt.Errorf("create talent profile: %w", err)
		}
		talents = append(talents, u)
		summary.Users++
		summary.Profiles++
	}

	var subscribers []subscriber
	roles := make([]models.Role, 0, opts.Professionals+opts.Companies)
	for i := 0; i < opts.Professionals; i++ {
		roles = append(roles, models.RoleProfessional)
	}
	for i := 0; i < opts.Companies; i++ {
		roles = append(roles, models.RoleCompany)
	}
	for i, role := range roles {
		u, err := f.CreateUser(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", role, err)
		}
		status := subscriberStatuses[i%len(subscriberStatuses)]
		if _, err := f.CreateSubscription(ctx, u.ID, status); err != nil {
			return nil, fmt.Errorf("create subscription: %w", err)
		}
		if _, err := f.CreateProfile(ctx, u, models.ProfileApproved); err != nil {
			return nil, fmt.Errorf("create %s profile: %w", role, err)
		}
		subscribers = append(subscribers, subscriber{user: u, status: status})
		summary.Users++
		summary.Profiles++
	}

	for i, sub := range subscribers {
		talent := talents[i%len(talents)]
		status := requestStatuses[i%len(requestStatuses)]
		if _, err := f.CreateContactRequest(ctx, sub.user, talent, status); err != nil {
			return nil, fmt.Errorf("create contact request: %w", err)
		}
		summary.ContactRequests++

		// Approved contacts and paying subscribers may message.
		if status != models.ContactRequestApproved && !sub.status.GrantsPremium() {
			continue
		}
		if opts.MessagesPerConversation <= 0 {
			continue
		}
		_, sent, err := f.CreateConversation(ctx, sub.user, talent, opts.MessagesPerConversation)
		if err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		summary.Conversations++
		summary.Messages += sent
	}

	observability.GlobalLogger.Info("seeding complete", "summary", summary.String())
	return summary, nil
}

// clearData empties every schema-managed table.
func clearData(db *gorm.DB) error {
	observability.GlobalLogger.Warn("clearing existing data")
	modelsList := database.PersistentModels()

	if db.Dialector.Name() == "postgres" {
		tables := make([]string, 0, len(modelsList))
		stmt := &gorm.Statement{DB: db}
		for _, m := range modelsList {
			if err := stmt.Parse(m); err != nil {
				return err
			}
			tables = append(tables, stmt.Schema.Table)
		}
		return db.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error
	}

	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
	for i := len(modelsList) - 1; i >= 0; i-- {
		if err := tx.Delete(modelsList[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
