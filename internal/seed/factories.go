package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talents/internal/models"
	"talents/internal/observability"
	"talents/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var projectTypes = []string{
	string(models.ProjectFeatureFilm),
	string(models.ProjectShortFilm),
	string(models.ProjectSeries),
	string(models.ProjectCommercial),
	string(models.ProjectTheater),
	string(models.ProjectMusicVideo),
	string(models.ProjectPhotoShoot),
}

var disciplines = []string{
	"Actor", "Dancer", "Singer", "Model", "Voice artist", "Stunt performer", "Musician",
}

// Factory builds domain entities with fake data and persists them through the
// repositories. In dry-run mode nothing is written and IDs are synthetic.
type Factory struct {
	faker         *gofakeit.Faker
	users         repository.UserRepository
	profiles      repository.ProfileRepository
	requests      repository.ContactRequestRepository
	conversations repository.ConversationStore
	dryRun        bool
	nextID        uint
	seq           int
}

// NewFactory creates a Factory bound to db. A zero randSeed picks a random one.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	f := &Factory{
		faker:  gofakeit.New(opts.RandSeed),
		dryRun: opts.DryRun,
		nextID: 1000,
	}
	if db != nil {
		f.users = repository.NewUserRepository(db)
		f.profiles = repository.NewProfileRepository(db)
		f.requests = repository.NewContactRequestRepository(db)
		f.conversations = repository.NewConversationStore(db)
	}
	return f
}

func (f *Factory) syntheticID() uint {
	f.nextID++
	return f.nextID
}

// BuildUser returns an unsaved user with a unique username and email.
func (f *Factory) BuildUser(role models.Role) *models.User {
	f.seq++
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), f.seq)
	return &models.User{
		Username: username,
		Email:    username + "@" + f.faker.DomainName(),
		Role:     role,
	}
}

// CreateUser builds and persists a user. Overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(role)
	for _, override := range overrides {
		override(user)
	}

	if f.dryRun {
		user.ID = f.syntheticID()
		observability.GlobalLogger.Debug("[dry-run] create user", "username", user.Username, "role", user.Role)
		return user, nil
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateSubscription writes the billing state of a subscriber account.
func (f *Factory) CreateSubscription(ctx context.Context, userID uint, status models.SubscriptionStatus) (*models.Subscription, error) {
	sub := &models.Subscription{
		UserID: userID,
		Status: status,
		Plan:   f.faker.RandomString([]string{"monthly", "yearly"}),
	}
	end := time.Now().UTC().AddDate(0, 1, 0)
	if !status.GrantsPremium() {
		end = time.Now().UTC().AddDate(0, 0, -f.faker.Number(1, 60))
	}
	sub.CurrentPeriodEnd = &end

	if f.dryRun {
		return sub, nil
	}
	if err := f.users.UpsertSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// BuildProfile returns an unsaved profile matching the owner's role.
func (f *Factory) BuildProfile(owner *models.User, status models.ProfileStatus) *models.Profile {
	p := &models.Profile{
		UserID:       owner.ID,
		DisplayName:  f.faker.Name(),
		Location:     f.faker.City() + ", " + f.faker.Country(),
		ContactEmail: owner.Email,
		Phone:        f.faker.Phone(),
		Status:       status,
	}

	switch owner.Role {
	case models.RoleTalent:
		p.Kind = models.ProfileTalent
		p.Headline = f.faker.RandomString(disciplines) + " based in " + f.faker.City()
		rate := f.faker.Number(150, 1500)
		p.DayRate = &rate
		p.Measurements = fmt.Sprintf("height %dcm", f.faker.Number(155, 198))
	case models.RoleCompany:
		p.Kind = models.ProfileCompany
		p.DisplayName = f.faker.Company()
		p.Headline = f.faker.BuzzWord() + " production house"
	default:
		p.Kind = models.ProfileProfessional
		p.Headline = f.faker.JobTitle()
	}
	return p
}

// CreateProfile builds and persists a profile for owner.
func (f *Factory) CreateProfile(ctx context.Context, owner *models.User, status models.ProfileStatus) (*models.Profile, error) {
	p := f.BuildProfile(owner, status)
	if f.dryRun {
		p.ID = f.syntheticID()
		return p, nil
	}
	if err := f.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateContactRequest persists a request in the given status. Answered
// statuses get a response timestamp.
func (f *Factory) CreateContactRequest(ctx context.Context, requester, talent *models.User, status models.ContactRequestStatus) (*models.ContactRequest, error) {
	created := time.Now().UTC().Add(-time.Duration(f.faker.Number(1, 72)) * time.Hour)
	message := f.faker.Sentence(12)
	req := &models.ContactRequest{
		RequesterUserID: requester.ID,
		TalentUserID:    talent.ID,
		ProjectType:     models.ProjectType(f.faker.RandomString(projectTypes)),
		Purpose:         f.faker.Sentence(8),
		Message:         &message,
		Status:          status,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	if status != models.ContactRequestPending {
		responded := created.Add(time.Duration(f.faker.Number(10, 600)) * time.Minute)
		req.RespondedAt = &responded
		req.UpdatedAt = responded
	}
	if status == models.ContactRequestDeclined {
		reason := f.faker.RandomString([]string{"Fully booked", "Not a fit for me", "Dates clash"})
		req.DeclineReason = &reason
	}

	if f.dryRun {
		req.ID = f.syntheticID()
		return req, nil
	}
	if err := f.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// CreateConversation opens a conversation between a and b and posts n
// alternating messages, starting with a.
func (f *Factory) CreateConversation(ctx context.Context, a, b *models.User, n int) (uint, int, error) {
	if f.dryRun {
		return f.syntheticID(), n, nil
	}
	conversationID, err := f.conversations.FindOrCreate(ctx, a.ID, b.ID)
	if err != nil {
		return 0, 0, err
	}

	sent := 0
	for i := 0; i < n; i++ {
		sender := a
		if i%2 == 1 {
			sender = b
		}
		if _, err := f.conversations.RecordMessage(ctx, conversationID, sender.ID, f.faker.Sentence(f.faker.Number(4, 16))); err != nil {
			return conversationID, sent, err
		}
		sent++
	}
	return conversationID, sent, nil
}
