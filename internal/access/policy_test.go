package access

import (
	"testing"

	"talents/internal/models"

	"github.com/stretchr/testify/assert"
)

var (
	allRoles = []models.Role{
		models.RoleVisitor, models.RoleTalent, models.RoleProfessional,
		models.RoleCompany, models.RoleAdmin, models.Role("legacy_moderator"),
	}
	allStatuses = []models.SubscriptionStatus{
		models.SubscriptionNone, models.SubscriptionTrial, models.SubscriptionActive,
		models.SubscriptionPastDue, models.SubscriptionCancelled, models.SubscriptionExpired,
		models.SubscriptionStatus("paused"),
	}
)

func ownerID(id uint) *uint { return &id }

func TestEvaluate_OwnerAlwaysFull(t *testing.T) {
	for _, role := range allRoles {
		for _, status := range allStatuses {
			id := models.NewIdentityContext(7, role, status)
			assert.Equal(t, models.AccessFull, Evaluate(id, ownerID(7)), "role=%s status=%s", role, status)
		}
	}
}

func TestEvaluate_AnonymousNeverMatchesOwnerZero(t *testing.T) {
	assert.Equal(t, models.AccessPublic, Evaluate(models.AnonymousIdentity(), ownerID(0)))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		role  models.Role
		sub   models.SubscriptionStatus
		owner *uint
		want  models.AccessLevel
	}{
		{"admin on foreign resource", models.RoleAdmin, models.SubscriptionNone, ownerID(99), models.AccessFull},
		{"admin without resource", models.RoleAdmin, models.SubscriptionNone, nil, models.AccessFull},
		{"active professional", models.RoleProfessional, models.SubscriptionActive, ownerID(99), models.AccessPremium},
		{"trial company", models.RoleCompany, models.SubscriptionTrial, nil, models.AccessPremium},
		{"expired company", models.RoleCompany, models.SubscriptionExpired, ownerID(99), models.AccessPublic},
		{"past due professional", models.RoleProfessional, models.SubscriptionPastDue, nil, models.AccessPublic},
		{"talent with active status", models.RoleTalent, models.SubscriptionActive, ownerID(99), models.AccessPublic},
		{"unknown role with active status", models.Role("superuser"), models.SubscriptionActive, nil, models.AccessPublic},
		{"unknown subscription state", models.RoleProfessional, models.SubscriptionStatus("grace"), nil, models.AccessPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := models.NewIdentityContext(1, tt.role, tt.sub)
			assert.Equal(t, tt.want, Evaluate(id, tt.owner))
		})
	}
}

func TestCheckPremiumAccess_NonGrantingStatusesDeny(t *testing.T) {
	for _, role := range allRoles {
		if role == models.RoleAdmin {
			continue
		}
		for _, status := range allStatuses {
			if status.GrantsPremium() {
				continue
			}
			res := CheckPremiumAccess(models.NewIdentityContext(3, role, status))
			assert.False(t, res.Granted(), "role=%s status=%s", role, status)
			assert.NotEmpty(t, res.Reason.String())
		}
	}
}

func TestCheckPremiumAccess_Reasons(t *testing.T) {
	tests := []struct {
		name    string
		id      models.IdentityContext
		granted bool
		reason  DenyReason
		subReq  bool
	}{
		{"anonymous", models.AnonymousIdentity(), false, ReasonNotSignedIn, false},
		{"talent", models.NewIdentityContext(1, models.RoleTalent, models.SubscriptionNone), false, ReasonWrongRole, false},
		{"no subscription", models.NewIdentityContext(1, models.RoleCompany, models.SubscriptionNone), false, ReasonNoSubscription, true},
		{"expired", models.NewIdentityContext(1, models.RoleCompany, models.SubscriptionExpired), false, ReasonExpired, true},
		{"cancelled", models.NewIdentityContext(1, models.RoleProfessional, models.SubscriptionCancelled), false, ReasonCancelled, true},
		{"past due", models.NewIdentityContext(1, models.RoleProfessional, models.SubscriptionPastDue), false, ReasonPastDue, true},
		{"unknown", models.NewIdentityContext(1, models.RoleProfessional, "frozen"), false, ReasonUnknownStatus, true},
		{"active", models.NewIdentityContext(1, models.RoleProfessional, models.SubscriptionActive), true, ReasonNone, false},
		{"admin", models.NewIdentityContext(1, models.RoleAdmin, models.SubscriptionNone), true, ReasonNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CheckPremiumAccess(tt.id)
			assert.Equal(t, tt.granted, res.Granted())
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, tt.subReq, res.RequiresSubscription())
		})
	}
}

func TestCheckPremiumAccess_IgnoresOwnership(t *testing.T) {
	res := CheckPremiumAccess(models.NewIdentityContext(5, models.RoleTalent, models.SubscriptionActive))
	assert.False(t, res.Granted())
	assert.Equal(t, models.AccessPublic, res.Level)
}
