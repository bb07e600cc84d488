package service

import (
	"context"
	"testing"

	"talents/internal/models"
	"talents/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewIdentityResolver(repository.NewUserRepository(db))
	ctx := context.Background()

	pro := createUser(t, db, "pro", models.RoleProfessional)
	setSubscription(t, db, pro.ID, models.SubscriptionTrial)

	talent := createUser(t, db, "talent", models.RoleTalent)
	// A stray billing row must not give a talent a subscription.
	setSubscription(t, db, talent.ID, models.SubscriptionActive)

	company := createUser(t, db, "company", models.RoleCompany)
	legacy := createUser(t, db, "legacy", models.Role("moderator"))

	t.Run("anonymous", func(t *testing.T) {
		id, err := resolver.Resolve(ctx, 0)
		require.NoError(t, err)
		assert.True(t, id.IsAnonymous())
		assert.Equal(t, models.RoleVisitor, id.Role())
	})

	t.Run("subscriber carries status", func(t *testing.T) {
		id, err := resolver.Resolve(ctx, pro.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleProfessional, id.Role())
		assert.Equal(t, models.SubscriptionTrial, id.Subscription())
	})

	t.Run("non-subscriber role resolves to none", func(t *testing.T) {
		id, err := resolver.Resolve(ctx, talent.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleTalent, id.Role())
		assert.Equal(t, models.SubscriptionNone, id.Subscription())
	})

	t.Run("missing billing row", func(t *testing.T) {
		id, err := resolver.Resolve(ctx, company.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionNone, id.Subscription())
	})

	t.Run("unknown role is a visitor", func(t *testing.T) {
		id, err := resolver.Resolve(ctx, legacy.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleVisitor, id.Role())
		assert.False(t, id.IsAnonymous())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, 9999)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("subscription changes are seen on the next request", func(t *testing.T) {
		setSubscription(t, db, pro.ID, models.SubscriptionExpired)
		id, err := resolver.Resolve(ctx, pro.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionExpired, id.Subscription())
	})
}
