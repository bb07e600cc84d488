package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"talents/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPendingRequest(t *testing.T, repo ContactRequestRepository, requesterID, talentID uint) *models.ContactRequest {
	t.Helper()
	req := &models.ContactRequest{
		RequesterUserID: requesterID,
		TalentUserID:    talentID,
		ProjectType:     models.ProjectCommercial,
		Purpose:         "Casting for a spring campaign",
		Status:          models.ContactRequestPending,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	return req
}

func TestContactRequestRepository_Transitions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRequestRepository(db)
	ctx := context.Background()

	company := createUser(t, db, "studio", models.RoleCompany)
	talent := createUser(t, db, "actor", models.RoleTalent)

	t.Run("ApproveOnce", func(t *testing.T) {
		req := newPendingRequest(t, repo, company.ID, talent.ID)
		at := time.Now().UTC()

		updated, err := repo.TransitionFromPending(ctx, req.ID, ContactRequestUpdate{Status: models.ContactRequestApproved, RespondedAt: at})
		require.NoError(t, err)
		assert.Equal(t, models.ContactRequestApproved, updated.Status)
		require.NotNil(t, updated.RespondedAt)

		_, err = repo.TransitionFromPending(ctx, req.ID, ContactRequestUpdate{Status: models.ContactRequestDeclined, RespondedAt: at.Add(time.Minute)})
		assert.True(t, models.IsCode(err, models.CodeConflict))

		current, err := repo.GetByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ContactRequestApproved, current.Status)
		assert.True(t, current.RespondedAt.Equal(*updated.RespondedAt))
		assert.Nil(t, current.DeclineReason)
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		_, err := repo.TransitionFromPending(ctx, 9999, ContactRequestUpdate{Status: models.ContactRequestExpired, RespondedAt: time.Now()})
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("IllegalTarget", func(t *testing.T) {
		req := newPendingRequest(t, repo, company.ID, talent.ID)
		_, err := repo.TransitionFromPending(ctx, req.ID, ContactRequestUpdate{Status: models.ContactRequestPending, RespondedAt: time.Now()})
		assert.True(t, models.IsCode(err, models.CodeConflict))
	})

	t.Run("ConcurrentResponsesOneWinner", func(t *testing.T) {
		req := newPendingRequest(t, repo, company.ID, talent.ID)

		const workers = 6
		errs := make([]error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				status := models.ContactRequestApproved
				if i%2 == 1 {
					status = models.ContactRequestDeclined
				}
				_, errs[i] = repo.TransitionFromPending(ctx, req.ID, ContactRequestUpdate{Status: status, RespondedAt: time.Now().UTC()})
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.True(t, models.IsCode(err, models.CodeConflict))
		}
		assert.Equal(t, 1, wins)
	})
}

func TestContactRequestRepository_Queries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRequestRepository(db)
	ctx := context.Background()

	pro := createUser(t, db, "pro", models.RoleProfessional)
	company := createUser(t, db, "company", models.RoleCompany)
	talent := createUser(t, db, "talent", models.RoleTalent)

	old := newPendingRequest(t, repo, pro.ID, talent.ID)
	recent := newPendingRequest(t, repo, company.ID, talent.ID)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Model(old).UpdateColumn("created_at", base).Error)
	require.NoError(t, db.Model(recent).UpdateColumn("created_at", base.Add(48*time.Hour)).Error)

	t.Run("ListForTalentNewestFirst", func(t *testing.T) {
		reqs, err := repo.ListForTalent(ctx, talent.ID, nil, 20, 0)
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, recent.ID, reqs[0].ID)
		assert.Equal(t, old.ID, reqs[1].ID)
	})

	t.Run("ListForRequesterWithStatus", func(t *testing.T) {
		pending := models.ContactRequestPending
		reqs, err := repo.ListForRequester(ctx, pro.ID, &pending, 20, 0)
		require.NoError(t, err)
		assert.Len(t, reqs, 1)

		approved := models.ContactRequestApproved
		reqs, err = repo.ListForRequester(ctx, pro.ID, &approved, 20, 0)
		require.NoError(t, err)
		assert.Empty(t, reqs)
	})

	t.Run("ListPendingCreatedBefore", func(t *testing.T) {
		reqs, err := repo.ListPendingCreatedBefore(ctx, base.Add(24*time.Hour), 100)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, old.ID, reqs[0].ID)
	})

	t.Run("HasPendingAndApproved", func(t *testing.T) {
		ok, err := repo.HasPending(ctx, pro.ID, talent.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.HasApprovedBetween(ctx, talent.ID, pro.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repo.TransitionFromPending(ctx, old.ID, ContactRequestUpdate{Status: models.ContactRequestApproved, RespondedAt: time.Now().UTC()})
		require.NoError(t, err)

		ok, err = repo.HasApprovedBetween(ctx, talent.ID, pro.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.HasPending(ctx, pro.ID, talent.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestProfileRepository_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner", models.RoleTalent)
	admin := createUser(t, db, "admin", models.RoleAdmin)

	profile := &models.Profile{UserID: owner.ID, Kind: models.ProfileTalent, DisplayName: "Owner", Status: models.ProfilePending}
	require.NoError(t, repo.Create(ctx, profile))

	note := "looks good"
	updated, err := repo.UpdateStatus(ctx, profile.ID, ModerationUpdate{
		From:        []models.ProfileStatus{models.ProfilePending},
		To:          models.ProfileApproved,
		Note:        &note,
		ModeratorID: admin.ID,
		At:          time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProfileApproved, updated.Status)
	require.NotNil(t, updated.ModeratedBy)
	assert.Equal(t, admin.ID, *updated.ModeratedBy)

	_, err = repo.UpdateStatus(ctx, profile.ID, ModerationUpdate{
		From: []models.ProfileStatus{models.ProfilePending},
		To:   models.ProfileRejected,
		At:   time.Now().UTC(),
	})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	byUser, err := repo.GetByUserID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProfileApproved, byUser.Status)

	err = repo.Create(ctx, &models.Profile{UserID: owner.ID, Kind: models.ProfileTalent, DisplayName: "Dup"})
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestAccessDecisionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccessDecisionRepository(db)
	ctx := context.Background()

	for i, granted := range []bool{true, false} {
		require.NoError(t, repo.Append(ctx, &models.AccessDecision{
			ActorID:      uint(i + 1),
			ResourceType: models.ResourceConversation,
			ResourceID:   7,
			Action:       models.ActionReply,
			Granted:      granted,
			Reason:       "test",
			Timestamp:    time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	decisions, err := repo.ListForResource(ctx, models.ResourceConversation, 7, 10)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.False(t, decisions[0].Granted)
	assert.Equal(t, uint(2), decisions[0].ActorID)

	var other []models.AccessDecision
	require.NoError(t, db.Session(&gorm.Session{}).Where("resource_id = ?", 8).Find(&other).Error)
	assert.Empty(t, other)
}
