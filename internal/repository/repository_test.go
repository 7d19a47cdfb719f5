package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
	"github.com/tesseract-hub/onboarding-service/internal/testutil"
)

func hostWorkflow(t *testing.T) models.Workflow {
	wf, ok := models.WorkflowFor(models.VariantHost)
	require.True(t, ok)
	return wf
}

func createUser(t *testing.T, store *repository.Store, email string, staff bool) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New(), Email: email, IsStaff: staff, IsActive: true}
	require.NoError(t, store.Users.Upsert(context.Background(), u))
	return u
}

func TestProfileGetOrCreate_Idempotent(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	owner := createUser(t, store, "owner@example.com", false)

	first, created, err := store.Profiles.GetOrCreate(ctx, owner.ID, hostWorkflow(t))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.StatusDraft, first.Status)
	assert.Equal(t, models.StepBusinessProfile, first.CurrentStep)

	second, created, err := store.Profiles.GetOrCreate(ctx, owner.ID, hostWorkflow(t))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestProfileGetOrCreate_ConcurrentCallsShareOneRow(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	owner := createUser(t, store, "race@example.com", false)
	wf := hostWorkflow(t)

	const workers = 8
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, _, err := store.Profiles.GetOrCreate(ctx, owner.ID, wf)
			errs[i] = err
			if p != nil {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	profiles, err := store.Profiles.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestProfileGetOrCreate_VariantsAreIndependent(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	owner := createUser(t, store, "both@example.com", false)

	vendorWF, _ := models.WorkflowFor(models.VariantVendor)
	host, _, err := store.Profiles.GetOrCreate(ctx, owner.ID, hostWorkflow(t))
	require.NoError(t, err)
	vendor, _, err := store.Profiles.GetOrCreate(ctx, owner.ID, vendorWF)
	require.NoError(t, err)

	assert.NotEqual(t, host.ID, vendor.ID)
	assert.Equal(t, models.VariantVendor, vendor.Variant)
}

func TestStepGetOrCreate_ReusesExistingRow(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	owner := createUser(t, store, "steps@example.com", false)
	profile, _, err := store.Profiles.GetOrCreate(ctx, owner.ID, hostWorkflow(t))
	require.NoError(t, err)

	bp, err := store.Steps.GetOrCreateBusinessProfile(ctx, profile.ID)
	require.NoError(t, err)
	bp.BusinessName = "Acme Stays"
	require.NoError(t, store.Steps.Save(ctx, bp))

	again, err := store.Steps.GetOrCreateBusinessProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, bp.ID, again.ID)
	assert.Equal(t, "Acme Stays", again.BusinessName)

	cd, err := store.Steps.GetOrCreateContactDetails(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, cd.MobileVerified)
}

func TestHistory_NewestFirst(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	owner := createUser(t, store, "history@example.com", false)
	profile, _, err := store.Profiles.GetOrCreate(ctx, owner.ID, hostWorkflow(t))
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.History.Create(ctx, &models.StatusHistory{
		ProfileID: profile.ID, OldStatus: "draft", NewStatus: "submitted", ChangedByID: &owner.ID, CreatedAt: base,
	}))
	require.NoError(t, store.History.Create(ctx, &models.StatusHistory{
		ProfileID: profile.ID, OldStatus: "submitted", NewStatus: "approved", CreatedAt: base.Add(time.Hour),
	}))

	entries, err := store.History.ListByProfile(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "approved", entries[0].NewStatus)
	assert.Nil(t, entries[0].ChangedByID)
	assert.Equal(t, "submitted", entries[1].NewStatus)
	assert.Equal(t, "history@example.com", entries[1].ChangedByEmail())
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	owner := createUser(t, store, "tx@example.com", false)
	profile, _, err := store.Profiles.GetOrCreate(ctx, owner.ID, hostWorkflow(t))
	require.NoError(t, err)

	err = store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Profiles.GetForUpdate(ctx, profile.ID)
		require.NoError(t, err)
		p.MarkStepCompleted(models.StepBusinessProfile)
		require.NoError(t, tx.Profiles.Save(ctx, p))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	reloaded, err := store.Profiles.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.BusinessProfileCompleted)
}

func TestDeleteUser_CascadesOwnedAndNullsActor(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	owner := createUser(t, store, "owner@example.com", false)
	other := createUser(t, store, "other@example.com", false)

	owned, _, err := store.Profiles.GetOrCreate(ctx, owner.ID, hostWorkflow(t))
	require.NoError(t, err)
	_, err = store.Steps.GetOrCreateBusinessProfile(ctx, owned.ID)
	require.NoError(t, err)
	require.NoError(t, store.History.Create(ctx, &models.StatusHistory{
		ProfileID: owned.ID, OldStatus: "draft", NewStatus: "submitted", ChangedByID: &owner.ID,
	}))

	// the owner acted on someone else's profile
	foreign, _, err := store.Profiles.GetOrCreate(ctx, other.ID, hostWorkflow(t))
	require.NoError(t, err)
	require.NoError(t, store.History.Create(ctx, &models.StatusHistory{
		ProfileID: foreign.ID, OldStatus: "submitted", NewStatus: "approved", ChangedByID: &owner.ID,
	}))
	foreign.ReviewerID = &owner.ID
	require.NoError(t, store.Profiles.Save(ctx, foreign))

	require.NoError(t, store.Users.Delete(ctx, owner.ID))

	_, err = store.Profiles.GetByID(ctx, owned.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	count, err := store.History.CountByProfile(ctx, owned.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	var bpCount int64
	require.NoError(t, store.DB().Model(&models.BusinessProfile{}).Where("profile_id = ?", owned.ID).Count(&bpCount).Error)
	assert.Zero(t, bpCount)

	kept, err := store.History.ListByProfile(ctx, foreign.ID)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Nil(t, kept[0].ChangedByID)

	reloaded, err := store.Profiles.GetByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.ReviewerID)
}

func TestProfileList_FiltersAndOrders(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		u := createUser(t, store, uuid.NewString()+"@example.com", false)
		p, _, err := store.Profiles.GetOrCreate(ctx, u.ID, hostWorkflow(t))
		require.NoError(t, err)
		submitted := base.Add(time.Duration(i) * time.Hour)
		p.Status = models.StatusSubmitted
		p.SubmittedAt = &submitted
		require.NoError(t, store.Profiles.Save(ctx, p))
		ids = append(ids, p.ID)
	}
	draftOwner := createUser(t, store, "draft@example.com", false)
	_, _, err := store.Profiles.GetOrCreate(ctx, draftOwner.ID, hostWorkflow(t))
	require.NoError(t, err)

	list, total, err := store.Profiles.List(ctx, models.ProfileFilter{
		Variant: models.VariantHost,
		Status:  models.StatusSubmitted,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)

	subset, total, err := store.Profiles.List(ctx, models.ProfileFilter{IDs: ids[:1]})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, ids[0], subset[0].ID)
}

func TestClearExpiredMobileCodes(t *testing.T) {
	store := repository.NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	withCode := func(email string, sentAt time.Time) uuid.UUID {
		owner := createUser(t, store, email, false)
		profile, _, err := store.Profiles.GetOrCreate(ctx, owner.ID, hostWorkflow(t))
		require.NoError(t, err)
		cd, err := store.Steps.GetOrCreateContactDetails(ctx, profile.ID)
		require.NoError(t, err)
		cd.MobileVerificationCode = "654321"
		cd.MobileVerificationSentAt = &sentAt
		require.NoError(t, store.Steps.Save(ctx, cd))
		return profile.ID
	}
	old := withCode("old@example.com", now.Add(-time.Hour))
	recent := withCode("recent@example.com", now)

	n, err := store.Steps.ClearExpiredMobileCodes(ctx, now.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	cd, err := store.Steps.GetContactDetails(ctx, old)
	require.NoError(t, err)
	assert.Empty(t, cd.MobileVerificationCode)
	assert.Nil(t, cd.MobileVerificationSentAt)

	cd, err = store.Steps.GetContactDetails(ctx, recent)
	require.NoError(t, err)
	assert.Equal(t, "654321", cd.MobileVerificationCode)
}
