package stash

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/testutil"
)

func newTestUser(t *testing.T, email string, role model.Role) model.User {
	t.Helper()
	seed, key, err := model.GenerateKeyPair()
	require.NoError(t, err)
	now := time.Now().UTC()
	return model.User{
		ID:             uuid.New(),
		Email:          email,
		Name:           "user",
		PasswordHash:   []byte("hash"),
		VerifyKey:      key,
		SigningKeySeed: seed,
		Role:           role,
		Notifications:  model.DefaultNotificationPrefs(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestUserStash_ReadableOwnerOnly(t *testing.T) {
	ctx := context.Background()
	stash := NewUserStash(testutil.NewMemoryUserStore())

	owner := newTestUser(t, "owner@example.com", model.RoleGuest)
	other := newTestUser(t, "other@example.com", model.RoleGuest)

	// No grants: only the owner and the root authority may read.
	_, err := stash.Set(ctx, owner)
	require.NoError(t, err)

	got, err := stash.GetByID(ctx, owner.VerifyKey, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.Email, got.Email)

	_, err = stash.GetByID(ctx, other.VerifyKey, owner.ID)
	assert.ErrorIs(t, err, model.ErrNotFound,
		"unreadable records must be indistinguishable from missing ones")

	_, err = stash.GetByID(ctx, model.RootAuthority, owner.ID)
	assert.NoError(t, err)
}

func TestUserStash_AllReadGrant(t *testing.T) {
	ctx := context.Background()
	stash := NewUserStash(testutil.NewMemoryUserStore())

	owner := newTestUser(t, "owner@example.com", model.RoleGuest)
	stranger := newTestUser(t, "stranger@example.com", model.RoleGuest)

	_, err := stash.Set(ctx, owner, GrantAllRead)
	require.NoError(t, err)

	got, err := stash.GetByID(ctx, stranger.VerifyKey, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
}

func TestUserStash_GetAllScope(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryUserStore()
	stash := NewUserStash(store)

	// One record without any grant, one with ALL_READ.
	private := newTestUser(t, "private@example.com", model.RoleGuest)
	public := newTestUser(t, "public@example.com", model.RoleGuest)
	caller := newTestUser(t, "caller@example.com", model.RoleGuest)

	_, err := stash.Set(ctx, private)
	require.NoError(t, err)
	_, err = stash.Set(ctx, public, GrantAllRead)
	require.NoError(t, err)
	_, err = stash.Set(ctx, caller)
	require.NoError(t, err)

	unprivileged, err := stash.GetAll(ctx, caller.VerifyKey, false)
	require.NoError(t, err)
	assert.Len(t, unprivileged, 2, "caller sees itself and the granted record")

	privileged, err := stash.GetAll(ctx, caller.VerifyKey, true)
	require.NoError(t, err)
	assert.Len(t, privileged, 3)
}

func TestUserStash_UpdateWriteCheck(t *testing.T) {
	ctx := context.Background()
	stash := NewUserStash(testutil.NewMemoryUserStore())

	owner := newTestUser(t, "owner@example.com", model.RoleGuest)
	other := newTestUser(t, "other@example.com", model.RoleGuest)

	_, err := stash.Set(ctx, owner, GrantAllRead)
	require.NoError(t, err)

	owner.Name = "renamed"
	_, err = stash.Update(ctx, owner.VerifyKey, owner, false)
	assert.NoError(t, err)

	owner.Name = "hijacked"
	_, err = stash.Update(ctx, other.VerifyKey, owner, false)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	// hasPermission is the service-level override.
	_, err = stash.Update(ctx, other.VerifyKey, owner, true)
	assert.NoError(t, err)
}

func TestUserStash_ConcurrentDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	stash := NewUserStash(testutil.NewMemoryUserStore())

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := newTestUser(t, "race@example.com", model.RoleGuest)
			_, errs[i] = stash.Set(ctx, user)
		}(i)
	}
	wg.Wait()

	var winners int
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, model.ErrAlreadyExists)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent registration must win")
}

func TestUserStash_AdminVerifyKey(t *testing.T) {
	ctx := context.Background()
	stash := NewUserStash(testutil.NewMemoryUserStore())

	_, err := stash.AdminVerifyKey(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	older := newTestUser(t, "first@example.com", model.RoleAdmin)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newTestUser(t, "second@example.com", model.RoleAdmin)

	_, err = stash.Set(ctx, older)
	require.NoError(t, err)
	_, err = stash.Set(ctx, newer)
	require.NoError(t, err)

	key, err := stash.AdminVerifyKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.VerifyKey, key, "oldest admin is the root administrator")
}
