package authz

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayegaspard/datasite/internal/model"
)

func TestCanElevate_SelfElevationAlwaysDenied(t *testing.T) {
	id := uuid.New()
	roles := []model.Role{model.RoleGuest, model.RoleDataScientist, model.RoleDataOwner, model.RoleAdmin}

	for _, current := range roles {
		for _, target := range roles {
			if current == target {
				continue
			}
			err := CanElevate(current, id, current, id, target)
			require.Error(t, err, "%s changing own role to %s must fail", current, target)

			var denied *model.PermissionDeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, model.ReasonSelfElevation, denied.Reason)
		}
	}
}

func TestCanElevate_SelfNoopAllowed(t *testing.T) {
	id := uuid.New()
	assert.NoError(t, CanElevate(model.RoleDataOwner, id, model.RoleDataOwner, id, model.RoleDataOwner))
}

func TestCanElevate_Admin(t *testing.T) {
	actor, target := uuid.New(), uuid.New()

	// Admins may set any role on anyone else, promotion to admin included.
	assert.NoError(t, CanElevate(model.RoleAdmin, actor, model.RoleGuest, target, model.RoleAdmin))
	assert.NoError(t, CanElevate(model.RoleAdmin, actor, model.RoleAdmin, target, model.RoleGuest))
}

func TestCanElevate_DataOwner(t *testing.T) {
	actor, target := uuid.New(), uuid.New()

	tests := []struct {
		name        string
		targetRole  model.Role
		newRole     model.Role
		wantAllowed bool
	}{
		{"guest to data scientist", model.RoleGuest, model.RoleDataScientist, true},
		{"data scientist to guest", model.RoleDataScientist, model.RoleGuest, true},
		{"guest to data owner", model.RoleGuest, model.RoleDataOwner, false},
		{"data owner to guest", model.RoleDataOwner, model.RoleGuest, false},
		{"data scientist to admin", model.RoleDataScientist, model.RoleAdmin, false},
		{"admin to guest", model.RoleAdmin, model.RoleGuest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanElevate(model.RoleDataOwner, actor, tt.targetRole, target, tt.newRole)
			if tt.wantAllowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var denied *model.PermissionDeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, model.ReasonRoleInsufficient, denied.Reason)
		})
	}
}

func TestCanElevate_LowRolesDenied(t *testing.T) {
	actor, target := uuid.New(), uuid.New()

	for _, role := range []model.Role{model.RoleGuest, model.RoleDataScientist} {
		err := CanElevate(role, actor, model.RoleGuest, target, model.RoleDataScientist)
		assert.ErrorIs(t, err, model.ErrPermissionDenied, "%s must not elevate anyone", role)
	}
}

func TestCanDelete(t *testing.T) {
	actor, target := uuid.New(), uuid.New()

	tests := []struct {
		name        string
		actorRole   model.Role
		targetRole  model.Role
		wantAllowed bool
	}{
		{"admin deletes admin", model.RoleAdmin, model.RoleAdmin, true},
		{"admin deletes guest", model.RoleAdmin, model.RoleGuest, true},
		{"data owner deletes guest", model.RoleDataOwner, model.RoleGuest, true},
		{"data owner deletes data scientist", model.RoleDataOwner, model.RoleDataScientist, true},
		{"data owner deletes data owner", model.RoleDataOwner, model.RoleDataOwner, false},
		{"data owner deletes admin", model.RoleDataOwner, model.RoleAdmin, false},
		{"data scientist deletes guest", model.RoleDataScientist, model.RoleGuest, false},
		{"guest deletes guest", model.RoleGuest, model.RoleGuest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDelete(tt.actorRole, actor, tt.targetRole, target)
			if tt.wantAllowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, model.ErrPermissionDenied)
			}
		})
	}
}

func TestCanDelete_AdminSelf(t *testing.T) {
	id := uuid.New()
	assert.NoError(t, CanDelete(model.RoleAdmin, id, model.RoleAdmin, id))
}

func TestCanEditFields(t *testing.T) {
	actor, target := uuid.New(), uuid.New()

	t.Run("immutable field denied for everyone", func(t *testing.T) {
		err := CanEditFields(model.RoleAdmin, actor, actor, []Field{FieldCreatedDate})
		require.Error(t, err)
		var denied *model.PermissionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, model.ReasonImmutableField, denied.Reason)
	})

	t.Run("self edit allowed without capability", func(t *testing.T) {
		err := CanEditFields(model.RoleGuest, actor, actor, []Field{FieldName, FieldEmail})
		assert.NoError(t, err)
	})

	t.Run("editing others requires manage users", func(t *testing.T) {
		err := CanEditFields(model.RoleDataScientist, actor, target, []Field{FieldName})
		assert.True(t, errors.Is(err, model.ErrPermissionDenied))

		assert.NoError(t, CanEditFields(model.RoleDataOwner, actor, target, []Field{FieldName}))
		assert.NoError(t, CanEditFields(model.RoleAdmin, actor, target, []Field{FieldName}))
	})
}

func TestImmutable(t *testing.T) {
	assert.True(t, Immutable(FieldCreatedDate))
	assert.True(t, Immutable(FieldUpdatedDate))
	assert.True(t, Immutable(FieldDeletedDate))
	assert.False(t, Immutable(FieldEmail))
	assert.False(t, Immutable(FieldRole))
}
