// Package authz holds the pure authorization decision functions. No state,
// no storage access; every denial carries a distinguishable reason.
package authz

import (
	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/model"
)

// Field names an updatable user attribute for field-level checks.
type Field string

const (
	FieldEmail         Field = "email"
	FieldName          Field = "name"
	FieldPassword      Field = "password"
	FieldRole          Field = "role"
	FieldNotifications Field = "notifications"
	FieldCreatedDate   Field = "created_date"
	FieldUpdatedDate   Field = "updated_date"
	FieldDeletedDate   Field = "deleted_date"
)

// immutableFields may never be edited regardless of role.
var immutableFields = map[Field]bool{
	FieldCreatedDate: true,
	FieldUpdatedDate: true,
	FieldDeletedDate: true,
}

// Immutable reports whether the field is immutable for everyone.
func Immutable(f Field) bool {
	return immutableFields[f]
}

// CanElevate decides whether an actor may change a target's role.
//
// Admins may set any role on anyone but themselves; self-elevation is never
// allowed for any role. A data owner may manipulate only identities strictly
// below its own level and only set them to levels strictly below its own
// level. Everyone else is denied.
func CanElevate(actorRole model.Role, actorID uuid.UUID, targetRole model.Role, targetID uuid.UUID, newRole model.Role) error {
	if actorID == targetID {
		if newRole == targetRole {
			return nil
		}
		return model.NewPermissionDenied(model.ReasonSelfElevation,
			"a %s cannot change its own role", actorRole)
	}

	switch actorRole {
	case model.RoleAdmin:
		return nil
	case model.RoleDataOwner:
		if actorRole.Compare(targetRole) > 0 && actorRole.Compare(newRole) > 0 {
			return nil
		}
	}
	return model.NewPermissionDenied(model.ReasonRoleInsufficient,
		"as a %s, you are not allowed to edit %s to %s", actorRole, targetRole, newRole)
}

// CanDelete decides whether an actor may delete a target identity. Admins
// may delete anyone including themselves; data owners may delete only
// strictly lower roles.
func CanDelete(actorRole model.Role, actorID uuid.UUID, targetRole model.Role, targetID uuid.UUID) error {
	switch actorRole {
	case model.RoleAdmin:
		return nil
	case model.RoleDataOwner:
		if targetRole == model.RoleGuest || targetRole == model.RoleDataScientist {
			return nil
		}
	}
	return model.NewPermissionDenied(model.ReasonRoleInsufficient,
		"as a %s you have no permission to delete a user with %s permission", actorRole, targetRole)
}

// CanEditFields decides whether an actor may apply the given non-role field
// edits to the target. Self-edits never require a capability; edits to
// another identity require CAN_MANAGE_USERS. Immutable fields are denied
// outright for everyone.
func CanEditFields(actorRole model.Role, actorID, targetID uuid.UUID, fields []Field) error {
	for _, f := range fields {
		if Immutable(f) {
			return model.NewPermissionDenied(model.ReasonImmutableField,
				"you are not allowed to modify %q", f)
		}
	}
	if actorID == targetID {
		return nil
	}
	if actorRole.Has(model.CapabilityManageUsers) {
		return nil
	}
	return model.NewPermissionDenied(model.ReasonRoleInsufficient,
		"as a %s, you are not allowed to edit users", actorRole)
}
