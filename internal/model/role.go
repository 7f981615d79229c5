package model

// Role is an ordered hierarchy of service roles. Ordering is total and is
// used directly for elevation comparisons.
type Role int

const (
	RoleGuest Role = iota
	RoleDataScientist
	RoleDataOwner
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleDataScientist:
		return "data_scientist"
	case RoleDataOwner:
		return "data_owner"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= RoleGuest && r <= RoleAdmin
}

// Compare returns -1, 0 or 1 depending on the ordinal relation of the roles.
func (r Role) Compare(other Role) int {
	switch {
	case r < other:
		return -1
	case r > other:
		return 1
	default:
		return 0
	}
}

// Capability names a discrete action a role is allowed to perform.
type Capability string

const (
	CapabilityCreateUsers         Capability = "CAN_CREATE_USERS"
	CapabilityManageUsers         Capability = "CAN_MANAGE_USERS"
	CapabilityEditRoles           Capability = "CAN_EDIT_ROLES"
	CapabilityManageSettings      Capability = "CAN_MANAGE_SETTINGS"
	CapabilityToggleSignup        Capability = "CAN_TOGGLE_SIGNUP"
	CapabilityToggleNotifications Capability = "CAN_TOGGLE_NOTIFICATIONS"
	CapabilityApproveAssociations Capability = "CAN_APPROVE_ASSOCIATIONS"
)

// roleCapabilities is the static role to capability table. Lookup is never
// dynamic.
var roleCapabilities = map[Role][]Capability{
	RoleGuest:         {},
	RoleDataScientist: {},
	RoleDataOwner: {
		CapabilityCreateUsers,
		CapabilityManageUsers,
		CapabilityEditRoles,
		CapabilityToggleSignup,
	},
	RoleAdmin: {
		CapabilityCreateUsers,
		CapabilityManageUsers,
		CapabilityEditRoles,
		CapabilityManageSettings,
		CapabilityToggleSignup,
		CapabilityToggleNotifications,
		CapabilityApproveAssociations,
	},
}

// Capabilities returns the capability set of the role.
func (r Role) Capabilities() []Capability {
	return roleCapabilities[r]
}

// Has reports whether the role holds the given capability.
func (r Role) Has(c Capability) bool {
	for _, rc := range roleCapabilities[r] {
		if rc == c {
			return true
		}
	}
	return false
}
