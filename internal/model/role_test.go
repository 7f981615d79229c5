package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Compare(t *testing.T) {
	assert.Equal(t, -1, RoleGuest.Compare(RoleAdmin))
	assert.Equal(t, 1, RoleAdmin.Compare(RoleDataOwner))
	assert.Equal(t, 0, RoleDataScientist.Compare(RoleDataScientist))
}

func TestRole_Ordering(t *testing.T) {
	roles := []Role{RoleGuest, RoleDataScientist, RoleDataOwner, RoleAdmin}
	for i := 1; i < len(roles); i++ {
		assert.Equal(t, -1, roles[i-1].Compare(roles[i]),
			"%s must rank below %s", roles[i-1], roles[i])
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleGuest.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role(-1).Valid())
	assert.False(t, Role(4).Valid())
}

func TestRole_Capabilities(t *testing.T) {
	tests := []struct {
		role       Role
		capability Capability
		want       bool
	}{
		{RoleGuest, CapabilityCreateUsers, false},
		{RoleDataScientist, CapabilityManageUsers, false},
		{RoleDataOwner, CapabilityCreateUsers, true},
		{RoleDataOwner, CapabilityManageSettings, false},
		{RoleDataOwner, CapabilityToggleSignup, true},
		{RoleDataOwner, CapabilityToggleNotifications, false},
		{RoleAdmin, CapabilityManageSettings, true},
		{RoleAdmin, CapabilityApproveAssociations, true},
	}

	for _, tt := range tests {
		t.Run(tt.role.String()+"/"+string(tt.capability), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Has(tt.capability))
		})
	}
}

func TestRole_CapabilitiesAreStatic(t *testing.T) {
	// Admin holds every capability any other role holds.
	for _, role := range []Role{RoleGuest, RoleDataScientist, RoleDataOwner} {
		for _, c := range role.Capabilities() {
			assert.True(t, RoleAdmin.Has(c), "admin is missing %s held by %s", c, role)
		}
	}
}
