package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Settings is the server-wide configuration record. At most one row exists
// per server; updates are a read-modify-write over that row.
type Settings struct {
	ID                      uuid.UUID
	Name                    string
	Organization            string
	Description             string
	OnBoard                 bool
	SignupEnabled           bool
	AdminEmail              string
	NotificationsEnabled    bool
	AssociationAutoApproval bool
	WelcomeMessage          string
	WelcomeIsHTML           bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// SettingsPatch is a partial update; nil fields retain current values.
type SettingsPatch struct {
	Name                    *string
	Organization            *string
	Description             *string
	OnBoard                 *bool
	SignupEnabled           *bool
	AdminEmail              *string
	NotificationsEnabled    *bool
	AssociationAutoApproval *bool
	WelcomeMessage          *string
	WelcomeIsHTML           *bool
}

// SettingsStore is the persistence boundary for the settings singleton.
// Get returns ErrNoSettingsFound when the row is missing.
type SettingsStore interface {
	Get(ctx context.Context) (Settings, error)
	Create(ctx context.Context, settings Settings) (Settings, error)
	Update(ctx context.Context, settings Settings) (Settings, error)
}
