package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/stash"
)

// Settings manages the server-wide settings singleton. Most writes require
// CAN_MANAGE_SETTINGS; a few toggles carry their own narrower capability so
// data owners can flip them without full settings access.
type Settings struct {
	settings *stash.SettingsStash
	users    *stash.UserStash
	logger   *logger.Logger
}

func NewSettings(settings *stash.SettingsStash, users *stash.UserStash, l *logger.Logger) *Settings {
	return &Settings{
		settings: settings,
		users:    users,
		logger:   l,
	}
}

func (s *Settings) actor(ctx context.Context, caller model.VerifyKey) (model.User, error) {
	if caller == model.RootAuthority {
		return model.User{}, model.NewPermissionDenied(model.ReasonNotFound, "no identity for credentials")
	}
	actor, err := s.users.GetByVerifyKey(ctx, model.RootAuthority, caller)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.NewPermissionDenied(model.ReasonNotFound, "no identity for credentials")
		}
		return model.User{}, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return actor, nil
}

func (s *Settings) requireCapability(ctx context.Context, caller model.VerifyKey, c model.Capability) (model.User, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.User{}, err
	}
	if !actor.Role.Has(c) {
		return model.User{}, model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"as a %s, you are not allowed to change server settings", actor.Role)
	}
	return actor, nil
}

// Get returns the settings row. Missing settings are an error, never
// auto-created.
func (s *Settings) Get(ctx context.Context, caller model.VerifyKey) (model.Settings, error) {
	if _, err := s.actor(ctx, caller); err != nil {
		return model.Settings{}, err
	}
	return s.settings.Get(ctx, caller)
}

// Set replaces the settings row wholesale.
func (s *Settings) Set(ctx context.Context, caller model.VerifyKey, settings model.Settings) (model.Settings, error) {
	if _, err := s.requireCapability(ctx, caller, model.CapabilityManageSettings); err != nil {
		return model.Settings{}, err
	}
	return s.settings.Set(ctx, caller, settings, true)
}

// patchCapabilities maps each patch field to the capability it requires. The
// narrow toggles are deliberately weaker than CAN_MANAGE_SETTINGS.
func patchCapabilities(patch model.SettingsPatch) []model.Capability {
	var caps []model.Capability
	if patch.SignupEnabled != nil {
		caps = append(caps, model.CapabilityToggleSignup)
	}
	if patch.NotificationsEnabled != nil {
		caps = append(caps, model.CapabilityToggleNotifications)
	}
	if patch.AssociationAutoApproval != nil {
		caps = append(caps, model.CapabilityApproveAssociations)
	}
	if patch.Name != nil || patch.Organization != nil || patch.Description != nil ||
		patch.OnBoard != nil || patch.AdminEmail != nil ||
		patch.WelcomeMessage != nil || patch.WelcomeIsHTML != nil {
		caps = append(caps, model.CapabilityManageSettings)
	}
	return caps
}

// Update applies a partial settings update. Every touched field must be
// covered by one of the actor's capabilities or the whole patch is rejected.
func (s *Settings) Update(ctx context.Context, caller model.VerifyKey, patch model.SettingsPatch) (model.Settings, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.Settings{}, err
	}
	for _, c := range patchCapabilities(patch) {
		if !actor.Role.Has(c) {
			return model.Settings{}, model.NewPermissionDenied(model.ReasonRoleInsufficient,
				"as a %s, you are missing %s", actor.Role, c)
		}
	}

	current, err := s.settings.Get(ctx, caller)
	if err != nil {
		return model.Settings{}, err
	}
	applySettingsPatch(&current, patch)

	return s.settings.Update(ctx, caller, current, true)
}

func applySettingsPatch(settings *model.Settings, patch model.SettingsPatch) {
	if patch.Name != nil {
		settings.Name = *patch.Name
	}
	if patch.Organization != nil {
		settings.Organization = *patch.Organization
	}
	if patch.Description != nil {
		settings.Description = *patch.Description
	}
	if patch.OnBoard != nil {
		settings.OnBoard = *patch.OnBoard
	}
	if patch.SignupEnabled != nil {
		settings.SignupEnabled = *patch.SignupEnabled
	}
	if patch.AdminEmail != nil {
		settings.AdminEmail = *patch.AdminEmail
	}
	if patch.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *patch.NotificationsEnabled
	}
	if patch.AssociationAutoApproval != nil {
		settings.AssociationAutoApproval = *patch.AssociationAutoApproval
	}
	if patch.WelcomeMessage != nil {
		settings.WelcomeMessage = *patch.WelcomeMessage
	}
	if patch.WelcomeIsHTML != nil {
		settings.WelcomeIsHTML = *patch.WelcomeIsHTML
	}
}

// AllowGuestSignup flips open registration. Data owners hold the toggle
// capability without full settings access.
func (s *Settings) AllowGuestSignup(ctx context.Context, caller model.VerifyKey, enable bool) (model.Settings, error) {
	return s.Update(ctx, caller, model.SettingsPatch{SignupEnabled: &enable})
}

// EnableNotifications turns server-wide notification dispatch on or off.
func (s *Settings) EnableNotifications(ctx context.Context, caller model.VerifyKey, enable bool) (model.Settings, error) {
	return s.Update(ctx, caller, model.SettingsPatch{NotificationsEnabled: &enable})
}

// AllowAssociationAutoApproval controls whether peer association requests
// are approved without operator review.
func (s *Settings) AllowAssociationAutoApproval(ctx context.Context, caller model.VerifyKey, enable bool) (model.Settings, error) {
	return s.Update(ctx, caller, model.SettingsPatch{AssociationAutoApproval: &enable})
}

// WelcomeCustomize replaces the welcome message shown to new users. Exactly
// one of markdown and html must be provided.
func (s *Settings) WelcomeCustomize(ctx context.Context, caller model.VerifyKey, markdown, html string) (model.Settings, error) {
	if (markdown == "") == (html == "") {
		return model.Settings{}, &model.PolicyError{
			Field: "welcome_message",
			Msg:   "exactly one of markdown and html must be set",
		}
	}

	message, isHTML := markdown, false
	if html != "" {
		message, isHTML = html, true
	}
	return s.Update(ctx, caller, model.SettingsPatch{
		WelcomeMessage: &message,
		WelcomeIsHTML:  &isHTML,
	})
}

// WelcomePreview returns the current welcome message body and whether it is
// HTML. Markdown is returned as written; rendering is the client's job.
func (s *Settings) WelcomePreview(ctx context.Context, caller model.VerifyKey) (string, bool, error) {
	settings, err := s.Get(ctx, caller)
	if err != nil {
		return "", false, err
	}
	return settings.WelcomeMessage, settings.WelcomeIsHTML, nil
}

// EnsureSettings creates the default settings row on first start.
func (s *Settings) EnsureSettings(ctx context.Context, name, adminEmail string) error {
	_, err := s.settings.Get(ctx, model.RootAuthority)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNoSettingsFound) {
		return fmt.Errorf("failed to check settings: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.settings.Set(ctx, model.RootAuthority, model.Settings{
		ID:         uuid.New(),
		Name:       name,
		AdminEmail: adminEmail,
		OnBoard:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, true)
	if err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}
	s.logger.Info("server settings created", "name", name)
	return nil
}
