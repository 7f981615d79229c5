package stash

import (
	"context"

	"github.com/bayegaspard/datasite/internal/model"
)

// settingsPolicy: the settings row is world-readable; writes go through the
// service layer's role gate and arrive with hasPermission set.
type settingsPolicy struct{}

func (settingsPolicy) CanRead(model.VerifyKey, model.Settings) bool  { return true }
func (settingsPolicy) CanWrite(model.VerifyKey, model.Settings) bool { return false }

// SettingsStash is the permission-checked adapter over the settings
// singleton.
type SettingsStash struct {
	Core[model.Settings]
	store model.SettingsStore
}

func NewSettingsStash(store model.SettingsStore) *SettingsStash {
	return &SettingsStash{Core: NewCore[model.Settings](settingsPolicy{}), store: store}
}

// Get returns the single settings row or ErrNoSettingsFound.
func (s *SettingsStash) Get(ctx context.Context, caller model.VerifyKey) (model.Settings, error) {
	settings, err := s.store.Get(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	return s.Readable(caller, settings)
}

// Set creates the settings row. Used only at bootstrap and by admins.
func (s *SettingsStash) Set(ctx context.Context, caller model.VerifyKey, settings model.Settings, hasPermission bool) (model.Settings, error) {
	if err := s.CheckWrite(caller, settings, hasPermission); err != nil {
		return model.Settings{}, err
	}
	return s.store.Create(ctx, settings)
}

// Update is a read-modify-write over the existing row.
func (s *SettingsStash) Update(ctx context.Context, caller model.VerifyKey, settings model.Settings, hasPermission bool) (model.Settings, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if err := s.CheckWrite(caller, current, hasPermission); err != nil {
		return model.Settings{}, err
	}
	settings.ID = current.ID
	return s.store.Update(ctx, settings)
}
