package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/bayegaspard/datasite/internal/model"
)

var _ model.SettingsStore = (*SettingsRepository)(nil)

type SettingsRepository struct {
	db *Connection
}

func NewSettingsRepository(db *Connection) *SettingsRepository {
	return &SettingsRepository{
		db: db,
	}
}

const settingsColumns = `id, name, organization, description, on_board, signup_enabled,
			  admin_email, notifications_enabled, association_auto_approval,
			  welcome_message, welcome_is_html, created_at, updated_at`

func scanSettings(row pgx.Row) (model.Settings, error) {
	var s model.Settings
	err := row.Scan(
		&s.ID, &s.Name, &s.Organization, &s.Description, &s.OnBoard, &s.SignupEnabled,
		&s.AdminEmail, &s.NotificationsEnabled, &s.AssociationAutoApproval,
		&s.WelcomeMessage, &s.WelcomeIsHTML, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Get returns the first (only) settings row.
func (r *SettingsRepository) Get(ctx context.Context) (model.Settings, error) {
	query := `SELECT ` + settingsColumns + ` FROM settings ORDER BY created_at LIMIT 1`

	settings, err := scanSettings(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Settings{}, model.ErrNoSettingsFound
		}
		return model.Settings{}, &model.StoreError{Op: "settings.get", Err: err}
	}
	return settings, nil
}

func (r *SettingsRepository) Create(ctx context.Context, settings model.Settings) (model.Settings, error) {
	query := `INSERT INTO settings (id, name, organization, description, on_board, signup_enabled,
		      admin_email, notifications_enabled, association_auto_approval, welcome_message, welcome_is_html)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		  RETURNING ` + settingsColumns

	saved, err := scanSettings(r.db.QueryRow(ctx, query,
		settings.ID, settings.Name, settings.Organization, settings.Description,
		settings.OnBoard, settings.SignupEnabled, settings.AdminEmail,
		settings.NotificationsEnabled, settings.AssociationAutoApproval,
		settings.WelcomeMessage, settings.WelcomeIsHTML,
	))
	if err != nil {
		return model.Settings{}, &model.StoreError{Op: "settings.create", Err: err}
	}
	return saved, nil
}

func (r *SettingsRepository) Update(ctx context.Context, settings model.Settings) (model.Settings, error) {
	query := `UPDATE settings
		  SET name = $2, organization = $3, description = $4, on_board = $5, signup_enabled = $6,
		      admin_email = $7, notifications_enabled = $8, association_auto_approval = $9,
		      welcome_message = $10, welcome_is_html = $11, updated_at = now()
		  WHERE id = $1
		  RETURNING ` + settingsColumns

	saved, err := scanSettings(r.db.QueryRow(ctx, query,
		settings.ID, settings.Name, settings.Organization, settings.Description,
		settings.OnBoard, settings.SignupEnabled, settings.AdminEmail,
		settings.NotificationsEnabled, settings.AssociationAutoApproval,
		settings.WelcomeMessage, settings.WelcomeIsHTML,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Settings{}, model.ErrNoSettingsFound
		}
		return model.Settings{}, &model.StoreError{Op: "settings.update", Err: err}
	}
	return saved, nil
}
