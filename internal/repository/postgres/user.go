package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bayegaspard/datasite/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const uniqueViolation = "23505"

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, email, name, password_hash, verify_key, signing_key_seed, role, notifications,
			  reset_token, reset_token_date, permissions, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var notifications []byte

	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.VerifyKey,
		&user.SigningKeySeed, &user.Role, &notifications, &user.ResetToken, &user.ResetTokenDate,
		&user.Permissions, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	if len(notifications) > 0 {
		if err := json.Unmarshal(notifications, &user.Notifications); err != nil {
			return model.User{}, fmt.Errorf("failed to decode notification prefs: %w", err)
		}
	}
	return user, nil
}

func (r *UserRepository) getBy(ctx context.Context, field string, value any) (model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1 AND deleted_at IS NULL`, userColumns, field)

	user, err := scanUser(r.db.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, &model.StoreError{Op: "users.get_by_" + field, Err: err}
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByVerifyKey(ctx context.Context, key model.VerifyKey) (model.User, error) {
	return r.getBy(ctx, "verify_key", string(key))
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (model.User, error) {
	return r.getBy(ctx, "reset_token", token)
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE deleted_at IS NULL ORDER BY created_at`, userColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, &model.StoreError{Op: "users.list", Err: err}
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, &model.StoreError{Op: "users.list", Err: err}
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StoreError{Op: "users.list", Err: err}
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	notifications, err := json.Marshal(user.Notifications)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode notification prefs: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO users (id, email, name, password_hash, verify_key, signing_key_seed, role, notifications, permissions, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING %s`, userColumns)

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.VerifyKey),
		user.SigningKeySeed, user.Role, notifications, user.Permissions, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, model.ErrAlreadyExists
		}
		return model.User{}, &model.StoreError{Op: "users.create", Err: err}
	}
	return saved, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.User) (model.User, error) {
	notifications, err := json.Marshal(user.Notifications)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to encode notification prefs: %w", err)
	}

	query := fmt.Sprintf(`UPDATE users
			  SET email = $2, name = $3, password_hash = $4, role = $5, notifications = $6,
			      reset_token = $7, reset_token_date = $8, permissions = $9, updated_at = now()
			  WHERE id = $1 AND deleted_at IS NULL
			  RETURNING %s`, userColumns)

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role,
		notifications, user.ResetToken, user.ResetTokenDate, user.Permissions,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, model.ErrAlreadyExists
		}
		return model.User{}, &model.StoreError{Op: "users.update", Err: err}
	}
	return saved, nil
}

// ConsumeResetToken spends the token in one conditional UPDATE so that of two
// concurrent attempts only the first can succeed.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, token string, passwordHash []byte, issuedAfter time.Time) (model.User, error) {
	query := fmt.Sprintf(`UPDATE users
			  SET password_hash = $2, reset_token = NULL, reset_token_date = NULL, updated_at = now()
			  WHERE reset_token = $1 AND reset_token_date > $3 AND deleted_at IS NULL
			  RETURNING %s`, userColumns)

	saved, err := scanUser(r.db.QueryRow(ctx, query, token, passwordHash, issuedAfter))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, &model.StoreError{Op: "users.consume_reset_token", Err: err}
	}
	return saved, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	var tag pgconn.CommandTag
	var err error
	if hard {
		tag, err = r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	} else {
		tag, err = r.db.Exec(ctx, `UPDATE users SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	}
	if err != nil {
		return &model.StoreError{Op: "users.delete", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
