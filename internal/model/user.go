package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotifierChannel identifies a delivery channel for notifications.
type NotifierChannel string

const (
	ChannelEmail NotifierChannel = "email"
	ChannelSMS   NotifierChannel = "sms"
	ChannelSlack NotifierChannel = "slack"
	ChannelApp   NotifierChannel = "app"
)

// DefaultNotificationPrefs enables email only, matching the onboarding
// defaults of a freshly registered identity.
func DefaultNotificationPrefs() map[NotifierChannel]bool {
	return map[NotifierChannel]bool{
		ChannelEmail: true,
		ChannelSMS:   false,
		ChannelSlack: false,
		ChannelApp:   false,
	}
}

// User is a registered identity with a role and credentials.
type User struct {
	ID             uuid.UUID
	Email          string
	Name           string
	PasswordHash   []byte
	VerifyKey      VerifyKey
	SigningKeySeed string
	Role           Role
	Notifications  map[NotifierChannel]bool
	ResetToken     *string
	ResetTokenDate *time.Time
	Permissions    []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// View strips credential material from the record.
func (u User) View() UserView {
	return UserView{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Notifications: u.Notifications,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserView is the only user shape returned to callers. It carries no
// password hash, reset token or verify key.
type UserView struct {
	ID            uuid.UUID
	Email         string
	Name          string
	Role          Role
	Notifications map[NotifierChannel]bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserPrivateKey is the credential handle returned from register and login.
type UserPrivateKey struct {
	ID             uuid.UUID
	Email          string
	Role           Role
	SigningKeySeed string
}

// UserCreate carries the fields of a registration or admin-create request.
type UserCreate struct {
	Email    string
	Name     string
	Password string
	Role     Role
}

// UserPatch is a partial update; nil fields are left untouched. Either every
// requested change is authorized and applied or the whole update fails.
type UserPatch struct {
	Email         *string
	Name          *string
	Password      *string
	Role          *Role
	Notifications map[NotifierChannel]bool
}

// Empty reports whether the patch requests no changes at all.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Name == nil && p.Password == nil &&
		p.Role == nil && p.Notifications == nil
}

// UserSearch filters the user listing; zero-value fields are ignored.
type UserSearch struct {
	Email     string
	Name      string
	VerifyKey VerifyKey
	Role      *Role
}

// Empty reports whether no search parameter is set.
func (s UserSearch) Empty() bool {
	return s.Email == "" && s.Name == "" && s.VerifyKey == "" && s.Role == nil
}

// UserPage is one fixed-size page of a listing plus the total count, so the
// caller can compute page counts.
type UserPage struct {
	Users []UserView
	Total int
}

// UserStore is the persistence boundary for users. Implementations enforce
// email uniqueness inside Create and Update as a single atomic statement.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByVerifyKey(ctx context.Context, key VerifyKey) (User, error)
	GetByResetToken(ctx context.Context, token string) (User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	// ConsumeResetToken replaces the password hash and clears the token in
	// one conditional statement, so a token can never be spent twice.
	// Tokens issued at or before issuedAfter are treated as expired.
	ConsumeResetToken(ctx context.Context, token string, passwordHash []byte, issuedAfter time.Time) (User, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool) error
}
