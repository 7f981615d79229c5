package stash

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/model"
)

// userPolicy: a user record is readable by its owner or by anyone when it
// carries the ALL_READ grant, and writable only by its owner. Role-based
// overrides are decided at the service layer and arrive as hasPermission.
type userPolicy struct{}

func (userPolicy) CanRead(caller model.VerifyKey, u model.User) bool {
	if u.VerifyKey == caller {
		return true
	}
	return slices.Contains(u.Permissions, string(GrantAllRead))
}

func (userPolicy) CanWrite(caller model.VerifyKey, u model.User) bool {
	return u.VerifyKey == caller
}

// UserStash is the permission-checked adapter over the user store.
type UserStash struct {
	Core[model.User]
	store model.UserStore
}

// NewUserStash builds a UserStash over the given store.
func NewUserStash(store model.UserStore) *UserStash {
	return &UserStash{Core: NewCore[model.User](userPolicy{}), store: store}
}

func (s *UserStash) GetByID(ctx context.Context, caller model.VerifyKey, id uuid.UUID) (model.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return s.Readable(caller, user)
}

func (s *UserStash) GetByEmail(ctx context.Context, caller model.VerifyKey, email string) (model.User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	return s.Readable(caller, user)
}

func (s *UserStash) GetByVerifyKey(ctx context.Context, caller model.VerifyKey, key model.VerifyKey) (model.User, error) {
	user, err := s.store.GetByVerifyKey(ctx, key)
	if err != nil {
		return model.User{}, err
	}
	return s.Readable(caller, user)
}

// GetByResetToken is always a root-scoped lookup; reset flows run with the
// server's own authority because the caller is unauthenticated.
func (s *UserStash) GetByResetToken(ctx context.Context, token string) (model.User, error) {
	return s.store.GetByResetToken(ctx, token)
}

// GetAll returns the users the caller may see. hasPermission widens the
// scope to every record; without it the listing is ownership-limited.
func (s *UserStash) GetAll(ctx context.Context, caller model.VerifyKey, hasPermission bool) ([]model.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.Filter(caller, users, hasPermission), nil
}

// Set inserts a new user. Creation is not gated on a caller identity; the
// service layer decides who may register. The email existence check and the
// insert are one atomic unit inside the store; a duplicate surfaces as
// ErrAlreadyExists.
func (s *UserStash) Set(ctx context.Context, user model.User, grants ...Grant) (model.User, error) {
	for _, g := range grants {
		if !slices.Contains(user.Permissions, string(g)) {
			user.Permissions = append(user.Permissions, string(g))
		}
	}
	return s.store.Create(ctx, user)
}

// Update replaces the stored record after checking write permission against
// its current state.
func (s *UserStash) Update(ctx context.Context, caller model.VerifyKey, user model.User, hasPermission bool) (model.User, error) {
	current, err := s.store.GetByID(ctx, user.ID)
	if err != nil {
		return model.User{}, err
	}
	if err := s.CheckWrite(caller, current, hasPermission); err != nil {
		return model.User{}, err
	}
	return s.store.Update(ctx, user)
}

// ConsumeResetToken atomically spends a reset token; see model.UserStore.
func (s *UserStash) ConsumeResetToken(ctx context.Context, token string, passwordHash []byte, issuedAfter time.Time) (model.User, error) {
	return s.store.ConsumeResetToken(ctx, token, passwordHash, issuedAfter)
}

// DeleteByID removes a user, logically unless hard is set. Gated identically
// to Update.
func (s *UserStash) DeleteByID(ctx context.Context, caller model.VerifyKey, id uuid.UUID, hard, hasPermission bool) error {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.CheckWrite(caller, current, hasPermission); err != nil {
		return err
	}
	return s.store.Delete(ctx, id, hard)
}

// AdminVerifyKey returns the verify key of the root administrator: the
// oldest identity holding the admin role.
func (s *UserStash) AdminVerifyKey(ctx context.Context) (model.VerifyKey, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return "", err
	}
	var admin *model.User
	for i := range users {
		if users[i].Role != model.RoleAdmin {
			continue
		}
		if admin == nil || users[i].CreatedAt.Before(admin.CreatedAt) {
			admin = &users[i]
		}
	}
	if admin == nil {
		return "", model.ErrNotFound
	}
	return admin.VerifyKey, nil
}
