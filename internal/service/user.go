package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/authz"
	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/stash"
)

// GenericResetMessage is returned from ForgotPassword regardless of whether
// the email resolved to an identity, so the endpoint cannot be used to probe
// which addresses are registered.
const GenericResetMessage = "If the email is valid, we sent a password reset token to your email."

// ResetTokenConfig controls reset token generation and validity.
type ResetTokenConfig struct {
	ASCII   bool
	Numbers bool
	Length  int
	Expiry  time.Duration
}

// User implements identity lifecycle: registration, credential exchange,
// profile updates, role elevation and the password reset protocol.
type User struct {
	users      *stash.UserStash
	settings   *stash.SettingsStash
	notifier   model.Notifier
	tokens     model.TokenManager
	serverType model.ServerType
	serverName string
	resetToken ResetTokenConfig
	logger     *logger.Logger
}

func NewUser(
	users *stash.UserStash,
	settings *stash.SettingsStash,
	notifier model.Notifier,
	tokens model.TokenManager,
	serverType model.ServerType,
	serverName string,
	resetToken ResetTokenConfig,
	l *logger.Logger,
) *User {
	return &User{
		users:      users,
		settings:   settings,
		notifier:   notifier,
		tokens:     tokens,
		serverType: serverType,
		serverName: serverName,
		resetToken: resetToken,
		logger:     l,
	}
}

// actor resolves the caller credential to its identity record. An unknown or
// empty credential yields a not-found denial rather than ErrNotFound, so the
// transport maps it to 403 instead of 404.
func (s *User) actor(ctx context.Context, caller model.VerifyKey) (model.User, error) {
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

// requesterRole maps a registration credential to a role. Unknown or absent
// credentials act as guests.
func (s *User) requesterRole(ctx context.Context, key model.VerifyKey) (model.User, model.Role) {
	if key == model.RootAuthority {
		return model.User{}, model.RoleGuest
	}
	requester, err := s.users.GetByVerifyKey(ctx, model.RootAuthority, key)
	if err != nil {
		return model.User{}, model.RoleGuest
	}
	return requester, requester.Role
}

// newIdentity builds a user record from a create request: fresh key pair,
// hashed password, default notification preferences.
func newIdentity(in model.UserCreate) (model.User, error) {
	if err := validateEmail(in.Email); err != nil {
		return model.User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return model.User{}, err
	}
	if !in.Role.Valid() {
		return model.User{}, &model.PolicyError{Field: "role", Msg: fmt.Sprintf("unknown role %d", in.Role)}
	}

	seed, key, err := model.GenerateKeyPair()
	if err != nil {
		return model.User{}, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	return model.User{
		ID:             uuid.New(),
		Email:          in.Email,
		Name:           in.Name,
		PasswordHash:   hash,
		VerifyKey:      key,
		SigningKeySeed: seed,
		Role:           in.Role,
		Notifications:  model.DefaultNotificationPrefs(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Register creates a new identity. When signup is disabled only requesters
// holding CAN_CREATE_USERS may register accounts. Roles above guest require
// the requester to pass the elevation rules.
func (s *User) Register(ctx context.Context, requestedBy model.VerifyKey, in model.UserCreate) (model.UserPrivateKey, error) {
	requester, role := s.requesterRole(ctx, requestedBy)

	settings, err := s.settings.Get(ctx, model.RootAuthority)
	if err != nil && !errors.Is(err, model.ErrNoSettingsFound) {
		return model.UserPrivateKey{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.SignupEnabled && !role.Has(model.CapabilityCreateUsers) {
		return model.UserPrivateKey{}, model.ErrRegistrationDisabled
	}

	user, err := newIdentity(in)
	if err != nil {
		return model.UserPrivateKey{}, err
	}
	if in.Role > model.RoleGuest {
		if err := authz.CanElevate(role, requester.ID, model.RoleGuest, user.ID, in.Role); err != nil {
			return model.UserPrivateKey{}, err
		}
	}

	saved, err := s.users.Set(ctx, user, stash.GrantAllRead)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return model.UserPrivateKey{}, fmt.Errorf("user with email %q: %w", in.Email, model.ErrAlreadyExists)
		}
		return model.UserPrivateKey{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.notifyOnboard(ctx, settings, saved)

	return model.UserPrivateKey{
		ID:             saved.ID,
		Email:          saved.Email,
		Role:           saved.Role,
		SigningKeySeed: saved.SigningKeySeed,
	}, nil
}

// Create adds an identity on behalf of a privileged caller and returns its
// view. Unlike Register it never returns credential material.
func (s *User) Create(ctx context.Context, caller model.VerifyKey, in model.UserCreate) (model.UserView, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.UserView{}, err
	}
	if !actor.Role.Has(model.CapabilityCreateUsers) {
		return model.UserView{}, model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"as a %s, you are not allowed to create users", actor.Role)
	}

	user, err := newIdentity(in)
	if err != nil {
		return model.UserView{}, err
	}
	if in.Role > model.RoleGuest {
		if err := authz.CanElevate(actor.Role, actor.ID, model.RoleGuest, user.ID, in.Role); err != nil {
			return model.UserView{}, err
		}
	}

	saved, err := s.users.Set(ctx, user, stash.GrantAllRead)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return model.UserView{}, fmt.Errorf("user with email %q: %w", in.Email, model.ErrAlreadyExists)
		}
		return model.UserView{}, fmt.Errorf("failed to create user: %w", err)
	}

	if settings, serr := s.settings.Get(ctx, model.RootAuthority); serr == nil {
		s.notifyOnboard(ctx, settings, saved)
	}

	return saved.View(), nil
}

// notifyOnboard sends the welcome message. Failures are logged and never
// surface to the registration path.
func (s *User) notifyOnboard(ctx context.Context, settings model.Settings, user model.User) {
	if s.notifier == nil || !settings.NotificationsEnabled || !user.Notifications[model.ChannelEmail] {
		return
	}

	body := settings.WelcomeMessage
	if body == "" {
		body = fmt.Sprintf("Welcome to %s, %s!", s.serverName, user.Name)
	}
	n := model.Notification{
		Subject:  fmt.Sprintf("Welcome to %s", s.serverName),
		To:       user.VerifyKey,
		ToEmail:  user.Email,
		Body:     body,
		Channels: []model.NotifierChannel{model.ChannelEmail},
		Template: model.TemplateOnboard,
	}

	go func(ctx context.Context) {
		if err := s.notifier.Send(ctx, n); err != nil {
			s.logger.Error("failed to send onboarding notification", "email", user.Email, "error", err)
		}
	}(context.WithoutCancel(ctx))
}

// View returns another identity's view. Requires at least a data scientist.
func (s *User) View(ctx context.Context, caller model.VerifyKey, id uuid.UUID) (model.UserView, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.UserView{}, err
	}
	if actor.Role.Compare(model.RoleDataScientist) < 0 {
		return model.UserView{}, model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"as a %s, you are not allowed to view users", actor.Role)
	}

	user, err := s.users.GetByID(ctx, caller, id)
	if err != nil {
		return model.UserView{}, err
	}
	return user.View(), nil
}

// GetCurrentUser returns the caller's own view.
func (s *User) GetCurrentUser(ctx context.Context, caller model.VerifyKey) (model.UserView, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.UserView{}, err
	}
	return actor.View(), nil
}

// UserVerifyKey resolves an email to its verify key. Internal lookup used
// when wiring notifications and peer association.
func (s *User) UserVerifyKey(ctx context.Context, email string) (model.VerifyKey, error) {
	user, err := s.users.GetByEmail(ctx, model.RootAuthority, email)
	if err != nil {
		return "", err
	}
	return user.VerifyKey, nil
}

// AdminVerifyKey returns the verify key of the oldest admin account.
func (s *User) AdminVerifyKey(ctx context.Context) (model.VerifyKey, error) {
	return s.users.AdminVerifyKey(ctx)
}

// GetAll lists identities visible to the caller, one fixed-size page at a
// time. Listing is restricted to data owners and admins. A page index past
// the end yields an empty page with the total preserved.
func (s *User) GetAll(ctx context.Context, caller model.VerifyKey, pageSize, pageIndex int) (model.UserPage, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.UserPage{}, err
	}
	if actor.Role.Compare(model.RoleDataOwner) < 0 {
		return model.UserPage{}, model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"as a %s, you are not allowed to list users", actor.Role)
	}

	users, err := s.users.GetAll(ctx, caller, true)
	if err != nil {
		return model.UserPage{}, fmt.Errorf("failed to list users: %w", err)
	}

	views := make([]model.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return paginate(views, pageSize, pageIndex), nil
}

// Search filters the visible identities by the given criteria.
func (s *User) Search(ctx context.Context, caller model.VerifyKey, q model.UserSearch, pageSize, pageIndex int) (model.UserPage, error) {
	if q.Empty() {
		return model.UserPage{}, &model.PolicyError{Field: "search", Msg: "invalid search parameters"}
	}

	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.UserPage{}, err
	}
	if actor.Role.Compare(model.RoleDataOwner) < 0 {
		return model.UserPage{}, model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"as a %s, you are not allowed to search users", actor.Role)
	}

	users, err := s.users.GetAll(ctx, caller, true)
	if err != nil {
		return model.UserPage{}, fmt.Errorf("failed to list users: %w", err)
	}

	var views []model.UserView
	for _, u := range users {
		if matchesSearch(u, q) {
			views = append(views, u.View())
		}
	}
	return paginate(views, pageSize, pageIndex), nil
}

func matchesSearch(u model.User, q model.UserSearch) bool {
	if q.Email != "" && u.Email != q.Email {
		return false
	}
	if q.Name != "" && u.Name != q.Name {
		return false
	}
	if q.VerifyKey != "" && u.VerifyKey != q.VerifyKey {
		return false
	}
	if q.Role != nil && u.Role != *q.Role {
		return false
	}
	return true
}

func paginate(views []model.UserView, pageSize, pageIndex int) model.UserPage {
	total := len(views)
	if pageSize <= 0 {
		return model.UserPage{Users: views, Total: total}
	}
	start := pageIndex * pageSize
	if pageIndex < 0 || start >= total {
		return model.UserPage{Users: []model.UserView{}, Total: total}
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return model.UserPage{Users: views[start:end], Total: total}
}

// Update applies a partial update to the target identity. Every requested
// change is authorized before anything is written; a single denied field
// fails the whole update.
func (s *User) Update(ctx context.Context, caller model.VerifyKey, targetID uuid.UUID, patch model.UserPatch) (model.UserView, error) {
	if patch.Empty() {
		return model.UserView{}, &model.PolicyError{Field: "patch", Msg: "no fields to update"}
	}

	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.UserView{}, err
	}

	target, err := s.users.GetByID(ctx, model.RootAuthority, targetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.UserView{}, model.ErrNotFound
		}
		return model.UserView{}, fmt.Errorf("failed to load user: %w", err)
	}

	if patch.Role != nil && *patch.Role != target.Role {
		if !patch.Role.Valid() {
			return model.UserView{}, &model.PolicyError{Field: "role", Msg: fmt.Sprintf("unknown role %d", *patch.Role)}
		}
		if err := authz.CanElevate(actor.Role, actor.ID, target.Role, target.ID, *patch.Role); err != nil {
			return model.UserView{}, err
		}
	}
	if fields := patchFields(patch); len(fields) > 0 {
		if err := authz.CanEditFields(actor.Role, actor.ID, target.ID, fields); err != nil {
			return model.UserView{}, err
		}
	}

	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return model.UserView{}, err
		}
		target.Email = *patch.Email
	}
	if patch.Name != nil {
		target.Name = *patch.Name
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return model.UserView{}, err
		}
		hash, err := hashPassword(*patch.Password)
		if err != nil {
			return model.UserView{}, err
		}
		target.PasswordHash = hash
	}
	if patch.Notifications != nil {
		target.Notifications = patch.Notifications
	}
	if patch.Role != nil {
		target.Role = *patch.Role
	}

	saved, err := s.users.Update(ctx, caller, target, true)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return model.UserView{}, fmt.Errorf("user with email %q: %w", target.Email, model.ErrAlreadyExists)
		}
		return model.UserView{}, fmt.Errorf("failed to update user: %w", err)
	}

	// Whenever the resulting identity is an admin, its email flows into the
	// server settings so the admin notification channel keeps working. This
	// covers both email changes and promotions to the admin role.
	if saved.Role == model.RoleAdmin {
		s.propagateAdminEmail(ctx, saved.Email)
	}

	return saved.View(), nil
}

// patchFields names the non-role attributes a patch touches.
func patchFields(patch model.UserPatch) []authz.Field {
	var fields []authz.Field
	if patch.Email != nil {
		fields = append(fields, authz.FieldEmail)
	}
	if patch.Name != nil {
		fields = append(fields, authz.FieldName)
	}
	if patch.Password != nil {
		fields = append(fields, authz.FieldPassword)
	}
	if patch.Notifications != nil {
		fields = append(fields, authz.FieldNotifications)
	}
	return fields
}

func (s *User) propagateAdminEmail(ctx context.Context, email string) {
	settings, err := s.settings.Get(ctx, model.RootAuthority)
	if err != nil {
		s.logger.Error("failed to load settings for admin email propagation", "error", err)
		return
	}
	settings.AdminEmail = email
	if _, err := s.settings.Update(ctx, model.RootAuthority, settings, true); err != nil {
		s.logger.Error("failed to propagate admin email to settings", "error", err)
	}
}

// Delete soft-deletes the target identity under the deletion matrix.
func (s *User) Delete(ctx context.Context, caller model.VerifyKey, targetID uuid.UUID) error {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return err
	}

	target, err := s.users.GetByID(ctx, model.RootAuthority, targetID)
	if err != nil {
		return err
	}
	if err := authz.CanDelete(actor.Role, actor.ID, target.Role, target.ID); err != nil {
		return err
	}

	if err := s.users.DeleteByID(ctx, caller, targetID, false, true); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", "target", targetID, "actor", actor.ID)
	return nil
}

// ExchangeCredentials verifies an email and password pair and returns the
// identity's private credential handle plus a session token. The error is a
// single generic one for unknown email and wrong password alike.
func (s *User) ExchangeCredentials(ctx context.Context, email, password string) (model.UserPrivateKey, string, error) {
	user, err := s.users.GetByEmail(ctx, model.RootAuthority, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.UserPrivateKey{}, "", model.ErrInvalidCredentials
		}
		return model.UserPrivateKey{}, "", fmt.Errorf("failed to load user: %w", err)
	}
	if !checkPassword(user.PasswordHash, password) {
		return model.UserPrivateKey{}, "", model.ErrInvalidCredentials
	}

	if s.serverType == model.ServerTypeEnclave && user.Role == model.RoleAdmin {
		return model.UserPrivateKey{}, "", model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"admins are not allowed to login to enclaves")
	}

	token, err := s.tokens.GenerateSessionToken(user.ID, user.VerifyKey)
	if err != nil {
		return model.UserPrivateKey{}, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	return model.UserPrivateKey{
		ID:             user.ID,
		Email:          user.Email,
		Role:           user.Role,
		SigningKeySeed: user.SigningKeySeed,
	}, token, nil
}

// ForgotPassword starts a self-service password reset. It always returns the
// same generic message. No token is ever issued for admin accounts. When the
// user cannot receive email, the admin channel is notified instead so an
// operator can run a manual reset.
func (s *User) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, model.RootAuthority, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return GenericResetMessage, nil
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user.Role == model.RoleAdmin {
		s.logger.Info("ignoring password reset request for admin account", "user", user.ID)
		return GenericResetMessage, nil
	}

	settings, err := s.settings.Get(ctx, model.RootAuthority)
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}

	deliverable := settings.NotificationsEnabled && user.Notifications[model.ChannelEmail]
	if !deliverable {
		s.notifyAdminResetRequest(ctx, settings, user)
		return GenericResetMessage, nil
	}

	token, err := s.issueResetToken(ctx, &user)
	if err != nil {
		return "", err
	}

	n := model.Notification{
		Subject:  fmt.Sprintf("Password reset on %s", s.serverName),
		ToEmail:  user.Email,
		To:       user.VerifyKey,
		Body:     fmt.Sprintf("Your password reset token is: %s\nIt expires in %s.", token, s.resetToken.Expiry),
		Channels: []model.NotifierChannel{model.ChannelEmail},
		Template: model.TemplatePasswordReset,
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.Error("failed to send password reset notification", "email", user.Email, "error", err)
	}

	return GenericResetMessage, nil
}

func (s *User) notifyAdminResetRequest(ctx context.Context, settings model.Settings, user model.User) {
	if s.notifier == nil || settings.AdminEmail == "" {
		s.logger.Info("password reset requested but user is unreachable by email", "user", user.ID)
		return
	}
	n := model.Notification{
		Subject:  fmt.Sprintf("Password reset requested on %s", s.serverName),
		ToEmail:  settings.AdminEmail,
		Body:     fmt.Sprintf("User %s requested a password reset but cannot receive email. Issue a token manually.", user.Email),
		Channels: []model.NotifierChannel{model.ChannelEmail},
		Template: model.TemplatePlain,
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.Error("failed to notify admin about reset request", "error", err)
	}
}

// RequestPasswordReset issues a reset token on behalf of an admin and hands
// the raw token back for out-of-band delivery. Admin accounts themselves can
// never be reset this way.
func (s *User) RequestPasswordReset(ctx context.Context, caller model.VerifyKey, targetID uuid.UUID) (string, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return "", err
	}
	if actor.Role != model.RoleAdmin {
		return "", model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"as a %s, you are not allowed to issue password reset tokens", actor.Role)
	}

	target, err := s.users.GetByID(ctx, model.RootAuthority, targetID)
	if err != nil {
		return "", err
	}
	if target.Role == model.RoleAdmin {
		return "", model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"admin accounts cannot be reset through the token protocol")
	}

	return s.issueResetToken(ctx, &target)
}

func (s *User) issueResetToken(ctx context.Context, user *model.User) (string, error) {
	token, err := generateResetToken(s.resetToken)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	user.ResetToken = &token
	user.ResetTokenDate = &now

	if _, err := s.users.Update(ctx, model.RootAuthority, *user, true); err != nil {
		return "", fmt.Errorf("failed to persist reset token: %w", err)
	}
	return token, nil
}

// ResetPassword spends a reset token and installs a new password. The token
// is consumed only after the new password passes policy, so a rejected
// password leaves the token usable.
func (s *User) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	issuedAfter := time.Now().UTC().Add(-s.resetToken.Expiry)
	if user.ResetTokenDate == nil || !user.ResetTokenDate.After(issuedAfter) {
		return model.ErrInvalidOrExpiredToken
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := s.users.ConsumeResetToken(ctx, token, hash, issuedAfter); err != nil {
		// Lost a race against a concurrent reset; the token is spent.
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	return nil
}

// EnableNotifications turns on one of the caller's notification channels.
func (s *User) EnableNotifications(ctx context.Context, caller model.VerifyKey, channel model.NotifierChannel) (model.UserView, error) {
	return s.setNotificationPref(ctx, caller, channel, true)
}

// DisableNotifications turns off one of the caller's notification channels.
func (s *User) DisableNotifications(ctx context.Context, caller model.VerifyKey, channel model.NotifierChannel) (model.UserView, error) {
	return s.setNotificationPref(ctx, caller, channel, false)
}

func (s *User) setNotificationPref(ctx context.Context, caller model.VerifyKey, channel model.NotifierChannel, enabled bool) (model.UserView, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		return model.UserView{}, err
	}
	if actor.Notifications == nil {
		actor.Notifications = model.DefaultNotificationPrefs()
	}
	actor.Notifications[channel] = enabled

	saved, err := s.users.Update(ctx, caller, actor, false)
	if err != nil {
		return model.UserView{}, fmt.Errorf("failed to update notification preferences: %w", err)
	}
	return saved.View(), nil
}

// EnsureRootAdmin creates the bootstrap admin account on first start. An
// existing account with the configured email is left untouched.
func (s *User) EnsureRootAdmin(ctx context.Context, email, name, password string) error {
	_, err := s.users.GetByEmail(ctx, model.RootAuthority, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to check root admin: %w", err)
	}

	user, err := newIdentity(model.UserCreate{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("invalid root admin credentials: %w", err)
	}

	if _, err := s.users.Set(ctx, user, stash.GrantAllRead); err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create root admin: %w", err)
	}
	s.logger.Info("root admin created", "email", email)
	return nil
}
