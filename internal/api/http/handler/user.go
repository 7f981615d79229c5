package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/service"
)

// User exposes identity operations over HTTP.
type User struct {
	service        *service.User
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewUser(service *service.User, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{service: service, contextManager: contextManager, logger: logger}
}

// actor pulls the authenticated caller out of the request context. The
// authenticate middleware guarantees it is set on protected routes.
func (h *User) actor(r *http.Request) (model.VerifyKey, bool) {
	return h.contextManager.GetActorFromContext(r.Context())
}

type userViewResponse struct {
	ID            uuid.UUID                       `json:"id"`
	Email         string                          `json:"email"`
	Name          string                          `json:"name"`
	Role          string                          `json:"role"`
	Notifications map[model.NotifierChannel]bool  `json:"notifications"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
}

func toUserResponse(v model.UserView) userViewResponse {
	return userViewResponse{
		ID:            v.ID,
		Email:         v.Email,
		Name:          v.Name,
		Role:          v.Role.String(),
		Notifications: v.Notifications,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

type registerRequest struct {
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type privateKeyResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	SigningKeySeed string    `json:"signing_key_seed"`
}

// Register handles POST /register. The caller may be anonymous; signed-in
// callers pass their credential so privileged registration works when
// signup is disabled.
func (h *User) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	requestedBy, _ := h.contextManager.GetActorFromContext(r.Context())
	key, err := h.service.Register(r.Context(), requestedBy, model.UserCreate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, privateKeyResponse{
		ID:             key.ID,
		Email:          key.Email,
		Role:           key.Role.String(),
		SigningKeySeed: key.SigningKeySeed,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string             `json:"token"`
	Key   privateKeyResponse `json:"key"`
}

// Login handles POST /login: credential exchange for a session token.
func (h *User) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	key, token, err := h.service.ExchangeCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		Key: privateKeyResponse{
			ID:             key.ID,
			Email:          key.Email,
			Role:           key.Role.String(),
			SigningKeySeed: key.SigningKeySeed,
		},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ForgotPassword handles POST /forgot_password. The response is identical
// whether or not the email resolved to an account.
func (h *User) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	message, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword handles POST /reset_password: spends a reset token.
func (h *User) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

// Create handles POST /users: privileged account creation.
func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.service.Create(r.Context(), caller, model.UserCreate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(view))
}

// Me handles GET /users/me.
func (h *User) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	view, err := h.service.GetCurrentUser(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(view))
}

type userPageResponse struct {
	Users []userViewResponse `json:"users"`
	Total int                `json:"total"`
}

func toPageResponse(page model.UserPage) userPageResponse {
	users := make([]userViewResponse, 0, len(page.Users))
	for _, v := range page.Users {
		users = append(users, toUserResponse(v))
	}
	return userPageResponse{Users: users, Total: page.Total}
}

// List handles GET /users with optional page_size and page_index params.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	pageSize := queryInt(r, "page_size", 0)
	pageIndex := queryInt(r, "page_index", 0)

	page, err := h.service.GetAll(r.Context(), caller, pageSize, pageIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

type searchRequest struct {
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	VerifyKey string      `json:"verify_key"`
	Role      *model.Role `json:"role"`
}

// Search handles POST /users/search.
func (h *User) Search(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pageSize := queryInt(r, "page_size", 0)
	pageIndex := queryInt(r, "page_index", 0)

	page, err := h.service.Search(r.Context(), caller, model.UserSearch{
		Email:     req.Email,
		Name:      req.Name,
		VerifyKey: model.VerifyKey(req.VerifyKey),
		Role:      req.Role,
	}, pageSize, pageIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

// Get handles GET /users/{id}.
func (h *User) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &model.PolicyError{Field: "id", Msg: "malformed user id"})
		return
	}

	view, err := h.service.View(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(view))
}

type updateRequest struct {
	Email         *string                        `json:"email"`
	Name          *string                        `json:"name"`
	Password      *string                        `json:"password"`
	Role          *model.Role                    `json:"role"`
	Notifications map[model.NotifierChannel]bool `json:"notifications"`
}

// Update handles PATCH /users/{id}.
func (h *User) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &model.PolicyError{Field: "id", Msg: "malformed user id"})
		return
	}

	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.service.Update(r.Context(), caller, id, model.UserPatch{
		Email:         req.Email,
		Name:          req.Name,
		Password:      req.Password,
		Role:          req.Role,
		Notifications: req.Notifications,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(view))
}

// Delete handles DELETE /users/{id}.
func (h *User) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &model.PolicyError{Field: "id", Msg: "malformed user id"})
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetTokenResponse struct {
	Token string `json:"token"`
}

// RequestResetToken handles POST /users/{id}/reset_token: an admin obtains
// a raw reset token for out-of-band delivery.
func (h *User) RequestResetToken(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &model.PolicyError{Field: "id", Msg: "malformed user id"})
		return
	}

	token, err := h.service.RequestPasswordReset(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resetTokenResponse{Token: token})
}

type notificationRequest struct {
	Channel model.NotifierChannel `json:"channel"`
	Enabled bool                  `json:"enabled"`
}

// Notifications handles POST /users/me/notifications: toggles one of the
// caller's own channels.
func (h *User) Notifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req notificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var view model.UserView
	var err error
	if req.Enabled {
		view, err = h.service.EnableNotifications(r.Context(), caller, req.Channel)
	} else {
		view, err = h.service.DisableNotifications(r.Context(), caller, req.Channel)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(view))
}
