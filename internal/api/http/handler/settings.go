package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/service"
)

// Settings exposes server settings operations over HTTP.
type Settings struct {
	service        *service.Settings
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewSettings(service *service.Settings, contextManager model.ContextManager, logger *logger.Logger) *Settings {
	return &Settings{service: service, contextManager: contextManager, logger: logger}
}

func (h *Settings) actor(r *http.Request) (model.VerifyKey, bool) {
	return h.contextManager.GetActorFromContext(r.Context())
}

type settingsResponse struct {
	ID                      uuid.UUID `json:"id"`
	Name                    string    `json:"name"`
	Organization            string    `json:"organization"`
	Description             string    `json:"description"`
	OnBoard                 bool      `json:"on_board"`
	SignupEnabled           bool      `json:"signup_enabled"`
	AdminEmail              string    `json:"admin_email"`
	NotificationsEnabled    bool      `json:"notifications_enabled"`
	AssociationAutoApproval bool      `json:"association_auto_approval"`
	WelcomeMessage          string    `json:"welcome_message"`
	WelcomeIsHTML           bool      `json:"welcome_is_html"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func toSettingsResponse(s model.Settings) settingsResponse {
	return settingsResponse{
		ID:                      s.ID,
		Name:                    s.Name,
		Organization:            s.Organization,
		Description:             s.Description,
		OnBoard:                 s.OnBoard,
		SignupEnabled:           s.SignupEnabled,
		AdminEmail:              s.AdminEmail,
		NotificationsEnabled:    s.NotificationsEnabled,
		AssociationAutoApproval: s.AssociationAutoApproval,
		WelcomeMessage:          s.WelcomeMessage,
		WelcomeIsHTML:           s.WelcomeIsHTML,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
}

// Get handles GET /settings.
func (h *Settings) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	settings, err := h.service.Get(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

type settingsPatchRequest struct {
	Name                    *string `json:"name"`
	Organization            *string `json:"organization"`
	Description             *string `json:"description"`
	OnBoard                 *bool   `json:"on_board"`
	SignupEnabled           *bool   `json:"signup_enabled"`
	AdminEmail              *string `json:"admin_email"`
	NotificationsEnabled    *bool   `json:"notifications_enabled"`
	AssociationAutoApproval *bool   `json:"association_auto_approval"`
	WelcomeMessage          *string `json:"welcome_message"`
	WelcomeIsHTML           *bool   `json:"welcome_is_html"`
}

// Update handles PATCH /settings.
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req settingsPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.service.Update(r.Context(), caller, model.SettingsPatch{
		Name:                    req.Name,
		Organization:            req.Organization,
		Description:             req.Description,
		OnBoard:                 req.OnBoard,
		SignupEnabled:           req.SignupEnabled,
		AdminEmail:              req.AdminEmail,
		NotificationsEnabled:    req.NotificationsEnabled,
		AssociationAutoApproval: req.AssociationAutoApproval,
		WelcomeMessage:          req.WelcomeMessage,
		WelcomeIsHTML:           req.WelcomeIsHTML,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

type welcomeRequest struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// WelcomeCustomize handles POST /settings/welcome.
func (h *Settings) WelcomeCustomize(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req welcomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.service.WelcomeCustomize(r.Context(), caller, req.Markdown, req.HTML)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

type welcomePreviewResponse struct {
	Message string `json:"message"`
	IsHTML  bool   `json:"is_html"`
}

// WelcomePreview handles GET /settings/welcome.
func (h *Settings) WelcomePreview(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	message, isHTML, err := h.service.WelcomePreview(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, welcomePreviewResponse{Message: message, IsHTML: isHTML})
}
