package router

import (
	"net/http"

	"github.com/bayegaspard/datasite/internal/api/http/handler"
	"github.com/bayegaspard/datasite/internal/api/http/middleware"
	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
)

// Router wires handlers and middleware into the HTTP mux. Login, register
// and the password reset endpoints are open; everything else requires a
// session token.
type Router struct {
	users          *handler.User
	settings       *handler.Settings
	peers          *handler.Peer
	blobs          *handler.Blob
	tokens         model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

func New(
	users *handler.User,
	settings *handler.Settings,
	peers *handler.Peer,
	blobs *handler.Blob,
	tokens model.TokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		users:          users,
		settings:       settings,
		peers:          peers,
		blobs:          blobs,
		tokens:         tokens,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the full route table and returns the root handler.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.contextManager, r.logger)

	open := http.NewServeMux()
	open.HandleFunc("GET /{$}", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	open.HandleFunc("POST /login", r.users.Login)
	open.HandleFunc("POST /register", r.users.Register)
	open.HandleFunc("POST /forgot_password", r.users.ForgotPassword)
	open.HandleFunc("POST /reset_password", r.users.ResetPassword)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /users/me", r.users.Me)
	protected.HandleFunc("POST /users/me/notifications", r.users.Notifications)
	protected.HandleFunc("GET /users", r.users.List)
	protected.HandleFunc("POST /users", r.users.Create)
	protected.HandleFunc("POST /users/search", r.users.Search)
	protected.HandleFunc("GET /users/{id}", r.users.Get)
	protected.HandleFunc("PATCH /users/{id}", r.users.Update)
	protected.HandleFunc("DELETE /users/{id}", r.users.Delete)
	protected.HandleFunc("POST /users/{id}/reset_token", r.users.RequestResetToken)

	protected.HandleFunc("GET /settings", r.settings.Get)
	protected.HandleFunc("PATCH /settings", r.settings.Update)
	protected.HandleFunc("GET /settings/welcome", r.settings.WelcomePreview)
	protected.HandleFunc("POST /settings/welcome", r.settings.WelcomeCustomize)

	protected.HandleFunc("GET /peers", r.peers.List)
	protected.HandleFunc("POST /peers", r.peers.Register)
	protected.HandleFunc("POST /peers/{id}/routes", r.peers.AddRoute)
	protected.HandleFunc("DELETE /peers/{id}", r.peers.Delete)
	protected.HandleFunc("GET /stream/{peer}/{path}", r.peers.StreamDownload)
	protected.HandleFunc("PUT /stream/{peer}/{path}", r.peers.StreamUpload)

	protected.HandleFunc("GET /blob/{key}", r.blobs.Download)
	protected.HandleFunc("PUT /blob/{key}", r.blobs.Upload)
	protected.HandleFunc("DELETE /blob/{key}", r.blobs.Delete)

	root := http.NewServeMux()
	root.Handle("/", authenticate.HandleOptional(open))
	for _, prefix := range []string{"/users", "/settings", "/peers", "/stream/", "/blob/"} {
		root.Handle(prefix, authenticate.Handle(protected))
	}
	// Subtree patterns need both forms so /users and /users/{id} match.
	root.Handle("/users/", authenticate.Handle(protected))
	root.Handle("/settings/", authenticate.Handle(protected))
	root.Handle("/peers/", authenticate.Handle(protected))

	return logging.Handle(root)
}
