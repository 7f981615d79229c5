package middleware

import (
	"net/http"
	"strings"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
)

// Authenticate validates bearer tokens and injects the caller's verify key
// into the request context.
type Authenticate struct {
	tokens         model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens model.TokenManager, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, contextManager: contextManager, logger: logger}
}

// Handle parses the Authorization header, validates the session token and
// passes the request on with the resolved actor set. Requests without a
// valid token are rejected with 401.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing authorization token", http.StatusUnauthorized)
			return
		}
		m.resolve(w, r, header, next)
	})
}

// HandleOptional resolves the caller when a bearer token is present and
// passes the request through anonymously when it is not. Open endpoints use
// this so signed-in callers keep their identity: privileged registration
// works while signup is disabled. A token that is present but invalid is
// still rejected.
func (m *Authenticate) HandleOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing authorization token", http.StatusUnauthorized)
			return
		}
		m.resolve(w, r, header, next)
	})
}

func (m *Authenticate) resolve(w http.ResponseWriter, r *http.Request, header string, next http.Handler) {
	tokenString := strings.TrimPrefix(header, "Bearer ")

	_, key, err := m.tokens.ParseSessionToken(tokenString)
	if err != nil {
		m.logger.Debug("rejected session token", "error", err)
		http.Error(w, "invalid authorization token", http.StatusUnauthorized)
		return
	}

	ctx := m.contextManager.SetActorToContext(r.Context(), key)
	next.ServeHTTP(w, r.WithContext(ctx))
}
