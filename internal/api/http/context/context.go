package context

import (
	"context"

	"github.com/bayegaspard/datasite/internal/model"
)

type contextKey string

const actorKey contextKey = "actor"

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the authenticated caller's verify key in request contexts.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetActorToContext(ctx context.Context, key model.VerifyKey) context.Context {
	return context.WithValue(ctx, actorKey, key)
}

func (m *Manager) GetActorFromContext(ctx context.Context) (model.VerifyKey, bool) {
	key, ok := ctx.Value(actorKey).(model.VerifyKey)
	return key, ok
}
