package peer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/stash"
	"github.com/bayegaspard/datasite/internal/testutil"
)

func newRouterFixture(t *testing.T) (*Router, model.VerifyKey, model.VerifyKey) {
	t.Helper()
	ctx := context.Background()

	userStore := testutil.NewMemoryUserStore()
	userStash := stash.NewUserStash(userStore)
	router := NewRouter(stash.NewPeerStash(testutil.NewMemoryPeerStore()), userStash, testutil.MakeNoopLogger())

	makeUser := func(email string, role model.Role) model.VerifyKey {
		_, key, err := model.GenerateKeyPair()
		require.NoError(t, err)
		_, err = userStore.Create(ctx, model.User{
			ID:        uuid.New(),
			Email:     email,
			VerifyKey: key,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
		return key
	}

	return router, makeUser("owner@example.com", model.RoleDataOwner), makeUser("guest@example.com", model.RoleGuest)
}

func TestRouter_RegisterRequiresDataOwner(t *testing.T) {
	router, ownerKey, guestKey := newRouterFixture(t)
	ctx := context.Background()

	peer := model.Peer{Name: "gateway-1"}
	_, err := router.Register(ctx, guestKey, peer)
	assert.ErrorIs(t, err, model.ErrPermissionDenied)

	saved, err := router.Register(ctx, ownerKey, peer)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
}

func TestRouter_RegisterDuplicateName(t *testing.T) {
	router, ownerKey, _ := newRouterFixture(t)
	ctx := context.Background()

	_, err := router.Register(ctx, ownerKey, model.Peer{Name: "gateway-1"})
	require.NoError(t, err)
	_, err = router.Register(ctx, ownerKey, model.Peer{Name: "gateway-1"})
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
}

func TestRouter_AddRouteAssignsPositions(t *testing.T) {
	router, ownerKey, _ := newRouterFixture(t)
	ctx := context.Background()

	saved, err := router.Register(ctx, ownerKey, model.Peer{Name: "gateway-1"})
	require.NoError(t, err)

	first, err := router.AddRoute(ctx, ownerKey, saved.ID, model.PeerRoute{Host: "a.example.com", Port: 80})
	require.NoError(t, err)
	second, err := router.AddRoute(ctx, ownerKey, saved.ID, model.PeerRoute{Host: "b.example.com", Port: 80})
	require.NoError(t, err)

	assert.Less(t, first.Position, second.Position, "positions follow registration order")
}

func TestSelectRoute(t *testing.T) {
	routes := func(priorities ...int) []model.PeerRoute {
		out := make([]model.PeerRoute, len(priorities))
		for i, p := range priorities {
			out[i] = model.PeerRoute{
				ID:       uuid.New(),
				Host:     "example.com",
				Priority: p,
				Position: i + 1,
			}
		}
		return out
	}

	t.Run("highest priority wins", func(t *testing.T) {
		peer := model.Peer{Name: "p", Routes: routes(3, 7, 1)}
		selected, err := SelectRoute(peer)
		require.NoError(t, err)
		assert.Equal(t, 7, selected.Priority)
	})

	t.Run("tie broken by registration order", func(t *testing.T) {
		peer := model.Peer{Name: "p", Routes: routes(3, 7, 7, 1)}
		selected, err := SelectRoute(peer)
		require.NoError(t, err)
		assert.Equal(t, peer.Routes[1].ID, selected.ID,
			"the earlier-registered of the tied routes is selected")
	})

	t.Run("selection is stable", func(t *testing.T) {
		peer := model.Peer{Name: "p", Routes: routes(5, 5, 5)}
		first, err := SelectRoute(peer)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := SelectRoute(peer)
			require.NoError(t, err)
			assert.Equal(t, first.ID, again.ID)
		}
	})

	t.Run("no routes", func(t *testing.T) {
		_, err := SelectRoute(model.Peer{Name: "empty"})
		assert.ErrorIs(t, err, model.ErrPeerUnreachable)
	})
}
