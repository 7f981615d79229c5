// Package peer manages remote server registration, route selection and the
// streaming relay that proxies blob traffic to peers.
package peer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/stash"
)

// Router keeps the peer table and picks which route to use for a peer.
type Router struct {
	peers  *stash.PeerStash
	users  *stash.UserStash
	logger *logger.Logger
}

func NewRouter(peers *stash.PeerStash, users *stash.UserStash, l *logger.Logger) *Router {
	return &Router{
		peers:  peers,
		users:  users,
		logger: l,
	}
}

func (r *Router) requireDataOwner(ctx context.Context, caller model.VerifyKey) error {
	actor, err := r.users.GetByVerifyKey(ctx, model.RootAuthority, caller)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.NewPermissionDenied(model.ReasonNotFound, "no identity for credentials")
		}
		return fmt.Errorf("failed to resolve caller: %w", err)
	}
	if actor.Role.Compare(model.RoleDataOwner) < 0 {
		return model.NewPermissionDenied(model.ReasonRoleInsufficient,
			"as a %s, you are not allowed to manage peers", actor.Role)
	}
	return nil
}

// Register adds a peer with its initial routes. Registering the same name
// twice fails with ErrAlreadyExists.
func (r *Router) Register(ctx context.Context, caller model.VerifyKey, peer model.Peer) (model.Peer, error) {
	if err := r.requireDataOwner(ctx, caller); err != nil {
		return model.Peer{}, err
	}
	if peer.Name == "" {
		return model.Peer{}, &model.PolicyError{Field: "name", Msg: "peer name is required"}
	}

	if peer.ID == uuid.Nil {
		peer.ID = uuid.New()
	}
	now := time.Now().UTC()
	peer.CreatedAt = now
	peer.UpdatedAt = now

	saved, err := r.peers.Set(ctx, caller, peer, true)
	if err != nil {
		return model.Peer{}, fmt.Errorf("failed to register peer %q: %w", peer.Name, err)
	}
	r.logger.Info("peer registered", "peer", saved.Name, "routes", len(saved.Routes))
	return saved, nil
}

// AddRoute appends a route to an existing peer. The store assigns the
// position, preserving registration order.
func (r *Router) AddRoute(ctx context.Context, caller model.VerifyKey, peerID uuid.UUID, route model.PeerRoute) (model.PeerRoute, error) {
	if err := r.requireDataOwner(ctx, caller); err != nil {
		return model.PeerRoute{}, err
	}
	if _, err := r.peers.GetByID(ctx, caller, peerID); err != nil {
		return model.PeerRoute{}, err
	}

	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	route.PeerID = peerID
	return r.peers.AddRoute(ctx, caller, route, true)
}

// Get returns a peer by id.
func (r *Router) Get(ctx context.Context, caller model.VerifyKey, id uuid.UUID) (model.Peer, error) {
	return r.peers.GetByID(ctx, caller, id)
}

// GetByName returns a peer by its unique name.
func (r *Router) GetByName(ctx context.Context, caller model.VerifyKey, name string) (model.Peer, error) {
	return r.peers.GetByName(ctx, caller, name)
}

// List returns every registered peer.
func (r *Router) List(ctx context.Context, caller model.VerifyKey) ([]model.Peer, error) {
	return r.peers.GetAll(ctx, caller, true)
}

// Delete removes a peer and its routes.
func (r *Router) Delete(ctx context.Context, caller model.VerifyKey, id uuid.UUID) error {
	if err := r.requireDataOwner(ctx, caller); err != nil {
		return err
	}
	return r.peers.DeleteByID(ctx, caller, id, true, true)
}

// SelectRoute picks the route with the highest priority. Ties go to the
// route registered first, so selection is stable across calls.
func SelectRoute(peer model.Peer) (model.PeerRoute, error) {
	if len(peer.Routes) == 0 {
		return model.PeerRoute{}, fmt.Errorf("peer %q has no routes: %w", peer.Name, model.ErrPeerUnreachable)
	}

	best := peer.Routes[0]
	for _, route := range peer.Routes[1:] {
		if route.Priority > best.Priority {
			best = route
		} else if route.Priority == best.Priority && route.Position < best.Position {
			best = route
		}
	}
	return best, nil
}
