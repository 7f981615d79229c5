package stash

import (
	"context"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/model"
)

// peerPolicy: peers are readable by any resolved caller; registration and
// removal are admin operations gated at the service layer.
type peerPolicy struct{}

func (peerPolicy) CanRead(model.VerifyKey, model.Peer) bool  { return true }
func (peerPolicy) CanWrite(model.VerifyKey, model.Peer) bool { return false }

// PeerStash is the permission-checked adapter over the peer registry.
type PeerStash struct {
	Core[model.Peer]
	store model.PeerStore
}

func NewPeerStash(store model.PeerStore) *PeerStash {
	return &PeerStash{Core: NewCore[model.Peer](peerPolicy{}), store: store}
}

// GetByID returns the peer with its routes in registration order.
func (s *PeerStash) GetByID(ctx context.Context, caller model.VerifyKey, id uuid.UUID) (model.Peer, error) {
	peer, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Peer{}, err
	}
	return s.Readable(caller, peer)
}

func (s *PeerStash) GetByName(ctx context.Context, caller model.VerifyKey, name string) (model.Peer, error) {
	peer, err := s.store.GetByName(ctx, name)
	if err != nil {
		return model.Peer{}, err
	}
	return s.Readable(caller, peer)
}

func (s *PeerStash) GetAll(ctx context.Context, caller model.VerifyKey, hasPermission bool) ([]model.Peer, error) {
	peers, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.Filter(caller, peers, hasPermission), nil
}

// Set registers a new peer together with its initial routes.
func (s *PeerStash) Set(ctx context.Context, caller model.VerifyKey, peer model.Peer, hasPermission bool) (model.Peer, error) {
	if err := s.CheckWrite(caller, peer, hasPermission); err != nil {
		return model.Peer{}, err
	}
	return s.store.Create(ctx, peer)
}

// AddRoute appends a transport route; registration order is preserved.
func (s *PeerStash) AddRoute(ctx context.Context, caller model.VerifyKey, route model.PeerRoute, hasPermission bool) (model.PeerRoute, error) {
	peer, err := s.store.GetByID(ctx, route.PeerID)
	if err != nil {
		return model.PeerRoute{}, err
	}
	if err := s.CheckWrite(caller, peer, hasPermission); err != nil {
		return model.PeerRoute{}, err
	}
	return s.store.AddRoute(ctx, route)
}

func (s *PeerStash) DeleteByID(ctx context.Context, caller model.VerifyKey, id uuid.UUID, hard, hasPermission bool) error {
	peer, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.CheckWrite(caller, peer, hasPermission); err != nil {
		return err
	}
	return s.store.Delete(ctx, id, hard)
}
