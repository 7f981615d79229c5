package model

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Peer is a registered remote server together with its transport routes.
type Peer struct {
	ID        uuid.UUID
	Name      string
	VerifyKey VerifyKey
	Routes    []PeerRoute
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PeerRoute is one way to reach a peer. Position records registration order
// and breaks priority ties deterministically.
type PeerRoute struct {
	ID       uuid.UUID
	PeerID   uuid.UUID
	Protocol string
	Host     string
	Port     int
	Priority int
	Position int
}

// Addr returns the host:port pair of the route.
func (r PeerRoute) Addr() string {
	if r.Port == 0 {
		return r.Host
	}
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// PeerStore is the persistence boundary for peers. Routes are returned in
// registration order.
type PeerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Peer, error)
	GetByName(ctx context.Context, name string) (Peer, error)
	List(ctx context.Context) ([]Peer, error)
	Create(ctx context.Context, peer Peer) (Peer, error)
	AddRoute(ctx context.Context, route PeerRoute) (PeerRoute, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool) error
}
