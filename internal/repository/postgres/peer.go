package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bayegaspard/datasite/internal/model"
)

var _ model.PeerStore = (*PeerRepository)(nil)

type PeerRepository struct {
	db *Connection
}

func NewPeerRepository(db *Connection) *PeerRepository {
	return &PeerRepository{
		db: db,
	}
}

func (r *PeerRepository) getBy(ctx context.Context, field string, value any) (model.Peer, error) {
	query := `SELECT id, name, verify_key, created_at, updated_at
			  FROM peers WHERE ` + field + ` = $1 AND deleted_at IS NULL`

	var peer model.Peer
	err := r.db.QueryRow(ctx, query, value).Scan(
		&peer.ID, &peer.Name, &peer.VerifyKey, &peer.CreatedAt, &peer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Peer{}, model.ErrNotFound
		}
		return model.Peer{}, &model.StoreError{Op: "peers.get_by_" + field, Err: err}
	}

	peer.Routes, err = r.routesFor(ctx, peer.ID)
	if err != nil {
		return model.Peer{}, err
	}
	return peer, nil
}

func (r *PeerRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Peer, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PeerRepository) GetByName(ctx context.Context, name string) (model.Peer, error) {
	return r.getBy(ctx, "name", name)
}

// routesFor returns the peer's routes in registration order.
func (r *PeerRepository) routesFor(ctx context.Context, peerID uuid.UUID) ([]model.PeerRoute, error) {
	query := `SELECT id, peer_id, protocol, host, port, priority, position
			  FROM peer_routes WHERE peer_id = $1 ORDER BY position`

	rows, err := r.db.Query(ctx, query, peerID)
	if err != nil {
		return nil, &model.StoreError{Op: "peers.routes", Err: err}
	}
	defer rows.Close()

	var routes []model.PeerRoute
	for rows.Next() {
		var route model.PeerRoute
		if err := rows.Scan(&route.ID, &route.PeerID, &route.Protocol, &route.Host,
			&route.Port, &route.Priority, &route.Position); err != nil {
			return nil, &model.StoreError{Op: "peers.routes", Err: err}
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StoreError{Op: "peers.routes", Err: err}
	}
	return routes, nil
}

func (r *PeerRepository) List(ctx context.Context) ([]model.Peer, error) {
	query := `SELECT id, name, verify_key, created_at, updated_at
			  FROM peers WHERE deleted_at IS NULL ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, &model.StoreError{Op: "peers.list", Err: err}
	}
	defer rows.Close()

	var peers []model.Peer
	for rows.Next() {
		var peer model.Peer
		if err := rows.Scan(&peer.ID, &peer.Name, &peer.VerifyKey, &peer.CreatedAt, &peer.UpdatedAt); err != nil {
			return nil, &model.StoreError{Op: "peers.list", Err: err}
		}
		peers = append(peers, peer)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.StoreError{Op: "peers.list", Err: err}
	}

	for i := range peers {
		peers[i].Routes, err = r.routesFor(ctx, peers[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return peers, nil
}

func (r *PeerRepository) Create(ctx context.Context, peer model.Peer) (model.Peer, error) {
	query := `INSERT INTO peers (id, name, verify_key, created_at, updated_at)
			  VALUES ($1, $2, $3, now(), now())
			  RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, peer.ID, peer.Name, string(peer.VerifyKey)).
		Scan(&peer.CreatedAt, &peer.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Peer{}, model.ErrAlreadyExists
		}
		return model.Peer{}, &model.StoreError{Op: "peers.create", Err: err}
	}

	routes := peer.Routes
	peer.Routes = nil
	for _, route := range routes {
		route.PeerID = peer.ID
		saved, err := r.AddRoute(ctx, route)
		if err != nil {
			return model.Peer{}, err
		}
		peer.Routes = append(peer.Routes, saved)
	}
	return peer, nil
}

func (r *PeerRepository) AddRoute(ctx context.Context, route model.PeerRoute) (model.PeerRoute, error) {
	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	query := `INSERT INTO peer_routes (id, peer_id, protocol, host, port, priority)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING position`

	err := r.db.QueryRow(ctx, query, route.ID, route.PeerID, route.Protocol,
		route.Host, route.Port, route.Priority).Scan(&route.Position)
	if err != nil {
		return model.PeerRoute{}, &model.StoreError{Op: "peers.add_route", Err: err}
	}
	return route, nil
}

func (r *PeerRepository) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	var tag pgconn.CommandTag
	var err error
	if hard {
		tag, err = r.db.Exec(ctx, `DELETE FROM peers WHERE id = $1`, id)
	} else {
		tag, err = r.db.Exec(ctx, `UPDATE peers SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	}
	if err != nil {
		return &model.StoreError{Op: "peers.delete", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
