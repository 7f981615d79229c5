package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/model"
)

// MemoryUserStore is an in-memory model.UserStore with the same uniqueness
// and token semantics as the postgres repository, for stateful tests.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

var _ model.UserStore = (*MemoryUserStore)(nil)

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]model.User)}
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email && user.DeletedAt == nil {
			return user, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *MemoryUserStore) GetByVerifyKey(_ context.Context, key model.VerifyKey) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.VerifyKey == key && user.DeletedAt == nil {
			return user, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *MemoryUserStore) GetByResetToken(_ context.Context, token string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ResetToken != nil && *user.ResetToken == token && user.DeletedAt == nil {
			return user, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *MemoryUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []model.User
	for _, user := range s.users {
		if user.DeletedAt == nil {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (s *MemoryUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email && existing.DeletedAt == nil {
			return model.User{}, model.ErrAlreadyExists
		}
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryUserStore) Update(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok || current.DeletedAt != nil {
		return model.User{}, model.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID != user.ID && existing.Email == user.Email && existing.DeletedAt == nil {
			return model.User{}, model.ErrAlreadyExists
		}
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryUserStore) ConsumeResetToken(_ context.Context, token string, passwordHash []byte, issuedAfter time.Time) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, user := range s.users {
		if user.ResetToken == nil || *user.ResetToken != token || user.DeletedAt != nil {
			continue
		}
		if user.ResetTokenDate == nil || !user.ResetTokenDate.After(issuedAfter) {
			continue
		}
		user.PasswordHash = passwordHash
		user.ResetToken = nil
		user.ResetTokenDate = nil
		user.UpdatedAt = time.Now().UTC()
		s.users[id] = user
		return user, nil
	}
	return model.User{}, model.ErrNotFound
}

func (s *MemoryUserStore) Delete(_ context.Context, id uuid.UUID, hard bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || user.DeletedAt != nil {
		return model.ErrNotFound
	}
	if hard {
		delete(s.users, id)
		return nil
	}
	now := time.Now().UTC()
	user.DeletedAt = &now
	s.users[id] = user
	return nil
}

// MemorySettingsStore is an in-memory model.SettingsStore.
type MemorySettingsStore struct {
	mu       sync.Mutex
	settings *model.Settings
}

var _ model.SettingsStore = (*MemorySettingsStore)(nil)

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{}
}

func (s *MemorySettingsStore) Get(_ context.Context) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return model.Settings{}, model.ErrNoSettingsFound
	}
	return *s.settings, nil
}

func (s *MemorySettingsStore) Create(_ context.Context, settings model.Settings) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return settings, nil
}

func (s *MemorySettingsStore) Update(_ context.Context, settings model.Settings) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return model.Settings{}, model.ErrNoSettingsFound
	}
	settings.UpdatedAt = time.Now().UTC()
	s.settings = &settings
	return settings, nil
}

// MemoryPeerStore is an in-memory model.PeerStore. Route positions are
// assigned in insertion order like the SERIAL column does.
type MemoryPeerStore struct {
	mu           sync.Mutex
	peers        map[uuid.UUID]model.Peer
	nextPosition int
}

var _ model.PeerStore = (*MemoryPeerStore)(nil)

func NewMemoryPeerStore() *MemoryPeerStore {
	return &MemoryPeerStore{peers: make(map[uuid.UUID]model.Peer), nextPosition: 1}
}

func (s *MemoryPeerStore) GetByID(_ context.Context, id uuid.UUID) (model.Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	peer, ok := s.peers[id]
	if !ok {
		return model.Peer{}, model.ErrNotFound
	}
	return peer, nil
}

func (s *MemoryPeerStore) GetByName(_ context.Context, name string) (model.Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, peer := range s.peers {
		if peer.Name == name {
			return peer, nil
		}
	}
	return model.Peer{}, model.ErrNotFound
}

func (s *MemoryPeerStore) List(_ context.Context) ([]model.Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var peers []model.Peer
	for _, peer := range s.peers {
		peers = append(peers, peer)
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].CreatedAt.Before(peers[j].CreatedAt) })
	return peers, nil
}

func (s *MemoryPeerStore) Create(_ context.Context, peer model.Peer) (model.Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.peers {
		if existing.Name == peer.Name {
			return model.Peer{}, model.ErrAlreadyExists
		}
	}
	for i := range peer.Routes {
		peer.Routes[i].PeerID = peer.ID
		peer.Routes[i].Position = s.nextPosition
		s.nextPosition++
	}
	s.peers[peer.ID] = peer
	return peer, nil
}

func (s *MemoryPeerStore) AddRoute(_ context.Context, route model.PeerRoute) (model.PeerRoute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	peer, ok := s.peers[route.PeerID]
	if !ok {
		return model.PeerRoute{}, model.ErrNotFound
	}
	route.Position = s.nextPosition
	s.nextPosition++
	peer.Routes = append(peer.Routes, route)
	s.peers[route.PeerID] = peer
	return route, nil
}

func (s *MemoryPeerStore) Delete(_ context.Context, id uuid.UUID, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.peers[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.peers, id)
	return nil
}
