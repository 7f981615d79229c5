// Package mocks holds testify mocks for the storage and delivery boundaries.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bayegaspard/datasite/internal/model"
)

type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByVerifyKey(ctx context.Context, key model.VerifyKey) (model.User, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByResetToken(ctx context.Context, token string) (model.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) ConsumeResetToken(ctx context.Context, token string, passwordHash []byte, issuedAfter time.Time) (model.User, error) {
	args := m.Called(ctx, token, passwordHash, issuedAfter)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	args := m.Called(ctx, id, hard)
	return args.Error(0)
}

type SettingsStore struct {
	mock.Mock
}

func (m *SettingsStore) Get(ctx context.Context) (model.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Settings), args.Error(1)
}

func (m *SettingsStore) Create(ctx context.Context, settings model.Settings) (model.Settings, error) {
	args := m.Called(ctx, settings)
	return args.Get(0).(model.Settings), args.Error(1)
}

func (m *SettingsStore) Update(ctx context.Context, settings model.Settings) (model.Settings, error) {
	args := m.Called(ctx, settings)
	return args.Get(0).(model.Settings), args.Error(1)
}

type PeerStore struct {
	mock.Mock
}

func (m *PeerStore) GetByID(ctx context.Context, id uuid.UUID) (model.Peer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Peer), args.Error(1)
}

func (m *PeerStore) GetByName(ctx context.Context, name string) (model.Peer, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Peer), args.Error(1)
}

func (m *PeerStore) List(ctx context.Context) ([]model.Peer, error) {
	args := m.Called(ctx)
	if peers := args.Get(0); peers != nil {
		return peers.([]model.Peer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PeerStore) Create(ctx context.Context, peer model.Peer) (model.Peer, error) {
	args := m.Called(ctx, peer)
	return args.Get(0).(model.Peer), args.Error(1)
}

func (m *PeerStore) AddRoute(ctx context.Context, route model.PeerRoute) (model.PeerRoute, error) {
	args := m.Called(ctx, route)
	return args.Get(0).(model.PeerRoute), args.Error(1)
}

func (m *PeerStore) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	args := m.Called(ctx, id, hard)
	return args.Error(0)
}

type Notifier struct {
	mock.Mock
}

func (m *Notifier) Send(ctx context.Context, n model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type BlobStorage struct {
	mock.Mock
}

func (m *BlobStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *BlobStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *BlobStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *BlobStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type TokenManager struct {
	mock.Mock
}

func (m *TokenManager) GenerateSessionToken(userID uuid.UUID, key model.VerifyKey) (string, error) {
	args := m.Called(userID, key)
	return args.String(0), args.Error(1)
}

func (m *TokenManager) ParseSessionToken(token string) (uuid.UUID, model.VerifyKey, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Get(1).(model.VerifyKey), args.Error(2)
}
