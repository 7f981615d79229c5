//go:build integration

package postgres_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/bayegaspard/datasite/internal/model"
	peersvc "github.com/bayegaspard/datasite/internal/peer"
	repo "github.com/bayegaspard/datasite/internal/repository/postgres"
	"github.com/bayegaspard/datasite/internal/storage/minio"
)

var (
	dsn           string
	minioEndpoint string
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	var pg, mc tc.Container
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		pg, err = tc.GenericContainer(gctx, tc.GenericContainerRequest{
			ContainerRequest: tc.ContainerRequest{
				Image:        "postgres:15-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "postgres",
					"POSTGRES_PASSWORD": "password",
					"POSTGRES_DB":       "datasite_test",
				},
				WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
			},
			Started: true,
		})
		if err != nil {
			return err
		}
		host, err := pg.Host(gctx)
		if err != nil {
			return err
		}
		port, err := pg.MappedPort(gctx, "5432")
		if err != nil {
			return err
		}
		dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/datasite_test?sslmode=disable", host, port.Port())
		return nil
	})

	g.Go(func() error {
		var err error
		mc, err = tc.GenericContainer(gctx, tc.GenericContainerRequest{
			ContainerRequest: tc.ContainerRequest{
				Image:        "minio/minio:latest",
				ExposedPorts: []string{"9000/tcp"},
				Env: map[string]string{
					"MINIO_ROOT_USER":     "minioadmin",
					"MINIO_ROOT_PASSWORD": "minioadmin",
				},
				Cmd:        []string{"server", "/data"},
				WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(2 * time.Minute),
			},
			Started: true,
		})
		if err != nil {
			return err
		}
		host, err := mc.Host(gctx)
		if err != nil {
			return err
		}
		port, err := mc.MappedPort(gctx, "9000")
		if err != nil {
			return err
		}
		minioEndpoint = fmt.Sprintf("%s:%s", host, port.Port())
		return nil
	})

	if err := g.Wait(); err != nil {
		panic(err)
	}

	code := m.Run()
	_ = pg.Terminate(ctx)
	_ = mc.Terminate(ctx)
	os.Exit(code)
}

func newUser(email string) model.User {
	return model.User{
		ID:            uuid.New(),
		Email:         email,
		Name:          "Test User",
		PasswordHash:  []byte("$2a$12$hash"),
		VerifyKey:     model.VerifyKey(uuid.NewString()),
		Role:          model.RoleDataScientist,
		Notifications: model.DefaultNotificationPrefs(),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	u := newUser("alice@example.com")
	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)
	require.True(t, saved.Notifications[model.ChannelEmail])

	_, err = ur.Create(ctx, newUser("alice@example.com"))
	require.ErrorIs(t, err, model.ErrAlreadyExists)

	byEmail, err := ur.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	byKey, err := ur.GetByVerifyKey(ctx, u.VerifyKey)
	require.NoError(t, err)
	require.Equal(t, u.ID, byKey.ID)

	saved.Name = "Alice"
	saved.Role = model.RoleDataOwner
	updated, err := ur.Update(ctx, saved)
	require.NoError(t, err)
	require.Equal(t, "Alice", updated.Name)
	require.Equal(t, model.RoleDataOwner, updated.Role)

	require.NoError(t, ur.Delete(ctx, u.ID, false))
	_, err = ur.GetByID(ctx, u.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	// The unique index only covers live rows, so the email is free again.
	_, err = ur.Create(ctx, newUser("alice@example.com"))
	require.NoError(t, err)

	require.ErrorIs(t, ur.Delete(ctx, u.ID, false), model.ErrNotFound)
}

func TestUserRepository_ConsumeResetToken(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)

	saved, err := ur.Create(ctx, newUser("bob@example.com"))
	require.NoError(t, err)

	token := "RESETTOKEN42"
	issued := time.Now()
	saved.ResetToken = &token
	saved.ResetTokenDate = &issued
	_, err = ur.Update(ctx, saved)
	require.NoError(t, err)

	byToken, err := ur.GetByResetToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, saved.ID, byToken.ID)

	newHash := []byte("$2a$12$newhash")
	consumed, err := ur.ConsumeResetToken(ctx, token, newHash, issued.Add(-time.Minute))
	require.NoError(t, err)
	require.Equal(t, saved.ID, consumed.ID)
	require.Equal(t, newHash, consumed.PasswordHash)
	require.Nil(t, consumed.ResetToken)

	// Spent tokens are gone.
	_, err = ur.ConsumeResetToken(ctx, token, newHash, issued.Add(-time.Minute))
	require.ErrorIs(t, err, model.ErrNotFound)

	// A token issued before the expiry cutoff cannot be spent.
	expired := "EXPIREDTOKEN"
	past := time.Now().Add(-time.Hour)
	consumed.ResetToken = &expired
	consumed.ResetTokenDate = &past
	_, err = ur.Update(ctx, consumed)
	require.NoError(t, err)

	_, err = ur.ConsumeResetToken(ctx, expired, newHash, time.Now().Add(-30*time.Minute))
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestSettingsRepository_Singleton(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	sr := repo.NewSettingsRepository(conn)

	_, err = sr.Get(ctx)
	require.ErrorIs(t, err, model.ErrNoSettingsFound)

	created, err := sr.Create(ctx, model.Settings{
		ID:            uuid.New(),
		Name:          "datasite",
		Organization:  "OpenMined",
		OnBoard:       true,
		SignupEnabled: true,
		AdminEmail:    "info@openmined.org",
	})
	require.NoError(t, err)

	got, err := sr.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.True(t, got.SignupEnabled)

	got.SignupEnabled = false
	got.WelcomeMessage = "# Welcome"
	updated, err := sr.Update(ctx, got)
	require.NoError(t, err)
	require.False(t, updated.SignupEnabled)
	require.Equal(t, "# Welcome", updated.WelcomeMessage)
}

func TestPeerRepository_RoutesKeepRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	pr := repo.NewPeerRepository(conn)

	peer, err := pr.Create(ctx, model.Peer{
		ID:        uuid.New(),
		Name:      "gateway-eu",
		VerifyKey: model.VerifyKey(uuid.NewString()),
		Routes: []model.PeerRoute{
			{Protocol: "http", Host: "10.0.0.1", Port: 8080, Priority: 1},
			{Protocol: "http", Host: "10.0.0.2", Port: 8080, Priority: 5},
		},
	})
	require.NoError(t, err)
	require.Len(t, peer.Routes, 2)
	require.Less(t, peer.Routes[0].Position, peer.Routes[1].Position)

	_, err = pr.Create(ctx, model.Peer{ID: uuid.New(), Name: "gateway-eu", VerifyKey: "k"})
	require.ErrorIs(t, err, model.ErrAlreadyExists)

	route, err := pr.AddRoute(ctx, model.PeerRoute{
		PeerID: peer.ID, Protocol: "https", Host: "10.0.0.3", Port: 443, Priority: 9,
	})
	require.NoError(t, err)
	require.Greater(t, route.Position, peer.Routes[1].Position)

	byName, err := pr.GetByName(ctx, "gateway-eu")
	require.NoError(t, err)
	require.Len(t, byName.Routes, 3)

	best, err := peersvc.SelectRoute(byName)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.3", best.Host)

	require.NoError(t, pr.Delete(ctx, peer.ID, false))
	_, err = pr.GetByID(ctx, peer.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestBlobStore_MinIO(t *testing.T) {
	ctx := context.Background()

	client, err := miniogo.New(minioEndpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	store, err := minio.NewBlobStore(ctx, client, "datasite-test")
	require.NoError(t, err)

	key := "datasets/trade.csv"
	require.NoError(t, store.Upload(ctx, key, bytes.NewReader([]byte("a,b\n1,2\n"))))

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, exists)

	reader, err := store.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	_ = reader.Close()
	require.Equal(t, []byte("a,b\n1,2\n"), data)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Download(ctx, key)
	require.ErrorIs(t, err, model.ErrNotFound)
}
