package peer

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/testutil"
)

func peerForServer(t *testing.T, srv *httptest.Server) model.Peer {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return model.Peer{
		ID:   uuid.New(),
		Name: "test-peer",
		Routes: []model.PeerRoute{
			{ID: uuid.New(), Protocol: "http", Host: u.Hostname(), Port: port, Priority: 1, Position: 1},
		},
	}
}

func encodePath(path string) string {
	return base64.URLEncoding.EncodeToString([]byte(path))
}

func TestRelay_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blob/abc", r.URL.Path)
		w.Write([]byte("blob-bytes"))
	}))
	defer srv.Close()

	relay := NewRelay(testutil.MakeNoopLogger())
	body, err := relay.Download(context.Background(), peerForServer(t, srv), encodePath("/blob/abc"))
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "blob-bytes", string(data))
}

func TestRelay_Download_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	relay := NewRelay(testutil.MakeNoopLogger())
	_, err := relay.Download(context.Background(), peerForServer(t, srv), encodePath("/blob/missing"))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRelay_MalformedPathNeverContactsPeer(t *testing.T) {
	var contacted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contacted = true
	}))
	defer srv.Close()

	relay := NewRelay(testutil.MakeNoopLogger())
	_, err := relay.Download(context.Background(), peerForServer(t, srv), "not base64url!!")
	assert.ErrorIs(t, err, model.ErrInvalidPath)
	assert.False(t, contacted)

	err = relay.Upload(context.Background(), peerForServer(t, srv), "not base64url!!", strings.NewReader("x"))
	assert.ErrorIs(t, err, model.ErrInvalidPath)
	assert.False(t, contacted)
}

func TestRelay_UnreachablePeer(t *testing.T) {
	peer := model.Peer{
		ID:   uuid.New(),
		Name: "dead-peer",
		Routes: []model.PeerRoute{
			// Reserved TEST-NET address, nothing listens there.
			{ID: uuid.New(), Host: "192.0.2.1", Port: 81, Priority: 1, Position: 1},
		},
	}

	relay := NewRelay(testutil.MakeNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := relay.Download(ctx, peer, encodePath("/blob/abc"))
	assert.ErrorIs(t, err, model.ErrPeerUnreachable)
}

func TestRelay_NoWholeRequestDeadline(t *testing.T) {
	relay := NewRelay(testutil.MakeNoopLogger())

	assert.Zero(t, relay.client.Timeout, "body transfer must not race a client deadline")

	transport, ok := relay.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.NotZero(t, transport.ResponseHeaderTimeout)
	assert.NotZero(t, transport.TLSHandshakeTimeout)
}

func TestRelay_Download_SlowBodyOutlastsHeaderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		// Dribble the body out over several header-timeout windows.
		for i := 0; i < 4; i++ {
			time.Sleep(150 * time.Millisecond)
			w.Write([]byte("chunk"))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	relay := NewRelay(testutil.MakeNoopLogger())
	relay.client.Transport.(*http.Transport).ResponseHeaderTimeout = 100 * time.Millisecond

	body, err := relay.Download(context.Background(), peerForServer(t, srv), encodePath("/blob/big"))
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("chunk", 4), string(data))
}

func TestRelay_Upload(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var err error
		received, err = io.ReadAll(r.Body)
		assert.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	relay := NewRelay(testutil.MakeNoopLogger())
	err := relay.Upload(context.Background(), peerForServer(t, srv), encodePath("/blob/up"), strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(received))
}

func TestRelay_Download_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	relay := NewRelay(testutil.MakeNoopLogger())
	_, err := relay.Download(ctx, peerForServer(t, srv), encodePath("/blob/slow"))
	assert.Error(t, err, "cancelling the context aborts the transfer")
}
