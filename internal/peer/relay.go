package peer

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
)

const (
	relayDialTimeout   = 10 * time.Second
	relayTLSTimeout    = 10 * time.Second
	relayHeaderTimeout = 30 * time.Second
)

// Relay proxies blob traffic to a peer over its selected route. Bytes are
// streamed through without buffering whole payloads; cancelling the request
// context aborts the transfer mid-stream.
type Relay struct {
	client *http.Client
	logger *logger.Logger
}

// NewRelay builds a relay whose timeouts cover dialing, the TLS handshake and
// the wait for response headers only. Body transfer has no deadline of its
// own: a multi-gigabyte download runs as long as the request context allows.
func NewRelay(l *logger.Logger) *Relay {
	return &Relay{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: relayDialTimeout}).DialContext,
				TLSHandshakeTimeout:   relayTLSTimeout,
				ResponseHeaderTimeout: relayHeaderTimeout,
			},
		},
		logger: l,
	}
}

// decodePath decodes a base64url-encoded relay path. Decoding happens before
// any peer contact, so a malformed path never opens a connection.
func decodePath(encoded string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(encoded)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrInvalidPath, err)
	}
	return string(decoded), nil
}

func routeURL(route model.PeerRoute, path string) string {
	scheme := route.Protocol
	if scheme == "" {
		scheme = "http"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   route.Addr(),
		Path:   "/" + strings.TrimPrefix(path, "/"),
	}
	return u.String()
}

// Download streams a blob from the peer. The caller owns closing the
// returned reader.
func (r *Relay) Download(ctx context.Context, peer model.Peer, encodedPath string) (io.ReadCloser, error) {
	path, err := decodePath(encodedPath)
	if err != nil {
		return nil, err
	}
	route, err := SelectRoute(peer)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, routeURL(route, path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("peer %q via %s: %w", peer.Name, route.Addr(), model.ErrPeerUnreachable)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("peer %q returned status %d", peer.Name, resp.StatusCode)
	}

	r.logger.Debug("relaying download", "peer", peer.Name, "path", path)
	return resp.Body, nil
}

// Upload streams a blob to the peer. The body is consumed exactly once; a
// failed transfer is reported, never silently retried.
func (r *Relay) Upload(ctx context.Context, peer model.Peer, encodedPath string, body io.Reader) error {
	path, err := decodePath(encodedPath)
	if err != nil {
		return err
	}
	route, err := SelectRoute(peer)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, routeURL(route, path), body)
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("peer %q via %s: %w", peer.Name, route.Addr(), model.ErrPeerUnreachable)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("peer %q returned status %d", peer.Name, resp.StatusCode)
	}

	r.logger.Debug("relayed upload", "peer", peer.Name, "path", path)
	return nil
}
