package handler

import (
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
	"github.com/bayegaspard/datasite/internal/peer"
)

// Peer exposes peer management and the streaming relay over HTTP.
type Peer struct {
	router         *peer.Router
	relay          *peer.Relay
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewPeer(router *peer.Router, relay *peer.Relay, contextManager model.ContextManager, logger *logger.Logger) *Peer {
	return &Peer{router: router, relay: relay, contextManager: contextManager, logger: logger}
}

func (h *Peer) actor(r *http.Request) (model.VerifyKey, bool) {
	return h.contextManager.GetActorFromContext(r.Context())
}

type peerRouteRequest struct {
	Protocol string `json:"protocol"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Priority int    `json:"priority"`
}

type registerPeerRequest struct {
	Name      string             `json:"name"`
	VerifyKey string             `json:"verify_key"`
	Routes    []peerRouteRequest `json:"routes"`
}

type peerRouteResponse struct {
	ID       uuid.UUID `json:"id"`
	Protocol string    `json:"protocol"`
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	Priority int       `json:"priority"`
	Position int       `json:"position"`
}

type peerResponse struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	VerifyKey string              `json:"verify_key"`
	Routes    []peerRouteResponse `json:"routes"`
}

func toPeerResponse(p model.Peer) peerResponse {
	routes := make([]peerRouteResponse, 0, len(p.Routes))
	for _, route := range p.Routes {
		routes = append(routes, peerRouteResponse{
			ID:       route.ID,
			Protocol: route.Protocol,
			Host:     route.Host,
			Port:     route.Port,
			Priority: route.Priority,
			Position: route.Position,
		})
	}
	return peerResponse{
		ID:        p.ID,
		Name:      p.Name,
		VerifyKey: string(p.VerifyKey),
		Routes:    routes,
	}
}

// Register handles POST /peers.
func (h *Peer) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req registerPeerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p := model.Peer{
		Name:      req.Name,
		VerifyKey: model.VerifyKey(req.VerifyKey),
	}
	for _, route := range req.Routes {
		p.Routes = append(p.Routes, model.PeerRoute{
			ID:       uuid.New(),
			Protocol: route.Protocol,
			Host:     route.Host,
			Port:     route.Port,
			Priority: route.Priority,
		})
	}

	saved, err := h.router.Register(r.Context(), caller, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPeerResponse(saved))
}

// List handles GET /peers.
func (h *Peer) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	peers, err := h.router.List(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]peerResponse, 0, len(peers))
	for _, p := range peers {
		resp = append(resp, toPeerResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddRoute handles POST /peers/{id}/routes.
func (h *Peer) AddRoute(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &model.PolicyError{Field: "id", Msg: "malformed peer id"})
		return
	}

	var req peerRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	route, err := h.router.AddRoute(r.Context(), caller, id, model.PeerRoute{
		Protocol: req.Protocol,
		Host:     req.Host,
		Port:     req.Port,
		Priority: req.Priority,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, peerRouteResponse{
		ID:       route.ID,
		Protocol: route.Protocol,
		Host:     route.Host,
		Port:     route.Port,
		Priority: route.Priority,
		Position: route.Position,
	})
}

// Delete handles DELETE /peers/{id}.
func (h *Peer) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, &model.PolicyError{Field: "id", Msg: "malformed peer id"})
		return
	}

	if err := h.router.Delete(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookupPeer resolves the stream path segment, which may be a peer id or a
// peer name.
func (h *Peer) lookupPeer(r *http.Request, caller model.VerifyKey, segment string) (model.Peer, error) {
	if id, err := uuid.Parse(segment); err == nil {
		return h.router.Get(r.Context(), caller, id)
	}
	return h.router.GetByName(r.Context(), caller, segment)
}

// StreamDownload handles GET /stream/{peer}/{path}: proxies a blob download
// from the peer, streaming bytes through as they arrive.
func (h *Peer) StreamDownload(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	p, err := h.lookupPeer(r, caller, r.PathValue("peer"))
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := h.relay.Download(r.Context(), p, r.PathValue("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, body); err != nil {
		// Headers are already sent; nothing to do but log.
		h.logger.Error("stream download aborted", "peer", p.Name, "error", err)
	}
}

// StreamUpload handles PUT /stream/{peer}/{path}: proxies a blob upload to
// the peer without buffering the payload.
func (h *Peer) StreamUpload(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.actor(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	p, err := h.lookupPeer(r, caller, r.PathValue("peer"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.relay.Upload(r.Context(), p, r.PathValue("path"), r.Body); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
