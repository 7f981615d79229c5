package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/bayegaspard/datasite/internal/logger"
	"github.com/bayegaspard/datasite/internal/model"
)

// Blob exposes the local blob store over HTTP. Peers relay their traffic to
// these endpoints.
type Blob struct {
	storage        model.BlobStorage
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewBlob(storage model.BlobStorage, contextManager model.ContextManager, logger *logger.Logger) *Blob {
	return &Blob{storage: storage, contextManager: contextManager, logger: logger}
}

func (h *Blob) authenticated(r *http.Request) bool {
	_, ok := h.contextManager.GetActorFromContext(r.Context())
	return ok
}

// Upload handles PUT /blob/{key}: streams the request body into storage.
func (h *Blob) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.authenticated(r) {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	key := r.PathValue("key")
	if err := h.storage.Upload(r.Context(), key, r.Body); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Download handles GET /blob/{key}: streams the blob back.
func (h *Blob) Download(w http.ResponseWriter, r *http.Request) {
	if !h.authenticated(r) {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	key := r.PathValue("key")
	body, err := h.storage.Download(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("blob download aborted", "key", key, "error", err)
	}
}

// Delete handles DELETE /blob/{key}.
func (h *Blob) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.authenticated(r) {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	key := r.PathValue("key")
	if err := h.storage.Delete(r.Context(), key); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
