package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cliptube/apiserver/internal/storage"
)

// MediaHandler streams stored profile media back to clients.
type MediaHandler struct {
	storage *storage.Storage
}

func NewMediaHandler(st *storage.Storage) *MediaHandler {
	return &MediaHandler{storage: st}
}

// MediaRouter registers the media route on the given router.
func MediaRouter(r chi.Router, st *storage.Storage) {
	handler := NewMediaHandler(st)
	r.Get("/*", handler.Get)
}

// Get streams one object from the bucket. The object key is the remainder
// of the URL path.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		writeError(w, http.StatusBadRequest, "object key is required")
		return
	}

	object, err := h.storage.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "object not found")
		return
	}
	defer object.Close()

	if _, err := io.Copy(w, object); err != nil {
		// Headers are already out; nothing more to report to the client.
		return
	}
}
