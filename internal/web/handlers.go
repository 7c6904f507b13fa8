package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/justestif/genrefixer/internal/resolver"
)

// Looker resolves a name tuple to a genre and tag string.
type Looker interface {
	Lookup(ctx context.Context, artists ...string) resolver.Result
}

// GenreLister lists the canonical genres.
type GenreLister interface {
	Genres() []string
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	looker Looker
	genres GenreLister
	log    *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(looker Looker, genres GenreLister, log *zap.Logger) *Handlers {
	return &Handlers{looker: looker, genres: genres, log: log}
}

// LookupResponse is the body of GET /api/lookup.
type LookupResponse struct {
	Artist      string `json:"artist"`
	AlbumArtist string `json:"album_artist,omitempty"`
	resolver.Result
}

type errorResponse struct {
	Error string `json:"error"`
}

// Lookup resolves ?artist= and the optional ?album_artist=.
func (h *Handlers) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	artist := strings.TrimSpace(q.Get("artist"))
	albumArtist := strings.TrimSpace(q.Get("album_artist"))

	if artist == "" {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing artist parameter"})
		return
	}

	names := []string{artist}
	if albumArtist != "" {
		names = append(names, albumArtist)
	}

	res := h.looker.Lookup(r.Context(), names...)
	h.writeJSON(w, http.StatusOK, LookupResponse{
		Artist:      artist,
		AlbumArtist: albumArtist,
		Result:      res,
	})
}

// Genres lists the canonical genres in table order.
func (h *Handlers) Genres(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]string{"genres": h.genres.Genres()})
}

// Healthz reports liveness.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("encoding response", zap.Error(err))
	}
}
