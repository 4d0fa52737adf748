package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/satindergrewal/cadence/internal/catalog"
	"github.com/satindergrewal/cadence/internal/curator"
	"github.com/satindergrewal/cadence/internal/subscription"
)

type tierRow struct {
	Tier     subscription.Tier       `json:"tier"`
	Features subscription.FeatureSet `json:"features"`
}

func (s *Server) tiers(w http.ResponseWriter, r *http.Request) {
	all := subscription.Tiers()
	rows := make([]tierRow, len(all))
	for i, t := range all {
		rows[i] = tierRow{Tier: t, Features: subscription.FeaturesFor(t)}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) tracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Tracks())
}

func (s *Server) listAnnouncements(w http.ResponseWriter, r *http.Request) {
	out := s.announcements
	if out == nil {
		out = []catalog.Announcement{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.playlists.All())
}

// playPlaylist queues the playlist's playable tracks and starts the first.
// A playlist with nothing playable leaves the player alone.
func (s *Server) playPlaylist(w http.ResponseWriter, r *http.Request) {
	p, ok := s.playlists.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if tracks := s.catalog.Resolve(p); len(tracks) > 0 {
		s.engine.SetQueue(tracks)
		s.engine.Play(tracks[0])
	}
	s.writePlayer(w, r)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) generatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := s.curator.Generate(r.Context(), req.Prompt, s.catalog.Tracks())
	switch {
	case err == nil:
	case errors.Is(err, curator.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, curator.Message(err))
		return
	case errors.Is(err, curator.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, curator.Message(err))
		return
	default:
		writeError(w, http.StatusServiceUnavailable, curator.Message(err))
		return
	}

	s.playlists.Prepend(p)
	s.log.Info("ai playlist added", zap.String("id", p.ID), zap.Int64("user_id", identityFrom(r.Context()).ID))
	writeJSON(w, http.StatusCreated, p)
}
