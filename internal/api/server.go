// Package api is the HTTP surface over the session, catalog, player and curator.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"

	"github.com/satindergrewal/cadence/internal/account"
	"github.com/satindergrewal/cadence/internal/catalog"
	"github.com/satindergrewal/cadence/internal/curator"
	"github.com/satindergrewal/cadence/internal/player"
	"github.com/satindergrewal/cadence/internal/stream"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Session       *account.Session
	Catalog       *catalog.Catalog
	Playlists     *catalog.Collection
	Announcements []catalog.Announcement
	Engine        *player.Engine
	Curator       *curator.Curator
	Broadcaster   *stream.Broadcaster

	SigningKey []byte
	TokenTTL   time.Duration
	Log        *zap.Logger
}

// Server serves the JSON API.
type Server struct {
	session       *account.Session
	catalog       *catalog.Catalog
	playlists     *catalog.Collection
	announcements []catalog.Announcement
	engine        *player.Engine
	curator       *curator.Curator

	auth     *jwtauth.JWTAuth
	tokenTTL time.Duration
	log      *zap.Logger

	broadcaster *stream.Broadcaster
	events      *stream.EventsHandler
	webrtc      *stream.WebRTCHandler
}

// NewServer wires a server from its dependencies.
func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.TokenTTL <= 0 {
		d.TokenTTL = 24 * time.Hour
	}
	if d.Curator == nil {
		d.Curator = curator.New(nil, 0, d.Log)
	}
	if d.Broadcaster == nil {
		d.Broadcaster = stream.NewBroadcaster()
	}
	s := &Server{
		session:       d.Session,
		catalog:       d.Catalog,
		playlists:     d.Playlists,
		announcements: d.Announcements,
		engine:        d.Engine,
		curator:       d.Curator,
		auth:          jwtauth.New("HS256", d.SigningKey, nil),
		tokenTTL:      d.TokenTTL,
		log:           d.Log,
		broadcaster:   d.Broadcaster,
	}
	// Feeds carry the same tier-filtered view as GET /api/player.
	s.events = stream.NewEventsHandler(d.Broadcaster, s.feedView, d.Log.Named("events"))
	s.webrtc = stream.NewWebRTCHandler(d.Broadcaster, s.feedView, d.Log.Named("webrtc"))
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/signup", s.signUp)
		r.Get("/tiers", s.tiers)
		r.Get("/status", s.status)
		r.Get("/events", s.events.ServeHTTP)
		r.Handle("/offer", s.webrtc)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(s.auth))
			r.Use(s.requireSession)

			r.Post("/logout", s.logout)
			r.Get("/me", s.me)
			r.Get("/tracks", s.tracks)
			r.Get("/announcements", s.listAnnouncements)

			r.Get("/playlists", s.listPlaylists)
			r.Post("/playlists/{id}/play", s.playPlaylist)
			r.With(s.requireFeature(aiPlaylists)).Post("/playlists/generate", s.generatePlaylist)

			r.Route("/player", func(r chi.Router) {
				r.Get("/", s.playerStatus)
				r.Post("/play", s.playerPlay)
				r.Post("/toggle", s.playerOp(s.engine.TogglePlay))
				r.Post("/next", s.playerOp(s.engine.Next))
				r.Post("/prev", s.playerOp(s.engine.Prev))
				r.Post("/stop", s.playerOp(s.engine.Stop))
				r.Post("/seek", s.playerSeek)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/users", s.adminUsers)
				r.Post("/users/{id}/subscription", s.adminSetSubscription)
			})
		})
	})

	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type statusResponse struct {
	State           player.State `json:"state"`
	HTTPListeners   int          `json:"http_listeners"`
	WebRTCListeners int          `json:"webrtc_listeners"`
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		State:           s.engine.Status().State,
		HTTPListeners:   s.broadcaster.ListenerCount(),
		WebRTCListeners: s.webrtc.PeerCount(),
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
