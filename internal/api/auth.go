package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"go.uber.org/zap"

	"github.com/satindergrewal/cadence/internal/account"
	"github.com/satindergrewal/cadence/internal/subscription"
)

type ctxKey int

const identityKey ctxKey = iota

// identityFrom returns the identity attached by requireSession.
func identityFrom(ctx context.Context) account.Identity {
	id, _ := ctx.Value(identityKey).(account.Identity)
	return id
}

type sessionResponse struct {
	Token    string                  `json:"token"`
	User     account.Identity        `json:"user"`
	Features subscription.FeatureSet `json:"features"`
}

type meResponse struct {
	User     account.Identity        `json:"user"`
	Features subscription.FeatureSet `json:"features"`
}

// issueToken signs a token for the currently signed-in identity.
func (s *Server) issueToken(w http.ResponseWriter) {
	id, ok := s.session.Current()
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	now := time.Now()
	_, signed, err := s.auth.Encode(map[string]any{
		jwt.SubjectKey:    strconv.FormatInt(id.ID, 10),
		jwt.IssuedAtKey:   now.Unix(),
		jwt.ExpirationKey: now.Add(s.tokenTTL),
	})
	if err != nil {
		s.log.Error("sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Token:    signed,
		User:     id,
		Features: s.session.Features(),
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	if !s.session.Login(req.Identifier, req.Secret) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	s.issueToken(w)
}

type signUpRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Secret == "" {
		writeError(w, http.StatusBadRequest, "name, email and secret are required")
		return
	}
	if !s.session.SignUp(req.Name, req.Email, req.Secret) {
		writeError(w, http.StatusConflict, "An account with this email already exists.")
		return
	}
	s.issueToken(w)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.session.Logout()
	s.engine.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, meResponse{
		User:     identityFrom(r.Context()),
		Features: s.session.Features(),
	})
}

// requireSession accepts a verified token only while its subject is the
// identity signed in right now.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}
		subject, _ := token.Subject()
		current, ok := s.session.Current()
		if !ok || subject != strconv.FormatInt(current.ID, 10) {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, current)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identityFrom(r.Context()).Admin {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// feature selects one capability from a feature set.
type feature struct {
	name string
	has  func(subscription.FeatureSet) bool
}

var aiPlaylists = feature{"ai_playlists", func(f subscription.FeatureSet) bool { return f.AIPlaylists }}

// requireFeature gates a route on the live tier of the signed-in identity.
func (s *Server) requireFeature(f feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !f.has(s.session.Features()) {
				writeError(w, http.StatusForbidden, "upgrade required: "+f.name)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
