package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/satindergrewal/cadence/internal/account"
	"github.com/satindergrewal/cadence/internal/subscription"
)

func (s *Server) adminUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Users())
}

type subscriptionRequest struct {
	Tier string `json:"tier"`
}

// adminSetSubscription changes another identity's tier. Admin tiers are fixed.
func (s *Server) adminSetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req subscriptionRequest
	if !decode(w, r, &req) {
		return
	}
	tier, err := subscription.ParseTier(req.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	target, ok := s.session.Roster().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if target.Admin {
		writeError(w, http.StatusForbidden, "admin subscriptions cannot be changed")
		return
	}

	s.session.UpdateSubscription(id, tier)
	updated, _ := s.session.Roster().Get(id)
	writeJSON(w, http.StatusOK, struct {
		User account.Identity `json:"user"`
	}{updated})
}
