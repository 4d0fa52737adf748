// Package account keeps the user roster and the single signed-in identity.
package account

import (
	"crypto/subtle"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satindergrewal/cadence/internal/subscription"
)

// AdminCredential is the distinguished administrator name/secret pair.
// It is checked before the roster and always resolves to the roster's admin.
type AdminCredential struct {
	Name   string
	Secret string
}

// Session holds zero or one signed-in identity.
type Session struct {
	roster *Roster
	admin  AdminCredential
	log    *zap.Logger

	mu      sync.RWMutex
	current *Identity
}

// NewSession creates a signed-out session over roster.
func NewSession(roster *Roster, admin AdminCredential, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{roster: roster, admin: admin, log: log}
}

// Roster returns the roster backing this session.
func (s *Session) Roster() *Roster {
	return s.roster
}

// Login signs in by name or email. It does not say whether the user or the secret was wrong.
func (s *Session) Login(identifier, secret string) bool {
	var (
		id Identity
		ok bool
	)
	if s.isAdminPair(identifier, secret) {
		id, ok = s.roster.Admin()
	} else {
		id, ok = s.roster.Authenticate(identifier, secret)
	}
	if !ok {
		s.log.Info("sign-in rejected", zap.String("identifier", identifier))
		return false
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()
	s.log.Info("signed in", zap.Int64("user_id", id.ID), zap.String("tier", string(id.Tier)))
	return true
}

func (s *Session) isAdminPair(identifier, secret string) bool {
	if s.admin.Name == "" {
		return false
	}
	if strings.ToLower(identifier) != strings.ToLower(s.admin.Name) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.admin.Secret)) == 1
}

// Logout clears the signed-in identity. Safe to call when signed out.
func (s *Session) Logout() {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()
	if prev != nil {
		s.log.Info("signed out", zap.Int64("user_id", prev.ID))
	}
}

// SignUp registers a new lowest-tier identity and signs it in.
// Returns false if the email is already in the roster (case-insensitive).
func (s *Session) SignUp(name, email, secret string) bool {
	id, ok, err := s.roster.Register(name, email, secret)
	if err != nil {
		s.log.Error("sign-up failed", zap.Error(err))
		return false
	}
	if !ok {
		s.log.Info("sign-up rejected: email taken", zap.String("email", email))
		return false
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()
	s.log.Info("signed up", zap.Int64("user_id", id.ID))
	return true
}

// UpdateSubscription rewrites the tier of the given identity. If that identity
// is signed in, the session sees the new tier before this returns.
// Unknown ids and tiers are ignored.
func (s *Session) UpdateSubscription(id int64, tier subscription.Tier) {
	if !tier.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.roster.SetTier(id, tier) {
		return
	}
	if s.current != nil && s.current.ID == id {
		s.current.Tier = tier
	}
	s.log.Info("subscription updated", zap.Int64("user_id", id), zap.String("tier", string(tier)))
}

// Current returns the signed-in identity.
func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// Features derives the capability set of the signed-in tier, or the lowest
// tier's when signed out. It is computed on every call, never cached.
func (s *Session) Features() subscription.FeatureSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return subscription.FeaturesFor(subscription.Lowest())
	}
	return subscription.FeaturesFor(s.current.Tier)
}

// Users lists the roster for the admin panel.
func (s *Session) Users() []Identity {
	return s.roster.Users()
}
