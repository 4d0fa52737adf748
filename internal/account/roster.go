package account

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/satindergrewal/cadence/internal/subscription"
)

// Identity is a roster member as seen by callers. It never carries the secret.
type Identity struct {
	ID    int64             `json:"id"`
	Name  string            `json:"name"`
	Email string            `json:"email"`
	Tier  subscription.Tier `json:"tier"`
	Admin bool              `json:"admin"`
}

// Seed describes a roster member loaded at startup.
type Seed struct {
	ID     int64             `yaml:"id"`
	Name   string            `yaml:"name"`
	Email  string            `yaml:"email"`
	Secret string            `yaml:"secret"`
	Tier   subscription.Tier `yaml:"tier"`
	Admin  bool              `yaml:"admin"`
}

type member struct {
	Identity
	hash []byte
}

// Roster is the in-memory user list. Membership only grows, through Register.
type Roster struct {
	cost int
	now  func() time.Time

	mu      sync.RWMutex
	members []*member
}

// NewRoster hashes the seed secrets with the given bcrypt cost (0 means bcrypt.DefaultCost).
func NewRoster(seeds []Seed, cost int) (*Roster, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	r := &Roster{cost: cost, now: time.Now}

	seen := make(map[int64]bool, len(seeds))
	for _, s := range seeds {
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate user id %d", s.ID)
		}
		seen[s.ID] = true
		if !s.Tier.Valid() {
			return nil, fmt.Errorf("user %d: unknown tier %q", s.ID, s.Tier)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Secret), cost)
		if err != nil {
			return nil, fmt.Errorf("hash secret for user %d: %w", s.ID, err)
		}
		r.members = append(r.members, &member{
			Identity: Identity{ID: s.ID, Name: s.Name, Email: s.Email, Tier: s.Tier, Admin: s.Admin},
			hash:     hash,
		})
	}
	return r, nil
}

// Users returns every member in roster order.
func (r *Roster) Users() []Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.members, func(m *member, _ int) Identity { return m.Identity })
}

// Get finds a member by id.
func (r *Roster) Get(id int64) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := lo.Find(r.members, func(m *member) bool { return m.ID == id })
	if !ok {
		return Identity{}, false
	}
	return m.Identity, true
}

// Admin returns the first administrator in the roster.
func (r *Roster) Admin() (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := lo.Find(r.members, func(m *member) bool { return m.Admin })
	if !ok {
		return Identity{}, false
	}
	return m.Identity, true
}

// Authenticate matches identifier against name or email (case-insensitive)
// and secret against the stored hash. The first member satisfying both wins.
func (r *Roster) Authenticate(identifier, secret string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if !strings.EqualFold(m.Name, identifier) && !strings.EqualFold(m.Email, identifier) {
			continue
		}
		if bcrypt.CompareHashAndPassword(m.hash, []byte(secret)) == nil {
			return m.Identity, true
		}
	}
	return Identity{}, false
}

// Register appends a non-admin member at the lowest tier.
// Returns false, leaving the roster untouched, if the email is already taken.
func (r *Roster) Register(name, email, secret string) (Identity, bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), r.cost)
	if err != nil {
		return Identity{}, false, fmt.Errorf("hash secret: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if lo.ContainsBy(r.members, func(m *member) bool { return strings.EqualFold(m.Email, email) }) {
		return Identity{}, false, nil
	}

	id := r.now().UnixMilli()
	for lo.ContainsBy(r.members, func(m *member) bool { return m.ID == id }) {
		id++
	}

	m := &member{
		Identity: Identity{ID: id, Name: name, Email: email, Tier: subscription.Lowest()},
		hash:     hash,
	}
	r.members = append(r.members, m)
	return m.Identity, true, nil
}

// SetTier rewrites a member's tier. Returns false if no member has that id.
func (r *Roster) SetTier(id int64, tier subscription.Tier) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := lo.Find(r.members, func(m *member) bool { return m.ID == id })
	if !ok {
		return false
	}
	m.Tier = tier
	return true
}
