package account

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/satindergrewal/cadence/internal/subscription"
)

var testSeeds = []Seed{
	{ID: 1, Name: "matt", Email: "matt@cadence.fm", Secret: "2406", Tier: subscription.UltraProMax, Admin: true},
	{ID: 2, Name: "Alice", Email: "alice@email.com", Secret: "password", Tier: subscription.Pro},
	{ID: 3, Name: "Bob", Email: "bob@email.com", Secret: "password", Tier: subscription.Free},
}

var testAdmin = AdminCredential{Name: "matt", Secret: "2406"}

func newTestSession(t *testing.T, seeds []Seed) *Session {
	t.Helper()
	r, err := NewRoster(seeds, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	return NewSession(r, testAdmin, zaptest.NewLogger(t))
}

func TestNewRosterRejectsBadSeeds(t *testing.T) {
	if _, err := NewRoster([]Seed{{ID: 1, Tier: "free"}, {ID: 1, Tier: "free"}}, bcrypt.MinCost); err == nil {
		t.Error("duplicate ids accepted")
	}
	if _, err := NewRoster([]Seed{{ID: 1, Tier: "gold"}}, bcrypt.MinCost); err == nil {
		t.Error("unknown tier accepted")
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		secret     string
		wantOK     bool
		wantID     int64
	}{
		{"by name", "Alice", "password", true, 2},
		{"name case-insensitive", "aLiCe", "password", true, 2},
		{"by email", "BOB@EMAIL.COM", "password", true, 3},
		{"wrong secret", "alice", "Password", false, 0},
		{"unknown user", "zed", "password", false, 0},
		{"empty", "", "", false, 0},
	}
	for _, tt := range tests {
		s := newTestSession(t, testSeeds)
		ok := s.Login(tt.identifier, tt.secret)
		if ok != tt.wantOK {
			t.Errorf("%s: Login = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		cur, signedIn := s.Current()
		if signedIn != tt.wantOK {
			t.Errorf("%s: signed in = %v, want %v", tt.name, signedIn, tt.wantOK)
		}
		if tt.wantOK && cur.ID != tt.wantID {
			t.Errorf("%s: current id = %d, want %d", tt.name, cur.ID, tt.wantID)
		}
	}
}

func TestLoginAdminPairResolvesRosterAdmin(t *testing.T) {
	// the roster admin has a different display name than the admin credential
	seeds := []Seed{
		{ID: 7, Name: "root", Email: "root@cadence.fm", Secret: "other", Tier: subscription.Ultra, Admin: true},
		{ID: 8, Name: "Matt", Email: "m@x.io", Secret: "2406", Tier: subscription.Free},
	}
	for _, name := range []string{"matt", "MATT", "MaTt"} {
		s := newTestSession(t, seeds)
		if !s.Login(name, "2406") {
			t.Fatalf("Login(%q, admin secret) = false", name)
		}
		cur, _ := s.Current()
		if cur.ID != 7 || !cur.Admin {
			t.Errorf("Login(%q) resolved to %+v, want admin id 7", name, cur)
		}
	}
}

func TestLoginAdminPairWithoutRosterAdmin(t *testing.T) {
	s := newTestSession(t, []Seed{{ID: 2, Name: "Alice", Email: "a@b.c", Secret: "x", Tier: subscription.Free}})
	if s.Login("matt", "2406") {
		t.Error("admin pair signed in although roster has no admin")
	}
}

func TestLoginReplacesCurrent(t *testing.T) {
	s := newTestSession(t, testSeeds)
	s.Login("alice", "password")
	s.Login("bob", "password")
	cur, _ := s.Current()
	if cur.ID != 3 {
		t.Errorf("current = %d, want 3 (at most one identity)", cur.ID)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	s := newTestSession(t, testSeeds)
	s.Logout()
	s.Login("alice", "password")
	s.Logout()
	s.Logout()
	if _, ok := s.Current(); ok {
		t.Error("still signed in after logout")
	}
}

func TestSignUp(t *testing.T) {
	s := newTestSession(t, testSeeds)
	if !s.SignUp("Dana", "dana@email.com", "pw") {
		t.Fatal("SignUp = false")
	}
	cur, ok := s.Current()
	if !ok {
		t.Fatal("not signed in after sign-up")
	}
	if cur.Tier != subscription.Free || cur.Admin || cur.Name != "Dana" {
		t.Errorf("new identity = %+v, want free non-admin Dana", cur)
	}
	users := s.Users()
	if len(users) != 4 || users[3].ID != cur.ID {
		t.Errorf("roster = %+v, want new identity appended", users)
	}

	s.Logout()
	if !s.Login("DANA@email.com", "pw") {
		t.Error("cannot sign in with the registered credentials")
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	s := newTestSession(t, testSeeds)
	s.Login("alice", "password")
	before := s.Users()

	for _, email := range []string{"bob@email.com", "BOB@Email.Com"} {
		if s.SignUp("Robert", email, "pw") {
			t.Errorf("SignUp(%q) = true, want false", email)
		}
	}
	if after := s.Users(); len(after) != len(before) {
		t.Errorf("roster grew from %d to %d on rejected sign-up", len(before), len(after))
	}
	if cur, _ := s.Current(); cur.ID != 2 {
		t.Errorf("rejected sign-up changed current identity to %d", cur.ID)
	}
}

func TestRegisterIDsStayUnique(t *testing.T) {
	r, err := NewRoster(testSeeds, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	r.now = func() time.Time { return time.UnixMilli(2) } // collides with Alice

	a, ok, err := r.Register("x", "x@x.x", "pw")
	if err != nil || !ok {
		t.Fatalf("Register: ok=%v err=%v", ok, err)
	}
	b, ok, err := r.Register("y", "y@y.y", "pw")
	if err != nil || !ok {
		t.Fatalf("Register: ok=%v err=%v", ok, err)
	}

	seen := map[int64]bool{}
	for _, u := range r.Users() {
		if seen[u.ID] {
			t.Errorf("duplicate id %d", u.ID)
		}
		seen[u.ID] = true
	}
	if a.ID != 4 || b.ID != 5 {
		t.Errorf("ids = %d, %d, want 4, 5", a.ID, b.ID)
	}
}

func TestUpdateSubscription(t *testing.T) {
	s := newTestSession(t, testSeeds)
	s.Login("bob", "password")

	if f := s.Features(); !f.Ads || f.Lyrics {
		t.Errorf("free features = %+v", f)
	}

	s.UpdateSubscription(3, subscription.UltraProMax)
	cur, _ := s.Current()
	if cur.Tier != subscription.UltraProMax {
		t.Errorf("active tier = %q, want ultra promax", cur.Tier)
	}
	if f := s.Features(); !f.AIPlaylists || !f.HiFiAudio {
		t.Errorf("features after upgrade = %+v", f)
	}
	if u, _ := s.Roster().Get(3); u.Tier != subscription.UltraProMax {
		t.Errorf("roster tier = %q, want ultra promax", u.Tier)
	}

	// another member: roster changes, active session does not
	s.UpdateSubscription(2, subscription.Free)
	if u, _ := s.Roster().Get(2); u.Tier != subscription.Free {
		t.Errorf("Alice tier = %q, want free", u.Tier)
	}
	if cur, _ := s.Current(); cur.Tier != subscription.UltraProMax {
		t.Errorf("active tier changed by someone else's update: %q", cur.Tier)
	}
}

func TestUpdateSubscriptionNoOps(t *testing.T) {
	s := newTestSession(t, testSeeds)
	before := s.Users()
	s.UpdateSubscription(99, subscription.Pro)
	s.UpdateSubscription(2, "gold")
	after := s.Users()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("roster changed: %+v -> %+v", before[i], after[i])
		}
	}
}

func TestFeaturesSignedOut(t *testing.T) {
	s := newTestSession(t, testSeeds)
	if got := s.Features(); got != subscription.FeaturesFor(subscription.Free) {
		t.Errorf("signed-out features = %+v, want free", got)
	}
}

func TestAdminFlagNotSettable(t *testing.T) {
	s := newTestSession(t, testSeeds)
	s.SignUp("Eve", "eve@email.com", "pw")
	cur, _ := s.Current()
	s.UpdateSubscription(cur.ID, subscription.UltraProMax)
	if cur, _ := s.Current(); cur.Admin {
		t.Error("upgrade granted admin")
	}
}
