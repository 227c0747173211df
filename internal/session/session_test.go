package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository/memory"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestManager(t *testing.T, sealKey string) (*Manager, repository.StateStore) {
	t.Helper()
	store := memory.NewStateRepository()
	m, err := NewManager(store, sealKey)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	s, err := tok.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, "")

	in := domain.Session{Token: "opaque", Role: domain.RoleUser, Profile: &domain.UserProfile{ID: "u-1", Name: "Asha"}}
	if err := m.Save(ctx, "sid", in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != "opaque" || got.Role != domain.RoleUser || got.UserID() != "u-1" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := m.Clear(ctx, "sid"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, key := range []string{repository.KeyToken, repository.KeyRole, repository.KeyUser} {
		if _, err := store.Get(ctx, "sid", key); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("%s still present after Clear", key)
		}
	}
}

func TestSaveRejectsHalfSession(t *testing.T) {
	m, _ := newTestManager(t, "")
	for _, s := range []domain.Session{
		{Token: "t"},
		{Role: domain.RoleAdmin},
		{Token: "t", Role: "trainer"},
	} {
		if err := m.Save(context.Background(), "sid", s); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Save(%+v) = %v, want ErrInvalidSession", s, err)
		}
	}
}

func TestLoadClearsTokenWithoutRole(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, "")
	_ = store.Set(ctx, "sid", repository.KeyToken, []byte("orphan"))

	if _, err := m.Load(ctx, "sid"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := store.Get(ctx, "sid", repository.KeyToken); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("orphan token should have been cleared")
	}
}

func TestLoadDropsExpiredJWT(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, "")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	expired := domain.Session{Token: signedToken(t, now.Add(-time.Minute)), Role: domain.RoleAdmin}
	if err := m.Save(ctx, "old", expired); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := m.Load(ctx, "old"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired token should read as no session, got %v", err)
	}

	fresh := domain.Session{Token: signedToken(t, now.Add(time.Hour)), Role: domain.RoleAdmin}
	if err := m.Save(ctx, "new", fresh); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := m.Load(ctx, "new"); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
}

func TestSealedTokenNeverStoredInClear(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, testKey)

	if err := m.Save(ctx, "sid", domain.Session{Token: "very-secret-token", Role: domain.RoleUser}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := store.Get(ctx, "sid", repository.KeyToken)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if bytes.Contains(raw, []byte("very-secret-token")) {
		t.Fatal("token stored in clear")
	}
	got, err := m.Load(ctx, "sid")
	if err != nil || got.Token != "very-secret-token" {
		t.Fatalf("Load = %+v, %v", got, err)
	}

	// A different key cannot open it; the session is dropped.
	other, err := NewManager(store, strings.Repeat("ff", 32))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := other.Load(ctx, "sid"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession with wrong key, got %v", err)
	}
}

func TestNewManagerRejectsBadKey(t *testing.T) {
	if _, err := NewManager(memory.NewStateRepository(), "zz"); err == nil {
		t.Fatal("expected hex error")
	}
	if _, err := NewManager(memory.NewStateRepository(), "abcd"); err == nil {
		t.Fatal("expected length error")
	}
}

func TestScopeToken(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, "")
	scope := m.Scope("sid")

	if tok, err := scope.Token(ctx); err != nil || tok != "" {
		t.Fatalf("Token without session = %q, %v", tok, err)
	}
	_ = m.Save(ctx, "sid", domain.Session{Token: "abc", Role: domain.RoleUser})
	if tok, _ := scope.Token(ctx); tok != "abc" {
		t.Fatalf("Token = %q", tok)
	}
	if err := scope.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := m.Load(ctx, "sid"); !errors.Is(err, ErrNoSession) {
		t.Fatal("scope Clear did not clear the session")
	}
}

func TestResolveAccess(t *testing.T) {
	admin := domain.Session{Token: "t", Role: domain.RoleAdmin}
	user := domain.Session{Token: "t", Role: domain.RoleUser}

	tests := []struct {
		name     string
		sess     domain.Session
		required domain.Role
		allowed  bool
	}{
		{"no session", domain.Session{}, "", false},
		{"role without token", domain.Session{Role: domain.RoleAdmin}, domain.RoleAdmin, false},
		{"any signed in", user, "", true},
		{"admin route as admin", admin, domain.RoleAdmin, true},
		{"admin route as user", user, domain.RoleAdmin, false},
		{"user route as admin", admin, domain.RoleUser, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveAccess(tt.sess, tt.required)
			if got.Allowed != tt.allowed {
				t.Fatalf("Allowed = %v, want %v", got.Allowed, tt.allowed)
			}
			if !got.Allowed && got.RedirectTo != LoginPath {
				t.Fatalf("RedirectTo = %q", got.RedirectTo)
			}
		})
	}
}
