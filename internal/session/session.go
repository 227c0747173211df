// Package session is the only place that reads or writes the persisted
// session triple (token, role, cached profile). Token and role are always
// written and cleared together; a half-present pair counts as no session.
package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrInvalidSession = errors.New("session requires both token and role")
)

// Manager reads and writes sessions through a repository.StateStore.
type Manager struct {
	store  repository.StateStore
	sealer *sealer
	now    func() time.Time
}

// NewManager creates a Manager. sealKey is an optional hex encoded 32 byte
// key; when present the token is sealed before it reaches the store.
func NewManager(store repository.StateStore, sealKey string) (*Manager, error) {
	m := &Manager{store: store, now: time.Now}
	if sealKey != "" {
		raw, err := hex.DecodeString(sealKey)
		if err != nil {
			return nil, fmt.Errorf("decode seal key: %w", err)
		}
		s, err := newSealer(raw)
		if err != nil {
			return nil, err
		}
		m.sealer = s
	}
	return m, nil
}

// Load returns the session of one browser. Any inconsistency (one of
// token/role missing, unknown role, expired JWT, unreadable sealed token)
// clears what is left and returns ErrNoSession.
func (m *Manager) Load(ctx context.Context, sid string) (domain.Session, error) {
	if sid == "" {
		return domain.Session{}, ErrNoSession
	}

	rawToken, tokenErr := m.get(ctx, sid, repository.KeyToken)
	rawRole, roleErr := m.get(ctx, sid, repository.KeyRole)
	if tokenErr != nil && !errors.Is(tokenErr, repository.ErrNotFound) {
		return domain.Session{}, tokenErr
	}
	if roleErr != nil && !errors.Is(roleErr, repository.ErrNotFound) {
		return domain.Session{}, roleErr
	}
	if rawToken == nil && rawRole == nil {
		return domain.Session{}, ErrNoSession
	}

	s := domain.Session{Role: domain.Role(rawRole)}
	if rawToken != nil {
		token, err := m.open(rawToken)
		if err != nil {
			log.Printf("WARN: Dropping unreadable session token for %s: %v", sid, err)
		} else {
			s.Token = token
		}
	}

	if !s.Valid() || m.expired(s.Token) {
		if err := m.Clear(ctx, sid); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, ErrNoSession
	}

	if rawUser, err := m.get(ctx, sid, repository.KeyUser); err == nil {
		var profile domain.UserProfile
		if jsonErr := json.Unmarshal(rawUser, &profile); jsonErr == nil {
			s.Profile = &profile
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Session{}, err
	}

	return s, nil
}

// Save persists a full session. A session missing token or role is rejected.
func (m *Manager) Save(ctx context.Context, sid string, s domain.Session) error {
	if sid == "" || !s.Valid() {
		return ErrInvalidSession
	}
	sealed, err := m.seal(s.Token)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, sid, repository.KeyToken, sealed); err != nil {
		return err
	}
	if err := m.store.Set(ctx, sid, repository.KeyRole, []byte(s.Role)); err != nil {
		// Never leave a token without its role.
		_ = m.store.Delete(ctx, sid, repository.KeyToken)
		return err
	}
	if s.Profile == nil {
		return m.store.Delete(ctx, sid, repository.KeyUser)
	}
	return m.SaveProfile(ctx, sid, *s.Profile)
}

// SaveProfile refreshes the cached profile only.
func (m *Manager) SaveProfile(ctx context.Context, sid string, p domain.UserProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, sid, repository.KeyUser, raw)
}

// Clear removes token, role and profile together.
func (m *Manager) Clear(ctx context.Context, sid string) error {
	return m.store.Delete(ctx, sid, repository.KeyToken, repository.KeyRole, repository.KeyUser)
}

func (m *Manager) get(ctx context.Context, sid, key string) ([]byte, error) {
	v, err := m.store.Get(ctx, sid, key)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (m *Manager) seal(token string) ([]byte, error) {
	if m.sealer == nil {
		return []byte(token), nil
	}
	return m.sealer.seal([]byte(token))
}

func (m *Manager) open(raw []byte) (string, error) {
	if m.sealer == nil {
		return string(raw), nil
	}
	plain, err := m.sealer.open(raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// expired inspects the exp claim without verifying the signature; the
// backend is the one that verifies. Opaque, non-JWT tokens never expire here.
func (m *Manager) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(m.now())
}

// Scope binds the manager to one browser session.
func (m *Manager) Scope(sid string) *Scope {
	return &Scope{manager: m, sid: sid}
}

// Scope is a Manager bound to a single session id. It is what the HTTP
// facade uses to read the bearer token and to clear the session on 401.
type Scope struct {
	manager *Manager
	sid     string
}

// Token returns "" when there is no session.
func (s *Scope) Token(ctx context.Context) (string, error) {
	sess, err := s.manager.Load(ctx, s.sid)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return "", nil
		}
		return "", err
	}
	return sess.Token, nil
}

// Clear drops the whole session triple.
func (s *Scope) Clear(ctx context.Context) error {
	return s.manager.Clear(ctx, s.sid)
}
