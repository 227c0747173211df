package service

import (
	"context"
	"errors"
	"log"

	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

var ErrTokenMissing = errors.New("authentication response did not include a token")

type AuthService interface {
	Login(ctx context.Context, sid string, role domain.Role, creds apiclient.Credentials) (domain.Session, error)
	Register(ctx context.Context, sid string, reg apiclient.Registration) (domain.Session, error)
	Logout(ctx context.Context, sid string) error
	// Current returns the stored session or session.ErrNoSession.
	Current(ctx context.Context, sid string) (domain.Session, error)
	// Me refreshes the cached profile from the backend.
	Me(ctx context.Context, sid string) (*domain.UserProfile, error)
}

type authService struct {
	backends Backends
}

// NewAuthService creates a new instance of authService.
func NewAuthService(backends Backends) AuthService {
	return &authService{backends: backends}
}

// Login authenticates against the admin or member endpoint and stores the
// session triple on success.
func (s *authService) Login(ctx context.Context, sid string, role domain.Role, creds apiclient.Credentials) (domain.Session, error) {
	// 1. Validate input before any network call
	if !role.Known() {
		return domain.Session{}, domain.NewValidationError("role", "must be admin or user")
	}
	if err := domain.Validate(creds); err != nil {
		return domain.Session{}, err
	}

	// 2. Authenticate
	resp, err := s.backends.Anonymous().Login(ctx, role, creds)
	if err != nil {
		return domain.Session{}, err
	}

	// 3. Persist token, role and profile together
	return s.establish(ctx, sid, role, resp)
}

// Register signs up a member and logs them in.
func (s *authService) Register(ctx context.Context, sid string, reg apiclient.Registration) (domain.Session, error) {
	if err := domain.Validate(reg); err != nil {
		return domain.Session{}, err
	}
	resp, err := s.backends.Anonymous().Register(ctx, reg)
	if err != nil {
		return domain.Session{}, err
	}
	return s.establish(ctx, sid, domain.RoleUser, resp)
}

func (s *authService) establish(ctx context.Context, sid string, role domain.Role, resp *apiclient.AuthResponse) (domain.Session, error) {
	if resp.AccessToken == "" {
		return domain.Session{}, ErrTokenMissing
	}
	sess := domain.Session{Token: resp.AccessToken, Role: role, Profile: resp.User}
	if err := s.backends.Sessions().Save(ctx, sid, sess); err != nil {
		log.Printf("ERROR: Failed to store session: %v", err)
		return domain.Session{}, err
	}
	return sess, nil
}

// Logout clears the session. There is no backend logout call.
func (s *authService) Logout(ctx context.Context, sid string) error {
	return s.backends.Sessions().Clear(ctx, sid)
}

func (s *authService) Current(ctx context.Context, sid string) (domain.Session, error) {
	return s.backends.Sessions().Load(ctx, sid)
}

func (s *authService) Me(ctx context.Context, sid string) (*domain.UserProfile, error) {
	sess, err := s.backends.Sessions().Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	profile, err := s.backends.For(sid).Me(ctx, sess.Role)
	if err != nil {
		return nil, err
	}
	if err := s.backends.Sessions().SaveProfile(ctx, sid, *profile); err != nil {
		log.Printf("WARN: Failed to cache profile for session: %v", err)
	}
	return profile, nil
}
