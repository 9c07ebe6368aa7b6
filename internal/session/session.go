// Package session keeps the authenticated user of the storefront: the
// bearer token, its expiry and the profile returned by /me.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Backend is the part of the API client the session talks to.
type Backend interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	Register(ctx context.Context, email, name, password string) (json.RawMessage, error)
	Me(ctx context.Context) (*domain.UserProfile, error)
}

type Session struct {
	mu      sync.RWMutex
	loginMu sync.Mutex
	rec     domain.AuthRecord
	store   storage.Store
	backend Backend
	log     zerolog.Logger
	now     func() time.Time
}

func New(store storage.Store, backend Backend, log zerolog.Logger) *Session {
	return &Session{
		store:   store,
		backend: backend,
		log:     log.With().Str("component", "session").Logger(),
		now:     time.Now,
	}
}

// Load restores the persisted record. An expired record is discarded and
// the cleared state persisted.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec domain.AuthRecord
	err := storage.GetJSON(ctx, s.store, storage.KeyAuth, &rec)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		s.rec = domain.AuthRecord{}
		return nil
	default:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			s.log.Warn().Err(err).Msg("discarding corrupt auth record")
			s.rec = domain.AuthRecord{}
			return nil
		}
		return err
	}

	if rec.Expired(s.now()) {
		s.log.Info().Msg("stored session expired")
		s.rec = domain.AuthRecord{}
		s.persist(ctx)
		return nil
	}
	s.rec = rec
	return nil
}

// Save merges the non-empty fields of partial into the record and persists it.
func (s *Session) Save(ctx context.Context, partial domain.AuthRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.merge(partial)
	s.persist(ctx)
}

func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec = domain.AuthRecord{}
	if err := s.store.Remove(ctx, storage.KeyAuth); err != nil {
		s.log.Error().Err(err).Msg("auth remove failed")
	}
}

// Login validates the credentials, stores the token and then the profile.
// On any failure the previous state is put back.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	email = strings.TrimSpace(email)
	if err := validateLogin(email, password); err != nil {
		return nil, err
	}

	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	prev := s.Record()

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	s.setToken(ctx, res.AccessToken, s.expiry(res))

	user, err := s.backend.Me(ctx)
	if err != nil {
		s.restore(ctx, prev)
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	s.Save(ctx, domain.AuthRecord{User: user})
	s.log.Info().Str("email", user.Email).Msg("logged in")
	return user, nil
}

// Register creates the account. It does not log the user in.
func (s *Session) Register(ctx context.Context, email, name, password string) error {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if err := validateRegister(email, name, password); err != nil {
		return err
	}
	if _, err := s.backend.Register(ctx, email, name, password); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Refresh re-reads the profile for a stored token. A rejected token clears
// the session and returns ErrStaleAuth.
func (s *Session) Refresh(ctx context.Context) error {
	if s.Token() == "" {
		return nil
	}

	user, err := s.backend.Me(ctx)
	if err != nil {
		s.Clear(ctx)
		return fmt.Errorf("%w: %w", ErrStaleAuth, err)
	}
	s.Save(ctx, domain.AuthRecord{User: user})
	return nil
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.Token
}

// Record returns a copy of the current state.
func (s *Session) Record() domain.AuthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := s.rec
	if rec.User != nil {
		u := *rec.User
		rec.User = &u
	}
	return rec
}

func (s *Session) User() *domain.UserProfile {
	return s.Record().User
}

// DisplayName is the user's name, then email, then "Invitado".
func (s *Session) DisplayName() string {
	u := s.User()
	switch {
	case u == nil:
		return "Invitado"
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return "Invitado"
	}
}

// setToken replaces token and expiry together.
func (s *Session) setToken(ctx context.Context, token string, exp *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec.Token = token
	s.rec.Expiry = exp
	s.persist(ctx)
}

func (s *Session) restore(ctx context.Context, prev domain.AuthRecord) {
	if prev.Empty() {
		s.Clear(ctx)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec = prev
	s.persist(ctx)
}

func (s *Session) merge(p domain.AuthRecord) {
	if p.Token != "" {
		s.rec.Token = p.Token
	}
	if p.Expiry != nil {
		exp := *p.Expiry
		s.rec.Expiry = &exp
	}
	if p.User != nil {
		u := *p.User
		s.rec.User = &u
	}
}

func (s *Session) persist(ctx context.Context) {
	if err := storage.SetJSON(ctx, s.store, storage.KeyAuth, s.rec); err != nil {
		s.log.Error().Err(err).Msg("auth persist failed")
	}
}

// expiry is now+expires_in when the server sends it, otherwise the exp
// claim of a JWT token. Signatures are not checked: the backend owns them.
func (s *Session) expiry(res *apiclient.LoginResponse) *time.Time {
	if res.ExpiresIn > 0 {
		exp := s.now().Add(time.Duration(res.ExpiresIn * float64(time.Second)))
		return &exp
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(res.AccessToken, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
