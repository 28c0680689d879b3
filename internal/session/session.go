// Package session holds who is signed in. The identity is decoded from the
// bearer token the backend issues at login, and the raw token is kept in a
// tokenstore so the next process starts signed in.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/tokenstore"
)

// ErrNoUser is returned by operations that need a signed-in user.
var ErrNoUser = errors.New("user not found")

// State is a point-in-time copy of the session.
type State struct {
	User            *auth.Identity
	Token           string
	IsAuthenticated bool
	Role            string
	Loading         bool
	Error           string
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger decode and storage failures go to.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithClock replaces time.Now, used to reject expired stored tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

type Session struct {
	backend Backend
	tokens  tokenstore.Store
	logger  zerolog.Logger
	now     func() time.Time

	mu    sync.Mutex
	state State
	gen   uint64
}

// New creates a signed-out session. Call Hydrate to restore a stored token.
func New(backend Backend, tokens tokenstore.Store, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		tokens:  tokens,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "session").Logger()
	return s
}

// Hydrate restores the session from the stored token. A token that cannot
// be decoded or has expired is logged and cleared, leaving the session
// signed out. Only storage failures are returned.
func (s *Session) Hydrate() error {
	token, err := s.tokens.Load()
	if errors.Is(err, tokenstore.ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}

	id, err := auth.DecodeToken(token)
	if err == nil && id.Expired(s.now()) {
		err = errors.New("token expired")
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("discarding stored token")
		if cerr := s.tokens.Clear(); cerr != nil {
			return fmt.Errorf("clear token: %w", cerr)
		}
		s.mu.Lock()
		s.state = State{}
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.state = authenticated(id, token)
	s.mu.Unlock()
	return nil
}

// Login posts creds, decodes the returned token and persists it. A token
// that cannot be decoded fails the login and is not stored.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		s.fail(err)
		return err
	}

	gen := s.begin()
	token, err := s.backend.Login(ctx, creds)
	if err == nil {
		var id auth.Identity
		id, err = auth.DecodeToken(token)
		if err != nil {
			s.logger.Error().Err(err).Str("username", creds.Username).Msg("login token could not be decoded")
		} else if err = s.tokens.Save(token); err != nil {
			err = fmt.Errorf("save token: %w", err)
		} else {
			s.settle(gen, nil, func() { s.state = authenticated(id, token) })
			s.logger.Info().Int64("user_id", id.UserID).Str("role", id.Role).Msg("signed in")
			return nil
		}
	}
	s.settle(gen, err, nil)
	return err
}

// Register creates an account. A signed-out session records the submitted
// user but stays signed out; the caller sends the user to the login screen.
// A signed-in session keeps the identity its token carries.
func (s *Session) Register(ctx context.Context, reg Registration) error {
	reg = reg.withDefaults()
	if err := reg.Validate(); err != nil {
		s.fail(err)
		return err
	}

	gen := s.begin()
	err := s.backend.Register(ctx, reg)
	s.settle(gen, err, func() {
		if !s.state.IsAuthenticated {
			s.state.User = &auth.Identity{Username: reg.Username, Email: reg.Email, Role: reg.Role}
		}
	})
	return err
}

// Logout clears the stored token and resets the session.
func (s *Session) Logout() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn().Err(err).Msg("could not clear stored token")
	}
	s.mu.Lock()
	s.gen++
	s.state = State{}
	s.mu.Unlock()
}

// ChangePassword sets a new password for the signed-in user. The outcome is
// returned to the caller and never recorded in State.
func (s *Session) ChangePassword(ctx context.Context, change PasswordChange) error {
	if err := change.Validate(); err != nil {
		return err
	}
	user := s.CurrentUser()
	if user == nil || !s.IsAuthenticated() {
		return ErrNoUser
	}
	return s.backend.ChangePassword(ctx, user.UserID, change.NewPassword)
}

// CurrentUser returns a copy of the signed-in (or just registered) user, or
// nil.
func (s *Session) CurrentUser() *auth.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated
}

func (s *Session) ClearError() {
	s.mu.Lock()
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.state.Loading = true
	s.state.Error = ""
	return s.gen
}

// settle applies fn on success and, if gen is still current, clears Loading
// and records err.
func (s *Session) settle(gen uint64, err error, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && fn != nil {
		fn()
	}
	if gen != s.gen {
		return
	}
	s.state.Loading = false
	if err != nil {
		s.state.Error = err.Error()
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state.Error = err.Error()
	s.mu.Unlock()
}

func authenticated(id auth.Identity, token string) State {
	return State{
		User:            &id,
		Token:           token,
		IsAuthenticated: true,
		Role:            id.Role,
	}
}
