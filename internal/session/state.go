// Package session holds the authenticated login state and its optional
// persistence.
package session

import (
	"sync"

	"github.com/spiffcs/codewatch/internal/log"
	"github.com/spiffcs/codewatch/internal/model"
)

// Credentials is an authenticated username/token pair.
type Credentials struct {
	Username string `json:"username"`
	// Token must never be logged or printed.
	Token string `json:"token"`
}

// IsZero reports whether no user is set.
func (c Credentials) IsZero() bool {
	return c.Username == ""
}

// LoginState tracks the current credentials and the login attempt in
// flight, if any. At most one attempt is outstanding at a time.
type LoginState struct {
	mu         sync.Mutex
	current    Credentials
	inProgress string
}

// NewLoginState creates an empty state.
func NewLoginState() *LoginState {
	return &LoginState{}
}

// Begin records a login attempt for username. It fails with
// model.ErrLoginInProgress while another attempt is outstanding,
// whichever username that attempt is for.
func (s *LoginState) Begin(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inProgress != "" {
		return &model.Error{
			Kind:    model.KindLoginInProgress,
			Subject: username,
			Message: "already logging in as " + s.inProgress,
		}
	}
	s.inProgress = username
	log.Debug("login started", "username", username)
	return nil
}

// Complete finishes the outstanding attempt and stores the credentials.
// Completing an attempt that was never begun, or one for a different
// username, is a programming error.
func (s *LoginState) Complete(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inProgress != username {
		invariant("login completed without a matching attempt",
			"username", username, "in_progress", s.inProgress)
		return
	}
	s.inProgress = ""
	s.current = Credentials{Username: username, Token: token}
	log.Info("logged in", "username", username, "token_set", token != "")
}

// Fail clears the outstanding attempt without touching stored credentials.
func (s *LoginState) Fail(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inProgress != username {
		invariant("login failed without a matching attempt",
			"username", username, "in_progress", s.inProgress)
		return
	}
	s.inProgress = ""
	log.Info("login failed", "username", username)
}

// Current returns the stored credentials.
func (s *LoginState) Current() (Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, !s.current.IsZero()
}

// Token returns the stored token, or "" when logged out.
func (s *LoginState) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Token
}

// InProgress returns the username of the outstanding attempt.
func (s *LoginState) InProgress() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgress, s.inProgress != ""
}

// Restore installs previously persisted credentials. It does not affect
// an attempt in flight.
func (s *LoginState) Restore(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = creds
}

// Clear forgets the stored credentials.
func (s *LoginState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Credentials{}
}
