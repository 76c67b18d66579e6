// Package session is the single source of truth for who is logged in
// and with what role, persisted across restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/localmart/storefront-client/internal/models"
	"github.com/localmart/storefront-client/pkg/storage"
)

// Status is the three-state auth signal. Consumers that act before
// Restore has run see StatusUnknown and must not treat it as logged out.
type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusAnonymous
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// AuthAPI is the slice of the HTTP client the store needs for login and
// registration. Kept as an interface so this package does not import
// the client wrapper's error types.
type AuthAPI interface {
	Do(ctx context.Context, method, path string, body any, dest any) error
}

type Store struct {
	mu       sync.RWMutex
	api      AuthAPI
	persist  storage.Store
	status   Status
	user     *models.User
	token    string
	watchers []func(Status, *models.User)
}

func NewStore(persist storage.Store) *Store {
	return &Store{persist: persist, status: StatusUnknown}
}

// SetAPI late-binds the HTTP client. The client needs the store as its
// token source, so the two are constructed in sequence by the app root.
func (s *Store) SetAPI(api AuthAPI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
}

// Token implements the client wrapper's TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// User returns a copy of the current identity, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// OnChange registers a callback fired after every status transition.
// Callbacks run outside the store's lock.
func (s *Store) OnChange(fn func(Status, *models.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Restore loads the persisted token and identity. A token without a
// parseable identity (or the reverse) is discarded entirely: a
// credential is never trusted without its matching identity. Runs once
// at startup; afterwards the status is never StatusUnknown again.
func (s *Store) Restore() {
	token, hasToken := s.persist.Get(keyToken)
	rawUser, hasUser := s.persist.Get(keyUser)

	var user models.User
	valid := hasToken && hasUser && token != ""
	if valid {
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil || !user.Valid() {
			valid = false
		}
	}

	if !valid {
		_ = s.persist.Delete(keyToken)
		_ = s.persist.Delete(keyUser)
		s.install(StatusAnonymous, nil, "")
		return
	}
	s.install(StatusAuthenticated, &user, token)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type wireUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  *wireUser `json:"user"`
}

// Login authenticates against the backend. On failure the existing
// session, whatever it was, is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "/auth/login", credentials{Email: email, Password: password})
}

// Register creates an account and then behaves like a successful login.
// The user-facing role choice is translated to the backend's vocabulary
// through the mapping table in models.
func (s *Store) Register(ctx context.Context, name, email, password string, choice models.RoleChoice) error {
	role, ok := models.BackendRole(choice)
	if !ok {
		return fmt.Errorf("unsupported role choice %q", choice)
	}
	return s.authenticate(ctx, "/auth/register", registration{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
}

func (s *Store) authenticate(ctx context.Context, path string, body any) error {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()
	if api == nil {
		return errors.New("session store has no API client")
	}

	var resp authResponse
	if err := api.Do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	if resp.Token == "" || resp.User == nil {
		return errors.New("authentication response missing token or identity")
	}
	role, ok := models.NormalizeRole(resp.User.Role)
	if !ok {
		return fmt.Errorf("backend returned unknown role %q", resp.User.Role)
	}
	user := models.User{
		ID:    resp.User.ID,
		Email: resp.User.Email,
		Name:  resp.User.Name,
		Role:  role,
	}
	if !user.Valid() {
		return errors.New("authentication response identity incomplete")
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := s.persist.Set(keyToken, resp.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.persist.Set(keyUser, string(raw)); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}

	s.install(StatusAuthenticated, &user, resp.Token)
	return nil
}

// Logout clears persisted and in-memory state. It never contacts the
// backend: tokens are stateless there.
func (s *Store) Logout() {
	_ = s.persist.Delete(keyToken)
	_ = s.persist.Delete(keyUser)
	s.install(StatusAnonymous, nil, "")
}

// Invalidate is the path taken when the backend rejects the current
// token mid-session. A rejected credential must never be presented
// again, so this clears exactly like Logout.
func (s *Store) Invalidate() {
	s.Logout()
}

func (s *Store) install(status Status, user *models.User, token string) {
	s.mu.Lock()
	s.status = status
	s.user = user
	s.token = token
	watchers := make([]func(Status, *models.User), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(status, user)
	}
}
