// Package session holds the authentication state machine. A session is
// Loading until the durable store has been read once, then Anonymous or
// Authenticated. It is the single source of truth consulted by the route
// guard and the navbar on every request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felipeejunges/currency-converter-front/internal/api"
	"github.com/felipeejunges/currency-converter-front/internal/models"
	"github.com/felipeejunges/currency-converter-front/internal/storage"
)

// State is the lifecycle state of the session.
type State int

const (
	// StateLoading means the durable store has not been read yet. Consumers
	// must treat this as "render nothing" rather than Anonymous.
	StateLoading State = iota
	// StateAnonymous means no valid session is held.
	StateAnonymous
	// StateAuthenticated means both a user and a token are present.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultRegisterMessage is shown when the backend acknowledges a
// registration without a message of its own.
const DefaultRegisterMessage = "Registration successful! Please log in."

// Store is the injectable session context. It owns the API client so that
// the bearer-injecting transport always reads the live token.
type Store struct {
	db     *storage.DB
	client *api.Client

	mu    sync.RWMutex
	state State
	user  *models.User
	token string
}

// NewStore creates a Store persisting to db and talking to the API at
// apiBase. The store starts in StateLoading; call Load before serving.
func NewStore(db *storage.DB, apiBase string) *Store {
	s := &Store{db: db, state: StateLoading}
	s.client = api.NewClient(apiBase, s.Token)
	return s
}

// Client returns the API client bound to this session.
func (s *Store) Client() *api.Client { return s.client }

// Load reads the durable store once and resolves the session state. Both
// keys present and parseable resolves to Authenticated, anything else to
// Anonymous. No network call is made.
func (s *Store) Load() error {
	token, errToken := s.db.Get(storage.KeyToken)
	userJSON, errUser := s.db.Get(storage.KeyUser)

	s.mu.Lock()
	defer s.mu.Unlock()

	if errToken != nil || errUser != nil {
		if (errToken != nil && !errors.Is(errToken, storage.ErrNotFound)) ||
			(errUser != nil && !errors.Is(errUser, storage.ErrNotFound)) {
			s.state = StateAnonymous
			return errors.Join(errToken, errUser)
		}
		s.state = StateAnonymous
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil || token == "" {
		slog.Warn("stored session unreadable, starting anonymous", "error", err)
		s.state = StateAnonymous
		return nil
	}

	s.user = &user
	s.token = token
	s.state = StateAuthenticated
	return nil
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether both a user and a token are held.
func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// User returns a copy of the authenticated user, or nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token, or "" when anonymous. It is the
// token source for the API client's transport.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login authenticates against the backend and, on success, atomically
// installs the user and token and persists both durable keys. Field
// validation is the caller's job; failures propagate unchanged.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	user := models.NewUserFromName(resp.User.ID, resp.User.Email, resp.User.Name)
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}
	if err := s.db.SetSession(resp.Token, string(userJSON)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.token = resp.Token
	s.state = StateAuthenticated
	s.mu.Unlock()

	slog.Info("session authenticated", "user_id", user.ID, "email", user.Email)
	return nil
}

// Register creates an account. Registration never authenticates the session;
// it returns the backend's message (or a default) for the caller to show
// before sending the user to the login view.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) (string, error) {
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.Message == "" {
		return DefaultRegisterMessage, nil
	}
	return resp.Message, nil
}

// Logout clears the in-memory and durable session synchronously, then
// notifies the backend best-effort. The local transition to Anonymous is
// authoritative: a failed or slow notification is logged and swallowed.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.user = nil
	s.token = ""
	s.state = StateAnonymous
	s.mu.Unlock()

	if err := s.db.ClearSession(); err != nil {
		slog.Error("failed to clear durable session", "error", err)
	}

	if token == "" {
		return
	}
	if err := s.client.Logout(ctx, token); err != nil {
		slog.Warn("logout notification failed", "error", err)
	}
}
