// Package auth manages the login session: authenticating, persisting the
// bearer token, bootstrapping the profile from a stored token, and
// keeping the cart in sync with login state.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ByronChang/cart-frontend/internal/pkg/sessions"
	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/ports"
)

// ErrNotAuthenticated is returned by operations that need a logged-in
// user when there is none.
var ErrNotAuthenticated = errors.New("auth: not authenticated")

// CartSyncer is what the manager needs from the cart store: prime it on
// login, drop it on logout.
type CartSyncer interface {
	Fetch(ctx context.Context, userID string) error
	Reset()
}

type Manager struct {
	api    ports.AuthAPI
	tokens sessions.Store
	cart   CartSyncer
	log    *slog.Logger

	mu    sync.Mutex
	user  *entity.User
	token string
}

// NewManager wires the auth manager. cart may be nil when no cart store
// participates (e.g. in tests of unrelated flows).
func NewManager(authAPI ports.AuthAPI, tokens sessions.Store, cart CartSyncer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: authAPI, tokens: tokens, cart: cart, log: logger}
}

// Bootstrap restores the session from the token store: if a token is
// present, the profile is fetched using the token's subject claim. An
// unusable token is discarded, mirroring a failed login.
func (m *Manager) Bootstrap(ctx context.Context) error {
	token, err := m.tokens.Load(ctx)
	if err != nil {
		return fmt.Errorf("auth: load stored token: %w", err)
	}
	if token == "" {
		return nil
	}

	userID, err := subjectFromToken(token)
	if err != nil {
		m.log.WarnContext(ctx, "stored token is unusable, discarding", "error", err)
		return m.Logout(ctx)
	}

	m.setToken(token)
	user, err := m.api.GetUser(ctx, userID)
	if err != nil {
		m.log.WarnContext(ctx, "profile fetch with stored token failed, discarding session", "error", err)
		return m.Logout(ctx)
	}

	m.setUser(user)
	m.primeCart(ctx, user.ID)
	return nil
}

// Login authenticates, persists the token, resolves the profile (from
// the response when embedded, otherwise via the token's subject claim)
// and primes the cart.
func (m *Manager) Login(ctx context.Context, creds entity.Credentials) (*entity.User, error) {
	session, err := m.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	if err := m.tokens.Save(ctx, session.Token); err != nil {
		return nil, fmt.Errorf("auth: persist token: %w", err)
	}
	m.setToken(session.Token)

	user := session.User
	if user == nil {
		userID, err := subjectFromToken(session.Token)
		if err != nil {
			return nil, fmt.Errorf("auth: resolve user from token: %w", err)
		}
		user, err = m.api.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	m.setUser(user)
	m.primeCart(ctx, user.ID)
	return user, nil
}

func (m *Manager) Register(ctx context.Context, reg entity.Registration) error {
	return m.api.Register(ctx, reg)
}

func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	return m.api.ResetPassword(ctx, email)
}

// Logout drops the persisted token, the in-memory session and the cart.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()

	if m.cart != nil {
		m.cart.Reset()
	}
	if err := m.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("auth: clear stored token: %w", err)
	}
	return nil
}

// UpdateProfile pushes username/address changes and adopts the server's
// copy of the profile.
func (m *Manager) UpdateProfile(ctx context.Context, user entity.User) (*entity.User, error) {
	current := m.CurrentUser()
	if current == nil {
		return nil, ErrNotAuthenticated
	}
	user.ID = current.ID

	updated, err := m.api.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	m.setUser(updated)
	return updated, nil
}

func (m *Manager) CurrentUser() *entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	return m.CurrentUser() != nil
}

// Token returns the bearer token of the active session, or the empty
// string when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) setUser(user *entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
}

func (m *Manager) setToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *Manager) primeCart(ctx context.Context, userID string) {
	if m.cart == nil {
		return
	}
	// Best effort: a cart that fails to load must not fail the login.
	if err := m.cart.Fetch(ctx, userID); err != nil {
		m.log.WarnContext(ctx, "cart prime after login failed", "error", err)
	}
}

// subjectFromToken reads the unverified sub claim from a JWT. The client
// never validates signatures; the server does that on every request. The
// claim is only used to know which profile to fetch.
func subjectFromToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", errors.New("auth: token is not a JWT")
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return "", fmt.Errorf("auth: decode token payload: %w", err)
	}

	var claims map[string]any
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil {
		return "", fmt.Errorf("auth: parse token claims: %w", err)
	}

	// sub is a string in some deployments and a bare number in others.
	switch sub := claims["sub"].(type) {
	case string:
		if sub != "" {
			return sub, nil
		}
	case json.Number:
		return sub.String(), nil
	}
	return "", errors.New("auth: token has no sub claim")
}
