package auth

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByronChang/cart-frontend/internal/pkg/sessions"
	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
)

type fakeAuthAPI struct {
	loginFn    func(ctx context.Context, creds entity.Credentials) (*entity.Session, error)
	registerFn func(ctx context.Context, reg entity.Registration) error
	resetFn    func(ctx context.Context, email string) error
	getUserFn  func(ctx context.Context, userID string) (*entity.User, error)
	updateFn   func(ctx context.Context, user entity.User) (*entity.User, error)
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
	return f.loginFn(ctx, creds)
}

func (f *fakeAuthAPI) Register(ctx context.Context, reg entity.Registration) error {
	return f.registerFn(ctx, reg)
}

func (f *fakeAuthAPI) ResetPassword(ctx context.Context, email string) error {
	return f.resetFn(ctx, email)
}

func (f *fakeAuthAPI) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	return f.getUserFn(ctx, userID)
}

func (f *fakeAuthAPI) UpdateUser(ctx context.Context, user entity.User) (*entity.User, error) {
	return f.updateFn(ctx, user)
}

type fakeCart struct {
	fetchedFor string
	resets     int
}

func (f *fakeCart) Fetch(ctx context.Context, userID string) error {
	f.fetchedFor = userID
	return nil
}

func (f *fakeCart) Reset() { f.resets++ }

// jwtWith builds an unsigned JWT whose payload is the given JSON claims.
func jwtWith(claims string) string {
	seg := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}
	return seg(`{"alg":"none"}`) + "." + seg(claims) + ".sig"
}

func TestLoginWithEmbeddedUser(t *testing.T) {
	tokens := sessions.NewMemoryStore()
	cart := &fakeCart{}
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
			return &entity.Session{
				Token: "tok-1",
				User:  &entity.User{ID: "7", Username: "ana"},
			}, nil
		},
	}
	m := NewManager(api, tokens, cart, nil)

	user, err := m.Login(context.Background(), entity.Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.True(t, m.IsAuthenticated())

	stored, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored)

	assert.Equal(t, "7", cart.fetchedFor, "the cart is primed with the new user")
}

func TestLoginWithBareTokenResolvesProfileFromSubClaim(t *testing.T) {
	token := jwtWith(`{"sub": 7}`)
	tokens := sessions.NewMemoryStore()
	var askedFor string
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
			return &entity.Session{Token: token}, nil
		},
		getUserFn: func(ctx context.Context, userID string) (*entity.User, error) {
			askedFor = userID
			return &entity.User{ID: userID, Username: "ana"}, nil
		},
	}
	m := NewManager(api, tokens, nil, nil)

	user, err := m.Login(context.Background(), entity.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "7", askedFor, "numeric sub claims coerce to strings")
	assert.Equal(t, "ana", user.Username)
}

func TestTokenTracksSessionLifecycle(t *testing.T) {
	token := jwtWith(`{"sub": "7"}`)
	tokens := sessions.NewMemoryStore()
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
			return &entity.Session{Token: token, User: &entity.User{ID: "7"}}, nil
		},
	}
	m := NewManager(api, tokens, nil, nil)
	assert.Empty(t, m.Token())

	_, err := m.Login(context.Background(), entity.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, token, m.Token())

	require.NoError(t, m.Logout(context.Background()))
	assert.Empty(t, m.Token())
}

func TestLogoutDropsEverything(t *testing.T) {
	tokens := sessions.NewMemoryStore()
	cart := &fakeCart{}
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
			return &entity.Session{Token: "tok-1", User: &entity.User{ID: "7"}}, nil
		},
	}
	m := NewManager(api, tokens, cart, nil)
	_, err := m.Login(context.Background(), entity.Credentials{})
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))

	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, 1, cart.resets)
	stored, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestBootstrapRestoresSessionFromStoredToken(t *testing.T) {
	token := jwtWith(`{"sub": "7"}`)
	tokens := sessions.NewMemoryStore()
	require.NoError(t, tokens.Save(context.Background(), token))

	cart := &fakeCart{}
	api := &fakeAuthAPI{
		getUserFn: func(ctx context.Context, userID string) (*entity.User, error) {
			return &entity.User{ID: userID, Username: "ana"}, nil
		},
	}
	m := NewManager(api, tokens, cart, nil)

	require.NoError(t, m.Bootstrap(context.Background()))

	require.True(t, m.IsAuthenticated())
	assert.Equal(t, "ana", m.CurrentUser().Username)
	assert.Equal(t, "7", cart.fetchedFor)
}

func TestBootstrapWithoutStoredTokenIsANoop(t *testing.T) {
	m := NewManager(&fakeAuthAPI{}, sessions.NewMemoryStore(), nil, nil)
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.False(t, m.IsAuthenticated())
}

func TestBootstrapDiscardsUnusableToken(t *testing.T) {
	tokens := sessions.NewMemoryStore()
	require.NoError(t, tokens.Save(context.Background(), "not-a-jwt"))
	m := NewManager(&fakeAuthAPI{}, tokens, nil, nil)

	require.NoError(t, m.Bootstrap(context.Background()))

	assert.False(t, m.IsAuthenticated())
	stored, err := tokens.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored, "an unusable token is cleared, not retried forever")
}

func TestUpdateProfileRequiresLogin(t *testing.T) {
	m := NewManager(&fakeAuthAPI{}, sessions.NewMemoryStore(), nil, nil)
	_, err := m.UpdateProfile(context.Background(), entity.User{Username: "new"})
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUpdateProfileKeepsSessionUserID(t *testing.T) {
	tokens := sessions.NewMemoryStore()
	api := &fakeAuthAPI{
		loginFn: func(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
			return &entity.Session{Token: "tok-1", User: &entity.User{ID: "7", Username: "ana"}}, nil
		},
		updateFn: func(ctx context.Context, user entity.User) (*entity.User, error) {
			u := user
			return &u, nil
		},
	}
	m := NewManager(api, tokens, nil, nil)
	_, err := m.Login(context.Background(), entity.Credentials{})
	require.NoError(t, err)

	updated, err := m.UpdateProfile(context.Background(), entity.User{ID: "999", Username: "ana2"})
	require.NoError(t, err)

	assert.Equal(t, "7", updated.ID, "the id always comes from the session")
	assert.Equal(t, "ana2", m.CurrentUser().Username)
}

func TestSubjectFromToken(t *testing.T) {
	sub, err := subjectFromToken(jwtWith(`{"sub": "42"}`))
	require.NoError(t, err)
	assert.Equal(t, "42", sub)

	sub, err = subjectFromToken(jwtWith(`{"sub": 42}`))
	require.NoError(t, err)
	assert.Equal(t, "42", sub)

	_, err = subjectFromToken(jwtWith(`{"aud": "x"}`))
	require.Error(t, err)

	_, err = subjectFromToken("garbage")
	require.Error(t, err)
}
