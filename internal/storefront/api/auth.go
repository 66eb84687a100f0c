package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/ports"
)

var _ ports.AuthAPI = (*Client)(nil)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID        FlexID `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	BirthDate string `json:"birthDate"`
}

func (p userPayload) toEntity() entity.User {
	return entity.User{
		ID:        string(p.ID),
		Username:  p.Username,
		Email:     p.Email,
		Address:   p.Address,
		BirthDate: p.BirthDate,
	}
}

// Login authenticates and returns the session. Deployments differ on the
// response shape: some return {"token": ..., "user": ...}, others a bare
// token (JSON string or plain text). All three are accepted.
func (c *Client) Login(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
	body := loginRequest{Email: creds.Email, Password: creds.Password}
	raw, err := c.doRaw(ctx, http.MethodPost, "/auth/login", body, false, nil)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	session, err := parseLoginResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return session, nil
}

func parseLoginResponse(raw []byte) (*entity.Session, error) {
	var obj struct {
		Token string       `json:"token"`
		User  *userPayload `json:"user"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Token != "" {
		session := &entity.Session{Token: obj.Token}
		if obj.User != nil {
			user := obj.User.toEntity()
			session.User = &user
		}
		return session, nil
	}

	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil && bare != "" {
		return &entity.Session{Token: bare}, nil
	}

	if token := strings.TrimSpace(string(raw)); token != "" && !strings.HasPrefix(token, "{") {
		return &entity.Session{Token: token}, nil
	}

	return nil, &Error{
		Message:    "unrecognized login response from the storefront API",
		StatusCode: http.StatusInternalServerError,
		Data:       string(raw),
	}
}

type registerRequest struct {
	// The upstream API insists on the id field being present; zero means
	// "assign one".
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Address   string `json:"address"`
	BirthDate string `json:"birthDate"`
}

func (c *Client) Register(ctx context.Context, reg entity.Registration) error {
	body := registerRequest{
		Username:  reg.Username,
		Email:     reg.Email,
		Password:  reg.Password,
		Address:   reg.Address,
		BirthDate: reg.BirthDate,
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, nil, false, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", body, nil, false, nil); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	var payload userPayload
	endpoint := "/users/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &payload, true, nil); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user := payload.toEntity()
	return &user, nil
}

type updateUserRequest struct {
	Username string `json:"username"`
	Address  string `json:"address"`
}

func (c *Client) UpdateUser(ctx context.Context, user entity.User) (*entity.User, error) {
	body := updateUserRequest{Username: user.Username, Address: user.Address}
	var payload userPayload
	endpoint := "/users/" + url.PathEscape(user.ID)
	if err := c.do(ctx, http.MethodPut, endpoint, body, &payload, true, nil); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	updated := payload.toEntity()
	return &updated, nil
}
