package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/clinicdesk/clinicdesk/internal/platform/apiclient"
)

// Auth endpoints.
const (
	LoginPath          = "/api/auth/login"
	RegisterPath       = "/api/auth/register"
	ChangePasswordPath = "/api/auth/change-password"
)

// Backend performs the authentication round trips.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (string, error)
	Register(ctx context.Context, reg Registration) error
	ChangePassword(ctx context.Context, userID int64, newPassword string) error
}

// HTTPBackend talks to the clinic API.
type HTTPBackend struct {
	client *apiclient.Client
}

func NewHTTPBackend(c *apiclient.Client) *HTTPBackend {
	return &HTTPBackend{client: c}
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	UserID      int64  `json:"userId"`
	NewPassword string `json:"newPassword"`
}

// Login returns the bearer token the server issued.
func (b *HTTPBackend) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp loginResponse
	if err := b.client.Do(ctx, http.MethodPost, LoginPath, creds, &resp); err != nil {
		if errors.Is(err, apiclient.ErrNoContent) {
			return "", errors.New("login response carried no token")
		}
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login response carried no token")
	}
	return resp.Token, nil
}

func (b *HTTPBackend) Register(ctx context.Context, reg Registration) error {
	return b.client.Do(ctx, http.MethodPost, RegisterPath, reg, nil)
}

func (b *HTTPBackend) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	req := changePasswordRequest{UserID: userID, NewPassword: newPassword}
	return b.client.Do(ctx, http.MethodPost, ChangePasswordPath, req, nil)
}

var _ Backend = (*HTTPBackend)(nil)
