package ports

import (
	"context"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
)

type AuthAPI interface {
	Login(ctx context.Context, creds entity.Credentials) (*entity.Session, error)
	Register(ctx context.Context, reg entity.Registration) error
	ResetPassword(ctx context.Context, email string) error
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdateUser(ctx context.Context, user entity.User) (*entity.User, error)
}
