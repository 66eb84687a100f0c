package ports

import (
	"context"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
)

type CartAPI interface {
	// FetchCart returns the user's cart, already normalized. A missing
	// cart surfaces as a not-found API error; the policy of treating that
	// as empty belongs to the caller.
	FetchCart(ctx context.Context, userID string) (entity.Cart, error)

	// AddItem adds a line to the server-side cart. When the server echoes
	// back a full item list the normalized cart is returned; when the
	// response carries no list the result is nil and the caller merges
	// locally.
	AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error)

	UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}
