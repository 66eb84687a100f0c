package ports

import (
	"context"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
)

type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
}
