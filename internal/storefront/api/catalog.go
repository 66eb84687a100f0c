package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/ports"
)

var _ ports.CatalogAPI = (*Client)(nil)

// ListProducts fetches the catalog. This is the one unauthenticated read
// endpoint: the catalog is public.
func (c *Client) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var payload []ProductPayload
	if err := c.do(ctx, http.MethodGet, "/products", nil, &payload, false, nil); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products := make([]entity.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, p.toEntity())
	}
	return products, nil
}
