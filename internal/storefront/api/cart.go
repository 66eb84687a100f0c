package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/ports"
)

var _ ports.CartAPI = (*Client)(nil)

// defaultStock is substituted when a cart line's product arrives without
// a usable stock quantity, so the line is not misread as sold out.
const defaultStock = 999

// CartPayload is the server's cart shape: lines nested under "products",
// each wrapping a product plus the requested quantity.
type CartPayload struct {
	Products []CartLinePayload `json:"products"`
}

type CartLinePayload struct {
	Product  ProductPayload `json:"product"`
	Quantity int            `json:"quantity"`
	// AddedDate is display-only upstream and intentionally not modeled.
	AddedDate string `json:"addedDate"`
}

// NormalizeCart converts a raw cart payload into the canonical cart.
// A nil payload or one without a products list yields an empty cart; this
// function never fails.
func NormalizeCart(p *CartPayload) entity.Cart {
	if p == nil || p.Products == nil {
		return entity.Cart{Items: []entity.CartItem{}}
	}
	items := normalizeLines(p.Products)
	return entity.Cart{Items: items, Total: entity.CartTotal(items)}
}

func normalizeLines(lines []CartLinePayload) []entity.CartItem {
	items := make([]entity.CartItem, 0, len(lines))
	for _, line := range lines {
		product := line.Product.toEntity()
		if product.StockQuantity <= 0 {
			product.StockQuantity = defaultStock
		}
		items = append(items, entity.CartItem{Product: product, Quantity: line.Quantity})
	}
	return items
}

func (c *Client) FetchCart(ctx context.Context, userID string) (entity.Cart, error) {
	var payload CartPayload
	endpoint := "/cart/user/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &payload, true, nil); err != nil {
		return entity.Cart{}, fmt.Errorf("fetch cart: %w", err)
	}
	return NormalizeCart(&payload), nil
}

type addItemRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// addItemResponse distinguishes "server echoed the full cart" (Items non
// nil) from "server acknowledged without a list" (Items nil).
type addItemResponse struct {
	Items []CartLinePayload `json:"items"`
}

func (c *Client) AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error) {
	body := addItemRequest{UserID: userID, ProductID: productID, Quantity: quantity}
	var resp addItemResponse
	if err := c.do(ctx, http.MethodPost, "/cart", body, &resp, true, nil); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	if resp.Items == nil {
		return nil, nil
	}
	items := normalizeLines(resp.Items)
	return &entity.Cart{Items: items, Total: entity.CartTotal(items)}, nil
}

func (c *Client) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) error {
	endpoint := fmt.Sprintf("/cart/user/%s/product/%s?quantity=%d",
		url.PathEscape(userID), url.PathEscape(productID), quantity)
	if err := c.do(ctx, http.MethodPut, endpoint, nil, nil, true, nil); err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	return nil
}

func (c *Client) RemoveItem(ctx context.Context, userID, productID string) error {
	endpoint := fmt.Sprintf("/cart/user/%s/product/%s",
		url.PathEscape(userID), url.PathEscape(productID))
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil, true, nil); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (c *Client) ClearCart(ctx context.Context, userID string) error {
	endpoint := "/cart/user/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil, true, nil); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
