package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/ports"
)

var _ ports.OrderAPI = (*Client)(nil)

type orderPayload struct {
	ID              FlexID             `json:"id"`
	UserID          FlexID             `json:"userId"`
	Items           []orderItemPayload `json:"items"`
	Total           *float64           `json:"total"`
	ShippingAddress string             `json:"shippingAddress"`
	Status          string             `json:"status"`
	CreatedAt       string             `json:"createdAt"`
}

type orderItemPayload struct {
	ProductID   FlexID  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// toEntity maps a wire order. The server sometimes omits the total; it is
// then derived from the item snapshots with the same rule the cart uses.
func (p orderPayload) toEntity() entity.Order {
	items := make([]entity.OrderItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, entity.OrderItem{
			ProductID:   string(it.ProductID),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	total := entity.OrderItemsTotal(items)
	if p.Total != nil {
		total = *p.Total
	}
	return entity.Order{
		ID:              string(p.ID),
		UserID:          string(p.UserID),
		Items:           items,
		Total:           total,
		ShippingAddress: p.ShippingAddress,
		Status:          entity.OrderStatus(p.Status),
		CreatedAt:       p.CreatedAt,
	}
}

func (c *Client) ListUserOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	var payload []orderPayload
	endpoint := "/orders/user/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &payload, true, nil); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	// Server order is newest-first already; no client-side re-sort.
	orders := make([]entity.Order, 0, len(payload))
	for _, p := range payload {
		orders = append(orders, p.toEntity())
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	var payload orderPayload
	endpoint := "/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &payload, true, nil); err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	order := payload.toEntity()
	return &order, nil
}

type createOrderRequest struct {
	UserID          string                   `json:"userId"`
	Items           []createOrderItemRequest `json:"items"`
	ShippingAddress string                   `json:"shippingAddress"`
}

type createOrderItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CreateOrder posts the draft. Pricing snapshots and the total are
// assigned server side; the draft never carries prices. An idempotency
// key protects against double submission on retries.
func (c *Client) CreateOrder(ctx context.Context, draft entity.OrderDraft) (*entity.Order, error) {
	items := make([]createOrderItemRequest, 0, len(draft.Items))
	for _, it := range draft.Items {
		items = append(items, createOrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	body := createOrderRequest{
		UserID:          draft.UserID,
		Items:           items,
		ShippingAddress: draft.ShippingAddress,
	}

	header := http.Header{}
	header.Set(HeaderIdempotencyKey, uuid.NewString())

	var payload orderPayload
	if err := c.do(ctx, http.MethodPost, "/orders", body, &payload, true, header); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order := payload.toEntity()
	return &order, nil
}
