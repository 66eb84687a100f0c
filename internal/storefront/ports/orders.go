package ports

import (
	"context"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
)

type OrderAPI interface {
	ListUserOrders(ctx context.Context, userID string) ([]entity.Order, error)
	GetOrder(ctx context.Context, orderID string) (*entity.Order, error)
	CreateOrder(ctx context.Context, draft entity.OrderDraft) (*entity.Order, error)
}
