// Package orders tracks the user's order history and the order currently
// being viewed or placed.
package orders

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ByronChang/cart-frontend/internal/storefront/api"
	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/ports"
)

type State struct {
	// Orders keeps the server's ordering (newest first); the client never
	// re-sorts.
	Orders       []entity.Order
	CurrentOrder *entity.Order
	Loading      bool
	Err          string
}

type Store struct {
	api ports.OrderAPI
	log *slog.Logger

	mu    sync.Mutex
	state State
	seq   uint64
}

func NewStore(orderAPI ports.OrderAPI, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: orderAPI, log: logger}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Orders = append([]entity.Order(nil), s.state.Orders...)
	if s.state.CurrentOrder != nil {
		current := *s.state.CurrentOrder
		st.CurrentOrder = &current
	}
	return st
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state.Loading = true
	s.state.Err = ""
	return s.seq
}

func (s *Store) settle(op uint64, fn func(st *State)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op != s.seq {
		return false
	}
	s.state.Loading = false
	if fn != nil {
		fn(&s.state)
	}
	return true
}

func (s *Store) settleErr(ctx context.Context, op uint64, opName string, err error) {
	applied := s.settle(op, func(st *State) {
		st.Err = api.Message(err)
	})
	if !applied {
		s.log.DebugContext(ctx, "dropping stale order operation failure", "op", opName, "error", err)
		return
	}
	s.log.ErrorContext(ctx, "order operation failed", "op", opName, "error", err)
}

// FetchUserOrders replaces the order list with the server response.
func (s *Store) FetchUserOrders(ctx context.Context, userID string) error {
	op := s.begin()

	list, err := s.api.ListUserOrders(ctx, userID)
	if err != nil {
		s.settleErr(ctx, op, "fetch_user_orders", err)
		return err
	}

	s.settle(op, func(st *State) {
		st.Orders = list
	})
	return nil
}

// FetchOrderByID sets CurrentOrder only; the list is untouched.
func (s *Store) FetchOrderByID(ctx context.Context, orderID string) error {
	op := s.begin()

	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		s.settleErr(ctx, op, "fetch_order", err)
		return err
	}

	s.settle(op, func(st *State) {
		st.CurrentOrder = order
	})
	return nil
}

// CreateOrder posts the draft; on success the new order is prepended to
// the list and becomes CurrentOrder.
func (s *Store) CreateOrder(ctx context.Context, draft entity.OrderDraft) (*entity.Order, error) {
	op := s.begin()

	order, err := s.api.CreateOrder(ctx, draft)
	if err != nil {
		s.settleErr(ctx, op, "create_order", err)
		return nil, err
	}

	s.settle(op, func(st *State) {
		st.CurrentOrder = order
		st.Orders = append([]entity.Order{*order}, st.Orders...)
	})
	return order, nil
}

// ClearCurrentOrder drops the currently viewed order.
func (s *Store) ClearCurrentOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentOrder = nil
}
