// Package cart holds the canonical client-side cart state and reconciles
// it with the server through ports.CartAPI.
//
// Every operation runs the same lifecycle: Loading flips on, the server
// call runs, and the completion is applied only if no newer operation has
// been issued in the meantime. Without the sequence guard a slow response
// could overwrite the result of a later operation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ByronChang/cart-frontend/internal/storefront/api"
	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/ports"
)

// ErrInvalidQuantity is returned for quantity arguments below 1. The
// request never reaches the network.
var ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")

// State is a point-in-time snapshot of the cart. Total is always
// recomputed via entity.CartTotal whenever Items changes.
type State struct {
	Items   []entity.CartItem
	Total   float64
	Loading bool
	Err     string
}

// Store owns the canonical in-memory cart. All mutation goes through its
// operations; Snapshot returns copies.
type Store struct {
	api ports.CartAPI
	log *slog.Logger

	mu    sync.Mutex
	state State
	seq   uint64
}

func NewStore(cartAPI ports.CartAPI, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api: cartAPI,
		log: logger,
		state: State{
			Items: []entity.CartItem{},
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = append([]entity.CartItem(nil), s.state.Items...)
	return st
}

// begin marks the start of an operation and returns its sequence number.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state.Loading = true
	s.state.Err = ""
	return s.seq
}

// settle applies fn if op is still the latest issued operation. Stale
// completions are dropped wholesale, including their error state.
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
		s.log.DebugContext(ctx, "dropping stale cart operation failure", "op", opName, "error", err)
		return
	}
	s.log.ErrorContext(ctx, "cart operation failed", "op", opName, "error", err)
}

// Fetch replaces the cart with the server's copy. A 404 means the user
// has no cart yet and resolves to an empty cart without an error. Other
// failures leave the existing items in place (stale but present).
func (s *Store) Fetch(ctx context.Context, userID string) error {
	op := s.begin()

	cart, err := s.api.FetchCart(ctx, userID)
	if err != nil {
		if api.IsNotFound(err) {
			s.settle(op, func(st *State) {
				st.Items = []entity.CartItem{}
				st.Total = 0
			})
			return nil
		}
		s.settleErr(ctx, op, "fetch", err)
		return err
	}

	s.settle(op, func(st *State) {
		st.Items = cart.Items
		st.Total = entity.CartTotal(st.Items)
	})
	return nil
}

// AddItem adds quantity units of product. When the server echoes a full
// item list that list is authoritative; otherwise the change is merged
// locally: an existing line is incremented, a new line appended.
// The caller is responsible for capping quantity at the product's stock.
func (s *Store) AddItem(ctx context.Context, userID string, product entity.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	op := s.begin()

	serverCart, err := s.api.AddItem(ctx, userID, product.ID, quantity)
	if err != nil {
		s.settleErr(ctx, op, "add_item", err)
		return err
	}

	s.settle(op, func(st *State) {
		if serverCart != nil {
			st.Items = serverCart.Items
		} else {
			merged := false
			for i := range st.Items {
				if st.Items[i].Product.ID == product.ID {
					st.Items[i].Quantity += quantity
					merged = true
					break
				}
			}
			if !merged {
				st.Items = append(st.Items, entity.CartItem{Product: product, Quantity: quantity})
			}
		}
		st.Total = entity.CartTotal(st.Items)
	})
	return nil
}

// UpdateQuantity sets the line quantity for productID and then refetches
// the cart; the follow-up fetch is the only state writer, so displayed
// state never flickers between an interim response and the reconciled
// one. The caller must clamp quantity to [1, stock] beforehand.
func (s *Store) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	op := s.begin()

	if err := s.api.UpdateItemQuantity(ctx, userID, productID, quantity); err != nil {
		s.settleErr(ctx, op, "update_quantity", err)
		return err
	}

	cart, err := s.api.FetchCart(ctx, userID)
	if err != nil {
		if api.IsNotFound(err) {
			s.settle(op, func(st *State) {
				st.Items = []entity.CartItem{}
				st.Total = 0
			})
			return nil
		}
		err = fmt.Errorf("reconcile after quantity update: %w", err)
		s.settleErr(ctx, op, "update_quantity", err)
		return err
	}

	s.settle(op, func(st *State) {
		st.Items = cart.Items
		st.Total = entity.CartTotal(st.Items)
	})
	return nil
}

// RemoveItem deletes the line server side and then drops it locally.
func (s *Store) RemoveItem(ctx context.Context, userID, productID string) error {
	op := s.begin()

	if err := s.api.RemoveItem(ctx, userID, productID); err != nil {
		s.settleErr(ctx, op, "remove_item", err)
		return err
	}

	s.settle(op, func(st *State) {
		kept := st.Items[:0]
		for _, it := range st.Items {
			if it.Product.ID != productID {
				kept = append(kept, it)
			}
		}
		st.Items = kept
		st.Total = entity.CartTotal(st.Items)
	})
	return nil
}

// Clear empties the cart after a successful server-side clear.
func (s *Store) Clear(ctx context.Context, userID string) error {
	op := s.begin()

	if err := s.api.ClearCart(ctx, userID); err != nil {
		s.settleErr(ctx, op, "clear", err)
		return err
	}

	s.settle(op, func(st *State) {
		st.Items = []entity.CartItem{}
		st.Total = 0
	})
	return nil
}

// Reset empties the local cart without touching the server. Used on
// logout, when the cart simply stops belonging to this session.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state = State{Items: []entity.CartItem{}}
}

// ClampQuantity bounds a requested line quantity to [1, stock]. Callers
// of AddItem and UpdateQuantity apply this before the store is invoked.
func ClampQuantity(quantity, stock int) int {
	if quantity < 1 {
		return 1
	}
	if stock > 0 && quantity > stock {
		return stock
	}
	return quantity
}
