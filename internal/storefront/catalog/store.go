// Package catalog holds the product listing and its client-side filter
// derivation. Filtering is pure and synchronous; only the catalog fetch
// touches the network.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ByronChang/cart-frontend/internal/storefront/api"
	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/ports"
)

type State struct {
	Products         []entity.Product
	FilteredProducts []entity.Product
	SearchQuery      string
	// SelectedCategory empty means "all categories".
	SelectedCategory string
	Loading          bool
	Err              string
}

type Store struct {
	api ports.CatalogAPI
	log *slog.Logger

	mu    sync.Mutex
	state State
	seq   uint64
}

func NewStore(catalogAPI ports.CatalogAPI, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: catalogAPI, log: logger}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Products = append([]entity.Product(nil), s.state.Products...)
	st.FilteredProducts = append([]entity.Product(nil), s.state.FilteredProducts...)
	return st
}

// Fetch replaces the catalog. Filter state survives the refresh and is
// reapplied to the new listing.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	op := s.seq
	s.state.Loading = true
	s.state.Err = ""
	s.mu.Unlock()

	products, err := s.api.ListProducts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if op != s.seq {
		s.log.DebugContext(ctx, "dropping stale catalog fetch")
		return nil
	}
	s.state.Loading = false
	if err != nil {
		s.state.Err = api.Message(err)
		s.log.ErrorContext(ctx, "catalog fetch failed", "error", err)
		return err
	}
	s.state.Products = products
	s.state.FilteredProducts = filterProducts(products, s.state.SearchQuery, s.state.SelectedCategory)
	return nil
}

func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchQuery = query
	s.state.FilteredProducts = filterProducts(s.state.Products, query, s.state.SelectedCategory)
}

func (s *Store) SetSelectedCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedCategory = category
	s.state.FilteredProducts = filterProducts(s.state.Products, s.state.SearchQuery, category)
}

func (s *Store) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SearchQuery = ""
	s.state.SelectedCategory = ""
	s.state.FilteredProducts = append([]entity.Product(nil), s.state.Products...)
}

// ProductByID looks a product up by its string-coerced id. It returns nil
// for an empty id and for an id with no match.
func (s *Store) ProductByID(id string) *entity.Product {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Products {
		if s.state.Products[i].ID == id {
			p := s.state.Products[i]
			return &p
		}
	}
	return nil
}

// filterProducts keeps products matching both the search term (case
// insensitive substring on name or description) and the category (exact
// match). Empty query or category matches everything.
func filterProducts(products []entity.Product, query, category string) []entity.Product {
	query = strings.ToLower(query)
	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}
