package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ByronChang/cart-frontend/internal/storefront/api"
	"github.com/ByronChang/cart-frontend/internal/storefront/auth"
	"github.com/ByronChang/cart-frontend/internal/storefront/cart"
	"github.com/ByronChang/cart-frontend/internal/storefront/catalog"
	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
	"github.com/ByronChang/cart-frontend/internal/storefront/orders"
)

// Handler exposes the storefront stores over HTTP for a frontend. The
// gateway serves one session at a time: the auth manager decides whose
// cart and orders the handlers operate on.
type Handler struct {
	auth    *auth.Manager
	cart    *cart.Store
	catalog *catalog.Store
	orders  *orders.Store
}

func NewHandler(authManager *auth.Manager, cartStore *cart.Store, catalogStore *catalog.Store, orderStore *orders.Store) *Handler {
	return &Handler{auth: authManager, cart: cartStore, catalog: catalogStore, orders: orderStore}
}

// --- auth ---

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, err := h.auth.Login(r.Context(), entity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(*user))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username, email and password are required")
		return
	}

	err := h.auth.Register(r.Context(), entity.Registration{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Address:   req.Address,
		BirthDate: req.BirthDate,
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req.Email); err != nil {
		writeAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "logout_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}
	writeJSON(w, http.StatusOK, mapUser(*user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), entity.User{
		Username: req.Username,
		Address:  req.Address,
	})
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "not_authenticated", "")
			return
		}
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(*updated))
}

// --- catalog ---

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Fetch(r.Context()); err != nil {
		writeAPIError(w, err)
		return
	}

	q := r.URL.Query()
	h.catalog.SetSearchQuery(q.Get("search"))
	h.catalog.SetSelectedCategory(q.Get("category"))

	st := h.catalog.Snapshot()
	out := make([]productResponse, 0, len(st.FilteredProducts))
	for _, p := range st.FilteredProducts {
		out = append(out, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Products:         out,
		SearchQuery:      st.SearchQuery,
		SelectedCategory: st.SelectedCategory,
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product := h.catalog.ProductByID(chi.URLParam(r, "id"))
	if product == nil {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(*product))
}

// --- cart ---

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}

	if err := h.cart.Fetch(r.Context(), user.ID); err != nil {
		writeAPIError(w, err)
		return
	}
	st := h.cart.Snapshot()
	writeJSON(w, http.StatusOK, mapCart(st.Items, st.Total))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	product := h.catalog.ProductByID(req.ProductID)
	if product == nil {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	// Stock capping happens here, before the store is invoked.
	quantity := cart.ClampQuantity(req.Quantity, product.StockQuantity)

	if err := h.cart.AddItem(r.Context(), user.ID, *product, quantity); err != nil {
		writeAPIError(w, err)
		return
	}
	st := h.cart.Snapshot()
	writeJSON(w, http.StatusOK, mapCart(st.Items, st.Total))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}

	productID := chi.URLParam(r, "productID")
	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	quantity := req.Quantity
	if line := h.cartLine(productID); line != nil {
		quantity = cart.ClampQuantity(quantity, line.Product.StockQuantity)
	} else if product := h.catalog.ProductByID(productID); product != nil {
		quantity = cart.ClampQuantity(quantity, product.StockQuantity)
	}

	if err := h.cart.UpdateQuantity(r.Context(), user.ID, productID, quantity); err != nil {
		writeAPIError(w, err)
		return
	}
	st := h.cart.Snapshot()
	writeJSON(w, http.StatusOK, mapCart(st.Items, st.Total))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}

	if err := h.cart.RemoveItem(r.Context(), user.ID, chi.URLParam(r, "productID")); err != nil {
		writeAPIError(w, err)
		return
	}
	st := h.cart.Snapshot()
	writeJSON(w, http.StatusOK, mapCart(st.Items, st.Total))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}

	if err := h.cart.Clear(r.Context(), user.ID); err != nil {
		writeAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cartLine(productID string) *entity.CartItem {
	st := h.cart.Snapshot()
	for i := range st.Items {
		if st.Items[i].Product.ID == productID {
			return &st.Items[i]
		}
	}
	return nil
}

// --- orders ---

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}

	if err := h.orders.FetchUserOrders(r.Context(), user.ID); err != nil {
		writeAPIError(w, err)
		return
	}
	st := h.orders.Snapshot()
	out := make([]orderResponse, 0, len(st.Orders))
	for _, o := range st.Orders {
		out = append(out, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}

	if err := h.orders.FetchOrderByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAPIError(w, err)
		return
	}
	st := h.orders.Snapshot()
	if st.CurrentOrder == nil {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(*st.CurrentOrder))
}

// CreateOrder places an order for the given items, or for the whole cart
// when the request names none. On success the server-side cart is
// cleared, completing the checkout.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not_authenticated", "")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ShippingAddress == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "shippingAddress is required")
		return
	}

	items := make([]entity.OrderDraftItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			writeError(w, http.StatusBadRequest, "invalid_item", "quantity must be at least 1")
			return
		}
		items = append(items, entity.OrderDraftItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if len(items) == 0 {
		items = h.draftFromCart()
		if len(items) == 0 {
			writeError(w, http.StatusBadRequest, "empty_cart", "nothing to order")
			return
		}
	}

	order, err := h.orders.CreateOrder(r.Context(), entity.OrderDraft{
		UserID:          user.ID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}

	if err := h.cart.Clear(r.Context(), user.ID); err != nil {
		slog.WarnContext(r.Context(), "cart clear after checkout failed", "order_id", order.ID, "error", err)
	}

	writeJSON(w, http.StatusCreated, mapOrder(*order))
}

func (h *Handler) draftFromCart() []entity.OrderDraftItem {
	st := h.cart.Snapshot()
	items := make([]entity.OrderDraftItem, 0, len(st.Items))
	for _, it := range st.Items {
		id, err := strconv.Atoi(it.Product.ID)
		if err != nil {
			slog.Warn("cart line has non-numeric product id, skipping in draft", "product_id", it.Product.ID)
			continue
		}
		items = append(items, entity.OrderDraftItem{ProductID: id, Quantity: it.Quantity})
	}
	return items
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

// writeAPIError translates a storefront API failure into a gateway
// response: connection failures become 502, everything else keeps the
// upstream status.
func writeAPIError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	status := apiErr.StatusCode
	if status == api.StatusConnError {
		status = http.StatusBadGateway
	}
	writeError(w, status, "upstream_error", apiErr.Message)
}
