package httpx

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByronChang/cart-frontend/internal/pkg/sessions"
	"github.com/ByronChang/cart-frontend/internal/storefront/api"
	"github.com/ByronChang/cart-frontend/internal/storefront/auth"
	"github.com/ByronChang/cart-frontend/internal/storefront/cart"
	"github.com/ByronChang/cart-frontend/internal/storefront/catalog"
	"github.com/ByronChang/cart-frontend/internal/storefront/orders"
)

// fakeStorefront plays the remote storefront API. It records the cart
// add requests so tests can assert on what the gateway forwarded.
type fakeStorefront struct {
	mux        *http.ServeMux
	addedQty   []int
	updatedQty []int
}

func newFakeStorefront(t *testing.T) *fakeStorefront {
	t.Helper()
	f := &fakeStorefront{mux: http.NewServeMux()}

	f.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token": "` + testJWT(`{"sub": "7"}`) + `",
			"user": {"id": 7, "username": "ana", "email": "a@b.c"}}`))
	})
	f.mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "name": "Ceramic Mug", "description": "For coffee", "price": 10.0, "quantity": 2, "category": "kitchen"},
			{"id": 2, "name": "Poster", "description": "A2 print", "price": 5.0, "quantity": 9, "category": "decor"}
		]`))
	})
	f.mux.HandleFunc("GET /cart/user/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	f.mux.HandleFunc("PUT /cart/user/{id}/product/{productID}", func(w http.ResponseWriter, r *http.Request) {
		qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
		require.NoError(t, err)
		f.updatedQty = append(f.updatedQty, qty)
		w.WriteHeader(http.StatusOK)
	})
	f.mux.HandleFunc("POST /cart", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Quantity int `json:"quantity"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.addedQty = append(f.addedQty, req.Quantity)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	return f
}

func testJWT(claims string) string {
	seg := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}
	return seg(`{"alg":"none"}`) + "." + seg(claims) + ".sig"
}

// newGateway wires a full gateway stack against the given upstream.
func newGateway(t *testing.T, upstreamURL string) http.Handler {
	t.Helper()

	tokens := sessions.NewMemoryStore()
	client := api.NewClient(upstreamURL, api.WithTokenSource(storeTokens{tokens}))

	cartStore := cart.NewStore(client, nil)
	catalogStore := catalog.NewStore(client, nil)
	orderStore := orders.NewStore(client, nil)
	authManager := auth.NewManager(client, tokens, cartStore, nil)

	return NewRouter(NewHandler(authManager, cartStore, catalogStore, orderStore))
}

type storeTokens struct {
	store sessions.Store
}

func (s storeTokens) Token(ctx context.Context) (string, error) {
	return s.store.Load(ctx)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.c", "password": "x",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCartRequiresAuthentication(t *testing.T) {
	upstream := httptest.NewServer(newFakeStorefront(t).mux)
	defer upstream.Close()
	h := newGateway(t, upstream.URL)

	rec := doJSON(t, h, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginThenProfile(t *testing.T) {
	upstream := httptest.NewServer(newFakeStorefront(t).mux)
	defer upstream.Close()
	h := newGateway(t, upstream.URL)

	login(t, h)

	rec := doJSON(t, h, http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "7", user.ID)
	assert.Equal(t, "ana", user.Username)
}

func TestListProductsWithSearchFilter(t *testing.T) {
	upstream := httptest.NewServer(newFakeStorefront(t).mux)
	defer upstream.Close()
	h := newGateway(t, upstream.URL)

	rec := doJSON(t, h, http.MethodGet, "/products?search=mug", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out catalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Products, 1)
	assert.Equal(t, "Ceramic Mug", out.Products[0].Name)
	assert.Equal(t, "mug", out.SearchQuery)
}

func TestGetProductNotFound(t *testing.T) {
	upstream := httptest.NewServer(newFakeStorefront(t).mux)
	defer upstream.Close()
	h := newGateway(t, upstream.URL)

	// Populate the catalog first.
	require.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/products", nil).Code)

	rec := doJSON(t, h, http.MethodGet, "/products/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCartItemClampsToStock(t *testing.T) {
	fake := newFakeStorefront(t)
	upstream := httptest.NewServer(fake.mux)
	defer upstream.Close()
	h := newGateway(t, upstream.URL)

	login(t, h)
	require.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/products", nil).Code)

	// Product 1 has two in stock; the request asks for five.
	rec := doJSON(t, h, http.MethodPost, "/cart/items", addCartItemRequest{ProductID: "1", Quantity: 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, fake.addedQty, 1)
	assert.Equal(t, 2, fake.addedQty[0], "the forwarded quantity is capped at stock")

	var out cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.Items[0].Quantity)
	assert.Equal(t, 20.0, out.Total)
}

func TestUpdateCartItemClampsFromCatalogWhenLineUnknown(t *testing.T) {
	fake := newFakeStorefront(t)
	upstream := httptest.NewServer(fake.mux)
	defer upstream.Close()
	h := newGateway(t, upstream.URL)

	login(t, h)
	require.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/products", nil).Code)

	// The local cart snapshot has no line for product 1, so the stock
	// bound must come from the catalog instead of passing through raw.
	rec := doJSON(t, h, http.MethodPut, "/cart/items/1", updateCartItemRequest{Quantity: 9})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, fake.updatedQty, 1)
	assert.Equal(t, 2, fake.updatedQty[0], "the forwarded quantity is capped at catalog stock")
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	upstream := httptest.NewServer(newFakeStorefront(t).mux)
	defer upstream.Close()
	h := newGateway(t, upstream.URL)

	login(t, h)
	require.Equal(t, http.StatusOK, doJSON(t, h, http.MethodGet, "/products", nil).Code)

	rec := doJSON(t, h, http.MethodPost, "/cart/items", addCartItemRequest{ProductID: "404", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpstreamOutageBecomesBadGateway(t *testing.T) {
	upstream := httptest.NewServer(newFakeStorefront(t).mux)
	upstream.Close() // nothing listens anymore
	h := newGateway(t, upstream.URL)

	rec := doJSON(t, h, http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
