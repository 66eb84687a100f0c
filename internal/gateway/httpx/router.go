package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/auth/login", handler.Login)
	r.Post("/auth/register", handler.Register)
	r.Post("/auth/reset-password", handler.ResetPassword)
	r.Post("/auth/logout", handler.Logout)

	r.Get("/profile", handler.GetProfile)
	r.Put("/profile", handler.UpdateProfile)

	r.Get("/products", handler.ListProducts)
	r.Get("/products/{id}", handler.GetProduct)

	r.Get("/cart", handler.GetCart)
	r.Post("/cart/items", handler.AddCartItem)
	r.Put("/cart/items/{productID}", handler.UpdateCartItem)
	r.Delete("/cart/items/{productID}", handler.RemoveCartItem)
	r.Delete("/cart", handler.ClearCart)

	r.Get("/orders", handler.ListOrders)
	r.Get("/orders/{id}", handler.GetOrder)
	r.Post("/orders", handler.CreateOrder)

	return r
}
