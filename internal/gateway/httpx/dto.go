package httpx

import (
	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Address   string `json:"address"`
	BirthDate string `json:"birthDate"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Address  string `json:"address"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	BirthDate string `json:"birthDate"`
}

type productResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"imageUrl"`
	StockQuantity int     `json:"stockQuantity"`
	Category      string  `json:"category,omitempty"`
}

type catalogResponse struct {
	Products         []productResponse `json:"products"`
	SearchQuery      string            `json:"searchQuery,omitempty"`
	SelectedCategory string            `json:"selectedCategory,omitempty"`
}

type cartItemResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal float64         `json:"subtotal"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type orderItemResponse struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	Items           []orderItemResponse `json:"items"`
	Total           float64             `json:"total"`
	ShippingAddress string              `json:"shippingAddress"`
	Status          string              `json:"status"`
	// Progress is the fulfillment fraction derived from Status, exposed
	// so the frontend never re-derives it.
	Progress  float64 `json:"progress"`
	CreatedAt string  `json:"createdAt"`
}

type createOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
	// Items may be omitted; the current cart is used instead.
	Items []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapUser(u entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Address:   u.Address,
		BirthDate: u.BirthDate,
	}
}

func mapProduct(p entity.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
	}
}

func mapCart(items []entity.CartItem, total float64) cartResponse {
	out := make([]cartItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, cartItemResponse{
			Product:  mapProduct(it.Product),
			Quantity: it.Quantity,
			Subtotal: it.Subtotal(),
		})
	}
	return cartResponse{Items: out, Total: total}
}

func mapOrder(o entity.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		Progress:        o.Status.Progress(),
		CreatedAt:       o.CreatedAt,
	}
}
