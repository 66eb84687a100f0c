package entity

// CartItem is one line of the cart: a product snapshot plus the quantity
// the user asked for. Quantity must be >= 1 and is capped by the caller at
// Product.StockQuantity before any store operation runs.
type CartItem struct {
	Product  Product
	Quantity int
}

func (i CartItem) Subtotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}

// Cart is the user's pending purchase selection. Items keeps server/append
// order. Total is derived; it must always equal CartTotal(Items).
type Cart struct {
	Items []CartItem
	Total float64
}

// CartTotal recomputes the cart total from its lines. Every writer of
// Cart.Total goes through this helper so the two can never diverge.
func CartTotal(items []CartItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}
