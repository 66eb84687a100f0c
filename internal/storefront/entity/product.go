package entity

// Product is a catalog entry as served by the storefront API. It is
// immutable from the client's perspective; the server is the source of
// truth for price and stock.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	ImageURL    string

	// StockQuantity is the number of units available for sale. It bounds
	// the quantity a cart line may request; it is never the requested
	// quantity itself.
	StockQuantity int

	// Category is optional; an empty string means uncategorized.
	Category string
}
