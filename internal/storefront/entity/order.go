package entity

// OrderStatus is the server-driven order lifecycle. The client never
// transitions it locally; it only renders it.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Progress maps the status to a fulfillment fraction for progress
// rendering. Defined once here so no render site infers it ad hoc.
func (s OrderStatus) Progress() float64 {
	switch s {
	case OrderProcessing:
		return 0.33
	case OrderShipped:
		return 0.66
	case OrderDelivered:
		return 1.0
	default:
		// PENDING, CANCELLED and anything unknown.
		return 0
	}
}

// OrderItem captures product id/name/quantity/price at order time. It is
// deliberately decoupled from the live Product: later catalog changes must
// not rewrite order history.
type OrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	Total           float64
	ShippingAddress string
	Status          OrderStatus
	CreatedAt       string
}

// OrderItemsTotal derives an order total from its items. Used when the
// server omits the total field.
func OrderItemsTotal(items []OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}

// OrderDraft is the client-side input for order creation. The server is
// the sole source for pricing snapshots and the final total, so the draft
// carries no prices. Product ids are numeric on the wire.
type OrderDraft struct {
	UserID          string
	Items           []OrderDraftItem
	ShippingAddress string
}

type OrderDraftItem struct {
	ProductID int
	Quantity  int
}
