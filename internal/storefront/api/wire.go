package api

import (
	"bytes"
	"encoding/json"

	"github.com/ByronChang/cart-frontend/internal/storefront/entity"
)

// FlexID decodes a JSON string or a JSON number into its string form.
// The storefront API is inconsistent about id types across endpoints, so
// all ids are coerced here once.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// ProductPayload is a product as it appears on the wire, either in the
// catalog listing or nested inside a cart line.
type ProductPayload struct {
	ID          FlexID  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Quantity    *int    `json:"quantity"`
	Category    string  `json:"category"`
}

func (p ProductPayload) toEntity() entity.Product {
	stock := 0
	if p.Quantity != nil {
		stock = *p.Quantity
	}
	return entity.Product{
		ID:            string(p.ID),
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		StockQuantity: stock,
		Category:      p.Category,
	}
}
