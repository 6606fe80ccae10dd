package response

type CartItem struct {
	ID      int     `json:"id"`
	Product Product `json:"product"`
}

// Cart totals come from the server and are authoritative, the client never
// computes its own. The backend also emits a legacy "total" field on some
// views, total_price is the canonical one and the only one parsed.
type Cart struct {
	ID         int        `json:"id,omitempty"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"total_price"`
	TotalItems int        `json:"total_items"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
