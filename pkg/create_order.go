package pkg

import (
	"fmt"

	"ykjam/shopfront/pkg/shop/response"
)

type CreateOrderResponse struct {
	Status CheckoutStatus `json:"status"`
	Order  response.Order `json:"order,omitempty"`
	// server-reported business error, shown to the user verbatim
	Reason string `json:"reason,omitempty"`
}

func (r CreateOrderResponse) String() string {
	return fmt.Sprintf("CreateOrderResponse {status: %v, order: %v, reason: %v}",
		r.Status, r.Order.OrderID, r.Reason)
}
