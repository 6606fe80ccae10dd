package pkg

import "fmt"

type ConfirmPaymentRequest struct {
	Params GatewayCallback `json:"params"`
}

type ConfirmPaymentResponse struct {
	Status  CheckoutStatus `json:"status"`
	OrderID string         `json:"order_id,omitempty"`
	Message string         `json:"message,omitempty"`
}

func (r ConfirmPaymentResponse) String() string {
	return fmt.Sprintf("ConfirmPaymentResponse {status: %v, orderId: %v, message: %v}",
		r.Status, r.OrderID, r.Message)
}
