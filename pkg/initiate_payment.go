package pkg

import "fmt"

type InitiatePaymentRequest struct {
	OrderID string          `json:"order_id"`
	Details CheckoutDetails `json:"details"`
	// origin the gateway redirects back to after the external leg
	FrontendURL string `json:"frontend_url"`
}

type InitiatePaymentResponse struct {
	Status     CheckoutStatus `json:"status"`
	GatewayURL string         `json:"gateway_url,omitempty"`
	PaymentID  string         `json:"payment_id,omitempty"`
	Reason     string         `json:"reason,omitempty"`
}

func (r InitiatePaymentResponse) String() string {
	return fmt.Sprintf("InitiatePaymentResponse {status: %v, paymentId: %v, gatewayUrl: %v, reason: %v}",
		r.Status, r.PaymentID, r.GatewayURL, r.Reason)
}
