package response

type PaymentInitiate struct {
	Success    bool   `json:"success"`
	GatewayURL string `json:"gateway_url,omitempty"`
	PaymentID  string `json:"payment_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (p *PaymentInitiate) IsValid() bool {
	return p.Success && p.GatewayURL != ""
}

type PaymentStatus struct {
	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id,omitempty"`
	Status        string `json:"status"`
	Amount        string `json:"amount,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type PaymentConfirm struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
}
