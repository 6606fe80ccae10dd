package pkg

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// GatewayCallback carries the result parameters the payment gateway sends
// back through the return redirect. The client never persists them, it only
// forwards them to the confirmation endpoint. PaymentID is route context and
// is not part of the confirmation payload.
type GatewayCallback struct {
	PaymentID   string `json:"-"`
	TranID      string `json:"tran_id"`
	ValID       string `json:"val_id"`
	Amount      string `json:"amount,omitempty"`
	CardType    string `json:"card_type,omitempty"`
	BankTranID  string `json:"bank_tran_id,omitempty"`
	CardNo      string `json:"card_no,omitempty"`
	CardIssuer  string `json:"card_issuer,omitempty"`
	CardBrand   string `json:"card_brand,omitempty"`
	StoreAmount string `json:"store_amount,omitempty"`
}

// ParseGatewayCallback rebuilds the callback from return-redirect query
// parameters. The return path is a fresh entry point, nothing is taken from
// in-memory state.
func ParseGatewayCallback(q url.Values) GatewayCallback {
	return GatewayCallback{
		PaymentID:   q.Get("payment_id"),
		TranID:      q.Get("tran_id"),
		ValID:       q.Get("val_id"),
		Amount:      q.Get("amount"),
		CardType:    q.Get("card_type"),
		BankTranID:  q.Get("bank_tran_id"),
		CardNo:      q.Get("card_no"),
		CardIssuer:  q.Get("card_issuer"),
		CardBrand:   q.Get("card_brand"),
		StoreAmount: q.Get("store_amount"),
	}
}

func (g GatewayCallback) IsValid() bool {
	return g.TranID != "" && g.ValID != ""
}

// Values renders the callback back into redirect query parameters.
func (g GatewayCallback) Values() url.Values {
	q := url.Values{}
	if g.PaymentID != "" {
		q.Set("payment_id", g.PaymentID)
	}
	q.Set("tran_id", g.TranID)
	q.Set("val_id", g.ValID)
	if g.Amount != "" {
		q.Set("amount", g.Amount)
	}
	if g.CardType != "" {
		q.Set("card_type", g.CardType)
	}
	if g.BankTranID != "" {
		q.Set("bank_tran_id", g.BankTranID)
	}
	if g.CardNo != "" {
		q.Set("card_no", g.CardNo)
	}
	if g.CardIssuer != "" {
		q.Set("card_issuer", g.CardIssuer)
	}
	if g.CardBrand != "" {
		q.Set("card_brand", g.CardBrand)
	}
	if g.StoreAmount != "" {
		q.Set("store_amount", g.StoreAmount)
	}
	return q
}

// SynthesizeTestCallback builds the staging-gateway variant of the callback.
// Only the parameter source differs from the real gateway, the confirmation
// contract is the same.
func SynthesizeTestCallback(paymentID, amount string) GatewayCallback {
	now := time.Now().Unix()
	tranID := paymentID
	if tranID == "" {
		tranID = uuid.NewString()
	}
	return GatewayCallback{
		PaymentID:   paymentID,
		TranID:      tranID,
		ValID:       fmt.Sprintf("TEST_%d", now),
		Amount:      amount,
		CardType:    "TEST-VISA",
		BankTranID:  fmt.Sprintf("BANK_%d", now),
		CardNo:      "4111XXXXXXXX1111",
		CardIssuer:  "Test Bank",
		CardBrand:   "VISA",
		StoreAmount: amount,
	}
}
