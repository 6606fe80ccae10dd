package pkg

import "github.com/pkg/errors"

// MinPhoneLength matches the backend's expectation for local numbers.
const MinPhoneLength = 11

var (
	ErrMissingPhone   = errors.New("phone number is required")
	ErrMissingAddress = errors.New("address is required")
	ErrPhoneTooShort  = errors.New("phone number is too short")
)

// CheckoutDetails are the billing fields collected before a payment is
// initiated. Only presence and a minimum phone length are checked here,
// anything further is the backend's job.
type CheckoutDetails struct {
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
}

func (d CheckoutDetails) Validate() error {
	if d.Phone == "" {
		return ErrMissingPhone
	}
	if d.Address == "" {
		return ErrMissingAddress
	}
	if len(d.Phone) < MinPhoneLength {
		return ErrPhoneTooShort
	}
	return nil
}
