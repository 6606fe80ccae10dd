package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutDetailsValidate(t *testing.T) {
	valid := CheckoutDetails{
		Phone:    "01712345678",
		Address:  "House 1, Road 2",
		City:     "Dhaka",
		Postcode: "1000",
	}
	assert.NoError(t, valid.Validate())

	t.Run("missing phone", func(t *testing.T) {
		d := valid
		d.Phone = ""
		assert.ErrorIs(t, d.Validate(), ErrMissingPhone)
	})

	t.Run("missing address", func(t *testing.T) {
		d := valid
		d.Address = ""
		assert.ErrorIs(t, d.Validate(), ErrMissingAddress)
	})

	t.Run("short phone", func(t *testing.T) {
		d := valid
		d.Phone = "123"
		assert.ErrorIs(t, d.Validate(), ErrPhoneTooShort)
	})

	t.Run("city and postcode are optional", func(t *testing.T) {
		d := valid
		d.City = ""
		d.Postcode = ""
		assert.NoError(t, d.Validate())
	})
}
