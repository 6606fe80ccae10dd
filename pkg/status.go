package pkg

type CheckoutStatus string

const (
	CheckoutStatusOk                 CheckoutStatus = "ok"
	CheckoutStatusNetworkError       CheckoutStatus = "network-error"
	CheckoutStatusUnauthorized       CheckoutStatus = "unauthorized"
	CheckoutStatusEmptyCart          CheckoutStatus = "empty-cart"
	CheckoutStatusInvalidInput       CheckoutStatus = "invalid-input"
	CheckoutStatusAlreadyCompleted   CheckoutStatus = "already-completed"
	CheckoutStatusConfirmationFailed CheckoutStatus = "confirmation-failed"
	CheckoutStatusCancelled          CheckoutStatus = "cancelled"
	CheckoutStatusOtherError         CheckoutStatus = "other-error"
)
