package pkg

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ykjam/shopfront/pkg/shop/response"
)

// mockClient embeds the interface so only the endpoints a test exercises
// need an implementation, anything else reaching the network is a bug.
type mockClient struct {
	Client

	createOrderFn    func(ctx context.Context) (response.Order, error)
	createOrderCalls int

	initiateFn    func(orderID string, details CheckoutDetails, frontendURL string) (response.PaymentInitiate, error)
	initiateCalls int

	confirmFn     func(params GatewayCallback) (response.PaymentConfirm, error)
	confirmCalls  int
	confirmParams GatewayCallback
}

func (m *mockClient) CreateOrder(ctx context.Context) (response.Order, error) {
	m.createOrderCalls++
	return m.createOrderFn(ctx)
}

func (m *mockClient) InitiatePayment(_ context.Context, orderID string, details CheckoutDetails, frontendURL string) (response.PaymentInitiate, error) {
	m.initiateCalls++
	return m.initiateFn(orderID, details, frontendURL)
}

func (m *mockClient) ConfirmPaymentSuccess(_ context.Context, params GatewayCallback) (response.PaymentConfirm, error) {
	m.confirmCalls++
	m.confirmParams = params
	return m.confirmFn(params)
}

func setupService(t *testing.T) (Service, *mockClient) {
	t.Helper()
	mock := &mockClient{}
	return NewService(mock), mock
}

func TestStep1CreateOrder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.createOrderFn = func(context.Context) (response.Order, error) {
			return response.Order{OrderID: "O1", Status: response.OrderStatusPending, TotalAmount: 10}, nil
		}
		resp, err := svc.Step1CreateOrder(context.Background())
		require.NoError(t, err)
		assert.Equal(t, CheckoutStatusOk, resp.Status)
		assert.Equal(t, "O1", resp.Order.OrderID)
	})

	t.Run("empty cart surfaces server message and no order id", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.createOrderFn = func(context.Context) (response.Order, error) {
			return response.Order{}, &APIStatusError{
				StatusCode: http.StatusBadRequest,
				Payload:    response.APIError{ErrorText: "Cart is empty"},
			}
		}
		resp, err := svc.Step1CreateOrder(context.Background())
		require.Error(t, err)
		assert.Equal(t, CheckoutStatusEmptyCart, resp.Status)
		assert.Equal(t, "Cart is empty", resp.Reason)
		assert.Empty(t, resp.Order.OrderID)
	})

	t.Run("transport failure", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.createOrderFn = func(context.Context) (response.Order, error) {
			return response.Order{}, assert.AnError
		}
		resp, err := svc.Step1CreateOrder(context.Background())
		require.Error(t, err)
		assert.Equal(t, CheckoutStatusNetworkError, resp.Status)
	})
}

func TestStep2InitiatePayment(t *testing.T) {
	validReq := InitiatePaymentRequest{
		OrderID: "O1",
		Details: CheckoutDetails{
			Phone:    "01712345678",
			Address:  "House 1, Road 2",
			City:     "Dhaka",
			Postcode: "1000",
		},
		FrontendURL: "http://127.0.0.1:8080",
	}

	t.Run("success", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.initiateFn = func(orderID string, details CheckoutDetails, frontendURL string) (response.PaymentInitiate, error) {
			assert.Equal(t, "O1", orderID)
			assert.Equal(t, "01712345678", details.Phone)
			assert.Equal(t, "http://127.0.0.1:8080", frontendURL)
			return response.PaymentInitiate{Success: true, GatewayURL: "https://gw.example/pay", PaymentID: "P1"}, nil
		}
		resp, err := svc.Step2InitiatePayment(context.Background(), validReq)
		require.NoError(t, err)
		assert.Equal(t, CheckoutStatusOk, resp.Status)
		assert.Equal(t, "https://gw.example/pay", resp.GatewayURL)
		assert.Equal(t, "P1", resp.PaymentID)
	})

	t.Run("short phone blocks before any network call", func(t *testing.T) {
		svc, mock := setupService(t)
		req := validReq
		req.Details.Phone = "123"
		resp, err := svc.Step2InitiatePayment(context.Background(), req)
		assert.ErrorIs(t, err, ErrPhoneTooShort)
		assert.Equal(t, CheckoutStatusInvalidInput, resp.Status)
		assert.Zero(t, mock.initiateCalls)
	})

	t.Run("missing address blocks before any network call", func(t *testing.T) {
		svc, mock := setupService(t)
		req := validReq
		req.Details.Address = ""
		_, err := svc.Step2InitiatePayment(context.Background(), req)
		assert.ErrorIs(t, err, ErrMissingAddress)
		assert.Zero(t, mock.initiateCalls)
	})

	t.Run("missing order id", func(t *testing.T) {
		svc, mock := setupService(t)
		req := validReq
		req.OrderID = ""
		resp, err := svc.Step2InitiatePayment(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, CheckoutStatusInvalidInput, resp.Status)
		assert.Zero(t, mock.initiateCalls)
	})

	t.Run("backend rejection keeps order pending", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.initiateFn = func(string, CheckoutDetails, string) (response.PaymentInitiate, error) {
			return response.PaymentInitiate{}, &APIStatusError{
				StatusCode: http.StatusBadRequest,
				Payload:    response.APIError{ErrorText: "Order already paid"},
			}
		}
		resp, err := svc.Step2InitiatePayment(context.Background(), validReq)
		require.Error(t, err)
		assert.Equal(t, "Order already paid", resp.Reason)
	})

	t.Run("unusable initiation response", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.initiateFn = func(string, CheckoutDetails, string) (response.PaymentInitiate, error) {
			return response.PaymentInitiate{Success: true}, nil
		}
		resp, err := svc.Step2InitiatePayment(context.Background(), validReq)
		require.Error(t, err)
		assert.Equal(t, CheckoutStatusOtherError, resp.Status)
	})
}

func TestStep3ConfirmPayment(t *testing.T) {
	params := GatewayCallback{TranID: "T1", ValID: "V1", Amount: "10.00"}

	t.Run("success forwards exact callback fields", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.confirmFn = func(GatewayCallback) (response.PaymentConfirm, error) {
			return response.PaymentConfirm{Success: true, OrderID: "O1", Status: response.OrderStatusCompleted}, nil
		}
		resp, err := svc.Step3ConfirmPayment(context.Background(), ConfirmPaymentRequest{Params: params})
		require.NoError(t, err)
		assert.Equal(t, CheckoutStatusOk, resp.Status)
		assert.Equal(t, "O1", resp.OrderID)
		assert.Equal(t, 1, mock.confirmCalls)
		assert.Equal(t, "T1", mock.confirmParams.TranID)
		assert.Equal(t, "V1", mock.confirmParams.ValID)
		assert.Equal(t, "10.00", mock.confirmParams.Amount)
	})

	t.Run("missing identifiers block before any network call", func(t *testing.T) {
		svc, mock := setupService(t)
		resp, err := svc.Step3ConfirmPayment(context.Background(), ConfirmPaymentRequest{
			Params: GatewayCallback{TranID: "T1"},
		})
		require.Error(t, err)
		assert.Equal(t, CheckoutStatusInvalidInput, resp.Status)
		assert.Zero(t, mock.confirmCalls)
	})

	t.Run("duplicate confirmation settles idempotently", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.confirmFn = func(GatewayCallback) (response.PaymentConfirm, error) {
			return response.PaymentConfirm{}, &APIStatusError{
				StatusCode: http.StatusBadRequest,
				Payload:    response.APIError{ErrorText: "Order already completed"},
			}
		}
		resp, err := svc.Step3ConfirmPayment(context.Background(), ConfirmPaymentRequest{Params: params})
		require.NoError(t, err)
		assert.Equal(t, CheckoutStatusAlreadyCompleted, resp.Status)
		assert.Equal(t, 1, mock.confirmCalls)
	})

	t.Run("other messages containing already stay failures", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.confirmFn = func(GatewayCallback) (response.PaymentConfirm, error) {
			return response.PaymentConfirm{}, &APIStatusError{
				StatusCode: http.StatusBadRequest,
				Payload:    response.APIError{ErrorText: "Payment already failed"},
			}
		}
		resp, err := svc.Step3ConfirmPayment(context.Background(), ConfirmPaymentRequest{Params: params})
		require.Error(t, err)
		assert.Equal(t, CheckoutStatusConfirmationFailed, resp.Status)
		assert.Equal(t, "Payment already failed", resp.Message)
	})

	t.Run("confirmation failure keeps order incomplete", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.confirmFn = func(GatewayCallback) (response.PaymentConfirm, error) {
			return response.PaymentConfirm{}, &APIStatusError{
				StatusCode: http.StatusBadRequest,
				Payload:    response.APIError{ErrorText: "Validation failed"},
			}
		}
		resp, err := svc.Step3ConfirmPayment(context.Background(), ConfirmPaymentRequest{Params: params})
		require.Error(t, err)
		assert.Equal(t, CheckoutStatusConfirmationFailed, resp.Status)
		assert.Equal(t, "Validation failed", resp.Message)
	})

	t.Run("transport failure", func(t *testing.T) {
		svc, mock := setupService(t)
		mock.confirmFn = func(GatewayCallback) (response.PaymentConfirm, error) {
			return response.PaymentConfirm{}, assert.AnError
		}
		resp, err := svc.Step3ConfirmPayment(context.Background(), ConfirmPaymentRequest{Params: params})
		require.Error(t, err)
		assert.Equal(t, CheckoutStatusNetworkError, resp.Status)
	})
}
