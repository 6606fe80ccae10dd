package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ykjam/shopfront/pkg"
)

type mockService struct {
	confirmCalls int
	confirmReq   pkg.ConfirmPaymentRequest
	confirmResp  pkg.ConfirmPaymentResponse
	confirmErr   error
}

func (m *mockService) Step1CreateOrder(context.Context) (pkg.CreateOrderResponse, error) {
	return pkg.CreateOrderResponse{}, nil
}

func (m *mockService) Step2InitiatePayment(context.Context, pkg.InitiatePaymentRequest) (pkg.InitiatePaymentResponse, error) {
	return pkg.InitiatePaymentResponse{}, nil
}

func (m *mockService) Step3ConfirmPayment(_ context.Context, req pkg.ConfirmPaymentRequest) (pkg.ConfirmPaymentResponse, error) {
	m.confirmCalls++
	m.confirmReq = req
	return m.confirmResp, m.confirmErr
}

func setupHandler(t *testing.T) (HandlerContext, *mockService) {
	t.Helper()
	service := &mockService{}
	return NewHandlerContext(service), service
}

func TestHandlePaymentSuccess(t *testing.T) {
	t.Run("forwards callback parameters to confirmation", func(t *testing.T) {
		hc, service := setupHandler(t)
		service.confirmResp = pkg.ConfirmPaymentResponse{Status: pkg.CheckoutStatusOk, OrderID: "O1"}

		r := httptest.NewRequest(http.MethodGet, "/payment/success?tran_id=T1&val_id=V1&amount=10.00&card_brand=VISA", nil)
		w := httptest.NewRecorder()
		hc.HandlePaymentSuccess(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 1, service.confirmCalls)
		assert.Equal(t, "T1", service.confirmReq.Params.TranID)
		assert.Equal(t, "V1", service.confirmReq.Params.ValID)
		assert.Equal(t, "10.00", service.confirmReq.Params.Amount)
		assert.Equal(t, "VISA", service.confirmReq.Params.CardBrand)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, string(pkg.CheckoutStatusOk), body["status"])
		assert.Equal(t, "O1", body["order_id"])
	})

	t.Run("missing identifiers rejected without confirmation call", func(t *testing.T) {
		hc, service := setupHandler(t)
		r := httptest.NewRequest(http.MethodGet, "/payment/success?tran_id=T1", nil)
		w := httptest.NewRecorder()
		hc.HandlePaymentSuccess(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, service.confirmCalls)
		assert.Contains(t, w.Body.String(), "Invalid payment response")
	})

	t.Run("confirmation failure offers recovery paths", func(t *testing.T) {
		hc, service := setupHandler(t)
		service.confirmResp = pkg.ConfirmPaymentResponse{Status: pkg.CheckoutStatusConfirmationFailed, Message: "Validation failed"}
		service.confirmErr = assert.AnError

		r := httptest.NewRequest(http.MethodGet, "/payment/success?tran_id=T1&val_id=V1", nil)
		w := httptest.NewRecorder()
		hc.HandlePaymentSuccess(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, string(pkg.CheckoutStatusConfirmationFailed), body["status"])
		assert.NotEmpty(t, body["next_steps"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		hc, service := setupHandler(t)
		r := httptest.NewRequest(http.MethodPost, "/payment/success?tran_id=T1&val_id=V1", nil)
		w := httptest.NewRecorder()
		hc.HandlePaymentSuccess(w, r)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Zero(t, service.confirmCalls)
	})
}

func TestHandlePaymentFailed(t *testing.T) {
	hc, service := setupHandler(t)
	r := httptest.NewRequest(http.MethodGet, "/payment/failed?error=Insufficient+funds", nil)
	w := httptest.NewRecorder()
	hc.HandlePaymentFailed(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	// no confirmation call, the order stays pending
	assert.Zero(t, service.confirmCalls)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient funds", body["message"])
	assert.NotEmpty(t, body["next_steps"])
}

func TestHandlePaymentCancelled(t *testing.T) {
	hc, service := setupHandler(t)
	r := httptest.NewRequest(http.MethodGet, "/payment/cancelled", nil)
	w := httptest.NewRecorder()
	hc.HandlePaymentCancelled(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, service.confirmCalls)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(pkg.CheckoutStatusCancelled), body["status"])
}

func TestHandleTestGateway(t *testing.T) {
	t.Run("redirects into the regular success route", func(t *testing.T) {
		hc, service := setupHandler(t)
		r := httptest.NewRequest(http.MethodGet, "/payment/test-gateway?payment_id=P1&amount=25.00", nil)
		w := httptest.NewRecorder()
		hc.HandleTestGateway(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		// confirmation happens in the success route, not here
		assert.Zero(t, service.confirmCalls)

		location, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/payment/success", location.Path)

		params := pkg.ParseGatewayCallback(location.Query())
		assert.True(t, params.IsValid())
		assert.Equal(t, "P1", params.TranID)
		assert.Equal(t, "25.00", params.Amount)
		assert.Equal(t, "TEST-VISA", params.CardType)
	})

	t.Run("missing payment id", func(t *testing.T) {
		hc, _ := setupHandler(t)
		r := httptest.NewRequest(http.MethodGet, "/payment/test-gateway", nil)
		w := httptest.NewRecorder()
		hc.HandleTestGateway(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
