package pkg

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Service is the order/payment lifecycle as observed from the client.
// Step 1 snapshots the cart into a PENDING order, step 2 collects billing
// details and hands the browser off to the external gateway, step 3 runs on
// the return redirect and forwards the gateway parameters to the backend
// confirmation endpoint. The gateway leg between steps 2 and 3 is outside
// this process entirely. Nothing is retried automatically, every recovery
// is user-initiated.
type Service interface {
	Step1CreateOrder(ctx context.Context) (CreateOrderResponse, error)
	Step2InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (InitiatePaymentResponse, error)
	Step3ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (ConfirmPaymentResponse, error)
}

type service struct {
	client Client
}

func classifyStatus(err error, businessStatus CheckoutStatus) (CheckoutStatus, string) {
	statusErr, ok := AsAPIStatusError(err)
	if !ok {
		return CheckoutStatusNetworkError, ""
	}
	if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
		return CheckoutStatusUnauthorized, statusErr.BusinessMessage()
	}
	if statusErr.StatusCode == http.StatusBadRequest {
		return businessStatus, statusErr.BusinessMessage()
	}
	return CheckoutStatusOtherError, statusErr.BusinessMessage()
}

func (s *service) Step1CreateOrder(ctx context.Context) (resp CreateOrderResponse, err error) {
	clog := log.WithField("operation", "Step 1. Create Order")
	clog.Info("Processing")
	resp.Status = CheckoutStatusOtherError

	order, err := s.client.CreateOrder(ctx)
	if err != nil {
		eMsg := "error creating order from cart"
		clog.WithError(err).Error(eMsg)
		// an empty cart is the one business rejection this endpoint has
		resp.Status, resp.Reason = classifyStatus(err, CheckoutStatusEmptyCart)
		err = errors.Wrap(err, eMsg)
		return
	}
	if !order.IsValid() {
		eMsg := "order response without an order id"
		clog.Error(eMsg)
		err = errors.New(eMsg)
		return
	}
	clog.WithField("order-id", order.OrderID).Info("order created")
	resp.Status = CheckoutStatusOk
	resp.Order = order
	return
}

func (s *service) Step2InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (resp InitiatePaymentResponse, err error) {
	clog := log.WithFields(log.Fields{
		"operation": "Step 2. Initiate Payment",
		"order-id":  req.OrderID,
	})
	clog.Info("Processing")
	resp.Status = CheckoutStatusOtherError

	if req.OrderID == "" {
		eMsg := "order id is required"
		clog.Error(eMsg)
		resp.Status = CheckoutStatusInvalidInput
		resp.Reason = eMsg
		err = errors.New(eMsg)
		return
	}
	// local validation blocks before any request is sent
	if vErr := req.Details.Validate(); vErr != nil {
		clog.WithError(vErr).Error("checkout details validation failed")
		resp.Status = CheckoutStatusInvalidInput
		resp.Reason = vErr.Error()
		err = vErr
		return
	}

	initiated, err := s.client.InitiatePayment(ctx, req.OrderID, req.Details, req.FrontendURL)
	if err != nil {
		eMsg := "error initiating payment"
		clog.WithError(err).Error(eMsg)
		resp.Status, resp.Reason = classifyStatus(err, CheckoutStatusInvalidInput)
		err = errors.Wrap(err, eMsg)
		return
	}
	if !initiated.IsValid() {
		eMsg := "payment initiation rejected"
		clog.WithField("message", initiated.Message).Error(eMsg)
		resp.Reason = initiated.Message
		err = errors.New(eMsg)
		return
	}
	clog.WithFields(log.Fields{
		"payment-id":  initiated.PaymentID,
		"gateway-url": initiated.GatewayURL,
	}).Info("payment initiated, control passes to the gateway")
	resp.Status = CheckoutStatusOk
	resp.GatewayURL = initiated.GatewayURL
	resp.PaymentID = initiated.PaymentID
	return
}

func (s *service) Step3ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (resp ConfirmPaymentResponse, err error) {
	clog := log.WithFields(log.Fields{
		"operation": "Step 3. Confirm Payment",
		"tran-id":   req.Params.TranID,
		"val-id":    req.Params.ValID,
	})
	clog.Info("Processing")
	resp.Status = CheckoutStatusOtherError

	if !req.Params.IsValid() {
		eMsg := "invalid payment response, tran_id and val_id are required"
		clog.Error(eMsg)
		resp.Status = CheckoutStatusInvalidInput
		resp.Message = eMsg
		err = errors.New(eMsg)
		return
	}

	confirmed, err := s.client.ConfirmPaymentSuccess(ctx, req.Params)
	if err != nil {
		statusErr, ok := AsAPIStatusError(err)
		// the backend owns idempotency, a duplicated confirmation for an
		// order that already reached COMPLETED is not a failure
		if ok && strings.Contains(strings.ToLower(statusErr.BusinessMessage()), "already completed") {
			clog.Info("order already completed, treating confirmation as settled")
			resp.Status = CheckoutStatusAlreadyCompleted
			resp.Message = statusErr.BusinessMessage()
			err = nil
			return
		}
		eMsg := "error confirming payment"
		clog.WithError(err).Error(eMsg)
		if ok {
			resp.Status = CheckoutStatusConfirmationFailed
			resp.Message = statusErr.BusinessMessage()
		} else {
			resp.Status = CheckoutStatusNetworkError
		}
		err = errors.Wrap(err, eMsg)
		return
	}
	clog.WithField("order-id", confirmed.OrderID).Info("payment confirmed")
	resp.Status = CheckoutStatusOk
	resp.OrderID = confirmed.OrderID
	resp.Message = confirmed.Message
	return
}

func NewService(client Client) Service {
	return &service{client: client}
}
