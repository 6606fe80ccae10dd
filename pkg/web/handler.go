package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"ykjam/shopfront/pkg"
)

// HandlerContext serves the routes the payment gateway redirects the
// browser back to. Each handler reconstructs its context purely from the
// callback query parameters, the outbound leg left this process entirely.
type HandlerContext interface {
	HandleUtilityEpoch(w http.ResponseWriter, r *http.Request)
	HandleUtilityIP(w http.ResponseWriter, r *http.Request)
	HandlePaymentSuccess(w http.ResponseWriter, r *http.Request)
	HandlePaymentFailed(w http.ResponseWriter, r *http.Request)
	HandlePaymentCancelled(w http.ResponseWriter, r *http.Request)
	HandleTestGateway(w http.ResponseWriter, r *http.Request)
}

type handlerContext struct {
	service pkg.Service
}

type httpGetWithLog func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry)

func GetRemoteAddress(r *http.Request) string {
	if val := r.Header.Get("X-Forwarded-For"); val != "" {
		return val
	} else if val := r.Header.Get("X-Real-IP"); val != "" {
		return val
	} else {
		return r.RemoteAddr
	}
}

func errorHandler(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
	if status == http.StatusNotFound {
		_, _ = fmt.Fprint(w, "Page not found")
	} else {
		_, _ = fmt.Fprintf(w, "HTTP %d error", status)
	}
}

func responseWithCodeAndMessage(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_, _ = fmt.Fprintln(w, message)
}

func jsonResponse(clog *log.Entry, w http.ResponseWriter, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		clog.WithError(err).Error("error in json.Encode")
	}
}

func (c *handlerContext) handleHttpGetWithLog(handleName string, w http.ResponseWriter, r *http.Request, f httpGetWithLog) {
	ctx := r.Context()
	clog := log.WithFields(log.Fields{
		"remote-addr": GetRemoteAddress(r),
		"uri":         r.RequestURI,
		"method":      r.Method,
		"handle":      handleName,
	}).WithContext(ctx)
	if r.Method == http.MethodGet {
		f(w, r, ctx, clog)
	} else {
		clog.Error("invalid request, method not allowed")
		errorHandler(w, http.StatusMethodNotAllowed)
	}
}

// paymentReturn is what the return routes render. NextSteps names the
// actionable paths, no failure here is terminal for the user.
type paymentReturn struct {
	Status    pkg.CheckoutStatus `json:"status"`
	OrderID   string             `json:"order_id,omitempty"`
	TranID    string             `json:"tran_id,omitempty"`
	Message   string             `json:"message,omitempty"`
	NextSteps []string           `json:"next_steps,omitempty"`
}

func (c *handlerContext) HandlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	h := "handlePaymentSuccess"
	c.handleHttpGetWithLog(h, w, r, func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry) {
		params := pkg.ParseGatewayCallback(r.URL.Query())
		if !params.IsValid() {
			clog.Warn("missing tran_id or val_id, ignoring request")
			responseWithCodeAndMessage(w, http.StatusBadRequest, "Invalid payment response")
			return
		}
		clog.WithFields(log.Fields{
			"tran-id": params.TranID,
			"val-id":  params.ValID,
		}).Debug("gateway return received")
		resp, err := c.service.Step3ConfirmPayment(ctx, pkg.ConfirmPaymentRequest{Params: params})
		if err != nil {
			clog.WithError(err).Error("payment confirmation failed")
			jsonResponse(clog, w, paymentReturn{
				Status:    resp.Status,
				TranID:    params.TranID,
				Message:   resp.Message,
				NextSteps: []string{"retry from cart", "contact support"},
			})
			return
		}
		jsonResponse(clog, w, paymentReturn{
			Status:  resp.Status,
			OrderID: resp.OrderID,
			TranID:  params.TranID,
			Message: "Payment confirmed, downloads are now available",
		})
	})
}

func (c *handlerContext) HandlePaymentFailed(w http.ResponseWriter, r *http.Request) {
	h := "handlePaymentFailed"
	c.handleHttpGetWithLog(h, w, r, func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry) {
		// no confirmation call is made, the order stays PENDING
		gatewayError := r.URL.Query().Get("error")
		clog.WithField("gateway-error", gatewayError).Info("payment failed return")
		jsonResponse(clog, w, paymentReturn{
			Status:    pkg.CheckoutStatusConfirmationFailed,
			Message:   gatewayError,
			NextSteps: []string{"retry from cart", "continue shopping", "contact support"},
		})
	})
}

func (c *handlerContext) HandlePaymentCancelled(w http.ResponseWriter, r *http.Request) {
	h := "handlePaymentCancelled"
	c.handleHttpGetWithLog(h, w, r, func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry) {
		// user-initiated, order stays PENDING and the cart is untouched
		clog.Info("payment cancelled return")
		jsonResponse(clog, w, paymentReturn{
			Status:    pkg.CheckoutStatusCancelled,
			Message:   "Payment cancelled",
			NextSteps: []string{"retry from cart", "continue shopping"},
		})
	})
}

// HandleTestGateway stands in for the external gateway in staging. It
// synthesizes the callback parameters and redirects into the regular
// success route, the confirmation contract is the same one the real
// gateway feeds.
func (c *handlerContext) HandleTestGateway(w http.ResponseWriter, r *http.Request) {
	h := "handleTestGateway"
	c.handleHttpGetWithLog(h, w, r, func(w http.ResponseWriter, r *http.Request, ctx context.Context, clog *log.Entry) {
		paymentID := r.URL.Query().Get("payment_id")
		amount := r.URL.Query().Get("amount")
		if paymentID == "" {
			clog.Warn("missing payment_id, ignoring request")
			errorHandler(w, http.StatusBadRequest)
			return
		}
		params := pkg.SynthesizeTestCallback(paymentID, amount)
		target := fmt.Sprintf("/payment/success?%s", params.Values().Encode())
		clog.WithField("target", target).Info("test gateway redirecting back")
		http.Redirect(w, r, target, http.StatusFound)
	})
}

func (c *handlerContext) HandleUtilityEpoch(w http.ResponseWriter, _ *http.Request) {
	epoch := time.Now().Unix()
	responseWithCodeAndMessage(w, http.StatusOK, fmt.Sprintf("%d", epoch))
}

func (c *handlerContext) HandleUtilityIP(w http.ResponseWriter, r *http.Request) {
	remoteIp := GetRemoteAddress(r)
	responseWithCodeAndMessage(w, http.StatusOK, remoteIp)
}

func NewHandlerContext(service pkg.Service) HandlerContext {
	return &handlerContext{
		service: service,
	}
}
