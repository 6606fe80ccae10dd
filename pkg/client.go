package pkg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"ykjam/shopfront/pkg/session"
	"ykjam/shopfront/pkg/shop/response"
)

// Client is the store API surface, one method per backend endpoint. Each
// method performs a single request, attaches the bearer token when the
// session store has one, and propagates the transport or HTTP error to the
// caller. No retries, no caching, no deduplication.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (response.Auth, error)
	Login(ctx context.Context, username, password string) (response.Auth, error)
	Profile(ctx context.Context) (response.Profile, error)

	Categories(ctx context.Context) ([]response.Category, error)
	Products(ctx context.Context, filter ProductFilter) (response.ProductPage, error)
	FeaturedProducts(ctx context.Context) ([]response.Product, error)
	ProductBySlug(ctx context.Context, slug string) (response.Product, error)
	SearchProducts(ctx context.Context, query string, filter ProductFilter) (response.ProductPage, error)

	Cart(ctx context.Context) (response.Cart, error)
	AddToCart(ctx context.Context, productID int) (response.Cart, error)
	RemoveFromCart(ctx context.Context, itemID int) (response.Cart, error)
	ClearCart(ctx context.Context) error

	Orders(ctx context.Context) ([]response.Order, error)
	CreateOrder(ctx context.Context) (response.Order, error)
	OrderDetail(ctx context.Context, orderID string) (response.Order, error)
	DownloadProduct(ctx context.Context, orderItemID int) (response.Download, error)

	InitiatePayment(ctx context.Context, orderID string, details CheckoutDetails, frontendURL string) (response.PaymentInitiate, error)
	PaymentStatus(ctx context.Context, paymentID string) (response.PaymentStatus, error)
	ConfirmPaymentSuccess(ctx context.Context, params GatewayCallback) (response.PaymentConfirm, error)

	ProductReviews(ctx context.Context, productID int) ([]response.Review, error)
	AddReview(ctx context.Context, productID, rating int, comment string) (response.Review, error)

	Wishlist(ctx context.Context) ([]response.WishlistItem, error)
	ToggleWishlist(ctx context.Context, productID int) (response.WishlistToggle, error)
}

// APIStatusError is a non-2xx reply with whatever business-error payload the
// backend attached. The payload text is meant for the user verbatim.
type APIStatusError struct {
	StatusCode int
	Payload    response.APIError
}

func (e *APIStatusError) Error() string {
	msg := e.Payload.BestMessage()
	if msg == "" {
		return fmt.Sprintf("invalid http status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, msg)
}

func (e *APIStatusError) BusinessMessage() string {
	return e.Payload.BestMessage()
}

// AsAPIStatusError unwraps through errors.Wrap layers.
func AsAPIStatusError(err error) (*APIStatusError, bool) {
	if err == nil {
		return nil, false
	}
	statusErr, ok := errors.Cause(err).(*APIStatusError)
	return statusErr, ok
}

type client struct {
	baseURL string
	timeout time.Duration
	session session.Store
}

func (c *client) generateClient() *http.Client {
	return &http.Client{
		Timeout: c.timeout,
	}
}

func (c *client) endpoint(path string, query url.Values) string {
	u := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(query) > 0 {
		u = fmt.Sprintf("%s?%s", u, query.Encode())
	}
	return u
}

// doJSON is the single request/response path every endpoint goes through.
func (c *client) doJSON(ctx context.Context, clog *log.Entry, method, rawURL string, payload interface{}, out interface{}) (err error) {
	httpClient := c.generateClient()

	var body *bytes.Reader
	if payload != nil {
		var raw []byte
		raw, err = json.Marshal(payload)
		if err != nil {
			eMsg := "error encoding request payload"
			clog.WithError(err).Error(eMsg)
			err = errors.Wrap(err, eMsg)
			return
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	var r *http.Request
	r, err = http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		eMsg := "error creating http request"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	if payload != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token, ok := c.session.Token(); ok {
		r.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	var res *http.Response
	res, err = httpClient.Do(r)
	if err != nil {
		eMsg := "error making http request"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	var data []byte
	data, err = ioutil.ReadAll(res.Body)
	defer res.Body.Close()
	if err != nil {
		eMsg := "error reading http response"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	clog.WithField("raw", string(data)).Debug("Response received")

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		statusErr := &APIStatusError{StatusCode: res.StatusCode}
		// best effort, non-JSON error bodies keep an empty payload
		_ = json.Unmarshal(data, &statusErr.Payload)
		clog.WithField("status-code", res.StatusCode).Error(statusErr.Error())
		err = statusErr
		return
	}
	if out != nil {
		err = json.Unmarshal(data, out)
		if err != nil {
			eMsg := "error parsing json response"
			clog.WithError(err).Error(eMsg)
			err = errors.Wrap(err, eMsg)
		}
	}
	return
}

func (c *client) Register(ctx context.Context, req RegisterRequest) (resp response.Auth, err error) {
	clog := log.WithField("operation", "register")
	err = c.doJSON(ctx, clog, http.MethodPost, c.endpoint("/users/register/", nil), req, &resp)
	return
}

func (c *client) Login(ctx context.Context, username, password string) (resp response.Auth, err error) {
	clog := log.WithField("operation", "login")
	payload := map[string]string{
		"username": username,
		"password": password,
	}
	err = c.doJSON(ctx, clog, http.MethodPost, c.endpoint("/users/login/", nil), payload, &resp)
	return
}

func (c *client) Profile(ctx context.Context) (resp response.Profile, err error) {
	clog := log.WithField("operation", "profile")
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint("/users/profile/", nil), nil, &resp)
	return
}

func (c *client) Categories(ctx context.Context) (categories []response.Category, err error) {
	clog := log.WithField("operation", "categories")
	var list response.CategoryList
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint("/shop/categories/", nil), nil, &list)
	categories = list
	return
}

func (c *client) Products(ctx context.Context, filter ProductFilter) (resp response.ProductPage, err error) {
	clog := log.WithField("operation", "products")
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint("/shop/products/", filter.Values()), nil, &resp)
	return
}

func (c *client) FeaturedProducts(ctx context.Context) (products []response.Product, err error) {
	clog := log.WithField("operation", "featured-products")
	var page response.ProductPage
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint("/shop/products/featured/", nil), nil, &page)
	products = page.Results
	return
}

func (c *client) ProductBySlug(ctx context.Context, slug string) (resp response.Product, err error) {
	clog := log.WithFields(log.Fields{
		"operation": "product-by-slug",
		"slug":      slug,
	})
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint(fmt.Sprintf("/shop/products/%s/", url.PathEscape(slug)), nil), nil, &resp)
	return
}

func (c *client) SearchProducts(ctx context.Context, query string, filter ProductFilter) (resp response.ProductPage, err error) {
	clog := log.WithField("operation", "search-products")
	q := filter.Values()
	q.Set("q", query)
	q.Del("search")
	q.Del("page")
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint("/shop/products/search/", q), nil, &resp)
	return
}

func (c *client) Cart(ctx context.Context) (resp response.Cart, err error) {
	clog := log.WithField("operation", "cart")
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint("/shop/cart/", nil), nil, &resp)
	return
}

func (c *client) AddToCart(ctx context.Context, productID int) (resp response.Cart, err error) {
	clog := log.WithFields(log.Fields{
		"operation":  "add-to-cart",
		"product-id": productID,
	})
	payload := map[string]int{"product_id": productID}
	err = c.doJSON(ctx, clog, http.MethodPost, c.endpoint("/shop/cart/add/", nil), payload, &resp)
	return
}

func (c *client) RemoveFromCart(ctx context.Context, itemID int) (resp response.Cart, err error) {
	clog := log.WithFields(log.Fields{
		"operation": "remove-from-cart",
		"item-id":   itemID,
	})
	err = c.doJSON(ctx, clog, http.MethodDelete, c.endpoint(fmt.Sprintf("/shop/cart/remove/%d/", itemID), nil), nil, &resp)
	return
}

func (c *client) ClearCart(ctx context.Context) (err error) {
	clog := log.WithField("operation", "clear-cart")
	err = c.doJSON(ctx, clog, http.MethodDelete, c.endpoint("/shop/cart/clear/", nil), nil, nil)
	return
}

func (c *client) Orders(ctx context.Context) (orders []response.Order, err error) {
	clog := log.WithField("operation", "orders")
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint("/shop/orders/", nil), nil, &orders)
	return
}

func (c *client) CreateOrder(ctx context.Context) (resp response.Order, err error) {
	clog := log.WithField("operation", "create-order")
	err = c.doJSON(ctx, clog, http.MethodPost, c.endpoint("/shop/orders/create/", nil), nil, &resp)
	return
}

func (c *client) OrderDetail(ctx context.Context, orderID string) (resp response.Order, err error) {
	clog := log.WithFields(log.Fields{
		"operation": "order-detail",
		"order-id":  orderID,
	})
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint(fmt.Sprintf("/shop/orders/%s/", url.PathEscape(orderID)), nil), nil, &resp)
	return
}

func (c *client) DownloadProduct(ctx context.Context, orderItemID int) (resp response.Download, err error) {
	clog := log.WithFields(log.Fields{
		"operation":     "download-product",
		"order-item-id": orderItemID,
	})
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint(fmt.Sprintf("/shop/orders/download/%d/", orderItemID), nil), nil, &resp)
	return
}

func (c *client) InitiatePayment(ctx context.Context, orderID string, details CheckoutDetails, frontendURL string) (resp response.PaymentInitiate, err error) {
	clog := log.WithFields(log.Fields{
		"operation": "initiate-payment",
		"order-id":  orderID,
	})
	payload := map[string]string{
		"order_id":     orderID,
		"phone":        details.Phone,
		"address":      details.Address,
		"city":         details.City,
		"postcode":     details.Postcode,
		"frontend_url": frontendURL,
	}
	err = c.doJSON(ctx, clog, http.MethodPost, c.endpoint("/payments/initiate/", nil), payload, &resp)
	return
}

func (c *client) PaymentStatus(ctx context.Context, paymentID string) (resp response.PaymentStatus, err error) {
	clog := log.WithFields(log.Fields{
		"operation":  "payment-status",
		"payment-id": paymentID,
	})
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint(fmt.Sprintf("/payments/status/%s/", url.PathEscape(paymentID)), nil), nil, &resp)
	return
}

func (c *client) ConfirmPaymentSuccess(ctx context.Context, params GatewayCallback) (resp response.PaymentConfirm, err error) {
	clog := log.WithFields(log.Fields{
		"operation": "confirm-payment-success",
		"tran-id":   params.TranID,
		"val-id":    params.ValID,
	})
	err = c.doJSON(ctx, clog, http.MethodPost, c.endpoint("/payments/success/", nil), params, &resp)
	return
}

func (c *client) ProductReviews(ctx context.Context, productID int) (reviews []response.Review, err error) {
	clog := log.WithFields(log.Fields{
		"operation":  "product-reviews",
		"product-id": productID,
	})
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint(fmt.Sprintf("/shop/products/%d/reviews/", productID), nil), nil, &reviews)
	return
}

func (c *client) AddReview(ctx context.Context, productID, rating int, comment string) (resp response.Review, err error) {
	clog := log.WithFields(log.Fields{
		"operation":  "add-review",
		"product-id": productID,
	})
	payload := map[string]interface{}{
		"product": productID,
		"rating":  rating,
		"comment": comment,
	}
	err = c.doJSON(ctx, clog, http.MethodPost, c.endpoint(fmt.Sprintf("/shop/products/%d/review/", productID), nil), payload, &resp)
	return
}

func (c *client) Wishlist(ctx context.Context) (items []response.WishlistItem, err error) {
	clog := log.WithField("operation", "wishlist")
	err = c.doJSON(ctx, clog, http.MethodGet, c.endpoint("/shop/wishlist/", nil), nil, &items)
	return
}

func (c *client) ToggleWishlist(ctx context.Context, productID int) (resp response.WishlistToggle, err error) {
	clog := log.WithFields(log.Fields{
		"operation":  "toggle-wishlist",
		"product-id": productID,
	})
	err = c.doJSON(ctx, clog, http.MethodPost, c.endpoint(fmt.Sprintf("/shop/wishlist/toggle/%d/", productID), nil), nil, &resp)
	return
}

func NewClient(baseURL string, timeout time.Duration, store session.Store) Client {
	return &client{
		baseURL: baseURL,
		timeout: timeout,
		session: store,
	}
}
