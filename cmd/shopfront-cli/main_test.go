package main

import (
	"context"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v2"

	"ykjam/shopfront/pkg"
	"ykjam/shopfront/pkg/shop/response"
)

type memStore struct {
	token string
}

func (m *memStore) Save(token string) error {
	m.token = token
	return nil
}

func (m *memStore) Token() (string, bool) {
	return m.token, m.token != ""
}

func (m *memStore) Clear() error {
	m.token = ""
	return nil
}

func (m *memStore) IsAuthenticated() bool {
	return m.token != ""
}

type countingClient struct {
	pkg.Client
	cartCalls int
}

func (c *countingClient) Cart(context.Context) (response.Cart, error) {
	c.cartCalls++
	return response.Cart{}, nil
}

func testContext(t *testing.T) *cli.Context {
	t.Helper()
	return cli.NewContext(cli.NewApp(), flag.NewFlagSet("test", flag.ContinueOnError), nil)
}

func TestAuthenticatedActionsBlockWithoutToken(t *testing.T) {
	client := &countingClient{}
	a := &app{
		store:  &memStore{},
		client: client,
	}

	// no request may leave the process before the login check
	err := a.cmdCartShow(testContext(t))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
	assert.Zero(t, client.cartCalls)
}

func TestAuthenticatedActionProceedsWithToken(t *testing.T) {
	client := &countingClient{}
	a := &app{
		store:  &memStore{token: "tok-1"},
		client: client,
	}

	err := a.cmdCartShow(testContext(t))
	assert.NoError(t, err)
	assert.Equal(t, 1, client.cartCalls)
}

type downloadClient struct {
	pkg.Client
	order         response.Order
	download      response.Download
	downloadCalls int
}

func (c *downloadClient) OrderDetail(context.Context, string) (response.Order, error) {
	return c.order, nil
}

func (c *downloadClient) DownloadProduct(context.Context, int) (response.Download, error) {
	c.downloadCalls++
	return c.download, nil
}

func downloadContext(t *testing.T, orderID, itemID string) *cli.Context {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if err := fs.Parse([]string{orderID, itemID}); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(cli.NewApp(), fs, nil)
}

func TestDownloadExhaustedItemNeverHitsServer(t *testing.T) {
	client := &downloadClient{
		order: response.Order{
			OrderID: "O1",
			Status:  response.OrderStatusCompleted,
			Items: []response.OrderItem{
				{ID: 7, DownloadCount: 5, DownloadLimit: 5},
			},
		},
	}
	a := &app{store: &memStore{token: "tok-1"}, client: client}

	err := a.cmdDownload(downloadContext(t, "O1", "7"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "0 of 5 remaining")
	assert.Zero(t, client.downloadCalls)
}

func TestDownloadRejectsEmptyURL(t *testing.T) {
	client := &downloadClient{
		order: response.Order{
			OrderID: "O1",
			Status:  response.OrderStatusCompleted,
			Items: []response.OrderItem{
				{ID: 7, DownloadCount: 1, DownloadLimit: 5},
			},
		},
		download: response.Download{},
	}
	a := &app{store: &memStore{token: "tok-1"}, client: client}

	err := a.cmdDownload(downloadContext(t, "O1", "7"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no download url")
	assert.Equal(t, 1, client.downloadCalls)
}
