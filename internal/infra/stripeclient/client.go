package stripeclient

import (
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Client wraps the stripe-go API client. It is constructed once at startup
// and passed into handlers, so tests can substitute fakes behind the same
// interfaces instead of touching a process-global key.
type Client struct {
	api *client.API
}

func New(secretKey string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}
}

func (c *Client) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}

func (c *Client) ListProducts(params *stripe.ProductListParams) ([]*stripe.Product, error) {
	var products []*stripe.Product
	iter := c.api.Products.List(params)
	for iter.Next() {
		products = append(products, iter.Product())
	}
	return products, iter.Err()
}
