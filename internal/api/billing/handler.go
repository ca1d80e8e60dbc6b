package billing

import (
	"context"

	"github.com/sefailyasoz95/test-mate/internal/domain/billing"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
)

type CheckoutClient interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type ProductClient interface {
	ListProducts(params *stripe.ProductListParams) ([]*stripe.Product, error)
}

type PurchaseStore interface {
	ForAppUser(ctx context.Context, appID string, userID uint) ([]billing.Purchase, error)
	CompletedTotal(ctx context.Context, appID string, userID uint) (float64, error)
}

type Handler struct {
	Stripe    CheckoutClient
	Products  ProductClient
	Purchases PurchaseStore
	UnitPrice float64
	AppURL    string
	Log       zerolog.Logger
}

func NewHandler(stripeClient CheckoutClient, products ProductClient, purchases PurchaseStore, unitPrice float64, appURL string, log zerolog.Logger) *Handler {
	return &Handler{
		Stripe:    stripeClient,
		Products:  products,
		Purchases: purchases,
		UnitPrice: unitPrice,
		AppURL:    appURL,
		Log:       log,
	}
}
