package stripewebhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sefailyasoz95/test-mate/internal/domain/apps"
	"github.com/sefailyasoz95/test-mate/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

type PurchaseStore interface {
	CreateIfAbsent(ctx context.Context, p *billing.Purchase) (bool, error)
	CompletedTotal(ctx context.Context, appID string, userID uint) (float64, error)
}

type AppStore interface {
	ByID(ctx context.Context, id string) (apps.App, error)
	SetStatus(ctx context.Context, id string, status apps.Status) error
}

// Handler receives Stripe webhook events. Only checkout.session.completed
// carries business logic; every other event type is acknowledged so Stripe
// stops retrying it.
type Handler struct {
	Secret    string
	Purchases PurchaseStore
	Apps      AppStore
	UnitPrice float64
	Log       zerolog.Logger

	// Overridable for tests.
	Now func() time.Time
}

func NewHandler(secret string, purchases PurchaseStore, apps AppStore, unitPrice float64, log zerolog.Logger) *Handler {
	return &Handler{
		Secret:    secret,
		Purchases: purchases,
		Apps:      apps,
		UnitPrice: unitPrice,
		Log:       log,
		Now:       time.Now,
	}
}

func (h *Handler) Handle(c *gin.Context) {
	// The signature covers the exact request bytes, so the body is read raw
	// before anything parses it.
	payload, err := readRawBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.Log.Warn().Err(err).Msg("stripe signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		h.reconcile(c, event.ID, &session)

	default:
		// Acknowledge everything else or Stripe retries indefinitely.
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func readRawBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
