package stripewebhooks

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sefailyasoz95/test-mate/internal/domain/apps"
	"github.com/sefailyasoz95/test-mate/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

var ErrMissingMetadata = errors.New("missing required metadata")

// reconcile turns one confirmed checkout session into at most one Purchase
// row and advances the app to purchased on the first credit. The metadata
// bag set at session creation is the only channel identifying which app and
// user to credit.
func (h *Handler) reconcile(c *gin.Context, eventID string, session *stripe.CheckoutSession) {
	ctx := c.Request.Context()
	log := h.Log.With().
		Str("event_id", eventID).
		Str("session_id", session.ID).
		Logger()

	appID, userID, pkg, err := extractMetadata(session)
	if err != nil {
		// A 4xx: redelivery cannot fix absent metadata, and swallowing it
		// would hide a data-integrity problem.
		log.Error().Err(err).Msg("checkout session metadata incomplete")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log = log.With().Str("app_id", appID).Uint("user_id", userID).Logger()

	now := h.Now()
	purchase := &billing.Purchase{
		UserID:          userID,
		AppID:           appID,
		PackageType:     string(pkg),
		Amount:          float64(session.AmountTotal) / 100,
		Status:          billing.PurchaseCompleted,
		StripeSessionID: session.ID,
		CreatedAt:       now,
		ExpiresAt:       now.Add(billing.PurchaseValidity),
	}

	// Server-side quota re-check. The pre-flight gate only runs before the
	// checkout session is created, so two open tabs can both pass it; the
	// payment is already captured here, so an overshoot is recorded and
	// flagged for manual follow-up rather than dropped.
	if total, err := h.Purchases.CompletedTotal(ctx, appID, userID); err == nil {
		if allocated, err := billing.ComputeAllocatedTesters(total+purchase.Amount, h.UnitPrice); err == nil &&
			allocated > billing.MaxTestersPerApp {
			log.Warn().
				Int("allocated", allocated).
				Int("cap", billing.MaxTestersPerApp).
				Msg("credit exceeds tester cap, flagging for review")
		}
	}

	created, err := h.Purchases.CreateIfAbsent(ctx, purchase)
	if err != nil {
		// 5xx on purpose: Stripe redelivers, and the unique session-id index
		// makes the retry safe.
		log.Error().Err(err).Msg("failed to record purchase")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record purchase"})
		return
	}

	if !created {
		// Redelivery. Make sure the status advance was not lost if a prior
		// delivery failed between the insert and the update.
		app, err := h.Apps.ByID(ctx, appID)
		if err == nil && apps.Status(app.Status) == apps.StatusWaitingForPurchase {
			if err := h.Apps.SetStatus(ctx, appID, apps.StatusPurchased); err != nil {
				log.Error().Err(err).Msg("failed to advance app status on redelivery")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app status"})
				return
			}
		}
		log.Info().Msg("duplicate webhook delivery, already credited")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.Apps.SetStatus(ctx, appID, apps.StatusPurchased); err != nil {
		log.Error().Err(err).Msg("failed to advance app status after credit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app status"})
		return
	}

	log.Info().
		Str("package_type", string(pkg)).
		Float64("amount", purchase.Amount).
		Msg("purchase credited")
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func extractMetadata(session *stripe.CheckoutSession) (appID string, userID uint, pkg billing.PackageType, err error) {
	meta := session.Metadata
	appID = meta["app_id"]
	userIDStr := meta["user_id"]
	pkgStr := meta["package_type"]

	if appID == "" || userIDStr == "" || pkgStr == "" {
		return "", 0, "", fmt.Errorf("%w: need app_id, user_id and package_type", ErrMissingMetadata)
	}

	uid64, parseErr := strconv.ParseUint(userIDStr, 10, 64)
	if parseErr != nil {
		return "", 0, "", fmt.Errorf("%w: invalid user_id %q", ErrMissingMetadata, userIDStr)
	}

	pkg, pkgErr := billing.ParsePackageType(pkgStr)
	if pkgErr != nil {
		return "", 0, "", fmt.Errorf("%w: %v", ErrMissingMetadata, pkgErr)
	}

	return appID, uint(uid64), pkg, nil
}
