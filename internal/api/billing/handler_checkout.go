package billing

import (
	"fmt"
	"net/http"

	"github.com/sefailyasoz95/test-mate/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// CreateCheckoutSession builds a one-line-item payment checkout for a tester
// package. The metadata bag is echoed back verbatim by Stripe on completion
// and is the only way the webhook can tell which app and user to credit.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		AppID       string `json:"appId"`
		ProductID   string `json:"productId"`
		PackageType string `json:"packageType"`
		Quantity    int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.AppID == "" || body.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "appId and productId are required"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	pkg, err := billing.ParsePackageType(body.PackageType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown package type"})
		return
	}

	quantity := int64(1)
	if pkg == billing.PackageSingleTester {
		quantity = int64(billing.ClampTesterQuantity(body.Quantity))
	}

	// Pre-flight gate only; the webhook reconciler re-checks after payment.
	if pkg == billing.PackageSingleTester || pkg == billing.PackageFullPackage {
		requested := int(quantity)
		if pkg == billing.PackageFullPackage {
			requested = billing.MaxTestersPerApp
		}
		total, err := h.Purchases.CompletedTotal(c.Request.Context(), body.AppID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check tester allocation"})
			return
		}
		allocated, err := billing.ComputeAllocatedTesters(total, h.UnitPrice)
		if err != nil {
			h.Log.Error().Err(err).Msg("tester unit price misconfigured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Pricing not configured"})
			return
		}
		if decision := billing.CanAllocate(allocated, requested); !decision.Allowed {
			c.JSON(http.StatusConflict, gin.H{"error": decision.Reason})
			return
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(body.ProductID), Quantity: stripe.Int64(quantity)},
		},
		SuccessURL: stripe.String(fmt.Sprintf(
			"%s/payment/success?session_id={CHECKOUT_SESSION_ID}&appId=%s", h.AppURL, body.AppID)),
		CancelURL: stripe.String(h.AppURL + "/dashboard"),
	}
	params.Metadata = map[string]string{
		"app_id":       body.AppID,
		"user_id":      fmt.Sprint(userID),
		"package_type": string(pkg),
	}

	s, err := h.Stripe.CreateCheckoutSession(params)
	if err != nil {
		h.Log.Error().Err(err).Str("app_id", body.AppID).Msg("stripe checkout session creation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error creating checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": s.ID})
}
