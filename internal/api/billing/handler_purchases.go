package billing

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListPurchases returns the purchase rows for one (app, user) pair. The
// dashboard sums their amounts for the pre-flight tester quota check.
func (h *Handler) ListPurchases(c *gin.Context) {
	appID := c.Query("appId")
	userIDStr := c.Query("userId")
	if appID == "" || userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}

	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
		return
	}

	// Owners may only read their own purchases; admins may read any.
	if c.GetString("role") != "admin" && c.GetUint("user_id") != uint(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	purchases, err := h.Purchases.ForAppUser(c.Request.Context(), appID, uint(userID))
	if err != nil {
		h.Log.Error().Err(err).Str("app_id", appID).Msg("failed to fetch purchases")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchases"})
		return
	}

	c.JSON(http.StatusOK, purchases)
}
