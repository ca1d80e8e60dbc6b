package billing

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

type productDTO struct {
	ID          string `json:"id"`
	PriceID     string `json:"priceId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`

	amount float64
}

// ListProducts returns the active TestMate packages from the Stripe catalog,
// cheapest first. The catalog lives in Stripe; there is no local plans table.
func (h *Handler) ListProducts(c *gin.Context) {
	params := &stripe.ProductListParams{Active: stripe.Bool(true)}
	params.AddExpand("data.default_price")

	products, err := h.Products.ListProducts(params)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list stripe products")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error fetching products"})
		return
	}

	var result []productDTO
	for _, p := range products {
		if !strings.Contains(p.Name, "TestMate") || p.DefaultPrice == nil {
			continue
		}
		amount := float64(p.DefaultPrice.UnitAmount) / 100
		result = append(result, productDTO{
			ID:          p.ID,
			PriceID:     p.DefaultPrice.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       formatPrice(amount, string(p.DefaultPrice.Currency)),
			amount:      amount,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].amount < result[j].amount })

	c.JSON(http.StatusOK, result)
}

func formatPrice(amount float64, currency string) string {
	if strings.EqualFold(currency, "usd") {
		return fmt.Sprintf("$%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
}
