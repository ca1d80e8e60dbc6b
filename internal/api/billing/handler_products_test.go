package billing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
)

func TestListProducts_FiltersAndSorts(t *testing.T) {
	products := &fakeProducts{products: []*stripe.Product{
		{
			ID:   "prod_full",
			Name: "TestMate Active Package",
			DefaultPrice: &stripe.Price{
				ID: "price_full", UnitAmount: 1099, Currency: stripe.CurrencyUSD,
			},
		},
		{
			ID:   "prod_other",
			Name: "Unrelated Product",
			DefaultPrice: &stripe.Price{
				ID: "price_other", UnitAmount: 100, Currency: stripe.CurrencyUSD,
			},
		},
		{
			ID:   "prod_single",
			Name: "TestMate Single Tester",
			DefaultPrice: &stripe.Price{
				ID: "price_single", UnitAmount: 99, Currency: stripe.CurrencyUSD,
			},
		},
		{
			ID:   "prod_noprice",
			Name: "TestMate Draft",
		},
	}}

	h := NewHandler(&fakeCheckout{}, products, &fakePurchaseStore{}, 0.99, "https://testmate.example.com", zerolog.Nop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/products", h.ListProducts)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var result []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result, 2, "non-TestMate and priceless products are dropped")

	assert.Equal(t, "prod_single", result[0]["id"])
	assert.Equal(t, "price_single", result[0]["priceId"])
	assert.Equal(t, "$0.99", result[0]["price"])
	assert.Equal(t, "prod_full", result[1]["id"])
	assert.Equal(t, "$10.99", result[1]["price"])
}
