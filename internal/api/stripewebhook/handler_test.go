package stripewebhooks

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sefailyasoz95/test-mate/internal/domain/apps"
	"github.com/sefailyasoz95/test-mate/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"
)

const testSecret = "whsec_test_secret"

type fakePurchases struct {
	bySession   map[string]*billing.Purchase
	createCalls int
	createErr   error
	total       float64
	totalCalls  int
}

func newFakePurchases() *fakePurchases {
	return &fakePurchases{bySession: map[string]*billing.Purchase{}}
}

func (f *fakePurchases) CreateIfAbsent(ctx context.Context, p *billing.Purchase) (bool, error) {
	f.createCalls++
	if f.createErr != nil {
		return false, f.createErr
	}
	if _, ok := f.bySession[p.StripeSessionID]; ok {
		return false, nil
	}
	cp := *p
	f.bySession[p.StripeSessionID] = &cp
	return true, nil
}

func (f *fakePurchases) CompletedTotal(ctx context.Context, appID string, userID uint) (float64, error) {
	f.totalCalls++
	return f.total, nil
}

type fakeApps struct {
	app         apps.App
	byIDCalls   int
	statusCalls []apps.Status
	setErr      error
}

func (f *fakeApps) ByID(ctx context.Context, id string) (apps.App, error) {
	f.byIDCalls++
	return f.app, nil
}

func (f *fakeApps) SetStatus(ctx context.Context, id string, status apps.Status) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.statusCalls = append(f.statusCalls, status)
	f.app.Status = string(status)
	return nil
}

func newTestHandler(purchases *fakePurchases, appStore *fakeApps, now time.Time) *Handler {
	h := NewHandler(testSecret, purchases, appStore, 0.99, zerolog.Nop())
	h.Now = func() time.Time { return now }
	return h
}

func serve(h *Handler, body []byte, sigHeader string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", h.Handle)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signHeader(t *testing.T, payload []byte) string {
	t.Helper()
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, testSecret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func checkoutCompletedPayload(t *testing.T, sessionID string, amountTotal int64, metadata map[string]string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_1",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":           sessionID,
				"object":       "checkout.session",
				"amount_total": amountTotal,
				"metadata":     metadata,
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestWebhook_InvalidSignatureRejectedBeforeAnyProcessing(t *testing.T) {
	purchases := newFakePurchases()
	appStore := &fakeApps{app: apps.App{ID: "A1", Status: string(apps.StatusWaitingForPurchase)}}
	h := newTestHandler(purchases, appStore, time.Now())

	payload := checkoutCompletedPayload(t, "cs_123", 297, map[string]string{
		"app_id": "A1", "user_id": "7", "package_type": "single_tester",
	})

	w := serve(h, payload, "t=123,v1=deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, purchases.createCalls, "storage must not be touched")
	assert.Zero(t, purchases.totalCalls)
	assert.Empty(t, appStore.statusCalls)

	w = serve(h, payload, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, purchases.createCalls)
}

func TestWebhook_MissingMetadataIsRejected(t *testing.T) {
	cases := []map[string]string{
		{"user_id": "7", "package_type": "single_tester"},
		{"app_id": "A1", "package_type": "single_tester"},
		{"app_id": "A1", "user_id": "7"},
		{"app_id": "A1", "user_id": "not-a-number", "package_type": "single_tester"},
		{"app_id": "A1", "user_id": "7", "package_type": "mega_package"},
	}
	for _, meta := range cases {
		purchases := newFakePurchases()
		appStore := &fakeApps{app: apps.App{ID: "A1", Status: string(apps.StatusWaitingForPurchase)}}
		h := newTestHandler(purchases, appStore, time.Now())

		payload := checkoutCompletedPayload(t, "cs_123", 297, meta)
		w := serve(h, payload, signHeader(t, payload))

		assert.Equal(t, http.StatusBadRequest, w.Code, "metadata %v", meta)
		assert.Zero(t, purchases.createCalls, "no purchase row for %v", meta)
		assert.Empty(t, appStore.statusCalls)
	}
}

func TestWebhook_CreditsPurchaseAndAdvancesStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	purchases := newFakePurchases()
	appStore := &fakeApps{app: apps.App{ID: "A1", Status: string(apps.StatusWaitingForPurchase)}}
	h := newTestHandler(purchases, appStore, now)

	payload := checkoutCompletedPayload(t, "cs_123", 297, map[string]string{
		"app_id": "A1", "user_id": "7", "package_type": "single_tester",
	})
	w := serve(h, payload, signHeader(t, payload))

	require.Equal(t, http.StatusOK, w.Code)

	p := purchases.bySession["cs_123"]
	require.NotNil(t, p)
	assert.Equal(t, "A1", p.AppID)
	assert.Equal(t, uint(7), p.UserID)
	assert.Equal(t, "single_tester", p.PackageType)
	assert.InDelta(t, 2.97, p.Amount, 1e-9)
	assert.Equal(t, billing.PurchaseCompleted, p.Status)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now.Add(30*24*time.Hour), p.ExpiresAt)

	require.Len(t, appStore.statusCalls, 1)
	assert.Equal(t, apps.StatusPurchased, appStore.statusCalls[0])
}

func TestWebhook_RedeliveryIsIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	purchases := newFakePurchases()
	appStore := &fakeApps{app: apps.App{ID: "A1", Status: string(apps.StatusWaitingForPurchase)}}
	h := newTestHandler(purchases, appStore, now)

	payload := checkoutCompletedPayload(t, "cs_123", 297, map[string]string{
		"app_id": "A1", "user_id": "7", "package_type": "single_tester",
	})

	w := serve(h, payload, signHeader(t, payload))
	require.Equal(t, http.StatusOK, w.Code)
	w = serve(h, payload, signHeader(t, payload))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Len(t, purchases.bySession, 1, "exactly one purchase row")
	assert.Equal(t, 2, purchases.createCalls)
	assert.Len(t, appStore.statusCalls, 1, "status set exactly once")
	assert.Equal(t, string(apps.StatusPurchased), appStore.app.Status)
}

func TestWebhook_RedeliveryRepairsMissedStatusAdvance(t *testing.T) {
	// First delivery credited the purchase but the status write was lost.
	purchases := newFakePurchases()
	purchases.bySession["cs_123"] = &billing.Purchase{StripeSessionID: "cs_123"}
	appStore := &fakeApps{app: apps.App{ID: "A1", Status: string(apps.StatusWaitingForPurchase)}}
	h := newTestHandler(purchases, appStore, time.Now())

	payload := checkoutCompletedPayload(t, "cs_123", 297, map[string]string{
		"app_id": "A1", "user_id": "7", "package_type": "single_tester",
	})
	w := serve(h, payload, signHeader(t, payload))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, purchases.bySession, 1)
	require.Len(t, appStore.statusCalls, 1)
	assert.Equal(t, apps.StatusPurchased, appStore.statusCalls[0])
}

func TestWebhook_StorageFailureReturns500ForRetry(t *testing.T) {
	purchases := newFakePurchases()
	purchases.createErr = fmt.Errorf("connection refused")
	appStore := &fakeApps{app: apps.App{ID: "A1", Status: string(apps.StatusWaitingForPurchase)}}
	h := newTestHandler(purchases, appStore, time.Now())

	payload := checkoutCompletedPayload(t, "cs_123", 297, map[string]string{
		"app_id": "A1", "user_id": "7", "package_type": "single_tester",
	})
	w := serve(h, payload, signHeader(t, payload))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, appStore.statusCalls)
}

func TestWebhook_UnhandledEventTypesAreAcknowledged(t *testing.T) {
	purchases := newFakePurchases()
	appStore := &fakeApps{}
	h := newTestHandler(purchases, appStore, time.Now())

	for _, eventType := range []string{"payment_intent.succeeded", "charge.refunded", "some.future.event"} {
		payload, err := json.Marshal(map[string]interface{}{
			"id":   "evt_other",
			"type": eventType,
			"data": map[string]interface{}{"object": map[string]interface{}{}},
		})
		require.NoError(t, err)

		w := serve(h, payload, signHeader(t, payload))
		assert.Equal(t, http.StatusOK, w.Code, "event %s must be acked", eventType)
	}
	assert.Zero(t, purchases.createCalls)
	assert.Empty(t, appStore.statusCalls)
}
