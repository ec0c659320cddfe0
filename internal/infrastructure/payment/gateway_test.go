package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecom-checkout/internal/config"
	"ecom-checkout/internal/domain"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(79700), MinorUnits(decimal.RequireFromString("797.00")))
	assert.Equal(t, int64(100), MinorUnits(decimal.NewFromInt(1)))
	// Truncated, not rounded.
	assert.Equal(t, int64(9999), MinorUnits(decimal.RequireFromString("99.999")))
}

func TestMockGateway_CreateOrder(t *testing.T) {
	g := NewMockGateway("INR")
	ctx := context.Background()

	res1, err := g.CreateOrder(ctx, decimal.RequireFromString("349.00"), "")
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, res1.Provider)
	assert.Equal(t, domain.OrderPaid, res1.Status)
	assert.Equal(t, int64(34900), res1.AmountMinor)
	assert.Equal(t, "INR", res1.Currency)
	assert.NotEmpty(t, res1.OrderID)
	assert.NotEmpty(t, res1.PaymentID)

	res2, err := g.CreateOrder(ctx, decimal.NewFromInt(1), "")
	require.NoError(t, err)
	assert.NotEqual(t, res1.OrderID, res2.OrderID)
	assert.NotEqual(t, res1.PaymentID, res2.PaymentID)
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	var gotAuthUser, gotAuthPass string
	var gotBody razorpayOrderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_remote_1","status":"created"}`))
	}))
	defer srv.Close()

	g := NewRazorpayGateway(config.Razorpay{
		KeyID:     "key_1",
		KeySecret: "secret_1",
		BaseURL:   srv.URL,
	}, "INR")

	res, err := g.CreateOrder(context.Background(), decimal.RequireFromString("797.00"), "rcpt_42")
	require.NoError(t, err)

	assert.Equal(t, "key_1", gotAuthUser)
	assert.Equal(t, "secret_1", gotAuthPass)
	assert.Equal(t, int64(79700), gotBody.Amount)
	assert.Equal(t, "INR", gotBody.Currency)
	assert.Equal(t, "rcpt_42", gotBody.Receipt)
	assert.Equal(t, 1, gotBody.PaymentCapture)

	assert.Equal(t, ProviderRazorpay, res.Provider)
	assert.Equal(t, "order_remote_1", res.OrderID)
	assert.Equal(t, domain.OrderCreated, res.Status)
	assert.Equal(t, "key_1", res.KeyID)
	// The secret never leaves the transport layer.
	assert.NotContains(t, []string{res.OrderID, res.KeyID, res.Currency}, "secret_1")
}

func TestRazorpayGateway_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad auth"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewRazorpayGateway(config.Razorpay{KeyID: "k", KeySecret: "s", BaseURL: srv.URL}, "INR")

	_, err := g.CreateOrder(context.Background(), decimal.NewFromInt(10), "")
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestRazorpayGateway_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	g := NewRazorpayGateway(config.Razorpay{KeyID: "k", KeySecret: "s", BaseURL: srv.URL}, "INR")

	_, err := g.CreateOrder(context.Background(), decimal.NewFromInt(10), "")
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestRazorpayGateway_MissingOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"created"}`))
	}))
	defer srv.Close()

	g := NewRazorpayGateway(config.Razorpay{KeyID: "k", KeySecret: "s", BaseURL: srv.URL}, "INR")

	_, err := g.CreateOrder(context.Background(), decimal.NewFromInt(10), "")
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}
