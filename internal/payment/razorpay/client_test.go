package razorpay_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pfm/internal/payment"
	"github.com/MrJamesThe3rd/pfm/internal/payment/razorpay"
)

func TestClient_CreateOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.InDelta(t, 35282, body["amount"], 0)
		assert.Equal(t, "INR", body["currency"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":35282,"currency":"INR","receipt":"receipt_1","status":"created"}`))
	}))
	defer ts.Close()

	c := razorpay.New(ts.URL+"/", "key_id", "key_secret", time.Second)

	order, err := c.CreateOrder(context.Background(), payment.OrderRequest{
		Amount:   35282,
		Currency: "INR",
		Receipt:  "receipt_1",
		Notes:    map[string]string{"email": "ana@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, int64(35282), order.Amount)
}

func TestClient_CreateOrder_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	}))
	defer ts.Close()

	c := razorpay.New(ts.URL, "key_id", "bad", time.Second)

	_, err := c.CreateOrder(context.Background(), payment.OrderRequest{Amount: 1, Currency: "INR"})
	require.Error(t, err)

	var apiErr *razorpay.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Authentication failed", apiErr.Description)
}
