package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crebit/ramp-service/internal/domain"
)

const testAPIKey = "sk_test_123"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: testAPIKey, Timeout: 5 * time.Second}, nil)
}

func TestClientSendsRawAPIKey(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Quote{ID: "quote-1"})
	})

	_, err := client.CreateQuote(context.Background(), QuoteRequest{
		Symbol: "USDC/BRL",
		Type:   domain.QuoteTypeOnRamp,
	})
	require.NoError(t, err)

	// No Bearer prefix: the provider authenticates on the bare key.
	assert.Equal(t, testAPIKey, gotAuth)
}

func TestCreateQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req QuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "USDC/BRL", req.Symbol)
		assert.Equal(t, domain.QuoteTypeOnRamp, req.Type)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Quote{
			ID:        "quote-1",
			Symbol:    req.Symbol,
			Type:      req.Type,
			Quotation: decimal.RequireFromString("5.50"),
			ExpiresAt: 1700000000,
		})
	})

	quote, err := client.CreateQuote(context.Background(), QuoteRequest{
		Symbol: "USDC/BRL",
		Type:   domain.QuoteTypeOnRamp,
	})
	require.NoError(t, err)
	assert.Equal(t, "quote-1", quote.ID)
	assert.True(t, quote.Quotation.Equal(decimal.RequireFromString("5.50")))
}

func TestClientNon2xxReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"quote expired"}`))
	})

	_, err := client.CreatePayout(context.Background(), PayoutRequest{
		Amount:  decimal.NewFromInt(210),
		QuoteID: "quote-1",
	})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Body, "quote expired")
}

func TestClientContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetTransaction(ctx, "pay-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListCustomerExternalAccounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/cus-1/external-accounts", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]domain.ExternalAccount{
			{ID: "ext-1", CustomerID: "cus-1"},
		})
	})

	accounts, err := client.ListCustomerExternalAccounts(context.Background(), "cus-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "ext-1", accounts[0].ID)
}
