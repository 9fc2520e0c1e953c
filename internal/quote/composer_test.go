package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/provider"
)

type mockQuoteProvider struct {
	quotes map[domain.QuoteType]*domain.Quote
	errs   map[domain.QuoteType]error
	calls  []provider.QuoteRequest
}

func (m *mockQuoteProvider) CreateQuote(_ context.Context, req provider.QuoteRequest) (*domain.Quote, error) {
	m.calls = append(m.calls, req)
	if err := m.errs[req.Type]; err != nil {
		return nil, err
	}
	return m.quotes[req.Type], nil
}

func newMockProvider(onRampRate string, onRampExpiry, offRampExpiry int64) *mockQuoteProvider {
	return &mockQuoteProvider{
		quotes: map[domain.QuoteType]*domain.Quote{
			domain.QuoteTypeOnRamp: {
				ID:        "q-on",
				Symbol:    "USDC/BRL",
				Type:      domain.QuoteTypeOnRamp,
				Quotation: decimal.RequireFromString(onRampRate),
				FlatFee:   decimal.RequireFromString("1.5"),
				ExpiresAt: onRampExpiry,
			},
			domain.QuoteTypeOffRamp: {
				ID:        "q-off",
				Symbol:    "USDC/USD",
				Type:      domain.QuoteTypeOffRamp,
				Quotation: decimal.RequireFromString("1.0"),
				FlatFee:   decimal.RequireFromString("0.5"),
				ExpiresAt: offRampExpiry,
			},
		},
		errs: map[domain.QuoteType]error{},
	}
}

func TestCompose(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		amountUSD      string
		onRampRate     string
		wantTotalLocal int64
	}{
		{
			name:           "exact multiple rounds to itself",
			amountUSD:      "100",
			onRampRate:     "5.5",
			wantTotalLocal: 550,
		},
		{
			name:           "fractional product rounds up",
			amountUSD:      "100",
			onRampRate:     "5.501",
			wantTotalLocal: 551,
		},
		{
			name:           "tiny fraction still rounds up",
			amountUSD:      "1",
			onRampRate:     "5.0001",
			wantTotalLocal: 6,
		},
		{
			name:           "small amount",
			amountUSD:      "0.01",
			onRampRate:     "5.5",
			wantTotalLocal: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newMockProvider(tc.onRampRate, 2000, 3000)
			composer := NewComposer(p)

			amount := decimal.RequireFromString(tc.amountUSD)
			combined, err := composer.Compose(ctx, amount, "BRL")
			require.NoError(t, err)

			assert.Equal(t, tc.wantTotalLocal, combined.TotalLocalAmount)

			// Never under-collect: total >= amount * rate.
			raw := amount.Mul(decimal.RequireFromString(tc.onRampRate))
			assert.True(t, decimal.NewFromInt(combined.TotalLocalAmount).GreaterThanOrEqual(raw),
				"total %d under-collects %s", combined.TotalLocalAmount, raw)

			assert.True(t, combined.EffectiveRate.Equal(decimal.RequireFromString(tc.onRampRate)))
			assert.True(t, combined.TotalFeesUSD.Equal(decimal.RequireFromString("2")))
		})
	}
}

func TestComposeExpiryIsMinOfBothLegs(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		onRampExpiry  int64
		offRampExpiry int64
		want          int64
	}{
		{"on-ramp expires first", 1000, 2000, 1000},
		{"off-ramp expires first", 2000, 1000, 1000},
		{"equal expiries", 1500, 1500, 1500},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newMockProvider("5.5", tc.onRampExpiry, tc.offRampExpiry)
			combined, err := NewComposer(p).Compose(ctx, decimal.NewFromInt(100), "BRL")
			require.NoError(t, err)
			assert.Equal(t, tc.want, combined.ExpiresAt)
		})
	}
}

func TestComposeRequestsBothLegs(t *testing.T) {
	p := newMockProvider("5.5", 2000, 3000)
	_, err := NewComposer(p).Compose(context.Background(), decimal.NewFromInt(100), "BRL")
	require.NoError(t, err)

	require.Len(t, p.calls, 2)
	assert.Equal(t, provider.QuoteRequest{Symbol: "USDC/BRL", Type: domain.QuoteTypeOnRamp}, p.calls[0])
	assert.Equal(t, provider.QuoteRequest{Symbol: "USDC/USD", Type: domain.QuoteTypeOffRamp}, p.calls[1])
}

func TestComposeInvalidAmountFailsBeforeProviderCall(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-10"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newMockProvider("5.5", 2000, 3000)
			_, err := NewComposer(p).Compose(context.Background(), decimal.RequireFromString(tc.amount), "BRL")
			require.ErrorIs(t, err, domain.ErrInvalidAmount)
			assert.Empty(t, p.calls, "provider must not be called for invalid amounts")
		})
	}
}

func TestComposeProviderFailureFailsWholeOperation(t *testing.T) {
	providerErr := &provider.APIError{Status: 503, Body: `{"error":"unavailable"}`}

	for _, leg := range []domain.QuoteType{domain.QuoteTypeOnRamp, domain.QuoteTypeOffRamp} {
		t.Run(string(leg), func(t *testing.T) {
			p := newMockProvider("5.5", 2000, 3000)
			p.errs[leg] = providerErr

			_, err := NewComposer(p).Compose(context.Background(), decimal.NewFromInt(100), "BRL")
			require.Error(t, err)

			var apiErr *provider.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, 503, apiErr.Status)
		})
	}
}
