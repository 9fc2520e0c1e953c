package quote

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/provider"
)

type quoteProvider interface {
	CreateQuote(ctx context.Context, req provider.QuoteRequest) (*domain.Quote, error)
}

// Composer chains an on-ramp quote (local currency -> USDC) and an off-ramp
// quote (USDC -> USD) into one effective conversion. USDC:USD is treated as
// 1:1, so the USDC needed equals the target USD amount exactly.
type Composer struct {
	provider quoteProvider
}

func NewComposer(p quoteProvider) *Composer {
	return &Composer{provider: p}
}

// Compose requests both quote legs and combines them. Both must succeed.
// The total local amount rounds up, never under-collecting local currency.
// The downstream payin must be submitted before the combined expiry; expiry
// enforcement itself is the provider's job.
func (c *Composer) Compose(ctx context.Context, amountUSD decimal.Decimal, localCurrency string) (*domain.CombinedQuote, error) {
	if !amountUSD.IsPositive() {
		return nil, fmt.Errorf("Compose: %w", domain.ErrInvalidAmount)
	}
	if localCurrency == "" {
		return nil, fmt.Errorf("Compose: local currency required: %w", domain.ErrInvalidCurrency)
	}

	onRamp, err := c.provider.CreateQuote(ctx, provider.QuoteRequest{
		Symbol: "USDC/" + localCurrency,
		Type:   domain.QuoteTypeOnRamp,
	})
	if err != nil {
		return nil, fmt.Errorf("Compose: on-ramp leg: %w", err)
	}

	// The off-ramp rate does not enter the arithmetic, but the quote is
	// still required: the payout leg consumes it later.
	offRamp, err := c.provider.CreateQuote(ctx, provider.QuoteRequest{
		Symbol: "USDC/USD",
		Type:   domain.QuoteTypeOffRamp,
	})
	if err != nil {
		return nil, fmt.Errorf("Compose: off-ramp leg: %w", err)
	}

	totalLocal := amountUSD.Mul(onRamp.Quotation).Ceil().IntPart()

	expiresAt := onRamp.ExpiresAt
	if offRamp.ExpiresAt < expiresAt {
		expiresAt = offRamp.ExpiresAt
	}

	return &domain.CombinedQuote{
		OnRamp:           *onRamp,
		OffRamp:          *offRamp,
		AmountUSD:        amountUSD,
		TotalFeesUSD:     onRamp.FlatFee.Add(offRamp.FlatFee),
		TotalLocalAmount: totalLocal,
		EffectiveRate:    onRamp.Quotation,
		ExpiresAt:        expiresAt,
	}, nil
}
