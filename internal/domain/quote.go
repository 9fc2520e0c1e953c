package domain

import "github.com/shopspring/decimal"

type QuoteType string

const (
	QuoteTypeOnRamp  QuoteType = "on_ramp"
	QuoteTypeOffRamp QuoteType = "off_ramp"
)

// Quote is a time-boxed exchange rate commitment issued by the provider.
// It is immutable, expires at ExpiresAt (epoch seconds) and is consumed by
// at most one payin or payout.
type Quote struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Type      QuoteType       `json:"type"`
	Quotation decimal.Decimal `json:"quotation"`
	FlatFee   decimal.Decimal `json:"flat_fee"`
	ExpiresAt int64           `json:"expires_at"`
}

// CombinedQuote chains an on-ramp quote (local currency -> USDC) and an
// off-ramp quote (USDC -> USD) into one effective conversion. It is derived
// locally, never issued by the provider.
type CombinedQuote struct {
	OnRamp           Quote           `json:"on_ramp"`
	OffRamp          Quote           `json:"off_ramp"`
	AmountUSD        decimal.Decimal `json:"amount_usd"`
	TotalFeesUSD     decimal.Decimal `json:"total_fees_usd"`
	TotalLocalAmount int64           `json:"total_local_amount"`
	EffectiveRate    decimal.Decimal `json:"effective_rate"`
	ExpiresAt        int64           `json:"expires_at"`
}
