package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
)

type quoteComposer interface {
	Compose(ctx context.Context, amountUSD decimal.Decimal, localCurrency string) (*domain.CombinedQuote, error)
}

type QuoteHandler struct {
	composer      quoteComposer
	localCurrency string
}

func NewQuoteHandler(composer quoteComposer, localCurrency string) *QuoteHandler {
	return &QuoteHandler{composer: composer, localCurrency: localCurrency}
}

type createQuoteRequest struct {
	AmountUSD decimal.Decimal `json:"amount_usd"`
	Currency  string          `json:"currency,omitempty"`
}

func (r createQuoteRequest) Validate() []FieldError {
	var errs []FieldError
	if r.AmountUSD.IsZero() {
		errs = append(errs, FieldError{Field: "amount_usd", Message: "required"})
	} else if !r.AmountUSD.IsPositive() {
		errs = append(errs, FieldError{Field: "amount_usd", Message: "must be greater than zero"})
	}
	return errs
}

// CreateQuote prices amount_usd of USDC delivery: how much local currency
// to collect and by when the payin must be submitted.
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = h.localCurrency
	}

	quote, err := h.composer.Compose(r.Context(), req.AmountUSD, currency)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, quote)
}
