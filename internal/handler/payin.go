package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/service"
)

type payinService interface {
	CreatePayin(ctx context.Context, params service.PayinParams) (*domain.Transaction, error)
	TransactionStatus(ctx context.Context, id string) (*domain.Transaction, error)
}

type PayinHandler struct {
	ramp payinService
}

func NewPayinHandler(ramp payinService) *PayinHandler {
	return &PayinHandler{ramp: ramp}
}

type createPixPaymentRequest struct {
	AmountLocal    decimal.Decimal `json:"amount_local"`
	CustomerID     string          `json:"customer_id"`
	WalletAddress  string          `json:"wallet_address"`
	QuoteID        string          `json:"quote_id"`
	SenderName     string          `json:"sender_name"`
	SenderDocument string          `json:"sender_document"`
}

func (r createPixPaymentRequest) Validate() []FieldError {
	var errs []FieldError
	if !r.AmountLocal.IsPositive() {
		errs = append(errs, FieldError{Field: "amount_local", Message: "must be greater than zero"})
	}
	if r.CustomerID == "" {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if r.WalletAddress == "" {
		errs = append(errs, FieldError{Field: "wallet_address", Message: "required"})
	}
	if r.QuoteID == "" {
		errs = append(errs, FieldError{Field: "quote_id", Message: "required"})
	}
	return errs
}

// CreatePixPayment submits the on-ramp deposit instruction against a quote.
// Everything after the deposit clears is webhook-driven.
func (h *PayinHandler) CreatePixPayment(w http.ResponseWriter, r *http.Request) {
	var req createPixPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	tx, err := h.ramp.CreatePayin(r.Context(), service.PayinParams{
		AmountLocal:    req.AmountLocal,
		CustomerID:     req.CustomerID,
		WalletAddress:  req.WalletAddress,
		QuoteID:        req.QuoteID,
		SenderName:     req.SenderName,
		SenderDocument: req.SenderDocument,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, tx)
}

// TransactionStatus proxies the provider's view of a single transaction.
func (h *PayinHandler) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	tx, err := h.ramp.TransactionStatus(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, tx)
}
