package handler

import (
	"encoding/json"
	"net/http"
)

type WalletHandler struct {
	ramp customerService
}

func NewWalletHandler(ramp customerService) *WalletHandler {
	return &WalletHandler{ramp: ramp}
}

type createWalletRequest struct {
	CustomerID string `json:"customer_id"`
}

// CreateWallet provisions a provider-custodied USDC wallet for a customer.
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if req.CustomerID == "" {
		RespondValidationError(w, []FieldError{{Field: "customer_id", Message: "required"}})
		return
	}

	wallet, err := h.ramp.CreateWallet(r.Context(), req.CustomerID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, wallet)
}
