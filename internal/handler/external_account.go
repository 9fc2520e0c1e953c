package handler

import (
	"encoding/json"
	"net/http"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/provider"
)

type ExternalAccountHandler struct {
	ramp customerService
}

func NewExternalAccountHandler(ramp customerService) *ExternalAccountHandler {
	return &ExternalAccountHandler{ramp: ramp}
}

type createExternalAccountRequest struct {
	CustomerID        string         `json:"customer_id"`
	AccountName       string         `json:"account_name"`
	BeneficiaryName   string         `json:"beneficiary_name"`
	BankName          string         `json:"bank_name"`
	BankAccountNumber string         `json:"bank_account_number"`
	RoutingNumber     string         `json:"routing_number"`
	Address           domain.Address `json:"address"`
}

func (r createExternalAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CustomerID == "" {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if r.RoutingNumber == "" {
		errs = append(errs, FieldError{Field: "routing_number", Message: "required"})
	}
	if r.BankAccountNumber == "" {
		errs = append(errs, FieldError{Field: "bank_account_number", Message: "required"})
	}
	return errs
}

type createExternalAccountResponse struct {
	Account *domain.ExternalAccount `json:"external_account"`
	Reused  bool                    `json:"reused"`
}

// CreateExternalAccount registers a payout bank account, reusing an existing
// one with the same routing and account number pair.
func (h *ExternalAccountHandler) CreateExternalAccount(w http.ResponseWriter, r *http.Request) {
	var req createExternalAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.ramp.CreateExternalAccount(r.Context(), req.CustomerID, provider.ExternalAccountRequest{
		AccountName:       req.AccountName,
		BeneficiaryName:   req.BeneficiaryName,
		BankName:          req.BankName,
		BankAccountNumber: req.BankAccountNumber,
		RoutingNumber:     req.RoutingNumber,
		Address:           req.Address,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	RespondSuccess(w, status, createExternalAccountResponse{
		Account: result.Account,
		Reused:  result.Reused,
	})
}
