package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/provider"
	"github.com/crebit/ramp-service/internal/service"
)

type customerService interface {
	CreateCustomer(ctx context.Context, req provider.CustomerRequest) (*service.CustomerResult, error)
	CreateWallet(ctx context.Context, customerID string) (*domain.Wallet, error)
	CreateExternalAccount(ctx context.Context, customerID string, req provider.ExternalAccountRequest) (*service.ExternalAccountResult, error)
}

type CustomerHandler struct {
	ramp customerService
}

func NewCustomerHandler(ramp customerService) *CustomerHandler {
	return &CustomerHandler{ramp: ramp}
}

type createCustomerRequest struct {
	FirstName         string                    `json:"first_name"`
	LastName          string                    `json:"last_name"`
	Email             string                    `json:"email"`
	PhoneNumber       string                    `json:"phone_number"`
	Type              string                    `json:"type"`
	DateOfBirth       string                    `json:"date_of_birth"`
	IdentityDocuments []domain.IdentityDocument `json:"identity_documents"`
	Address           domain.Address            `json:"address"`
}

func (r createCustomerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.FirstName == "" {
		errs = append(errs, FieldError{Field: "first_name", Message: "required"})
	}
	if r.LastName == "" {
		errs = append(errs, FieldError{Field: "last_name", Message: "required"})
	}
	if len(r.IdentityDocuments) == 0 {
		errs = append(errs, FieldError{Field: "identity_documents", Message: "at least one required"})
	} else {
		for _, doc := range r.IdentityDocuments {
			if doc.Value == "" {
				errs = append(errs, FieldError{Field: "identity_documents", Message: "document value required"})
				break
			}
		}
	}
	return errs
}

type createCustomerResponse struct {
	Customer *domain.Customer `json:"customer"`
	Reused   bool             `json:"reused"`
}

// CreateCustomer registers a provider customer, reusing an existing one
// when the identity document already matches.
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.ramp.CreateCustomer(r.Context(), provider.CustomerRequest{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		PhoneNumber:       req.PhoneNumber,
		Type:              req.Type,
		DateOfBirth:       req.DateOfBirth,
		IdentityDocuments: req.IdentityDocuments,
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
	RespondSuccess(w, status, createCustomerResponse{
		Customer: result.Customer,
		Reused:   result.Reused,
	})
}
