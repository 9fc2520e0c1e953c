package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/logging"
	"github.com/crebit/ramp-service/internal/provider"
)

type rampProvider interface {
	CreateCustomer(ctx context.Context, req provider.CustomerRequest) (*domain.Customer, error)
	CreateWallet(ctx context.Context, customerID string) (*domain.Wallet, error)
	CreateExternalAccount(ctx context.Context, customerID string, req provider.ExternalAccountRequest) (*domain.ExternalAccount, error)
	CreatePayin(ctx context.Context, req provider.PayinRequest) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

type dedupLookup interface {
	CustomerByDocument(ctx context.Context, value string) (*domain.Customer, error)
	ExternalAccountByBankDetails(ctx context.Context, routingNumber, bankAccountNumber string) (*domain.ExternalAccount, error)
}

// Ramp is the caller-facing orchestration over the provider: customer and
// bank-account creation behind the dedup scans, wallet creation, and payin
// initiation. Everything here is a forwarding layer; lifecycle state lives
// in the settlement tracker.
type Ramp struct {
	provider rampProvider
	lookup   dedupLookup
}

func NewRamp(p rampProvider, lookup dedupLookup) *Ramp {
	return &Ramp{provider: p, lookup: lookup}
}

type CustomerResult struct {
	Customer *domain.Customer
	Reused   bool
}

// CreateCustomer scans existing provider customers by the request's first
// identity document and reuses a match instead of creating a duplicate.
// Matching is exact: a formatting difference in the document value creates
// a second customer.
func (s *Ramp) CreateCustomer(ctx context.Context, req provider.CustomerRequest) (*CustomerResult, error) {
	if len(req.IdentityDocuments) == 0 {
		return nil, fmt.Errorf("CreateCustomer: identity document required: %w", domain.ErrInvalidRequest)
	}

	existing, err := s.lookup.CustomerByDocument(ctx, req.IdentityDocuments[0].Value)
	if err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}
	if existing != nil {
		logging.FromContext(ctx).Info("customer reused",
			"customer_id", existing.ID,
			"document_type", req.IdentityDocuments[0].Type,
		)
		return &CustomerResult{Customer: existing, Reused: true}, nil
	}

	customer, err := s.provider.CreateCustomer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}
	return &CustomerResult{Customer: customer}, nil
}

type ExternalAccountResult struct {
	Account *domain.ExternalAccount
	Reused  bool
}

// CreateExternalAccount reuses an existing provider account with the same
// (routing number, account number) pair instead of registering a duplicate.
func (s *Ramp) CreateExternalAccount(ctx context.Context, customerID string, req provider.ExternalAccountRequest) (*ExternalAccountResult, error) {
	if req.RoutingNumber == "" || req.BankAccountNumber == "" {
		return nil, fmt.Errorf("CreateExternalAccount: bank details required: %w", domain.ErrInvalidRequest)
	}

	existing, err := s.lookup.ExternalAccountByBankDetails(ctx, req.RoutingNumber, req.BankAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("CreateExternalAccount: %w", err)
	}
	if existing != nil {
		logging.FromContext(ctx).Info("external account reused", "account_id", existing.ID)
		return &ExternalAccountResult{Account: existing, Reused: true}, nil
	}

	account, err := s.provider.CreateExternalAccount(ctx, customerID, req)
	if err != nil {
		return nil, fmt.Errorf("CreateExternalAccount: %w", err)
	}
	return &ExternalAccountResult{Account: account}, nil
}

func (s *Ramp) CreateWallet(ctx context.Context, customerID string) (*domain.Wallet, error) {
	wallet, err := s.provider.CreateWallet(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("CreateWallet: %w", err)
	}
	return wallet, nil
}

type PayinParams struct {
	AmountLocal    decimal.Decimal
	CustomerID     string
	WalletAddress  string
	QuoteID        string
	SenderName     string
	SenderDocument string
}

// CreatePayin submits the on-ramp deposit instruction. The quote must still
// be valid when the provider receives it; expiry enforcement is the
// provider's responsibility.
func (s *Ramp) CreatePayin(ctx context.Context, params PayinParams) (*domain.Transaction, error) {
	if !params.AmountLocal.IsPositive() {
		return nil, fmt.Errorf("CreatePayin: %w", domain.ErrInvalidAmount)
	}
	if params.CustomerID == "" || params.QuoteID == "" || params.WalletAddress == "" {
		return nil, fmt.Errorf("CreatePayin: customer, quote and wallet required: %w", domain.ErrInvalidRequest)
	}

	tx, err := s.provider.CreatePayin(ctx, provider.PayinRequest{
		Amount:      params.AmountLocal,
		QuoteID:     params.QuoteID,
		CustomerID:  params.CustomerID,
		PaymentRail: "pix",
		Sender: provider.PayinSender{
			Name:        params.SenderName,
			TaxDocument: params.SenderDocument,
		},
		Receiver: provider.PayinReceiver{WalletAddress: params.WalletAddress},
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePayin: %w", err)
	}

	logging.FromContext(ctx).Info("payin created",
		"transaction_id", tx.ID,
		"customer_id", params.CustomerID,
		"amount_local", params.AmountLocal,
	)
	return tx, nil
}

// TransactionStatus proxies the provider's transaction lookup.
func (s *Ramp) TransactionStatus(ctx context.Context, id string) (*domain.Transaction, error) {
	tx, err := s.provider.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("TransactionStatus: %w", err)
	}
	return tx, nil
}
