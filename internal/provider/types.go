package provider

import (
	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
)

type QuoteRequest struct {
	Symbol string           `json:"symbol"`
	Type   domain.QuoteType `json:"type"`
}

type CustomerRequest struct {
	FirstName         string                    `json:"first_name"`
	LastName          string                    `json:"last_name"`
	Email             string                    `json:"email"`
	PhoneNumber       string                    `json:"phone_number"`
	Type              string                    `json:"type"`
	DateOfBirth       string                    `json:"date_of_birth"`
	IdentityDocuments []domain.IdentityDocument `json:"identity_documents"`
	Address           domain.Address            `json:"address"`
}

type ExternalAccountRequest struct {
	AccountName       string         `json:"account_name"`
	BeneficiaryName   string         `json:"beneficiary_name"`
	BankName          string         `json:"bank_name"`
	BankAccountNumber string         `json:"bank_account_number"`
	RoutingNumber     string         `json:"routing_number"`
	Address           domain.Address `json:"address"`
}

type PayinSender struct {
	Name        string `json:"name"`
	TaxDocument string `json:"tax_document"`
}

type PayinReceiver struct {
	WalletAddress string `json:"wallet_address"`
}

type PayinRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	QuoteID     string          `json:"quote_id"`
	CustomerID  string          `json:"customer_id"`
	PaymentRail string          `json:"payment_rail"`
	Sender      PayinSender     `json:"sender"`
	Receiver    PayinReceiver   `json:"receiver"`
}

type PayoutSender struct {
	Currency    string `json:"currency"`
	PaymentRail string `json:"payment_rail"`
	WalletID    string `json:"wallet_id"`
}

type PayoutReceiver struct {
	ExternalAccountID string `json:"external_account_id"`
}

type PayoutRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	QuoteID  string          `json:"quote_id"`
	Sender   PayoutSender    `json:"sender"`
	Receiver PayoutReceiver  `json:"receiver"`
}

type TransferRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	SenderWalletID   string          `json:"sender_wallet_id"`
	ReceiverWalletID string          `json:"receiver_wallet_id"`
}
