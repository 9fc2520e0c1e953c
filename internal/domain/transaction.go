package domain

import "github.com/shopspring/decimal"

type TransactionStatus string

const (
	TransactionStatusPending         TransactionStatus = "pending"
	TransactionStatusAwaitingDeposit TransactionStatus = "awaiting_deposit"
	TransactionStatusProcessing      TransactionStatus = "processing"
	TransactionStatusCompleted       TransactionStatus = "completed"
	TransactionStatusFailed          TransactionStatus = "failed"
)

func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// TransactionParty is one leg of a payin or payout: the amount and currency
// sent or received, plus the wallet address when the leg is on-chain.
type TransactionParty struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Address  string          `json:"address,omitempty"`
}

// Transaction mirrors the provider's payin/payout resource. Its lifecycle is
// driven entirely by provider-pushed webhook events, never polled.
type Transaction struct {
	ID         string            `json:"id"`
	Status     TransactionStatus `json:"status"`
	Amount     decimal.Decimal   `json:"amount"`
	Currency   string            `json:"currency"`
	CustomerID string            `json:"customer_id"`
	Sender     TransactionParty  `json:"sender"`
	Receiver   TransactionParty  `json:"receiver"`
	CreatedAt  string            `json:"created_at"`
	UpdatedAt  string            `json:"updated_at"`
}
