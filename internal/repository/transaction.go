package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crebit/ramp-service/internal/domain"
)

// TransactionRecord mirrors a provider payin/payout as persisted, keyed by
// the provider's transaction id.
type TransactionRecord struct {
	ID                    uuid.UUID
	ProviderTransactionID string
	Kind                  string
	Status                domain.TransactionStatus
	Amount                decimal.Decimal
	Currency              string
	ProviderCustomerID    string
	UserID                *uuid.UUID
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

const (
	TransactionKindPayin  = "payin"
	TransactionKindPayout = "payout"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert inserts the transaction row or, when the provider id is already
// known, refreshes its status and amount.
func (r *TransactionRepository) Upsert(ctx context.Context, rec *TransactionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (
			id, provider_transaction_id, kind, status, amount, currency,
			provider_customer_id, user_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (provider_transaction_id) DO UPDATE SET
			status = EXCLUDED.status,
			amount = EXCLUDED.amount,
			user_id = COALESCE(transactions.user_id, EXCLUDED.user_id),
			updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.ProviderTransactionID, rec.Kind, rec.Status, rec.Amount,
		rec.Currency, rec.ProviderCustomerID, rec.UserID, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByProviderID(ctx context.Context, providerID string) (*TransactionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, provider_transaction_id, kind, status, amount, currency,
			provider_customer_id, user_id, created_at, updated_at
		FROM transactions WHERE provider_transaction_id = $1`,
		providerID,
	)

	var rec TransactionRecord
	err := row.Scan(
		&rec.ID, &rec.ProviderTransactionID, &rec.Kind, &rec.Status, &rec.Amount,
		&rec.Currency, &rec.ProviderCustomerID, &rec.UserID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByProviderID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByProviderID: %w", err)
	}
	return &rec, nil
}
