package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crebit/ramp-service/internal/domain"
)

const userColumns = `id, email, name, password_hash, provider_customer_id, status, created_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, provider_customer_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.ProviderCustomerID, u.Status, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return u, nil
}

// GetByProviderCustomerID resolves the internal user linked to a provider
// customer. Webhook events for unlinked customers are recorded without user
// linkage, so ErrNotFound here is an expected outcome.
func (r *UserRepository) GetByProviderCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider_customer_id = $1`, customerID,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByProviderCustomerID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByProviderCustomerID: %w", err)
	}
	return u, nil
}

// LinkProviderCustomer stores the provider customer id on an existing user.
func (r *UserRepository) LinkProviderCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET provider_customer_id = $1 WHERE id = $2`,
		customerID, userID,
	)
	if err != nil {
		return fmt.Errorf("LinkProviderCustomer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("LinkProviderCustomer: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("LinkProviderCustomer: %w", domain.ErrNotFound)
	}
	return nil
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	err := s.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.ProviderCustomerID, &u.Status, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
