package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crebit/ramp-service/internal/domain"
)

const TestPassword = "password123"

func SeedTestUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Status, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

// SeedLinkedUser creates a user already linked to a provider customer, the
// state webhook attribution depends on.
func SeedLinkedUser(t *testing.T, db *sql.DB, email, name, providerCustomerID string) *domain.User {
	t.Helper()

	u := SeedTestUser(t, db, email, name)
	_, err := db.Exec(
		`UPDATE users SET provider_customer_id = $1 WHERE id = $2`,
		providerCustomerID, u.ID,
	)
	if err != nil {
		t.Fatalf("link provider customer %s: %v", providerCustomerID, err)
	}
	u.ProviderCustomerID = &providerCustomerID
	return u
}
