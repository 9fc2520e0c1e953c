package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is this system's internal account record. ProviderCustomerID links
// it to the provider-side customer so webhook events can be attributed.
type User struct {
	ID                 uuid.UUID
	Email              string
	Name               string
	PasswordHash       string
	ProviderCustomerID *string
	Status             UserStatus
	CreatedAt          time.Time
}
