package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/repository"
	"github.com/crebit/ramp-service/internal/testutil"
)

func TestUserRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	t.Run("create and get by email", func(t *testing.T) {
		u := &domain.User{
			ID:           uuid.New(),
			Email:        "ana@test.com",
			Name:         "Ana Souza",
			PasswordHash: "hash",
			Status:       domain.UserStatusActive,
			CreatedAt:    time.Now().UTC(),
		}
		require.NoError(t, repo.Create(ctx, u))

		got, err := repo.GetByEmail(ctx, "ana@test.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Nil(t, got.ProviderCustomerID)
	})

	t.Run("get by email not found", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@test.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("link provider customer and resolve", func(t *testing.T) {
		u := testutil.SeedTestUser(t, db, "bruno@test.com", "Bruno Lima")

		require.NoError(t, repo.LinkProviderCustomer(ctx, u.ID, "cus_123"))

		got, err := repo.GetByProviderCustomerID(ctx, "cus_123")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		require.NotNil(t, got.ProviderCustomerID)
		assert.Equal(t, "cus_123", *got.ProviderCustomerID)
	})

	t.Run("resolve unknown provider customer", func(t *testing.T) {
		_, err := repo.GetByProviderCustomerID(ctx, "cus_unknown")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("link unknown user", func(t *testing.T) {
		err := repo.LinkProviderCustomer(ctx, uuid.New(), "cus_456")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestWebhookEventRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewWebhookEventRepository(db)
	ctx := context.Background()

	rec := &repository.WebhookEventRecord{
		ID:              uuid.New(),
		ProviderEventID: "evt_1",
		EventType:       domain.EventPayinCreated,
		ResourceID:      "pay_1",
		ResourceStatus:  "awaiting_deposit",
		Payload:         json.RawMessage(`{"event_id":"evt_1"}`),
		ReceivedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(ctx, rec))

	t.Run("redelivery is a no-op", func(t *testing.T) {
		dup := *rec
		dup.ID = uuid.New()
		require.NoError(t, repo.Insert(ctx, &dup))

		events, err := repo.ListByResourceID(ctx, "pay_1")
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("list by resource id in arrival order", func(t *testing.T) {
		second := &repository.WebhookEventRecord{
			ID:              uuid.New(),
			ProviderEventID: "evt_2",
			EventType:       domain.EventPayinCompleted,
			ResourceID:      "pay_1",
			ResourceStatus:  "completed",
			Payload:         json.RawMessage(`{"event_id":"evt_2"}`),
			ReceivedAt:      time.Now().UTC().Add(time.Second),
		}
		require.NoError(t, repo.Insert(ctx, second))

		events, err := repo.ListByResourceID(ctx, "pay_1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "evt_1", events[0].ProviderEventID)
		assert.Equal(t, "evt_2", events[1].ProviderEventID)
	})

	t.Run("attributed to linked user", func(t *testing.T) {
		u := testutil.SeedLinkedUser(t, db, "carla@test.com", "Carla Dias", "cus_999")

		attributed := &repository.WebhookEventRecord{
			ID:              uuid.New(),
			ProviderEventID: "evt_3",
			EventType:       domain.EventPayinCreated,
			ResourceID:      "pay_2",
			Payload:         json.RawMessage(`{}`),
			UserID:          &u.ID,
			ReceivedAt:      time.Now().UTC(),
		}
		require.NoError(t, repo.Insert(ctx, attributed))

		events, err := repo.ListByResourceID(ctx, "pay_2")
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.NotNil(t, events[0].UserID)
		assert.Equal(t, u.ID, *events[0].UserID)
	})
}

func TestTransactionRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rec := &repository.TransactionRecord{
		ID:                    uuid.New(),
		ProviderTransactionID: "pay_1",
		Kind:                  repository.TransactionKindPayin,
		Status:                domain.TransactionStatusAwaitingDeposit,
		Amount:                decimal.RequireFromString("550"),
		Currency:              "BRL",
		ProviderCustomerID:    "cus_1",
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	require.NoError(t, repo.Upsert(ctx, rec))

	t.Run("upsert refreshes status on replay", func(t *testing.T) {
		update := *rec
		update.ID = uuid.New()
		update.Status = domain.TransactionStatusCompleted
		update.UpdatedAt = now.Add(time.Minute)
		require.NoError(t, repo.Upsert(ctx, &update))

		got, err := repo.GetByProviderID(ctx, "pay_1")
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID, "original row survives, only fields refresh")
		assert.Equal(t, domain.TransactionStatusCompleted, got.Status)
		assert.True(t, got.Amount.Equal(rec.Amount))
	})

	t.Run("user linkage sticks once set", func(t *testing.T) {
		u := testutil.SeedTestUser(t, db, "davi@test.com", "Davi Rocha")

		linked := *rec
		linked.ID = uuid.New()
		linked.UserID = &u.ID
		require.NoError(t, repo.Upsert(ctx, &linked))

		unlinked := *rec
		unlinked.ID = uuid.New()
		unlinked.UserID = nil
		require.NoError(t, repo.Upsert(ctx, &unlinked))

		got, err := repo.GetByProviderID(ctx, "pay_1")
		require.NoError(t, err)
		require.NotNil(t, got.UserID)
		assert.Equal(t, u.ID, *got.UserID)
	})

	t.Run("unknown provider id", func(t *testing.T) {
		_, err := repo.GetByProviderID(ctx, "pay_nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
