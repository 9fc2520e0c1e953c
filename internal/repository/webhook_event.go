package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WebhookEventRecord is one inbound provider event as persisted. Every
// event is stored regardless of whether the state machine recognized it;
// UserID is nil when no internal user could be resolved for the provider
// customer.
type WebhookEventRecord struct {
	ID              uuid.UUID
	ProviderEventID string
	EventType       string
	ResourceID      string
	ResourceStatus  string
	Payload         json.RawMessage
	UserID          *uuid.UUID
	ReceivedAt      time.Time
}

type WebhookEventRepository struct {
	db *sql.DB
}

func NewWebhookEventRepository(db *sql.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Insert stores an event row. Redelivered provider events (same provider
// event id) are ignored rather than duplicated.
func (r *WebhookEventRepository) Insert(ctx context.Context, rec *WebhookEventRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO webhook_events (
			id, provider_event_id, event_type, resource_id, resource_status, payload, user_id, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (provider_event_id) DO NOTHING`,
		rec.ID, rec.ProviderEventID, rec.EventType, rec.ResourceID,
		rec.ResourceStatus, rec.Payload, rec.UserID, rec.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (r *WebhookEventRepository) ListByResourceID(ctx context.Context, resourceID string) ([]WebhookEventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, provider_event_id, event_type, resource_id, resource_status, payload, user_id, received_at
		FROM webhook_events WHERE resource_id = $1 ORDER BY received_at`,
		resourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByResourceID: %w", err)
	}
	defer rows.Close()

	var records []WebhookEventRecord
	for rows.Next() {
		var rec WebhookEventRecord
		err := rows.Scan(
			&rec.ID, &rec.ProviderEventID, &rec.EventType, &rec.ResourceID,
			&rec.ResourceStatus, &rec.Payload, &rec.UserID, &rec.ReceivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ListByResourceID: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByResourceID: rows: %w", err)
	}
	return records, nil
}
