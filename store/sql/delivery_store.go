package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-chatrelay/core"
)

// DeliveryStore persists one row per processed webhook delivery. Rows are
// write-once: re-recording the same delivery id is a no-op, never an error.
type DeliveryStore struct {
	db   *bun.DB
	repo repository.Repository[*deliveryRecord]
}

func NewDeliveryStore(db *bun.DB) (*DeliveryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*deliveryRecord](db, deliveryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid delivery repository wiring: %w", err)
		}
	}
	return &DeliveryStore{
		db:   db,
		repo: repo,
	}, nil
}

func (s *DeliveryStore) Record(ctx context.Context, entry core.DeliveryEntry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: delivery store is not configured")
	}
	deliveryID := strings.TrimSpace(entry.DeliveryID)
	if deliveryID == "" {
		return fmt.Errorf("sqlstore: delivery id is required")
	}
	if strings.TrimSpace(entry.Status) == "" {
		return fmt.Errorf("sqlstore: delivery status is required")
	}

	record := &deliveryRecord{
		ID:         uuid.NewString(),
		DeliveryID: deliveryID,
		Kind:       string(entry.Kind),
		Status:     entry.Status,
		Payload:    append([]byte(nil), entry.Payload...),
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *DeliveryStore) Get(ctx context.Context, deliveryID string) (core.DeliveryEntry, error) {
	if s == nil || s.db == nil {
		return core.DeliveryEntry{}, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	record := &deliveryRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.delivery_id = ?", strings.TrimSpace(deliveryID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.DeliveryEntry{}, fmt.Errorf("sqlstore: delivery not found for id %q", deliveryID)
		}
		return core.DeliveryEntry{}, err
	}
	return deliveryToDomain(record), nil
}

// Recent returns the newest deliveries, most recent first.
func (s *DeliveryStore) Recent(ctx context.Context, limit int) ([]core.DeliveryEntry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	records := []*deliveryRecord{}
	err := s.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]core.DeliveryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, deliveryToDomain(record))
	}
	return entries, nil
}

func deliveryToDomain(record *deliveryRecord) core.DeliveryEntry {
	if record == nil {
		return core.DeliveryEntry{}
	}
	return core.DeliveryEntry{
		DeliveryID: record.DeliveryID,
		Kind:       core.EventKind(record.Kind),
		Status:     record.Status,
		Payload:    append([]byte(nil), record.Payload...),
	}
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

var _ core.DeliveryLog = (*DeliveryStore)(nil)
