package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type deliveryRecord struct {
	bun.BaseModel `bun:"table:chatrelay_deliveries,alias:crd"`

	ID         string    `bun:"id,pk"`
	DeliveryID string    `bun:"delivery_id,notnull"`
	Kind       string    `bun:"kind"`
	Status     string    `bun:"status,notnull"`
	Payload    []byte    `bun:"payload"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
