package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func deliveryHandlers() repository.ModelHandlers[*deliveryRecord] {
	return repository.ModelHandlers[*deliveryRecord]{
		NewRecord: func() *deliveryRecord {
			return &deliveryRecord{}
		},
		GetID: func(record *deliveryRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *deliveryRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "delivery_id"
		},
		GetIdentifierValue: func(record *deliveryRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.DeliveryID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
