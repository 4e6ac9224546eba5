package domain

import "github.com/google/uuid"

// EntityKind identifies the persistence route of an entity.
type EntityKind string

const (
	KindAccount     EntityKind = "account"
	KindTransfer    EntityKind = "transfer"
	KindOutboxEvent EntityKind = "outbox_event"
)

// Entity is anything a unit of work can insert or update.
type Entity interface {
	EntityID() uuid.UUID
	Kind() EntityKind
}

// Versioned is an entity guarded by an optimistic version column.
type Versioned interface {
	Entity
	EntityVersion() int64
}

// CompareIDs orders two identities by their byte representation.
func CompareIDs(a, b uuid.UUID) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}
