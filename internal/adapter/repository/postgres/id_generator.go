package postgres

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates time-ordered IDs. The 128-bit ULID is stored as a
// UUID so ids sort by creation time in the uuid column.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ID.
func (g *ULIDGenerator) Generate() uuid.UUID {
	return uuid.UUID(ulid.Make())
}
