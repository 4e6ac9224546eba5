package usecase

import "time"

const (
	// DefaultListLimit is used when a list request does not specify a limit.
	DefaultListLimit = 20

	// MaxListLimit caps the page size of list requests.
	MaxListLimit = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func page[T any](items []T, limit, offset int) []T {
	limit, offset = normalizePage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}
