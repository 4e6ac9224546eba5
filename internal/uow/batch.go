package uow

import (
	"context"
	"slices"

	"github.com/iho/optiledger/internal/domain"
)

// Batch collects the writes of a single attempt. A fresh Batch is handed to
// every attempt and must not be retained or shared between goroutines.
type Batch struct {
	inserts []domain.Entity
	updates []domain.Entity
}

func newBatch() *Batch {
	return &Batch{}
}

// Insert stages a new entity. Inserts are flushed in the order they were staged.
func (b *Batch) Insert(entity domain.Entity) {
	b.inserts = append(b.inserts, entity)
}

// Update stages a modified entity carrying the version it was read at.
// Staging the same entity twice keeps only the latest state.
func (b *Batch) Update(entity domain.Entity) {
	for i, e := range b.updates {
		if e.Kind() == entity.Kind() && e.EntityID() == entity.EntityID() {
			b.updates[i] = entity
			return
		}
	}
	b.updates = append(b.updates, entity)
}

// Inserts returns the staged inserts in enqueue order.
func (b *Batch) Inserts() []domain.Entity {
	return slices.Clone(b.inserts)
}

// Updates returns the staged updates in enqueue order.
func (b *Batch) Updates() []domain.Entity {
	return slices.Clone(b.updates)
}

// Empty reports whether nothing was staged.
func (b *Batch) Empty() bool {
	return len(b.inserts) == 0 && len(b.updates) == 0
}

func (b *Batch) flushInserts(ctx context.Context, tx Transaction, reg *Registry) error {
	for _, e := range b.inserts {
		w, err := reg.writer(e.Kind())
		if err != nil {
			return err
		}
		if err := w.save(ctx, tx, e); err != nil {
			return err
		}
	}
	return nil
}

// flushUpdates writes updates in ascending id order so that concurrent
// transactions acquire row locks in the same order.
func (b *Batch) flushUpdates(ctx context.Context, tx Transaction, reg *Registry) error {
	for _, e := range sortedByID(b.updates) {
		w, err := reg.writer(e.Kind())
		if err != nil {
			return err
		}
		if err := w.update(ctx, tx, e); err != nil {
			return err
		}
	}
	return nil
}

func sortedByID(entities []domain.Entity) []domain.Entity {
	sorted := slices.Clone(entities)
	slices.SortStableFunc(sorted, func(a, b domain.Entity) int {
		return domain.CompareIDs(a.EntityID(), b.EntityID())
	})
	return sorted
}
