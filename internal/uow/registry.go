package uow

import (
	"context"
	"fmt"

	"github.com/iho/optiledger/internal/domain"
)

// writer is the untyped view of a Repository used while flushing a Batch.
type writer interface {
	save(ctx context.Context, tx Transaction, e domain.Entity) error
	update(ctx context.Context, tx Transaction, e domain.Entity) error
	repository() any
}

type typedWriter[T domain.Entity] struct {
	kind domain.EntityKind
	repo Repository[T]
}

func (w typedWriter[T]) cast(e domain.Entity) (T, error) {
	t, ok := e.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: repository for %q cannot handle %T", domain.ErrConfiguration, w.kind, e)
	}
	return t, nil
}

func (w typedWriter[T]) save(ctx context.Context, tx Transaction, e domain.Entity) error {
	t, err := w.cast(e)
	if err != nil {
		return err
	}
	_, err = w.repo.Save(ctx, tx, t)
	return err
}

func (w typedWriter[T]) update(ctx context.Context, tx Transaction, e domain.Entity) error {
	t, err := w.cast(e)
	if err != nil {
		return err
	}
	return w.repo.Update(ctx, tx, t)
}

func (w typedWriter[T]) repository() any { return w.repo }

// Binding associates an entity kind with its repository.
type Binding struct {
	kind    domain.EntityKind
	writer  writer
	nilRepo bool
}

// Bind creates a binding for a typed repository.
func Bind[T domain.Entity](kind domain.EntityKind, repo Repository[T]) Binding {
	return Binding{
		kind:    kind,
		writer:  typedWriter[T]{kind: kind, repo: repo},
		nilRepo: repo == nil,
	}
}

// Registry maps entity kinds to repositories. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	writers map[domain.EntityKind]writer
}

// NewRegistry builds a registry. Every kind may be bound once.
func NewRegistry(bindings ...Binding) (*Registry, error) {
	writers := make(map[domain.EntityKind]writer, len(bindings))

	for _, b := range bindings {
		if b.kind == "" {
			return nil, fmt.Errorf("%w: binding without entity kind", domain.ErrConfiguration)
		}
		if b.nilRepo {
			return nil, fmt.Errorf("%w: nil repository for entity type %q", domain.ErrConfiguration, b.kind)
		}
		if _, dup := writers[b.kind]; dup {
			return nil, fmt.Errorf("%w: repository for entity type %q registered twice", domain.ErrConfiguration, b.kind)
		}
		writers[b.kind] = b.writer
	}

	return &Registry{writers: writers}, nil
}

// Kinds lists the registered entity kinds.
func (r *Registry) Kinds() []domain.EntityKind {
	kinds := make([]domain.EntityKind, 0, len(r.writers))
	for k := range r.writers {
		kinds = append(kinds, k)
	}
	return kinds
}

func (r *Registry) writer(kind domain.EntityKind) (writer, error) {
	w, ok := r.writers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no repository registered for entity type %q", domain.ErrConfiguration, kind)
	}
	return w, nil
}

// Lookup returns the typed repository registered for kind.
func Lookup[T domain.Entity](r *Registry, kind domain.EntityKind) (Repository[T], error) {
	w, err := r.writer(kind)
	if err != nil {
		return nil, err
	}

	repo, ok := w.repository().(Repository[T])
	if !ok {
		return nil, fmt.Errorf("%w: repository for entity type %q has type %T", domain.ErrConfiguration, kind, w.repository())
	}

	return repo, nil
}
