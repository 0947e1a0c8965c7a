// Package store keeps client-side collections of backend resources in sync
// with the server. Every state change uses the server's representation and
// happens only after the backend call succeeded.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/p-n-ai/pai-admin/internal/notify"
)

// ErrStale is returned by Fetch when a newer fetch or a mutation superseded
// it. The store is left untouched and no notification is recorded.
var ErrStale = errors.New("stale fetch discarded")

// Repository is the backend a store reads and writes through.
type Repository[T, F, C, U any] interface {
	List(ctx context.Context, f F) ([]T, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, in C) (T, error)
	Update(ctx context.Context, id int, u U) (T, error)
	Delete(ctx context.Context, id int) error
}

// Config configures a store.
type Config[T any] struct {
	// Name labels notifications and logs ("course", "session").
	Name string
	// ID returns an entity's identity.
	ID func(T) int
	// Notifier records failures. Defaults to notify.Nop.
	Notifier notify.Notifier
	// Enrich runs on fetched and returned entities, e.g. to join states.
	// A failing enrich is logged and the entities are kept as fetched.
	Enrich func(ctx context.Context, items []T) ([]T, error)
	Logger *slog.Logger
}

// Snapshot is the observable state of a store.
type Snapshot[T, F any] struct {
	Items   []T
	Loading bool
	Err     error
	Filters F
}

// Store holds one resource's collection.
type Store[T, F, C, U any] struct {
	repo Repository[T, F, C, U]
	cfg  Config[T]

	// writeMu serializes mutations. It is never held while notifying or
	// publishing.
	writeMu sync.Mutex

	mu       sync.Mutex
	items    []T
	err      error
	filters  F
	seq      uint64
	inFlight int
	subs     map[int]func(Snapshot[T, F])
	nextSub  int
}

// New creates a store. cfg.ID is required.
func New[T, F, C, U any](repo Repository[T, F, C, U], cfg Config[T]) *Store[T, F, C, U] {
	if cfg.ID == nil {
		panic("store: Config.ID is required")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store[T, F, C, U]{
		repo:  repo,
		cfg:   cfg,
		items: []T{},
		subs:  make(map[int]func(Snapshot[T, F])),
	}
}

// Fetch replaces the collection with the entities matching f. A result that
// arrives after a newer fetch was issued, or after a mutation was applied,
// is discarded with ErrStale.
func (s *Store[T, F, C, U]) Fetch(ctx context.Context, f F) ([]T, error) {
	s.mu.Lock()
	s.seq++
	token := s.seq
	s.inFlight++
	s.filters = f
	s.mu.Unlock()
	s.publish()

	items, err := s.repo.List(ctx, f)
	if err == nil {
		items = s.enrich(ctx, items)
	}

	s.mu.Lock()
	s.inFlight--
	if token != s.seq {
		s.mu.Unlock()
		s.publish()
		s.cfg.Logger.Debug("discarding stale fetch", "resource", s.cfg.Name, "error", err)
		return nil, ErrStale
	}
	if err != nil {
		s.err = err
		s.mu.Unlock()
		s.fail(ctx, "list", err)
		return nil, err
	}
	s.items = items
	s.err = nil
	s.mu.Unlock()
	s.publish()

	return slices.Clone(items), nil
}

// Refresh re-runs Fetch with the last applied filters.
func (s *Store[T, F, C, U]) Refresh(ctx context.Context) ([]T, error) {
	return s.Fetch(ctx, s.Filters())
}

// Get loads one entity and upserts it into the collection. A result that
// arrives after a mutation or a newer fetch was applied is discarded with
// ErrStale, so a slow Get cannot bring back a deleted entity.
func (s *Store[T, F, C, U]) Get(ctx context.Context, id int) (T, error) {
	var zero T

	s.mu.Lock()
	token := s.seq
	s.mu.Unlock()

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		s.setErr(err)
		s.fail(ctx, "get", err)
		return zero, err
	}
	item = s.enrichOne(ctx, item)

	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		s.cfg.Logger.Debug("discarding stale get", "resource", s.cfg.Name, "id", id)
		return zero, ErrStale
	}
	s.upsert(item)
	s.mu.Unlock()
	s.publish()
	return item, nil
}

// Create creates an entity and appends the server's representation.
func (s *Store[T, F, C, U]) Create(ctx context.Context, in C) (T, error) {
	s.writeMu.Lock()
	item, err := s.repo.Create(ctx, in)
	if err != nil {
		s.writeMu.Unlock()
		var zero T
		s.setErr(err)
		s.fail(ctx, "create", err)
		return zero, err
	}
	item = s.enrichOne(ctx, item)
	s.apply(func() { s.items = append(s.items, item) })
	s.writeMu.Unlock()

	s.publish()
	return item, nil
}

// Update applies a partial update and replaces the entity with the server's
// representation.
func (s *Store[T, F, C, U]) Update(ctx context.Context, id int, u U) (T, error) {
	s.writeMu.Lock()
	item, err := s.repo.Update(ctx, id, u)
	if err != nil {
		s.writeMu.Unlock()
		var zero T
		s.setErr(err)
		s.fail(ctx, "update", err)
		return zero, err
	}
	item = s.enrichOne(ctx, item)
	s.apply(func() { s.upsert(item) })
	s.writeMu.Unlock()

	s.publish()
	return item, nil
}

// Delete deletes an entity and removes it from the collection.
func (s *Store[T, F, C, U]) Delete(ctx context.Context, id int) error {
	s.writeMu.Lock()
	if err := s.repo.Delete(ctx, id); err != nil {
		s.writeMu.Unlock()
		s.setErr(err)
		s.fail(ctx, "delete", err)
		return err
	}
	s.apply(func() {
		s.items = slices.DeleteFunc(s.items, func(it T) bool { return s.cfg.ID(it) == id })
	})
	s.writeMu.Unlock()

	s.publish()
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store[T, F, C, U]) Snapshot() Snapshot[T, F] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Items returns a copy of the collection.
func (s *Store[T, F, C, U]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Find returns the entity with id.
func (s *Store[T, F, C, U]) Find(id int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if s.cfg.ID(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Filters returns the filters of the last fetch.
func (s *Store[T, F, C, U]) Filters() F {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Subscribe registers fn to receive a snapshot after every state change.
// Calls happen outside the store's lock. The returned func unsubscribes.
func (s *Store[T, F, C, U]) Subscribe(fn func(Snapshot[T, F])) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// apply runs a successful mutation under the lock and fences off fetches
// and gets issued before it. Callers publish after releasing writeMu.
func (s *Store[T, F, C, U]) apply(mutate func()) {
	s.mu.Lock()
	s.seq++
	mutate()
	s.err = nil
	s.mu.Unlock()
}

// upsert must be called with mu held.
func (s *Store[T, F, C, U]) upsert(item T) {
	id := s.cfg.ID(item)
	for i := range s.items {
		if s.cfg.ID(s.items[i]) == id {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}

func (s *Store[T, F, C, U]) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// fail records exactly one notification for a failed action and publishes
// the new error state.
func (s *Store[T, F, C, U]) fail(ctx context.Context, action string, err error) {
	s.cfg.Logger.Warn("store action failed",
		"resource", s.cfg.Name,
		"action", action,
		"error", err,
	)
	if nerr := s.cfg.Notifier.Notify(ctx, notify.FromError(s.cfg.Name, action, err)); nerr != nil {
		s.cfg.Logger.Error("recording notification failed", "resource", s.cfg.Name, "error", nerr)
	}
	s.publish()
}

func (s *Store[T, F, C, U]) enrich(ctx context.Context, items []T) []T {
	if s.cfg.Enrich == nil || len(items) == 0 {
		return items
	}
	enriched, err := s.cfg.Enrich(ctx, items)
	if err != nil {
		s.cfg.Logger.Warn("enrich failed, keeping entities as fetched",
			"resource", s.cfg.Name,
			"error", err,
		)
		return items
	}
	return enriched
}

func (s *Store[T, F, C, U]) enrichOne(ctx context.Context, item T) T {
	out := s.enrich(ctx, []T{item})
	if len(out) != 1 {
		return item
	}
	return out[0]
}

func (s *Store[T, F, C, U]) snapshotLocked() Snapshot[T, F] {
	return Snapshot[T, F]{
		Items:   slices.Clone(s.items),
		Loading: s.inFlight > 0,
		Err:     s.err,
		Filters: s.filters,
	}
}

func (s *Store[T, F, C, U]) publish() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot[T, F]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

