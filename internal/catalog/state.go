package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-admin/internal/api"
)

const statesCacheKey = "catalog:states:all"

// StateCache stores JSON values with a TTL. *cache.Cache implements it.
type StateCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// StateRepository lists states.
type StateRepository struct {
	res resource[State]
}

// NewStateRepository creates a state repository.
func NewStateRepository(client *api.Client) *StateRepository {
	return &StateRepository{res: newResource[State](client, stateEnvelope)}
}

// List returns all states.
func (r *StateRepository) List(ctx context.Context) ([]State, error) {
	return r.res.list(ctx, "/states", nil)
}

// StateLister lists states.
type StateLister interface {
	List(ctx context.Context) ([]State, error)
}

// StateResolver joins state objects onto entities that only carry state_id.
// Lookups are best-effort: when states cannot be listed the entities are left
// without a state.
type StateResolver struct {
	states StateLister
	cache  StateCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewStateResolver creates a resolver. cache may be nil.
func NewStateResolver(states StateLister, cache StateCache, ttl time.Duration, logger *slog.Logger) *StateResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateResolver{states: states, cache: cache, ttl: ttl, logger: logger}
}

// Lookup returns states keyed by id, or nil when they cannot be loaded.
func (r *StateResolver) Lookup(ctx context.Context) map[int]State {
	var states []State

	if r.cache != nil {
		found, err := r.cache.GetJSON(ctx, statesCacheKey, &states)
		if err != nil {
			r.logger.Warn("states cache read failed", "error", err)
		}
		if found {
			return indexStates(states)
		}
	}

	states, err := r.states.List(ctx)
	if err != nil {
		r.logger.Warn("states lookup failed, leaving state unjoined", "error", err)
		return nil
	}

	if r.cache != nil && r.ttl > 0 {
		if err := r.cache.SetJSON(ctx, statesCacheKey, states, r.ttl); err != nil {
			r.logger.Warn("states cache write failed", "error", err)
		}
	}
	return indexStates(states)
}

// JoinCourses sets State on every course with a known state_id.
func (r *StateResolver) JoinCourses(ctx context.Context, courses []Course) ([]Course, error) {
	byID := r.Lookup(ctx)
	if byID == nil {
		return courses, nil
	}
	for i := range courses {
		if courses[i].StateID == nil {
			continue
		}
		if s, ok := byID[*courses[i].StateID]; ok {
			courses[i].State = &s
		}
	}
	return courses, nil
}

// JoinInstructors sets State on every instructor with a known state_id.
func (r *StateResolver) JoinInstructors(ctx context.Context, instructors []Instructor) ([]Instructor, error) {
	byID := r.Lookup(ctx)
	if byID == nil {
		return instructors, nil
	}
	for i := range instructors {
		if instructors[i].StateID == nil {
			continue
		}
		if s, ok := byID[*instructors[i].StateID]; ok {
			instructors[i].State = &s
		}
	}
	return instructors, nil
}

func indexStates(states []State) map[int]State {
	byID := make(map[int]State, len(states))
	for _, s := range states {
		byID[s.ID] = s
	}
	return byID
}
