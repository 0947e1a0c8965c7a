package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/p-n-ai/pai-admin/internal/api"
)

// SessionFilters are the optional session listing filters. With CourseID set
// the per-course endpoint is used.
type SessionFilters struct {
	CourseID    *int
	SessionType *string
	Search      *string
}

func (f SessionFilters) query() *api.Query {
	return api.NewQuery().
		Str("session_type", f.SessionType).
		Str("search", f.Search)
}

func (f SessionFilters) match(s Session) bool {
	if f.SessionType != nil && *f.SessionType != "" && !strings.EqualFold(string(s.SessionType), *f.SessionType) {
		return false
	}
	if f.Search != nil && *f.Search != "" && !strings.Contains(strings.ToLower(s.Title), strings.ToLower(strings.TrimSpace(*f.Search))) {
		return false
	}
	return true
}

// SessionInput creates a session.
type SessionInput struct {
	CourseID    int         `json:"-"`
	ModuleID    int         `json:"module_id"`
	Title       string      `json:"title"`
	SessionType SessionType `json:"session_type"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	Capacity    int         `json:"capacity,omitempty"`
	MeetingURL  string      `json:"meeting_url,omitempty"`
	Location    string      `json:"location,omitempty"`
	OrderIndex  int         `json:"order_index"`
}

// Validate checks the venue required by the session type and the time range.
// The backend does not enforce either.
func (in SessionInput) Validate() error {
	switch in.SessionType {
	case SessionLive:
		if strings.TrimSpace(in.MeetingURL) == "" {
			return invalid("live session requires a meeting_url")
		}
	case SessionPhysical:
		if strings.TrimSpace(in.Location) == "" {
			return invalid("physical session requires a location")
		}
	default:
		return invalid("unknown session type %q", in.SessionType)
	}
	if !in.StartTime.IsZero() && !in.EndTime.IsZero() && !in.EndTime.After(in.StartTime) {
		return invalid("session end_time must be after start_time")
	}
	return nil
}

// SessionUpdate is a partial session update.
type SessionUpdate struct {
	ModuleID    *int         `json:"module_id,omitempty"`
	Title       *string      `json:"title,omitempty"`
	SessionType *SessionType `json:"session_type,omitempty"`
	StartTime   *time.Time   `json:"start_time,omitempty"`
	EndTime     *time.Time   `json:"end_time,omitempty"`
	Capacity    *int         `json:"capacity,omitempty"`
	MeetingURL  *string      `json:"meeting_url,omitempty"`
	Location    *string      `json:"location,omitempty"`
	OrderIndex  *int         `json:"order_index,omitempty"`
}

// Validate checks the fields the update carries.
func (u SessionUpdate) Validate() error {
	if u.SessionType != nil && !u.SessionType.Valid() {
		return invalid("unknown session type %q", *u.SessionType)
	}
	if u.StartTime != nil && u.EndTime != nil && !u.EndTime.After(*u.StartTime) {
		return invalid("session end_time must be after start_time")
	}
	return nil
}

// SessionRepository reads and writes live and physical sessions.
type SessionRepository struct {
	res     resource[Session]
	courses CourseLister
	opts    options
}

// NewSessionRepository creates a session repository. courses backs the
// per-course fallback of the site-wide listing.
func NewSessionRepository(client *api.Client, courses CourseLister, opts ...Option) *SessionRepository {
	return &SessionRepository{
		res:     newResource[Session](client, sessionEnvelope),
		courses: courses,
		opts:    buildOptions(opts),
	}
}

// List returns sessions matching f. The site-wide endpoint collides with the
// course-by-id route on some backends; on a 4xx it falls back to one fetch
// per course.
func (r *SessionRepository) List(ctx context.Context, f SessionFilters) ([]Session, error) {
	if f.CourseID != nil {
		return r.ListByCourse(ctx, *f.CourseID)
	}

	sessions, err := r.res.list(ctx, "/course/live-sessions", f.query().Values())
	if err == nil {
		return sessions, nil
	}
	if !api.IsRouteCollision(err) {
		return nil, err
	}

	r.opts.logger.Warn("session listing collided with course route, aggregating per course",
		"status", api.StatusCode(err),
	)
	all, err := collectPerCourse(ctx, r.courses, r.opts.fanout, r.ListByCourse)
	if err != nil {
		return nil, fmt.Errorf("list sessions per course: %w", err)
	}

	out := all[:0]
	for _, s := range all {
		if f.match(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListByCourse returns the sessions of one course.
func (r *SessionRepository) ListByCourse(ctx context.Context, courseID int) ([]Session, error) {
	sessions, err := r.res.list(ctx, fmt.Sprintf("/course/%d/live-sessions", courseID), nil)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].CourseID == 0 {
			sessions[i].CourseID = courseID
		}
	}
	return sessions, nil
}

// Get returns one session.
func (r *SessionRepository) Get(ctx context.Context, id int) (Session, error) {
	return r.res.get(ctx, fmt.Sprintf("/course/live-sessions/%d", id))
}

// Create creates a session in in.CourseID.
func (r *SessionRepository) Create(ctx context.Context, in SessionInput) (Session, error) {
	if in.CourseID == 0 {
		return Session{}, invalid("session requires a course id")
	}
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	return r.res.create(ctx, fmt.Sprintf("/course/%d/live-sessions", in.CourseID), in)
}

// Update applies a partial update.
func (r *SessionRepository) Update(ctx context.Context, id int, u SessionUpdate) (Session, error) {
	if err := u.Validate(); err != nil {
		return Session{}, err
	}
	return r.res.update(ctx, fmt.Sprintf("/course/live-sessions/%d", id), u)
}

// UpdateOrder moves a session to newIndex among its module's sessions.
func (r *SessionRepository) UpdateOrder(ctx context.Context, id, newIndex int) (Session, error) {
	return r.Update(ctx, id, SessionUpdate{OrderIndex: Ptr(newIndex)})
}

// Delete deletes a session.
func (r *SessionRepository) Delete(ctx context.Context, id int) error {
	return r.res.remove(ctx, fmt.Sprintf("/course/live-sessions/%d", id))
}
