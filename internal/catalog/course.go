package catalog

import (
	"context"
	"fmt"

	"github.com/p-n-ai/pai-admin/internal/api"
)

// CourseFilters are the optional listing filters for courses. Nil fields are
// not sent.
type CourseFilters struct {
	Search       *string
	IsActive     *bool
	TrainingType *string
	DeliveryMode *string
	InstructorID *int // user id
	StateID      *int
}

func (f CourseFilters) query() *api.Query {
	return api.NewQuery().
		Str("search", f.Search).
		Bool("is_active", f.IsActive).
		Str("training_type", f.TrainingType).
		Str("delivery_mode", f.DeliveryMode).
		Int("instructorId", f.InstructorID).
		Int("state_id", f.StateID)
}

// CourseInput creates a course.
type CourseInput struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Duration     int     `json:"duration,omitempty"`
	Price        float64 `json:"price,omitempty"`
	TrainingType string  `json:"training_type,omitempty"`
	DeliveryMode string  `json:"delivery_mode,omitempty"`
	Level        string  `json:"level,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	StateID      *int    `json:"state_id,omitempty"`
	InstructorID *int    `json:"instructor_id,omitempty"` // user id
	IsActive     bool    `json:"is_active"`
}

// CourseUpdate is a partial course update. It only carries scalar fields and
// foreign-key ids, so populated relations cannot be sent back.
type CourseUpdate struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Duration     *int     `json:"duration,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	TrainingType *string  `json:"training_type,omitempty"`
	DeliveryMode *string  `json:"delivery_mode,omitempty"`
	Level        *string  `json:"level,omitempty"`
	ThumbnailURL *string  `json:"thumbnail_url,omitempty"`
	StateID      *int     `json:"state_id,omitempty"`
	InstructorID *int     `json:"instructor_id,omitempty"` // user id
	IsActive     *bool    `json:"is_active,omitempty"`
}

// CourseFields are the server-recognized writable course fields.
var CourseFields = []string{
	"title", "description", "duration", "price", "training_type", "delivery_mode",
	"level", "thumbnail_url", "state_id", "instructor_id", "is_active",
}

// PatchFromCourse builds a full update from an edited course. Foreign keys
// are lifted out of populated relations: state.id becomes state_id when no
// state_id is set, and a populated instructor always contributes its user_id.
func PatchFromCourse(c Course) CourseUpdate {
	u := CourseUpdate{
		Title:        Ptr(c.Title),
		Description:  Ptr(c.Description),
		Duration:     Ptr(c.Duration),
		Price:        Ptr(c.Price),
		TrainingType: Ptr(c.TrainingType),
		DeliveryMode: Ptr(c.DeliveryMode),
		Level:        Ptr(c.Level),
		ThumbnailURL: Ptr(c.ThumbnailURL),
		IsActive:     Ptr(c.IsActive),
	}

	switch {
	case c.StateID != nil:
		u.StateID = Ptr(*c.StateID)
	case c.State != nil && c.State.ID != 0:
		u.StateID = Ptr(c.State.ID)
	}

	switch {
	case c.Instructor != nil && c.Instructor.UserID != 0:
		u.InstructorID = Ptr(c.Instructor.UserID)
	case c.InstructorID != nil:
		u.InstructorID = Ptr(*c.InstructorID)
	}
	return u
}

// InstructorDirectory lists instructor profiles.
type InstructorDirectory interface {
	List(ctx context.Context, f InstructorFilters) ([]Instructor, error)
}

// CourseRepository reads and writes courses.
type CourseRepository struct {
	res  resource[Course]
	opts options
}

// NewCourseRepository creates a course repository.
func NewCourseRepository(client *api.Client, opts ...Option) *CourseRepository {
	return &CourseRepository{
		res:  newResource[Course](client, courseEnvelope),
		opts: buildOptions(opts),
	}
}

// List returns the courses matching f.
func (r *CourseRepository) List(ctx context.Context, f CourseFilters) ([]Course, error) {
	return r.res.list(ctx, "/course", f.query().Values())
}

// Get returns one course.
func (r *CourseRepository) Get(ctx context.Context, id int) (Course, error) {
	return r.res.get(ctx, fmt.Sprintf("/course/%d", id))
}

// Create creates a course.
func (r *CourseRepository) Create(ctx context.Context, in CourseInput) (Course, error) {
	if in.Title == "" {
		return Course{}, invalid("course title is required")
	}
	if err := r.checkInstructor(ctx, in.InstructorID); err != nil {
		return Course{}, err
	}
	return r.res.create(ctx, "/course", in)
}

// Update applies a partial update.
func (r *CourseRepository) Update(ctx context.Context, id int, u CourseUpdate) (Course, error) {
	if err := r.checkInstructor(ctx, u.InstructorID); err != nil {
		return Course{}, err
	}
	return r.res.update(ctx, fmt.Sprintf("/course/%d", id), u)
}

// Delete soft-deletes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	return r.res.remove(ctx, fmt.Sprintf("/course/%d", id))
}

// DeletePermanent removes a course and its content for good.
func (r *CourseRepository) DeletePermanent(ctx context.Context, id int) error {
	return r.res.remove(ctx, fmt.Sprintf("/course/%d/permanent", id))
}

// checkInstructor validates that userID is the user id of a known
// instructor. It is a no-op without a configured directory.
func (r *CourseRepository) checkInstructor(ctx context.Context, userID *int) error {
	if userID == nil || r.opts.instructors == nil {
		return nil
	}

	instructors, err := r.opts.instructors.List(ctx, InstructorFilters{})
	if err != nil {
		return fmt.Errorf("validate instructor: %w", err)
	}

	recordMatch := false
	for _, inst := range instructors {
		if inst.UserID == *userID {
			return nil
		}
		if inst.ID == *userID {
			recordMatch = true
		}
	}
	if recordMatch {
		return fmt.Errorf("instructor_id %d: %w", *userID, ErrInstructorRecordID)
	}
	return fmt.Errorf("instructor_id %d: %w", *userID, ErrUnknownInstructor)
}
