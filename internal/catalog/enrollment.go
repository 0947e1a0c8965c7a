package catalog

import (
	"context"
	"fmt"

	"github.com/p-n-ai/pai-admin/internal/api"
	"github.com/p-n-ai/pai-admin/internal/envelope"
)

// EnrollmentFilters pick the listing endpoint and page. UserID wins over
// CourseID; with neither set the site-wide listing is used.
type EnrollmentFilters struct {
	UserID   *int
	CourseID *int
	Status   *string
	Search   *string
	Page     int
	Limit    int
}

func (f EnrollmentFilters) path() string {
	switch {
	case f.UserID != nil:
		return fmt.Sprintf("/course/enrollments/user/%d", *f.UserID)
	case f.CourseID != nil:
		return fmt.Sprintf("/course/%d/enrollments", *f.CourseID)
	default:
		return "/course/enrollments/all"
	}
}

func (f EnrollmentFilters) query() *api.Query {
	return api.NewQuery().
		Str("status", f.Status).
		Str("search", f.Search).
		PositiveInt("page", f.Page).
		PositiveInt("limit", f.Limit)
}

// EnrollmentInput enrolls a user in a course.
type EnrollmentInput struct {
	UserID   int `json:"user_id"`
	CourseID int `json:"course_id"`
}

// EnrollmentUpdate is a partial enrollment update.
type EnrollmentUpdate struct {
	Status   *EnrollmentStatus `json:"status,omitempty"`
	Progress *float64          `json:"progress,omitempty"`
}

// EnrollmentRepository reads and writes enrollments.
type EnrollmentRepository struct {
	res resource[Enrollment]
}

// NewEnrollmentRepository creates an enrollment repository.
func NewEnrollmentRepository(client *api.Client) *EnrollmentRepository {
	return &EnrollmentRepository{res: newResource[Enrollment](client, enrollmentEnvelope)}
}

// List returns the enrollments matching f, ignoring pagination metadata.
func (r *EnrollmentRepository) List(ctx context.Context, f EnrollmentFilters) ([]Enrollment, error) {
	page, err := r.ListPage(ctx, f)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// ListPage returns one page of enrollments. Unpaginated replies come back as
// a single page holding everything.
func (r *EnrollmentRepository) ListPage(ctx context.Context, f EnrollmentFilters) (envelope.Page[Enrollment], error) {
	return r.res.page(ctx, f.path(), f.query().Values())
}

// Get returns one enrollment.
func (r *EnrollmentRepository) Get(ctx context.Context, id int) (Enrollment, error) {
	return r.res.get(ctx, fmt.Sprintf("/course/enrollments/%d", id))
}

// Create enrolls a user.
func (r *EnrollmentRepository) Create(ctx context.Context, in EnrollmentInput) (Enrollment, error) {
	if in.UserID == 0 || in.CourseID == 0 {
		return Enrollment{}, invalid("enrollment requires a user and course id")
	}
	return r.res.create(ctx, fmt.Sprintf("/course/%d/enrollments", in.CourseID), in)
}

// Update applies a partial update.
func (r *EnrollmentRepository) Update(ctx context.Context, id int, u EnrollmentUpdate) (Enrollment, error) {
	if u.Progress != nil && (*u.Progress < 0 || *u.Progress > 100) {
		return Enrollment{}, invalid("progress %.1f outside 0..100", *u.Progress)
	}
	return r.res.update(ctx, fmt.Sprintf("/course/enrollments/%d", id), u)
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int) error {
	return r.res.remove(ctx, fmt.Sprintf("/course/enrollments/%d", id))
}
