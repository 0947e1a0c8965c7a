package catalog

import (
	"context"
	"fmt"

	"github.com/p-n-ai/pai-admin/internal/api"
)

// InstructorFilters are the optional instructor listing filters.
type InstructorFilters struct {
	Search  *string
	StateID *int
}

func (f InstructorFilters) query() *api.Query {
	return api.NewQuery().
		Str("search", f.Search).
		Int("state_id", f.StateID)
}

// InstructorInput creates an instructor profile for an existing user.
type InstructorInput struct {
	UserID         int    `json:"user_id"`
	Bio            string `json:"bio,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	StateID        *int   `json:"state_id,omitempty"`
}

// InstructorUpdate is a partial instructor update.
type InstructorUpdate struct {
	Bio            *string `json:"bio,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	StateID        *int    `json:"state_id,omitempty"`
}

// InstructorFields are the server-recognized writable instructor fields.
var InstructorFields = []string{"bio", "specialization", "state_id"}

// PatchFromInstructor builds a full update from an edited instructor, lifting
// state.id into state_id when no state_id is set.
func PatchFromInstructor(i Instructor) InstructorUpdate {
	u := InstructorUpdate{
		Bio:            Ptr(i.Bio),
		Specialization: Ptr(i.Specialization),
	}
	switch {
	case i.StateID != nil:
		u.StateID = Ptr(*i.StateID)
	case i.State != nil && i.State.ID != 0:
		u.StateID = Ptr(i.State.ID)
	}
	return u
}

// InstructorRepository reads and writes instructor profiles.
type InstructorRepository struct {
	res resource[Instructor]
}

// NewInstructorRepository creates an instructor repository.
func NewInstructorRepository(client *api.Client) *InstructorRepository {
	return &InstructorRepository{res: newResource[Instructor](client, instructorEnvelope)}
}

// List returns the instructors matching f.
func (r *InstructorRepository) List(ctx context.Context, f InstructorFilters) ([]Instructor, error) {
	return r.res.list(ctx, "/instructors", f.query().Values())
}

// Get returns one instructor by record id.
func (r *InstructorRepository) Get(ctx context.Context, id int) (Instructor, error) {
	return r.res.get(ctx, fmt.Sprintf("/instructors/%d", id))
}

// Create creates an instructor profile.
func (r *InstructorRepository) Create(ctx context.Context, in InstructorInput) (Instructor, error) {
	if in.UserID == 0 {
		return Instructor{}, invalid("instructor requires a user id")
	}
	return r.res.create(ctx, "/instructors", in)
}

// Update applies a partial update.
func (r *InstructorRepository) Update(ctx context.Context, id int, u InstructorUpdate) (Instructor, error) {
	return r.res.update(ctx, fmt.Sprintf("/instructors/%d", id), u)
}

// Delete deletes an instructor profile.
func (r *InstructorRepository) Delete(ctx context.Context, id int) error {
	return r.res.remove(ctx, fmt.Sprintf("/instructors/%d", id))
}
