package catalog

import (
	"context"
	"fmt"

	"github.com/p-n-ai/pai-admin/internal/api"
)

// ModuleFilters selects the modules of one course.
type ModuleFilters struct {
	CourseID int
}

// ModuleInput creates a module.
type ModuleInput struct {
	CourseID    int    `json:"-"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"order_index"`
}

// ModuleUpdate is a partial module update.
type ModuleUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	OrderIndex  *int    `json:"order_index,omitempty"`
}

// ModuleRepository reads and writes modules.
type ModuleRepository struct {
	res resource[Module]
}

// NewModuleRepository creates a module repository.
func NewModuleRepository(client *api.Client) *ModuleRepository {
	return &ModuleRepository{res: newResource[Module](client, moduleEnvelope)}
}

// List returns the modules of f.CourseID.
func (r *ModuleRepository) List(ctx context.Context, f ModuleFilters) ([]Module, error) {
	if f.CourseID == 0 {
		return nil, invalid("module listing requires a course id")
	}
	modules, err := r.res.list(ctx, fmt.Sprintf("/%d/modules", f.CourseID), nil)
	if err != nil {
		return nil, err
	}
	for i := range modules {
		if modules[i].CourseID == 0 {
			modules[i].CourseID = f.CourseID
		}
	}
	return modules, nil
}

// Get returns one module.
func (r *ModuleRepository) Get(ctx context.Context, id int) (Module, error) {
	return r.res.get(ctx, fmt.Sprintf("/module/%d", id))
}

// Create creates a module in in.CourseID.
func (r *ModuleRepository) Create(ctx context.Context, in ModuleInput) (Module, error) {
	if in.CourseID == 0 {
		return Module{}, invalid("module requires a course id")
	}
	if in.Title == "" {
		return Module{}, invalid("module title is required")
	}
	return r.res.create(ctx, fmt.Sprintf("/%d/modules", in.CourseID), in)
}

// Update applies a partial update.
func (r *ModuleRepository) Update(ctx context.Context, id int, u ModuleUpdate) (Module, error) {
	return r.res.update(ctx, fmt.Sprintf("/module/%d", id), u)
}

// UpdateOrder moves a module to newIndex. Siblings are renumbered by the
// server.
func (r *ModuleRepository) UpdateOrder(ctx context.Context, id, newIndex int) (Module, error) {
	return r.Update(ctx, id, ModuleUpdate{OrderIndex: Ptr(newIndex)})
}

// Delete deletes a module.
func (r *ModuleRepository) Delete(ctx context.Context, id int) error {
	return r.res.remove(ctx, fmt.Sprintf("/module/%d", id))
}
