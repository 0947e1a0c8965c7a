package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/p-n-ai/pai-admin/internal/api"
)

// LessonFilters are the optional lesson listing filters.
type LessonFilters struct {
	CourseID    *int
	ModuleID    *int
	ContentType *string
	Search      *string
}

func (f LessonFilters) query() *api.Query {
	return api.NewQuery().
		Int("course_id", f.CourseID).
		Int("module_id", f.ModuleID).
		Str("content_type", f.ContentType).
		Str("search", f.Search)
}

// LessonInput creates a lesson.
type LessonInput struct {
	CourseID    int         `json:"-"`
	ModuleID    int         `json:"module_id"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	DurationMin int         `json:"duration_min,omitempty"`
	OrderIndex  int         `json:"order_index"`
	ContentURL  string      `json:"content_url,omitempty"`
	PDFURL      string      `json:"pdf_url,omitempty"`
	ContentText string      `json:"content_text,omitempty"`
	IsPreview   bool        `json:"is_preview,omitempty"`
}

// LessonUpdate is a partial lesson update.
type LessonUpdate struct {
	ModuleID    *int         `json:"module_id,omitempty"`
	Title       *string      `json:"title,omitempty"`
	ContentType *ContentType `json:"content_type,omitempty"`
	DurationMin *int         `json:"duration_min,omitempty"`
	OrderIndex  *int         `json:"order_index,omitempty"`
	ContentURL  *string      `json:"content_url,omitempty"`
	PDFURL      *string      `json:"pdf_url,omitempty"`
	ContentText *string      `json:"content_text,omitempty"`
	IsPreview   *bool        `json:"is_preview,omitempty"`
}

// LessonRepository reads and writes lessons.
type LessonRepository struct {
	res resource[Lesson]
}

// NewLessonRepository creates a lesson repository.
func NewLessonRepository(client *api.Client) *LessonRepository {
	return &LessonRepository{res: newResource[Lesson](client, lessonEnvelope)}
}

// List returns lessons across all courses matching f.
func (r *LessonRepository) List(ctx context.Context, f LessonFilters) ([]Lesson, error) {
	return r.res.list(ctx, "/course/lessons/all", f.query().Values())
}

// Get returns one lesson.
func (r *LessonRepository) Get(ctx context.Context, id int) (Lesson, error) {
	return r.res.get(ctx, fmt.Sprintf("/course/lesson/%d", id))
}

// Create creates a lesson in in.CourseID.
func (r *LessonRepository) Create(ctx context.Context, in LessonInput) (Lesson, error) {
	if in.CourseID == 0 || in.ModuleID == 0 {
		return Lesson{}, invalid("lesson requires a course and module id")
	}
	if !in.ContentType.Valid() {
		return Lesson{}, invalid("unknown lesson content type %q", in.ContentType)
	}
	return r.res.create(ctx, fmt.Sprintf("/%d/lessons", in.CourseID), in)
}

// Update applies a partial update.
func (r *LessonRepository) Update(ctx context.Context, id int, u LessonUpdate) (Lesson, error) {
	if u.ContentType != nil && !u.ContentType.Valid() {
		return Lesson{}, invalid("unknown lesson content type %q", *u.ContentType)
	}
	return r.res.update(ctx, fmt.Sprintf("/course/lesson/%d", id), u)
}

// UpdateOrder moves a lesson to newIndex among its module's lessons.
func (r *LessonRepository) UpdateOrder(ctx context.Context, id, newIndex int) (Lesson, error) {
	return r.Update(ctx, id, LessonUpdate{OrderIndex: Ptr(newIndex)})
}

// UploadVideo replaces a lesson's video.
func (r *LessonRepository) UploadVideo(ctx context.Context, id int, filename string, video io.Reader) (Lesson, error) {
	return r.res.upload(ctx, http.MethodPatch, fmt.Sprintf("/course/lesson/%d/video", id), api.File{
		Field:   "video",
		Name:    filename,
		Content: video,
	})
}

// Delete deletes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id int) error {
	return r.res.remove(ctx, fmt.Sprintf("/course/lesson/%d", id))
}
