package console

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/p-n-ai/pai-admin/internal/catalog"
	"github.com/p-n-ai/pai-admin/internal/curriculum"
	"github.com/p-n-ai/pai-admin/internal/filter"
	"github.com/p-n-ai/pai-admin/internal/table"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func courseFilters() *filter.Engine[catalog.Course] {
	return filter.New(
		filter.Text("search", "Search",
			func(c catalog.Course) string { return c.Title },
			func(c catalog.Course) string { return c.Description },
			func(c catalog.Course) string {
				if c.Instructor == nil {
					return ""
				}
				return c.Instructor.DisplayName()
			},
			func(c catalog.Course) string { return c.StateName() },
		),
		filter.Equals("status", "Status", courseStatus).WithDisplay(statusLabel),
		filter.Equals("training_type", "Training type", func(c catalog.Course) string { return c.TrainingType }),
		filter.Equals("delivery_mode", "Delivery mode", func(c catalog.Course) string { return c.DeliveryMode }),
	)
}

func courseStatus(c catalog.Course) string {
	if c.IsActive {
		return "active"
	}
	return "inactive"
}

func statusLabel(v string) string {
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + strings.ToLower(v[1:])
}

func courseColumns() []table.Column[catalog.Course] {
	return []table.Column[catalog.Course]{
		{Key: "id", Label: "ID", Sortable: true, Value: func(c catalog.Course) any { return c.ID }},
		{Key: "title", Label: "Title", Sortable: true, Value: func(c catalog.Course) any { return c.Title }},
		{Key: "training_type", Label: "Training type", Sortable: true, Value: func(c catalog.Course) any { return c.TrainingType }},
		{Key: "delivery_mode", Label: "Delivery mode", Sortable: true, Value: func(c catalog.Course) any { return c.DeliveryMode }},
		{Key: "state", Label: "State", Sortable: true, Value: func(c catalog.Course) any { return c.StateName() }},
		{Key: "instructor", Label: "Instructor", Sortable: true, Value: func(c catalog.Course) any {
			if c.Instructor == nil {
				return ""
			}
			return c.Instructor.DisplayName()
		}},
		{Key: "price", Label: "Price", Sortable: true, Value: func(c catalog.Course) any { return c.Price }},
		{Key: "status", Label: "Status", Sortable: true,
			Value: func(c catalog.Course) any { return c.IsActive },
			Render: func(c catalog.Course) string { return statusLabel(courseStatus(c)) },
		},
		{Key: "created_at", Label: "Created", Sortable: true, Value: func(c catalog.Course) any {
			if c.CreatedAt == nil {
				return nil
			}
			return *c.CreatedAt
		}},
	}
}

func courseView() viewSpec[catalog.Course] {
	return viewSpec[catalog.Course]{
		filters: courseFilters(),
		columns: courseColumns(),
		key:     func(c catalog.Course) int { return c.ID },
	}
}

// buildCourseView fetches courses and applies the request's filters, sort
// and page.
func (s *Server) buildCourseView(r *http.Request) (*view[catalog.Course], error) {
	courses, err := fetchCurrent(r.Context(), s.deps.Courses, catalog.CourseFilters{})
	if err != nil {
		return nil, err
	}
	return buildView(r, courseView(), courses, s.deps.PageSize)
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	v, err := s.buildCourseView(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, v)
}

func (s *Server) handleCoursesExport(w http.ResponseWriter, r *http.Request) {
	v, err := s.buildCourseView(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := v.table.Export(&buf, "Courses"); err != nil {
		s.logger.Error("course export failed", "error", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="courses.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleCourseUpdate accepts a free-form course object, as edited in the
// console, and sends only the writable fields.
func (s *Server) handleCourseUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, badRequest("body must be a JSON object"))
		return
	}

	raw, err := json.Marshal(catalog.Whitelist(body, catalog.CourseFields))
	if err != nil {
		writeError(w, err)
		return
	}
	var u catalog.CourseUpdate
	if err := json.Unmarshal(raw, &u); err != nil {
		writeError(w, badRequest("invalid course field: "+err.Error()))
		return
	}

	course, err := s.deps.Courses.Update(r.Context(), id, u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *Server) handleCourseDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Courses.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	course, err := s.deps.Content.Assemble(r.Context(), id)
	if err != nil {
		s.logger.Warn("assembling course content failed", "course_id", id, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

type orderRequest struct {
	Kind       string `json:"kind"`
	ID         int    `json:"id"`
	OrderIndex int    `json:"order_index"`
}

// handleContentOrder moves a module ("module") or one content item
// ("lesson", "session", "quiz") and returns the re-assembled course.
func (s *Server) handleContentOrder(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID <= 0 {
		writeError(w, badRequest("body must carry kind, id and order_index"))
		return
	}

	var course catalog.Course
	if req.Kind == "module" {
		course, err = s.deps.Content.ReorderModule(r.Context(), courseID, req.ID, req.OrderIndex)
	} else {
		course, err = s.deps.Content.Reorder(r.Context(), courseID, curriculum.Kind(req.Kind), req.ID, req.OrderIndex)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}
