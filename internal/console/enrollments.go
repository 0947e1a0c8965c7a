package console

import (
	"net/http"
	"strings"

	"github.com/p-n-ai/pai-admin/internal/catalog"
	"github.com/p-n-ai/pai-admin/internal/filter"
	"github.com/p-n-ai/pai-admin/internal/table"
)

func enrollmentUser(e catalog.Enrollment) string {
	if e.User == nil {
		return ""
	}
	return e.User.FullName()
}

func enrollmentCourse(e catalog.Enrollment) string {
	if e.Course == nil {
		return ""
	}
	return e.Course.Title
}

func enrollmentView() viewSpec[catalog.Enrollment] {
	return viewSpec[catalog.Enrollment]{
		filters: filter.New(
			filter.Text("search", "Search",
				enrollmentUser,
				func(e catalog.Enrollment) string {
					if e.User == nil {
						return ""
					}
					return e.User.Email
				},
				enrollmentCourse,
			),
			filter.Equals("status", "Status", func(e catalog.Enrollment) string { return string(e.Status) }).
				WithDisplay(func(v string) string { return catalog.EnrollmentStatus(strings.ToUpper(v)).Label() }),
		),
		columns: []table.Column[catalog.Enrollment]{
			{Key: "id", Label: "ID", Sortable: true, Value: func(e catalog.Enrollment) any { return e.ID }},
			{Key: "user", Label: "Learner", Sortable: true, Value: func(e catalog.Enrollment) any { return enrollmentUser(e) }},
			{Key: "course", Label: "Course", Sortable: true, Value: func(e catalog.Enrollment) any { return enrollmentCourse(e) }},
			{Key: "status", Label: "Status", Sortable: true,
				Value:  func(e catalog.Enrollment) any { return string(e.Status) },
				Render: func(e catalog.Enrollment) string { return e.Status.Label() },
			},
			{Key: "progress", Label: "Progress", Sortable: true, Value: func(e catalog.Enrollment) any { return e.Progress }},
			{Key: "started_at", Label: "Started", Sortable: true, Value: func(e catalog.Enrollment) any {
				if e.StartedAt == nil {
					return nil
				}
				return *e.StartedAt
			}},
		},
		key: func(e catalog.Enrollment) int { return e.ID },
	}
}

// handleEnrollments lists enrollments for a user or a course. user_id and
// course_id pick the backend endpoint; status and search apply locally.
func (s *Server) handleEnrollments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f catalog.EnrollmentFilters
	if id, ok, err := optInt(q.Get("user_id")); err != nil {
		writeError(w, badRequest("user_id must be a number"))
		return
	} else if ok {
		f.UserID = &id
	}
	if id, ok, err := optInt(q.Get("course_id")); err != nil {
		writeError(w, badRequest("course_id must be a number"))
		return
	} else if ok {
		f.CourseID = &id
	}

	enrollments, err := fetchCurrent(r.Context(), s.deps.Enrollments, f)
	if err != nil {
		s.logger.Warn("listing enrollments failed", "error", err)
		writeError(w, err)
		return
	}
	v, err := buildView(r, enrollmentView(), enrollments, s.deps.PageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, v)
}
