package console

import (
	"net/http"

	"github.com/p-n-ai/pai-admin/internal/catalog"
	"github.com/p-n-ai/pai-admin/internal/filter"
	"github.com/p-n-ai/pai-admin/internal/table"
)

func sessionView() viewSpec[catalog.Session] {
	return viewSpec[catalog.Session]{
		filters: filter.New(
			filter.Text("search", "Search",
				func(s catalog.Session) string { return s.Title },
				func(s catalog.Session) string { return s.Venue() },
			),
			filter.Equals("session_type", "Type", func(s catalog.Session) string { return string(s.SessionType) }).
				WithDisplay(statusLabel),
		),
		columns: []table.Column[catalog.Session]{
			{Key: "title", Label: "Title", Sortable: true, Value: func(s catalog.Session) any { return s.Title }},
			{Key: "session_type", Label: "Type", Sortable: true, Value: func(s catalog.Session) any { return string(s.SessionType) }},
			{Key: "start_time", Label: "Starts", Sortable: true, Value: func(s catalog.Session) any { return s.StartTime }},
			{Key: "end_time", Label: "Ends", Sortable: true, Value: func(s catalog.Session) any { return s.EndTime }},
			{Key: "capacity", Label: "Capacity", Sortable: true, Value: func(s catalog.Session) any { return s.Capacity }},
			{Key: "venue", Label: "Venue", Value: func(s catalog.Session) any { return s.Venue() }},
		},
		key: func(s catalog.Session) int { return s.ID },
	}
}

// handleSessions lists sessions, narrowed to one course when course_id is
// given. Other filters apply locally.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	var f catalog.SessionFilters
	id, ok, err := optInt(r.URL.Query().Get("course_id"))
	if err != nil {
		writeError(w, badRequest("course_id must be a number"))
		return
	}
	if ok {
		f.CourseID = &id
	}

	sessions, err := fetchCurrent(r.Context(), s.deps.Sessions, f)
	if err != nil {
		s.logger.Warn("listing sessions failed", "error", err)
		writeError(w, err)
		return
	}
	v, err := buildView(r, sessionView(), sessions, s.deps.PageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeView(w, v)
}
