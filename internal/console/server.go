// Package console serves the admin console's JSON views over the course
// catalog: filtered and paged course tables, assembled course content,
// sessions, enrollments, notifications and blueprint imports.
package console

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/p-n-ai/pai-admin/internal/api"
	"github.com/p-n-ai/pai-admin/internal/catalog"
	"github.com/p-n-ai/pai-admin/internal/curriculum"
	"github.com/p-n-ai/pai-admin/internal/notify"
)

// CourseStore is the course collection the console reads and mutates.
type CourseStore interface {
	Fetch(ctx context.Context, f catalog.CourseFilters) ([]catalog.Course, error)
	Items() []catalog.Course
	Update(ctx context.Context, id int, u catalog.CourseUpdate) (catalog.Course, error)
	Delete(ctx context.Context, id int) error
}

// SessionStore is the session collection the console reads.
type SessionStore interface {
	Fetch(ctx context.Context, f catalog.SessionFilters) ([]catalog.Session, error)
	Items() []catalog.Session
}

// EnrollmentStore is the enrollment collection the console reads.
type EnrollmentStore interface {
	Fetch(ctx context.Context, f catalog.EnrollmentFilters) ([]catalog.Enrollment, error)
	Items() []catalog.Enrollment
}

// ContentTree assembles and reorders course content.
type ContentTree interface {
	Assemble(ctx context.Context, courseID int) (catalog.Course, error)
	Reorder(ctx context.Context, courseID int, kind curriculum.Kind, id, newIndex int) (catalog.Course, error)
	ReorderModule(ctx context.Context, courseID, moduleID, newIndex int) (catalog.Course, error)
}

// BlueprintSource lists loaded course blueprints.
type BlueprintSource interface {
	Get(slug string) (curriculum.Blueprint, bool)
	All() []curriculum.Blueprint
}

// BlueprintImporter creates a course from a blueprint.
type BlueprintImporter interface {
	Import(ctx context.Context, b curriculum.Blueprint) (catalog.Course, error)
}

// Deps are the console's collaborators. Blueprints, Importer and
// Notifications are optional.
type Deps struct {
	Courses       CourseStore
	Sessions      SessionStore
	Enrollments   EnrollmentStore
	Content       ContentTree
	Blueprints    BlueprintSource
	Importer      BlueprintImporter
	Notifications notify.Feed
	PageSize      int
	Logger        *slog.Logger
}

// Server holds the console handlers.
type Server struct {
	deps   Deps
	logger *slog.Logger
}

// NewServer creates a console server.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.PageSize <= 0 {
		deps.PageSize = 10
	}
	return &Server{deps: deps, logger: deps.Logger}
}

// Register mounts the console routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/courses", s.handleCourses)
	mux.HandleFunc("GET /api/courses/export.xlsx", s.handleCoursesExport)
	mux.HandleFunc("PATCH /api/courses/{id}", s.handleCourseUpdate)
	mux.HandleFunc("DELETE /api/courses/{id}", s.handleCourseDelete)
	mux.HandleFunc("GET /api/courses/{id}/content", s.handleContent)
	mux.HandleFunc("PATCH /api/courses/{id}/content/order", s.handleContentOrder)
	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/enrollments", s.handleEnrollments)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	mux.HandleFunc("GET /api/blueprints", s.handleBlueprints)
	mux.HandleFunc("POST /api/blueprints/{slug}/import", s.handleBlueprintImport)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notifications == nil {
		writeJSON(w, http.StatusOK, map[string]any{"notifications": []notify.Notification{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	items, err := s.deps.Notifications.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (s *Server) handleBlueprints(w http.ResponseWriter, r *http.Request) {
	type summary struct {
		Slug    string `json:"slug"`
		Title   string `json:"title"`
		Modules int    `json:"modules"`
	}
	out := []summary{}
	if s.deps.Blueprints != nil {
		for _, b := range s.deps.Blueprints.All() {
			out = append(out, summary{Slug: b.Slug, Title: b.Title, Modules: len(b.Modules)})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"blueprints": out})
}

func (s *Server) handleBlueprintImport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Blueprints == nil || s.deps.Importer == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "blueprints are not configured"})
		return
	}
	b, ok := s.deps.Blueprints.Get(r.PathValue("slug"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "blueprint not found"})
		return
	}

	course, err := s.deps.Importer.Import(r.Context(), b)
	if err != nil {
		s.logger.Warn("blueprint import failed", "slug", b.Slug, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

type errorBody struct {
	Error string `json:"error"`
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

// writeError maps err to an HTTP status and a user-facing message. Backend
// errors keep the backend's status and message.
func writeError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: reqErr.msg})
	case errors.Is(err, catalog.ErrInstructorRecordID), errors.Is(err, catalog.ErrUnknownInstructor):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, catalog.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case api.StatusCode(err) >= 400:
		writeJSON(w, api.StatusCode(err), errorBody{Error: api.UserMessage(err)})
	case api.Classify(err) == api.KindTransport:
		writeJSON(w, http.StatusBadGateway, errorBody{Error: api.DefaultMessage})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: api.DefaultMessage})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optInt(v string) (int, bool, error) {
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, badRequest("id must be a positive number")
	}
	return id, nil
}
