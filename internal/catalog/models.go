// Package catalog holds the course platform data model and the typed
// repositories that read and write it through the REST backend.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// ContentType is the kind of material a lesson carries.
type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentPDF   ContentType = "pdf"
	ContentText  ContentType = "text"
)

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentPDF, ContentText:
		return true
	}
	return false
}

// SessionType distinguishes online from in-person sessions.
type SessionType string

const (
	SessionLive     SessionType = "LIVE"
	SessionPhysical SessionType = "PHYSICAL"
)

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	return t == SessionLive || t == SessionPhysical
}

// EnrollmentStatus is the progress state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentComplete   EnrollmentStatus = "COMPLETE"
	EnrollmentDropped    EnrollmentStatus = "DROPPED"
)

// Label returns a human-readable status.
func (s EnrollmentStatus) Label() string {
	switch s {
	case EnrollmentInProgress:
		return "In progress"
	case EnrollmentComplete:
		return "Complete"
	case EnrollmentDropped:
		return "Dropped"
	default:
		return string(s)
	}
}

// State is a geographic state used to locate courses and instructors.
type State struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
}

// User is a platform account.
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Instructor is the instructor profile of a user. ID is the profile record's
// own key; UserID is the account it belongs to.
type Instructor struct {
	ID             int    `json:"id"`
	UserID         int    `json:"user_id"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	StateID        *int   `json:"state_id,omitempty"`
	State          *State `json:"state,omitempty"`
	User           *User  `json:"user,omitempty"`
}

// DisplayName prefers the profile name and falls back to the user's.
func (i Instructor) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if i.User != nil {
		return i.User.FullName()
	}
	return fmt.Sprintf("Instructor #%d", i.ID)
}

// Course is a training course. InstructorID always holds the owning user's
// id, never the instructor profile id.
type Course struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Duration     int         `json:"duration,omitempty"`
	Price        float64     `json:"price,omitempty"`
	TrainingType string      `json:"training_type,omitempty"`
	DeliveryMode string      `json:"delivery_mode,omitempty"`
	Level        string      `json:"level,omitempty"`
	ThumbnailURL string      `json:"thumbnail_url,omitempty"`
	StateID      *int        `json:"state_id,omitempty"`
	State        *State      `json:"state,omitempty"`
	InstructorID *int        `json:"instructor_id,omitempty"`
	Instructor   *Instructor `json:"instructor,omitempty"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    *time.Time  `json:"created_at,omitempty"`
	UpdatedAt    *time.Time  `json:"updated_at,omitempty"`
	Modules      []Module    `json:"modules,omitempty"`
}

// StateName returns the joined state's name, or "" when unknown.
func (c Course) StateName() string {
	if c.State == nil {
		return ""
	}
	return c.State.Name
}

// Module groups ordered curriculum content inside a course.
type Module struct {
	ID          int       `json:"id"`
	CourseID    int       `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OrderIndex  int       `json:"order_index"`
	Lessons     []Lesson  `json:"lessons"`
	Sessions    []Session `json:"sessions"`
	Quizzes     []Quiz    `json:"quizzes"`
}

// Lesson is a unit of self-paced material.
type Lesson struct {
	ID          int         `json:"id"`
	ModuleID    int         `json:"module_id"`
	CourseID    int         `json:"course_id,omitempty"`
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	DurationMin int         `json:"duration_min,omitempty"`
	OrderIndex  int         `json:"order_index"`
	ContentURL  string      `json:"content_url,omitempty"`
	PDFURL      string      `json:"pdf_url,omitempty"`
	ContentText string      `json:"content_text,omitempty"`
	IsPreview   bool        `json:"is_preview,omitempty"`
}

// Content returns the field that is authoritative for the lesson's content
// type. The other content fields are ignored.
func (l Lesson) Content() string {
	switch l.ContentType {
	case ContentVideo:
		return l.ContentURL
	case ContentPDF:
		return l.PDFURL
	case ContentText:
		return l.ContentText
	}
	return ""
}

// Session is a scheduled live or physical class.
type Session struct {
	ID          int         `json:"id"`
	ModuleID    int         `json:"module_id"`
	CourseID    int         `json:"course_id,omitempty"`
	Title       string      `json:"title"`
	SessionType SessionType `json:"session_type"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	Capacity    int         `json:"capacity,omitempty"`
	MeetingURL  string      `json:"meeting_url,omitempty"`
	Location    string      `json:"location,omitempty"`
	OrderIndex  int         `json:"order_index"`
}

// Venue returns the meeting URL of a live session or the location of a
// physical one.
func (s Session) Venue() string {
	if s.SessionType == SessionLive {
		return s.MeetingURL
	}
	return s.Location
}

// Quiz is an assessment inside a module. IsFinal marks the course's terminal
// exam.
type Quiz struct {
	ID           int        `json:"id"`
	ModuleID     int        `json:"module_id"`
	CourseID     int        `json:"course_id,omitempty"`
	Title        string     `json:"title"`
	PassingScore int        `json:"passing_score"`
	IsFinal      bool       `json:"is_final"`
	OrderIndex   int        `json:"order_index"`
	Questions    []Question `json:"questions"`
}

// TotalPoints sums the points of all questions.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Question is one quiz item. CorrectAnswers index into Options.
type Question struct {
	ID             int      `json:"id"`
	QuizID         int      `json:"quiz_id,omitempty"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswers []int    `json:"correct_answers"`
	Points         int      `json:"points"`
	OrderIndex     int      `json:"order_index"`
}

// Enrollment links a user to a course.
type Enrollment struct {
	ID          int              `json:"id"`
	UserID      int              `json:"user_id"`
	CourseID    int              `json:"course_id"`
	Status      EnrollmentStatus `json:"status"`
	Progress    float64          `json:"progress"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	User        *User            `json:"user,omitempty"`
	Course      *Course          `json:"course,omitempty"`
}
