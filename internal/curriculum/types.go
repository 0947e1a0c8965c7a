package curriculum

import "time"

// Blueprint describes a course and its content in YAML. Order indices follow
// file order.
type Blueprint struct {
	Slug         string            `yaml:"slug"`
	Title        string            `yaml:"title"`
	Description  string            `yaml:"description"`
	Duration     int               `yaml:"duration"`
	Price        float64           `yaml:"price"`
	TrainingType string            `yaml:"training_type"`
	DeliveryMode string            `yaml:"delivery_mode"`
	Level        string            `yaml:"level"`
	StateID      *int              `yaml:"state_id"`
	InstructorID *int              `yaml:"instructor_id"` // user id
	Active       bool              `yaml:"active"`
	Modules      []ModuleBlueprint `yaml:"modules"`
}

// ModuleBlueprint is one module of a Blueprint.
type ModuleBlueprint struct {
	Title       string             `yaml:"title"`
	Description string             `yaml:"description"`
	Lessons     []LessonBlueprint  `yaml:"lessons"`
	Sessions    []SessionBlueprint `yaml:"sessions"`
	Quizzes     []QuizBlueprint    `yaml:"quizzes"`
}

// LessonBlueprint is a lesson inside a module.
type LessonBlueprint struct {
	Title       string `yaml:"title"`
	ContentType string `yaml:"content_type"`
	DurationMin int    `yaml:"duration_min"`
	ContentURL  string `yaml:"content_url"`
	PDFURL      string `yaml:"pdf_url"`
	ContentText string `yaml:"content_text"`
	Preview     bool   `yaml:"preview"`
}

// SessionBlueprint is a scheduled session inside a module.
type SessionBlueprint struct {
	Title       string    `yaml:"title"`
	SessionType string    `yaml:"session_type"`
	StartTime   time.Time `yaml:"start_time"`
	EndTime     time.Time `yaml:"end_time"`
	Capacity    int       `yaml:"capacity"`
	MeetingURL  string    `yaml:"meeting_url"`
	Location    string    `yaml:"location"`
}

// QuizBlueprint is a quiz with its questions.
type QuizBlueprint struct {
	Title        string              `yaml:"title"`
	PassingScore int                 `yaml:"passing_score"`
	Final        bool                `yaml:"final"`
	Questions    []QuestionBlueprint `yaml:"questions"`
}

// QuestionBlueprint is one quiz question. Answers index into Options.
type QuestionBlueprint struct {
	Question string   `yaml:"question"`
	Options  []string `yaml:"options"`
	Answers  []int    `yaml:"answers"`
	Points   int      `yaml:"points"`
}
