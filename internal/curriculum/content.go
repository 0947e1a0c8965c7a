package curriculum

import (
	"context"
	"fmt"

	"github.com/p-n-ai/pai-admin/internal/catalog"
)

// Kind discriminates module content.
type Kind string

const (
	KindLesson  Kind = "lesson"
	KindSession Kind = "session"
	KindQuiz    Kind = "quiz"
)

// Content is one item of module content. It is implemented only by
// LessonItem, SessionItem and QuizItem.
type Content interface {
	Kind() Kind
	Key() int
	Label() string
	Order() int
	sealed()
}

// LessonItem wraps a lesson.
type LessonItem struct{ Lesson catalog.Lesson }

func (i LessonItem) Kind() Kind    { return KindLesson }
func (i LessonItem) Key() int      { return i.Lesson.ID }
func (i LessonItem) Label() string { return i.Lesson.Title }
func (i LessonItem) Order() int    { return i.Lesson.OrderIndex }
func (LessonItem) sealed()         {}

// SessionItem wraps a session.
type SessionItem struct{ Session catalog.Session }

func (i SessionItem) Kind() Kind    { return KindSession }
func (i SessionItem) Key() int      { return i.Session.ID }
func (i SessionItem) Label() string { return i.Session.Title }
func (i SessionItem) Order() int    { return i.Session.OrderIndex }
func (SessionItem) sealed()         {}

// QuizItem wraps a quiz.
type QuizItem struct{ Quiz catalog.Quiz }

func (i QuizItem) Kind() Kind    { return KindQuiz }
func (i QuizItem) Key() int      { return i.Quiz.ID }
func (i QuizItem) Label() string { return i.Quiz.Title }
func (i QuizItem) Order() int    { return i.Quiz.OrderIndex }
func (QuizItem) sealed()         {}

// Contents lists a module's content kind by kind: lessons, then sessions,
// then quizzes, each kind in its own order. Order indices of different kinds
// are independent and are not interleaved.
func Contents(m catalog.Module) []Content {
	out := make([]Content, 0, len(m.Lessons)+len(m.Sessions)+len(m.Quizzes))
	for _, l := range m.Lessons {
		out = append(out, LessonItem{Lesson: l})
	}
	for _, s := range m.Sessions {
		out = append(out, SessionItem{Session: s})
	}
	for _, q := range m.Quizzes {
		out = append(out, QuizItem{Quiz: q})
	}
	return out
}

// UpdateOrder sets the order_index of one content item. Only that item is
// patched; the server owns sibling renumbering.
func (a *Assembler) UpdateOrder(ctx context.Context, kind Kind, id, newIndex int) error {
	if newIndex < 0 {
		return fmt.Errorf("reorder %s %d: %w", kind, id, catalog.ErrInvalidInput)
	}

	var err error
	switch kind {
	case KindLesson:
		_, err = a.src.Lessons.UpdateOrder(ctx, id, newIndex)
	case KindSession:
		_, err = a.src.Sessions.UpdateOrder(ctx, id, newIndex)
	case KindQuiz:
		_, err = a.src.Quizzes.UpdateOrder(ctx, id, newIndex)
	default:
		return fmt.Errorf("reorder: unknown content kind %q: %w", kind, catalog.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("reorder %s %d: %w", kind, id, err)
	}
	return nil
}

// Reorder moves one content item and returns the re-assembled course, so
// callers see the indices the server settled on.
func (a *Assembler) Reorder(ctx context.Context, courseID int, kind Kind, id, newIndex int) (catalog.Course, error) {
	if err := a.UpdateOrder(ctx, kind, id, newIndex); err != nil {
		return catalog.Course{}, err
	}
	return a.Assemble(ctx, courseID)
}

// ReorderModule moves a module and returns the re-assembled course.
func (a *Assembler) ReorderModule(ctx context.Context, courseID, moduleID, newIndex int) (catalog.Course, error) {
	if newIndex < 0 {
		return catalog.Course{}, fmt.Errorf("reorder module %d: %w", moduleID, catalog.ErrInvalidInput)
	}
	if _, err := a.src.Modules.UpdateOrder(ctx, moduleID, newIndex); err != nil {
		return catalog.Course{}, fmt.Errorf("reorder module %d: %w", moduleID, err)
	}
	return a.Assemble(ctx, courseID)
}
