// Package curriculum assembles a course's content tree from the per-level
// REST resources, reorders content, and imports YAML course blueprints.
package curriculum

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/pai-admin/internal/catalog"
)

// CourseSource reads courses.
type CourseSource interface {
	Get(ctx context.Context, id int) (catalog.Course, error)
}

// ModuleSource reads and reorders modules.
type ModuleSource interface {
	List(ctx context.Context, f catalog.ModuleFilters) ([]catalog.Module, error)
	UpdateOrder(ctx context.Context, id, newIndex int) (catalog.Module, error)
}

// LessonSource reads and reorders lessons.
type LessonSource interface {
	List(ctx context.Context, f catalog.LessonFilters) ([]catalog.Lesson, error)
	UpdateOrder(ctx context.Context, id, newIndex int) (catalog.Lesson, error)
}

// SessionSource reads and reorders sessions.
type SessionSource interface {
	ListByCourse(ctx context.Context, courseID int) ([]catalog.Session, error)
	UpdateOrder(ctx context.Context, id, newIndex int) (catalog.Session, error)
}

// QuizSource reads and reorders quizzes.
type QuizSource interface {
	ListByCourse(ctx context.Context, courseID int) ([]catalog.Quiz, error)
	UpdateOrder(ctx context.Context, id, newIndex int) (catalog.Quiz, error)
}

// Sources are the repositories the assembler reads from.
type Sources struct {
	Courses  CourseSource
	Modules  ModuleSource
	Lessons  LessonSource
	Sessions SessionSource
	Quizzes  QuizSource
}

// Assembler builds course content trees.
type Assembler struct {
	src    Sources
	logger *slog.Logger
}

// NewAssembler creates an assembler. A nil logger uses slog.Default.
func NewAssembler(src Sources, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{src: src, logger: logger}
}

// Assemble returns the course with its modules and their lessons, sessions
// and quizzes. Modules and each kind of content are sorted by order_index;
// content slices are never nil.
func (a *Assembler) Assemble(ctx context.Context, courseID int) (catalog.Course, error) {
	course, err := a.src.Courses.Get(ctx, courseID)
	if err != nil {
		return catalog.Course{}, fmt.Errorf("assemble course %d: %w", courseID, err)
	}

	var (
		modules  []catalog.Module
		lessons  []catalog.Lesson
		sessions []catalog.Session
		quizzes  []catalog.Quiz
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		modules, err = a.src.Modules.List(gctx, catalog.ModuleFilters{CourseID: courseID})
		return err
	})
	g.Go(func() (err error) {
		lessons, err = a.src.Lessons.List(gctx, catalog.LessonFilters{CourseID: &courseID})
		return err
	})
	g.Go(func() (err error) {
		sessions, err = a.src.Sessions.ListByCourse(gctx, courseID)
		return err
	})
	g.Go(func() (err error) {
		quizzes, err = a.src.Quizzes.ListByCourse(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return catalog.Course{}, fmt.Errorf("assemble course %d: %w", courseID, err)
	}

	course.Modules = a.stitch(courseID, mergeByID(course.Modules, modules, moduleID), lessons, sessions, quizzes)
	return course, nil
}

// stitch attaches children to their modules by module_id. Fetched children
// replace embedded children with the same id.
func (a *Assembler) stitch(courseID int, modules []catalog.Module, lessons []catalog.Lesson, sessions []catalog.Session, quizzes []catalog.Quiz) []catalog.Module {
	index := make(map[int]int, len(modules))
	for i := range modules {
		index[modules[i].ID] = i
	}

	byModule := func(kind string, id, moduleID int) (int, bool) {
		i, ok := index[moduleID]
		if !ok {
			a.logger.Warn("dropping orphaned content",
				"course_id", courseID,
				"kind", kind,
				"id", id,
				"module_id", moduleID,
			)
		}
		return i, ok
	}

	fetchedLessons := make(map[int][]catalog.Lesson)
	for _, l := range lessons {
		if i, ok := byModule("lesson", l.ID, l.ModuleID); ok {
			fetchedLessons[i] = append(fetchedLessons[i], l)
		}
	}
	fetchedSessions := make(map[int][]catalog.Session)
	for _, s := range sessions {
		if i, ok := byModule("session", s.ID, s.ModuleID); ok {
			fetchedSessions[i] = append(fetchedSessions[i], s)
		}
	}
	fetchedQuizzes := make(map[int][]catalog.Quiz)
	for _, q := range quizzes {
		if i, ok := byModule("quiz", q.ID, q.ModuleID); ok {
			fetchedQuizzes[i] = append(fetchedQuizzes[i], q)
		}
	}

	for i := range modules {
		m := &modules[i]
		if m.CourseID == 0 {
			m.CourseID = courseID
		}
		m.Lessons = mergeByID(m.Lessons, fetchedLessons[i], func(l catalog.Lesson) int { return l.ID })
		m.Sessions = mergeByID(m.Sessions, fetchedSessions[i], func(s catalog.Session) int { return s.ID })
		m.Quizzes = mergeByID(m.Quizzes, fetchedQuizzes[i], func(q catalog.Quiz) int { return q.ID })

		sortByOrder(m.Lessons, func(l catalog.Lesson) int { return l.OrderIndex })
		sortByOrder(m.Sessions, func(s catalog.Session) int { return s.OrderIndex })
		sortByOrder(m.Quizzes, func(q catalog.Quiz) int { return q.OrderIndex })
		for j := range m.Quizzes {
			if m.Quizzes[j].Questions == nil {
				m.Quizzes[j].Questions = []catalog.Question{}
			}
			sortByOrder(m.Quizzes[j].Questions, func(q catalog.Question) int { return q.OrderIndex })
		}
	}

	sortByOrder(modules, func(m catalog.Module) int { return m.OrderIndex })
	return modules
}

func moduleID(m catalog.Module) int { return m.ID }

// mergeByID overlays fetched on embedded: entries with the same id are
// replaced by the fetched one, which also keeps any embedded children when it
// carries none. The result is never nil.
func mergeByID[T any](embedded, fetched []T, id func(T) int) []T {
	out := make([]T, 0, len(embedded)+len(fetched))
	pos := make(map[int]int, len(embedded)+len(fetched))
	for _, e := range embedded {
		pos[id(e)] = len(out)
		out = append(out, e)
	}
	for _, f := range fetched {
		if i, ok := pos[id(f)]; ok {
			out[i] = keepChildren(out[i], f)
			continue
		}
		pos[id(f)] = len(out)
		out = append(out, f)
	}
	return out
}

// keepChildren returns fetched, carrying over the embedded module's content
// when fetched is a module without any.
func keepChildren[T any](embedded, fetched T) T {
	em, ok := any(embedded).(catalog.Module)
	if !ok {
		return fetched
	}
	fm := any(fetched).(catalog.Module)
	if fm.Lessons == nil {
		fm.Lessons = em.Lessons
	}
	if fm.Sessions == nil {
		fm.Sessions = em.Sessions
	}
	if fm.Quizzes == nil {
		fm.Quizzes = em.Quizzes
	}
	return any(fm).(T)
}

func sortByOrder[T any](items []T, order func(T) int) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(order(a), order(b))
	})
}
