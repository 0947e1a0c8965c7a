package curriculum_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/p-n-ai/pai-admin/internal/catalog"
	"github.com/p-n-ai/pai-admin/internal/curriculum"
)

// fakeBackend serves one course from memory and applies order updates to it.
type fakeBackend struct {
	mu       sync.Mutex
	course   catalog.Course
	modules  []catalog.Module
	lessons  []catalog.Lesson
	sessions []catalog.Session
	quizzes  []catalog.Quiz
	patches  []string
	failQuiz error
}

func (b *fakeBackend) Get(_ context.Context, id int) (catalog.Course, error) {
	if id != b.course.ID {
		return catalog.Course{}, errors.New("not found")
	}
	return b.course, nil
}

type fakeModules struct{ *fakeBackend }

func (f fakeModules) List(_ context.Context, _ catalog.ModuleFilters) ([]catalog.Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.modules), nil
}

func (f fakeModules) UpdateOrder(_ context.Context, id, idx int) (catalog.Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, "module")
	for i := range f.modules {
		if f.modules[i].ID == id {
			f.modules[i].OrderIndex = idx
			return f.modules[i], nil
		}
	}
	return catalog.Module{}, errors.New("not found")
}

type fakeLessons struct{ *fakeBackend }

func (f fakeLessons) List(_ context.Context, _ catalog.LessonFilters) ([]catalog.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.lessons), nil
}

func (f fakeLessons) UpdateOrder(_ context.Context, id, idx int) (catalog.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, "lesson")
	for i := range f.lessons {
		if f.lessons[i].ID == id {
			f.lessons[i].OrderIndex = idx
			return f.lessons[i], nil
		}
	}
	return catalog.Lesson{}, errors.New("not found")
}

type fakeSessions struct{ *fakeBackend }

func (f fakeSessions) ListByCourse(context.Context, int) ([]catalog.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.sessions), nil
}

func (f fakeSessions) UpdateOrder(_ context.Context, id, idx int) (catalog.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, "session")
	return catalog.Session{ID: id, OrderIndex: idx}, nil
}

type fakeQuizzes struct{ *fakeBackend }

func (f fakeQuizzes) ListByCourse(context.Context, int) ([]catalog.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failQuiz != nil {
		return nil, f.failQuiz
	}
	return slices.Clone(f.quizzes), nil
}

func (f fakeQuizzes) UpdateOrder(_ context.Context, id, idx int) (catalog.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, "quiz")
	return catalog.Quiz{ID: id, OrderIndex: idx}, nil
}

func (b *fakeBackend) assembler() *curriculum.Assembler {
	return curriculum.NewAssembler(curriculum.Sources{
		Courses:  b,
		Modules:  fakeModules{b},
		Lessons:  fakeLessons{b},
		Sessions: fakeSessions{b},
		Quizzes:  fakeQuizzes{b},
	}, nil)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		course: catalog.Course{ID: 1, Title: "Go"},
		modules: []catalog.Module{
			{ID: 20, Title: "Second", OrderIndex: 1},
			{ID: 10, Title: "First", OrderIndex: 0},
		},
		lessons: []catalog.Lesson{
			{ID: 1, ModuleID: 10, Title: "c", OrderIndex: 2},
			{ID: 2, ModuleID: 10, Title: "a", OrderIndex: 0},
			{ID: 3, ModuleID: 10, Title: "b", OrderIndex: 1},
			{ID: 4, ModuleID: 99, Title: "orphan"},
		},
		sessions: []catalog.Session{
			{ID: 7, ModuleID: 20, Title: "late", OrderIndex: 1},
			{ID: 8, ModuleID: 20, Title: "early", OrderIndex: 0},
		},
		quizzes: []catalog.Quiz{
			{ID: 5, ModuleID: 10, Title: "check", Questions: []catalog.Question{
				{ID: 2, OrderIndex: 1}, {ID: 1, OrderIndex: 0},
			}},
		},
	}
}

func lessonOrder(m catalog.Module) []int {
	var out []int
	for _, l := range m.Lessons {
		out = append(out, l.OrderIndex)
	}
	return out
}

func TestAssemble_SortsEveryKind(t *testing.T) {
	b := newFakeBackend()

	course, err := b.assembler().Assemble(t.Context(), 1)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(course.Modules) != 2 || course.Modules[0].ID != 10 || course.Modules[1].ID != 20 {
		t.Fatalf("modules = %+v, want [10 20]", course.Modules)
	}

	first, second := course.Modules[0], course.Modules[1]
	if got := lessonOrder(first); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("lesson order = %v, want [0 1 2]", got)
	}
	if first.Lessons[0].Title != "a" {
		t.Errorf("first lesson = %q, want a", first.Lessons[0].Title)
	}
	if second.Sessions[0].Title != "early" {
		t.Errorf("first session = %q, want early", second.Sessions[0].Title)
	}
	if q := first.Quizzes[0].Questions; q[0].ID != 1 || q[1].ID != 2 {
		t.Errorf("questions = %+v, want sorted by order_index", q)
	}
	if first.CourseID != 1 {
		t.Errorf("module CourseID = %d, want 1", first.CourseID)
	}
}

func TestAssemble_ChildSlicesNeverNil(t *testing.T) {
	b := newFakeBackend()

	course, err := b.assembler().Assemble(t.Context(), 1)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second := course.Modules[1]
	if second.Lessons == nil || second.Quizzes == nil {
		t.Errorf("module %d has nil children: %+v", second.ID, second)
	}
	if first := course.Modules[0]; first.Sessions == nil {
		t.Errorf("module %d has nil sessions", first.ID)
	}
}

func TestAssemble_DropsOrphans(t *testing.T) {
	b := newFakeBackend()

	course, err := b.assembler().Assemble(t.Context(), 1)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	for _, m := range course.Modules {
		for _, l := range m.Lessons {
			if l.ID == 4 {
				t.Errorf("orphan lesson attached to module %d", m.ID)
			}
		}
	}
}

func TestAssemble_MergesEmbeddedChildren(t *testing.T) {
	b := newFakeBackend()
	b.course.Modules = []catalog.Module{
		{ID: 20, Title: "Second", OrderIndex: 1, Lessons: []catalog.Lesson{
			{ID: 30, ModuleID: 20, Title: "embedded only", OrderIndex: 0},
		}},
	}
	b.lessons = append(b.lessons, catalog.Lesson{ID: 30, ModuleID: 20, Title: "fetched", OrderIndex: 0})

	course, err := b.assembler().Assemble(t.Context(), 1)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second := course.Modules[1]
	if len(second.Lessons) != 1 || second.Lessons[0].Title != "fetched" {
		t.Errorf("lessons = %+v, want fetched entry to win", second.Lessons)
	}
}

func TestAssemble_PropagatesFailure(t *testing.T) {
	b := newFakeBackend()
	b.failQuiz = errors.New("quizzes unavailable")

	if _, err := b.assembler().Assemble(t.Context(), 1); !errors.Is(err, b.failQuiz) {
		t.Errorf("Assemble() error = %v, want quizzes failure", err)
	}
}

func TestReorder_ReassemblesWithServerIndices(t *testing.T) {
	b := newFakeBackend()
	a := b.assembler()

	// Lesson "c" (id 1) moves to the front. The server here does not
	// renumber siblings, so "a" and "c" now share index 0 and keep fetch order.
	course, err := a.Reorder(t.Context(), 1, curriculum.KindLesson, 1, 0)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if !slices.Equal(b.patches, []string{"lesson"}) {
		t.Errorf("patches = %v, want exactly one lesson patch", b.patches)
	}
	if got := course.Modules[0].Lessons[0].ID; got != 1 {
		t.Errorf("first lesson id = %d, want 1", got)
	}
}

func TestReorderModule(t *testing.T) {
	b := newFakeBackend()

	course, err := b.assembler().ReorderModule(t.Context(), 1, 20, -1)
	if !errors.Is(err, catalog.ErrInvalidInput) {
		t.Fatalf("ReorderModule(-1) error = %v, want ErrInvalidInput", err)
	}

	course, err = b.assembler().ReorderModule(t.Context(), 1, 10, 2)
	if err != nil {
		t.Fatalf("ReorderModule() error = %v", err)
	}
	if course.Modules[0].ID != 20 {
		t.Errorf("first module = %d, want 20", course.Modules[0].ID)
	}
}

func TestUpdateOrder_UnknownKind(t *testing.T) {
	b := newFakeBackend()
	err := b.assembler().UpdateOrder(t.Context(), curriculum.Kind("video"), 1, 0)
	if !errors.Is(err, catalog.ErrInvalidInput) {
		t.Errorf("UpdateOrder() error = %v, want ErrInvalidInput", err)
	}
	if len(b.patches) != 0 {
		t.Errorf("patches = %v, want none", b.patches)
	}
}

func TestContents_KindByKind(t *testing.T) {
	m := catalog.Module{
		Lessons:  []catalog.Lesson{{ID: 1, OrderIndex: 5}},
		Sessions: []catalog.Session{{ID: 2, OrderIndex: 0}},
		Quizzes:  []catalog.Quiz{{ID: 3, OrderIndex: 1}},
	}

	items := curriculum.Contents(m)
	var kinds []curriculum.Kind
	for _, it := range items {
		kinds = append(kinds, it.Kind())
	}
	want := []curriculum.Kind{curriculum.KindLesson, curriculum.KindSession, curriculum.KindQuiz}
	if !slices.Equal(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}

	switch it := items[2].(type) {
	case curriculum.QuizItem:
		if it.Key() != 3 {
			t.Errorf("quiz key = %d, want 3", it.Key())
		}
	default:
		t.Errorf("items[2] is %T, want QuizItem", it)
	}
}
