package curriculum

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-admin/internal/catalog"
)

// Writers are the repositories a blueprint import creates content through.
type Writers struct {
	Courses interface {
		Create(ctx context.Context, in catalog.CourseInput) (catalog.Course, error)
	}
	Modules interface {
		Create(ctx context.Context, in catalog.ModuleInput) (catalog.Module, error)
	}
	Lessons interface {
		Create(ctx context.Context, in catalog.LessonInput) (catalog.Lesson, error)
	}
	Sessions interface {
		Create(ctx context.Context, in catalog.SessionInput) (catalog.Session, error)
	}
	Quizzes interface {
		Create(ctx context.Context, in catalog.QuizInput) (catalog.Quiz, error)
		AddQuestion(ctx context.Context, quizID int, in catalog.QuestionInput) (catalog.Question, error)
	}
}

// Importer creates courses from blueprints.
type Importer struct {
	w      Writers
	logger *slog.Logger
}

// NewImporter creates an importer. A nil logger uses slog.Default.
func NewImporter(w Writers, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{w: w, logger: logger}
}

// Import creates the blueprint's course, then its modules and their content in
// file order. Creation stops at the first failure; already created entities
// are left in place and the returned error names the failing item.
func (im *Importer) Import(ctx context.Context, b Blueprint) (catalog.Course, error) {
	course, err := im.w.Courses.Create(ctx, catalog.CourseInput{
		Title:        b.Title,
		Description:  b.Description,
		Duration:     b.Duration,
		Price:        b.Price,
		TrainingType: b.TrainingType,
		DeliveryMode: b.DeliveryMode,
		Level:        b.Level,
		StateID:      b.StateID,
		InstructorID: b.InstructorID,
		IsActive:     b.Active,
	})
	if err != nil {
		return catalog.Course{}, fmt.Errorf("import %s: %w", b.Slug, err)
	}

	for mi, mb := range b.Modules {
		module, err := im.w.Modules.Create(ctx, catalog.ModuleInput{
			CourseID:    course.ID,
			Title:       mb.Title,
			Description: mb.Description,
			OrderIndex:  mi,
		})
		if err != nil {
			return course, fmt.Errorf("import %s: module %q: %w", b.Slug, mb.Title, err)
		}
		if err := im.importContent(ctx, course.ID, module.ID, mb); err != nil {
			return course, fmt.Errorf("import %s: module %q: %w", b.Slug, mb.Title, err)
		}
	}

	im.logger.Info("blueprint imported",
		"slug", b.Slug,
		"course_id", course.ID,
		"modules", len(b.Modules),
	)
	return course, nil
}

func (im *Importer) importContent(ctx context.Context, courseID, moduleID int, mb ModuleBlueprint) error {
	for i, lb := range mb.Lessons {
		_, err := im.w.Lessons.Create(ctx, catalog.LessonInput{
			CourseID:    courseID,
			ModuleID:    moduleID,
			Title:       lb.Title,
			ContentType: catalog.ContentType(lb.ContentType),
			DurationMin: lb.DurationMin,
			OrderIndex:  i,
			ContentURL:  lb.ContentURL,
			PDFURL:      lb.PDFURL,
			ContentText: lb.ContentText,
			IsPreview:   lb.Preview,
		})
		if err != nil {
			return fmt.Errorf("lesson %q: %w", lb.Title, err)
		}
	}

	for i, sb := range mb.Sessions {
		_, err := im.w.Sessions.Create(ctx, catalog.SessionInput{
			CourseID:    courseID,
			ModuleID:    moduleID,
			Title:       sb.Title,
			SessionType: catalog.SessionType(sb.SessionType),
			StartTime:   sb.StartTime,
			EndTime:     sb.EndTime,
			Capacity:    sb.Capacity,
			MeetingURL:  sb.MeetingURL,
			Location:    sb.Location,
			OrderIndex:  i,
		})
		if err != nil {
			return fmt.Errorf("session %q: %w", sb.Title, err)
		}
	}

	for i, qb := range mb.Quizzes {
		quiz, err := im.w.Quizzes.Create(ctx, catalog.QuizInput{
			CourseID:     courseID,
			ModuleID:     moduleID,
			Title:        qb.Title,
			PassingScore: qb.PassingScore,
			IsFinal:      qb.Final,
			OrderIndex:   i,
		})
		if err != nil {
			return fmt.Errorf("quiz %q: %w", qb.Title, err)
		}
		for j, q := range qb.Questions {
			_, err := im.w.Quizzes.AddQuestion(ctx, quiz.ID, catalog.QuestionInput{
				Question:       q.Question,
				Options:        q.Options,
				CorrectAnswers: q.Answers,
				Points:         q.Points,
				OrderIndex:     j,
			})
			if err != nil {
				return fmt.Errorf("quiz %q question %d: %w", qb.Title, j+1, err)
			}
		}
	}
	return nil
}
