package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/p-n-ai/pai-admin/internal/api"
	"github.com/p-n-ai/pai-admin/internal/envelope"
)

const defaultFanoutLimit = 4

var (
	// ErrInvalidInput is returned when a payload fails client-side checks.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInstructorRecordID is returned when a course's instructor_id names an
	// instructor profile record instead of the instructor's user.
	ErrInstructorRecordID = errors.New("instructor_id refers to an instructor record, not a user")
	// ErrUnknownInstructor is returned when instructor_id matches no instructor.
	ErrUnknownInstructor = errors.New("instructor_id matches no instructor")
)

var (
	courseEnvelope     = envelope.MustDecoder(envelope.Keys{Plural: "courses", Singular: "course"})
	moduleEnvelope     = envelope.MustDecoder(envelope.Keys{Plural: "modules", Singular: "module"})
	lessonEnvelope     = envelope.MustDecoder(envelope.Keys{Plural: "lessons", Singular: "lesson"})
	sessionEnvelope    = envelope.MustDecoder(envelope.Keys{Plural: "sessions", Singular: "session"})
	quizEnvelope       = envelope.MustDecoder(envelope.Keys{Plural: "quizzes", Singular: "quiz"})
	questionEnvelope   = envelope.MustDecoder(envelope.Keys{Plural: "questions", Singular: "question"})
	enrollmentEnvelope = envelope.MustDecoder(envelope.Keys{Plural: "enrollments", Singular: "enrollment"})
	stateEnvelope      = envelope.MustDecoder(envelope.Keys{Plural: "states", Singular: "state"})
	instructorEnvelope = envelope.MustDecoder(envelope.Keys{Plural: "instructors", Singular: "instructor"})
)

// Option configures a repository.
type Option func(*options)

type options struct {
	fanout      int
	instructors InstructorDirectory
	logger      *slog.Logger
}

// WithFanoutLimit bounds concurrent per-course requests on the collision
// fallback.
func WithFanoutLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.fanout = n
		}
	}
}

// WithInstructorDirectory enables instructor_id validation on course writes.
func WithInstructorDirectory(dir InstructorDirectory) Option {
	return func(o *options) {
		o.instructors = dir
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{fanout: defaultFanoutLimit, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// resource performs the HTTP call for one resource type and normalizes the
// reply through the resource's envelope decoder.
type resource[T any] struct {
	client *api.Client
	dec    *envelope.Decoder
}

func newResource[T any](client *api.Client, dec *envelope.Decoder) resource[T] {
	return resource[T]{client: client, dec: dec}
}

func (r resource[T]) list(ctx context.Context, path string, query url.Values) ([]T, error) {
	raw, err := r.client.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.dec.Keys().Plural, err)
	}
	return envelope.DecodeList[T](r.dec, raw)
}

func (r resource[T]) page(ctx context.Context, path string, query url.Values) (envelope.Page[T], error) {
	raw, err := r.client.Get(ctx, path, query)
	if err != nil {
		return envelope.Page[T]{}, fmt.Errorf("list %s: %w", r.dec.Keys().Plural, err)
	}
	return envelope.DecodePage[T](r.dec, raw)
}

func (r resource[T]) get(ctx context.Context, path string) (T, error) {
	raw, err := r.client.Get(ctx, path, nil)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s: %w", r.dec.Keys().Singular, err)
	}
	return envelope.DecodeOne[T](r.dec, raw)
}

func (r resource[T]) create(ctx context.Context, path string, body any) (T, error) {
	raw, err := r.client.Post(ctx, path, body)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", r.dec.Keys().Singular, err)
	}
	return envelope.DecodeOne[T](r.dec, raw)
}

func (r resource[T]) update(ctx context.Context, path string, body any) (T, error) {
	raw, err := r.client.Patch(ctx, path, body)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("update %s: %w", r.dec.Keys().Singular, err)
	}
	return envelope.DecodeOne[T](r.dec, raw)
}

func (r resource[T]) upload(ctx context.Context, method, path string, f api.File) (T, error) {
	raw, err := r.client.Upload(ctx, method, path, f)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("upload %s: %w", r.dec.Keys().Singular, err)
	}
	return envelope.DecodeOne[T](r.dec, raw)
}

func (r resource[T]) remove(ctx context.Context, path string) error {
	if _, err := r.client.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete %s: %w", r.dec.Keys().Singular, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Ptr returns a pointer to v, for building filters and patches.
func Ptr[T any](v T) *T { return &v }
