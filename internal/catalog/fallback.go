package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// CourseLister lists courses. The session and quiz repositories use it to
// enumerate courses when the site-wide listing collides with a by-id route.
type CourseLister interface {
	List(ctx context.Context, f CourseFilters) ([]Course, error)
}

// collectPerCourse fetches items course by course and flattens them in
// course order. Any failed course fails the whole listing.
func collectPerCourse[T any](ctx context.Context, courses CourseLister, limit int, fetch func(ctx context.Context, courseID int) ([]T, error)) ([]T, error) {
	list, err := courses.List(ctx, CourseFilters{})
	if err != nil {
		return nil, fmt.Errorf("list courses for fallback: %w", err)
	}

	results := make([][]T, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range list {
		g.Go(func() error {
			items, err := fetch(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("course %d: %w", c.ID, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []T{}
	for _, items := range results {
		out = append(out, items...)
	}
	return out, nil
}
