// Package workerpool provides the rayon-style fork/join pool shared by
// the pipeline's stage dispatch and the mesher's per-region jobs: owned
// inputs in, owned outputs out, no shared-state lock needed mid-phase.
// Backed by golang.org/x/sync/errgroup the way the rest of the retrieval
// pack reaches for goroutine fan-out helpers rather than hand-rolled
// WaitGroup plumbing.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool bounds how many jobs one Run or Map call runs concurrently; each
// call applies Limit to its own jobs, so concurrent calls do not share
// it. A zero-value Pool has no concurrency limit.
type Pool struct {
	Limit int
}

// New returns a Pool capped at limit concurrent jobs. limit <= 0 means
// unbounded.
func New(limit int) *Pool {
	return &Pool{Limit: limit}
}

// Run executes fn once per item in parallel, respecting the pool's
// concurrency limit, and returns the first error encountered (if any);
// other in-flight jobs are allowed to finish, matching errgroup's
// default cancellation-on-error behavior.
func Run[T any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if p != nil && p.Limit > 0 {
		g.SetLimit(p.Limit)
	}
	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(gctx, item)
		})
	}
	return g.Wait()
}

// Map runs fn once per item in parallel and collects the results in
// input order. A job's error aborts the whole Map once every job has
// been given a chance to run (errgroup semantics); the first error is
// returned alongside whatever partial results were produced.
func Map[T any, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if p != nil && p.Limit > 0 {
		g.SetLimit(p.Limit)
	}
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
