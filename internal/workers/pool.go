// Package workers bounds how many blocking collaborator calls run at once.
package workers

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Pool limits concurrent blocking calls with a weighted semaphore.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

// NewPool creates a pool admitting at most size concurrent calls (minimum 1).
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Size returns the pool capacity.
func (p *Pool) Size() int { return int(p.size) }

// Do runs fn once a slot is free. Returns ctx.Err() if the context ends first.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire worker: %w", err)
	}
	defer p.sem.Release(1)
	return fn(ctx)
}

// Run executes fn on pool p and returns its value.
func Run[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
