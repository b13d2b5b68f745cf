package chunkstore

import (
	"context"
	"fmt"
)

// pool is a small fixed-size goroutine pool that drains a job channel, the
// idiomatic Go stand-in for handing blocking work off to a dedicated pool
// (bbolt transactions are synchronous) instead of blocking a caller's own
// goroutine directly.
type pool struct {
	jobs chan func()
	done chan struct{}
}

func newPool(workers int) *pool {
	if workers < 1 {
		workers = 1
	}
	p := &pool{
		jobs: make(chan func()),
		done: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *pool) worker() {
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			job()
		case <-p.done:
			return
		}
	}
}

// submit runs fn on a pool worker and blocks until it completes or ctx is
// cancelled, whichever comes first.
func (p *pool) submit(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	job := func() { result <- fn() }

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return fmt.Errorf("chunkstore: submitting job: %w", ctx.Err())
	case <-p.done:
		return ErrClosed
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("chunkstore: waiting for job: %w", ctx.Err())
	}
}

func (p *pool) close() {
	close(p.done)
}
