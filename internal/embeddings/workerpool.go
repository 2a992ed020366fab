package embeddings

import (
	"context"
	"runtime"
)

// workerPool runs CPU-bound embedding jobs on a fixed set of goroutines so
// local embedding generation never runs inline on a caller's goroutine.
type workerPool struct {
	sem chan struct{}
}

func newWorkerPool(n int) *workerPool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return &workerPool{sem: make(chan struct{}, n)}
}

// run schedules fn on a worker and blocks until it completes or ctx is done.
func (wp *workerPool) run(ctx context.Context, fn func() []float32) ([]float32, error) {
	select {
	case wp.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-wp.sem }()

	type result struct {
		vec []float32
	}
	done := make(chan result, 1)
	go func() {
		done <- result{vec: fn()}
	}()

	select {
	case r := <-done:
		return r.vec, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
