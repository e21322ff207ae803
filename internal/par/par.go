// Package par provides small helpers for data-parallel loops over dense
// index ranges, built on golang.org/x/sync/errgroup the same way the rest of
// this module expresses concurrency (see task.Group). There is no
// ecosystem equivalent of a blocked_range/parallel_for primitive in the
// retrieved corpus; errgroup plus manual chunking is the teacher's own tool
// for exactly this shape of work.
package par

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers returns a default worker count for CPU-bound fan-out, honoring a
// caller override of n > 0.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	if n = runtime.GOMAXPROCS(0); n < 1 {
		return 1
	}
	return n
}

// Range splits [0, n) into contiguous chunks and invokes fn(begin, end) for
// each chunk concurrently, using up to |workers| goroutines. It returns the
// first error encountered, if any, after all chunks have completed.
func Range(n, workers int, fn func(begin, end int) error) error {
	if n <= 0 {
		return nil
	}
	workers = Workers(workers)
	if workers > n {
		workers = n
	}

	var chunk = (n + workers - 1) / workers
	var g errgroup.Group

	for begin := 0; begin < n; begin += chunk {
		var b = begin
		var e = b + chunk
		if e > n {
			e = n
		}
		g.Go(func() error { return fn(b, e) })
	}
	return g.Wait()
}

// ForEach splits [0, n) and invokes fn(i) for every index concurrently.
func ForEach(n, workers int, fn func(i int) error) error {
	return Range(n, workers, func(begin, end int) error {
		for i := begin; i < end; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	})
}
