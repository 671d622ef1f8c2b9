package mesh

import "time"

// AllocatorBuilderOption is a functional option for configuring an Allocator via NewAllocator.
type AllocatorBuilderOption func(*allocator)

// WithWorkers is an option builder that sets how many goroutines pack vertex and index data in parallel.
//
// Parameters:
//   - workers: maximum number of pool workers, values below 1 are treated as 1
//
// Returns:
//   - AllocatorBuilderOption: a function that applies the workers option to an allocator
func WithWorkers(workers int) AllocatorBuilderOption {
	return func(a *allocator) {
		a.workers = max(workers, 1)
	}
}

// WithChunkSize is an option builder that sets how many vertices or indices one pool task packs.
//
// Parameters:
//   - size: elements per task, values below 1 are treated as 1
//
// Returns:
//   - AllocatorBuilderOption: a function that applies the chunk size option to an allocator
func WithChunkSize(size int) AllocatorBuilderOption {
	return func(a *allocator) {
		a.chunkSize = max(size, 1)
	}
}

// WithIdleTimeout is an option builder that sets the worker pool idle timeout.
//
// Parameters:
//   - d: idle timeout passed to the worker pool
//
// Returns:
//   - AllocatorBuilderOption: a function that applies the idle timeout option to an allocator
func WithIdleTimeout(d time.Duration) AllocatorBuilderOption {
	return func(a *allocator) {
		a.idleTimeout = d
	}
}
