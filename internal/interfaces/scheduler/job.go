package scheduler

import "context"

// Job represents a unit of work that can be executed by the worker pool.
type Job interface {
	// Execute runs the job. Implementations must respect ctx cancellation.
	Execute(ctx context.Context) error

	// Key identifies what the job operates on, for logs and span attributes.
	Key() string

	// Description returns a human-readable description of the job.
	Description() string
}
