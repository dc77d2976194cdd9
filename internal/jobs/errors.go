package jobs

import "errors"

var (
	// ErrJobNotFound means no record exists for the id.
	ErrJobNotFound = errors.New("job not found")
	// ErrAlreadyProcessed guards against duplicate or late triggers: the job
	// is no longer queued, so processing is a no-op.
	ErrAlreadyProcessed = errors.New("job already processed")
	// ErrVersionConflict is returned when an optimistic update loses the
	// race too many times in a row.
	ErrVersionConflict = errors.New("job record modified concurrently")
	// ErrServerBusy asks the broker to redeliver later.
	ErrServerBusy = errors.New("server busy, cannot accept job")
)
