package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrPoolClosed = errors.New("worker pool closed")
)
