package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSource = errors.New("no data source configured")
	ErrNoSink   = errors.New("no sink configured")
)
