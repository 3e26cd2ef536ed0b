// Package types contains common types used across the application
package types

import "time"

// Tick states reported by the health endpoint.
const (
	StatusOK      = "ok"
	StatusFailing = "failing"
	StatusPending = "pending"
)

// TickStatus is the JSON view of the latest collection pass.
type TickStatus struct {
	Status       string     `json:"status"`
	TickID       string     `json:"tick_id,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
	Models       int        `json:"models"`
	Observations int        `json:"observations"`
	Error        string     `json:"error,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
}

// Healthy reports whether the status should be served as 200.
func (s TickStatus) Healthy() bool {
	return s.Status != StatusFailing
}
