package promsink

import "errors"

// Sentinel kinds for sink errors.
var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrRegister      = errors.New("register metric failed")
)
