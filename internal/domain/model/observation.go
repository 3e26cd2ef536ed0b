package model

// Label keys attached to observations.
const (
	LabelModel     = "model"
	LabelRound     = "round"
	LabelScoreName = "score_name"
	LabelStatus    = "status"
	LabelPeriod    = "period"
	LabelCurrency  = "currency"
)

// Observation is a single labeled numeric sample handed to the output sink.
// Name is the fully qualified metric name.
type Observation struct {
	Name   string
	Labels map[string]string
	Value  float64
}
