// Package emit turns a model's round history into labeled observations.
package emit

import (
	"strings"

	"github.com/okian/numerai-exporter/internal/domain/model"
)

// Metric family names, without namespace and subsystem.
const (
	ScorePercentile = "score_percentile"
	ScoreValue      = "score_value"
	PayoutRatioExPF = "payout_ratio_ex_pf"
	PayoutRatio     = "payout_ratio"
	PayoutPending   = "payout_pending"
	PayoutSettled   = "payout_settled"
	PayoutFactor    = "payout_factor"
	AtRisk          = "at_risk"
	Turnover        = "turnover"
	LatestRound     = "latest_round"
	NMRPrice        = "nmr_price"

	meanSuffix = "_mean"
)

// Mean returns the family name of the trailing mean of family.
func Mean(family string) string {
	return family + meanSuffix
}

// Family describes one gauge family and its fixed label names.
type Family struct {
	Name   string
	Help   string
	Labels []string
}

// FQName joins the non-empty parts with underscores, the way Prometheus
// builds fully qualified names.
func FQName(namespace, subsystem, name string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{namespace, subsystem, name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}

var (
	roundScoreLabels  = []string{model.LabelModel, model.LabelRound, model.LabelScoreName, model.LabelStatus}
	roundLabels       = []string{model.LabelModel, model.LabelRound, model.LabelStatus}
	periodScoreLabels = []string{model.LabelModel, model.LabelScoreName, model.LabelPeriod, model.LabelStatus}
	periodLabels      = []string{model.LabelModel, model.LabelPeriod, model.LabelStatus}
)

// Families lists every family an Emitter with the same namespace and
// subsystem can produce.
func Families(namespace, subsystem string) []Family {
	fq := func(name string) string { return FQName(namespace, subsystem, name) }
	return []Family{
		{Name: fq(LatestRound), Help: "Latest round"},
		{Name: FQName(namespace, "", NMRPrice), Help: "Current value of NMR", Labels: []string{model.LabelCurrency}},

		{Name: fq(ScorePercentile), Help: "Percentiles for a score", Labels: roundScoreLabels},
		{Name: fq(ScoreValue), Help: "Values for a score", Labels: roundScoreLabels},
		{Name: fq(PayoutRatioExPF), Help: "Payout ratio excluding payout factor", Labels: roundLabels},
		{Name: fq(PayoutRatio), Help: "Payout ratio", Labels: roundLabels},
		{Name: fq(PayoutPending), Help: "Payout pending", Labels: roundLabels},
		{Name: fq(PayoutSettled), Help: "Payout settled", Labels: roundLabels},
		{Name: fq(PayoutFactor), Help: "Payout factor", Labels: roundLabels},
		{Name: fq(AtRisk), Help: "At-risk capital", Labels: roundLabels},
		{Name: fq(Turnover), Help: "Turnover", Labels: roundLabels},

		{Name: fq(Mean(ScorePercentile)), Help: "Mean of the percentiles for a score", Labels: periodScoreLabels},
		{Name: fq(Mean(ScoreValue)), Help: "Mean of the values for a score", Labels: periodScoreLabels},
		{Name: fq(Mean(PayoutRatioExPF)), Help: "Mean of payout ratio excluding payout factor", Labels: periodLabels},
		{Name: fq(Mean(PayoutRatio)), Help: "Mean of payout ratio", Labels: periodLabels},
		{Name: fq(Mean(PayoutFactor)), Help: "Mean of payout factor", Labels: periodLabels},
		{Name: fq(Mean(AtRisk)), Help: "Mean of at-risk capital", Labels: periodLabels},
		{Name: fq(Mean(Turnover)), Help: "Mean of turnover", Labels: periodLabels},
	}
}
