// Package rollup groups a model's round history by resolution status and
// reduces the grouped series to trailing means.
package rollup

import (
	"sort"

	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/okian/numerai-exporter/internal/domain/scoring"
	"github.com/shopspring/decimal"
)

// Series is a sequence of values ordered most recent round first.
type Series []decimal.Decimal

// ScoreSeries maps a score name to its series.
type ScoreSeries map[string]Series

// Names returns the score names in lexical order.
func (s ScoreSeries) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MeanMaps holds the per-status series of one model. It is built once per
// pass and not modified afterwards.
type MeanMaps struct {
	Values       map[model.RoundState]ScoreSeries
	Percentiles  map[model.RoundState]ScoreSeries
	PayoutFactor map[model.RoundState]Series
	AtRisk       map[model.RoundState]Series
	Turnover     map[model.RoundState]Series
}

func newMeanMaps() *MeanMaps {
	m := &MeanMaps{
		Values:       make(map[model.RoundState]ScoreSeries, 2),
		Percentiles:  make(map[model.RoundState]ScoreSeries, 2),
		PayoutFactor: make(map[model.RoundState]Series, 2),
		AtRisk:       make(map[model.RoundState]Series, 2),
		Turnover:     make(map[model.RoundState]Series, 2),
	}
	for _, st := range model.RoundStates() {
		m.Values[st] = ScoreSeries{}
		m.Percentiles[st] = ScoreSeries{}
		m.PayoutFactor[st] = Series{}
		m.AtRisk[st] = Series{}
		m.Turnover[st] = Series{}
	}
	return m
}

// Build partitions records by status. Records must be ordered most recent
// first (see model.SortRounds); every series keeps that order.
func Build(records []model.RoundRecord, policy scoring.Policy) *MeanMaps {
	m := newMeanMaps()
	for i := range records {
		rec := &records[i]
		st := rec.State()

		scores := policy.Extract(rec.SubmissionScores)
		for _, name := range scores.Names() {
			obs, ok := scores.Lookup(name)
			if !ok {
				continue
			}
			m.Values[st][name] = append(m.Values[st][name], obs.Value)
			m.Percentiles[st][name] = append(m.Percentiles[st][name], obs.Percentile)
		}

		if policy.Present(rec.RoundPayoutFactor) {
			m.PayoutFactor[st] = append(m.PayoutFactor[st], rec.RoundPayoutFactor.Decimal)
		}
		if policy.Present(rec.AtRisk) {
			m.AtRisk[st] = append(m.AtRisk[st], rec.AtRisk.Decimal)
		}
		if policy.Present(rec.PrevWeekTurnoverMax) {
			m.Turnover[st] = append(m.Turnover[st], rec.PrevWeekTurnoverMax.Decimal)
		}
	}
	return m
}

// ScoreValues returns the value series of a score for st, or nil.
func (m *MeanMaps) ScoreValues(st model.RoundState, score string) Series {
	return m.Values[st.MustValid()][score]
}
