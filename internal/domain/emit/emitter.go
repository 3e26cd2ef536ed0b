package emit

import (
	"strconv"

	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/okian/numerai-exporter/internal/domain/rollup"
	"github.com/okian/numerai-exporter/internal/domain/scoring"
	"github.com/shopspring/decimal"
)

// Default emitter configuration constants.
const (
	defaultNamespace        = "numerai"
	defaultSubsystem        = "signals"
	defaultPercentilePlaces = 1
	defaultValuePlaces      = 4
	currencyUSD             = "usd"
)

// Emitter produces observations for one tournament. It holds no mutable
// state and is safe for concurrent use.
type Emitter struct {
	namespace        string
	subsystem        string
	policy           scoring.Policy
	periods          []model.Period
	percentilePlaces int32
	valuePlaces      int32
}

// New creates an Emitter with configuration options.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		policy:           scoring.DefaultPolicy(),
		periods:          model.DefaultPeriods(),
		percentilePlaces: defaultPercentilePlaces,
		valuePlaces:      defaultValuePlaces,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Families lists the families this emitter can produce.
func (e *Emitter) Families() []Family {
	return Families(e.namespace, e.subsystem)
}

// Name returns the fully qualified name of a tournament family.
func (e *Emitter) Name(family string) string {
	return FQName(e.namespace, e.subsystem, family)
}

// Model emits every round and period observation of one model. Records are
// normalized to most-recent-first before the series are built.
func (e *Emitter) Model(modelName string, records []model.RoundRecord) []model.Observation {
	records = model.SortRounds(records)

	var out []model.Observation
	for i := range records {
		out = append(out, e.Round(modelName, &records[i])...)
	}

	maps := rollup.Build(records, e.policy)
	for _, st := range model.RoundStates() {
		for _, p := range e.periods {
			out = append(out, e.Period(maps, modelName, st, p)...)
		}
	}
	return out
}

// Round emits the observations of a single round.
func (e *Emitter) Round(modelName string, rec *model.RoundRecord) []model.Observation {
	status := string(rec.State())
	round := strconv.Itoa(rec.RoundNumber)
	labels := func() map[string]string {
		return map[string]string{model.LabelModel: modelName, model.LabelRound: round, model.LabelStatus: status}
	}

	var out []model.Observation
	scores := e.policy.Extract(rec.SubmissionScores)
	for _, name := range scores.Names() {
		obs, ok := scores.Lookup(name)
		if !ok {
			continue
		}
		pl := labels()
		pl[model.LabelScoreName] = name
		vl := labels()
		vl[model.LabelScoreName] = name
		out = append(out,
			e.observation(ScorePercentile, pl, obs.Percentile),
			e.observation(ScoreValue, vl, obs.Value),
		)
	}

	alpha, okA := scores.Lookup(scoring.ScoreAlpha)
	mpc, okM := scores.Lookup(scoring.ScoreMPC)
	if okA && okM && rec.RoundPayoutFactor.Valid {
		r, _ := scoring.ComputeRatios(&alpha.Value, &mpc.Value, &rec.RoundPayoutFactor.Decimal)
		out = append(out,
			e.observation(PayoutRatioExPF, labels(), r.ExPF),
			e.observation(PayoutRatio, labels(), r.Ratio),
		)
	}

	if e.policy.Present(rec.AtRisk) {
		out = append(out, e.observation(AtRisk, labels(), rec.AtRisk.Decimal))
	}
	// Payouts are repeated on every score entry of a round; the first is enough.
	if len(rec.SubmissionScores) > 0 {
		first := rec.SubmissionScores[0]
		if e.policy.Present(first.PayoutPending) {
			out = append(out, e.observation(PayoutPending, labels(), first.PayoutPending.Decimal))
		}
		if e.policy.Present(first.PayoutSettled) {
			out = append(out, e.observation(PayoutSettled, labels(), first.PayoutSettled.Decimal))
		}
	}
	if e.policy.Present(rec.RoundPayoutFactor) {
		out = append(out, e.observation(PayoutFactor, labels(), rec.RoundPayoutFactor.Decimal))
	}
	if e.policy.Present(rec.PrevWeekTurnoverMax) {
		out = append(out, e.observation(Turnover, labels(), rec.PrevWeekTurnoverMax.Decimal))
	}
	return out
}

// Period emits the trailing means of one status over one period. Each
// metric is dropped on its own when its window is empty.
func (e *Emitter) Period(maps *rollup.MeanMaps, modelName string, st model.RoundState, p model.Period) []model.Observation {
	st.MustValid()
	status := string(st)
	period := p.Label()
	labels := func() map[string]string {
		return map[string]string{model.LabelModel: modelName, model.LabelPeriod: period, model.LabelStatus: status}
	}
	scoreLabels := func(score string) map[string]string {
		l := labels()
		l[model.LabelScoreName] = score
		return l
	}

	var out []model.Observation
	percentiles := maps.Percentiles[st]
	for _, score := range percentiles.Names() {
		if mean, ok := rollup.Mean(percentiles[score], p, e.percentilePlaces); ok {
			out = append(out, e.observation(Mean(ScorePercentile), scoreLabels(score), mean))
		}
	}
	values := maps.Values[st]
	for _, score := range values.Names() {
		if mean, ok := rollup.Mean(values[score], p, e.valuePlaces); ok {
			out = append(out, e.observation(Mean(ScoreValue), scoreLabels(score), mean))
		}
	}

	alpha := rollup.MeanPtr(values[scoring.ScoreAlpha], p, e.valuePlaces)
	mpc := rollup.MeanPtr(values[scoring.ScoreMPC], p, e.valuePlaces)
	payoutFactor := rollup.MeanPtr(maps.PayoutFactor[st], p, e.valuePlaces)
	atRisk := rollup.MeanPtr(maps.AtRisk[st], p, e.valuePlaces)
	turnover := rollup.MeanPtr(maps.Turnover[st], p, e.valuePlaces)

	if r, ok := scoring.ComputeRatios(alpha, mpc, payoutFactor); ok {
		out = append(out,
			e.observation(Mean(PayoutRatioExPF), labels(), r.ExPF),
			e.observation(Mean(PayoutRatio), labels(), r.Ratio),
		)
	}
	if atRisk != nil {
		out = append(out, e.observation(Mean(AtRisk), labels(), *atRisk))
	}
	if payoutFactor != nil {
		out = append(out, e.observation(Mean(PayoutFactor), labels(), *payoutFactor))
	}
	if turnover != nil {
		out = append(out, e.observation(Mean(Turnover), labels(), *turnover))
	}
	return out
}

// LatestRound emits the tournament's latest round number.
func (e *Emitter) LatestRound(round int) model.Observation {
	return model.Observation{Name: e.Name(LatestRound), Labels: map[string]string{}, Value: float64(round)}
}

// NMRPrice emits the NMR price in USD. The family is shared by every
// tournament, so it carries no subsystem.
func (e *Emitter) NMRPrice(priceUSD decimal.Decimal) model.Observation {
	return model.Observation{
		Name:   FQName(e.namespace, "", NMRPrice),
		Labels: map[string]string{model.LabelCurrency: currencyUSD},
		Value:  priceUSD.InexactFloat64(),
	}
}

func (e *Emitter) observation(family string, labels map[string]string, v decimal.Decimal) model.Observation {
	return model.Observation{Name: e.Name(family), Labels: labels, Value: v.InexactFloat64()}
}
