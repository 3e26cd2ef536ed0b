package scoring

import (
	"sort"

	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Well-known score names used by the payout ratios.
const (
	ScoreAlpha = "alpha"
	ScoreMPC   = "mpc"
)

const percentilePlaces = 1

var hundred = decimal.NewFromInt(100)

// Observation is the usable part of one score in one round.
type Observation struct {
	Value decimal.Decimal
	// Percentile is the raw percentile scaled to 0-100 and rounded to one place.
	Percentile decimal.Decimal
}

// Scores maps a score name to its observation. A nil entry means the score was
// reported but carried no usable value or percentile.
type Scores map[string]*Observation

// Lookup returns the observation for name, if present and usable.
func (s Scores) Lookup(name string) (Observation, bool) {
	o, ok := s[name]
	if !ok || o == nil {
		return Observation{}, false
	}
	return *o, true
}

// Names returns every score name in lexical order.
func (s Scores) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extract builds Scores from one round's submission scores. A score is usable
// only when both its value and percentile are present under the policy.
func (p Policy) Extract(in []model.SubmissionScore) Scores {
	out := make(Scores, len(in))
	for i := range in {
		s := &in[i]
		if !p.Present(s.Value) || !p.Present(s.Percentile) {
			out[s.DisplayName] = nil
			continue
		}
		out[s.DisplayName] = &Observation{
			Value:      s.Value.Decimal,
			Percentile: s.Percentile.Decimal.Mul(hundred).RoundBank(percentilePlaces),
		}
	}
	return out
}
