// Package simulator advances the matchday counter across the three EFL
// tiers: generate fixtures if needed, simulate goals, write results, and
// roll the standings forward — all idempotent and retried under throttle.
package simulator

import (
	"math"
	mathrand "math/rand"
)

// GoalModel produces a home/away goal pair for one fixture. Selected
// once via configuration, per spec.md §9's "specify the distribution in
// configuration" guidance — swapping models never touches the
// orchestration in service.go.
type GoalModel interface {
	Goals(rng *mathrand.Rand) (home, away int)
}

// PoissonGoalModel is the reference rule: independent Poisson draws
// capped at 7, λ_home/λ_away config-tunable.
type PoissonGoalModel struct {
	LambdaHome float64
	LambdaAway float64
	Cap        int
}

func NewPoissonGoalModel(lambdaHome, lambdaAway float64) PoissonGoalModel {
	return PoissonGoalModel{LambdaHome: lambdaHome, LambdaAway: lambdaAway, Cap: 7}
}

func (m PoissonGoalModel) Goals(rng *mathrand.Rand) (int, int) {
	return cappedPoisson(rng, m.LambdaHome, m.Cap), cappedPoisson(rng, m.LambdaAway, m.Cap)
}

// cappedPoisson draws from a Poisson(lambda) distribution via Knuth's
// algorithm and caps the result — mirrors the teacher's hand-rolled
// stochastic helpers (normalish/signedShock) rather than reaching for a
// stats library for one distribution.
func cappedPoisson(rng *mathrand.Rand, lambda float64, maxGoals int) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			break
		}
		k++
		if k >= maxGoals {
			return maxGoals
		}
	}
	return k
}

// UniformGoalModel is spec.md §4.5's "simpler floor(rand()*4) acceptable
// variant" — what matters for correctness is the hard gate downstream,
// not which distribution feeds it.
type UniformGoalModel struct {
	Max int
}

func NewUniformGoalModel() UniformGoalModel { return UniformGoalModel{Max: 4} }

func (m UniformGoalModel) Goals(rng *mathrand.Rand) (int, int) {
	return int(math.Floor(rng.Float64() * float64(m.Max))), int(math.Floor(rng.Float64() * float64(m.Max)))
}

// TierOutcome is the status of one tier's SimulateDay attempt.
type TierOutcome string

const (
	OutcomeOK            TierOutcome = "ok"
	OutcomeAlreadyPlayed TierOutcome = "alreadyPlayed"
	OutcomeAborted       TierOutcome = "aborted"
	OutcomeError         TierOutcome = "error"
	OutcomeSkipped       TierOutcome = "skipped"
)

// TierResult is one tier's report from a single SimulateDay call.
type TierResult struct {
	Tier             string      `json:"efl_tier"`
	Outcome          TierOutcome `json:"outcome"`
	Matchday         int         `json:"matchday"`
	NewSeasonCreated bool        `json:"new_season_created"`
	Reason           string      `json:"reason,omitempty"`
}

// SimulateDayResult aggregates all three tiers; HTTPStatus is 200 when
// every tier is ok/alreadyPlayed, 207 otherwise.
type SimulateDayResult struct {
	Tiers []TierResult `json:"tiers"`
}

func (r SimulateDayResult) HTTPStatus() int {
	for _, t := range r.Tiers {
		if t.Outcome != OutcomeOK && t.Outcome != OutcomeAlreadyPlayed {
			return 207
		}
	}
	return 200
}
