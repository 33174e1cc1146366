// internal/game/scoring.go
//
// Scoring policy: pure functions from a guess's rank (plus optional round
// context) to a point delta and a display indicator.
//
// The base score is tiered by ascending rank thresholds. Two optional
// modifiers compose with it:
//   - regression penalty: once the round has prior guesses, a guess ranking
//     worse than the mean of the best K ranks so far scores a fixed negative
//     value instead of its tier (discourages flailing after the group has
//     converged);
//   - best-word bonus: a guess that strictly beats the best rank seen so far
//     earns a small fixed bonus on top of its tier.
//
// Thresholds and values are configuration, not hard-coded business law.

package game

import "sort"

// Tier is one scoring bracket: any rank ≤ MaxRank (and above the previous
// tier) is worth Points and displays Indicator.
type Tier struct {
	MaxRank   int
	Points    int
	Indicator string
}

// ScoringConfig holds the tier table and the optional modifiers.
// Tiers must be sorted ascending by MaxRank.
type ScoringConfig struct {
	Tiers           []Tier
	FrozenPoints    int    // score beyond the last tier ("frozen" guesses)
	FrozenIndicator string

	RegressionPenalty int // negative override value; 0 disables the modifier
	RegressionWindow  int // best-K window for the mean
	BestBonus         int // flat bonus for a new best rank; 0 disables
}

// DefaultScoring returns the production tier table and modifiers.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Tiers: []Tier{
			{MaxRank: 1, Points: 100, Indicator: "🎉"},
			{MaxRank: 10, Points: 15, Indicator: "🔥"},
			{MaxRank: 50, Points: 10, Indicator: "🌡️"},
			{MaxRank: 100, Points: 5, Indicator: "☀️"},
			{MaxRank: 500, Points: 2, Indicator: "🌤️"},
			{MaxRank: 1000, Points: 1, Indicator: "❄️"},
			{MaxRank: 10000, Points: 0, Indicator: "🥶"},
		},
		FrozenPoints:    -1,
		FrozenIndicator: "💀",

		// Context modifiers ship disabled; rooms that want them opt in via
		// REGRESSION_PENALTY / BEST_WORD_BONUS.
		RegressionPenalty: 0,
		RegressionWindow:  10,
		BestBonus:         0,
	}
}

// Points maps a rank to its tier score (no context modifiers).
func (sc ScoringConfig) Points(rank int) int {
	for _, t := range sc.Tiers {
		if rank <= t.MaxRank {
			return t.Points
		}
	}
	return sc.FrozenPoints
}

// Indicator maps a rank to its display symbol using the same thresholds.
func (sc ScoringConfig) Indicator(rank int) string {
	for _, t := range sc.Tiers {
		if rank <= t.MaxRank {
			return t.Indicator
		}
	}
	return sc.FrozenIndicator
}

// BasePoints computes the context-aware base score for a new guess:
// the tier score, unless the regression penalty fires against the round's
// prior guesses.
func (sc ScoringConfig) BasePoints(rank int, prior []Guess) int {
	if sc.RegressionPenalty != 0 && len(prior) > 0 {
		if float64(rank) > sc.meanBestRank(prior) {
			return sc.RegressionPenalty
		}
	}
	return sc.Points(rank)
}

// Bonus returns the best-word bonus when rank strictly improves on bestRank
// (the best rank seen so far; 0 means no guesses yet, which earns nothing).
func (sc ScoringConfig) Bonus(rank, bestRank int) int {
	if sc.BestBonus != 0 && bestRank > 0 && rank < bestRank {
		return sc.BestBonus
	}
	return 0
}

// meanBestRank averages the best RegressionWindow ranks among prior guesses.
func (sc ScoringConfig) meanBestRank(prior []Guess) float64 {
	ranks := make([]int, len(prior))
	for i, g := range prior {
		ranks[i] = g.Rank
	}
	sort.Ints(ranks)
	k := sc.RegressionWindow
	if k <= 0 || k > len(ranks) {
		k = len(ranks)
	}
	sum := 0
	for _, r := range ranks[:k] {
		sum += r
	}
	return float64(sum) / float64(k)
}
