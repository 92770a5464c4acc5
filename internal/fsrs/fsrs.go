// Package fsrs implements the FSRS v6 spaced-repetition model: a pure function
// from (scheduling state, rating, time, weight vector) to the next scheduling
// state. The curve shape is governed entirely by the 21-entry weight vector so
// that a learner's vector can be replaced wholesale by the optimizer.
package fsrs

import (
	"fmt"
	"math"
	"time"
)

const (
	// desiredRetention is the recall probability targeted when scheduling
	// the next review. R(interval, S) = desiredRetention by construction.
	desiredRetention = 0.9

	// maxIntervalDays caps the next interval at 100 years.
	maxIntervalDays = 36500

	minStability = 0.001
)

// State is the scheduling state embedded in a learnable item.
type State struct {
	Stability      float64    // days until retrievability decays to desiredRetention; > 0 after any review
	Difficulty     float64    // intrinsic hardness in [1, 10]
	Due            time.Time  // next scheduled review
	ReviewCount    int        // number of reviews recorded
	LastReviewedAt *time.Time // nil before the first review
}

// Model evaluates the FSRS curves for a fixed weight vector. Constants derived
// from the vector are precomputed once, which matters when the optimizer
// replays thousands of reviews per loss evaluation.
type Model struct {
	w      []float64
	decay  float64 // -w[20]
	factor float64 // 0.9^(1/decay) - 1, so R(S, S) = 0.9
}

// NewModel creates a Model for the given weight vector. A nil vector selects
// the built-in defaults; any other vector must have exactly NumWeights finite
// entries or ErrInvalidWeights is returned.
func NewModel(weights []float64) (*Model, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	w := make([]float64, NumWeights)
	copy(w, weights)
	decay := -w[20]
	return &Model{
		w:      w,
		decay:  decay,
		factor: math.Pow(0.9, 1.0/decay) - 1.0,
	}, nil
}

// NextState applies a single review and returns the new scheduling state.
// It is pure and deterministic: identical inputs always produce identical
// output, and the input state is never mutated. cur may be nil for an item
// that has never been reviewed.
func NextState(cur *State, rating Rating, now time.Time, weights []float64) (State, error) {
	m, err := NewModel(weights)
	if err != nil {
		return State{}, err
	}
	return m.NextState(cur, rating, now)
}

// NextState is the method form of the package-level NextState for callers
// that evaluate many reviews against one vector.
func (m *Model) NextState(cur *State, rating Rating, now time.Time) (State, error) {
	if !rating.IsValid() {
		return State{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	var next State
	if cur == nil || cur.ReviewCount == 0 {
		// First review: initialize S and D from the rating alone.
		next.Stability = m.initStability(rating)
		next.Difficulty = m.initDifficulty(rating, true)
	} else {
		var elapsedDays float64
		if cur.LastReviewedAt != nil {
			elapsedDays = now.Sub(*cur.LastReviewedAt).Hours() / 24.0
		}
		if elapsedDays < 1 {
			// Same-day review.
			next.Stability = m.shortTermStability(cur.Stability, rating)
		} else {
			r := m.Retrievability(elapsedDays, cur.Stability)
			next.Stability = m.nextStability(cur.Difficulty, cur.Stability, r, rating)
		}
		next.Difficulty = m.nextDifficulty(cur.Difficulty, rating)
		next.ReviewCount = cur.ReviewCount
	}

	next.ReviewCount++
	days := m.Interval(next.Stability)
	next.Due = now.Add(time.Duration(days) * 24 * time.Hour)
	reviewed := now
	next.LastReviewedAt = &reviewed
	return next, nil
}

// Retrievability computes R(t, S) = (1 + factor * t / S) ^ decay, the
// probability that an item with stability S is still recalled t days after
// its last review.
func (m *Model) Retrievability(elapsedDays, stability float64) float64 {
	if stability < minStability {
		stability = minStability
	}
	return math.Pow(1+m.factor*elapsedDays/stability, m.decay)
}

// Interval returns the next review interval in days for the given stability:
// round((S / factor) * (R^(1/decay) - 1)), clamped to [1, maxIntervalDays].
// It is monotonically increasing in stability.
func (m *Model) Interval(stability float64) int {
	ivl := stability / m.factor * (math.Pow(desiredRetention, 1.0/m.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > maxIntervalDays {
		days = maxIntervalDays
	}
	return days
}

// initStability returns the initial stability S₀(G) = clamp_s(w[G-1]).
func (m *Model) initStability(r Rating) float64 {
	return clampS(m.w[r-1])
}

// initDifficulty returns the initial difficulty D₀(G) = w[4] - e^(w[5]*(G-1)) + 1.
// When clamp is true the result is clamped to [1, 10].
func (m *Model) initDifficulty(r Rating, clamp bool) float64 {
	d := m.w[4] - math.Exp(m.w[5]*float64(r-1)) + 1
	if clamp {
		return clampD(d)
	}
	return d
}

// shortTermStability computes the same-day review stability.
// SInc = e^(w[17] * (G - 3 + w[18])) * S^(-w[19]); SInc >= 1 for Good/Easy.
func (m *Model) shortTermStability(stability float64, r Rating) float64 {
	sInc := math.Exp(m.w[17]*(float64(r)-3+m.w[18])) * math.Pow(stability, -m.w[19])
	if r == Good || r == Easy {
		sInc = math.Max(sInc, 1.0)
	}
	return clampS(stability * sInc)
}

// nextStability dispatches to the recall or forget branch.
func (m *Model) nextStability(d, s, r float64, rating Rating) float64 {
	if rating == Again {
		return clampS(m.nextForgetStability(d, s, r))
	}
	return clampS(m.nextRecallStability(d, s, r, rating))
}

// nextRecallStability computes stability after a successful recall:
// S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^((1-R)*w[10]) - 1) * hardPenalty * easyBonus)
func (m *Model) nextRecallStability(d, s, r float64, rating Rating) float64 {
	hardPenalty := 1.0
	if rating == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if rating == Easy {
		easyBonus = m.w[16]
	}
	return s * (1 + math.Exp(m.w[8])*
		(11-d)*
		math.Pow(s, -m.w[9])*
		(math.Exp((1-r)*m.w[10])-1)*
		hardPenalty*easyBonus)
}

// nextForgetStability computes stability after forgetting:
// min(w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^((1-R)*w[14]), S / e^(w[17]*w[18]))
func (m *Model) nextForgetStability(d, s, r float64) float64 {
	long := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-r)*m.w[14])
	short := s / math.Exp(m.w[17]*m.w[18])
	return math.Min(long, short)
}

// nextDifficulty computes the updated difficulty with linear damping and mean
// reversion toward D₀(Easy).
func (m *Model) nextDifficulty(difficulty float64, r Rating) float64 {
	deltaD := -m.w[6] * (float64(r) - 3)
	dPrime := difficulty + (10-difficulty)*deltaD/9
	d0Easy := m.initDifficulty(Easy, false) // mean reversion target, unclamped
	return clampD(m.w[7]*d0Easy + (1-m.w[7])*dPrime)
}

// clampS clamps stability to a minimum of 0.001.
func clampS(s float64) float64 {
	return math.Max(s, minStability)
}

// clampD clamps difficulty to [1, 10].
func clampD(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
