package fsrs

import (
	"fmt"
	"math"
)

// NumWeights is the arity of a weight vector. The optimizer replaces vectors
// wholesale, so every vector in the system has exactly this many entries.
const NumWeights = 21

// defaultWeights are the FSRS v6 default parameter values, used for learners
// who have no personal vector yet.
var defaultWeights = [NumWeights]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w[0..3]  initial stability S₀(G)
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty params
	1.8722, 0.1666, 0.796, 1.4835, // w[8..11] recall stability params
	0.0614, 0.2629, 1.6483, 0.6014, // w[12..15] forget stability params
	1.8729, 0.5425, 0.0912, 0.0658, // w[16..19] easy/short-term params
	0.1542, // w[20] decay exponent
}

// LowerBounds defines the minimum allowed value for each parameter.
var LowerBounds = [NumWeights]float64{
	0.001, 0.001, 0.001, 0.001,
	1.0, 0.001, 0.001, 0.001,
	0.0, 0.0, 0.001, 0.001,
	0.001, 0.001, 0.0, 0.0,
	1.0, 0.0, 0.0, 0.0,
	0.1,
}

// UpperBounds defines the maximum allowed value for each parameter.
var UpperBounds = [NumWeights]float64{
	100.0, 100.0, 100.0, 100.0,
	10.0, 4.0, 4.0, 0.75,
	4.5, 0.8, 3.5, 5.0,
	0.25, 0.9, 4.0, 1.0,
	6.0, 2.0, 2.0, 0.8,
	0.8,
}

// DefaultWeights returns a fresh copy of the default parameter vector.
func DefaultWeights() []float64 {
	w := defaultWeights
	return w[:]
}

// ValidateWeights checks that w has exactly NumWeights finite entries.
// It does not enforce the optimizer's training bounds; a learner's fitted
// vector only needs the right shape to drive the scheduler.
func ValidateWeights(w []float64) error {
	if len(w) != NumWeights {
		return fmt.Errorf("%w: got %d parameters, want %d", ErrInvalidWeights, len(w), NumWeights)
	}
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: w[%d] = %f is not finite", ErrInvalidWeights, i, v)
		}
	}
	return nil
}

// ClampWeights constrains each parameter to [LowerBounds, UpperBounds].
// Used by the optimizer after each gradient step.
func ClampWeights(w []float64) {
	for i := range w {
		if i >= NumWeights {
			break
		}
		if w[i] < LowerBounds[i] {
			w[i] = LowerBounds[i]
		}
		if w[i] > UpperBounds[i] {
			w[i] = UpperBounds[i]
		}
	}
}
