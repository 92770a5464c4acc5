package training

import (
	"math"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
)

const bceClamp = 1e-7

// bceLoss computes the binary cross-entropy loss: -[y*ln(p) + (1-y)*ln(1-p)].
// rPred is clamped to [bceClamp, 1-bceClamp] to avoid log(0).
func bceLoss(rPred, y float64) float64 {
	p := math.Max(bceClamp, math.Min(rPred, 1-bceClamp))
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// batchLoss computes the average BCE loss over all cross-day reviews by
// replaying each word's history with the given weights. The scheduling model
// is deterministic, so the replay is an exact simulation of what the learner
// would have been scheduled with. Returns 0 when there is nothing to score.
func batchLoss(weights []float64, data map[int64][]sample) float64 {
	m, err := fsrs.NewModel(weights)
	if err != nil {
		return 0
	}

	var totalLoss float64
	var count int

	for _, samples := range data {
		var state *fsrs.State
		for _, s := range samples {
			// Score retrievability before applying this review.
			if state != nil && s.elapsedDays >= 1.0 {
				rPred := m.Retrievability(s.elapsedDays, state.Stability)
				totalLoss += bceLoss(rPred, s.label)
				count++
			}

			next, err := m.NextState(state, s.rating, s.reviewedAt)
			if err != nil {
				continue
			}
			state = &next
		}
	}

	if count == 0 {
		return 0
	}
	return totalLoss / float64(count)
}

const gradEps = 1e-5

// numericalGradient computes the gradient of the batch loss w.r.t. each
// parameter using central differences: dL/dw[i] ≈ (L(w+ε) - L(w-ε)) / (2ε).
func numericalGradient(weights []float64, data map[int64][]sample) []float64 {
	grad := make([]float64, fsrs.NumWeights)
	for i := 0; i < fsrs.NumWeights; i++ {
		pPlus := append([]float64(nil), weights...)
		pPlus[i] += gradEps
		pMinus := append([]float64(nil), weights...)
		pMinus[i] -= gradEps

		lPlus := batchLoss(pPlus, data)
		lMinus := batchLoss(pMinus, data)

		grad[i] = (lPlus - lMinus) / (2 * gradEps)
	}
	return grad
}
