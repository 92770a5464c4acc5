package training

import (
	"math"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
)

// adam implements the Adam optimizer with bias correction.
//
// Update rule:
//
//	m[i] = β1·m[i] + (1-β1)·g[i]
//	v[i] = β2·v[i] + (1-β2)·g[i]²
//	m̂[i] = m[i] / (1 - β1^t)
//	v̂[i] = v[i] / (1 - β2^t)
//	w[i] = w[i] - lr · m̂[i] / (√v̂[i] + ε)
type adam struct {
	lr           float64
	beta1, beta2 float64
	eps          float64
	m, v         [fsrs.NumWeights]float64
	step         int
}

// newAdam creates an Adam optimizer with standard defaults:
// β1=0.9, β2=0.999, ε=1e-8.
func newAdam(lr float64) *adam {
	return &adam{
		lr:    lr,
		beta1: 0.9,
		beta2: 0.999,
		eps:   1e-8,
	}
}

// update applies one Adam step in place.
func (a *adam) update(params, grads []float64) {
	a.step++

	for i := 0; i < fsrs.NumWeights; i++ {
		g := grads[i]
		if g == 0 {
			continue
		}

		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		mHat := a.m[i] / (1 - math.Pow(a.beta1, float64(a.step)))
		vHat := a.v[i] / (1 - math.Pow(a.beta2, float64(a.step)))

		params[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}

// setLR updates the learning rate between steps.
func (a *adam) setLR(lr float64) {
	a.lr = lr
}

// cosineAnnealing implements the cosine annealing learning rate schedule:
// lr_t = 0.5 * lr_max * (1 + cos(π * t / T_max)).
type cosineAnnealing struct {
	lrMax float64
	tMax  int
	t     int
}

func newCosineAnnealing(lrMax float64, tMax int) *cosineAnnealing {
	return &cosineAnnealing{lrMax: lrMax, tMax: tMax}
}

// lr returns the current learning rate.
func (ca *cosineAnnealing) lr() float64 {
	return 0.5 * ca.lrMax * (1 + math.Cos(math.Pi*float64(ca.t)/float64(ca.tMax)))
}

// advance steps the schedule forward.
func (ca *cosineAnnealing) advance() {
	ca.t++
}
