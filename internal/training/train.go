// Package training fits personal FSRS weight vectors to a learner's review
// history with mini-batch gradient descent: numerical central-difference
// gradients of the binary cross-entropy between predicted retrievability and
// observed recall, Adam updates and a cosine annealing learning rate.
//
// It backs the fsrs-optimizer executable and is never linked into the serving
// path; the service only talks to the executable through its process boundary.
package training

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
)

var (
	// ErrNoReviews is returned when no review logs are provided.
	ErrNoReviews = errors.New("training: no review logs provided")

	// ErrInsufficientData is returned when cross-day reviews are fewer than
	// the mini-batch size, too few to fit 21 parameters reliably.
	ErrInsufficientData = errors.New("training: insufficient cross-day reviews for optimization")
)

// Config configures the training process.
// Zero values are replaced with defaults.
type Config struct {
	Epochs        int     // default 5
	MiniBatchSize int     // default 512
	LearningRate  float64 // default 0.04
	MaxSeqLen     int     // default 64; reviews per word beyond this are truncated
}

// Trainer fits FSRS weights from review histories.
type Trainer struct {
	epochs        int
	miniBatchSize int
	learningRate  float64
	maxSeqLen     int
}

// NewTrainer creates a Trainer with the given config, filling zero-valued
// fields with defaults.
func NewTrainer(cfg Config) *Trainer {
	t := &Trainer{
		epochs:        cfg.Epochs,
		miniBatchSize: cfg.MiniBatchSize,
		learningRate:  cfg.LearningRate,
		maxSeqLen:     cfg.MaxSeqLen,
	}
	if t.epochs == 0 {
		t.epochs = 5
	}
	if t.miniBatchSize == 0 {
		t.miniBatchSize = 512
	}
	if t.learningRate == 0 {
		t.learningRate = 0.04
	}
	if t.maxSeqLen == 0 {
		t.maxSeqLen = 64
	}
	return t
}

// Fit optimizes FSRS weights from the given reviews, starting from initial
// (nil selects the built-in defaults). The shuffle order is seeded
// deterministically so identical input always yields identical output.
//
// Returns ErrNoReviews for an empty history and ErrInsufficientData when
// there are fewer cross-day reviews than the mini-batch size. The context
// cancels long-running optimization between gradient steps.
func (t *Trainer) Fit(ctx context.Context, initial []float64, reviews []Review) ([]float64, error) {
	if len(reviews) == 0 {
		return nil, ErrNoReviews
	}
	if initial == nil {
		initial = fsrs.DefaultWeights()
	}
	if err := fsrs.ValidateWeights(initial); err != nil {
		return nil, err
	}

	data := buildDataset(reviews)

	// Truncate each word's history to maxSeqLen.
	for wordID, samples := range data {
		if len(samples) > t.maxSeqLen {
			data[wordID] = samples[:t.maxSeqLen]
		}
	}

	numReviews := countCrossDay(data)
	if numReviews < t.miniBatchSize {
		return nil, ErrInsufficientData
	}

	params := append([]float64(nil), initial...)
	fsrs.ClampWeights(params)

	tMax := int(math.Ceil(float64(numReviews)/float64(t.miniBatchSize))) * t.epochs
	opt := newAdam(t.learningRate)
	ca := newCosineAnnealing(t.learningRate, tMax)
	rng := rand.New(rand.NewSource(42))

	// Sorted word IDs for a deterministic shuffle.
	wordIDs := make([]int64, 0, len(data))
	for id := range data {
		wordIDs = append(wordIDs, id)
	}
	sort.Slice(wordIDs, func(i, j int) bool { return wordIDs[i] < wordIDs[j] })

	bestParams := append([]float64(nil), params...)
	bestLoss := math.Inf(1)

	for epoch := 0; epoch < t.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rng.Shuffle(len(wordIDs), func(i, j int) {
			wordIDs[i], wordIDs[j] = wordIDs[j], wordIDs[i]
		})

		batch := make(map[int64][]sample)
		crossDayCount := 0

		for _, wordID := range wordIDs {
			samples := data[wordID]
			batch[wordID] = samples

			for _, s := range samples {
				if s.elapsedDays >= 1.0 {
					crossDayCount++
				}
			}

			if crossDayCount >= t.miniBatchSize {
				grad := numericalGradient(params, batch)
				opt.setLR(ca.lr())
				opt.update(params, grad)
				fsrs.ClampWeights(params)
				ca.advance()

				batch = make(map[int64][]sample)
				crossDayCount = 0
			}
		}

		// Remaining reviews at the end of the epoch.
		if crossDayCount > 0 {
			grad := numericalGradient(params, batch)
			opt.setLR(ca.lr())
			opt.update(params, grad)
			fsrs.ClampWeights(params)
			ca.advance()
		}

		if epochLoss := batchLoss(params, data); epochLoss < bestLoss {
			bestLoss = epochLoss
			copy(bestParams, params)
		}
	}

	return bestParams, nil
}

// Loss computes the average BCE loss of the given weights over the reviews.
// Useful for comparing a fitted vector against the defaults.
func (t *Trainer) Loss(weights []float64, reviews []Review) float64 {
	return batchLoss(weights, buildDataset(reviews))
}
