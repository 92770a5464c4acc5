package training

import (
	"sort"
	"time"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
)

// Review is one review event fed to the trainer, as received on the optimizer
// process boundary.
type Review struct {
	WordID     int64
	Rating     fsrs.Rating
	ReviewedAt time.Time
}

// sample is the internal per-review training representation.
type sample struct {
	rating      fsrs.Rating
	elapsedDays float64   // days since previous review of the same word, 0 for the first
	label       float64   // 0 if Again, 1 otherwise
	reviewedAt  time.Time // original timestamp, used to replay the history
}

// buildDataset groups reviews by word and sorts each group by time. Elapsed
// days are recomputed from the timestamps so the trainer never depends on the
// caller's bookkeeping.
func buildDataset(reviews []Review) map[int64][]sample {
	if len(reviews) == 0 {
		return nil
	}

	groups := make(map[int64][]Review)
	for _, r := range reviews {
		groups[r.WordID] = append(groups[r.WordID], r)
	}

	result := make(map[int64][]sample, len(groups))
	for wordID, wordReviews := range groups {
		sort.Slice(wordReviews, func(i, j int) bool {
			return wordReviews[i].ReviewedAt.Before(wordReviews[j].ReviewedAt)
		})

		samples := make([]sample, len(wordReviews))
		for i, r := range wordReviews {
			var elapsed float64
			if i > 0 {
				elapsed = r.ReviewedAt.Sub(wordReviews[i-1].ReviewedAt).Hours() / 24.0
			}
			label := 1.0
			if r.Rating == fsrs.Again {
				label = 0.0
			}
			samples[i] = sample{
				rating:      r.Rating,
				elapsedDays: elapsed,
				label:       label,
				reviewedAt:  r.ReviewedAt,
			}
		}
		result[wordID] = samples
	}

	return result
}

// countCrossDay counts samples with elapsedDays >= 1. Only cross-day reviews
// carry a usable retention signal; the first review of a word never counts.
func countCrossDay(data map[int64][]sample) int {
	count := 0
	for _, samples := range data {
		for _, s := range samples {
			if s.elapsedDays >= 1.0 {
				count++
			}
		}
	}
	return count
}
