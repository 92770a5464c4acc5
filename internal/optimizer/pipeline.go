package optimizer

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// DefaultRunHour is the local wall-clock hour of the daily optimization run.
const DefaultRunHour = 2

// UserSource lists the learners to optimize.
type UserSource interface {
	UserIDs(ctx context.Context) ([]int64, error)
}

// LogSource loads a learner's full review history, ordered by occurrence.
type LogSource interface {
	ReviewLogsForUser(ctx context.Context, userID int64) ([]models.ReviewLog, error)
}

// WeightStore reads and atomically replaces a learner's weight vector.
// Weights returns nil for a learner that has no personal vector yet.
type WeightStore interface {
	Weights(ctx context.Context, userID int64) ([]float64, error)
	SaveWeights(ctx context.Context, userID int64, weights []float64) error
}

// Runner is the per-learner optimization call, satisfied by *Adapter.
type Runner interface {
	Optimize(ctx context.Context, userID int64, logs []models.ReviewLog, current []float64) ([]float64, error)
}

// Pipeline is the long-lived background task that re-fits every learner's
// weight vector once per day. It has two states: idle (waiting for the next
// run hour) and running (iterating learners). One learner's failure never
// aborts the batch.
type Pipeline struct {
	users   UserSource
	logs    LogSource
	weights WeightStore
	runner  Runner
	hour    int
	loc     *time.Location
}

// NewPipeline creates a Pipeline that runs daily at the given local hour.
// Hours outside [0, 23] fall back to DefaultRunHour.
func NewPipeline(users UserSource, logs LogSource, weights WeightStore, runner Runner, hour int) *Pipeline {
	if hour < 0 || hour > 23 {
		hour = DefaultRunHour
	}
	return &Pipeline{
		users:   users,
		logs:    logs,
		weights: weights,
		runner:  runner,
		hour:    hour,
		loc:     time.Local,
	}
}

// Run blocks until ctx is cancelled, triggering one batch per day at the
// configured hour. The delay to the next trigger is recomputed from the
// current time on every iteration, so clock adjustments or slow batches
// self-correct to the next boundary instead of drifting. A cancelled run is
// not retried; the next attempt waits for the next natural trigger.
func (p *Pipeline) Run(ctx context.Context) {
	log.Printf("optimization pipeline started, daily run at %02d:00", p.hour)
	for {
		next := nextRunAt(time.Now().In(p.loc), p.hour)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("optimization pipeline stopped")
			return
		case <-timer.C:
		}

		p.RunOnce(ctx)
	}
}

// RunOnce processes every learner with at least one review log exactly once.
// Failures are isolated per learner and logged with enough context to retry
// manually.
func (p *Pipeline) RunOnce(ctx context.Context) {
	ids, err := p.users.UserIDs(ctx)
	if err != nil {
		log.Printf("optimization run aborted: failed to list users: %v", err)
		return
	}

	var updated, skipped, failed int
	for _, id := range ids {
		select {
		case <-ctx.Done():
			log.Printf("optimization run cancelled: %d updated, %d skipped, %d failed", updated, skipped, failed)
			return
		default:
		}

		logs, err := p.logs.ReviewLogsForUser(ctx, id)
		if err != nil {
			failed++
			log.Printf("user %d: failed to load review log: %v", id, err)
			continue
		}
		if len(logs) == 0 {
			skipped++
			continue
		}

		current, err := p.weights.Weights(ctx, id)
		if err != nil {
			failed++
			log.Printf("user %d: failed to load weights: %v", id, err)
			continue
		}

		fitted, err := p.runner.Optimize(ctx, id, logs, current)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				skipped++
				log.Printf("user %d: not enough review data yet, keeping current weights", id)
				continue
			}
			if errors.Is(err, context.Canceled) {
				log.Printf("optimization run cancelled: %d updated, %d skipped, %d failed", updated, skipped, failed)
				return
			}
			failed++
			log.Printf("user %d: optimization failed: %v", id, err)
			continue
		}

		// The adapter already validated arity, but never commit an invalid
		// vector regardless of where it came from.
		if err := fsrs.ValidateWeights(fitted); err != nil {
			failed++
			log.Printf("user %d: refusing to store weights: %v", id, err)
			continue
		}
		if err := p.weights.SaveWeights(ctx, id, fitted); err != nil {
			failed++
			log.Printf("user %d: failed to store weights: %v", id, err)
			continue
		}
		updated++
	}

	log.Printf("optimization run complete: %d updated, %d skipped, %d failed", updated, skipped, failed)
}

// nextRunAt returns the next occurrence of hour:00 strictly after now.
func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
