// Package review orchestrates review sessions: it selects the items a learner
// should see, serves them one at a time, applies the scheduling model to each
// rating and records an immutable review log entry alongside every state
// update.
package review

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// Scope selects which of a learner's words enter a session.
type Scope string

const (
	// ScopeAll reviews every word the learner owns.
	ScopeAll Scope = "all"
	// ScopeRecommended reviews only words that are due, oldest due first.
	ScopeRecommended Scope = "recommended"
)

var (
	// ErrNoItemsAvailable means the scope selected an empty set. This is a
	// normal terminal condition, not a failure.
	ErrNoItemsAvailable = errors.New("review: no items available")

	// ErrSessionComplete means a rating was submitted after the last item.
	ErrSessionComplete = errors.New("review: session already complete")

	// ErrUnknownScope means the scope value is not one of the defined scopes.
	ErrUnknownScope = errors.New("review: unknown scope")
)

// Store is the persistence collaborator for sessions. CommitReview must apply
// the word's new scheduling state and append the log entry as one atomic unit.
type Store interface {
	WordsForUser(ctx context.Context, userID int64) ([]models.Word, error)
	DueWordsForUser(ctx context.Context, userID int64, now time.Time) ([]models.Word, error)
	WordByID(ctx context.Context, id int64) (*models.Word, error)
	CommitReview(ctx context.Context, word *models.Word, entry *models.ReviewLog) error
}

// WeightSource supplies the learner's personal weight vector, or nil when the
// learner still uses the defaults.
type WeightSource interface {
	Weights(ctx context.Context, userID int64) ([]float64, error)
}

// Session is the transient state of one review sitting. The item sequence is
// frozen at start: words becoming due or not-due mid-session do not change it.
// A session is single-threaded; it is not safe for concurrent use.
type Session struct {
	UserID    int64     `json:"user_id"`
	WordIDs   []int64   `json:"word_ids"`
	Position  int       `json:"position"`
	Correct   int       `json:"correct"`
	Incorrect int       `json:"incorrect"`
	StartedAt time.Time `json:"started_at"`
}

// IsComplete reports whether the cursor has passed the last selected item.
func (s *Session) IsComplete() bool {
	return s.Position >= len(s.WordIDs)
}

// Remaining returns the number of items not yet rated.
func (s *Session) Remaining() int {
	if s.IsComplete() {
		return 0
	}
	return len(s.WordIDs) - s.Position
}

// Total returns the number of items selected for the session.
func (s *Session) Total() int {
	return len(s.WordIDs)
}

// Orchestrator runs review sessions against a Store and WeightSource.
type Orchestrator struct {
	store   Store
	weights WeightSource
	now     func() time.Time
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(store Store, weights WeightSource) *Orchestrator {
	return &Orchestrator{
		store:   store,
		weights: weights,
		now:     time.Now,
	}
}

// StartSession selects the learner's words for the given scope and freezes
// them into a new session. Words are ordered by due date ascending with ties
// broken by word ID, so repeated calls without intervening reviews yield the
// same sequence. Returns ErrNoItemsAvailable when the scope yields nothing.
func (o *Orchestrator) StartSession(ctx context.Context, userID int64, scope Scope) (*Session, error) {
	now := o.now()

	var words []models.Word
	var err error
	switch scope {
	case ScopeAll:
		words, err = o.store.WordsForUser(ctx, userID)
	case ScopeRecommended:
		words, err = o.store.DueWordsForUser(ctx, userID, now)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select words for user %d: %v", userID, err)
	}
	if len(words) == 0 {
		return nil, ErrNoItemsAvailable
	}

	// Deterministic order regardless of backend: oldest due first, word ID
	// as tie-breaker.
	sort.Slice(words, func(i, j int) bool {
		if !words[i].DueAt.Equal(words[j].DueAt) {
			return words[i].DueAt.Before(words[j].DueAt)
		}
		return words[i].ID < words[j].ID
	})

	ids := make([]int64, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}

	return &Session{
		UserID:    userID,
		WordIDs:   ids,
		StartedAt: now,
	}, nil
}

// CurrentWord returns the word at the session cursor.
func (o *Orchestrator) CurrentWord(ctx context.Context, s *Session) (*models.Word, error) {
	if s.IsComplete() {
		return nil, ErrSessionComplete
	}
	return o.store.WordByID(ctx, s.WordIDs[s.Position])
}

// SubmitRating applies the rating to the current item: it computes the new
// scheduling state, persists it together with exactly one review log entry
// (both atomic, via Store.CommitReview), advances the cursor and updates the
// session counters. The new scheduling state is returned.
func (o *Orchestrator) SubmitRating(ctx context.Context, s *Session, rating fsrs.Rating, latency time.Duration) (fsrs.State, error) {
	if s.IsComplete() {
		return fsrs.State{}, ErrSessionComplete
	}

	wordID := s.WordIDs[s.Position]
	word, err := o.store.WordByID(ctx, wordID)
	if err != nil {
		return fsrs.State{}, fmt.Errorf("failed to load word %d: %v", wordID, err)
	}

	weights, err := o.weights.Weights(ctx, s.UserID)
	if err != nil {
		return fsrs.State{}, fmt.Errorf("failed to load weights for user %d: %v", s.UserID, err)
	}

	now := o.now()
	var cur *fsrs.State
	if word.ReviewCount > 0 {
		cur = &fsrs.State{
			Stability:      word.Stability,
			Difficulty:     word.Difficulty,
			Due:            word.DueAt,
			ReviewCount:    word.ReviewCount,
			LastReviewedAt: word.LastReviewedAt,
		}
	}

	next, err := fsrs.NextState(cur, rating, now, weights)
	if err != nil {
		// Invalid rating or corrupt weight vector: surface loudly, change nothing.
		return fsrs.State{}, err
	}

	var elapsedDays float64
	if cur != nil && cur.LastReviewedAt != nil {
		elapsedDays = now.Sub(*cur.LastReviewedAt).Hours() / 24.0
	}

	word.Stability = next.Stability
	word.Difficulty = next.Difficulty
	word.DueAt = next.Due
	word.ReviewCount = next.ReviewCount
	word.LastReviewedAt = next.LastReviewedAt

	entry := &models.ReviewLog{
		UserID:      s.UserID,
		WordID:      wordID,
		Rating:      int(rating),
		ReviewedAt:  now,
		ElapsedDays: elapsedDays,
		LatencyMS:   latency.Milliseconds(),
	}

	if err := o.store.CommitReview(ctx, word, entry); err != nil {
		return fsrs.State{}, fmt.Errorf("failed to commit review of word %d: %v", wordID, err)
	}

	if rating == fsrs.Again {
		s.Incorrect++
	} else {
		s.Correct++
	}
	s.Position++

	return next, nil
}
