package fsrs

import (
	"errors"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-4

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %.6f, want %.6f (diff %.6f)", name, got, want, math.Abs(got-want))
	}
}

// reviewed builds a prior state last reviewed daysAgo days before testNow.
func reviewed(stability, difficulty float64, daysAgo, count int) *State {
	last := testNow.AddDate(0, 0, -daysAgo)
	return &State{
		Stability:      stability,
		Difficulty:     difficulty,
		Due:            testNow,
		ReviewCount:    count,
		LastReviewedAt: &last,
	}
}

func TestNewModelDefaults(t *testing.T) {
	m, err := NewModel(nil)
	if err != nil {
		t.Fatalf("NewModel(nil) returned error: %v", err)
	}
	// decay = -w[20], factor = 0.9^(1/decay) - 1
	assertFloat(t, "decay", m.decay, -defaultWeights[20])
	assertFloat(t, "factor", m.factor, math.Pow(0.9, 1.0/m.decay)-1.0)
}

func TestNewModelWrongArity(t *testing.T) {
	_, err := NewModel([]float64{1, 2, 3})
	if !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("NewModel with 3 weights: got %v, want ErrInvalidWeights", err)
	}
}

func TestNewModelNonFinite(t *testing.T) {
	w := DefaultWeights()
	w[8] = math.NaN()
	if _, err := NewModel(w); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("NewModel with NaN weight: got %v, want ErrInvalidWeights", err)
	}
	w[8] = math.Inf(1)
	if _, err := NewModel(w); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("NewModel with Inf weight: got %v, want ErrInvalidWeights", err)
	}
}

// --- retrievability ---

func TestRetrievabilityAtZero(t *testing.T) {
	m, _ := NewModel(nil)
	// R(0, S) = 1.0
	assertFloat(t, "R(0, 5)", m.Retrievability(0, 5.0), 1.0)
}

func TestRetrievabilityAtStability(t *testing.T) {
	m, _ := NewModel(nil)
	// R(S, S) = 0.9 by definition of stability.
	assertFloat(t, "R(S, S)", m.Retrievability(5.0, 5.0), 0.9)
}

func TestRetrievabilityDecay(t *testing.T) {
	m, _ := NewModel(nil)
	r1 := m.Retrievability(1.0, 5.0)
	r2 := m.Retrievability(10.0, 5.0)
	if r1 <= r2 {
		t.Errorf("R(1, 5) = %.4f should be > R(10, 5) = %.4f", r1, r2)
	}
}

// --- NextState ---

func TestFirstReviewInitializesState(t *testing.T) {
	for _, r := range []Rating{Again, Hard, Good, Easy} {
		st, err := NextState(nil, r, testNow, nil)
		if err != nil {
			t.Fatalf("NextState(nil, %s): %v", r, err)
		}
		if st.Stability <= 0 {
			t.Errorf("%s: stability = %f, want > 0", r, st.Stability)
		}
		if st.Difficulty < 1 || st.Difficulty > 10 {
			t.Errorf("%s: difficulty = %f, want within [1, 10]", r, st.Difficulty)
		}
		if !st.Due.After(testNow) {
			t.Errorf("%s: due %v not after now %v", r, st.Due, testNow)
		}
		if st.ReviewCount != 1 {
			t.Errorf("%s: review count = %d, want 1", r, st.ReviewCount)
		}
		if st.LastReviewedAt == nil || !st.LastReviewedAt.Equal(testNow) {
			t.Errorf("%s: last reviewed = %v, want %v", r, st.LastReviewedAt, testNow)
		}
	}
}

func TestInvalidRating(t *testing.T) {
	for _, r := range []Rating{0, 5, -1} {
		if _, err := NextState(nil, r, testNow, nil); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: got %v, want ErrInvalidRating", int(r), err)
		}
	}
}

func TestStabilityAlwaysPositiveAndDueAfterNow(t *testing.T) {
	states := []*State{
		nil,
		reviewed(0.5, 9.5, 1, 1),
		reviewed(5, 5, 10, 3),
		reviewed(200, 1.2, 400, 12),
		reviewed(1, 5, 0, 2), // same-day
	}
	for _, cur := range states {
		for _, r := range []Rating{Again, Hard, Good, Easy} {
			st, err := NextState(cur, r, testNow, nil)
			if err != nil {
				t.Fatalf("NextState: %v", err)
			}
			if st.Stability <= 0 {
				t.Errorf("stability = %f, want > 0", st.Stability)
			}
			if !st.Due.After(testNow) {
				t.Errorf("due %v not after now", st.Due)
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	cur := reviewed(5, 5, 10, 3)
	a, err := NextState(cur, Good, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NextState(cur, Good, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Stability != b.Stability || a.Difficulty != b.Difficulty || !a.Due.Equal(b.Due) {
		t.Errorf("identical inputs produced different states: %+v vs %+v", a, b)
	}
}

func TestInputStateNotMutated(t *testing.T) {
	cur := reviewed(5, 5, 10, 3)
	before := *cur
	if _, err := NextState(cur, Again, testNow, nil); err != nil {
		t.Fatal(err)
	}
	if cur.Stability != before.Stability || cur.Difficulty != before.Difficulty ||
		cur.ReviewCount != before.ReviewCount || !cur.Due.Equal(before.Due) {
		t.Errorf("input state mutated: %+v vs %+v", *cur, before)
	}
}

// A better rating never schedules the next review earlier than a worse one.
func TestDueMonotonicInRating(t *testing.T) {
	priors := []*State{
		nil,
		reviewed(5, 5, 10, 3),
		reviewed(0.5, 8, 2, 1),
		reviewed(50, 3, 60, 8),
	}
	ratings := []Rating{Again, Hard, Good, Easy}
	for _, cur := range priors {
		var prevDue time.Time
		for i, r := range ratings {
			st, err := NextState(cur, r, testNow, nil)
			if err != nil {
				t.Fatal(err)
			}
			if i > 0 && st.Due.Before(prevDue) {
				t.Errorf("due for %s (%v) earlier than for %s (%v)", r, st.Due, ratings[i-1], prevDue)
			}
			prevDue = st.Due
		}
	}
}

// A first review rated Again must produce strictly lower stability than the
// same item rated Good.
func TestFirstReviewAgainBelowGood(t *testing.T) {
	cur := &State{Stability: 1, ReviewCount: 0, Due: testNow}

	again, err := NextState(cur, Again, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	good, err := NextState(cur, Good, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.Stability >= good.Stability {
		t.Errorf("Again stability %f not below Good stability %f", again.Stability, good.Stability)
	}
}

func TestCrossDayForgetReducesStability(t *testing.T) {
	cur := reviewed(10, 5, 12, 4)
	st, err := NextState(cur, Again, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Stability >= cur.Stability {
		t.Errorf("Again: stability %f did not drop below %f", st.Stability, cur.Stability)
	}
	if st.Difficulty <= cur.Difficulty {
		t.Errorf("Again: difficulty %f did not rise above %f", st.Difficulty, cur.Difficulty)
	}
}

func TestCrossDayRecallGrowsStability(t *testing.T) {
	cur := reviewed(5, 5, 10, 3)
	st, err := NextState(cur, Good, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Stability <= cur.Stability {
		t.Errorf("Good: stability %f did not grow beyond %f", st.Stability, cur.Stability)
	}
}

func TestSameDayGoodKeepsStability(t *testing.T) {
	cur := reviewed(5, 5, 0, 3)
	st, err := NextState(cur, Good, testNow, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st.Stability < cur.Stability {
		t.Errorf("same-day Good: stability %f dropped below %f", st.Stability, cur.Stability)
	}
}

func TestIntervalMonotonicInStability(t *testing.T) {
	m, _ := NewModel(nil)
	prev := 0
	for _, s := range []float64{0.1, 1, 5, 30, 365, 10000} {
		ivl := m.Interval(s)
		if ivl < 1 {
			t.Errorf("Interval(%f) = %d, want >= 1", s, ivl)
		}
		if ivl < prev {
			t.Errorf("Interval(%f) = %d decreased from %d", s, ivl, prev)
		}
		prev = ivl
	}
}

// A custom same-arity vector must drive the model without complaint: the
// optimizer replaces vectors wholesale.
func TestCustomWeightVector(t *testing.T) {
	w := DefaultWeights()
	w[2] = 3.5 // initial stability for Good
	st, err := NextState(nil, Good, testNow, w)
	if err != nil {
		t.Fatal(err)
	}
	assertFloat(t, "S0(Good)", st.Stability, 3.5)
}
