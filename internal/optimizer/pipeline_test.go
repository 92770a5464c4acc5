package optimizer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

type fakeUsers struct {
	ids []int64
	err error
}

func (f *fakeUsers) UserIDs(ctx context.Context) ([]int64, error) {
	return f.ids, f.err
}

type fakeLogs struct {
	logs map[int64][]models.ReviewLog
	errs map[int64]error
}

func (f *fakeLogs) ReviewLogsForUser(ctx context.Context, userID int64) ([]models.ReviewLog, error) {
	if err := f.errs[userID]; err != nil {
		return nil, err
	}
	return f.logs[userID], nil
}

type fakeWeightStore struct {
	current map[int64][]float64
	saved   map[int64][]float64
	saveErr error
}

func newFakeWeightStore() *fakeWeightStore {
	return &fakeWeightStore{
		current: make(map[int64][]float64),
		saved:   make(map[int64][]float64),
	}
}

func (f *fakeWeightStore) Weights(ctx context.Context, userID int64) ([]float64, error) {
	return f.current[userID], nil
}

func (f *fakeWeightStore) SaveWeights(ctx context.Context, userID int64, weights []float64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[userID] = weights
	return nil
}

type fakeRunner struct {
	results map[int64][]float64
	errs    map[int64]error
	calls   []int64
}

func (f *fakeRunner) Optimize(ctx context.Context, userID int64, logs []models.ReviewLog, current []float64) ([]float64, error) {
	f.calls = append(f.calls, userID)
	if err := f.errs[userID]; err != nil {
		return nil, err
	}
	if w, ok := f.results[userID]; ok {
		return w, nil
	}
	return fsrs.DefaultWeights(), nil
}

func someLogs(n int) []models.ReviewLog {
	logs := make([]models.ReviewLog, n)
	for i := range logs {
		logs[i] = models.ReviewLog{WordID: int64(i + 1), Rating: 3, ReviewedAt: testNow.AddDate(0, 0, i)}
	}
	return logs
}

func TestRunOnceIsolatesFailures(t *testing.T) {
	users := &fakeUsers{ids: []int64{1, 2, 3}}
	logs := &fakeLogs{logs: map[int64][]models.ReviewLog{
		1: someLogs(5),
		2: someLogs(5),
		3: someLogs(5),
	}}
	store := newFakeWeightStore()
	runner := &fakeRunner{errs: map[int64]error{
		2: fmt.Errorf("%w: boom", ErrUnavailable),
	}}

	p := NewPipeline(users, logs, store, runner, DefaultRunHour)
	p.RunOnce(context.Background())

	if _, ok := store.saved[1]; !ok {
		t.Error("user 1 not updated")
	}
	if _, ok := store.saved[2]; ok {
		t.Error("failed user 2 was still updated")
	}
	if _, ok := store.saved[3]; !ok {
		t.Error("user 3 not updated after user 2 failed")
	}
}

func TestRunOnceSkipsUsersWithoutLogs(t *testing.T) {
	users := &fakeUsers{ids: []int64{1, 2}}
	logs := &fakeLogs{logs: map[int64][]models.ReviewLog{2: someLogs(3)}}
	store := newFakeWeightStore()
	runner := &fakeRunner{}

	p := NewPipeline(users, logs, store, runner, DefaultRunHour)
	p.RunOnce(context.Background())

	if len(runner.calls) != 1 || runner.calls[0] != 2 {
		t.Errorf("runner called for %v, want only user 2", runner.calls)
	}
}

func TestRunOnceInsufficientDataKeepsWeights(t *testing.T) {
	users := &fakeUsers{ids: []int64{1}}
	logs := &fakeLogs{logs: map[int64][]models.ReviewLog{1: someLogs(2)}}
	store := newFakeWeightStore()
	store.current[1] = fsrs.DefaultWeights()
	runner := &fakeRunner{errs: map[int64]error{1: ErrInsufficientData}}

	p := NewPipeline(users, logs, store, runner, DefaultRunHour)
	p.RunOnce(context.Background())

	if len(store.saved) != 0 {
		t.Errorf("insufficient data still replaced weights: %v", store.saved)
	}
}

func TestRunOnceRefusesInvalidFittedVector(t *testing.T) {
	users := &fakeUsers{ids: []int64{1}}
	logs := &fakeLogs{logs: map[int64][]models.ReviewLog{1: someLogs(5)}}
	store := newFakeWeightStore()
	runner := &fakeRunner{results: map[int64][]float64{1: {1, 2, 3}}}

	p := NewPipeline(users, logs, store, runner, DefaultRunHour)
	p.RunOnce(context.Background())

	if len(store.saved) != 0 {
		t.Errorf("wrong-arity vector was stored: %v", store.saved)
	}
}

func TestRunOnceStopsOnCancel(t *testing.T) {
	users := &fakeUsers{ids: []int64{1, 2}}
	logs := &fakeLogs{logs: map[int64][]models.ReviewLog{
		1: someLogs(3),
		2: someLogs(3),
	}}
	store := newFakeWeightStore()
	runner := &fakeRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(users, logs, store, runner, DefaultRunHour)
	p.RunOnce(ctx)

	if len(runner.calls) != 0 {
		t.Errorf("cancelled run still optimized %v", runner.calls)
	}
}

func TestRunOnceStopsWhenOptimizerReportsCancel(t *testing.T) {
	users := &fakeUsers{ids: []int64{1, 2}}
	logs := &fakeLogs{logs: map[int64][]models.ReviewLog{
		1: someLogs(3),
		2: someLogs(3),
	}}
	store := newFakeWeightStore()
	runner := &fakeRunner{errs: map[int64]error{1: context.Canceled}}

	p := NewPipeline(users, logs, store, runner, DefaultRunHour)
	p.RunOnce(context.Background())

	if len(runner.calls) != 1 {
		t.Errorf("run continued past a cancelled optimization: %v", runner.calls)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	p := NewPipeline(&fakeUsers{}, &fakeLogs{}, newFakeWeightStore(), &fakeRunner{}, DefaultRunHour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestNextRunAt(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{
			"before the hour",
			time.Date(2026, 3, 14, 1, 30, 0, 0, loc), 2,
			time.Date(2026, 3, 14, 2, 0, 0, 0, loc),
		},
		{
			"after the hour",
			time.Date(2026, 3, 14, 9, 0, 0, 0, loc), 2,
			time.Date(2026, 3, 15, 2, 0, 0, 0, loc),
		},
		{
			"exactly on the hour",
			time.Date(2026, 3, 14, 2, 0, 0, 0, loc), 2,
			time.Date(2026, 3, 15, 2, 0, 0, 0, loc),
		},
		{
			"month boundary",
			time.Date(2026, 3, 31, 23, 59, 0, 0, loc), 2,
			time.Date(2026, 4, 1, 2, 0, 0, 0, loc),
		},
	}
	for _, tt := range tests {
		if got := nextRunAt(tt.now, tt.hour); !got.Equal(tt.want) {
			t.Errorf("%s: nextRunAt(%v, %d) = %v, want %v", tt.name, tt.now, tt.hour, got, tt.want)
		}
	}
}

func TestNewPipelineClampsHour(t *testing.T) {
	p := NewPipeline(&fakeUsers{}, &fakeLogs{}, newFakeWeightStore(), &fakeRunner{}, 99)
	if p.hour != DefaultRunHour {
		t.Errorf("hour = %d, want %d", p.hour, DefaultRunHour)
	}
}
