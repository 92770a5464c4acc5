package training

import (
	"math"
	"testing"
	"time"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
)

var testBase = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func TestBuildDatasetEmpty(t *testing.T) {
	if data := buildDataset(nil); data != nil {
		t.Errorf("buildDataset(nil) = %v, want nil", data)
	}
}

func TestBuildDatasetGroupsAndSorts(t *testing.T) {
	// Out of order on purpose; elapsed days must come from the sorted order.
	reviews := []Review{
		{WordID: 1, Rating: fsrs.Good, ReviewedAt: testBase.AddDate(0, 0, 3)},
		{WordID: 2, Rating: fsrs.Easy, ReviewedAt: testBase},
		{WordID: 1, Rating: fsrs.Good, ReviewedAt: testBase},
		{WordID: 1, Rating: fsrs.Again, ReviewedAt: testBase.AddDate(0, 0, 10)},
	}

	data := buildDataset(reviews)
	if len(data) != 2 {
		t.Fatalf("got %d words, want 2", len(data))
	}

	w1 := data[1]
	if len(w1) != 3 {
		t.Fatalf("word 1: got %d samples, want 3", len(w1))
	}
	wantElapsed := []float64{0, 3, 7}
	for i, want := range wantElapsed {
		if math.Abs(w1[i].elapsedDays-want) > 1e-9 {
			t.Errorf("word 1 sample %d: elapsed = %f, want %f", i, w1[i].elapsedDays, want)
		}
	}
	if w1[2].label != 0 {
		t.Errorf("Again review labelled %f, want 0", w1[2].label)
	}
	if w1[0].label != 1 || w1[1].label != 1 {
		t.Error("non-Again reviews must be labelled 1")
	}

	if len(data[2]) != 1 || data[2][0].elapsedDays != 0 {
		t.Errorf("word 2: %+v", data[2])
	}
}

func TestCountCrossDay(t *testing.T) {
	reviews := []Review{
		{WordID: 1, Rating: fsrs.Good, ReviewedAt: testBase},
		{WordID: 1, Rating: fsrs.Good, ReviewedAt: testBase.Add(6 * time.Hour)}, // same day
		{WordID: 1, Rating: fsrs.Good, ReviewedAt: testBase.AddDate(0, 0, 2)},
		{WordID: 2, Rating: fsrs.Good, ReviewedAt: testBase},
	}
	if got := countCrossDay(buildDataset(reviews)); got != 1 {
		t.Errorf("countCrossDay = %d, want 1", got)
	}
}
