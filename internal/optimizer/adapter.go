// Package optimizer delegates FSRS parameter fitting to an external batch
// process and merges successful results back into live state. The process
// boundary is the sole contract: the adapter starts the executable, writes the
// learner's full review history, reads a single result line and enforces a
// timeout. The daily pipeline drives one adapter call per learner.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// Sentinel errors for the process boundary. Check with errors.Is.
var (
	// ErrUnavailable means the external process could not be started.
	ErrUnavailable = errors.New("optimizer: process could not be started")

	// ErrTimeout means no response arrived within the configured timeout.
	ErrTimeout = errors.New("optimizer: timed out waiting for result")

	// ErrProtocol means the process exited non-zero or produced a malformed
	// or wrong-arity response.
	ErrProtocol = errors.New("optimizer: protocol error")

	// ErrInsufficientData means the process reported too few reviews to fit
	// parameters. The learner keeps their current weights.
	ErrInsufficientData = errors.New("optimizer: insufficient review data")
)

// DefaultTimeout bounds a single optimization call. Well under the 24 hour
// cycle so one hung learner cannot eat the daily window.
const DefaultTimeout = 15 * time.Minute

// Adapter invokes the external optimizer executable once per call. It keeps
// no state between calls.
type Adapter struct {
	BinPath string        // path to the fsrs-optimizer executable
	Args    []string      // extra arguments passed to the executable
	Timeout time.Duration // zero selects DefaultTimeout
}

// NewAdapter creates an Adapter for the given executable path.
func NewAdapter(binPath string, timeout time.Duration) *Adapter {
	return &Adapter{BinPath: binPath, Timeout: timeout}
}

// Optimize runs one optimization for a learner: it feeds the full ordered
// review history plus the current weight vector (nil when absent) to the
// external process and parses back a replacement vector. Every failure path
// returns an error and leaves the caller's state untouched; a partial or
// default result is never fabricated locally.
func (a *Adapter) Optimize(ctx context.Context, userID int64, logs []models.ReviewLog, current []float64) ([]float64, error) {
	if current != nil {
		if err := fsrs.ValidateWeights(current); err != nil {
			return nil, err
		}
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var input bytes.Buffer
	enc := json.NewEncoder(&input)
	if err := enc.Encode(Header{Version: ProtocolVersion, Weights: current}); err != nil {
		return nil, fmt.Errorf("optimizer: encode header for user %d: %v", userID, err)
	}
	for _, l := range logs {
		rec := Record{
			WordID:      l.WordID,
			Rating:      l.Rating,
			ReviewedAt:  l.ReviewedAt,
			ElapsedDays: l.ElapsedDays,
		}
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("optimizer: encode review for user %d: %v", userID, err)
		}
	}

	cmd := exec.CommandContext(ctx, a.BinPath, a.Args...)
	cmd.Stdin = &input
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	switch ctx.Err() {
	case context.DeadlineExceeded:
		return nil, fmt.Errorf("%w: user %d after %s", ErrTimeout, userID, timeout)
	case context.Canceled:
		return nil, context.Canceled
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("%w: user %d: exit status %d: %s",
				ErrProtocol, userID, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: user %d: %v", ErrUnavailable, userID, runErr)
	}

	var res Result
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &res); err != nil {
		return nil, fmt.Errorf("%w: user %d: unparseable output: %v", ErrProtocol, userID, err)
	}
	if res.Error == ErrorInsufficientData {
		return nil, fmt.Errorf("%w: user %d", ErrInsufficientData, userID)
	}
	if res.Error != "" {
		return nil, fmt.Errorf("%w: user %d: %s", ErrProtocol, userID, res.Error)
	}
	if err := fsrs.ValidateWeights(res.Weights); err != nil {
		return nil, fmt.Errorf("%w: user %d: %v", ErrProtocol, userID, err)
	}
	return res.Weights, nil
}
