// Command fsrs-optimizer fits a personal FSRS weight vector from a review
// history. It is invoked as a single-shot batch process: a JSON header line
// followed by one JSON review per line on stdin, one JSON result line on
// stdout. When the history is too small to fit parameters it reports
// {"error":"insufficient_data"} and exits 0.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/optimizer"
	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/training"
)

var (
	epochs        int
	miniBatchSize int
	learningRate  float64
	maxSeqLen     int
)

var rootCmd = &cobra.Command{
	Use:   "fsrs-optimizer",
	Short: "Fit personal FSRS weights from a review history",
	Long: `fsrs-optimizer reads an optimization request on stdin and writes the
fitted 21-entry weight vector as a single JSON line on stdout.

The request is JSON Lines: a header {"version":1,"weights":[...]} (weights
null for a learner without a personal vector), then one review per line:
{"word_id":1,"rating":3,"reviewed_at":"2026-01-02T15:04:05Z","elapsed_days":1.5}`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func main() {
	rootCmd.Flags().IntVar(&epochs, "epochs", 0, "training epochs (0 = default)")
	rootCmd.Flags().IntVar(&miniBatchSize, "mini-batch-size", 0, "cross-day reviews per gradient step (0 = default)")
	rootCmd.Flags().Float64Var(&learningRate, "learning-rate", 0, "Adam learning rate (0 = default)")
	rootCmd.Flags().IntVar(&maxSeqLen, "max-seq-len", 0, "reviews kept per word (0 = default)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fsrs-optimizer: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	header, reviews, err := readRequest(os.Stdin)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trainer := training.NewTrainer(training.Config{
		Epochs:        epochs,
		MiniBatchSize: miniBatchSize,
		LearningRate:  learningRate,
		MaxSeqLen:     maxSeqLen,
	})

	out := json.NewEncoder(os.Stdout)

	weights, err := trainer.Fit(ctx, header.Weights, reviews)
	if err != nil {
		if errors.Is(err, training.ErrNoReviews) || errors.Is(err, training.ErrInsufficientData) {
			return out.Encode(optimizer.Result{Error: optimizer.ErrorInsufficientData})
		}
		return err
	}

	return out.Encode(optimizer.Result{Weights: weights})
}

// readRequest parses the header line and the review lines.
func readRequest(r io.Reader) (optimizer.Header, []training.Review, error) {
	var header optimizer.Header

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return header, nil, fmt.Errorf("failed to read header: %v", err)
		}
		return header, nil, fmt.Errorf("missing header line")
	}
	if err := json.Unmarshal(sc.Bytes(), &header); err != nil {
		return header, nil, fmt.Errorf("malformed header: %v", err)
	}
	if header.Version != optimizer.ProtocolVersion {
		return header, nil, fmt.Errorf("unsupported protocol version %d", header.Version)
	}
	if header.Weights != nil {
		if err := fsrs.ValidateWeights(header.Weights); err != nil {
			return header, nil, err
		}
	}

	var reviews []training.Review
	line := 1
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec optimizer.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return header, nil, fmt.Errorf("malformed review on line %d: %v", line, err)
		}
		rating := fsrs.Rating(rec.Rating)
		if !rating.IsValid() {
			return header, nil, fmt.Errorf("invalid rating %d on line %d", rec.Rating, line)
		}

		reviews = append(reviews, training.Review{
			WordID:     rec.WordID,
			Rating:     rating,
			ReviewedAt: rec.ReviewedAt,
		})
	}
	if err := sc.Err(); err != nil {
		return header, nil, fmt.Errorf("failed to read reviews: %v", err)
	}

	return header, reviews, nil
}
