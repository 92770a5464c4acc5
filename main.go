package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/database"
	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/optimizer"
	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/scheduler"
)

// logNotifier reports due-word reminders to the process log. Actual delivery
// belongs to the surrounding application layer.
type logNotifier struct{}

func (logNotifier) SendReminder(userID int64, dueCount int) error {
	log.Printf("user %d has %d words due for review", userID, dueCount)
	return nil
}

func main() {
	// Load .env if present; deployments may set the environment directly
	_ = godotenv.Load()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	binPath := os.Getenv("OPTIMIZER_BIN")
	if binPath == "" {
		binPath = "fsrs-optimizer"
	}
	timeout := optimizer.DefaultTimeout
	if v := os.Getenv("OPTIMIZER_TIMEOUT_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			timeout = time.Duration(m) * time.Minute
		}
	}
	runHour := optimizer.DefaultRunHour
	if v := os.Getenv("OPTIMIZE_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			runHour = h
		}
	}

	userRepo := database.NewUserRepository()
	logRepo := database.NewReviewLogRepository()
	adapter := optimizer.NewAdapter(binPath, timeout)
	pipeline := optimizer.NewPipeline(userRepo, logRepo, userRepo, adapter, runHour)

	// Run the daily optimization pipeline independently of any request
	done := make(chan struct{})
	go func() {
		pipeline.Run(ctx)
		close(done)
	}()

	reminders := scheduler.New(logNotifier{})
	reminders.Start()

	log.Println("verb-repetora started. Press Ctrl+C to stop.")
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)

	cancel()
	reminders.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("Timed out waiting for pipeline shutdown")
	}
	log.Println("verb-repetora stopped")
}
