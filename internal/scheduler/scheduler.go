package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/database"
)

// Default window for sending reminders
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers a due-words reminder to a user. The transport behind it
// is outside this package.
type Notifier interface {
	SendReminder(userID int64, dueCount int) error
}

// Scheduler manages the hourly reminder job
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	userRepo  *database.UserRepository
	wordRepo  *database.WordRepository
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		userRepo:  database.NewUserRepository(),
		wordRepo:  database.NewWordRepository(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders finds users with due words at the current hour and
// sends them a reminder. One user's failure never stops the rest.
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().Hour()

	startHour := hourFromEnv("NOTIFICATION_START_HOUR", DefaultNotificationStartHour)
	endHour := hourFromEnv("NOTIFICATION_END_HOUR", DefaultNotificationEndHour)

	if currentHour < startHour || currentHour > endHour {
		return
	}

	ctx := context.Background()
	users, err := s.userRepo.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	now := time.Now()
	for _, user := range users {
		dueWords, err := s.wordRepo.DueWordsForUser(ctx, user.ID, now)
		if err != nil {
			log.Printf("Error getting due words for user %d: %v", user.ID, err)
			continue
		}

		if len(dueWords) > 0 {
			if err := s.notifier.SendReminder(user.ID, len(dueWords)); err != nil {
				log.Printf("Error sending reminder to user %d: %v", user.ID, err)
			}
		}
	}
}

// RunManualCheck forces a due-words check for a specific user
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) error {
	dueWords, err := s.wordRepo.DueWordsForUser(ctx, userID, time.Now())
	if err != nil {
		return err
	}

	if len(dueWords) > 0 {
		return s.notifier.SendReminder(userID, len(dueWords))
	}
	return nil
}

// hourFromEnv reads an hour override from the environment, keeping the
// fallback for unset or out-of-range values
func hourFromEnv(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			return h
		}
	}
	return fallback
}
