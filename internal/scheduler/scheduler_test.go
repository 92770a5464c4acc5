package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/database"
	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

type recordingNotifier struct {
	userIDs []int64
	counts  []int
}

func (n *recordingNotifier) SendReminder(userID int64, dueCount int) error {
	n.userIDs = append(n.userIDs, userID)
	n.counts = append(n.counts, dueCount)
	return nil
}

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
}

func seedDueWord(t *testing.T, username string, dueAt time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Username: username, NotificationEnabled: true, NotificationHour: 9}
	if err := database.NewUserRepository().Create(ctx, user); err != nil {
		t.Fatal(err)
	}
	language := &models.Language{UserID: user.ID, Name: "French"}
	if err := database.NewLanguageRepository().Create(ctx, language); err != nil {
		t.Fatal(err)
	}
	lesson := &models.Lesson{LanguageID: language.ID, Name: "Basics"}
	if err := database.NewLessonRepository().Create(ctx, lesson); err != nil {
		t.Fatal(err)
	}
	word := &models.Word{LessonID: lesson.ID, Front: "chat", Back: "cat", DueAt: dueAt}
	if err := database.NewWordRepository().Create(ctx, word); err != nil {
		t.Fatal(err)
	}
	return user.ID
}

func TestRunManualCheckSendsReminder(t *testing.T) {
	setupTestDB(t)
	userID := seedDueWord(t, "pierre", time.Now().Add(-time.Hour))

	notifier := &recordingNotifier{}
	s := New(notifier)

	if err := s.RunManualCheck(context.Background(), userID); err != nil {
		t.Fatalf("RunManualCheck: %v", err)
	}
	if len(notifier.userIDs) != 1 || notifier.userIDs[0] != userID {
		t.Fatalf("reminders sent to %v, want [%d]", notifier.userIDs, userID)
	}
	if notifier.counts[0] != 1 {
		t.Errorf("reminder count = %d, want 1", notifier.counts[0])
	}
}

func TestRunManualCheckNothingDue(t *testing.T) {
	setupTestDB(t)
	userID := seedDueWord(t, "marie", time.Now().AddDate(0, 0, 7))

	notifier := &recordingNotifier{}
	s := New(notifier)

	if err := s.RunManualCheck(context.Background(), userID); err != nil {
		t.Fatalf("RunManualCheck: %v", err)
	}
	if len(notifier.userIDs) != 0 {
		t.Errorf("reminder sent with nothing due: %v", notifier.userIDs)
	}
}

func TestHourFromEnv(t *testing.T) {
	t.Setenv("TEST_REMINDER_HOUR", "")
	if got := hourFromEnv("TEST_REMINDER_HOUR", 8); got != 8 {
		t.Errorf("unset: got %d, want fallback 8", got)
	}

	t.Setenv("TEST_REMINDER_HOUR", "14")
	if got := hourFromEnv("TEST_REMINDER_HOUR", 8); got != 14 {
		t.Errorf("set: got %d, want 14", got)
	}

	t.Setenv("TEST_REMINDER_HOUR", "25")
	if got := hourFromEnv("TEST_REMINDER_HOUR", 8); got != 8 {
		t.Errorf("out of range: got %d, want fallback 8", got)
	}

	t.Setenv("TEST_REMINDER_HOUR", "soon")
	if got := hourFromEnv("TEST_REMINDER_HOUR", 8); got != 8 {
		t.Errorf("garbage: got %d, want fallback 8", got)
	}
}
