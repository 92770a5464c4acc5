package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// dbType returns the configured backend: "sqlite" or "postgres".
func dbType() string {
	t := os.Getenv("DB_TYPE")
	if t == "" {
		return "sqlite"
	}
	return t
}

// Connect establishes a connection to the database and initializes the schema
func Connect() error {
	switch dbType() {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		DB = db

	default:
		dbPath := os.Getenv("SQLITE_PATH")
		if dbPath == "" {
			dataDir := "data"
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %v", err)
			}
			dbPath = filepath.Join(dataDir, "repetora.db")
		}

		db, err := sqlx.Connect("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		DB = db
	}

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dbType() == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS users (
			id %s,
			username TEXT UNIQUE NOT NULL,
			first_name TEXT DEFAULT '',
			last_name TEXT DEFAULT '',
			fsrs_weights TEXT,
			notification_enabled BOOLEAN DEFAULT true,
			notification_hour INTEGER DEFAULT 9,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, idColumn),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS languages (
			id %s,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			UNIQUE(user_id, name)
		)`, idColumn),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS lessons (
			id %s,
			language_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (language_id) REFERENCES languages(id),
			UNIQUE(language_id, name)
		)`, idColumn),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS word_types (
			id %s,
			language_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (language_id) REFERENCES languages(id),
			UNIQUE(language_id, name)
		)`, idColumn),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS words (
			id %s,
			lesson_id INTEGER NOT NULL,
			word_type_id INTEGER NOT NULL DEFAULT 0,
			front TEXT NOT NULL,
			back TEXT NOT NULL,
			stability REAL NOT NULL DEFAULT 0,
			difficulty REAL NOT NULL DEFAULT 0,
			due_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			review_count INTEGER NOT NULL DEFAULT 0,
			last_reviewed_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (lesson_id) REFERENCES lessons(id),
			UNIQUE(lesson_id, front)
		)`, idColumn),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS review_logs (
			id %s,
			user_id INTEGER NOT NULL,
			word_id INTEGER NOT NULL,
			rating INTEGER NOT NULL,
			reviewed_at TIMESTAMP NOT NULL,
			elapsed_days REAL NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (word_id) REFERENCES words(id)
		)`, idColumn),
		`CREATE INDEX IF NOT EXISTS idx_review_logs_user ON review_logs(user_id, reviewed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_words_due ON words(lesson_id, due_at)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
