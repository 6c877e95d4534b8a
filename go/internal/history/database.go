package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDatabase opens the SQLite file at path and applies the schema.
func openDatabase(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS finished_games (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			self_id TEXT NOT NULL,
			winner_id TEXT,
			word_count INTEGER NOT NULL,
			longest_word TEXT,
			finished_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS finished_game_players (
			record_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			name TEXT NOT NULL,
			score REAL NOT NULL,
			rank INTEGER NOT NULL,
			PRIMARY KEY(record_id, player_id),
			FOREIGN KEY(record_id) REFERENCES finished_games(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS finished_game_words (
			record_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			word TEXT NOT NULL,
			score REAL NOT NULL,
			duration REAL NOT NULL,
			player_id TEXT NOT NULL,
			PRIMARY KEY(record_id, seq),
			FOREIGN KEY(record_id) REFERENCES finished_games(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_finished_games_finished ON finished_games(finished_at DESC, id DESC);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}
