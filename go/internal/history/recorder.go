package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/shiritori/go/internal/game/events"
	"github.com/mcdev12/shiritori/go/internal/game/state"
	"github.com/mcdev12/shiritori/go/internal/models"
	"github.com/mcdev12/shiritori/go/internal/sqlutil"
)

// PlayerResult is one row of a finished game's final leaderboard.
type PlayerResult struct {
	PlayerID string
	Name     string
	Score    float64
	Rank     int
}

// Record is a finished game as this client saw it.
type Record struct {
	ID          string
	GameID      string
	SelfID      string
	WinnerID    *string
	WordCount   int
	LongestWord *string
	FinishedAt  time.Time
	Players     []PlayerResult
}

// Recorder stores every game that reaches FINISHED. It is a session observer.
type Recorder struct {
	db    *sql.DB
	clock clockwork.Clock

	mu         sync.Mutex
	lastStatus map[string]models.GameStatus
}

// Open opens (or creates) the history database at path.
func Open(path string, clk clockwork.Clock) (*Recorder, error) {
	db, err := openDatabase(path)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Recorder{
		db:         db,
		clock:      clk,
		lastStatus: make(map[string]models.GameStatus),
	}, nil
}

// Close releases database resources.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Observe records a game on its transition into FINISHED. A restarted game
// that finishes again is recorded again.
func (r *Recorder) Observe(_ events.Event, view state.View) {
	if view.Game == nil {
		return
	}

	r.mu.Lock()
	prev := r.lastStatus[view.Game.ID]
	r.lastStatus[view.Game.ID] = view.Status
	r.mu.Unlock()

	if view.Status != models.GameStatusFinished || prev == models.GameStatusFinished {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := r.Record(ctx, view); err != nil {
		log.Error().Err(err).Str("game_id", view.Game.ID).Msg("failed to record finished game")
	}
}

// Record writes one finished game and returns its record ID.
func (r *Recorder) Record(ctx context.Context, view state.View) (string, error) {
	if view.Game == nil {
		return "", state.ErrNoGame
	}
	game := view.Game
	id := uuid.NewString()

	var winnerID *string
	if view.Winner != nil {
		winnerID = &view.Winner.ID
	}

	err := sqlutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO finished_games (id, game_id, self_id, winner_id, word_count, longest_word, finished_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, game.ID, view.SelfID, sqlutil.NullString(winnerID), len(game.Words),
			sqlutil.NullString(longestWord(game.Words)), sqlutil.UnixMilli(r.clock.Now()),
		); err != nil {
			return fmt.Errorf("insert finished game: %w", err)
		}

		for i, p := range view.Leaderboard {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO finished_game_players (record_id, player_id, name, score, rank) VALUES (?, ?, ?, ?, ?)`,
				id, p.ID, p.Name, p.Score, i+1,
			); err != nil {
				return fmt.Errorf("insert player result: %w", err)
			}
		}

		for i, w := range game.Words {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO finished_game_words (record_id, seq, word, score, duration, player_id) VALUES (?, ?, ?, ?, ?, ?)`,
				id, i, w.Word, w.Score, w.Duration, w.PlayerID,
			); err != nil {
				return fmt.Errorf("insert word: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info().
		Str("record_id", id).
		Str("game_id", game.ID).
		Int("words", len(game.Words)).
		Msg("recorded finished game")
	return id, nil
}

// Recent returns the latest finished games, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, self_id, winner_id, word_count, longest_word, finished_at
		 FROM finished_games ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query finished games: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			winner     sql.NullString
			longest    sql.NullString
			finishedAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.GameID, &rec.SelfID, &winner, &rec.WordCount, &longest, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan finished game: %w", err)
		}
		rec.WinnerID = sqlutil.StringPtr(winner)
		rec.LongestWord = sqlutil.StringPtr(longest)
		rec.FinishedAt = sqlutil.FromUnixMilli(finishedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate finished games: %w", err)
	}
	rows.Close()

	for i := range records {
		players, err := r.players(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Players = players
	}
	return records, nil
}

// Words returns the words of a recorded game in play order.
func (r *Recorder) Words(ctx context.Context, recordID string) ([]models.Word, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT word, score, duration, player_id FROM finished_game_words WHERE record_id = ? ORDER BY seq`, recordID)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.Word, &w.Score, &w.Duration, &w.PlayerID); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (r *Recorder) players(ctx context.Context, recordID string) ([]PlayerResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id, name, score, rank FROM finished_game_players WHERE record_id = ? ORDER BY rank`, recordID)
	if err != nil {
		return nil, fmt.Errorf("query player results: %w", err)
	}
	defer rows.Close()

	var players []PlayerResult
	for rows.Next() {
		var p PlayerResult
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.Score, &p.Rank); err != nil {
			return nil, fmt.Errorf("scan player result: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func longestWord(words []models.Word) *string {
	var longest *string
	for i := range words {
		if longest == nil || len([]rune(words[i].Word)) > len([]rune(*longest)) {
			w := words[i].Word
			longest = &w
		}
	}
	return longest
}
