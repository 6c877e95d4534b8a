package models

import "time"

// GameStatus defines the lifecycle status of a game.
type GameStatus string

const (
	GameStatusWaiting  GameStatus = "WAITING"
	GameStatusPlaying  GameStatus = "PLAYING"
	GameStatusFinished GameStatus = "FINISHED"
)

// rank orders statuses along the only legal direction of travel.
func (s GameStatus) rank() int {
	switch s {
	case GameStatusWaiting:
		return 0
	case GameStatusPlaying:
		return 1
	case GameStatusFinished:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo reports whether moving from s to next keeps the status monotonic.
// Staying on the same status is allowed.
func (s GameStatus) CanAdvanceTo(next GameStatus) bool {
	if s == "" {
		return true
	}
	return next.rank() >= s.rank() && next.rank() >= 0
}

// Locale defines the dictionary a game is played with.
type Locale string

const (
	LocaleEnglish Locale = "en"
)

// GameSettings holds the per-game rule configuration chosen by the host.
type GameSettings struct {
	Locale     Locale `json:"locale"`
	WordLength int    `json:"wordLength"` // minimum accepted word length
	TurnTime   int    `json:"turnTime"`   // seconds per turn
	MaxTurns   int    `json:"maxTurns"`
}

// DefaultGameSettings mirrors the defaults the server applies when none are sent.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		Locale:     LocaleEnglish,
		WordLength: 3,
		TurnTime:   60,
		MaxTurns:   10,
	}
}

// Game represents one room as serialized by the game server.
type Game struct {
	ID            string       `json:"id"`
	Settings      GameSettings `json:"settings"`
	Status        GameStatus   `json:"status"`
	Words         []Word       `json:"words"`
	Players       []Player     `json:"players"`
	CurrentTurn   int          `json:"currentTurn"`
	CurrentRound  int          `json:"currentRound"`
	CurrentPlayer *string      `json:"currentPlayer"`
	LastWord      *string      `json:"lastWord,omitempty"`
	TurnTimeLeft  int          `json:"turnTimeLeft"`

	// Server-side aggregates, informational only on the client.
	PlayerCount int       `json:"playerCount"`
	WordCount   int       `json:"wordCount"`
	LongestWord *string   `json:"longestWord"`
	IsFinished  bool      `json:"isFinished"`
	Winner      *string   `json:"winner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers never alias the slices of the original.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	if g.Words != nil {
		c.Words = make([]Word, len(g.Words))
		copy(c.Words, g.Words)
	}
	if g.Players != nil {
		c.Players = make([]Player, len(g.Players))
		copy(c.Players, g.Players)
	}
	c.CurrentPlayer = cloneString(g.CurrentPlayer)
	c.LastWord = cloneString(g.LastWord)
	c.LongestWord = cloneString(g.LongestWord)
	c.Winner = cloneString(g.Winner)
	return &c
}

// PlayerIndex returns the position of the player with the given ID, or -1.
func (g *Game) PlayerIndex(playerID string) int {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
