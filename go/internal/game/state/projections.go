package state

import (
	"sort"

	"github.com/mcdev12/shiritori/go/internal/models"
)

// minPlayersToStart is the smallest room the server will start.
const minPlayersToStart = 2

// HasGame reports whether a game is loaded.
func (s *Store) HasGame() bool {
	return s.game != nil
}

// Game returns a copy of the current game, or nil.
func (s *Store) Game() *models.Game {
	return s.game.Clone()
}

// SelfID returns the remembered identifier of this client's player.
func (s *Store) SelfID() string {
	return s.selfID
}

// Joining reports whether a join request is in flight.
func (s *Store) Joining() bool {
	return s.joining
}

// Countdown returns the locally ticking seconds remaining.
func (s *Store) Countdown() int {
	return s.countdown.Remaining()
}

// Players returns a copy of the player list.
func (s *Store) Players() []models.Player {
	if s.game == nil {
		return nil
	}
	out := make([]models.Player, len(s.game.Players))
	copy(out, s.game.Players)
	return out
}

// Me returns this client's player, or nil when not known yet.
func (s *Store) Me() *models.Player {
	if s.game == nil || s.selfID == "" {
		return nil
	}
	idx := s.game.PlayerIndex(s.selfID)
	if idx < 0 {
		return nil
	}
	p := s.game.Players[idx]
	return &p
}

// IsMyTurn reports whether this client's player holds the turn.
func (s *Store) IsMyTurn() bool {
	me := s.Me()
	return me != nil && me.IsCurrent
}

// LastWord returns the text of the last accepted word, or "".
func (s *Store) LastWord() string {
	if s.game == nil || len(s.game.Words) == 0 {
		return ""
	}
	return s.game.Words[len(s.game.Words)-1].Word
}

// LastLetter returns the trailing character of the last accepted word, or ""
// when no word has been played.
func (s *Store) LastLetter() string {
	return models.LastRune(s.LastWord())
}

// ChainLetter is the letter the next submission must start with. Before the
// first word it falls back to the seed letter the server put in lastWord.
func (s *Store) ChainLetter() string {
	if letter := s.LastLetter(); letter != "" {
		return letter
	}
	if s.game == nil || s.game.LastWord == nil {
		return ""
	}
	return models.LastRune(*s.game.LastWord)
}

// Leaderboard returns the players ordered by descending score. Ties keep the
// order they have in the game.
func (s *Store) Leaderboard() []models.Player {
	board := s.Players()
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	return board
}

// ConnectedPlayers counts players whose connection flag is set.
func (s *Store) ConnectedPlayers() int {
	if s.game == nil {
		return 0
	}
	n := 0
	for _, p := range s.game.Players {
		if p.IsConnected {
			n++
		}
	}
	return n
}

// CanStart reports whether this client may start the game: it must be the host
// and at least two connected players must be present.
func (s *Store) CanStart() bool {
	me := s.Me()
	if me == nil || !me.IsHost {
		return false
	}
	return s.ConnectedPlayers() >= minPlayersToStart
}

// Winner returns the player holding the WINNER role, if any.
func (s *Store) Winner() *models.Player {
	if s.game == nil {
		return nil
	}
	for _, p := range s.game.Players {
		if p.Type == models.PlayerTypeWinner {
			winner := p
			return &winner
		}
	}
	return nil
}

// Status returns the game status, or "" with no game.
func (s *Store) Status() models.GameStatus {
	if s.game == nil {
		return ""
	}
	return s.game.Status
}
