package state

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/shiritori/go/internal/game/clock"
	"github.com/mcdev12/shiritori/go/internal/game/events"
	"github.com/mcdev12/shiritori/go/internal/models"
)

// ErrNoGame is returned by operations that need a game when none is loaded.
var ErrNoGame = errors.New("no game loaded")

// Store is the local mirror of one game plus this client's session knowledge.
//
// Store is not safe for concurrent use. It has exactly one owner (the session
// loop) which applies events in transport order.
type Store struct {
	game *models.Game

	// Local session, never sent to the server.
	selfID    string
	joining   bool
	countdown clock.Countdown
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Apply folds one decoded event into the store. It is total: stale references
// and deltas that arrive before any snapshot are no-ops.
func (s *Store) Apply(ev events.Event) {
	switch e := ev.(type) {
	case events.Connected:
		s.replaceGame(e.Game)
		if e.SelfPlayer != "" {
			s.selfID = e.SelfPlayer
		}

	case events.GameUpdated:
		s.replaceGame(e.Game)
		s.countdown.SeedIfUnset(e.Game.TurnTimeLeft)

	case events.GameTimerUpdated:
		s.countdown.Sync(e.Seconds)

	case events.PlayerJoined:
		if s.game == nil {
			s.logNoGame(ev)
			return
		}
		// No de-duplication: a redelivered join appends twice until the next
		// snapshot corrects it.
		s.game.Players = append(s.game.Players, e.Player)
		if e.Player.IsCurrent {
			s.markCurrent(e.Player.ID)
		}

	case events.PlayerLeft:
		if s.game == nil {
			s.logNoGame(ev)
			return
		}
		idx := s.game.PlayerIndex(e.PlayerID)
		if idx < 0 {
			s.logStale(ev, e.PlayerID)
			return
		}
		s.game.Players = append(s.game.Players[:idx:idx], s.game.Players[idx+1:]...)

	case events.PlayerUpdated:
		if s.game == nil {
			s.logNoGame(ev)
			return
		}
		idx := s.game.PlayerIndex(e.Player.ID)
		if idx < 0 {
			s.logStale(ev, e.Player.ID)
			return
		}
		s.game.Players[idx] = e.Player
		if e.Player.IsCurrent {
			s.markCurrent(e.Player.ID)
		}

	case events.PlayerConnected:
		s.setConnected(ev, e.PlayerID, true)

	case events.PlayerDisconnected:
		s.setConnected(ev, e.PlayerID, false)

	case events.TurnTaken:
		if s.game == nil {
			s.logNoGame(ev)
			return
		}
		// No de-duplication: a redelivered turn is counted twice.
		s.game.Words = append(s.game.Words, e.Word)
		text := e.Word.Word
		s.game.LastWord = &text
		if idx := s.game.PlayerIndex(e.Word.PlayerID); idx >= 0 {
			s.game.Players[idx].Score += e.Word.Score
		} else {
			s.logStale(ev, e.Word.PlayerID)
		}

	default:
		log.Debug().Str("event_type", eventTypeOf(ev)).Msg("store ignoring unhandled event")
	}
}

// SetGame replaces the game from a request response (create, refresh).
func (s *Store) SetGame(g models.Game) {
	s.replaceGame(g)
}

// SetSelf records which player this client is.
func (s *Store) SetSelf(playerID string) {
	s.selfID = playerID
}

// SetJoining flips the join-in-progress flag.
func (s *Store) SetJoining(joining bool) {
	s.joining = joining
}

// Tick advances the local countdown by one second.
func (s *Store) Tick() bool {
	return s.countdown.Tick()
}

// Reset clears the game and all local session knowledge.
func (s *Store) Reset() {
	s.game = nil
	s.selfID = ""
	s.joining = false
	s.countdown.Reset()
}

// replaceGame installs a snapshot wholesale. The server is the source of truth,
// so a status regression is accepted and only logged. A snapshot of another
// room drops the previous room's countdown so the new one can be seeded.
func (s *Store) replaceGame(g models.Game) {
	if s.game != nil && s.game.ID != g.ID {
		log.Debug().
			Str("from_game_id", s.game.ID).
			Str("to_game_id", g.ID).
			Msg("snapshot switched rooms, clearing countdown")
		s.countdown.Reset()
	}
	if s.game != nil && s.game.ID == g.ID && !s.game.Status.CanAdvanceTo(g.Status) {
		log.Warn().
			Str("game_id", g.ID).
			Str("from", string(s.game.Status)).
			Str("to", string(g.Status)).
			Msg("snapshot moved game status backwards")
	}
	s.game = g.Clone()
}

// markCurrent keeps at most one player flagged as holding the turn.
func (s *Store) markCurrent(playerID string) {
	for i := range s.game.Players {
		s.game.Players[i].IsCurrent = s.game.Players[i].ID == playerID
	}
	id := playerID
	s.game.CurrentPlayer = &id
}

func (s *Store) setConnected(ev events.Event, playerID string, connected bool) {
	if s.game == nil {
		s.logNoGame(ev)
		return
	}
	idx := s.game.PlayerIndex(playerID)
	if idx < 0 {
		s.logStale(ev, playerID)
		return
	}
	s.game.Players[idx].IsConnected = connected
}

func (s *Store) logStale(ev events.Event, playerID string) {
	log.Debug().
		Str("event_type", eventTypeOf(ev)).
		Str("player_id", playerID).
		Msg("delta references unknown player, ignoring")
}

func (s *Store) logNoGame(ev events.Event) {
	log.Debug().
		Str("event_type", eventTypeOf(ev)).
		Msg("delta received before any snapshot, ignoring")
}

func eventTypeOf(ev events.Event) string {
	if ev == nil {
		return ""
	}
	return string(ev.EventType())
}
