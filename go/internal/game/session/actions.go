package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/shiritori/go/internal/game/state"
	"github.com/mcdev12/shiritori/go/internal/models"
)

// CreateGame creates a room. The store is not touched; see HandleCreateGame.
func (s *Session) CreateGame(ctx context.Context, settings models.GameSettings) (*models.Game, error) {
	game, err := s.api.CreateGame(ctx, settings)
	if err != nil {
		return nil, err
	}
	log.Info().Str("game_id", game.ID).Msg("game created")
	return game, nil
}

// JoinGame joins an existing room and opens its realtime connection.
func (s *Session) JoinGame(ctx context.Context, gameID, name string) error {
	return s.join(ctx, gameID, name, nil)
}

// HandleCreateGame creates a room and joins it as its first player.
func (s *Session) HandleCreateGame(ctx context.Context, name string, settings models.GameSettings) (*models.Game, error) {
	game, err := s.CreateGame(ctx, settings)
	if err != nil {
		return nil, err
	}
	if err := s.join(ctx, game.ID, name, game); err != nil {
		return nil, err
	}
	return game, nil
}

// join runs request, mark self, connect, clear joining. The joining flag is
// raised before the request and lowered again on any failure.
func (s *Session) join(ctx context.Context, gameID, name string, snapshot *models.Game) error {
	// Joining another room starts from a clean local session.
	if current, err := s.currentGameID(ctx); err == nil && current != gameID {
		log.Info().Str("from_game_id", current).Str("to_game_id", gameID).Msg("switching rooms")
		if err := s.post(ctx, reset{}); err != nil {
			return err
		}
	}

	if err := s.post(ctx, setJoining{joining: true}); err != nil {
		return err
	}

	ref, err := s.api.JoinGame(ctx, gameID, name)
	if err != nil {
		s.abortJoin(ctx, gameID, err)
		return err
	}

	if snapshot != nil {
		if err := s.post(ctx, setGame{game: *snapshot}); err != nil {
			return err
		}
	}
	if err := s.post(ctx, setSelf{playerID: ref.ID}); err != nil {
		return err
	}

	if err := s.transport.Connect(ctx, gameID, false); err != nil {
		s.abortJoin(ctx, gameID, err)
		return fmt.Errorf("failed to connect to game %s: %w", gameID, err)
	}

	if err := s.post(ctx, setJoining{joining: false}); err != nil {
		return err
	}

	log.Info().Str("game_id", gameID).Str("player_id", ref.ID).Msg("joined game")
	return nil
}

func (s *Session) abortJoin(ctx context.Context, gameID string, cause error) {
	log.Warn().Err(cause).Str("game_id", gameID).Msg("join failed")
	if err := s.post(context.WithoutCancel(ctx), setJoining{joining: false}); err != nil {
		log.Debug().Err(err).Msg("could not clear joining flag")
	}
}

// LeaveGame leaves the room, closes the connection and clears the store.
func (s *Session) LeaveGame(ctx context.Context) error {
	gameID, err := s.currentGameID(ctx)
	if err != nil {
		return err
	}
	if err := s.api.LeaveGame(ctx, gameID); err != nil {
		return err
	}

	s.transport.Disconnect()
	if err := s.post(context.WithoutCancel(ctx), reset{}); err != nil {
		return err
	}

	log.Info().Str("game_id", gameID).Msg("left game")
	return nil
}

// StartGame asks the server to start the room. Nil settings keep the
// room's current ones.
func (s *Session) StartGame(ctx context.Context, settings *models.GameSettings) error {
	gameID, err := s.currentGameID(ctx)
	if err != nil {
		return err
	}
	return s.api.StartGame(ctx, gameID, settings)
}

// RestartGame asks the server to reset a finished room.
func (s *Session) RestartGame(ctx context.Context) error {
	gameID, err := s.currentGameID(ctx)
	if err != nil {
		return err
	}
	return s.api.RestartGame(ctx, gameID)
}

// SubmitTurn sends a word. The outcome arrives as a broadcast event.
func (s *Session) SubmitTurn(ctx context.Context, word string) error {
	gameID, err := s.currentGameID(ctx)
	if err != nil {
		return err
	}
	return s.api.SubmitTurn(ctx, gameID, word)
}

// Refresh replaces the local game with a fresh snapshot from the server.
func (s *Session) Refresh(ctx context.Context) error {
	gameID, err := s.currentGameID(ctx)
	if err != nil {
		return err
	}
	game, err := s.api.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	return s.post(ctx, setGame{game: *game})
}

// Reconnect reopens the room connection after transport loss. The server
// answers a new connection with a full snapshot.
func (s *Session) Reconnect(ctx context.Context) error {
	gameID, err := s.currentGameID(ctx)
	if err != nil {
		return err
	}
	if err := s.transport.Connect(ctx, gameID, true); err != nil {
		return fmt.Errorf("failed to reconnect to game %s: %w", gameID, err)
	}
	return nil
}

func (s *Session) currentGameID(ctx context.Context) (string, error) {
	view, err := s.View(ctx)
	if err != nil {
		return "", err
	}
	if view.Game == nil {
		return "", state.ErrNoGame
	}
	return view.Game.ID, nil
}
