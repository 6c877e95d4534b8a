package shiritori_client

import (
	"context"
	"fmt"

	"github.com/mcdev12/shiritori/go/internal/models"
)

type createStartGameRequest struct {
	Settings *models.GameSettings `json:"settings,omitempty"`
}

type joinGameRequest struct {
	Name string `json:"name"`
}

type turnRequest struct {
	Word string `json:"word"`
}

// SetCsrfCookie asks the server to issue the CSRF cookie used by unsafe requests.
func (c *ShiritoriClient) SetCsrfCookie(ctx context.Context) error {
	if _, err := c.Get(ctx, CsrfCookieEndpoint); err != nil {
		return fmt.Errorf("failed to set csrf cookie: %w", err)
	}
	return nil
}

// CreateGame creates a room with the given settings.
func (c *ShiritoriClient) CreateGame(ctx context.Context, settings models.GameSettings) (*models.Game, error) {
	var game models.Game
	if err := c.PostJSON(ctx, GamesEndpoint, createStartGameRequest{Settings: &settings}, &game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &game, nil
}

// GetGame fetches the current snapshot of a room.
func (c *ShiritoriClient) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	if err := c.GetJSON(ctx, gamePath(GameEndpoint, gameID), &game); err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	return &game, nil
}

// JoinGame joins a room under name and returns the new player's identifier.
func (c *ShiritoriClient) JoinGame(ctx context.Context, gameID, name string) (*models.PlayerRef, error) {
	var ref models.PlayerRef
	if err := c.PostJSON(ctx, gamePath(JoinEndpoint, gameID), joinGameRequest{Name: name}, &ref); err != nil {
		return nil, fmt.Errorf("failed to join game %s: %w", gameID, err)
	}
	if ref.ID == "" {
		return nil, fmt.Errorf("failed to join game %s: response has no player id", gameID)
	}
	return &ref, nil
}

// LeaveGame removes this session's player from the room.
func (c *ShiritoriClient) LeaveGame(ctx context.Context, gameID string) error {
	if err := c.PostJSON(ctx, gamePath(LeaveEndpoint, gameID), nil, nil); err != nil {
		return fmt.Errorf("failed to leave game %s: %w", gameID, err)
	}
	return nil
}

// StartGame starts the room, optionally replacing its settings.
func (c *ShiritoriClient) StartGame(ctx context.Context, gameID string, settings *models.GameSettings) error {
	if err := c.PostJSON(ctx, gamePath(StartEndpoint, gameID), createStartGameRequest{Settings: settings}, nil); err != nil {
		return fmt.Errorf("failed to start game %s: %w", gameID, err)
	}
	return nil
}

// RestartGame puts a finished room back into the waiting state.
func (c *ShiritoriClient) RestartGame(ctx context.Context, gameID string) error {
	if err := c.PostJSON(ctx, gamePath(RestartEndpoint, gameID), nil, nil); err != nil {
		return fmt.Errorf("failed to restart game %s: %w", gameID, err)
	}
	return nil
}

// SubmitTurn submits a word. Legality is decided by the server only.
func (c *ShiritoriClient) SubmitTurn(ctx context.Context, gameID, word string) error {
	if err := c.PostJSON(ctx, gamePath(TurnEndpoint, gameID), turnRequest{Word: word}, nil); err != nil {
		return fmt.Errorf("failed to submit turn in game %s: %w", gameID, err)
	}
	return nil
}
