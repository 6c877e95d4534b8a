package models

// PlayerType defines the role a player holds in a game.
type PlayerType string

const (
	PlayerTypeHuman     PlayerType = "HUMAN"
	PlayerTypeBot       PlayerType = "BOT"
	PlayerTypeSpectator PlayerType = "SPECTATOR"
	PlayerTypeWinner    PlayerType = "WINNER"
)

// Player represents a participant in a game. The ID is stable for the game's
// lifetime even when the connection flag flips.
type Player struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Score       float64    `json:"score"`
	Type        PlayerType `json:"type"`
	IsConnected bool       `json:"isConnected"`
	IsCurrent   bool       `json:"isCurrent"`
	IsHost      bool       `json:"isHost"`
}

// PlayerRef is the response body of a join request.
type PlayerRef struct {
	ID string `json:"id"`
}
