package events

import (
	"encoding/json"

	"github.com/mcdev12/shiritori/go/internal/models"
)

// Envelope is the wire form of every realtime message: {"type": ..., "data": ...}.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Type represents the discriminator of a realtime event
type Type string

const (
	TypeConnected          Type = "connected"
	TypeGameUpdated        Type = "game_updated"
	TypeGameTimerUpdated   Type = "game_timer_updated"
	TypePlayerJoined       Type = "player_joined"
	TypePlayerLeft         Type = "player_left"
	TypePlayerUpdated      Type = "player_updated"
	TypePlayerConnected    Type = "player_connected"
	TypePlayerDisconnected Type = "player_disconnected"
	TypeTurnTaken          Type = "turn_taken"
)

// Known reports whether t is one of the event types this client understands.
func (t Type) Known() bool {
	switch t {
	case TypeConnected, TypeGameUpdated, TypeGameTimerUpdated,
		TypePlayerJoined, TypePlayerLeft, TypePlayerUpdated,
		TypePlayerConnected, TypePlayerDisconnected, TypeTurnTaken:
		return true
	}
	return false
}

// Event is the closed set of decoded realtime events. Only types in this
// package implement it.
type Event interface {
	EventType() Type
	isEvent()
}

// Connected is sent once per connection and carries the full game plus the
// identifier of the player bound to this client's session.
type Connected struct {
	Game       models.Game `json:"game"`
	SelfPlayer string      `json:"selfPlayer"`
}

// GameUpdated replaces the whole aggregate.
type GameUpdated struct {
	Game models.Game
}

// GameTimerUpdated carries the server's seconds remaining in the current turn.
type GameTimerUpdated struct {
	Seconds int
}

type PlayerJoined struct {
	Player models.Player
}

type PlayerLeft struct {
	PlayerID string
}

type PlayerUpdated struct {
	Player models.Player
}

type PlayerConnected struct {
	PlayerID string
}

type PlayerDisconnected struct {
	PlayerID string
}

// TurnTaken carries one accepted word.
type TurnTaken struct {
	Word models.Word
}

func (Connected) EventType() Type          { return TypeConnected }
func (GameUpdated) EventType() Type        { return TypeGameUpdated }
func (GameTimerUpdated) EventType() Type   { return TypeGameTimerUpdated }
func (PlayerJoined) EventType() Type       { return TypePlayerJoined }
func (PlayerLeft) EventType() Type         { return TypePlayerLeft }
func (PlayerUpdated) EventType() Type      { return TypePlayerUpdated }
func (PlayerConnected) EventType() Type    { return TypePlayerConnected }
func (PlayerDisconnected) EventType() Type { return TypePlayerDisconnected }
func (TurnTaken) EventType() Type          { return TypeTurnTaken }

func (Connected) isEvent()          {}
func (GameUpdated) isEvent()        {}
func (GameTimerUpdated) isEvent()   {}
func (PlayerJoined) isEvent()       {}
func (PlayerLeft) isEvent()         {}
func (PlayerUpdated) isEvent()      {}
func (PlayerConnected) isEvent()    {}
func (PlayerDisconnected) isEvent() {}
func (TurnTaken) isEvent()          {}
