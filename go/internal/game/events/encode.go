package events

import (
	"encoding/json"
	"fmt"
)

// Encode renders an Event in its wire envelope form.
func Encode(ev Event) ([]byte, error) {
	var data any
	switch e := ev.(type) {
	case Connected:
		data = e
	case GameUpdated:
		data = e.Game
	case GameTimerUpdated:
		data = e.Seconds
	case PlayerJoined:
		data = e.Player
	case PlayerUpdated:
		data = e.Player
	case PlayerLeft:
		data = e.PlayerID
	case PlayerConnected:
		data = e.PlayerID
	case PlayerDisconnected:
		data = e.PlayerID
	case TurnTaken:
		data = e.Word
	default:
		return nil, fmt.Errorf("encode %T: %w", ev, ErrUnknownEventType)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.EventType(), err)
	}
	return json.Marshal(Envelope{Type: ev.EventType(), Data: raw})
}
