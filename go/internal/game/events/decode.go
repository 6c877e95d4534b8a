package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/shiritori/go/internal/models"
)

var (
	// ErrUnknownEventType is returned for a well-formed envelope whose type this
	// client does not know. Callers should log and skip it.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrMalformedEvent is returned when the envelope or its payload cannot be parsed.
	ErrMalformedEvent = errors.New("malformed event")
)

// Decode parses one raw realtime message into a typed Event. The discriminator
// is validated before the payload shape is trusted.
func Decode(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrMalformedEvent, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	if !env.Type.Known() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, env.Type)
	}

	ev, err := decodePayload(env.Type, env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, env.Type, err)
	}
	return ev, nil
}

func decodePayload(t Type, data json.RawMessage) (Event, error) {
	switch t {
	case TypeConnected:
		var payload Connected
		if err := unmarshalObject(data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case TypeGameUpdated:
		var payload GameUpdated
		if err := unmarshalObject(data, &payload.Game); err != nil {
			return nil, err
		}
		return payload, nil

	case TypeGameTimerUpdated:
		seconds, err := decodeSeconds(data)
		if err != nil {
			return nil, err
		}
		return GameTimerUpdated{Seconds: seconds}, nil

	case TypePlayerJoined:
		var payload PlayerJoined
		if err := unmarshalObject(data, &payload.Player); err != nil {
			return nil, err
		}
		return payload, nil

	case TypePlayerUpdated:
		var payload PlayerUpdated
		if err := unmarshalObject(data, &payload.Player); err != nil {
			return nil, err
		}
		return payload, nil

	case TypePlayerLeft:
		id, err := decodePlayerID(data)
		if err != nil {
			return nil, err
		}
		return PlayerLeft{PlayerID: id}, nil

	case TypePlayerConnected:
		id, err := decodePlayerID(data)
		if err != nil {
			return nil, err
		}
		return PlayerConnected{PlayerID: id}, nil

	case TypePlayerDisconnected:
		id, err := decodePlayerID(data)
		if err != nil {
			return nil, err
		}
		return PlayerDisconnected{PlayerID: id}, nil

	case TypeTurnTaken:
		var payload TurnTaken
		if err := unmarshalObject(data, &payload.Word); err != nil {
			return nil, err
		}
		return payload, nil
	}

	return nil, fmt.Errorf("no decoder for %s", t)
}

// UnmarshalJSON accepts the self player under "selfPlayer" or "self_player",
// as a bare id or an object carrying "id". A missing or null value leaves it
// empty.
func (c *Connected) UnmarshalJSON(data []byte) error {
	var wire struct {
		Game            models.Game     `json:"game"`
		SelfPlayer      json.RawMessage `json:"selfPlayer"`
		SelfPlayerSnake json.RawMessage `json:"self_player"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.Game = wire.Game
	c.SelfPlayer = ""
	for _, raw := range []json.RawMessage{wire.SelfPlayer, wire.SelfPlayerSnake} {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
			continue
		}
		id, err := decodePlayerID(trimmed)
		if err != nil {
			return fmt.Errorf("self player: %w", err)
		}
		c.SelfPlayer = id
		return nil
	}
	return nil
}

// unmarshalObject rejects payloads that are absent or not a JSON object.
func unmarshalObject(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("payload is not an object")
	}
	return json.Unmarshal(trimmed, v)
}

// decodePlayerID accepts either a bare string or an object carrying "id".
func decodePlayerID(data json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", errors.New("missing player id")
	}

	var id string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return "", err
		}
	} else {
		var ref struct {
			ID string `json:"id"`
		}
		if err := unmarshalObject(trimmed, &ref); err != nil {
			return "", err
		}
		id = ref.ID
	}

	if id == "" {
		return "", errors.New("empty player id")
	}
	return id, nil
}

// decodeSeconds accepts a bare number, null, or an object with a seconds field.
func decodeSeconds(data json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, nil
	}

	if trimmed[0] == '{' {
		var obj struct {
			Seconds  *float64 `json:"seconds"`
			TimeLeft *float64 `json:"timeLeft"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return 0, err
		}
		switch {
		case obj.Seconds != nil:
			return int(*obj.Seconds), nil
		case obj.TimeLeft != nil:
			return int(*obj.TimeLeft), nil
		}
		return 0, nil
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}
