package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/shiritori/go/internal/game/events"
	"github.com/mcdev12/shiritori/go/internal/game/state"
)

// Publisher sends one message. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the envelope published for every applied event.
type Message struct {
	EventID   string          `json:"eventId"`
	EventType events.Type     `json:"eventType"`
	GameID    string          `json:"gameId"`
	SelfID    string          `json:"selfId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Relay republishes every event the session applies. It is a session observer.
type Relay struct {
	publisher Publisher
	prefix    string
	nc        *nats.Conn
}

// New creates a relay on top of an existing publisher.
func New(publisher Publisher, prefix string) *Relay {
	if prefix == "" {
		prefix = DefaultConfig().SubjectPrefix
	}
	return &Relay{publisher: publisher, prefix: prefix}
}

// Connect dials NATS and returns a relay that owns the connection.
func Connect(ctx context.Context, config Config) (*Relay, error) {
	opts := []nats.Option{
		nats.Name("shiritori-relay"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	var publisher Publisher = nc
	if config.JetStream {
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("create JetStream context: %w", err)
		}
		if err := ensureStream(ctx, js, config); err != nil {
			nc.Close()
			return nil, err
		}
		publisher = &streamPublisher{js: js}
	}

	r := New(publisher, config.SubjectPrefix)
	r.nc = nc

	log.Info().
		Str("url", nc.ConnectedUrl()).
		Bool("jetstream", config.JetStream).
		Msg("event relay connected")
	return r, nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, config Config) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        config.StreamName,
		Description: "Shiritori client game events",
		Subjects:    []string{config.SubjectPrefix + ".game.>"},
		MaxAge:      24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", config.StreamName, err)
	}
	return nil
}

// streamPublisher publishes without waiting for the ack so the session loop
// never blocks on the broker.
type streamPublisher struct {
	js jetstream.JetStream
}

func (p *streamPublisher) Publish(subject string, data []byte) error {
	_, err := p.js.PublishAsync(subject, data)
	return err
}

// Close drains the owned NATS connection, if any.
func (r *Relay) Close() error {
	if r.nc == nil {
		return nil
	}
	return r.nc.Drain()
}

// Observe publishes ev. Local changes (nil events) are not relayed.
func (r *Relay) Observe(ev events.Event, view state.View) {
	if ev == nil || view.Game == nil {
		return
	}

	subject, data, err := r.build(ev, view)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(ev.EventType())).Msg("failed to build relay message")
		return
	}

	if err := r.publisher.Publish(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to relay event")
		return
	}

	log.Debug().Str("subject", subject).Int("size", len(data)).Msg("relayed event")
}

// Subject returns the subject an event of type t in gameID is published on.
func (r *Relay) Subject(gameID string, t events.Type) string {
	return fmt.Sprintf("%s.game.%s.%s", r.prefix, sanitizeToken(gameID), t)
}

func (r *Relay) build(ev events.Event, view state.View) (string, []byte, error) {
	payload, err := events.Encode(ev)
	if err != nil {
		return "", nil, err
	}

	msg := Message{
		EventID:   uuid.NewString(),
		EventType: ev.EventType(),
		GameID:    view.Game.ID,
		SelfID:    view.SelfID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.Subject(view.Game.ID, ev.EventType()), data, nil
}

// sanitizeToken keeps a game id from adding subject levels or wildcards.
func sanitizeToken(s string) string {
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}
