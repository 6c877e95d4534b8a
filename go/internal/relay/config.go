package relay

import (
	"time"

	"github.com/nats-io/nats.go"
)

// Config holds the NATS settings of the relay.
type Config struct {
	URL           string
	SubjectPrefix string // subjects are {prefix}.game.{gameId}.{eventType}
	JetStream     bool   // publish into a stream instead of core NATS
	StreamName    string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns the default relay configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "shiritori",
		StreamName:    "SHIRITORI_EVENTS",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}
