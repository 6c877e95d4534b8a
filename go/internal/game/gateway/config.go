package gateway

import (
	"net/http"
	"net/url"
	"time"
)

// ConnectionConfig holds configuration for the realtime game connection
type ConnectionConfig struct {
	Host   string // host[:port] of the game server
	Secure bool   // wss instead of ws

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration // 0 disables the read deadline
	PingInterval     time.Duration // 0 disables keepalive pings
	MaxMessageSize   int64
	ReadBufferSize   int
	WriteBufferSize  int
	FrameBufferSize  int

	// Jar carries the session cookie so the server can resolve "me".
	Jar http.CookieJar
	// Header is sent with the handshake (Origin, User-Agent).
	Header http.Header
}

// DefaultConnectionConfig returns default realtime connection configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Host:             "127.0.0.1:8000",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   1 << 20, // full game snapshots
		ReadBufferSize:   4096,
		WriteBufferSize:  1024,
		FrameBufferSize:  256,
	}
}

// GameURL builds the realtime endpoint for one room: {ws|wss}://host/ws/game/{id}/
func (c ConnectionConfig) GameURL(gameID string) string {
	scheme := "ws"
	if c.Secure {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   c.Host,
		Path:   "/ws/game/" + url.PathEscape(gameID) + "/",
	}
	return u.String()
}
