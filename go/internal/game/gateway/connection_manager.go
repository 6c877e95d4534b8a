package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned when an operation needs a live connection.
var ErrNotConnected = errors.New("not connected")

// ConnState is the lifecycle state of a connection handle.
type ConnState int32

const (
	StateIdle ConnState = iota // no handle
	StateOpen
	StateClosed // handle exists but the transport is gone
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Frame is one inbound text message, tagged with the handle it arrived on.
type Frame struct {
	ConnectionID string
	GameID       string
	Data         []byte
	ReceivedAt   time.Time
}

// ConnectionManager owns at most one live realtime connection. It never retries
// on its own: after transport loss the consumer decides when to call Connect
// again.
type ConnectionManager struct {
	config ConnectionConfig
	dialer *websocket.Dialer

	// connectMu serializes Connect so at most one dial is in flight.
	connectMu sync.Mutex

	// mu guards cancelDial and the install of a freshly dialed handle. It is
	// never held across network I/O.
	mu         sync.Mutex
	cancelDial context.CancelFunc

	// current is read without locks so readers never wait on a dial.
	current atomic.Pointer[Connection]

	frames chan Frame

	dials      atomic.Int64
	reconnects atomic.Int64
}

// ErrDialAborted is returned by Connect when Disconnect ran during the dial.
var ErrDialAborted = errors.New("dial aborted by disconnect")

// Connection represents one websocket handle to a game room
type Connection struct {
	ID          string
	GameID      string
	Conn        *websocket.Conn
	ConnectedAt time.Time

	manager   *ConnectionManager
	state     atomic.Int32
	lastPong  atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
}

// ConnectionStats is a point-in-time summary of the manager.
type ConnectionStats struct {
	State        string
	ConnectionID string
	GameID       string
	Dials        int64
	Reconnects   int64
	PendingFrame int
}

// NewConnectionManager creates a new realtime connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	if config.FrameBufferSize <= 0 {
		config.FrameBufferSize = DefaultConnectionConfig().FrameBufferSize
	}
	return &ConnectionManager{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: config.HandshakeTimeout,
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
			Jar:              config.Jar,
		},
		frames: make(chan Frame, config.FrameBufferSize),
	}
}

// Frames is the subscription point: every inbound message of every handle, in
// arrival order. Frames from a superseded handle may still be buffered; compare
// Frame.ConnectionID with CurrentID before trusting one.
func (cm *ConnectionManager) Frames() <-chan Frame {
	return cm.frames
}

// Connect opens the room connection. It is a no-op while a handle for the same
// room is open. A handle that is not open, or belongs to another room, is
// closed before exactly one new handle is dialed. The dial runs without
// holding the lock readers use, and a concurrent Disconnect aborts it.
func (cm *ConnectionManager) Connect(ctx context.Context, gameID string, reconnect bool) error {
	if gameID == "" {
		return errors.New("game id is required")
	}

	cm.connectMu.Lock()
	defer cm.connectMu.Unlock()

	if c := cm.current.Load(); c != nil {
		if c.State() == StateOpen && c.GameID == gameID {
			log.Debug().
				Str("connection_id", c.ID).
				Str("game_id", gameID).
				Msg("connection already open, nothing to do")
			return nil
		}

		log.Info().
			Str("connection_id", c.ID).
			Str("game_id", c.GameID).
			Str("state", c.State().String()).
			Bool("reconnect", reconnect).
			Msg("closing stale connection before reconnect")
		cm.current.CompareAndSwap(c, nil)
		c.close(websocket.CloseNormalClosure, "reconnect")
	}

	dialCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	cm.mu.Lock()
	cm.cancelDial = cancel
	cm.mu.Unlock()

	url := cm.config.GameURL(gameID)
	conn, resp, err := cm.dialer.DialContext(dialCtx, url, cm.config.Header)

	cm.mu.Lock()
	aborted := cm.cancelDial == nil
	cm.cancelDial = nil
	if aborted {
		cm.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		log.Info().Str("game_id", gameID).Msg("dial aborted by disconnect")
		return ErrDialAborted
	}
	if err != nil {
		cm.mu.Unlock()
		if resp != nil {
			return fmt.Errorf("dial %s: status %d: %w", url, resp.StatusCode, err)
		}
		return fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Connection{
		ID:          uuid.New().String(),
		GameID:      gameID,
		Conn:        conn,
		ConnectedAt: time.Now(),
		manager:     cm,
		done:        make(chan struct{}),
	}
	c.state.Store(int32(StateOpen))
	c.lastPong.Store(c.ConnectedAt.UnixNano())
	cm.current.Store(c)
	cm.mu.Unlock()

	cm.dials.Add(1)
	if reconnect {
		cm.reconnects.Add(1)
	}

	go c.readPump()
	if cm.config.PingInterval > 0 {
		go c.pingPump()
	}

	log.Info().
		Str("connection_id", c.ID).
		Str("game_id", gameID).
		Bool("reconnect", reconnect).
		Msg("realtime connection established")

	return nil
}

// Disconnect aborts any dial in flight, closes any handle and clears the
// reference. Safe to call repeatedly.
func (cm *ConnectionManager) Disconnect() {
	cm.mu.Lock()
	if cm.cancelDial != nil {
		cm.cancelDial()
		cm.cancelDial = nil
	}
	c := cm.current.Swap(nil)
	cm.mu.Unlock()

	if c == nil {
		return
	}
	c.close(websocket.CloseNormalClosure, "bye")

	log.Info().
		Str("connection_id", c.ID).
		Str("game_id", c.GameID).
		Msg("realtime connection closed by client")
}

// State returns the state of the current handle, StateIdle when there is none.
func (cm *ConnectionManager) State() ConnState {
	if c := cm.current.Load(); c != nil {
		return c.State()
	}
	return StateIdle
}

// CurrentID returns the ID of the current handle, "" when there is none.
func (cm *ConnectionManager) CurrentID() string {
	if c := cm.current.Load(); c != nil {
		return c.ID
	}
	return ""
}

// Current returns the current handle, or nil.
func (cm *ConnectionManager) Current() *Connection {
	return cm.current.Load()
}

// Stats returns statistics about the connection manager
func (cm *ConnectionManager) Stats() ConnectionStats {
	stats := ConnectionStats{
		State:        StateIdle.String(),
		Dials:        cm.dials.Load(),
		Reconnects:   cm.reconnects.Load(),
		PendingFrame: len(cm.frames),
	}
	if c := cm.current.Load(); c != nil {
		stats.State = c.State().String()
		stats.ConnectionID = c.ID
		stats.GameID = c.GameID
	}
	return stats
}

// State returns the handle's lifecycle state.
func (c *Connection) State() ConnState {
	return ConnState(c.state.Load())
}

// Done is closed once the handle is closed for any reason.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// LastPong reports when the server last answered a ping.
func (c *Connection) LastPong() time.Time {
	return time.Unix(0, c.lastPong.Load())
}

// close tears down the handle once. Pending reads on it are abandoned.
func (c *Connection) close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		deadline := time.Now().Add(c.manager.config.WriteTimeout)
		_ = c.Conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		c.Conn.Close()
		close(c.done)
	})
}

// readPump delivers inbound frames until the transport fails or the handle is closed
func (c *Connection) readPump() {
	defer c.close(websocket.CloseGoingAway, "")

	cfg := c.manager.config
	if cfg.MaxMessageSize > 0 {
		c.Conn.SetReadLimit(cfg.MaxMessageSize)
	}
	c.extendReadDeadline()
	c.Conn.SetPongHandler(func(string) error {
		c.lastPong.Store(time.Now().UnixNano())
		c.extendReadDeadline()
		return nil
	})

	for {
		msgType, data, err := c.Conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// closed locally, nothing to report
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Error().
						Err(err).
						Str("connection_id", c.ID).
						Str("game_id", c.GameID).
						Msg("realtime connection lost")
				} else {
					log.Info().
						Str("connection_id", c.ID).
						Str("game_id", c.GameID).
						Msg("realtime connection closed by server")
				}
			}
			return
		}
		c.extendReadDeadline()

		if msgType != websocket.TextMessage {
			log.Debug().
				Str("connection_id", c.ID).
				Int("message_type", msgType).
				Msg("ignoring non-text frame")
			continue
		}

		frame := Frame{
			ConnectionID: c.ID,
			GameID:       c.GameID,
			Data:         data,
			ReceivedAt:   time.Now(),
		}
		select {
		case c.manager.frames <- frame:
		case <-c.done:
			return
		}
	}
}

// pingPump keeps the connection alive and lets the read deadline detect a dead peer
func (c *Connection) pingPump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.manager.config.WriteTimeout)
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Warn().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

func (c *Connection) extendReadDeadline() {
	if timeout := c.manager.config.ReadTimeout; timeout > 0 {
		c.Conn.SetReadDeadline(time.Now().Add(timeout))
	}
}
