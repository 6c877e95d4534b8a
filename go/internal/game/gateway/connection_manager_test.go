package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGameServer accepts /ws/game/{id}/ and hands each server-side conn to the test.
type fakeGameServer struct {
	*httptest.Server
	accepted atomic.Int32
	conns    chan *websocket.Conn
	paths    chan string
}

func newFakeGameServer(t *testing.T) *fakeGameServer {
	t.Helper()
	fs := &fakeGameServer{
		conns: make(chan *websocket.Conn, 8),
		paths: make(chan string, 8),
	}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ws/game/") {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fs.accepted.Add(1)
		fs.paths <- r.URL.Path
		fs.conns <- conn
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeGameServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-fs.conns:
		t.Cleanup(func() { c.Close() })
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side connection")
		return nil
	}
}

func newTestManager(fs *fakeGameServer) *ConnectionManager {
	cfg := DefaultConnectionConfig()
	cfg.Host = strings.TrimPrefix(fs.URL, "http://")
	return NewConnectionManager(cfg)
}

func recvFrame(t *testing.T, cm *ConnectionManager) Frame {
	t.Helper()
	select {
	case f := <-cm.Frames():
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Frame{}
	}
}

func waitState(t *testing.T, c *Connection, want ConnState) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, 2*time.Second, 10*time.Millisecond)
}

func TestGameURL(t *testing.T) {
	cfg := ConnectionConfig{Host: "example.com"}
	assert.Equal(t, "ws://example.com/ws/game/abc12/", cfg.GameURL("abc12"))

	cfg.Secure = true
	assert.Equal(t, "wss://example.com/ws/game/abc12/", cfg.GameURL("abc12"))
}

func TestConnect_DeliversFramesInOrder(t *testing.T) {
	fs := newFakeGameServer(t)
	cm := newTestManager(fs)
	defer cm.Disconnect()

	require.NoError(t, cm.Connect(context.Background(), "room1", false))
	server := fs.nextConn(t)
	assert.Equal(t, "/ws/game/room1/", <-fs.paths)
	assert.Equal(t, StateOpen, cm.State())

	for _, msg := range []string{`{"type":"a"}`, `{"type":"b"}`, `{"type":"c"}`} {
		require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(msg)))
	}

	id := cm.CurrentID()
	for _, want := range []string{`{"type":"a"}`, `{"type":"b"}`, `{"type":"c"}`} {
		f := recvFrame(t, cm)
		assert.Equal(t, want, string(f.Data))
		assert.Equal(t, id, f.ConnectionID)
		assert.Equal(t, "room1", f.GameID)
	}
}

func TestConnect_NoopWhenOpen(t *testing.T) {
	fs := newFakeGameServer(t)
	cm := newTestManager(fs)
	defer cm.Disconnect()

	require.NoError(t, cm.Connect(context.Background(), "room1", false))
	fs.nextConn(t)
	first := cm.CurrentID()

	require.NoError(t, cm.Connect(context.Background(), "room1", false))
	require.NoError(t, cm.Connect(context.Background(), "room1", true))

	assert.Equal(t, first, cm.CurrentID())
	assert.Equal(t, int32(1), fs.accepted.Load())
	assert.Equal(t, int64(1), cm.Stats().Dials)
}

func TestConnect_ReconnectReplacesClosedHandle(t *testing.T) {
	fs := newFakeGameServer(t)
	cm := newTestManager(fs)
	defer cm.Disconnect()

	require.NoError(t, cm.Connect(context.Background(), "room1", false))
	server := fs.nextConn(t)
	old := cm.Current()
	require.NotNil(t, old)

	// transport loss: the server drops the socket
	server.Close()
	waitState(t, old, StateClosed)
	assert.Equal(t, StateClosed, cm.State(), "no automatic retry")

	require.NoError(t, cm.Connect(context.Background(), "room1", true))
	fs.nextConn(t)
	next := cm.Current()

	require.NotNil(t, next)
	assert.NotEqual(t, old.ID, next.ID)
	assert.Equal(t, StateClosed, old.State())
	assert.Equal(t, StateOpen, next.State())
	assert.Equal(t, int32(2), fs.accepted.Load(), "exactly one new handle")
	assert.Equal(t, int64(1), cm.Stats().Reconnects)
}

func TestConnect_OtherRoomReplacesHandle(t *testing.T) {
	fs := newFakeGameServer(t)
	cm := newTestManager(fs)
	defer cm.Disconnect()

	require.NoError(t, cm.Connect(context.Background(), "room1", false))
	fs.nextConn(t)
	old := cm.Current()

	require.NoError(t, cm.Connect(context.Background(), "room2", false))
	fs.nextConn(t)

	assert.Equal(t, StateClosed, old.State())
	assert.Equal(t, "room2", cm.Current().GameID)
}

func TestConnect_ConcurrentCallsDialOnce(t *testing.T) {
	fs := newFakeGameServer(t)
	cm := newTestManager(fs)
	defer cm.Disconnect()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cm.Connect(context.Background(), "room1", false))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fs.accepted.Load())
}

func TestDisconnect_Idempotent(t *testing.T) {
	fs := newFakeGameServer(t)
	cm := newTestManager(fs)

	cm.Disconnect()
	assert.Equal(t, StateIdle, cm.State())

	require.NoError(t, cm.Connect(context.Background(), "room1", false))
	fs.nextConn(t)
	c := cm.Current()

	cm.Disconnect()
	cm.Disconnect()

	assert.Equal(t, StateIdle, cm.State())
	assert.Empty(t, cm.CurrentID())
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("handle not closed")
	}
}

func TestConnect_DialFailure(t *testing.T) {
	fs := newFakeGameServer(t)
	cm := newTestManager(fs)
	cm.config.Host = "127.0.0.1:1" // nothing listens here
	cm.dialer.HandshakeTimeout = 500 * time.Millisecond

	err := cm.Connect(context.Background(), "room1", false)
	require.Error(t, err)
	assert.Equal(t, StateIdle, cm.State())
}

func TestConnect_RequiresGameID(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	assert.Error(t, cm.Connect(context.Background(), "", false))
}

// slowGameServer accepts room1 immediately and holds the "slow" room's
// handshake until the returned release func is called.
func slowGameServer(t *testing.T) (*httptest.Server, chan struct{}, func()) {
	t.Helper()
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "slow") {
			arrived <- struct{}{}
			<-release
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	var once sync.Once
	releaseFn := func() { once.Do(func() { close(release) }) }
	t.Cleanup(releaseFn)
	return srv, arrived, releaseFn
}

func TestConnect_ReadersDoNotWaitOnDial(t *testing.T) {
	srv, arrived, release := slowGameServer(t)
	cfg := DefaultConnectionConfig()
	cfg.Host = strings.TrimPrefix(srv.URL, "http://")
	cm := NewConnectionManager(cfg)
	defer cm.Disconnect()

	require.NoError(t, cm.Connect(context.Background(), "room1", false))
	old := cm.Current()

	dialErr := make(chan error, 1)
	go func() { dialErr <- cm.Connect(context.Background(), "slow", true) }()

	select {
	case <-arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("slow dial never reached the server")
	}

	start := time.Now()
	id := cm.CurrentID()
	state := cm.State()
	stats := cm.Stats()
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	assert.Empty(t, id, "stale handle is released before the dial")
	assert.Equal(t, StateIdle, state)
	assert.Empty(t, stats.ConnectionID)
	assert.Equal(t, StateClosed, old.State())

	// Disconnect during the dial aborts it; nothing gets installed.
	cm.Disconnect()
	release()
	select {
	case err := <-dialErr:
		assert.ErrorIs(t, err, ErrDialAborted)
	case <-time.After(cfg.HandshakeTimeout + time.Second):
		t.Fatal("aborted dial did not return")
	}
	assert.Equal(t, StateIdle, cm.State())
	assert.Empty(t, cm.CurrentID())
}
