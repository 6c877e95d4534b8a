package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/shiritori/go/internal/game/events"
	"github.com/mcdev12/shiritori/go/internal/game/gateway"
	"github.com/mcdev12/shiritori/go/internal/game/state"
	"github.com/mcdev12/shiritori/go/internal/models"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	game    *models.Game
	joinID  string
	joinErr error
	callErr error
	words   []string
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) CreateGame(_ context.Context, settings models.GameSettings) (*models.Game, error) {
	f.record("create")
	if f.callErr != nil {
		return nil, f.callErr
	}
	g := f.game.Clone()
	g.Settings = settings
	return g, nil
}

func (f *fakeAPI) GetGame(_ context.Context, gameID string) (*models.Game, error) {
	f.record("get " + gameID)
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.game.Clone(), nil
}

func (f *fakeAPI) JoinGame(_ context.Context, gameID, name string) (*models.PlayerRef, error) {
	f.record("join " + gameID + " " + name)
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return &models.PlayerRef{ID: f.joinID}, nil
}

func (f *fakeAPI) LeaveGame(_ context.Context, gameID string) error {
	f.record("leave " + gameID)
	return f.callErr
}

func (f *fakeAPI) StartGame(_ context.Context, gameID string, _ *models.GameSettings) error {
	f.record("start " + gameID)
	return f.callErr
}

func (f *fakeAPI) RestartGame(_ context.Context, gameID string) error {
	f.record("restart " + gameID)
	return f.callErr
}

func (f *fakeAPI) SubmitTurn(_ context.Context, gameID, word string) error {
	f.record("turn " + gameID)
	f.mu.Lock()
	f.words = append(f.words, word)
	f.mu.Unlock()
	return f.callErr
}

type connectCall struct {
	gameID    string
	reconnect bool
}

type fakeTransport struct {
	mu          sync.Mutex
	frames      chan gateway.Frame
	currentID   string
	connects    []connectCall
	disconnects int
	connectErr  error
	onConnect   func()
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{frames: make(chan gateway.Frame, 16)}
}

func (f *fakeTransport) Connect(_ context.Context, gameID string, reconnect bool) error {
	if f.onConnect != nil {
		f.onConnect()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, connectCall{gameID: gameID, reconnect: reconnect})
	if f.connectErr != nil {
		return f.connectErr
	}
	f.currentID = fmt.Sprintf("conn-%d", len(f.connects))
	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	f.currentID = ""
}

func (f *fakeTransport) Frames() <-chan gateway.Frame {
	return f.frames
}

func (f *fakeTransport) CurrentID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentID
}

func (f *fakeTransport) Connects() []connectCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]connectCall(nil), f.connects...)
}

// push delivers ev as a frame of the current connection.
func (f *fakeTransport) push(t *testing.T, ev events.Event) {
	t.Helper()
	f.pushRaw(t, f.CurrentID(), mustEncode(t, ev))
}

func (f *fakeTransport) pushRaw(t *testing.T, connID string, data []byte) {
	t.Helper()
	select {
	case f.frames <- gateway.Frame{ConnectionID: connID, GameID: "abcde", Data: data, ReceivedAt: time.Now()}:
	case <-time.After(time.Second):
		t.Fatal("frame channel full")
	}
}

func mustEncode(t *testing.T, ev events.Event) []byte {
	t.Helper()
	data, err := events.Encode(ev)
	require.NoError(t, err)
	return data
}

type harness struct {
	session   *Session
	api       *fakeAPI
	transport *fakeTransport
	clock     *clockwork.FakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		api: &fakeAPI{
			game:   &models.Game{ID: "abcde", Status: models.GameStatusWaiting, Settings: models.DefaultGameSettings()},
			joinID: "p1",
		},
		transport: newFakeTransport(),
		clock:     clockwork.NewFakeClock(),
	}

	s, err := New(Deps{API: h.api, Transport: h.transport, Clock: h.clock})
	require.NoError(t, err)
	h.session = s

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("session loop did not stop")
		}
	})
	return h
}

func (h *harness) view(t *testing.T) state.View {
	t.Helper()
	v, err := h.session.View(context.Background())
	require.NoError(t, err)
	return v
}

// eventually polls the loop until cond holds for its view.
func (h *harness) eventually(t *testing.T, cond func(v state.View) bool) state.View {
	t.Helper()
	var last state.View
	require.Eventually(t, func() bool {
		v, err := h.session.View(context.Background())
		if err != nil {
			return false
		}
		last = v
		return cond(v)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

func testPlayer(id string, host, connected bool) models.Player {
	return models.Player{ID: id, Name: id, Type: models.PlayerTypeHuman, IsHost: host, IsConnected: connected}
}
