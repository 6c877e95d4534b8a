package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/shiritori/go/internal/game/clock"
	"github.com/mcdev12/shiritori/go/internal/game/events"
	"github.com/mcdev12/shiritori/go/internal/game/gateway"
	"github.com/mcdev12/shiritori/go/internal/game/state"
	"github.com/mcdev12/shiritori/go/internal/models"
)

var (
	ErrStopped        = errors.New("session is not running")
	ErrAlreadyRunning = errors.New("session is already running")
)

// GameAPI is the request layer the session issues actions through.
type GameAPI interface {
	CreateGame(ctx context.Context, settings models.GameSettings) (*models.Game, error)
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	JoinGame(ctx context.Context, gameID, name string) (*models.PlayerRef, error)
	LeaveGame(ctx context.Context, gameID string) error
	StartGame(ctx context.Context, gameID string, settings *models.GameSettings) error
	RestartGame(ctx context.Context, gameID string) error
	SubmitTurn(ctx context.Context, gameID, word string) error
}

// Transport is the realtime side of the session.
type Transport interface {
	Connect(ctx context.Context, gameID string, reconnect bool) error
	Disconnect()
	Frames() <-chan gateway.Frame
	CurrentID() string
}

// Observer is notified after every change the loop applies. ev is nil for
// local changes (ticks, session writes). Observers run on the loop goroutine
// and must not block.
type Observer interface {
	Observe(ev events.Event, view state.View)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev events.Event, view state.View)

func (f ObserverFunc) Observe(ev events.Event, view state.View) { f(ev, view) }

// Deps are the collaborators of a Session.
type Deps struct {
	API          GameAPI
	Transport    Transport
	Clock        clockwork.Clock
	TickInterval time.Duration
	InboxSize    int
}

// Session is the single owner of the game state. Every write to the store
// happens on the goroutine running Run.
type Session struct {
	api       GameAPI
	transport Transport
	ticker    *clock.Ticker
	store     *state.Store

	inbox   chan request
	running atomic.Bool
	stopped chan struct{}

	obsMu     sync.RWMutex
	observers []Observer
}

// New creates a session. Run must be called before any action.
func New(deps Deps) (*Session, error) {
	if deps.API == nil {
		return nil, errors.New("session requires a game api")
	}
	if deps.Transport == nil {
		return nil, errors.New("session requires a transport")
	}
	if deps.InboxSize <= 0 {
		deps.InboxSize = 64
	}

	return &Session{
		api:       deps.API,
		transport: deps.Transport,
		ticker:    clock.NewTicker(deps.Clock, deps.TickInterval),
		store:     state.NewStore(),
		inbox:     make(chan request, deps.InboxSize),
		stopped:   make(chan struct{}),
	}, nil
}

// Subscribe registers an observer. Safe to call at any time.
func (s *Session) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Run drains frames, clock ticks and local writes in arrival order until ctx
// is cancelled.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(s.stopped)

	tickCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.ticker.Run(tickCtx)

	frames := s.transport.Frames()
	log.Info().Msg("session loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session loop stopped")
			return nil

		case f, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			s.handleFrame(f)

		case <-s.ticker.Ticks():
			if s.store.Tick() {
				s.notify(nil)
			}

		case req := <-s.inbox:
			s.handle(req)
		}
	}
}

// View returns every projection computed at one point of the loop.
func (s *Session) View(ctx context.Context) (state.View, error) {
	reply := make(chan state.View, 1)
	if err := s.post(ctx, getView{reply: reply}); err != nil {
		return state.View{}, err
	}
	return <-reply, nil
}

func (s *Session) handleFrame(f gateway.Frame) {
	if current := s.transport.CurrentID(); f.ConnectionID != current {
		log.Debug().
			Str("connection_id", f.ConnectionID).
			Str("current_id", current).
			Msg("dropping frame from superseded connection")
		return
	}

	ev, err := events.Decode(f.Data)
	if err != nil {
		if errors.Is(err, events.ErrUnknownEventType) {
			log.Debug().Err(err).Str("game_id", f.GameID).Msg("ignoring unknown event")
		} else {
			log.Warn().Err(err).Str("game_id", f.GameID).Msg("ignoring malformed event")
		}
		return
	}

	s.store.Apply(ev)
	s.notify(ev)
}

func (s *Session) handle(req request) {
	defer close(req.done)

	switch m := req.msg.(type) {
	case setGame:
		s.store.SetGame(m.game)
	case setSelf:
		s.store.SetSelf(m.playerID)
	case setJoining:
		s.store.SetJoining(m.joining)
	case reset:
		s.store.Reset()
	case getView:
		m.reply <- s.store.View()
		return
	}
	s.notify(nil)
}

func (s *Session) notify(ev events.Event) {
	s.obsMu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()

	if len(observers) == 0 {
		return
	}

	view := s.store.View()
	for _, o := range observers {
		o.Observe(ev, view)
	}
}

// post hands a message to the loop and waits until it has been applied.
func (s *Session) post(ctx context.Context, m msg) error {
	req := request{msg: m, done: make(chan struct{})}

	select {
	case s.inbox <- req:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
