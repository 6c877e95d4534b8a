package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/shiritori/go/internal/game/events"
	"github.com/mcdev12/shiritori/go/internal/game/gateway"
	"github.com/mcdev12/shiritori/go/internal/game/state"
	"github.com/mcdev12/shiritori/go/internal/models"
)

// TestSession_OverWebsocket drives a session through a real connection manager.
func TestSession_OverWebsocket(t *testing.T) {
	conns := make(chan *websocket.Conn, 4)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	defer srv.Close()

	cfg := gateway.DefaultConnectionConfig()
	cfg.Host = strings.TrimPrefix(srv.URL, "http://")
	cm := gateway.NewConnectionManager(cfg)
	defer cm.Disconnect()

	api := &fakeAPI{game: &models.Game{ID: "abcde"}, joinID: "p2"}
	s, err := New(Deps{API: api, Transport: cm})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.NoError(t, s.JoinGame(ctx, "abcde", "bob"))

	var server *websocket.Conn
	select {
	case server = <-conns:
		defer server.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw a connection")
	}

	game := models.Game{
		ID:     "abcde",
		Status: models.GameStatusPlaying,
		Players: []models.Player{
			{ID: "p1", Name: "ann", IsHost: true, IsConnected: true},
			{ID: "p2", Name: "bob", IsConnected: true, IsCurrent: true},
		},
		TurnTimeLeft: 30,
	}
	for _, ev := range []events.Event{
		events.Connected{Game: game, SelfPlayer: "p2"},
		events.TurnTaken{Word: models.Word{Word: "apple", Score: 4, PlayerID: "p1"}},
	} {
		data, err := events.Encode(ev)
		require.NoError(t, err)
		require.NoError(t, server.WriteMessage(websocket.TextMessage, data))
	}

	var v state.View
	require.Eventually(t, func() bool {
		got, verr := s.View(ctx)
		if verr != nil {
			return false
		}
		v = got
		return v.Game != nil && len(v.Game.Words) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, v.IsMyTurn)
	assert.Equal(t, "e", v.LastLetter)
	assert.Equal(t, "p1", v.Leaderboard[0].ID)
	assert.False(t, v.CanStart)
}
