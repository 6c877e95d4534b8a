package shiritori_client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/shiritori/go/clients"
	"github.com/mcdev12/shiritori/go/internal/models"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*ShiritoriClient, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewShiritoriClient(srv.URL)
	require.NoError(t, err)
	return c, &calls
}

func TestCreateGame(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"abcde","status":"WAITING","settings":{"locale":"en","wordLength":4,"turnTime":30,"maxTurns":5},"players":[],"words":[]}`))
	})

	game, err := c.CreateGame(context.Background(), models.GameSettings{Locale: "en", WordLength: 4, TurnTime: 30, MaxTurns: 5})
	require.NoError(t, err)
	assert.Equal(t, "abcde", game.ID)
	assert.Equal(t, models.GameStatusWaiting, game.Status)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, GamesEndpoint, call.path)
	settings := call.body["settings"].(map[string]any)
	assert.Equal(t, float64(4), settings["wordLength"])
}

func TestJoinGame(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p-1"}`))
	})

	ref, err := c.JoinGame(context.Background(), "abcde", "ann")
	require.NoError(t, err)
	assert.Equal(t, "p-1", ref.ID)

	call := (*calls)[0]
	assert.Equal(t, "/api/game/abcde/join/", call.path)
	assert.Equal(t, "ann", call.body["name"])
}

func TestJoinGame_MissingID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.JoinGame(context.Background(), "abcde", "ann")
	assert.Error(t, err)
}

func TestJoinGame_ServerRejects(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Game already started"}`))
	})

	_, err := c.JoinGame(context.Background(), "abcde", "ann")
	var apiErr *clients.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Game already started", apiErr.Detail)
}

func TestGameActionPaths(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	require.NoError(t, c.LeaveGame(ctx, "g1"))
	require.NoError(t, c.StartGame(ctx, "g1", nil))
	require.NoError(t, c.RestartGame(ctx, "g1"))
	require.NoError(t, c.SubmitTurn(ctx, "g1", "tiger"))

	paths := make([]string, 0, len(*calls))
	for _, call := range *calls {
		assert.Equal(t, http.MethodPost, call.method)
		paths = append(paths, call.path)
	}
	assert.Equal(t, []string{
		"/api/game/g1/leave/",
		"/api/game/g1/start/",
		"/api/game/g1/restart/",
		"/api/game/g1/turn/",
	}, paths)
	assert.Equal(t, "tiger", (*calls)[3].body["word"])
}

func TestGetGame(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"g1","status":"PLAYING","turnTimeLeft":12,"lastWord":"k"}`))
	})

	game, err := c.GetGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 12, game.TurnTimeLeft)
	require.NotNil(t, game.LastWord)
	assert.Equal(t, "k", *game.LastWord)
	assert.Equal(t, http.MethodGet, (*calls)[0].method)
	assert.Equal(t, "/api/game/g1/", (*calls)[0].path)
}

func TestSetCsrfCookie(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: CsrfCookieName, Value: "t0k", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "s1", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})

	assert.False(t, c.HasSession())
	require.NoError(t, c.SetCsrfCookie(context.Background()))
	assert.Equal(t, "t0k", c.Cookie(CsrfCookieName))
	assert.True(t, c.HasSession())
}
