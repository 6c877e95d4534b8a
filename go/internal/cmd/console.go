package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcdev12/shiritori/go/internal/game/events"
	"github.com/mcdev12/shiritori/go/internal/game/state"
	"github.com/mcdev12/shiritori/go/internal/models"
)

// consoleRenderer prints game changes. It runs on the session loop.
type consoleRenderer struct {
	out io.Writer
}

func (c *consoleRenderer) Observe(ev events.Event, view state.View) {
	if ev == nil {
		if view.IsMyTurn && view.Countdown > 0 && view.Countdown <= 10 {
			fmt.Fprintf(c.out, "  %ds left\n", view.Countdown)
		}
		return
	}

	switch e := ev.(type) {
	case events.Connected:
		fmt.Fprintf(c.out, "connected to game %s\n", e.Game.ID)
		renderStatus(c.out, view)
	case events.GameUpdated:
		renderStatus(c.out, view)
	case events.PlayerJoined:
		fmt.Fprintf(c.out, "%s joined\n", e.Player.Name)
	case events.PlayerLeft:
		fmt.Fprintf(c.out, "player %s left\n", e.PlayerID)
	case events.PlayerConnected:
		fmt.Fprintf(c.out, "%s is back\n", playerName(view, e.PlayerID))
	case events.PlayerDisconnected:
		fmt.Fprintf(c.out, "%s lost connection\n", playerName(view, e.PlayerID))
	case events.PlayerUpdated:
		if e.Player.IsCurrent {
			renderTurn(c.out, view)
		}
	case events.TurnTaken:
		fmt.Fprintf(c.out, "%s played %q (+%.0f)\n", playerName(view, e.Word.PlayerID), e.Word.Word, e.Word.Score)
	}
}

func renderStatus(out io.Writer, view state.View) {
	if view.Game == nil {
		fmt.Fprintln(out, "not in a game")
		return
	}

	fmt.Fprintf(out, "game %s  [%s]  %d words\n", view.Game.ID, view.Status, len(view.Game.Words))
	for i, p := range view.Leaderboard {
		var flags []string
		if p.ID == view.SelfID {
			flags = append(flags, "you")
		}
		if p.IsHost {
			flags = append(flags, "host")
		}
		if !p.IsConnected {
			flags = append(flags, "offline")
		}
		if p.IsCurrent {
			flags = append(flags, "turn")
		}
		fmt.Fprintf(out, "  %d. %-16s %6.1f  %s\n", i+1, p.Name, p.Score, strings.Join(flags, ","))
	}

	switch view.Status {
	case models.GameStatusWaiting:
		if view.CanStart {
			fmt.Fprintln(out, "type /start to begin")
		}
	case models.GameStatusPlaying:
		renderTurn(out, view)
	case models.GameStatusFinished:
		if view.Winner != nil {
			fmt.Fprintf(out, "winner: %s\n", view.Winner.Name)
		}
	}
}

func renderTurn(out io.Writer, view state.View) {
	if !view.IsMyTurn {
		return
	}
	if view.ChainLetter != "" {
		fmt.Fprintf(out, "your turn, word starting with %q (%ds)\n", view.ChainLetter, view.Countdown)
		return
	}
	fmt.Fprintf(out, "your turn (%ds)\n", view.Countdown)
}

func playerName(view state.View, playerID string) string {
	if view.Game != nil {
		if i := view.Game.PlayerIndex(playerID); i >= 0 {
			return view.Game.Players[i].Name
		}
	}
	return playerID
}
