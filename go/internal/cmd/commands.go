package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mcdev12/shiritori/go/clients"
	"github.com/mcdev12/shiritori/go/internal/game/session"
	"github.com/mcdev12/shiritori/go/internal/history"
	"github.com/mcdev12/shiritori/go/internal/models"
)

var errQuit = errors.New("quit")

type command struct {
	name string
	args []string
}

// parseCommand turns a console line into a command. A line without a leading
// slash is a word submission.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return command{}, errors.New("empty command")
	}
	if !strings.HasPrefix(line, "/") {
		return command{name: "turn", args: []string{line}}, nil
	}

	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return command{}, errors.New("empty command")
	}
	cmd := command{name: strings.ToLower(fields[0]), args: fields[1:]}

	switch cmd.name {
	case "join":
		if len(cmd.args) < 1 {
			return command{}, errors.New("usage: /join <game-id> [name]")
		}
	case "turn":
		if len(cmd.args) != 1 {
			return command{}, errors.New("usage: /turn <word>")
		}
	case "create", "start", "restart", "leave", "refresh", "reconnect", "status", "history", "help", "quit":
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
	return cmd, nil
}

type commandRunner struct {
	session  *session.Session
	history  *history.Recorder
	out      io.Writer
	name     string
	settings models.GameSettings
	limit    int
}

func (r *commandRunner) run(ctx context.Context, cmd command) error {
	switch cmd.name {
	case "create":
		if err := r.requireName(cmd.args, 0); err != nil {
			return err
		}
		game, err := r.session.HandleCreateGame(ctx, r.name, r.settings)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "created game %s\n", game.ID)
	case "join":
		if err := r.requireName(cmd.args, 1); err != nil {
			return err
		}
		return r.session.JoinGame(ctx, cmd.args[0], r.name)
	case "start":
		return r.session.StartGame(ctx, nil)
	case "restart":
		return r.session.RestartGame(ctx)
	case "leave":
		return r.session.LeaveGame(ctx)
	case "turn":
		return r.session.SubmitTurn(ctx, cmd.args[0])
	case "refresh":
		return r.session.Refresh(ctx)
	case "reconnect":
		return r.session.Reconnect(ctx)
	case "status":
		view, err := r.session.View(ctx)
		if err != nil {
			return err
		}
		renderStatus(r.out, view)
	case "history":
		return r.printHistory(ctx)
	case "help":
		fmt.Fprintln(r.out, helpText)
	case "quit":
		return errQuit
	}
	return nil
}

// requireName takes the player name from args[i] when given.
func (r *commandRunner) requireName(args []string, i int) error {
	if len(args) > i {
		r.name = strings.Join(args[i:], " ")
	}
	if r.name == "" {
		return errors.New("a player name is required")
	}
	return nil
}

func (r *commandRunner) printHistory(ctx context.Context) error {
	if r.history == nil {
		return errors.New("history is disabled, set SHIRITORI_HISTORY_PATH")
	}
	records, err := r.history.Recent(ctx, r.limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(r.out, "no finished games yet")
	}
	for _, rec := range records {
		winner := "-"
		for _, p := range rec.Players {
			if rec.WinnerID != nil && p.PlayerID == *rec.WinnerID {
				winner = p.Name
			}
		}
		fmt.Fprintf(r.out, "%s  game %s  winner %s  %d words\n",
			rec.FinishedAt.Local().Format("2006-01-02 15:04"), rec.GameID, winner, rec.WordCount)
	}
	return nil
}

// describeError prefers the server's detail message over the raw error.
func describeError(err error) string {
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return err.Error()
}

const helpText = `commands:
  /create [name]          create a game and join it
  /join <game-id> [name]  join a game
  /start                  start the game (host only)
  /restart                restart a finished game
  /leave                  leave the game
  <word> or /turn <word>  play a word
  /refresh                reload the game from the server
  /reconnect              reopen the realtime connection
  /status                 show the game
  /history                show finished games
  /quit`
