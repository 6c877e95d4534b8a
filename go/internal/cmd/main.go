package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/shiritori/go/clients/shiritori_client"
	"github.com/mcdev12/shiritori/go/internal/game/gateway"
	"github.com/mcdev12/shiritori/go/internal/game/session"
	"github.com/mcdev12/shiritori/go/internal/history"
	"github.com/mcdev12/shiritori/go/internal/models"
	"github.com/mcdev12/shiritori/go/internal/relay"
)

func main() {
	configPath := flag.String("config", "shiritori.yaml", "path to the YAML config file")
	gameID := flag.String("game", "", "game to join on start")
	name := flag.String("name", "", "player name")
	flag.Parse()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *name != "" {
		config.Player.Name = *name
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := shiritori_client.NewShiritoriClient(config.baseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create api client")
	}
	if err := client.SetCsrfCookie(ctx); err != nil {
		log.Fatal().Err(err).Str("api", config.baseURL()).Msg("failed to reach game server")
	}

	connConfig := gateway.DefaultConnectionConfig()
	connConfig.Host = config.API.Host
	connConfig.Secure = config.API.Secure
	connConfig.Jar = client.Jar()
	connections := gateway.NewConnectionManager(connConfig)
	defer connections.Disconnect()

	sess, err := session.New(session.Deps{
		API:          client,
		Transport:    connections,
		Clock:        clockwork.NewRealClock(),
		TickInterval: config.TickInterval,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session")
	}
	sess.Subscribe(&consoleRenderer{out: os.Stdout})

	var recorder *history.Recorder
	if config.History.Path != "" {
		recorder, err = history.Open(config.History.Path, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open history")
		}
		defer recorder.Close()
		sess.Subscribe(recorder)
	}

	if config.Relay.URL != "" {
		relayConfig := relay.DefaultConfig()
		relayConfig.URL = config.Relay.URL
		relayConfig.SubjectPrefix = config.Relay.Subject
		relayConfig.JetStream = config.Relay.JetStream

		rl, err := relay.Connect(ctx, relayConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start event relay")
		}
		defer rl.Close()
		sess.Subscribe(rl)
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- sess.Run(ctx) }()

	log.Info().
		Str("api", config.baseURL()).
		Bool("history", recorder != nil).
		Bool("relay", config.Relay.URL != "").
		Msg("shiritori client started")

	runner := &commandRunner{
		session:  sess,
		history:  recorder,
		out:      os.Stdout,
		name:     config.Player.Name,
		settings: models.DefaultGameSettings(),
		limit:    config.History.Limit,
	}

	if *gameID != "" {
		if err := runner.run(ctx, command{name: "join", args: []string{*gameID}}); err != nil {
			log.Error().Err(err).Str("game_id", *gameID).Msg("failed to join game")
		}
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println(helpText)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			shutdown(runner, stop, loopDone)
			return
		case line, ok := <-lines:
			if !ok {
				shutdown(runner, stop, loopDone)
				return
			}
			cmd, err := parseCommand(line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err = runner.run(reqCtx, cmd)
			cancel()
			if errors.Is(err, errQuit) {
				shutdown(runner, stop, loopDone)
				return
			}
			if err != nil {
				fmt.Println("error:", describeError(err))
			}
		}
	}
}

// shutdown leaves the current game while the loop still runs, then stops the
// loop and waits for it.
func shutdown(runner *commandRunner, stop context.CancelFunc, loopDone <-chan error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if view, err := runner.session.View(ctx); err == nil && view.Game != nil {
		if err := runner.session.LeaveGame(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to leave game on shutdown")
		}
	}
	stop()

	select {
	case err := <-loopDone:
		if err != nil {
			log.Error().Err(err).Msg("session loop failed")
		}
	case <-ctx.Done():
		log.Warn().Msg("session loop did not stop in time")
	}
}
