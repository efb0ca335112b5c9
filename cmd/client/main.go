package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/client"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/repository"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/repository/storage"
)

type flags struct {
	url      string
	name     string
	animal   string
	redis    string
	owner    string
	logLevel string
}

func main() {
	var opts flags

	flag.StringVar(&opts.url, "url", "ws://localhost:8080/ws", "websocket endpoint of the server")
	flag.StringVar(&opts.name, "name", "", "player name shown to the opponent")
	flag.StringVar(&opts.animal, "animal", "", "player animal shown to the opponent")
	flag.StringVar(&opts.redis, "redis", "", "redis address for preferences; kept in memory when empty")
	flag.StringVar(&opts.owner, "owner", "default", "preference namespace in redis")
	flag.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.Parse()

	if err := run(opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "client failed: %v\n", err)
		os.Exit(1)
	}
}

func run(opts flags, in io.Reader, out io.Writer) error {
	logger := initLogger(opts.logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	prefs, closePrefs, err := initPreferences(ctx, logger, opts)
	if err != nil {
		return err
	}
	defer closePrefs()

	screen := newView(out)

	var w *client.World
	w = client.New(client.Options{
		Logger:      logger,
		Preferences: prefs,
		Notify: func(msg message.Message) {
			if visible(msg) {
				screen.draw(w)
			}
		},
	})

	if err = w.Dial(ctx, opts.url); err != nil {
		return err
	}
	defer w.Close()

	if opts.name != "" || opts.animal != "" {
		w.SetProfile(entity.Profile{Name: opts.name, Animal: opts.animal})
	}

	commands := make(chan string)
	go func() {
		defer close(commands)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			commands <- scanner.Text()
		}
	}()

	screen.println(usage)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-commands:
			if !ok {
				return nil
			}

			if err = execute(w, line); errors.Is(err, errQuit) {
				return nil
			} else if err != nil {
				screen.println(err)
			}
		}
	}
}

func initPreferences(ctx context.Context, logger *slog.Logger, opts flags) (client.Preferences, func(), error) {
	if opts.redis == "" {
		return client.NewMemory(nil), func() {}, nil
	}

	conn, err := storage.New(ctx, opts.redis)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open preferences: %w", err)
	}

	return repository.NewPreferenceRepository(conn, opts.owner), func() { closeRedis(logger, conn) }, nil
}

func closeRedis(logger *slog.Logger, conn *redis.Client) {
	if err := conn.Close(); err != nil {
		logger.Error("could not close redis", "error", err)
	}
}

func initLogger(logLevel string) *slog.Logger {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// visible - reports whether msg changes something the player should see redrawn.
func visible(msg message.Message) bool {
	switch msg.(type) {
	case message.Disconnected, message.JoinedWorld, message.WorldNotFound, message.WorldOccupied,
		message.Start, message.Sync, message.Victory, message.Draw, message.RematchRequested,
		message.OpponentProfile, message.Mark:
		return true
	default:
		return false
	}
}
