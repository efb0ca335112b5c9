package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/channel"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/world"
)

const (
	dialTimeout       = 10 * time.Second
	preferenceTimeout = time.Second
)

type Options struct {
	Logger      *slog.Logger
	Preferences Preferences
	View        world.ViewHook
	// Notify runs after every handled message, outside the world lock.
	Notify     func(msg message.Message)
	SendBuffer int
}

// World is the client's predicted copy of the match. Local input is applied at once and
// forwarded; the server's Sync always wins.
type World struct {
	logger  *slog.Logger
	prefs   Preferences
	notify  func(msg message.Message)
	channel *channel.Channel

	dispatcher *world.Dispatcher[*World]

	mu         sync.Mutex
	state      *world.State
	connection *entity.Entity
	opponent   *entity.Entity
	sign       entity.Mark
	name       string
	notice     message.Message
	rematch    bool
}

func New(opts Options) *World {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Preferences == nil {
		opts.Preferences = NewMemory(nil)
	}

	w := &World{
		logger: opts.Logger.With("component", "client"),
		prefs:  opts.Preferences,
		notify: opts.Notify,
		state:  world.NewState(opts.Logger.With("component", "client"), "", opts.View),
	}

	w.connection = entity.NewConnection()
	w.state.Spawn(w.connection)

	w.opponent = entity.NewOpponent()
	w.state.Spawn(w.opponent)

	w.channel = channel.New(channel.Options{
		Logger:     opts.Logger,
		Registry:   message.ServerToClient,
		SendBuffer: opts.SendBuffer,
	})
	w.channel.Subscribe(w)

	w.dispatcher = world.NewDispatcher(w.logger, Systems()...)

	return w
}

// Dial - connects to the server's websocket endpoint and starts reading.
func (that *World) Dial(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", url, err)
	}

	that.Attach(conn)

	return nil
}

// Attach - opens the world's channel on an established connection.
func (that *World) Attach(conn channel.Conn) {
	that.channel.Open(conn)
	go that.channel.Listen()
}

func (that *World) Close() {
	that.channel.Close()
}

// Receive - handles one message under the world lock.
func (that *World) Receive(msg message.Message) {
	that.mu.Lock()
	that.Update(msg)
	that.mu.Unlock()

	if that.notify != nil {
		that.notify(msg)
	}
}

// Update - runs msg through the systems; only call it while handling another message.
func (that *World) Update(msg message.Message) {
	that.dispatcher.Update(that, msg)
}

func (that *World) State() *world.State {
	return that.state
}

func (that *World) Mark(place int) {
	that.Receive(message.Mark{Place: place})
}

func (that *World) Ready() {
	that.Receive(message.Ready{})
}

func (that *World) NewWorld() {
	that.Receive(message.NewWorld{})
}

func (that *World) JoinWorld(name string) {
	that.Receive(message.JoinWorld{Name: name})
}

func (that *World) RequestRematch() {
	that.Receive(message.RequestRematch{})
}

func (that *World) UpdateColors(scheme string, hue int) {
	that.Receive(message.UpdateColors{Scheme: scheme, Hue: hue})
}

// SetProfile - stores the player's name and animal and tells the server.
func (that *World) SetProfile(profile entity.Profile) {
	that.Receive(message.PlayerProfile{Profile: profile})
}

// Snapshot is what a view needs to draw the match.
type Snapshot struct {
	Board      entity.Board
	Turn       entity.Mark
	Phase      entity.Phase
	Line       entity.Line
	Sign       entity.Mark
	World      string
	Connection entity.ConnectionStatus
	Opponent   entity.Profile
	Notice     message.Message
	Rematch    bool
}

func (that *World) Snapshot() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	gamestate := that.state.Gamestate.State()

	return Snapshot{
		Board:      that.state.Board(),
		Turn:       gamestate.Turn,
		Phase:      gamestate.Phase,
		Line:       that.state.Strikethrough.State().Line,
		Sign:       that.sign,
		World:      that.name,
		Connection: that.connection.State().Connection,
		Opponent:   that.opponent.State().Profile,
		Notice:     that.notice,
		Rematch:    that.rematch,
	}
}

func (that *World) pref(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), preferenceTimeout)
	defer cancel()

	value, err := that.prefs.Get(ctx, key)
	if err != nil || value == "" {
		return "", false
	}

	return value, true
}

func (that *World) setPref(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), preferenceTimeout)
	defer cancel()

	if err := that.prefs.Set(ctx, key, value); err != nil {
		that.logger.Error("failed to save preference", "key", key, "error", err)
	}
}
