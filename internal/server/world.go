package server

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/monitor"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/world"
)

const MaxPlayers = 2

// AddPlayer seats a player in the world. It never crosses the wire.
type AddPlayer struct {
	Player *Player
}

// RemovePlayer takes a player out of the world after it was seated in another one. The player's
// state is left as the new world set it.
type RemovePlayer struct {
	Player *Player
}

const (
	TagAddPlayer    message.Tag = "AddPlayer"
	TagRemovePlayer message.Tag = "RemovePlayer"
)

func (AddPlayer) Tag() message.Tag    { return TagAddPlayer }
func (RemovePlayer) Tag() message.Tag { return TagRemovePlayer }

type WorldOptions struct {
	Logger  *slog.Logger
	Metrics *monitor.Metrics
	// OnEmpty runs once, outside the world lock, after the last player left.
	OnEmpty func(w *World)
}

// World is the authoritative match. All dispatch goes through Receive, one message at a time.
type World struct {
	logger  *slog.Logger
	metrics *monitor.Metrics
	onEmpty func(w *World)

	name       string
	dispatcher *world.Dispatcher[*World]

	mu        sync.Mutex
	state     *world.State
	players   []*Player
	seats     map[string]entity.Mark
	rematch   map[string]bool
	nextStart entity.Mark
	emptied   bool
	closed    bool
}

func NewWorld(name string, opts WorldOptions) *World {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	w := &World{
		logger:    opts.Logger.With("component", "world", "world", name),
		metrics:   opts.Metrics,
		onEmpty:   opts.OnEmpty,
		name:      name,
		state:     world.NewState(opts.Logger.With("world", name), uuid.NewString(), nil),
		seats:     make(map[string]entity.Mark),
		rematch:   make(map[string]bool),
		nextStart: entity.MarkX,
	}

	w.dispatcher = world.NewDispatcher(w.logger, Systems()...)

	return w
}

func (that *World) Name() string {
	return that.name
}

// State - returns the entity state. Callers outside a handler must hold no expectations of
// consistency unless they go through Receive.
func (that *World) State() *world.State {
	return that.state
}

// Receive - dispatches msg under the world lock. Player channels call this from their read loop.
func (that *World) Receive(msg message.Message) {
	that.mu.Lock()

	if that.closed {
		that.mu.Unlock()
		that.rejectClosed(msg)
		return
	}

	started := time.Now()
	that.Update(msg)
	that.metrics.ObserveDispatch(time.Since(started))

	teardown := that.emptied && len(that.players) == 0
	if teardown {
		that.closed = true
	}

	that.mu.Unlock()

	if teardown {
		that.logger.Info("world is empty, closing")
		if that.onEmpty != nil {
			that.onEmpty(that)
		}
	}
}

// Update - runs msg through the systems. Only call it while handling another message.
func (that *World) Update(msg message.Message) {
	that.dispatcher.Update(that, msg)
}

// Seat - runs AddPlayer and reports whether player holds a seat afterwards. A refused player
// has already been told why.
func (that *World) Seat(player *Player) bool {
	that.Receive(AddPlayer{Player: player})

	return slices.Contains(that.Players(), player)
}

func (that *World) Closed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.closed
}

// Players - returns the seated players in join order.
func (that *World) Players() []*Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	return slices.Clone(that.players)
}

// Phase - returns the match phase.
func (that *World) Phase() entity.Phase {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Gamestate.State().Phase
}

func (that *World) rejectClosed(msg message.Message) {
	if add, ok := msg.(AddPlayer); ok && add.Player != nil {
		add.Player.Send(message.WorldNotFound{Name: that.name})
	}

	that.logger.Debug("message dropped", "message", msg.Tag(), "error", apperror.ErrWorldClosed)
}

func (that *World) broadcast(msg message.Message) {
	for _, player := range that.players {
		player.Send(msg)
	}
}

func (that *World) player(id string) *Player {
	for _, player := range that.players {
		if player.ID() == id {
			return player
		}
	}

	return nil
}

func (that *World) opponent(of *Player) *Player {
	for _, player := range that.players {
		if player != of {
			return player
		}
	}

	return nil
}

func (that *World) sync() message.Sync {
	gamestate := that.state.Gamestate.State()
	return message.NewSync(gamestate.Sync, that.state.Board(), gamestate.Turn)
}
