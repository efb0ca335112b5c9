package lobby

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/channel"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/monitor"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/server"
)

const (
	defaultNameAttempts = 32
	storageTimeout      = 3 * time.Second
)

// Profiles keeps player profiles across connections.
type Profiles interface {
	Save(ctx context.Context, playerID string, profile entity.Profile) error
	Load(ctx context.Context, playerID string) (entity.Profile, error)
}

type Options struct {
	Logger   *slog.Logger
	Metrics  *monitor.Metrics
	Profiles Profiles
	// Names generates candidate world names.
	Names        func() string
	NameAttempts int
	SendBuffer   int
}

// Lobby owns the connected players and the live worlds, keyed by name.
type Lobby struct {
	logger     *slog.Logger
	metrics    *monitor.Metrics
	profiles   Profiles
	names      func() string
	attempts   int
	sendBuffer int

	mu      sync.Mutex
	worlds  map[string]*server.World
	players map[string]*server.Player
	located map[*server.Player]*server.World
}

func New(opts Options) *Lobby {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Names == nil {
		opts.Names = RandomName
	}

	if opts.NameAttempts <= 0 {
		opts.NameAttempts = defaultNameAttempts
	}

	return &Lobby{
		logger:     opts.Logger.With("component", "lobby"),
		metrics:    opts.Metrics,
		profiles:   opts.Profiles,
		names:      opts.Names,
		attempts:   opts.NameAttempts,
		sendBuffer: opts.SendBuffer,
		worlds:     make(map[string]*server.World),
		players:    make(map[string]*server.Player),
		located:    make(map[*server.Player]*server.World),
	}
}

// Enter - turns a fresh connection into a player. The lobby is the player's first receiver and
// the first message the client gets is its ReconnectId. The caller runs Listen on the result.
func (that *Lobby) Enter(conn channel.Conn) *server.Player {
	player := server.NewPlayer(channel.Options{
		Logger:     that.logger,
		Registry:   message.ClientToServer,
		Metrics:    that.metrics,
		SendBuffer: that.sendBuffer,
	})

	player.Subscribe(that)

	that.mu.Lock()
	that.players[player.ID()] = player
	that.mu.Unlock()

	player.SetState(server.StateConnected)
	player.Send(message.ReconnectID{ID: player.ID()})
	player.Open(conn)

	that.metrics.PlayerConnected()
	that.logger.Info("player connected", "player", player.ID(), "remote", conn.RemoteAddr())

	return player
}

// Receive - handles the lobby side of what players say.
func (that *Lobby) Receive(msg message.Message) {
	switch msg := msg.(type) {
	case message.PlayerNewWorld:
		that.newWorld(msg.PlayerID)
	case message.PlayerJoinWorld:
		that.joinWorld(msg.PlayerID, msg.Name)
	case message.PlayerReconnect:
		that.reconnect(msg.PlayerID, msg.PreviousID)
	case message.PlayerProfileChanged:
		that.profileChanged(msg.PlayerID, msg.Profile)
	case message.PlayerDisconnected:
		that.disconnect(msg.PlayerID)
	}
}

// World - finds a live world by name.
func (that *Lobby) World(name string) (*server.World, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	w, ok := that.worlds[name]
	if !ok {
		return nil, apperror.ErrWorldNotFound
	}

	return w, nil
}

// Worlds - returns the names of the live worlds, sorted.
func (that *Lobby) Worlds() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	names := make([]string, 0, len(that.worlds))
	for name := range that.worlds {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func (that *Lobby) Player(id string) (*server.Player, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[id]

	return player, ok
}

func (that *Lobby) newWorld(playerID string) {
	log := that.logger.With("method", "newWorld")

	that.mu.Lock()

	player, ok := that.players[playerID]
	if !ok {
		that.mu.Unlock()
		log.Debug("unknown player", "player", playerID)
		return
	}

	name := that.uniqueName()
	w := server.NewWorld(name, server.WorldOptions{
		Logger:  that.logger,
		Metrics: that.metrics,
		OnEmpty: that.removeWorld,
	})

	that.worlds[name] = w
	count := len(that.worlds)

	that.mu.Unlock()

	that.metrics.SetWorlds(count)
	log.Info("world created", "world", name, "player", playerID)

	that.move(player, w)
}

func (that *Lobby) joinWorld(playerID, name string) {
	log := that.logger.With("method", "joinWorld")

	that.mu.Lock()

	player, ok := that.players[playerID]
	if !ok {
		that.mu.Unlock()
		log.Debug("unknown player", "player", playerID)
		return
	}

	w, ok := that.worlds[name]

	that.mu.Unlock()

	if !ok {
		log.Debug("world not found", "world", name, "player", playerID, "error", apperror.ErrWorldNotFound)
		player.Send(message.WorldNotFound{Name: name})
		return
	}

	that.move(player, w)
}

// move - seats player in w and only then takes it out of the world it was in. Worlds are
// entered with the lobby lock released; an emptied world calls back into removeWorld.
func (that *Lobby) move(player *server.Player, w *server.World) {
	that.mu.Lock()
	previous := that.located[player]
	that.mu.Unlock()

	if previous == w {
		return
	}

	if !w.Seat(player) {
		return
	}

	that.mu.Lock()
	if that.players[player.ID()] == player {
		that.located[player] = w
	}
	that.mu.Unlock()

	if previous != nil {
		previous.Receive(server.RemovePlayer{Player: player})
	}
}

// uniqueName - draws names until one is free; after the attempt budget a uuid suffix makes it unique.
// The caller holds mu.
func (that *Lobby) uniqueName() string {
	name := ""

	for range that.attempts {
		name = that.names()
		if _, taken := that.worlds[name]; !taken && name != "" {
			return name
		}
	}

	if name == "" {
		name = "world"
	}

	for {
		candidate := name + "-" + uuid.NewString()[:8]
		if _, taken := that.worlds[candidate]; !taken {
			that.logger.Warn("name attempts exhausted, using fallback", "world", candidate, "attempts", that.attempts)
			return candidate
		}
	}
}

// removeWorld - drops an emptied world from the registry. Runs outside the world lock.
func (that *Lobby) removeWorld(w *server.World) {
	that.mu.Lock()

	if current, ok := that.worlds[w.Name()]; ok && current == w {
		delete(that.worlds, w.Name())
	}

	for player, located := range that.located {
		if located == w {
			delete(that.located, player)
		}
	}

	count := len(that.worlds)
	that.mu.Unlock()

	that.metrics.SetWorlds(count)
	that.logger.Info("world removed", "world", w.Name())
}

// reconnect - lets a returning client take back its previous id when nobody holds it.
func (that *Lobby) reconnect(playerID, previousID string) {
	log := that.logger.With("method", "reconnect")

	if previousID == "" || previousID == playerID {
		return
	}

	that.mu.Lock()

	player, ok := that.players[playerID]
	if !ok {
		that.mu.Unlock()
		return
	}

	if _, taken := that.players[previousID]; taken {
		that.mu.Unlock()
		log.Debug("previous id is still live", "player", playerID, "previous", previousID)
		return
	}

	delete(that.players, playerID)
	player.Adopt(previousID)
	that.players[previousID] = player

	that.mu.Unlock()

	log.Info("player reconnected", "player", previousID, "was", playerID)

	player.Send(message.ReconnectID{ID: previousID})

	// a profile sent on this connection is newer than the stored one
	if current := player.Profile(); current != (entity.Profile{}) {
		that.saveProfile(previousID, current)
		return
	}

	if profile, err := that.loadProfile(previousID); err == nil && profile != (entity.Profile{}) {
		player.SetProfile(profile)
	}
}

func (that *Lobby) profileChanged(playerID string, profile entity.Profile) {
	player, ok := that.Player(playerID)
	if !ok {
		return
	}

	player.SetProfile(profile)
	that.saveProfile(playerID, profile)
}

func (that *Lobby) saveProfile(playerID string, profile entity.Profile) {
	if that.profiles == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := that.profiles.Save(ctx, playerID, profile); err != nil {
		that.logger.Error("failed to save profile", "player", playerID, "error", err)
	}
}

func (that *Lobby) loadProfile(playerID string) (entity.Profile, error) {
	if that.profiles == nil {
		return entity.Profile{}, apperror.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	profile, err := that.profiles.Load(ctx, playerID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			that.logger.Error("failed to load profile", "player", playerID, "error", err)
		}

		return entity.Profile{}, err
	}

	return profile, nil
}

func (that *Lobby) disconnect(playerID string) {
	that.mu.Lock()

	player, ok := that.players[playerID]
	if ok {
		delete(that.players, playerID)
		delete(that.located, player)
	}

	that.mu.Unlock()

	if !ok {
		return
	}

	player.SetState(server.StateDisconnected)
	that.metrics.PlayerDisconnected()
	that.logger.Info("player disconnected", "player", playerID)
}
