package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/channel"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
)

type PlayerState string

const (
	StatePending      PlayerState = "pending"
	StateConnected    PlayerState = "connected"
	StateInWorld      PlayerState = "inworld"
	StateReady        PlayerState = "ready"
	StateInGame       PlayerState = "ingame"
	StateDisconnected PlayerState = "disconnected"
)

// Player is one browser connection on the server side. Inbound messages are stamped with the
// player id before any receiver sees them, so a client can only ever speak for itself.
type Player struct {
	*channel.Channel

	mu      sync.Mutex
	id      string
	sign    entity.Mark
	state   PlayerState
	profile entity.Profile
}

// NewPlayer - creates a pending player with a fresh id. opts.Translate is replaced by the player boundary.
func NewPlayer(opts channel.Options) *Player {
	player := &Player{
		id:    uuid.NewString(),
		state: StatePending,
	}

	if opts.Registry == nil {
		opts.Registry = message.ClientToServer
	}

	opts.Translate = player.translate
	player.Channel = channel.New(opts)

	return player
}

func (that *Player) ID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.id
}

// Adopt - takes over a previous id; used when a client reconnects.
func (that *Player) Adopt(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.id = id
}

func (that *Player) Sign() entity.Mark {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.sign
}

func (that *Player) SetSign(sign entity.Mark) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sign = sign
}

func (that *Player) State() PlayerState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

func (that *Player) SetState(state PlayerState) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.state = state
}

func (that *Player) Profile() entity.Profile {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.profile
}

func (that *Player) SetProfile(profile entity.Profile) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.profile = profile
}

// translate - maps what the client said to what the player did.
func (that *Player) translate(msg message.Message) message.Message {
	id := that.ID()

	switch msg := msg.(type) {
	case message.Mark:
		return message.PlayerMark{PlayerID: id, Place: msg.Place}
	case message.Ready:
		return message.PlayerReady{PlayerID: id}
	case message.NewWorld:
		return message.PlayerNewWorld{PlayerID: id}
	case message.JoinWorld:
		return message.PlayerJoinWorld{PlayerID: id, Name: msg.Name}
	case message.RequestRematch:
		return message.PlayerRequestRematch{PlayerID: id}
	case message.PlayerProfile:
		return message.PlayerProfileChanged{PlayerID: id, Profile: msg.Profile}
	case message.ReconnectID:
		return message.PlayerReconnect{PlayerID: id, PreviousID: msg.ID}
	case message.Disconnected:
		return message.PlayerDisconnected{PlayerID: id}
	default:
		return msg
	}
}
