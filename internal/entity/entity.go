package entity

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/store"
)

var ErrMissingKey = errors.New("entity has no such key")

var discard = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Key is one named piece of entity state. The set of keys an entity is spawned with
// decides which systems care about it and never changes afterwards.
type Key uint16

const (
	KeyPlace Key = 1 << iota
	KeyMarked
	KeyLine
	KeyTurn
	KeySync
	KeyPhase
	KeyConnection
	KeyProfile
)

var keyNames = []struct {
	key  Key
	name string
}{
	{KeyPlace, "Place"},
	{KeyMarked, "Marked"},
	{KeyLine, "Line"},
	{KeyTurn, "Turn"},
	{KeySync, "Sync"},
	{KeyPhase, "Phase"},
	{KeyConnection, "Connection"},
	{KeyProfile, "Profile"},
}

func (that Key) String() string {
	var names []string
	for _, k := range keyNames {
		if that&k.key != 0 {
			names = append(names, k.name)
		}
	}

	return strings.Join(names, "|")
}

// State is the record behind an entity. Only the fields named by the entity keys are meaningful.
type State struct {
	Place      int
	Marked     Mark
	Line       Line
	Turn       Mark
	Sync       string
	Phase      Phase
	Connection ConnectionStatus
	Profile    Profile
}

type Entity struct {
	keys   Key
	state  *store.Store[State]
	logger *slog.Logger
}

func New(keys Key, state State) *Entity {
	return &Entity{
		keys:   keys,
		state:  store.New(state),
		logger: discard,
	}
}

// SetLogger - routes rejected writes to logger. The world sets it when the entity is spawned.
func (that *Entity) SetLogger(logger *slog.Logger) {
	if that == nil || logger == nil {
		return
	}

	that.logger = logger.With("entity", that.keys.String())
}

// NewSquare - spawns the square at place 1..9.
func NewSquare(place int) *Entity {
	return New(KeyPlace|KeyMarked, State{Place: place})
}

// NewGamestate - spawns the shared match entity; syncID correlates it across peers.
func NewGamestate(syncID string) *Entity {
	return New(KeyTurn|KeySync|KeyPhase, State{Turn: MarkX, Sync: syncID, Phase: PhaseWaiting})
}

// NewStrikethrough - spawns the entity that shows the winning line.
func NewStrikethrough() *Entity {
	return New(KeyLine, State{})
}

func NewConnection() *Entity {
	return New(KeyConnection, State{Connection: ConnectionPending})
}

func NewOpponent() *Entity {
	return New(KeyProfile, State{})
}

func (that *Entity) Has(key Key) bool {
	return that != nil && that.keys&key == key
}

func (that *Entity) Keys() Key {
	return that.keys
}

func (that *Entity) State() State {
	if that == nil {
		return State{}
	}

	return that.state.Get()
}

// Listen - registers fn to run after every effective write to this entity.
func (that *Entity) Listen(fn func(key Key, state State)) (store.ListenerID, error) {
	if that == nil {
		return 0, fmt.Errorf("%w: listen on nil entity", store.ErrNotStore)
	}

	return that.state.Listen(func(key store.Key, state State) {
		fn(keyByName(key), state)
	})
}

func (that *Entity) StopListening(id store.ListenerID) error {
	if that == nil {
		return fmt.Errorf("%w: stop listening on nil entity", store.ErrNotStore)
	}

	return that.state.StopListening(id)
}

func (that *Entity) SetMarked(mark Mark) bool {
	return set(that, KeyMarked, func(s *State) *Mark { return &s.Marked }, mark)
}

func (that *Entity) SetLine(line Line) bool {
	return set(that, KeyLine, func(s *State) *Line { return &s.Line }, line)
}

func (that *Entity) SetTurn(turn Mark) bool {
	return set(that, KeyTurn, func(s *State) *Mark { return &s.Turn }, turn)
}

func (that *Entity) SetSync(id string) bool {
	return set(that, KeySync, func(s *State) *string { return &s.Sync }, id)
}

func (that *Entity) SetPhase(phase Phase) bool {
	return set(that, KeyPhase, func(s *State) *Phase { return &s.Phase }, phase)
}

func (that *Entity) SetConnection(status ConnectionStatus) bool {
	return set(that, KeyConnection, func(s *State) *ConnectionStatus { return &s.Connection }, status)
}

func (that *Entity) SetProfile(profile Profile) bool {
	return set(that, KeyProfile, func(s *State) *Profile { return &s.Profile }, profile)
}

// set - writes one key; writes to keys the entity was not spawned with are logged and dropped.
// A nil entity has nowhere to log and just reports no change.
func set[V comparable](that *Entity, key Key, field func(*State) *V, value V) bool {
	if that == nil {
		return false
	}

	if !that.Has(key) {
		that.logger.Error("entity write rejected", "error", ErrMissingKey, "key", key.String(), "value", value)
		return false
	}

	changed, err := store.Set(that.state, store.Key(key.String()), field, value)
	if err != nil {
		that.logger.Error("entity write failed", "error", err, "key", key.String(), "value", value)
		return false
	}

	return changed
}

func keyByName(name store.Key) Key {
	for _, k := range keyNames {
		if k.name == string(name) {
			return k.key
		}
	}

	return 0
}
