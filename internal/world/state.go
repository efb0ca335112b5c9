package world

import (
	"log/slog"
	"slices"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
)

const Places = 9

type ViewEvent int

const (
	Spawned ViewEvent = iota
	Despawned
)

// ViewHook is told after the entity set changed. It must not call back into the world.
type ViewHook func(event ViewEvent, e *entity.Entity)

// State is the entity set shared by both world variants: nine squares, the gamestate and the
// strikethrough, plus whatever a variant spawns on top.
type State struct {
	entities []*entity.Entity
	squares  [Places]*entity.Entity

	Gamestate     *entity.Entity
	Strikethrough *entity.Entity

	logger *slog.Logger
	view   ViewHook
}

// NewState - spawns the board, the gamestate tagged with syncID and the strikethrough.
// Entities spawned into the state log their rejected writes to logger.
func NewState(logger *slog.Logger, syncID string, view ViewHook) *State {
	if logger == nil {
		logger = slog.Default()
	}

	state := &State{logger: logger, view: view}

	for place := 1; place <= Places; place++ {
		square := entity.NewSquare(place)
		state.squares[place-1] = square
		state.Spawn(square)
	}

	state.Gamestate = entity.NewGamestate(syncID)
	state.Spawn(state.Gamestate)

	state.Strikethrough = entity.NewStrikethrough()
	state.Spawn(state.Strikethrough)

	return state
}

func (that *State) Spawn(e *entity.Entity) {
	if e == nil || slices.Contains(that.entities, e) {
		return
	}

	e.SetLogger(that.logger)
	that.entities = append(that.entities, e)

	if that.view != nil {
		that.view(Spawned, e)
	}
}

func (that *State) Despawn(e *entity.Entity) {
	before := len(that.entities)

	that.entities = slices.DeleteFunc(that.entities, func(other *entity.Entity) bool {
		return other == e
	})

	if len(that.entities) != before && that.view != nil {
		that.view(Despawned, e)
	}
}

// Entities - returns the live entities in spawn order.
func (that *State) Entities() []*entity.Entity {
	return slices.Clone(that.entities)
}

// With - returns the live entities that carry every key in keys.
func (that *State) With(keys entity.Key) []*entity.Entity {
	var found []*entity.Entity

	for _, e := range that.entities {
		if e.Has(keys) {
			found = append(found, e)
		}
	}

	return found
}

// Square - returns the square at place 1..9, or nil.
func (that *State) Square(place int) *entity.Entity {
	if place < 1 || place > Places {
		return nil
	}

	return that.squares[place-1]
}

func (that *State) Board() entity.Board {
	var board entity.Board
	for i, square := range that.squares {
		board[i] = square.State().Marked
	}

	return board
}

// SetBoard - overwrites every square with board.
func (that *State) SetBoard(board entity.Board) {
	for i, square := range that.squares {
		square.SetMarked(board[i])
	}
}

// Reset - clears the board and the strikethrough and hands the first turn to turn.
func (that *State) Reset(turn entity.Mark, phase entity.Phase) {
	that.SetBoard(entity.Board{})
	that.Strikethrough.SetLine(entity.Line{})
	that.Gamestate.SetTurn(turn)
	that.Gamestate.SetPhase(phase)
}
