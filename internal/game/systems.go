package game

import (
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/world"
)

// World is what the shared systems need from either world variant.
// Update must dispatch without taking the world lock; it is only called from inside a handler.
type World interface {
	State() *world.State
	Update(msg message.Message)
}

// Apply - marks place for sign when the rule allows it, then raises Switch and Marked.
// A rejected mark changes nothing.
func Apply(w World, sign entity.Mark, place int) error {
	state := w.State()
	gamestate := state.Gamestate.State()

	if err := CanMark(state.Board(), gamestate.Phase, gamestate.Turn, sign, place); err != nil {
		return err
	}

	state.Square(place).SetMarked(sign)

	w.Update(message.Switch{})
	w.Update(message.Marked{Place: place, Sign: sign})

	return nil
}

// Turn - hands the turn over on Switch.
func Turn[W World]() *world.System[W] {
	return world.On(world.NewSystem[W]("turn"), func(w W, msg message.Switch) {
		gamestate := w.State().Gamestate

		if msg.To != nil {
			gamestate.SetTurn(*msg.To)
			return
		}

		gamestate.SetTurn(gamestate.State().Turn.Opponent())
	})
}

// Referee - judges the board after every accepted mark.
func Referee[W World]() *world.System[W] {
	return world.On(world.NewSystem[W]("referee"), func(w W, _ message.Marked) {
		if outcome := Judge(w.State().Board()); outcome != nil {
			w.Update(outcome)
		}
	})
}

// Outcome - records the end of a match. The board is left as it was.
func Outcome[W World]() *world.System[W] {
	system := world.NewSystem[W]("outcome")

	world.On(system, func(w W, msg message.Victory) {
		state := w.State()
		state.Gamestate.SetPhase(entity.PhaseVictory)
		state.Strikethrough.SetLine(msg.Line)
	})

	world.On(system, func(w W, _ message.Draw) {
		w.State().Gamestate.SetPhase(entity.PhaseDraw)
	})

	return system
}
