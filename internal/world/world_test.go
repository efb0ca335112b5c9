package world

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
)

type recorder struct {
	calls      []string
	dispatcher *Dispatcher[*recorder]
}

func (that *recorder) Update(msg message.Message) {
	that.dispatcher.Update(that, msg)
}

// impostor carries the Mark tag without being a Mark.
type impostor struct{}

func (impostor) Tag() message.Tag { return message.TagMark }

func TestDispatcher_Update(t *testing.T) {
	t.Run("Runs every matching system in list order", func(t *testing.T) {
		// Given: two systems handling Mark and one handling only Draw
		first := On(NewSystem[*recorder]("first"), func(w *recorder, msg message.Mark) {
			w.calls = append(w.calls, "first")
		})
		second := On(NewSystem[*recorder]("second"), func(w *recorder, msg message.Mark) {
			w.calls = append(w.calls, "second")
		})
		unrelated := On(NewSystem[*recorder]("unrelated"), func(w *recorder, msg message.Draw) {
			w.calls = append(w.calls, "unrelated")
		})

		w := &recorder{}
		w.dispatcher = NewDispatcher(nil, first, unrelated, second)

		// When: a Mark is dispatched
		ran := w.dispatcher.Update(w, message.Mark{Place: 1})

		// Then: only the Mark handlers ran, in order
		assert.Equal(t, 2, ran)
		assert.Equal(t, []string{"first", "second"}, w.calls)
	})

	t.Run("Handlers chain through nested updates", func(t *testing.T) {
		// Given: a system that answers Mark with Switch
		chain := NewSystem[*recorder]("chain")
		On(chain, func(w *recorder, msg message.Mark) {
			w.calls = append(w.calls, "mark")
			w.Update(message.Switch{})
			w.calls = append(w.calls, "after-switch")
		})
		On(chain, func(w *recorder, msg message.Switch) {
			w.calls = append(w.calls, "switch")
		})

		w := &recorder{}
		w.dispatcher = NewDispatcher(nil, chain)

		// When: a Mark is dispatched
		w.Update(message.Mark{Place: 3})

		// Then: the nested message completed before the outer handler resumed
		assert.Equal(t, []string{"mark", "switch", "after-switch"}, w.calls)
	})

	t.Run("Handler refusing a foreign type is logged and not counted", func(t *testing.T) {
		// Given: a dispatcher logging into a buffer with a Mark handler
		var buf bytes.Buffer
		marks := On(NewSystem[*recorder]("marks"), func(w *recorder, msg message.Mark) {
			w.calls = append(w.calls, "mark")
		})

		w := &recorder{}
		w.dispatcher = NewDispatcher(slog.New(slog.NewJSONHandler(&buf, nil)), marks)

		// When: a different type claiming the Mark tag is dispatched
		ran := w.dispatcher.Update(w, impostor{})

		// Then: the handler did not run and the dispatcher logged why
		assert.Equal(t, 0, ran)
		assert.Empty(t, w.calls)
		assert.Contains(t, buf.String(), `"system":"marks"`)
		assert.Contains(t, buf.String(), ErrForeignMessage.Error())
	})

	t.Run("Unknown message runs nothing", func(t *testing.T) {
		w := &recorder{}
		w.dispatcher = NewDispatcher(nil, NewSystem[*recorder]("empty"))

		assert.Equal(t, 0, w.dispatcher.Update(w, message.Ready{}))
		assert.Equal(t, 0, w.dispatcher.Update(w, nil))
		assert.Equal(t, []string{"empty"}, w.dispatcher.Systems())
	})
}

func TestState(t *testing.T) {
	t.Run("Spawns board, gamestate and strikethrough", func(t *testing.T) {
		// Given: a view hook counting spawns
		spawned := 0
		state := NewState(nil, "sync-1", func(event ViewEvent, _ *entity.Entity) {
			if event == Spawned {
				spawned++
			}
		})

		// Then: eleven entities are live and the squares are addressable by place
		assert.Equal(t, 11, spawned)
		assert.Len(t, state.With(entity.KeyPlace|entity.KeyMarked), 9)
		assert.Equal(t, 5, state.Square(5).State().Place)
		assert.Nil(t, state.Square(0))
		assert.Nil(t, state.Square(10))
		assert.Equal(t, "sync-1", state.Gamestate.State().Sync)
	})

	t.Run("Despawn notifies once", func(t *testing.T) {
		var events []ViewEvent
		state := NewState(nil, "sync-1", func(event ViewEvent, _ *entity.Entity) {
			events = append(events, event)
		})
		opponent := entity.NewOpponent()

		state.Spawn(opponent)
		state.Spawn(opponent)
		state.Despawn(opponent)
		state.Despawn(opponent)

		require.Len(t, events, 13)
		assert.Equal(t, []ViewEvent{Spawned, Despawned}, events[11:])
	})

	t.Run("Spawned entities log to the state logger", func(t *testing.T) {
		// Given: a state logging into a buffer
		var buf bytes.Buffer
		state := NewState(slog.New(slog.NewJSONHandler(&buf, nil)), "sync-1", nil)

		// When: a square is asked to hold a turn
		state.Square(1).SetTurn(entity.MarkO)

		// Then: the rejection lands in the state's log
		assert.Contains(t, buf.String(), `"msg":"entity write rejected"`)
		assert.Contains(t, buf.String(), `"key":"Turn"`)
	})

	t.Run("Reset clears the board and the line", func(t *testing.T) {
		// Given: a finished match
		state := NewState(nil, "sync-1", nil)
		state.SetBoard(entity.Board{entity.MarkX, entity.MarkX, entity.MarkX, entity.MarkO, entity.MarkO})
		state.Strikethrough.SetLine(entity.Line{1, 2, 3})
		state.Gamestate.SetPhase(entity.PhaseVictory)

		// When: it is reset for O to start
		state.Reset(entity.MarkO, entity.PhaseInGame)

		// Then: everything is back to a fresh match
		assert.Equal(t, entity.Board{}, state.Board())
		assert.True(t, state.Strikethrough.State().Line.IsZero())
		assert.Equal(t, entity.MarkO, state.Gamestate.State().Turn)
		assert.Equal(t, entity.PhaseInGame, state.Gamestate.State().Phase)
	})
}
