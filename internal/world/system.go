package world

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
)

var ErrForeignMessage = errors.New("message type does not match its tag")

// Handler reacts to one message inside world w. An error means the handler did not run.
type Handler[W any] func(w W, msg message.Message) error

// System is a named, sparse set of handlers keyed by message tag.
type System[W any] struct {
	Name     string
	handlers map[message.Tag]Handler[W]
}

func NewSystem[W any](name string) *System[W] {
	return &System[W]{
		Name:     name,
		handlers: make(map[message.Tag]Handler[W]),
	}
}

// On - registers fn for the tag of message type M. Registering the same tag twice replaces the handler.
func On[W any, M message.Message](system *System[W], fn func(w W, msg M)) *System[W] {
	var zero M

	system.handlers[zero.Tag()] = func(w W, msg message.Message) error {
		typed, ok := msg.(M)
		if !ok {
			return fmt.Errorf("%w: %T for %s", ErrForeignMessage, msg, msg.Tag())
		}

		fn(w, typed)

		return nil
	}

	return system
}

func (that *System[W]) Handles(tag message.Tag) bool {
	_, ok := that.handlers[tag]
	return ok
}

// Dispatcher runs a fixed, ordered list of systems.
type Dispatcher[W any] struct {
	logger  *slog.Logger
	systems []*System[W]
}

func NewDispatcher[W any](logger *slog.Logger, systems ...*System[W]) *Dispatcher[W] {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher[W]{
		logger:  logger.With("component", "dispatcher"),
		systems: systems,
	}
}

// Update - calls every system that handles msg, in list order, and returns how many ran.
// A handler that refuses msg is logged and not counted.
// Handlers may call Update again to chain messages; nothing short-circuits the pass.
func (that *Dispatcher[W]) Update(w W, msg message.Message) int {
	if msg == nil {
		return 0
	}

	ran := 0

	for _, system := range that.systems {
		handler, ok := system.handlers[msg.Tag()]
		if !ok {
			continue
		}

		if err := handler(w, msg); err != nil {
			that.logger.Error("handler failed", "system", system.Name, "message", msg.Tag(), "error", err)
			continue
		}

		ran++
	}

	if ran == 0 {
		that.logger.Debug("no system handles message", "message", msg.Tag())
	}

	return ran
}

func (that *Dispatcher[W]) Systems() []string {
	names := make([]string, 0, len(that.systems))
	for _, system := range that.systems {
		names = append(names, system.Name)
	}

	return names
}
