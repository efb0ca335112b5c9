package client

import (
	"strconv"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/game"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/world"
)

// Systems - the client system list; the game rules are the ones the server runs.
func Systems() []*world.System[*World] {
	return []*world.System[*World]{
		Connection(),
		Session(),
		Marker(),
		game.Turn[*World](),
		Sync(),
		game.Referee[*World](),
		game.Outcome[*World](),
		Settings(),
		Relay(),
	}
}

// Marker - predicts the mark locally and forwards it only when the local rule accepts it.
func Marker() *world.System[*World] {
	return world.On(world.NewSystem[*World]("marker"), func(w *World, msg message.Mark) {
		if err := game.Apply(w, w.sign, msg.Place); err != nil {
			w.logger.Debug("mark ignored", "place", msg.Place, "error", err)
			return
		}

		w.channel.Send(msg)
	})
}

// Sync - overwrites the prediction with the server's board and turn.
func Sync() *world.System[*World] {
	return world.On(world.NewSystem[*World]("sync"), func(w *World, msg message.Sync) {
		gamestate := w.state.Gamestate

		if msg.ID != "" {
			gamestate.SetSync(msg.ID)
		}

		if msg.Board != nil {
			w.state.SetBoard(*msg.Board)
		}

		if msg.Turn != nil {
			gamestate.SetTurn(*msg.Turn)
		}

		// a predicted ending the server did not confirm is rolled back
		if gamestate.State().Phase.Finished() && game.Judge(w.state.Board()) == nil {
			gamestate.SetPhase(entity.PhaseInGame)
			w.state.Strikethrough.SetLine(entity.Line{})
		}
	})
}

// Session - follows the match the server runs: joins, starts, rematches and departures.
func Session() *world.System[*World] {
	system := world.NewSystem[*World]("session")

	world.On(system, func(w *World, msg message.Start) {
		w.sign = msg.Sign
		w.rematch = false
		w.notice = msg
		w.state.Reset(msg.Turn, entity.PhaseInGame)
	})
	world.On(system, func(w *World, msg message.JoinedWorld) {
		w.name = msg.Name
		w.notice = msg
	})
	world.On(system, func(w *World, msg message.WorldNotFound) {
		w.notice = msg
	})
	world.On(system, func(w *World, msg message.WorldOccupied) {
		w.notice = msg
	})
	world.On(system, func(w *World, msg message.RematchRequested) {
		w.rematch = true
		w.notice = msg
	})
	world.On(system, func(w *World, msg message.OpponentProfile) {
		w.opponent.SetProfile(msg.Profile)
	})
	world.On(system, func(w *World, msg message.Disconnected) {
		// the channel emits Disconnected too; that case belongs to Connection
		if w.channel.Closed() {
			return
		}

		w.notice = msg
		w.rematch = false
		w.opponent.SetProfile(entity.Profile{})
		w.state.Reset(w.state.Gamestate.State().Turn, entity.PhaseWaiting)
	})

	return system
}

// Connection - tracks the socket and introduces the player once it is open.
func Connection() *world.System[*World] {
	system := world.NewSystem[*World]("connection")

	world.On(system, func(w *World, _ message.Connected) {
		w.connection.SetConnection(entity.ConnectionOpen)

		// the id goes first so the profile is filed under the adopted id
		if id, ok := w.pref(PrefPlayerID); ok {
			w.channel.Send(message.ReconnectID{ID: id})
		}

		name, hasName := w.pref(PrefPlayerName)
		animal, hasAnimal := w.pref(PrefPlayerAnimal)
		if hasName || hasAnimal {
			w.channel.Send(message.PlayerProfile{Profile: entity.Profile{Name: name, Animal: animal}})
		}
	})
	world.On(system, func(w *World, _ message.Disconnected) {
		if w.channel.Closed() {
			w.connection.SetConnection(entity.ConnectionClosed)
		}
	})
	world.On(system, func(w *World, msg message.ReconnectID) {
		w.setPref(PrefPlayerID, msg.ID)
	})

	return system
}

// Settings - writes local preferences.
func Settings() *world.System[*World] {
	system := world.NewSystem[*World]("preferences")

	world.On(system, func(w *World, msg message.UpdateColors) {
		w.setPref(PrefColorScheme, msg.Scheme)
		w.setPref(PrefColorHue, strconv.Itoa(msg.Hue))
	})
	world.On(system, func(w *World, msg message.PlayerProfile) {
		w.setPref(PrefPlayerName, msg.Name)
		w.setPref(PrefPlayerAnimal, msg.Animal)
		w.channel.Send(msg)
	})

	return system
}

// Relay - forwards lobby and session requests to the server unchanged.
func Relay() *world.System[*World] {
	system := world.NewSystem[*World]("relay")

	world.On(system, func(w *World, msg message.Ready) { w.channel.Send(msg) })
	world.On(system, func(w *World, msg message.NewWorld) { w.channel.Send(msg) })
	world.On(system, func(w *World, msg message.JoinWorld) { w.channel.Send(msg) })
	world.On(system, func(w *World, msg message.RequestRematch) { w.channel.Send(msg) })

	return system
}
