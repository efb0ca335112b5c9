package server

import (
	"slices"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/game"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/world"
)

// Systems - the server system list. Sync runs before Referee so the final board reaches
// the players ahead of the outcome.
func Systems() []*world.System[*World] {
	return []*world.System[*World]{
		Session(),
		Marker(),
		game.Turn[*World](),
		Sync(),
		game.Referee[*World](),
		game.Outcome[*World](),
		Announce(),
	}
}

// Session - seats, readies, rematches and removes players.
func Session() *world.System[*World] {
	system := world.NewSystem[*World]("session")

	world.On(system, addPlayer)
	world.On(system, func(w *World, msg RemovePlayer) {
		if msg.Player != nil {
			leave(w, msg.Player, msg.Player.State())
		}
	})
	world.On(system, func(w *World, msg message.PlayerDisconnected) {
		if player := w.player(msg.PlayerID); player != nil {
			leave(w, player, StateDisconnected)
		}
	})
	world.On(system, ready)
	world.On(system, requestRematch)
	world.On(system, func(w *World, msg message.PlayerProfileChanged) {
		player := w.player(msg.PlayerID)
		if player == nil {
			return
		}

		if opponent := w.opponent(player); opponent != nil {
			opponent.Send(message.OpponentProfile{Profile: msg.Profile})
		}
	})

	return system
}

func addPlayer(w *World, msg AddPlayer) {
	log := w.logger.With("method", "addPlayer")

	player := msg.Player
	if player == nil || w.player(player.ID()) == player {
		return
	}

	if len(w.players) >= MaxPlayers {
		log.Debug("rejected player", "player", player.ID(), "error", apperror.ErrWorldOccupied)
		player.Send(message.WorldOccupied{Name: w.name})
		return
	}

	sign := w.freeSign(player.ID())

	w.players = append(w.players, player)
	w.seats[player.ID()] = sign

	player.SetSign(sign)
	player.SetState(StateInWorld)
	player.Subscribe(w)

	log.Info("player joined", "player", player.ID(), "sign", sign)

	player.Send(message.JoinedWorld{Name: w.name})

	if opponent := w.opponent(player); opponent != nil {
		player.Send(message.OpponentProfile{Profile: opponent.Profile()})
		opponent.Send(message.OpponentProfile{Profile: player.Profile()})
	}
}

// freeSign - returns the sign this id held before when nobody else holds it, else the first free one.
func (that *World) freeSign(id string) entity.Mark {
	taken := make(map[entity.Mark]bool, len(that.players))
	for _, player := range that.players {
		taken[player.Sign()] = true
	}

	if previous, ok := that.seats[id]; ok && !taken[previous] {
		return previous
	}

	for _, sign := range []entity.Mark{entity.MarkX, entity.MarkO} {
		if !taken[sign] {
			return sign
		}
	}

	return entity.NoMark
}

// leave - removes exactly this player; the one left behind is told once and the match resets.
func leave(w *World, player *Player, state PlayerState) {
	before := len(w.players)

	w.players = slices.DeleteFunc(w.players, func(p *Player) bool { return p == player })
	if len(w.players) == before {
		return
	}

	player.Unsubscribe(w)
	player.SetState(state)

	delete(w.rematch, player.ID())

	w.logger.Info("player left", "player", player.ID(), "state", state)

	for _, remaining := range w.players {
		remaining.SetState(StateInWorld)
		remaining.Send(message.Disconnected{})
	}

	clear(w.rematch)
	w.state.Reset(w.nextStart, entity.PhaseWaiting)

	if len(w.players) == 0 {
		w.emptied = true
	}
}

func ready(w *World, msg message.PlayerReady) {
	player := w.player(msg.PlayerID)
	if player == nil || player.State() != StateInWorld {
		return
	}

	player.SetState(StateReady)

	if len(w.players) != MaxPlayers {
		return
	}

	for _, other := range w.players {
		if other.State() != StateReady {
			return
		}
	}

	start(w)
}

func requestRematch(w *World, msg message.PlayerRequestRematch) {
	player := w.player(msg.PlayerID)
	if player == nil || !w.state.Gamestate.State().Phase.Finished() {
		return
	}

	if w.rematch[player.ID()] {
		return
	}

	w.rematch[player.ID()] = true

	opponent := w.opponent(player)
	if opponent == nil {
		return
	}

	if !w.rematch[opponent.ID()] {
		opponent.Send(message.RematchRequested{})
		return
	}

	start(w)
}

// start - begins a match; the starting sign alternates from one match to the next.
func start(w *World) {
	turn := w.nextStart
	w.nextStart = turn.Opponent()

	clear(w.rematch)
	w.state.Reset(turn, entity.PhaseInGame)

	w.logger.Info("match started", "turn", turn)

	for _, player := range w.players {
		player.SetState(StateInGame)
		player.Send(message.Start{Sign: player.Sign(), Turn: turn})
	}

	w.broadcast(w.sync())
}

// Marker - applies marks authoritatively. A rejected mark is answered with the current state only.
func Marker() *world.System[*World] {
	return world.On(world.NewSystem[*World]("marker"), func(w *World, msg message.PlayerMark) {
		player := w.player(msg.PlayerID)
		if player == nil || player.State() != StateInGame {
			return
		}

		if err := game.Apply(w, player.Sign(), msg.Place); err != nil {
			w.logger.Debug("mark rejected", "player", player.ID(), "place", msg.Place, "error", err)
			player.Send(w.sync())
		}
	})
}

// Sync - pushes the authoritative board and turn after every accepted mark.
func Sync() *world.System[*World] {
	return world.On(world.NewSystem[*World]("sync"), func(w *World, _ message.Marked) {
		w.broadcast(w.sync())
	})
}

// Announce - tells every player how the match ended.
func Announce() *world.System[*World] {
	system := world.NewSystem[*World]("announce")

	world.On(system, func(w *World, msg message.Victory) {
		w.logger.Info("match won", "winner", msg.Winner, "line", msg.Line)
		w.broadcast(msg)
	})
	world.On(system, func(w *World, msg message.Draw) {
		w.logger.Info("match drawn")
		w.broadcast(msg)
	})

	return system
}
