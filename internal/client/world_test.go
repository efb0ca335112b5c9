package client

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/channel/channeltest"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

func attach(t *testing.T, prefs *Memory) (*World, *channeltest.Conn) {
	t.Helper()

	w := New(Options{Preferences: prefs})
	conn := channeltest.New()
	w.Attach(conn)

	t.Cleanup(w.Close)

	return w, conn
}

// started - attaches a client and plays the server's Start for the given sign, X to move.
func started(t *testing.T, sign entity.Mark) (*World, *channeltest.Conn) {
	t.Helper()

	w, conn := attach(t, NewMemory(nil))
	w.Receive(message.Start{Sign: sign, Turn: entity.MarkX})

	return w, conn
}

func waitSent(t *testing.T, conn *channeltest.Conn, want message.Message) {
	t.Helper()

	require.Eventually(t, func() bool {
		return slices.Contains(conn.Messages(), want)
	}, waitFor, tick, "never sent %v, got %v", want, conn.Tags())
}

func TestWorld_Connected(t *testing.T) {
	t.Run("Introduces the stored profile and id", func(t *testing.T) {
		// Given: preferences from an earlier session
		prefs := NewMemory(map[string]string{
			PrefPlayerName:   "Ada",
			PrefPlayerAnimal: "owl",
			PrefPlayerID:     "previous-id",
		})

		// When: the connection opens
		w, conn := attach(t, prefs)

		// Then: the server hears the previous id, then the profile
		waitSent(t, conn, message.PlayerProfile{Profile: entity.Profile{Name: "Ada", Animal: "owl"}})
		assert.Equal(t, []message.Message{
			message.ReconnectID{ID: "previous-id"},
			message.PlayerProfile{Profile: entity.Profile{Name: "Ada", Animal: "owl"}},
		}, conn.Messages())
		assert.Equal(t, entity.ConnectionOpen, w.Snapshot().Connection)
	})

	t.Run("First visit sends nothing", func(t *testing.T) {
		w, conn := attach(t, NewMemory(nil))

		time.Sleep(20 * time.Millisecond)
		assert.Empty(t, conn.Messages())
		assert.Equal(t, entity.ConnectionOpen, w.Snapshot().Connection)
	})

	t.Run("Server id is remembered", func(t *testing.T) {
		prefs := NewMemory(nil)
		_, conn := attach(t, prefs)

		require.NoError(t, conn.Send(message.ReconnectID{ID: "fresh-id"}))

		require.Eventually(t, func() bool {
			id, err := prefs.Get(context.Background(), PrefPlayerID)
			return err == nil && id == "fresh-id"
		}, waitFor, tick)
	})

	t.Run("Closing marks the connection closed", func(t *testing.T) {
		w, _ := attach(t, NewMemory(nil))

		w.Close()

		assert.Equal(t, entity.ConnectionClosed, w.Snapshot().Connection)
	})
}

func TestWorld_Mark(t *testing.T) {
	t.Run("Accepted mark is shown at once and forwarded", func(t *testing.T) {
		// Given: a match where this client is X
		w, conn := started(t, entity.MarkX)

		// When: the player marks the center
		w.Mark(5)

		// Then: the board shows it before the server answers and the mark is sent
		snapshot := w.Snapshot()
		assert.Equal(t, entity.MarkX, snapshot.Board[4])
		assert.Equal(t, entity.MarkO, snapshot.Turn)
		waitSent(t, conn, message.Mark{Place: 5})
	})

	t.Run("Out of turn mark is neither shown nor sent", func(t *testing.T) {
		// Given: a match where this client is O and X is to move
		w, conn := started(t, entity.MarkO)

		// When: the player marks anyway
		w.Mark(1)

		// Then: nothing happens
		assert.Equal(t, entity.Board{}, w.Snapshot().Board)
		time.Sleep(20 * time.Millisecond)
		assert.Empty(t, conn.Messages())
	})

	t.Run("Marking a marked square is a no-op", func(t *testing.T) {
		w, conn := started(t, entity.MarkX)
		w.Mark(5)
		w.Receive(message.SwitchTo(entity.MarkX))

		w.Mark(5)

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, []message.Message{message.Mark{Place: 5}}, conn.Messages())
	})
}

func TestWorld_Sync(t *testing.T) {
	t.Run("Replayed Sync is idempotent", func(t *testing.T) {
		// Given: a running match
		w, _ := started(t, entity.MarkO)
		sync := message.NewSync("sync-1", entity.Board{entity.MarkX, entity.NoMark, entity.MarkO}, entity.MarkX)

		// When: the same Sync is applied twice
		w.Receive(sync)
		once := w.Snapshot()
		w.Receive(sync)

		// Then: the second changes nothing
		assert.Equal(t, once, w.Snapshot())
		assert.Equal(t, entity.Board{entity.MarkX, entity.NoMark, entity.MarkO}, once.Board)
		assert.Equal(t, "sync-1", w.State().Gamestate.State().Sync)
	})

	t.Run("Server truth overwrites a wrong prediction", func(t *testing.T) {
		// Given: the client predicted X on 1
		w, _ := started(t, entity.MarkX)
		w.Mark(1)

		// When: the server says the board is still empty and X is to move
		w.Receive(message.NewSync("sync-1", entity.Board{}, entity.MarkX))

		// Then: the prediction is gone
		snapshot := w.Snapshot()
		assert.Equal(t, entity.Board{}, snapshot.Board)
		assert.Equal(t, entity.MarkX, snapshot.Turn)
	})

	t.Run("Unconfirmed predicted win is rolled back", func(t *testing.T) {
		// Given: X is one move from winning on the top row
		w, _ := started(t, entity.MarkX)
		w.Receive(message.NewSync("sync-1", entity.Board{entity.MarkX, entity.MarkX, entity.NoMark, entity.MarkO, entity.MarkO}, entity.MarkX))

		// When: X predicts the win but the server's board does not have it
		w.Mark(3)
		require.Equal(t, entity.PhaseVictory, w.Snapshot().Phase)
		w.Receive(message.NewSync("sync-1", entity.Board{entity.MarkX, entity.MarkX, entity.NoMark, entity.MarkO, entity.MarkO}, entity.MarkX))

		// Then: the match is running again with no line drawn
		snapshot := w.Snapshot()
		assert.Equal(t, entity.PhaseInGame, snapshot.Phase)
		assert.True(t, snapshot.Line.IsZero())
	})

	t.Run("Partial Sync leaves absent fields alone", func(t *testing.T) {
		w, _ := started(t, entity.MarkX)
		w.Mark(2)

		turn := entity.MarkX
		w.Receive(message.Sync{Turn: &turn})

		snapshot := w.Snapshot()
		assert.Equal(t, entity.MarkX, snapshot.Board[1])
		assert.Equal(t, entity.MarkX, snapshot.Turn)
	})
}

func TestWorld_Session(t *testing.T) {
	t.Run("Server messages reach the world", func(t *testing.T) {
		// Given: a connected client
		w, conn := attach(t, NewMemory(nil))

		// When: the server seats it and starts a match
		require.NoError(t, conn.Send(message.JoinedWorld{Name: "brave-otter"}))
		require.NoError(t, conn.Send(message.OpponentProfile{Profile: entity.Profile{Name: "Bob", Animal: "fox"}}))
		require.NoError(t, conn.Send(message.Start{Sign: entity.MarkO, Turn: entity.MarkX}))

		// Then: the snapshot follows
		require.Eventually(t, func() bool { return w.Snapshot().Phase == entity.PhaseInGame }, waitFor, tick)
		snapshot := w.Snapshot()
		assert.Equal(t, "brave-otter", snapshot.World)
		assert.Equal(t, entity.MarkO, snapshot.Sign)
		assert.Equal(t, "Bob", snapshot.Opponent.Name)
	})

	t.Run("Opponent leaving sends the world back to waiting", func(t *testing.T) {
		w, _ := started(t, entity.MarkX)
		w.Mark(5)

		w.Receive(message.Disconnected{})

		snapshot := w.Snapshot()
		assert.Equal(t, entity.PhaseWaiting, snapshot.Phase)
		assert.Equal(t, entity.Board{}, snapshot.Board)
		assert.Equal(t, entity.ConnectionOpen, snapshot.Connection)
		assert.Equal(t, message.Disconnected{}, snapshot.Notice)
	})

	t.Run("Victory from the server ends the match", func(t *testing.T) {
		w, _ := started(t, entity.MarkO)

		w.Receive(message.Victory{Winner: entity.MarkX, Line: entity.Line{3, 5, 7}})

		snapshot := w.Snapshot()
		assert.Equal(t, entity.PhaseVictory, snapshot.Phase)
		assert.Equal(t, entity.Line{3, 5, 7}, snapshot.Line)
	})

	t.Run("Rematch request is shown", func(t *testing.T) {
		w, _ := started(t, entity.MarkO)

		w.Receive(message.RematchRequested{})

		assert.True(t, w.Snapshot().Rematch)
	})
}

func TestWorld_Requests(t *testing.T) {
	t.Run("Lobby and session requests are relayed", func(t *testing.T) {
		w, conn := attach(t, NewMemory(nil))

		w.NewWorld()
		w.JoinWorld("brave-otter")
		w.Ready()
		w.RequestRematch()

		require.Eventually(t, func() bool { return len(conn.Messages()) == 4 }, waitFor, tick)
		assert.Equal(t, []message.Message{
			message.NewWorld{},
			message.JoinWorld{Name: "brave-otter"},
			message.Ready{},
			message.RequestRematch{},
		}, conn.Messages())
	})

	t.Run("Colors and profile are stored", func(t *testing.T) {
		prefs := NewMemory(nil)
		w, conn := attach(t, prefs)

		w.UpdateColors("dark", 210)
		w.SetProfile(entity.Profile{Name: "Ada", Animal: "owl"})

		ctx := context.Background()
		scheme, err := prefs.Get(ctx, PrefColorScheme)
		require.NoError(t, err)
		assert.Equal(t, "dark", scheme)

		hue, err := prefs.Get(ctx, PrefColorHue)
		require.NoError(t, err)
		assert.Equal(t, "210", hue)

		name, err := prefs.Get(ctx, PrefPlayerName)
		require.NoError(t, err)
		assert.Equal(t, "Ada", name)

		waitSent(t, conn, message.PlayerProfile{Profile: entity.Profile{Name: "Ada", Animal: "owl"}})
	})
}
