package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
)

func TestEncode(t *testing.T) {
	t.Run("Wire form is a single-key object", func(t *testing.T) {
		// When: a mark is encoded
		raw, err := Encode(Mark{Place: 3})

		// Then: the tag is the only key
		require.NoError(t, err)
		assert.JSONEq(t, `{"Mark":{"place":3}}`, string(raw))
	})

	t.Run("Empty payload is an empty object", func(t *testing.T) {
		raw, err := Encode(Ready{})

		require.NoError(t, err)
		assert.JSONEq(t, `{"Ready":{}}`, string(raw))
	})

	t.Run("Sync omits absent fields", func(t *testing.T) {
		turn := entity.MarkO

		raw, err := Encode(Sync{Turn: &turn})

		require.NoError(t, err)
		assert.JSONEq(t, `{"Sync":{"turn":"O"}}`, string(raw))
	})
}

func TestRoundTrip(t *testing.T) {
	board := entity.Board{entity.MarkX, entity.MarkO, entity.NoMark, entity.MarkX}
	turn := entity.MarkO

	// every shape a peer can produce must decode back to an equal value
	messages := []Message{
		Mark{Place: 9},
		SwitchTo(entity.MarkX),
		Switch{},
		Marked{Place: 1, Sign: entity.MarkX},
		Ready{},
		Start{Sign: entity.MarkO, Turn: entity.MarkX},
		Sync{ID: "abc", Board: &board, Turn: &turn},
		Sync{},
		Victory{Winner: entity.MarkX, Line: entity.Line{1, 2, 3}},
		Draw{},
		NewWorld{},
		JoinWorld{Name: "brave-otter"},
		JoinedWorld{Name: "brave-otter"},
		WorldNotFound{Name: "lost-lynx"},
		WorldOccupied{Name: "busy-bee"},
		Disconnected{},
		RequestRematch{},
		RematchRequested{},
		UpdateColors{Scheme: "dark", Hue: 210},
		PlayerProfile{Profile: entity.Profile{Name: "Ada", Animal: "owl"}},
		OpponentProfile{Profile: entity.Profile{Name: "Bob", Animal: "fox"}},
		ReconnectID{ID: "0b5c"},
		Connected{},
		PlayerMark{PlayerID: "p1", Place: 5},
		PlayerReady{PlayerID: "p1"},
		PlayerNewWorld{PlayerID: "p1"},
		PlayerJoinWorld{PlayerID: "p1", Name: "brave-otter"},
		PlayerRequestRematch{PlayerID: "p1"},
		PlayerProfileChanged{PlayerID: "p1", Profile: entity.Profile{Name: "Ada"}},
		PlayerReconnect{PlayerID: "p2", PreviousID: "p1"},
		PlayerDisconnected{PlayerID: "p1"},
	}

	for _, msg := range messages {
		t.Run(string(msg.Tag()), func(t *testing.T) {
			raw, err := Encode(msg)
			require.NoError(t, err)

			decoded, err := All.Decode(raw)
			require.NoError(t, err)

			assert.Equal(t, msg, decoded)
		})
	}
}

func TestRegistry_Decode(t *testing.T) {
	t.Run("Invalid JSON is malformed", func(t *testing.T) {
		_, err := ClientToServer.Decode([]byte(`{"Mark":`))
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Two tags are malformed", func(t *testing.T) {
		_, err := ClientToServer.Decode([]byte(`{"Mark":{"place":1},"Ready":{}}`))
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Server-side tags cannot come from a client", func(t *testing.T) {
		// Given: a client trying to impersonate another player
		raw := []byte(`{"PlayerMark":{"playerId":"someone-else","place":1}}`)

		// When: the server decodes it
		_, err := ClientToServer.Decode(raw)

		// Then: the tag is unknown at that boundary
		require.ErrorIs(t, err, ErrUnknownTag)
	})

	t.Run("Wrong payload shape is malformed", func(t *testing.T) {
		_, err := ClientToServer.Decode([]byte(`{"Mark":{"place":"middle"}}`))
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Null payload decodes to the zero message", func(t *testing.T) {
		msg, err := ClientToServer.Decode([]byte(`{"Ready":null}`))

		require.NoError(t, err)
		assert.Equal(t, Ready{}, msg)
	})
}
