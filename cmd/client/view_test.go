package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/client"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
)

func TestRender(t *testing.T) {
	t.Run("Running match", func(t *testing.T) {
		// Given: X marked the center and it is O's move
		s := client.Snapshot{
			Board:      entity.Board{4: entity.MarkX},
			Turn:       entity.MarkO,
			Phase:      entity.PhaseInGame,
			Sign:       entity.MarkO,
			World:      "brave-otter",
			Connection: entity.ConnectionOpen,
			Opponent:   entity.Profile{Name: "Bob", Animal: "fox"},
		}

		// When: it is rendered
		got := render(s)

		// Then: free squares show their place and the prompt says whose move it is
		assert.Equal(t, "world brave-otter vs Bob the fox\n"+
			" 1 | 2 | 3\n---+---+---\n"+
			" 4 | X | 6\n---+---+---\n"+
			" 7 | 8 | 9\n"+
			"you are O, your move\n", got)
	})

	t.Run("Winning line is lower case", func(t *testing.T) {
		s := client.Snapshot{
			Board:      entity.Board{entity.MarkX, entity.MarkX, entity.MarkX, entity.MarkO, entity.MarkO},
			Turn:       entity.MarkO,
			Phase:      entity.PhaseVictory,
			Line:       entity.Line{1, 2, 3},
			Sign:       entity.MarkO,
			Connection: entity.ConnectionOpen,
		}

		got := render(s)

		assert.Contains(t, got, " x | x | x\n")
		assert.Contains(t, got, " O | O | 6\n")
		assert.Contains(t, got, "you lost\n")
	})

	t.Run("Notices are shown above the board", func(t *testing.T) {
		s := client.Snapshot{
			Phase:      entity.PhaseWaiting,
			Connection: entity.ConnectionOpen,
			Notice:     message.WorldNotFound{Name: "sleepy-cat"},
		}

		assert.Contains(t, render(s), "world sleepy-cat does not exist\n")
	})

	t.Run("Closed connection", func(t *testing.T) {
		assert.Equal(t, "connection closed\n", render(client.Snapshot{Connection: entity.ConnectionClosed}))
	})
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		in   client.Snapshot
		want string
	}{
		{"own move", client.Snapshot{Phase: entity.PhaseInGame, Sign: entity.MarkX, Turn: entity.MarkX}, "you are X, your move"},
		{"other move", client.Snapshot{Phase: entity.PhaseInGame, Sign: entity.MarkX, Turn: entity.MarkO}, "you are X, waiting for O"},
		{"win", client.Snapshot{
			Phase: entity.PhaseVictory, Sign: entity.MarkX, Line: entity.Line{3, 5, 7},
			Board: entity.Board{2: entity.MarkX, 4: entity.MarkX, 6: entity.MarkX},
		}, "you won"},
		{"draw", client.Snapshot{Phase: entity.PhaseDraw}, "draw"},
		{"rematch", client.Snapshot{Phase: entity.PhaseWaiting, Rematch: true}, "opponent wants a rematch, type ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status(tt.in))
		})
	}
}
