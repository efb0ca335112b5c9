package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/client"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
)

type snapshotter interface {
	Snapshot() client.Snapshot
}

type view struct {
	mu  sync.Mutex
	out io.Writer
}

func newView(out io.Writer) *view {
	return &view{out: out}
}

func (that *view) draw(w snapshotter) {
	that.mu.Lock()
	defer that.mu.Unlock()

	fmt.Fprint(that.out, render(w.Snapshot()))
}

func (that *view) println(a ...any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	fmt.Fprintln(that.out, a...)
}

func render(s client.Snapshot) string {
	var b strings.Builder

	if s.Connection == entity.ConnectionClosed {
		b.WriteString("connection closed\n")
		return b.String()
	}

	if notice := describe(s.Notice); notice != "" {
		b.WriteString(notice + "\n")
	}

	if s.World != "" {
		fmt.Fprintf(&b, "world %s", s.World)
		if s.Opponent.Name != "" {
			fmt.Fprintf(&b, " vs %s the %s", s.Opponent.Name, s.Opponent.Animal)
		}
		b.WriteString("\n")
	}

	for row := range 3 {
		cells := make([]string, 3)
		for col := range 3 {
			place := row*3 + col
			cells[col] = cell(s.Board[place], place+1, s.Line)
		}

		b.WriteString(" " + strings.Join(cells, " | ") + "\n")
		if row < 2 {
			b.WriteString("---+---+---\n")
		}
	}

	b.WriteString(status(s) + "\n")

	return b.String()
}

func cell(mark entity.Mark, place int, line entity.Line) string {
	if mark == entity.NoMark {
		return fmt.Sprint(place)
	}

	for _, struck := range line {
		if struck == place {
			return strings.ToLower(string(mark))
		}
	}

	return string(mark)
}

func status(s client.Snapshot) string {
	switch s.Phase {
	case entity.PhaseInGame:
		if s.Turn == s.Sign {
			return fmt.Sprintf("you are %s, your move", s.Sign)
		}
		return fmt.Sprintf("you are %s, waiting for %s", s.Sign, s.Turn)
	case entity.PhaseVictory:
		if winner(s) == s.Sign {
			return "you won"
		}
		return "you lost"
	case entity.PhaseDraw:
		return "draw"
	case entity.PhaseWaiting:
		if s.Rematch {
			return "opponent wants a rematch, type ready"
		}
		return "waiting, type ready"
	default:
		return ""
	}
}

func winner(s client.Snapshot) entity.Mark {
	first := s.Line[0]
	if first < 1 || first > len(s.Board) {
		return entity.NoMark
	}

	return s.Board[first-1]
}

func describe(notice message.Message) string {
	switch msg := notice.(type) {
	case message.WorldNotFound:
		return fmt.Sprintf("world %s does not exist", msg.Name)
	case message.WorldOccupied:
		return fmt.Sprintf("world %s is full", msg.Name)
	case message.Disconnected:
		return "opponent left"
	case message.RematchRequested:
		return "rematch requested"
	default:
		return ""
	}
}
