package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidMark = errors.New("invalid mark")

// Mark is the sign held by a square or a player. NoMark stands for "false" on the wire.
type Mark string

const (
	MarkX  Mark = "X"
	MarkO  Mark = "O"
	NoMark Mark = ""
)

// Opponent - returns the other sign; NoMark stays NoMark.
func (that Mark) Opponent() Mark {
	switch that {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return NoMark
	}
}

func (that Mark) Valid() bool {
	return that == MarkX || that == MarkO
}

func (that Mark) MarshalJSON() ([]byte, error) {
	if that == NoMark {
		return []byte("false"), nil
	}

	return json.Marshal(string(that))
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "false", "null", `""`:
		*that = NoMark
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMark, data)
	}

	mark := Mark(raw)
	if !mark.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMark, raw)
	}

	*that = mark

	return nil
}

// Board holds the marks of places 1..9 at indexes 0..8.
type Board [9]Mark

// Full - reports whether every place is marked.
func (that Board) Full() bool {
	for _, mark := range that {
		if mark == NoMark {
			return false
		}
	}

	return true
}

// Line is a triple of places on the 1..9 grid. The zero Line means "no line".
type Line [3]int

func (that Line) IsZero() bool {
	return that == Line{}
}

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhaseInGame  Phase = "ingame"
	PhaseVictory Phase = "victory"
	PhaseDraw    Phase = "draw"
)

// Finished - reports whether the match reached its terminal announcement.
func (that Phase) Finished() bool {
	return that == PhaseVictory || that == PhaseDraw
}

type ConnectionStatus string

const (
	ConnectionPending ConnectionStatus = "pending"
	ConnectionOpen    ConnectionStatus = "open"
	ConnectionClosed  ConnectionStatus = "closed"
)

// Profile is the cosmetic identity a player shows to the opponent.
type Profile struct {
	Name   string `json:"name"`
	Animal string `json:"animal"`
}
