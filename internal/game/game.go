package game

import (
	"github.com/rocketscienceinc/tictactoe-worlds/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
)

// Lines are the eight winning triples over places 1..9: rows, columns, diagonals.
var Lines = [8]entity.Line{
	{1, 2, 3},
	{4, 5, 6},
	{7, 8, 9},
	{1, 4, 7},
	{2, 5, 8},
	{3, 6, 9},
	{1, 5, 9},
	{3, 5, 7},
}

// CanMark - checks that sign may put its mark on place. Both peers run the same rule,
// the client to predict and the server to decide.
func CanMark(board entity.Board, phase entity.Phase, turn, sign entity.Mark, place int) error {
	if phase.Finished() {
		return apperror.ErrGameFinished
	}

	if phase != entity.PhaseInGame {
		return apperror.ErrGameIsNotStarted
	}

	if place < 1 || place > len(board) {
		return apperror.ErrInvalidCell
	}

	if board[place-1] != entity.NoMark {
		return apperror.ErrCellOccupied
	}

	if !sign.Valid() || sign != turn {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// Winner - returns the first full line in Lines order and its sign.
func Winner(board entity.Board) (entity.Line, entity.Mark, bool) {
	for _, line := range Lines {
		a, b, c := board[line[0]-1], board[line[1]-1], board[line[2]-1]
		if a != entity.NoMark && a == b && b == c {
			return line, a, true
		}
	}

	return entity.Line{}, entity.NoMark, false
}

// Judge - returns Victory, Draw, or nil while the match goes on.
func Judge(board entity.Board) message.Message {
	if line, winner, ok := Winner(board); ok {
		return message.Victory{Winner: winner, Line: line}
	}

	if board.Full() {
		return message.Draw{}
	}

	return nil
}
