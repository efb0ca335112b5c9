package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")

	ErrWorldNotFound = errors.New("world not found")
	ErrWorldOccupied = errors.New("world is occupied")
	ErrWorldClosed   = errors.New("world is closed")

	ErrNotFound = errors.New("not found")
)
