package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const usage = `commands: new | join <world> | ready | mark <1-9> | rematch | colors <scheme> <hue> | quit`

var (
	errQuit           = errors.New("quit")
	errUnknownCommand = errors.New("unknown command")
	errUsage          = errors.New("wrong arguments")
)

// actions is the part of the client world the prompt drives.
type actions interface {
	NewWorld()
	JoinWorld(name string)
	Ready()
	Mark(place int)
	RequestRematch()
	UpdateColors(scheme string, hue int)
}

// execute - parses one prompt line and runs it against the world.
func execute(w actions, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch command, args := fields[0], fields[1:]; command {
	case "quit", "exit":
		return errQuit
	case "new":
		w.NewWorld()
	case "join":
		if len(args) != 1 {
			return fmt.Errorf("%w: join <world>", errUsage)
		}
		w.JoinWorld(args[0])
	case "ready":
		w.Ready()
	case "rematch":
		w.RequestRematch()
	case "mark":
		if len(args) != 1 {
			return fmt.Errorf("%w: mark <1-9>", errUsage)
		}

		place, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: mark <1-9>", errUsage)
		}
		w.Mark(place)
	case "colors":
		if len(args) != 2 {
			return fmt.Errorf("%w: colors <scheme> <hue>", errUsage)
		}

		hue, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: colors <scheme> <hue>", errUsage)
		}
		w.UpdateColors(args[0], hue)
	default:
		return fmt.Errorf("%w: %s\n%s", errUnknownCommand, command, usage)
	}

	return nil
}
