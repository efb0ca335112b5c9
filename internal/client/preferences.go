package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/apperror"
)

const (
	PrefColorScheme  = "color.scheme"
	PrefColorHue     = "color.hue"
	PrefPlayerName   = "player.name"
	PrefPlayerAnimal = "player.animal"
	PrefPlayerID     = "player.id"
)

// Preferences is the client's small key-value store. A failed read means "not set".
type Preferences interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Memory keeps preferences for the lifetime of the process.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemory(values map[string]string) *Memory {
	memory := &Memory{values: make(map[string]string, len(values))}
	for key, value := range values {
		memory.values[key] = value
	}

	return memory
}

func (that *Memory) Get(_ context.Context, key string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	value, ok := that.values[key]
	if !ok {
		return "", fmt.Errorf("preference %s: %w", key, apperror.ErrNotFound)
	}

	return value, nil
}

func (that *Memory) Set(_ context.Context, key, value string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.values[key] = value

	return nil
}
