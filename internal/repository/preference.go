package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/apperror"
)

type PreferenceRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type dbPreference struct {
	client *redis.Client
	prefix string
}

// NewPreferenceRepository - keeps one client's preferences under "pref:<owner>:".
func NewPreferenceRepository(client *redis.Client, owner string) PreferenceRepository {
	return &dbPreference{
		client: client,
		prefix: "pref:" + owner + ":",
	}
}

func (that *dbPreference) Get(ctx context.Context, key string) (string, error) {
	value, err := that.client.Get(ctx, that.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("preference %s: %w", key, apperror.ErrNotFound)
	}

	if err != nil {
		return "", fmt.Errorf("failed to get preference: %w", err)
	}

	return value, nil
}

func (that *dbPreference) Set(ctx context.Context, key, value string) error {
	if err := that.client.Set(ctx, that.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}

	return nil
}
