package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/entity"
)

const (
	profileName   = "name"
	profileAnimal = "animal"
)

type ProfileRepository interface {
	Save(ctx context.Context, playerID string, profile entity.Profile) error
	Load(ctx context.Context, playerID string) (entity.Profile, error)
}

type dbProfile struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileRepository - profiles expire ttl after their last save; zero keeps them forever.
func NewProfileRepository(client *redis.Client, ttl time.Duration) ProfileRepository {
	return &dbProfile{
		client: client,
		ttl:    ttl,
	}
}

func profileKey(playerID string) string {
	return "profile:" + playerID
}

func (that *dbProfile) Save(ctx context.Context, playerID string, profile entity.Profile) error {
	key := profileKey(playerID)

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, profileName, profile.Name, profileAnimal, profile.Animal)

		if that.ttl > 0 {
			pipe.Expire(ctx, key, that.ttl)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

func (that *dbProfile) Load(ctx context.Context, playerID string) (entity.Profile, error) {
	fields, err := that.client.HGetAll(ctx, profileKey(playerID)).Result()
	if err != nil {
		return entity.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	if len(fields) == 0 {
		return entity.Profile{}, fmt.Errorf("profile %s: %w", playerID, apperror.ErrNotFound)
	}

	return entity.Profile{
		Name:   fields[profileName],
		Animal: fields[profileAnimal],
	}, nil
}
