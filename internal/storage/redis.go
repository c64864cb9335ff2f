package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/redis/go-redis/v9"
)

const (
	sceneKeyPrefix  = "scene:"
	DefaultSceneTTL = time.Hour
)

// RedisStorage keeps generated scenes in Redis and reads fixture scenes from
// dataDir/scenes.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	ttl     time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage accepts either a host:port address or a redis:// URL.
func NewRedisStorage(redisURL string, dataDir string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opts = parsed
	}

	if dataDir == "" {
		dataDir = "./data"
	}
	if ttl <= 0 {
		ttl = DefaultSceneTTL
	}

	return &RedisStorage{
		client:  redis.NewClient(opts),
		logger:  logger,
		dataDir: dataDir,
		ttl:     ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func sceneKey(id uuid.UUID) string {
	return sceneKeyPrefix + id.String()
}

// Scene operations (Redis-backed)

func (r *RedisStorage) SaveScene(ctx context.Context, id uuid.UUID, s *scene.Scene) error {
	if s == nil {
		return errors.New("scene cannot be nil")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	if err := r.client.Set(ctx, sceneKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save scene", "scene_id", id, "error", err)
		return fmt.Errorf("failed to save scene: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadScene(ctx context.Context, id uuid.UUID) (*scene.Scene, error) {
	data, err := r.client.Get(ctx, sceneKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Scene not found", "scene_id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load scene", "scene_id", id, "error", err)
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}

	// UnmarshalJSON re-validates.
	var s scene.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Error("Stored scene failed to decode", "scene_id", id, "error", err)
		return nil, fmt.Errorf("failed to decode stored scene: %w", err)
	}
	return &s, nil
}

func (r *RedisStorage) DeleteScene(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sceneKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete scene", "scene_id", id, "error", err)
		return fmt.Errorf("failed to delete scene: %w", err)
	}
	return nil
}
