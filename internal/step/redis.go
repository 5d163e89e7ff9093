package step

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "newsmail:"

// checkpointKey returns the hash key for a checkpoint: newsmail:checkpoint:{runID}:{step}
func checkpointKey(runID, step string) string {
	return fmt.Sprintf("%scheckpoint:%s:%s", keyPrefix, runID, step)
}

// claimKey returns the claim key for a running step: newsmail:claim:{runID}:{step}
func claimKey(runID, step string) string {
	return fmt.Sprintf("%sclaim:%s:%s", keyPrefix, runID, step)
}

// releaseScript deletes a claim only while it still belongs to the caller.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps checkpoints in Redis hashes that expire after a TTL.
type RedisStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a Store backed by client. A ttl of zero keeps
// checkpoints forever.
func NewRedisStore(client goredis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// GetCheckpoint implements Store.
func (s *RedisStore) GetCheckpoint(ctx context.Context, runID, stepName string) ([]byte, error) {
	data, err := s.client.HGet(ctx, checkpointKey(runID, stepName), "data").Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("step/redis: get checkpoint: %w", err)
	}
	return []byte(data), nil
}

// SaveCheckpoint implements Store.
func (s *RedisStore) SaveCheckpoint(ctx context.Context, runID, stepName string, data []byte) error {
	key := checkpointKey(runID, stepName)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"run_id", runID,
		"step_name", stepName,
		"data", string(data),
		"created_at", time.Now().UTC().Format(time.RFC3339Nano),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("step/redis: save checkpoint: %w", err)
	}
	return nil
}

// ClaimStep implements Store with SET NX on the claim key.
func (s *RedisStore) ClaimStep(ctx context.Context, runID, stepName, owner string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, claimKey(runID, stepName), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("step/redis: claim step: %w", err)
	}
	return ok, nil
}

// ReleaseStep implements Store.
func (s *RedisStore) ReleaseStep(ctx context.Context, runID, stepName, owner string) error {
	if err := releaseScript.Run(ctx, s.client, []string{claimKey(runID, stepName)}, owner).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("step/redis: release step: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
