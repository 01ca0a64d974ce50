package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	snapshotKey = "liftlog:session:snapshot"
	identityKey = "liftlog:session:identity"
)

// RedisSnapshotRepository implements domain.SnapshotRepository using Redis.
// The whole workout session is written through under one fixed key with a
// TTL matching the staleness cutoff.
type RedisSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotRepository creates a new Redis snapshot repository
func NewRedisSnapshotRepository(client *redis.Client, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{
		client: client,
		ttl:    ttl,
	}
}

// Save serializes the session and writes it under the fixed snapshot key
func (r *RedisSnapshotRepository) Save(ctx context.Context, session *domain.WorkoutSession) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.SaveSnapshot",
		trace.WithAttributes(attribute.String("cache.key", snapshotKey)),
	)
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey, data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}

	return nil
}

// Load reads back the persisted session. A missing or malformed snapshot
// yields (nil, nil): recovery failures are discarded silently and the screen
// starts empty.
func (r *RedisSnapshotRepository) Load(ctx context.Context) (*domain.WorkoutSession, error) {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.LoadSnapshot",
		trace.WithAttributes(attribute.String("cache.key", snapshotKey)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}

	var session domain.WorkoutSession
	if err := json.Unmarshal(data, &session); err != nil {
		// Corrupt snapshot: drop it and start clean, never surface the error.
		logrus.WithError(err).Warn("discarding malformed session snapshot")
		_ = r.client.Del(ctx, snapshotKey).Err()
		return nil, nil
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	return &session, nil
}

// Clear removes the persisted snapshot (finish-workout)
func (r *RedisSnapshotRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("failed to clear session snapshot: %w", err)
	}
	return nil
}

// RedisIdentityRepository implements domain.IdentityRepository using Redis.
// The identity record outlives any single workout screen, so it carries no
// TTL; idle rotation is decided by the service from LastActiveAt.
type RedisIdentityRepository struct {
	client *redis.Client
}

// NewRedisIdentityRepository creates a new Redis identity repository
func NewRedisIdentityRepository(client *redis.Client) *RedisIdentityRepository {
	return &RedisIdentityRepository{
		client: client,
	}
}

// Save writes the identity record under the fixed identity key
func (r *RedisIdentityRepository) Save(ctx context.Context, identity *domain.SessionIdentity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal session identity: %w", err)
	}

	if err := r.client.Set(ctx, identityKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session identity: %w", err)
	}

	return nil
}

// Load reads the identity record, returning (nil, nil) when none exists
func (r *RedisIdentityRepository) Load(ctx context.Context) (*domain.SessionIdentity, error) {
	data, err := r.client.Get(ctx, identityKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session identity: %w", err)
	}

	var identity domain.SessionIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		logrus.WithError(err).Warn("discarding malformed session identity")
		_ = r.client.Del(ctx, identityKey).Err()
		return nil, nil
	}

	return &identity, nil
}
