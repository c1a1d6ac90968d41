package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists jobs as JSON blobs so job state survives a restart of
// the API process. The read-modify-write merge is serialized through a local
// mutex: a job has exactly one writer (its worker), and all workers live in
// this process, so cross-process locking is not needed.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl keeps jobs forever,
// mirroring the in-memory store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string { return "lectureqa:job:" + id }

func (s *RedisStore) Upsert(ctx context.Context, id string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var job Job
	raw, err := s.client.Get(ctx, redisKey(id)).Bytes()
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &job); err != nil {
			return fmt.Errorf("decode job %s: %w", id, err)
		}
	case errors.Is(err, redis.Nil):
		job = Job{ID: id}
	default:
		return fmt.Errorf("load job %s: %w", id, err)
	}

	job.apply(u)

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", id, err)
	}
	if err := s.client.Set(ctx, redisKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store job %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Job, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, fmt.Errorf("load job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, false, fmt.Errorf("decode job %s: %w", id, err)
	}
	return job, true, nil
}
