package hoard

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/dyluth/sweep/internal/filter"
	"github.com/redis/go-redis/v9"
)

// Key pattern helpers
//
// Keys and channels are namespaced so several projects can share one Redis
// server.
//
// Key pattern: sweep:{namespace}:run:{uuid}
// Index pattern: sweep:{namespace}:runs (ZSET scored by created_at_ms)
// Channel pattern: sweep:{namespace}:run_events

// RunKey returns the Redis key for a run hash.
func RunKey(namespace, runID string) string {
	return fmt.Sprintf("sweep:%s:run:%s", namespace, runID)
}

// RunIndexKey returns the Redis key for the time-ordered run index.
func RunIndexKey(namespace string) string {
	return fmt.Sprintf("sweep:%s:runs", namespace)
}

// RunEventsChannel returns the Pub/Sub channel new runs are announced on.
func RunEventsChannel(namespace string) string {
	return fmt.Sprintf("sweep:%s:run_events", namespace)
}

// RedisStore keeps runs in Redis. It is safe for concurrent use.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisStore creates a store for the given namespace.
// Returns an error if namespace is empty.
func NewRedisStore(redisOpts *redis.Options, namespace string) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	return &RedisStore{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Namespace returns the namespace the store reads and writes.
func (s *RedisStore) Namespace() string { return s.namespace }

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Save writes the run hash and index entry atomically, then publishes the
// run on the events channel.
func (s *RedisStore) Save(ctx context.Context, r *Run) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, RunKey(s.namespace, r.ID), RunToHash(r))
		pipe.ZAdd(ctx, RunIndexKey(s.namespace), redis.Z{Score: float64(r.CreatedAtMs), Member: r.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write run to Redis: %w", err)
	}

	runJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal run for event: %w", err)
	}
	if err := s.rdb.Publish(ctx, RunEventsChannel(s.namespace), runJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Run, error) {
	hashData, err := s.rdb.HGetAll(ctx, RunKey(s.namespace, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run from Redis: %w", err)
	}

	// HGetAll returns an empty map for missing keys
	if len(hashData) == 0 {
		return nil, &RunNotFoundError{RunID: id}
	}

	r, err := HashToRun(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize run: %w", err)
	}
	return r, nil
}

// List reads the time index within the criteria's window and fetches each
// run. Malformed runs are skipped with a warning to stderr.
func (s *RedisStore) List(ctx context.Context, criteria *filter.Criteria) ([]*Run, error) {
	rng := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if criteria != nil && criteria.SinceTimestampMs > 0 {
		rng.Min = strconv.FormatInt(criteria.SinceTimestampMs, 10)
	}
	if criteria != nil && criteria.UntilTimestampMs > 0 {
		rng.Max = strconv.FormatInt(criteria.UntilTimestampMs, 10)
	}

	ids, err := s.rdb.ZRangeByScore(ctx, RunIndexKey(s.namespace), rng).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run index: %w", err)
	}

	var runs []*Run
	for _, id := range ids {
		r, err := s.Get(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Skipping malformed run: id=%s (error: %v)\n", id, err)
			continue
		}
		if !criteria.Matches(r) {
			continue
		}
		runs = append(runs, r)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAtMs < runs[j].CreatedAtMs
	})
	return runs, nil
}

// IDsWithPrefix scans run keys matching the prefix.
func (s *RedisStore) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := RunKey(s.namespace, "")
	iter := s.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 0).Iterator()

	var ids []string
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(keyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan runs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Subscription delivers runs as they are saved.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Run
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of saved runs. It is closed when the
// subscription ends.
func (s *Subscription) Events() <-chan *Run { return s.events }

// Errors returns non-fatal decoding errors; the subscription continues.
func (s *Subscription) Errors() <-chan error { return s.errors }

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe listens for runs saved to this namespace. Delivery is
// at-most-once; the subscription is confirmed before Subscribe returns.
func (s *RedisStore) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := s.rdb.Subscribe(ctx, RunEventsChannel(s.namespace))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to run events: %w", err)
	}

	eventsChan := make(chan *Run, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var r Run
				if err := json.Unmarshal([]byte(msg.Payload), &r); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal run event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &r:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
