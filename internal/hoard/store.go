package hoard

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/sweep/internal/config"
	"github.com/dyluth/sweep/internal/filter"
	"github.com/redis/go-redis/v9"
)

// Store persists run records.
type Store interface {
	// Save writes a validated run. Saving the same ID twice replaces it.
	Save(ctx context.Context, r *Run) error
	// Get returns the run with the given full ID or *RunNotFoundError.
	Get(ctx context.Context, id string) (*Run, error)
	// List returns matching runs, oldest first.
	List(ctx context.Context, criteria *filter.Criteria) ([]*Run, error)
	// IDsWithPrefix returns the full IDs starting with prefix.
	IDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// ErrNoStore is returned by Open when run records are disabled.
var ErrNoStore = errors.New("run store is disabled (store.backend is 'none')")

// Open connects to the backend selected in the store configuration.
func Open(ctx context.Context, cfg *config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		s, err := NewRedisStore(&redis.Options{Addr: cfg.RedisAddr}, cfg.Namespace)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		return s, nil
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case config.BackendNone, "":
		return nil, ErrNoStore
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

// RunNotFoundError represents a specific "run not found" error.
// This allows callers to distinguish not-found errors from other failures.
type RunNotFoundError struct {
	RunID string
}

func (e *RunNotFoundError) Error() string {
	return fmt.Sprintf("run with ID '%s' not found", e.RunID)
}

// IsNotFound returns true if the error is a RunNotFoundError.
func IsNotFound(err error) bool {
	var nf *RunNotFoundError
	return errors.As(err, &nf)
}
