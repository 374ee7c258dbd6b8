package hoard

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/sweep/internal/config"
	"github.com/dyluth/sweep/internal/filter"
	"github.com/dyluth/sweep/internal/testutil"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRun(t *testing.T, model, mode string, createdAtMs int64) *Run {
	t.Helper()
	r, err := NewRun(model, mode, testutil.QwertyLayout(t))
	require.NoError(t, err)
	r.CreatedAtMs = createdAtMs
	r.Iterations = 1000
	r.K = 7.5
	r.TempScale = 0.1
	r.Trials = 3
	r.Seed = 42
	r.InitialEnergy = 10.25
	r.FinalEnergy = 9.125
	r.Improvement = 100 * (10.25 - 9.125) / 10.25
	r.CorpusDigest = "abc123"
	return r
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(&redis.Options{Addr: mr.Addr()}, "test-ns")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("redis", func(t *testing.T) {
		s, _ := setupRedisStore(t)
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		fn(t, setupSQLiteStore(t))
	})
}

func TestStoreSaveGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		r := makeRun(t, "heuristic", "fixed", 1_700_000_000_000)

		require.NoError(t, s.Save(ctx, r))

		got, err := s.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r, got)

		l, err := got.DecodeLayout()
		require.NoError(t, err)
		assert.True(t, testutil.QwertyLayout(t).Equal(l))

		t.Run("save replaces", func(t *testing.T) {
			r.FinalEnergy = 8
			require.NoError(t, s.Save(ctx, r))
			got, err := s.Get(ctx, r.ID)
			require.NoError(t, err)
			assert.Equal(t, 8.0, got.FinalEnergy)

			runs, err := s.List(ctx, nil)
			require.NoError(t, err)
			assert.Len(t, runs, 1)
		})

		t.Run("missing run", func(t *testing.T) {
			_, err := s.Get(ctx, uuid.NewString())
			require.Error(t, err)
			assert.True(t, IsNotFound(err))
		})

		t.Run("invalid run", func(t *testing.T) {
			bad := makeRun(t, "heuristic", "sideways", 1)
			err := s.Save(ctx, bad)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid mode: sideways")
		})
	})
}

func TestStoreList(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		r1 := makeRun(t, "heuristic", "fixed", 3_000)
		r2 := makeRun(t, "measured", "stable", 1_000)
		r3 := makeRun(t, "simple", "fixed", 2_000)
		for _, r := range []*Run{r1, r2, r3} {
			require.NoError(t, s.Save(ctx, r))
		}

		ids := func(runs []*Run) []string {
			var out []string
			for _, r := range runs {
				out = append(out, r.ID)
			}
			return out
		}

		tests := []struct {
			name     string
			criteria *filter.Criteria
			expected []string
		}{
			{"all, oldest first", nil, []string{r2.ID, r3.ID, r1.ID}},
			{"since", &filter.Criteria{SinceTimestampMs: 2_000}, []string{r3.ID, r1.ID}},
			{"until", &filter.Criteria{UntilTimestampMs: 2_000}, []string{r2.ID, r3.ID}},
			{"model glob", &filter.Criteria{ModelGlob: "*e*ed"}, []string{r2.ID}},
			{"mode", &filter.Criteria{Mode: "fixed"}, []string{r3.ID, r1.ID}},
			{"no match", &filter.Criteria{ModelGlob: "quantum"}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				runs, err := s.List(ctx, tt.criteria)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, ids(runs))
			})
		}
	})
}

func TestStoreIDsWithPrefix(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a := makeRun(t, "heuristic", "fixed", 1)
		a.ID = "abcdef00-0000-4000-8000-000000000001"
		b := makeRun(t, "heuristic", "fixed", 2)
		b.ID = "abcdef11-0000-4000-8000-000000000002"
		c := makeRun(t, "heuristic", "fixed", 3)
		c.ID = "12345678-0000-4000-8000-000000000003"
		for _, r := range []*Run{a, b, c} {
			require.NoError(t, s.Save(ctx, r))
		}

		got, err := s.IDsWithPrefix(ctx, "abcdef")
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, b.ID}, got)

		got, err = s.IDsWithPrefix(ctx, "abcdef1")
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID}, got)

		got, err = s.IDsWithPrefix(ctx, "ffffff")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRedisStore(t *testing.T) {
	t.Run("rejects empty namespace", func(t *testing.T) {
		_, err := NewRedisStore(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "namespace cannot be empty")
	})

	t.Run("keys are namespaced", func(t *testing.T) {
		s, mr := setupRedisStore(t)
		r := makeRun(t, "heuristic", "fixed", 5)
		require.NoError(t, s.Save(context.Background(), r))

		assert.Equal(t, "test-ns", s.Namespace())
		assert.True(t, mr.Exists(RunKey("test-ns", r.ID)))
		members, err := mr.ZMembers(RunIndexKey("test-ns"))
		require.NoError(t, err)
		assert.Equal(t, []string{r.ID}, members)
	})

	t.Run("skips malformed runs when listing", func(t *testing.T) {
		s, mr := setupRedisStore(t)
		good := makeRun(t, "heuristic", "fixed", 5)
		require.NoError(t, s.Save(context.Background(), good))

		badID := uuid.NewString()
		mr.HSet(RunKey("test-ns", badID), "id", badID, "created_at_ms", "soon")
		_, err := mr.ZAdd(RunIndexKey("test-ns"), 6, badID)
		require.NoError(t, err)

		runs, err := s.List(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, good.ID, runs[0].ID)
	})

	t.Run("publishes saved runs", func(t *testing.T) {
		s, _ := setupRedisStore(t)
		ctx := context.Background()

		sub, err := s.Subscribe(ctx)
		require.NoError(t, err)
		defer sub.Close()

		r := makeRun(t, "measured", "stable", 9)
		require.NoError(t, s.Save(ctx, r))

		select {
		case got := <-sub.Events():
			require.NotNil(t, got)
			assert.Equal(t, r.ID, got.ID)
			assert.Equal(t, "measured", got.Model)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for run event")
		}
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		_, err := Open(ctx, &config.StoreConfig{Backend: config.BackendNone})
		assert.True(t, errors.Is(err, ErrNoStore))
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := Open(ctx, &config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "x.db")})
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &SQLiteStore{}, s)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := Open(ctx, &config.StoreConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr(), Namespace: "n"})
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &RedisStore{}, s)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		_, err := Open(ctx, &config.StoreConfig{Backend: config.BackendRedis, RedisAddr: "127.0.0.1:1", Namespace: "n"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})
}

func TestHashRoundTrip(t *testing.T) {
	r := makeRun(t, "simple", "stable", 77)
	r.HalfLife = 1234.5
	r.MaxUnchanged = 99
	r.StdDev = 0.1 + 0.2

	hash := RunToHash(r)
	strHash := make(map[string]string, len(hash))
	for k, v := range hash {
		strHash[k] = toString(v)
	}

	got, err := HashToRun(strHash)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	t.Run("malformed number", func(t *testing.T) {
		strHash["final_energy"] = "lots"
		_, err := HashToRun(strHash)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid final_energy field")
	})
}

// toString mirrors how go-redis renders HSET arguments.
func toString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		panic("unexpected hash value type")
	}
}
