package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	ID      uint     `json:"id"`
	Columns []string `json:"columns"`
}

func newSnapshots(t *testing.T, ttl time.Duration) (*Snapshots, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), mr
}

func TestStoreThenLoad(t *testing.T) {
	ctx := context.Background()
	s, mr := newSnapshots(t, time.Minute)

	s.Store(ctx, 7, 0, snapshot{ID: 7, Columns: []string{"To Do", "Done"}})

	var got snapshot
	require.True(t, s.Load(ctx, 7, &got))
	assert.Equal(t, snapshot{ID: 7, Columns: []string{"To Do", "Done"}}, got)
	assert.Equal(t, time.Minute, mr.TTL("board:7:snapshot"))
}

func TestLoadMiss(t *testing.T) {
	s, _ := newSnapshots(t, time.Minute)

	var got snapshot
	assert.False(t, s.Load(context.Background(), 1, &got))
}

func TestEvictDropsEveryNamedBoard(t *testing.T) {
	ctx := context.Background()
	s, mr := newSnapshots(t, time.Minute)
	s.Store(ctx, 1, 0, snapshot{ID: 1})
	s.Store(ctx, 2, 0, snapshot{ID: 2})
	s.Store(ctx, 3, 0, snapshot{ID: 3})

	s.Evict(ctx, 1, 2)

	assert.False(t, mr.Exists("board:1:snapshot"))
	assert.False(t, mr.Exists("board:2:snapshot"))
	assert.True(t, mr.Exists("board:3:snapshot"))
}

func TestStoreSkipsSnapshotReadBeforeEviction(t *testing.T) {
	ctx := context.Background()
	s, mr := newSnapshots(t, time.Minute)

	// A reader takes the generation, then loads the board from the database.
	gen := s.Generation(ctx, 9)
	stale := snapshot{ID: 9, Columns: []string{"To Do"}}

	// A write commits and evicts before the reader stores its copy.
	s.Evict(ctx, 9)
	s.Store(ctx, 9, gen, stale)

	assert.False(t, mr.Exists("board:9:snapshot"))
	var got snapshot
	assert.False(t, s.Load(ctx, 9, &got))

	// The next reader sees the new generation and may cache again.
	fresh := snapshot{ID: 9, Columns: []string{"To Do", "Done"}}
	s.Store(ctx, 9, s.Generation(ctx, 9), fresh)
	require.True(t, s.Load(ctx, 9, &got))
	assert.Equal(t, fresh, got)
}

func TestEvictBumpsGeneration(t *testing.T) {
	ctx := context.Background()
	s, _ := newSnapshots(t, time.Minute)

	assert.Equal(t, int64(0), s.Generation(ctx, 2))
	s.Evict(ctx, 2, 3)
	s.Evict(ctx, 2)

	assert.Equal(t, int64(2), s.Generation(ctx, 2))
	assert.Equal(t, int64(1), s.Generation(ctx, 3))
}

func TestCorruptEntryIsDropped(t *testing.T) {
	s, mr := newSnapshots(t, time.Minute)
	require.NoError(t, mr.Set("board:4:snapshot", "{not json"))

	var got snapshot
	assert.False(t, s.Load(context.Background(), 4, &got))
	assert.False(t, mr.Exists("board:4:snapshot"))
}

func TestZeroTTLDisablesWrites(t *testing.T) {
	s, mr := newSnapshots(t, 0)

	s.Store(context.Background(), 5, 0, snapshot{ID: 5})

	assert.False(t, mr.Exists("board:5:snapshot"))
}

func TestNilCacheIsNoOp(t *testing.T) {
	var s *Snapshots
	ctx := context.Background()

	s.Store(ctx, 1, 0, snapshot{})
	s.Evict(ctx, 1)
	assert.Zero(t, s.Generation(ctx, 1))
	assert.False(t, s.Load(ctx, 1, &snapshot{}))
	assert.False(t, New(nil, time.Minute).Load(ctx, 1, &snapshot{}))
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	assert.NoError(t, client.Close())

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
