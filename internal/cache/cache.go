// Package cache keeps serialized board snapshots (a board with its columns
// and tasks) in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var errStale = errors.New("board snapshot outdated")

// Snapshots is a read-through cache of board views. A nil client or a zero
// TTL disables it; every method is then a no-op.
type Snapshots struct {
	redis *redis.Client
	ttl   time.Duration
}

// New creates a snapshot cache on client.
func New(client *redis.Client, ttl time.Duration) *Snapshots {
	if ttl < 0 {
		ttl = 0
	}
	return &Snapshots{redis: client, ttl: ttl}
}

// Connect parses a redis:// URL and returns a client after a ping.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func key(boardID uint) string {
	return fmt.Sprintf("board:%d:snapshot", boardID)
}

// genKey counts the evictions of a board. A snapshot is only written when
// the count is unchanged since its data was read from the database.
func genKey(boardID uint) string {
	return fmt.Sprintf("board:%d:generation", boardID)
}

// Generation returns the eviction count of boardID. Read it before loading
// the data passed to Store.
func (s *Snapshots) Generation(ctx context.Context, boardID uint) int64 {
	if s == nil || s.redis == nil {
		return 0
	}
	gen, err := s.redis.Get(ctx, genKey(boardID)).Int64()
	if err != nil && err != redis.Nil {
		log.WithError(err).WithField("board_id", boardID).Warn("board cache generation read failed")
	}
	return gen
}

// Load decodes the cached snapshot of boardID into dst. It reports false on
// a miss; unreadable entries are dropped.
func (s *Snapshots) Load(ctx context.Context, boardID uint, dst interface{}) bool {
	if s == nil || s.redis == nil {
		return false
	}
	data, err := s.redis.Get(ctx, key(boardID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).WithField("board_id", boardID).Warn("board cache read failed")
			_ = s.redis.Del(ctx, key(boardID)).Err()
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = s.redis.Del(ctx, key(boardID)).Err()
		return false
	}
	return true
}

// Store caches v as the snapshot of boardID if no eviction happened since
// gen was read. A snapshot read before a concurrent write is dropped rather
// than cached.
func (s *Snapshots) Store(ctx context.Context, boardID uint, gen int64, v interface{}) {
	if s == nil || s.redis == nil || s.ttl == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey(boardID)).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(boardID), data, s.ttl)
			return nil
		})
		return err
	}, genKey(boardID))
	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		log.WithField("board_id", boardID).Debug("board snapshot outdated, not cached")
	default:
		log.WithError(err).WithField("board_id", boardID).Warn("board cache write failed")
	}
}

// Evict drops the snapshots of the given boards and bumps their
// generations, so snapshots read before the eviction are never stored.
func (s *Snapshots) Evict(ctx context.Context, boardIDs ...uint) {
	if s == nil || s.redis == nil || len(boardIDs) == 0 {
		return
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range boardIDs {
			pipe.Incr(ctx, genKey(id))
			pipe.Del(ctx, key(id))
		}
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("board_ids", boardIDs).Warn("board cache eviction failed")
	}
}
