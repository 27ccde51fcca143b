package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

// RedisTurnLock serializes turns per conversation with SETNX. The engine
// assumes single-writer-at-a-time per conversation; the HTTP layer takes this
// lock around each turn and rejects concurrent ones. The TTL bounds how long
// a crashed turn can wedge its conversation.
type RedisTurnLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTurnLock(rdb *redis.Client, ttl time.Duration) *RedisTurnLock {
	return &RedisTurnLock{rdb: rdb, ttl: ttl}
}

func (l *RedisTurnLock) TryLock(ctx context.Context, conversationID string) (bool, error) {
	return l.rdb.SetNX(ctx, "turnlock:"+conversationID, "1", l.ttl).Result()
}

func (l *RedisTurnLock) Unlock(ctx context.Context, conversationID string) error {
	return l.rdb.Del(ctx, "turnlock:"+conversationID).Err()
}

var _ usecase.TurnLock = (*RedisTurnLock)(nil)
