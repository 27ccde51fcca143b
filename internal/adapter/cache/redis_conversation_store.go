package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/darkangel00016/Voice-Ordering2/internal/entity"
	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

// RedisConversationStore keeps session state in redis for the lifetime of the
// conversation. Each Save resets the TTL, so a session stays alive while the
// customer keeps talking and expires on its own afterwards. There is no
// long-term order history here; that is deliberately out of scope.
type RedisConversationStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisConversationStore(rdb *redis.Client, ttl time.Duration) *RedisConversationStore {
	return &RedisConversationStore{rdb: rdb, ttl: ttl}
}

func key(id string) string { return "conv:" + id }

func (s *RedisConversationStore) Save(ctx context.Context, state domain.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	return s.rdb.Set(ctx, key(state.ID), b, s.ttl).Err()
}

func (s *RedisConversationStore) Load(ctx context.Context, id string) (domain.ConversationState, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return domain.ConversationState{}, usecase.ErrConversationNotFound
	}
	if err != nil {
		return domain.ConversationState{}, err
	}
	var state domain.ConversationState
	if err := json.Unmarshal(b, &state); err != nil {
		return domain.ConversationState{}, fmt.Errorf("unmarshal conversation: %w", err)
	}
	return state, nil
}

var _ usecase.ConversationStore = (*RedisConversationStore)(nil)
