package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/pkg/constant"
	"github.com/redis/go-redis/v9"
)

// TypingRepo stores ephemeral typing status in a Redis sorted set per
// conversation: member is the user id, score the expiry in unix millis.
// ZADD makes start idempotent (a refresh just moves the score forward) and
// listing prunes by score first, so the expiry is authoritative even when a
// stop was never sent.
type TypingRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTypingRepo creates a new TypingRepo
func NewTypingRepo(rdb *redis.Client, ttl time.Duration) *TypingRepo {
	if ttl <= 0 {
		ttl = constant.DefaultTypingTTL
	}
	return &TypingRepo{rdb: rdb, ttl: ttl}
}

// TTL returns the configured typing time-to-live
func (r *TypingRepo) TTL() time.Duration {
	return r.ttl
}

func typingKey(conversationId string) string {
	return fmt.Sprintf(constant.RedisKeyTyping(), conversationId)
}

// Start records that userId is typing, refreshing the expiry if already
// present. Returns the status with its new expiry.
func (r *TypingRepo) Start(ctx context.Context, conversationId, userId string) (*entity.TypingStatus, error) {
	now := entity.NowUnixMilli()
	expiresAt := now + r.ttl.Milliseconds()

	key := typingKey(conversationId)
	err := r.rdb.ZAdd(ctx, key, redis.Z{Score: float64(expiresAt), Member: userId}).Err()
	if err != nil {
		return nil, err
	}
	// Key-level expiry is a floor-sweep only; per-member scores decide
	// visibility.
	r.rdb.Expire(ctx, key, 2*r.ttl)

	return &entity.TypingStatus{
		ConversationId: conversationId,
		UserId:         userId,
		StartedAt:      now,
		ExpiresAt:      expiresAt,
	}, nil
}

// Stop removes userId's typing record. Removing an absent record is a no-op.
func (r *TypingRepo) Stop(ctx context.Context, conversationId, userId string) error {
	return r.rdb.ZRem(ctx, typingKey(conversationId), userId).Err()
}

// List returns the currently active typists, pruning expired members first
func (r *TypingRepo) List(ctx context.Context, conversationId string) ([]*entity.TypingStatus, error) {
	now := entity.NowUnixMilli()
	key := typingKey(conversationId)

	// Prune everything strictly before now, then read what remains. A record
	// exactly at its expiry is still active.
	if err := r.rdb.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(now, 10)).Err(); err != nil {
		return nil, err
	}

	members, err := r.rdb.ZRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	statuses := make([]*entity.TypingStatus, 0, len(members))
	for _, m := range members {
		userId, ok := m.Member.(string)
		if !ok {
			continue
		}
		expiresAt := int64(m.Score)
		statuses = append(statuses, &entity.TypingStatus{
			ConversationId: conversationId,
			UserId:         userId,
			StartedAt:      expiresAt - r.ttl.Milliseconds(),
			ExpiresAt:      expiresAt,
		})
	}
	return statuses, nil
}

// IsTyping reports whether userId has an unexpired typing record
func (r *TypingRepo) IsTyping(ctx context.Context, conversationId, userId string) (bool, error) {
	score, err := r.rdb.ZScore(ctx, typingKey(conversationId), userId).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return int64(score) >= entity.NowUnixMilli(), nil
}
