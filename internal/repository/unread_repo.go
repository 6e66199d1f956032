package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/pkg/constant"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnreadRepo maintains per-user, per-conversation unread counters. The Redis
// key is authoritative: INCR keeps increments atomic under concurrent sends.
// A MySQL mirror row enumerates a user's conversations and backs cold reads
// after a Redis flush; reads prefer the Redis value wherever the key exists.
type UnreadRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewUnreadRepo creates a new UnreadRepo
func NewUnreadRepo(db *gorm.DB, rdb *redis.Client) *UnreadRepo {
	return &UnreadRepo{db: db, rdb: rdb}
}

func unreadKey(userId, conversationId string) string {
	return fmt.Sprintf(constant.RedisKeyUnread(), userId, conversationId)
}

// Increment bumps the counter by one and returns the new value
func (r *UnreadRepo) Increment(ctx context.Context, userId, conversationId string) (int64, error) {
	count, err := r.rdb.Incr(ctx, unreadKey(userId, conversationId)).Result()
	if err != nil {
		return 0, err
	}

	if err := r.mirror(ctx, r.db, userId, conversationId, count, 0); err != nil {
		return 0, err
	}
	return count, nil
}

// Reset zeroes the counter and stamps last_read_at. Only the explicit
// mark-conversation-read path calls this: reading history never does.
func (r *UnreadRepo) Reset(ctx context.Context, tx *gorm.DB, userId, conversationId string, readAt int64) error {
	if err := r.rdb.Set(ctx, unreadKey(userId, conversationId), 0, 0).Err(); err != nil {
		return err
	}
	return r.mirror(ctx, tx, userId, conversationId, 0, readAt)
}

// Get returns the unread count for one conversation, falling back to the
// MySQL mirror when the Redis key is gone and restoring it.
func (r *UnreadRepo) Get(ctx context.Context, userId, conversationId string) (int64, error) {
	key := unreadKey(userId, conversationId)
	count, err := r.rdb.Get(ctx, key).Int64()
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, redis.Nil) {
		return 0, err
	}

	var counter entity.UnreadCounter
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userId, conversationId).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	r.rdb.Set(ctx, key, counter.Count, 0)

	return counter.Count, nil
}

// GetCounter returns the mirror row, or nil when the user never had unread
// state for the conversation
func (r *UnreadRepo) GetCounter(ctx context.Context, userId, conversationId string) (*entity.UnreadCounter, error) {
	var counter entity.UnreadCounter
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userId, conversationId).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}

// GetTotal sums unread counts across all of a user's conversations
func (r *UnreadRepo) GetTotal(ctx context.Context, userId string) (int64, error) {
	counters, err := r.ListByUser(ctx, userId)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, c := range counters {
		total += c.Count
	}
	return total, nil
}

// ListByUser returns the user's non-zero counters. The mirror rows only
// enumerate the conversations; the counts themselves come from the Redis
// keys, so an increment's mirror write landing after a concurrent reset's
// cannot surface a stale pre-reset value here. The mirror count stands in
// only when its Redis key is gone.
func (r *UnreadRepo) ListByUser(ctx context.Context, userId string) ([]*entity.UnreadCounter, error) {
	var counters []*entity.UnreadCounter
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Find(&counters).Error
	if err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return counters, nil
	}

	keys := make([]string, len(counters))
	for i, c := range counters {
		keys[i] = unreadKey(userId, c.ConversationId)
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err == nil && len(vals) == len(counters) {
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if n, perr := strconv.ParseInt(s, 10, 64); perr == nil {
				counters[i].Count = n
			}
		}
	}

	nonZero := make([]*entity.UnreadCounter, 0, len(counters))
	for _, c := range counters {
		if c.Count > 0 {
			nonZero = append(nonZero, c)
		}
	}
	return nonZero, nil
}

// mirror upserts the MySQL mirror row. readAt of 0 keeps the previous
// last_read_at.
func (r *UnreadRepo) mirror(ctx context.Context, tx *gorm.DB, userId, conversationId string, count, readAt int64) error {
	counter := &entity.UnreadCounter{
		UserId:         userId,
		ConversationId: conversationId,
		Count:          count,
		LastReadAt:     readAt,
		UpdatedAt:      entity.NowUnixMilli(),
	}

	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "conversation_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":        count,
			"last_read_at": gorm.Expr("GREATEST(last_read_at, ?)", readAt),
			"updated_at":   counter.UpdatedAt,
		}),
	}).Create(counter).Error
}
