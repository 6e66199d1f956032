package repository

import (
	"context"
	"errors"

	"github.com/openhrm/pulse/internal/entity"
	"gorm.io/gorm"
)

// MessageRepo is the repository for message operations
type MessageRepo struct {
	db *gorm.DB
}

// NewMessageRepo creates a new MessageRepo
func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create creates a new message. sent_at is stamped here: persistence is the
// server acknowledgement.
func (r *MessageRepo) Create(ctx context.Context, tx *gorm.DB, msg *entity.Message) error {
	now := entity.NowUnixMilli()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if msg.SentAt == nil {
		msg.SentAt = &now
	}
	return tx.WithContext(ctx).Create(msg).Error
}

// GetById gets a message by Id
func (r *MessageRepo) GetById(ctx context.Context, id int64) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetByClientMsgId gets message by sender_id and client_msg_id (for idempotency check)
func (r *MessageRepo) GetByClientMsgId(ctx context.Context, senderId, clientMsgId string) (*entity.Message, error) {
	var msg entity.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND client_msg_id = ?", senderId, clientMsgId).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// History pulls messages in a conversation, newest first, limit/offset paged.
// limit is capped at 100.
func (r *MessageRepo) History(ctx context.Context, conversationId string, limit, offset int) ([]*entity.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CountByConversation counts all messages in a conversation
func (r *MessageRepo) CountByConversation(ctx context.Context, conversationId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ?", conversationId).
		Count(&count).Error
	return count, err
}

// MarkDelivered stamps delivered_at once. The IS NULL guard keeps the
// transition forward-only: re-acknowledging never moves the timestamp.
// Returns whether the row changed.
func (r *MessageRepo) MarkDelivered(ctx context.Context, id int64, at int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id = ? AND delivered_at IS NULL", id).
		Updates(map[string]interface{}{
			"delivered_at": at,
			"updated_at":   entity.NowUnixMilli(),
		})
	return res.RowsAffected > 0, res.Error
}

// MarkRead stamps read_at once, backfilling delivered_at if the delivered
// acknowledgement never arrived. A read message is necessarily delivered.
func (r *MessageRepo) MarkRead(ctx context.Context, id int64, at int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id = ? AND read_at IS NULL", id).
		Updates(map[string]interface{}{
			"read_at":      at,
			"delivered_at": gorm.Expr("COALESCE(delivered_at, ?)", at),
			"updated_at":   entity.NowUnixMilli(),
		})
	return res.RowsAffected > 0, res.Error
}

// MarkConversationRead stamps read_at on every unread message in the
// conversation not sent by readerId, returning the ids it changed so the
// caller can fan out update events.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, tx *gorm.DB, conversationId, readerId string, at int64) ([]int64, error) {
	var ids []int64
	err := tx.WithContext(ctx).
		Model(&entity.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationId, readerId).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = tx.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id IN ? AND read_at IS NULL", ids).
		Updates(map[string]interface{}{
			"read_at":      at,
			"delivered_at": gorm.Expr("COALESCE(delivered_at, ?)", at),
			"updated_at":   entity.NowUnixMilli(),
		}).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// MarkEdited updates the body and stamps edited_at
func (r *MessageRepo) MarkEdited(ctx context.Context, id int64, body string, at int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"body":       body,
			"edited_at":  at,
			"updated_at": entity.NowUnixMilli(),
		}).Error
}

// GetByIds pulls messages by id list
func (r *MessageRepo) GetByIds(ctx context.Context, ids []int64) ([]*entity.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
