package repository

import (
	"context"
	"errors"

	"github.com/openhrm/pulse/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepo is the repository for notification and push token operations
type NotificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates a new NotificationRepo
func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create creates a new notification
func (r *NotificationRepo) Create(ctx context.Context, tx *gorm.DB, n *entity.Notification) error {
	now := entity.NowUnixMilli()
	n.CreatedAt = now
	n.UpdatedAt = now
	return tx.WithContext(ctx).Create(n).Error
}

// GetById gets a notification by Id
func (r *NotificationRepo) GetById(ctx context.Context, id int64) (*entity.Notification, error) {
	var n entity.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// ListByUser lists a user's notifications, newest first. unreadOnly narrows
// to unread rows. limit is capped at 100.
func (r *NotificationRepo) ListByUser(ctx context.Context, userId string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Where("user_id = ?", userId)
	if unreadOnly {
		q = q.Where("`read` = ?", false)
	}

	var notifications []*entity.Notification
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepo) CountUnread(ctx context.Context, userId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("user_id = ? AND `read` = ?", userId, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips one notification to read. The user filter keeps the flip
// owner-only; the read filter keeps it idempotent. Returns whether the row
// changed.
func (r *NotificationRepo) MarkRead(ctx context.Context, id int64, userId string, at int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ? AND user_id = ? AND `read` = ?", id, userId, false).
		Updates(map[string]interface{}{
			"read":       true,
			"read_at":    at,
			"updated_at": entity.NowUnixMilli(),
		})
	return res.RowsAffected > 0, res.Error
}

// MarkAllRead flips all of a user's unread notifications, returning how many
// rows changed
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userId string, at int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("user_id = ? AND `read` = ?", userId, false).
		Updates(map[string]interface{}{
			"read":       true,
			"read_at":    at,
			"updated_at": entity.NowUnixMilli(),
		})
	return res.RowsAffected, res.Error
}

// Delete removes a notification owned by userId. Returns whether a row was
// removed.
func (r *NotificationRepo) Delete(ctx context.Context, id int64, userId string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&entity.Notification{})
	return res.RowsAffected > 0, res.Error
}

// UpsertPushToken registers a device token, replacing any previous token for
// the same (user, platform)
func (r *NotificationRepo) UpsertPushToken(ctx context.Context, token *entity.PushToken) error {
	now := entity.NowUnixMilli()
	token.CreatedAt = now
	token.UpdatedAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"token":      token.Token,
			"updated_at": now,
		}),
	}).Create(token).Error
}

// GetPushTokens returns all registered device tokens for a user
func (r *NotificationRepo) GetPushTokens(ctx context.Context, userId string) ([]*entity.PushToken, error) {
	var tokens []*entity.PushToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userId).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
