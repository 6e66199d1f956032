package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/pkg/constant"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// UserRepo is the repository for user operations
type UserRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewUserRepo creates a new UserRepo
func NewUserRepo(db *gorm.DB, rdb *redis.Client) *UserRepo {
	return &UserRepo{db: db, rdb: rdb}
}

// Create creates a new user
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetById gets user by Id
func (r *UserRepo) GetById(ctx context.Context, userId string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", userId).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIds gets users by Id list
func (r *UserRepo) GetByIds(ctx context.Context, userIds []string) ([]*entity.User, error) {
	if len(userIds) == 0 {
		return nil, nil
	}

	var users []*entity.User
	err := r.db.WithContext(ctx).Where("id IN ?", userIds).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateInfo updates user's profile fields
func (r *UserRepo) UpdateInfo(ctx context.Context, userId string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userId).
		Updates(updates).Error
}

// UpdatePassword updates user's password hash
func (r *UserRepo) UpdatePassword(ctx context.Context, userId, hashed string) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userId).
		Update("password", hashed).Error
}

// Exists checks whether a user id is taken
func (r *UserRepo) Exists(ctx context.Context, userId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userId).
		Count(&count).Error
	return count > 0, err
}

// GetNicknames resolves user ids to display names, keeping input order.
// Unknown ids fall back to the raw id.
func (r *UserRepo) GetNicknames(ctx context.Context, userIds []string) ([]string, error) {
	users, err := r.GetByIds(ctx, userIds)
	if err != nil {
		return nil, err
	}

	byId := make(map[string]string, len(users))
	for _, u := range users {
		byId[u.Id] = u.Nickname
	}

	names := make([]string, 0, len(userIds))
	for _, id := range userIds {
		if name, ok := byId[id]; ok && name != "" {
			names = append(names, name)
		} else {
			names = append(names, id)
		}
	}
	return names, nil
}

// SetOnline marks a platform of a user online in Redis
func (r *UserRepo) SetOnline(ctx context.Context, userId string, platformId int) error {
	key := fmt.Sprintf(constant.RedisKeyOnline(), userId)
	return r.rdb.HSet(ctx, key, fmt.Sprintf("%d", platformId), entity.NowUnixMilli()).Err()
}

// SetOffline removes a platform of a user from the online hash
func (r *UserRepo) SetOffline(ctx context.Context, userId string, platformId int) error {
	key := fmt.Sprintf(constant.RedisKeyOnline(), userId)
	return r.rdb.HDel(ctx, key, fmt.Sprintf("%d", platformId)).Err()
}

// IsOnline reports whether the user has any online platform
func (r *UserRepo) IsOnline(ctx context.Context, userId string) (bool, error) {
	key := fmt.Sprintf(constant.RedisKeyOnline(), userId)
	count, err := r.rdb.HLen(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
