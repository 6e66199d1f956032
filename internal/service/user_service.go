package service

import (
	"context"

	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/internal/repository"
	"github.com/openhrm/pulse/pkg/errcode"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles user profile logic
type UserService struct {
	userRepo *repository.UserRepo
}

// NewUserService creates a new UserService
func NewUserService(repos *repository.Repositories) *UserService {
	return &UserService{userRepo: repos.User}
}

// GetUserInfo gets a user's public profile
func (s *UserService) GetUserInfo(ctx context.Context, userId string) (*entity.UserInfo, error) {
	user, err := s.userRepo.GetById(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "get user failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if user == nil {
		return nil, errcode.ErrUserNotFound
	}
	return user.ToUserInfo(), nil
}

// GetUserInfos gets multiple users' public profiles
func (s *UserService) GetUserInfos(ctx context.Context, userIds []string) ([]*entity.UserInfo, error) {
	users, err := s.userRepo.GetByIds(ctx, userIds)
	if err != nil {
		log.CtxError(ctx, "get users failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	infos := make([]*entity.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, u.ToUserInfo())
	}
	return infos, nil
}

// UpdateInfoRequest represents user profile update request
type UpdateInfoRequest struct {
	Nickname *string `json:"nickname,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Extra    *string `json:"extra,omitempty"`
}

// UpdateInfo updates the caller's own profile fields
func (s *UserService) UpdateInfo(ctx context.Context, userId string, req *UpdateInfoRequest) (*entity.UserInfo, error) {
	updates := make(map[string]interface{})
	if req.Nickname != nil {
		updates["nickname"] = *req.Nickname
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Extra != nil {
		updates["extra"] = *req.Extra
	}
	if len(updates) == 0 {
		return nil, errcode.ErrInvalidParam.WithFields("nickname", "avatar", "extra")
	}

	if err := s.userRepo.UpdateInfo(ctx, userId, updates); err != nil {
		log.CtxError(ctx, "update user info failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	return s.GetUserInfo(ctx, userId)
}

// ChangePassword verifies the old password and stores the new hash
func (s *UserService) ChangePassword(ctx context.Context, userId, oldPassword, newPassword string) error {
	if newPassword == "" {
		return errcode.ErrInvalidParam.WithFields("new_password")
	}

	user, err := s.userRepo.GetById(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "get user failed: %v", err)
		return errcode.ErrInternalServer
	}
	if user == nil {
		return errcode.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return errcode.ErrPasswordWrong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.CtxError(ctx, "hash password failed: %v", err)
		return errcode.ErrInternalServer
	}

	if err := s.userRepo.UpdatePassword(ctx, userId, string(hashed)); err != nil {
		log.CtxError(ctx, "update password failed: %v", err)
		return errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "password changed: user_id=%s", userId)
	return nil
}
