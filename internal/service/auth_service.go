package service

import (
	"context"

	"github.com/mbeoliero/kit/log"
	"github.com/openhrm/pulse/common"
	"github.com/openhrm/pulse/internal/config"
	"github.com/openhrm/pulse/internal/entity"
	"github.com/openhrm/pulse/internal/repository"
	"github.com/openhrm/pulse/pkg/constant"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication logic
type AuthService struct {
	userRepo   *repository.UserRepo
	cfg        *config.Config
	tokenStore *jwt.TokenStore
}

// NewAuthService creates a new AuthService
func NewAuthService(cfg *config.Config, repos *repository.Repositories) *AuthService {
	return &AuthService{
		userRepo:   repos.User,
		cfg:        cfg,
		tokenStore: jwt.NewTokenStore(repos.Redis, cfg.JWT.ExpireHours),
	}
}

// RegisterRequest represents user registration request
type RegisterRequest struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	UserId     string `json:"user_id"`
	Password   string `json:"password"`
	PlatformId int    `json:"platform_id"`
}

// LoginResponse represents user login response
type LoginResponse struct {
	Token    string           `json:"token"`
	UserInfo *entity.UserInfo `json:"user_info"`
}

// Register registers a new user
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.UserInfo, error) {
	if req.UserId == "" {
		return nil, errcode.ErrInvalidParam.WithFields("user_id")
	}
	if req.Password == "" {
		return nil, errcode.ErrInvalidParam.WithFields("password")
	}

	exists, err := s.userRepo.Exists(ctx, req.UserId)
	if err != nil {
		log.CtxError(ctx, "check user exists failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if exists {
		return nil, errcode.ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.CtxError(ctx, "hash password failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	role := req.Role
	if role == "" {
		role = constant.RoleEmployee
	}

	user := &entity.User{
		Id:       req.UserId,
		Nickname: req.Nickname,
		Password: string(hashedPassword),
		Avatar:   req.Avatar,
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		log.CtxError(ctx, "create user failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	log.CtxInfo(ctx, "user registered: user_id=%s", req.UserId)
	return user.ToUserInfo(), nil
}

// ProvisionEmployee creates the chat account for an HR employee with the
// derived initial password. Provisioning twice returns the existing account.
func (s *AuthService) ProvisionEmployee(ctx context.Context, employeeId int64, nickname string) (*entity.UserInfo, error) {
	if employeeId <= 0 {
		return nil, errcode.ErrInvalidParam.WithFields("employee_id")
	}

	userId := common.ChatUserId(employeeId)

	user, err := s.userRepo.GetById(ctx, userId)
	if err != nil {
		log.CtxError(ctx, "check provisioned user failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if user != nil {
		return user.ToUserInfo(), nil
	}

	return s.Register(ctx, &RegisterRequest{
		UserId:   userId,
		Nickname: nickname,
		Password: common.ProvisionPassword(userId, s.cfg.JWT.Secret),
		Role:     constant.RoleEmployee,
	})
}

// Login authenticates a user and returns a token
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.GetById(ctx, req.UserId)
	if err != nil {
		log.CtxError(ctx, "get user failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	if user == nil {
		return nil, errcode.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errcode.ErrPasswordWrong
	}

	token, err := jwt.GenerateToken(user.Id, user.Role, req.PlatformId, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		log.CtxError(ctx, "generate token failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	if err := s.tokenStore.StoreToken(ctx, user.Id, req.PlatformId, token); err != nil {
		log.CtxError(ctx, "store token failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	// Single device per platform: a new login replaces the old session
	kickedTokens, err := s.tokenStore.KickOtherTokens(ctx, user.Id, req.PlatformId, token)
	if err != nil {
		log.CtxWarn(ctx, "kick other tokens failed: %v", err)
	} else if len(kickedTokens) > 0 {
		log.CtxInfo(ctx, "kicked %d tokens for user_id=%s, platform_id=%d", len(kickedTokens), user.Id, req.PlatformId)
	}

	log.CtxInfo(ctx, "user logged in: user_id=%s, platform_id=%d", user.Id, req.PlatformId)
	return &LoginResponse{
		Token:    token,
		UserInfo: user.ToUserInfo(),
	}, nil
}

// ValidateToken validates a token and returns claims
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := jwt.ParseToken(token, s.cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	valid, err := s.tokenStore.IsTokenValid(ctx, claims.UserId, claims.PlatformId, token)
	if err != nil {
		log.CtxWarn(ctx, "check token status failed: %v", err)
		// Fall back to JWT validation only if Redis check fails
		return claims, nil
	}
	if !valid {
		return nil, errcode.ErrTokenInvalid
	}

	return claims, nil
}

// ValidateTokenWithUser validates token and checks if user matches
func (s *AuthService) ValidateTokenWithUser(ctx context.Context, token, userId string, platformId int) (*jwt.Claims, error) {
	claims, err := jwt.ValidateToken(token, s.cfg.JWT.Secret, userId, platformId)
	if err != nil {
		return nil, err
	}

	valid, err := s.tokenStore.IsTokenValid(ctx, claims.UserId, claims.PlatformId, token)
	if err != nil {
		log.CtxWarn(ctx, "check token status failed: %v", err)
		return claims, nil
	}
	if !valid {
		return nil, errcode.ErrTokenInvalid
	}

	return claims, nil
}

// Logout invalidates a user's token
func (s *AuthService) Logout(ctx context.Context, userId string, platformId int, token string) error {
	if err := s.tokenStore.InvalidateToken(ctx, userId, platformId, token); err != nil {
		log.CtxError(ctx, "invalidate token failed: %v", err)
		return errcode.ErrInternalServer
	}
	log.CtxInfo(ctx, "user logged out: user_id=%s, platform_id=%d", userId, platformId)
	return nil
}

// ForceLogout invalidates all of a user's tokens across platforms
func (s *AuthService) ForceLogout(ctx context.Context, userId string) error {
	if err := s.tokenStore.ForceLogoutUser(ctx, userId); err != nil {
		log.CtxError(ctx, "force logout failed: %v", err)
		return errcode.ErrInternalServer
	}
	log.CtxInfo(ctx, "user force logged out: user_id=%s", userId)
	return nil
}
