package handler

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/openhrm/pulse/internal/middleware"
	"github.com/openhrm/pulse/internal/service"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/response"
)

// UserHandler handles user profile requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetSelf handles the caller's own profile request
func (h *UserHandler) GetSelf(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	info, err := h.userService.GetUserInfo(ctx, userId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, info)
}

// GetUser handles another user's profile request
func (h *UserHandler) GetUser(ctx context.Context, c *app.RequestContext) {
	targetId := c.Param("id")
	if targetId == "" {
		response.Invalid(ctx, c, "id")
		return
	}

	info, err := h.userService.GetUserInfo(ctx, targetId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, info)
}

// GetUsers handles a batch profile request: ?ids=a,b,c
func (h *UserHandler) GetUsers(ctx context.Context, c *app.RequestContext) {
	idsParam := c.Query("ids")
	if idsParam == "" {
		response.Invalid(ctx, c, "ids")
		return
	}

	ids := strings.Split(idsParam, ",")
	infos, err := h.userService.GetUserInfos(ctx, ids)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"users": infos,
	})
}

// UpdateInfo handles the caller's profile update
func (h *UserHandler) UpdateInfo(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req service.UpdateInfoRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}

	info, err := h.userService.UpdateInfo(ctx, userId, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, info)
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword handles the caller's password change
func (h *UserHandler) ChangePassword(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}
	if req.NewPassword == "" {
		response.Invalid(ctx, c, "new_password")
		return
	}

	if err := h.userService.ChangePassword(ctx, userId, req.OldPassword, req.NewPassword); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}
