package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/openhrm/pulse/internal/middleware"
	"github.com/openhrm/pulse/internal/service"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/response"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
func (h *AuthHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req service.RegisterRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}
	if req.UserId == "" || req.Password == "" {
		response.Invalid(ctx, c, "user_id", "password")
		return
	}

	info, err := h.authService.Register(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, info)
}

// Login handles user login
func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req service.LoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}
	if req.UserId == "" || req.Password == "" {
		response.Invalid(ctx, c, "user_id", "password")
		return
	}

	resp, err := h.authService.Login(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, resp)
}

// Logout handles user logout
func (h *AuthHandler) Logout(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	err := h.authService.Logout(ctx, userId, middleware.GetPlatformId(c), middleware.GetToken(c))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// ProvisionRequest represents the employee provisioning request
type ProvisionRequest struct {
	EmployeeId int64  `json:"employee_id"`
	Nickname   string `json:"nickname"`
}

// Provision creates the chat account for an HR employee. HR/admin only.
func (h *AuthHandler) Provision(ctx context.Context, c *app.RequestContext) {
	var req ProvisionRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}
	if req.EmployeeId <= 0 {
		response.Invalid(ctx, c, "employee_id")
		return
	}

	info, err := h.authService.ProvisionEmployee(ctx, req.EmployeeId, req.Nickname)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, info)
}
