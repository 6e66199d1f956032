package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/openhrm/pulse/internal/middleware"
	"github.com/openhrm/pulse/internal/service"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/response"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	notifService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

// Create handles notification creation. Guarded to HR/admin by the router.
func (h *NotificationHandler) Create(ctx context.Context, c *app.RequestContext) {
	var req service.CreateNotificationRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}

	n, err := h.notifService.Create(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, n)
}

// List handles notification list request
func (h *NotificationHandler) List(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	unreadOnly := c.Query("unread_only") == "true"

	notifications, err := h.notifService.List(ctx, userId, &service.ListRequest{
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"notifications": notifications,
	})
}

// UnreadCount handles unread notification count request
func (h *NotificationHandler) UnreadCount(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	count, err := h.notifService.UnreadCount(ctx, userId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"count": count,
	})
}

func notifIdParam(c *app.RequestContext) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// MarkRead handles marking one notification read
func (h *NotificationHandler) MarkRead(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	id, ok := notifIdParam(c)
	if !ok {
		response.Invalid(ctx, c, "id")
		return
	}

	n, err := h.notifService.MarkRead(ctx, userId, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, n)
}

// ReadAll handles marking all notifications read
func (h *NotificationHandler) ReadAll(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	changed, err := h.notifService.MarkAllRead(ctx, userId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"changed": changed,
	})
}

// Delete handles notification removal
func (h *NotificationHandler) Delete(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	id, ok := notifIdParam(c)
	if !ok {
		response.Invalid(ctx, c, "id")
		return
	}

	if err := h.notifService.Delete(ctx, userId, id); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// PushTokenRequest represents a device token registration
type PushTokenRequest struct {
	PlatformId int    `json:"platform_id"`
	Token      string `json:"token"`
}

// PushToken handles device push token registration
func (h *NotificationHandler) PushToken(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req PushTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}

	if err := h.notifService.RegisterPushToken(ctx, userId, req.PlatformId, req.Token); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}
