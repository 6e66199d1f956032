package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/openhrm/pulse/internal/middleware"
	"github.com/openhrm/pulse/internal/service"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/response"
)

// ConversationHandler handles conversation-related requests
type ConversationHandler struct {
	convService *service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(convService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convService: convService}
}

// MarkReadRequest represents mark conversation read request
type MarkReadRequest struct {
	ConversationId string `json:"conversation_id"`
}

// MarkRead handles mark conversation read
func (h *ConversationHandler) MarkRead(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req MarkReadRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}
	if req.ConversationId == "" {
		response.Invalid(ctx, c, "conversation_id")
		return
	}

	info, err := h.convService.MarkConversationRead(ctx, userId, req.ConversationId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, info)
}

// UnreadCount handles per-conversation unread count request
func (h *ConversationHandler) UnreadCount(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	conversationId := c.Query("conversation_id")
	if conversationId == "" {
		response.Invalid(ctx, c, "conversation_id")
		return
	}

	info, err := h.convService.GetUnreadCount(ctx, userId, conversationId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, info)
}

// UnreadTotal handles the badge total request
func (h *ConversationHandler) UnreadTotal(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	total, err := h.convService.GetUnreadTotal(ctx, userId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, total)
}

// Participants handles conversation participant list request
func (h *ConversationHandler) Participants(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	conversationId := c.Param("id")
	if conversationId == "" {
		response.Invalid(ctx, c, "id")
		return
	}

	participants, err := h.convService.GetParticipants(ctx, userId, conversationId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"participants": participants,
	})
}

// CreateGroup handles group conversation creation
func (h *ConversationHandler) CreateGroup(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req service.CreateGroupRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}

	conv, err := h.convService.CreateGroup(ctx, userId, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, conv)
}
