package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/openhrm/pulse/internal/middleware"
	"github.com/openhrm/pulse/internal/service"
	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/openhrm/pulse/pkg/response"
)

// TypingHandler handles typing-status requests
type TypingHandler struct {
	typingService *service.TypingService
}

// NewTypingHandler creates a new TypingHandler
func NewTypingHandler(typingService *service.TypingService) *TypingHandler {
	return &TypingHandler{typingService: typingService}
}

// TypingRequest represents a typing start/stop request
type TypingRequest struct {
	ConversationId string `json:"conversation_id"`
}

// Start handles typing start. Clients call it repeatedly while the user
// types; each call refreshes the record's expiry.
func (h *TypingHandler) Start(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req TypingRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}
	if req.ConversationId == "" {
		response.Invalid(ctx, c, "conversation_id")
		return
	}

	status, err := h.typingService.Start(ctx, userId, req.ConversationId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, status)
}

// Stop handles typing stop
func (h *TypingHandler) Stop(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req TypingRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}
	if req.ConversationId == "" {
		response.Invalid(ctx, c, "conversation_id")
		return
	}

	if err := h.typingService.Stop(ctx, userId, req.ConversationId); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, nil)
}

// List handles the typing channel read: who is typing right now
func (h *TypingHandler) List(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	conversationId := c.Param("conversation_id")
	if conversationId == "" {
		response.Invalid(ctx, c, "conversation_id")
		return
	}

	list, err := h.typingService.List(ctx, userId, conversationId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, list)
}
