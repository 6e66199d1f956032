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

// MessageHandler handles message-related requests
type MessageHandler struct {
	msgService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(msgService *service.MessageService) *MessageHandler {
	return &MessageHandler{msgService: msgService}
}

// SendMessage handles send message request
func (h *MessageHandler) SendMessage(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	var req service.SendMessageRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}

	msg, err := h.msgService.SendMessage(ctx, userId, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msg.ToMessageInfo())
}

// msgIdParam extracts the :id path parameter
func msgIdParam(c *app.RequestContext) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// MarkDelivered handles the delivered acknowledgement
func (h *MessageHandler) MarkDelivered(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	msgId, ok := msgIdParam(c)
	if !ok {
		response.Invalid(ctx, c, "id")
		return
	}

	msg, err := h.msgService.MarkDelivered(ctx, userId, msgId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msg.ToMessageInfo())
}

// MarkRead handles the read acknowledgement
func (h *MessageHandler) MarkRead(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	msgId, ok := msgIdParam(c)
	if !ok {
		response.Invalid(ctx, c, "id")
		return
	}

	msg, err := h.msgService.MarkRead(ctx, userId, msgId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msg.ToMessageInfo())
}

// EditMessageRequest represents message edit request
type EditMessageRequest struct {
	Body string `json:"body"`
}

// EditMessage handles message body edit by its sender
func (h *MessageHandler) EditMessage(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	msgId, ok := msgIdParam(c)
	if !ok {
		response.Invalid(ctx, c, "id")
		return
	}

	var req EditMessageRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.Invalid(ctx, c)
		return
	}
	if req.Body == "" {
		response.Invalid(ctx, c, "body")
		return
	}

	msg, err := h.msgService.EditMessage(ctx, userId, msgId, req.Body)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, msg.ToMessageInfo())
}

// History handles message history request
func (h *MessageHandler) History(ctx context.Context, c *app.RequestContext) {
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

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	messages, total, err := h.msgService.History(ctx, userId, &service.HistoryRequest{
		ConversationId: conversationId,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"messages": messages,
		"total":    total,
	})
}

// Receipt handles read receipt request
func (h *MessageHandler) Receipt(ctx context.Context, c *app.RequestContext) {
	userId := middleware.GetUserId(c)
	if userId == "" {
		response.ErrorWithCode(ctx, c, errcode.ErrUnauthorized)
		return
	}

	msgId, ok := msgIdParam(c)
	if !ok {
		response.Invalid(ctx, c, "id")
		return
	}

	receipt, err := h.msgService.Receipt(ctx, userId, msgId)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, receipt)
}
