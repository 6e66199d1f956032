package sdk

import (
	"context"
	"strconv"
)

// SendMessage sends a message to a user or an existing group conversation
func (c *Client) SendMessage(ctx context.Context, req *SendMessageRequest) (*MessageInfo, error) {
	var result MessageInfo
	if err := c.post(ctx, "/msg/send", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendTextMessage is a convenience method to send a text message to a single user
func (c *Client) SendTextMessage(ctx context.Context, clientMsgId, recvId, text string) (*MessageInfo, error) {
	return c.SendMessage(ctx, &SendMessageRequest{
		ClientMsgId: clientMsgId,
		RecvId:      recvId,
		MsgType:     MsgTypeText,
		Body:        text,
	})
}

// SendGroupTextMessage is a convenience method to send a text message to a group conversation
func (c *Client) SendGroupTextMessage(ctx context.Context, clientMsgId, conversationId, text string) (*MessageInfo, error) {
	return c.SendMessage(ctx, &SendMessageRequest{
		ClientMsgId:    clientMsgId,
		ConversationId: conversationId,
		MsgType:        MsgTypeText,
		Body:           text,
	})
}

// MarkDelivered acknowledges delivery of a message to this client
func (c *Client) MarkDelivered(ctx context.Context, msgId int64) (*MessageInfo, error) {
	var result MessageInfo
	if err := c.post(ctx, "/msg/"+strconv.FormatInt(msgId, 10)+"/delivered", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkMessageRead marks a single message read
func (c *Client) MarkMessageRead(ctx context.Context, msgId int64) (*MessageInfo, error) {
	var result MessageInfo
	if err := c.post(ctx, "/msg/"+strconv.FormatInt(msgId, 10)+"/read", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EditMessage replaces a message's body. Only the sender may edit.
func (c *Client) EditMessage(ctx context.Context, msgId int64, body string) (*MessageInfo, error) {
	var result MessageInfo
	if err := c.put(ctx, "/msg/"+strconv.FormatInt(msgId, 10)+"/edit", &EditMessageRequest{Body: body}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// History pages through a conversation's messages, newest first
func (c *Client) History(ctx context.Context, conversationId string, limit, offset int) (*HistoryResponse, error) {
	params := map[string]string{
		"conversation_id": conversationId,
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if offset > 0 {
		params["offset"] = strconv.Itoa(offset)
	}

	var result HistoryResponse
	if err := c.get(ctx, "/msg/history", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Receipt returns the delivery/read receipt for one message
func (c *Client) Receipt(ctx context.Context, msgId int64) (*ReadReceipt, error) {
	var result ReadReceipt
	if err := c.get(ctx, "/msg/"+strconv.FormatInt(msgId, 10)+"/receipt", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
