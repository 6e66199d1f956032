package sdk

import "context"

// MarkConversationRead marks every unread message in the conversation read
// and resets the caller's unread counter. This is the only operation that
// resets the counter.
func (c *Client) MarkConversationRead(ctx context.Context, conversationId string) (*UnreadInfo, error) {
	var result UnreadInfo
	if err := c.post(ctx, "/conversation/mark_read", &MarkConversationReadRequest{
		ConversationId: conversationId,
	}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUnreadCount returns the caller's unread count for one conversation
func (c *Client) GetUnreadCount(ctx context.Context, conversationId string) (*UnreadInfo, error) {
	params := map[string]string{"conversation_id": conversationId}
	var result UnreadInfo
	if err := c.get(ctx, "/conversation/unread_count", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUnreadTotal returns the caller's badge total across all conversations
func (c *Client) GetUnreadTotal(ctx context.Context) (*UnreadTotal, error) {
	var result UnreadTotal
	if err := c.get(ctx, "/conversation/unread_total", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetParticipants returns the participant list of a conversation
func (c *Client) GetParticipants(ctx context.Context, conversationId string) ([]*ParticipantInfo, error) {
	var result struct {
		Participants []*ParticipantInfo `json:"participants"`
	}
	if err := c.get(ctx, "/conversation/"+conversationId+"/participants", nil, &result); err != nil {
		return nil, err
	}
	return result.Participants, nil
}

// CreateGroup creates a group conversation with the caller as admin
func (c *Client) CreateGroup(ctx context.Context, title string, memberIds []string) (*ConversationInfo, error) {
	var result ConversationInfo
	if err := c.post(ctx, "/conversation/group", &CreateGroupRequest{
		Title:     title,
		MemberIds: memberIds,
	}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
