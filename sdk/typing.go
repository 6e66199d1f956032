package sdk

import "context"

// StartTyping reports that the caller started (or is still) typing in a
// conversation. Calling it again before the TTL elapses refreshes the
// status; a client that stops calling simply expires.
func (c *Client) StartTyping(ctx context.Context, conversationId string) (*TypingStatus, error) {
	var result TypingStatus
	if err := c.post(ctx, "/typing/start", &TypingRequest{ConversationId: conversationId}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StopTyping explicitly clears the caller's typing status
func (c *Client) StopTyping(ctx context.Context, conversationId string) error {
	return c.post(ctx, "/typing/stop", &TypingRequest{ConversationId: conversationId}, nil)
}

// GetTypists returns who is currently typing in a conversation, excluding
// the caller, with a ready-to-display caption
func (c *Client) GetTypists(ctx context.Context, conversationId string) (*TypingList, error) {
	var result TypingList
	if err := c.get(ctx, "/typing/"+conversationId, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
