package sdk

import (
	"context"
	"strconv"
)

// CreateNotification creates a notification for a user. Requires an HR or
// admin token.
func (c *Client) CreateNotification(ctx context.Context, req *CreateNotificationRequest) (*NotificationInfo, error) {
	var result NotificationInfo
	if err := c.post(ctx, "/notification/create", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListNotifications pages through the caller's notifications, newest first
func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool, limit, offset int) ([]*NotificationInfo, error) {
	params := map[string]string{}
	if unreadOnly {
		params["unread_only"] = "true"
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if offset > 0 {
		params["offset"] = strconv.Itoa(offset)
	}

	var result NotificationListResponse
	if err := c.get(ctx, "/notification/list", params, &result); err != nil {
		return nil, err
	}
	return result.Notifications, nil
}

// NotificationUnreadCount returns the caller's unread notification count
func (c *Client) NotificationUnreadCount(ctx context.Context) (int64, error) {
	var result struct {
		Count int64 `json:"count"`
	}
	if err := c.get(ctx, "/notification/unread_count", nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// MarkNotificationRead marks one notification read
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) (*NotificationInfo, error) {
	var result NotificationInfo
	if err := c.post(ctx, "/notification/"+strconv.FormatInt(id, 10)+"/read", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkAllNotificationsRead marks every unread notification read and returns
// how many changed
func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var result struct {
		Changed int64 `json:"changed"`
	}
	if err := c.post(ctx, "/notification/read_all", nil, &result); err != nil {
		return 0, err
	}
	return result.Changed, nil
}

// DeleteNotification removes one of the caller's notifications
func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	return c.delete(ctx, "/notification/"+strconv.FormatInt(id, 10), nil)
}

// RegisterPushToken registers a device push token for the caller
func (c *Client) RegisterPushToken(ctx context.Context, platformId int, token string) error {
	return c.post(ctx, "/notification/push_token", &PushTokenRequest{
		PlatformId: platformId,
		Token:      token,
	}, nil)
}
