package sdk

import (
	"context"
	"strings"
)

// GetSelf returns the caller's own user info
func (c *Client) GetSelf(ctx context.Context) (*UserInfo, error) {
	var result UserInfo
	if err := c.get(ctx, "/user/info", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUser returns another user's public info
func (c *Client) GetUser(ctx context.Context, userId string) (*UserInfo, error) {
	var result UserInfo
	if err := c.get(ctx, "/user/info/"+userId, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUsers returns public info for a batch of users
func (c *Client) GetUsers(ctx context.Context, userIds []string) ([]*UserInfo, error) {
	params := map[string]string{"ids": strings.Join(userIds, ",")}
	var result struct {
		Users []*UserInfo `json:"users"`
	}
	if err := c.get(ctx, "/user/batch", params, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

// UpdateUser updates the caller's profile fields
func (c *Client) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*UserInfo, error) {
	var result UserInfo
	if err := c.put(ctx, "/user/update", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChangePassword changes the caller's password
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.put(ctx, "/user/password", &ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, nil)
}
