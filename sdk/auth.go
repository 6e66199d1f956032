package sdk

import (
	"context"

	"github.com/openhrm/pulse/common"
)

// Register registers a new user
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*UserInfo, error) {
	var result UserInfo
	if err := c.post(ctx, "/auth/register", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login authenticates a user and returns a token.
// The token is automatically stored in the client for subsequent requests.
func (c *Client) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var result LoginResponse
	if err := c.post(ctx, "/auth/login", req, &result); err != nil {
		return nil, err
	}
	// Auto-set token for subsequent requests
	c.SetToken(result.Token)
	return &result, nil
}

// LoginWithUserId is a convenience method to login with user Id, password and platform Id
func (c *Client) LoginWithUserId(ctx context.Context, userId, password string, platformId int) (*LoginResponse, error) {
	return c.Login(ctx, &LoginRequest{
		UserId:     userId,
		Password:   password,
		PlatformId: platformId,
	})
}

// LoginAsEmployee logs in a provisioned employee account. The password is
// derived deterministically from the chat user id and the shared secret, the
// same way the server derives it during provisioning, so backend services
// never store per-employee chat credentials.
func (c *Client) LoginAsEmployee(ctx context.Context, employeeId int64, sharedSecret string, platformId int) (*LoginResponse, error) {
	userId := common.ChatUserId(employeeId)
	return c.LoginWithUserId(ctx, userId, common.ProvisionPassword(userId, sharedSecret), platformId)
}

// Logout invalidates the current token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Provision creates a chat account for an HR employee. Requires an HR or
// admin token.
func (c *Client) Provision(ctx context.Context, req *ProvisionRequest) (*UserInfo, error) {
	var result UserInfo
	if err := c.post(ctx, "/auth/provision", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
