package jwt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Token status constants
const (
	TokenStatusNormal = 1 // Token is valid
	TokenStatusKicked = 2 // Token was kicked by new login
	TokenStatusLogout = 3 // Token was logged out
)

// TokenStore manages issued-token state in Redis so logout and kick take
// effect before the JWT itself expires.
type TokenStore struct {
	rdb          *redis.Client
	accessExpire time.Duration
	keyPrefix    string
}

// NewTokenStore creates a new TokenStore
func NewTokenStore(rdb *redis.Client, expireHours int) *TokenStore {
	return &TokenStore{
		rdb:          rdb,
		accessExpire: time.Duration(expireHours) * time.Hour,
		keyPrefix:    "pulse:token:",
	}
}

// tokenKey generates the Redis key for a user's tokens on a platform.
// Format: pulse:token:{userId}:{platformId}
func (s *TokenStore) tokenKey(userId string, platformId int) string {
	return fmt.Sprintf("%s%s:%d", s.keyPrefix, userId, platformId)
}

// StoreToken stores a token in Redis with normal status. Multiple tokens
// per user/platform live in one hash: field = token, value = status.
func (s *TokenStore) StoreToken(ctx context.Context, userId string, platformId int, token string) error {
	key := s.tokenKey(userId, platformId)

	if err := s.rdb.HSet(ctx, key, token, TokenStatusNormal).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	if err := s.rdb.Expire(ctx, key, s.accessExpire).Err(); err != nil {
		return fmt.Errorf("failed to set token expiration: %w", err)
	}

	return nil
}

// IsTokenValid checks if a token exists in Redis with normal status
func (s *TokenStore) IsTokenValid(ctx context.Context, userId string, platformId int, token string) (bool, error) {
	key := s.tokenKey(userId, platformId)

	statusStr, err := s.rdb.HGet(ctx, key, token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get token status: %w", err)
	}

	status, err := strconv.Atoi(statusStr)
	if err != nil {
		return false, fmt.Errorf("invalid token status value: %w", err)
	}

	return status == TokenStatusNormal, nil
}

// InvalidateToken marks a token as logged out
func (s *TokenStore) InvalidateToken(ctx context.Context, userId string, platformId int, token string) error {
	key := s.tokenKey(userId, platformId)

	exists, err := s.rdb.HExists(ctx, key, token).Result()
	if err != nil {
		return fmt.Errorf("failed to check token existence: %w", err)
	}
	if !exists {
		return nil
	}

	if err := s.rdb.HSet(ctx, key, token, TokenStatusLogout).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	return nil
}

// KickOtherTokens marks all other normal tokens for this user/platform as
// kicked and returns them.
func (s *TokenStore) KickOtherTokens(ctx context.Context, userId string, platformId int, currentToken string) ([]string, error) {
	key := s.tokenKey(userId, platformId)

	tokens, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	var kicked []string
	for token, statusStr := range tokens {
		if token == currentToken {
			continue
		}

		status, _ := strconv.Atoi(statusStr)
		if status == TokenStatusNormal {
			if err := s.rdb.HSet(ctx, key, token, TokenStatusKicked).Err(); err != nil {
				return nil, fmt.Errorf("failed to kick token: %w", err)
			}
			kicked = append(kicked, token)
		}
	}

	return kicked, nil
}

// ForceLogoutUser invalidates all tokens for a user across all platforms
func (s *TokenStore) ForceLogoutUser(ctx context.Context, userId string) error {
	pattern := fmt.Sprintf("%s%s:*", s.keyPrefix, userId)

	var cursor uint64
	for {
		keys, nextCursor, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}
