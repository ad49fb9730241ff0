package auth

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (lc *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := lc.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return false, err
	}

	session, err := parseSession(cmd.Val())
	if err != nil {
		return false, err
	}

	if time.Since(session.CreatedAt) > lc.ttl {
		return false, nil
	}

	return true, nil
}
