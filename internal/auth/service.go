package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fittrackapp/fittrack/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "fittrack-session||"
	tokensSetKey     = "fittrack-sessions"
)

type Session struct {
	UserID    int
	CreatedAt time.Time
}

// Service issues and revokes per-user session tokens, stored in redis.
// The token is a dedicated opaque credential; the upstream chat API key
// never leaves server side configuration.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(ttl time.Duration, redisClient *redis.Client) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *Service) Login(ctx context.Context, userID int, createdAt time.Time) (string, error) {
	token, err := s.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + token
	sessionVal := fmt.Sprintf("%d|%d", userID, createdAt.Unix())
	cmdSet := s.redisClient.Set(ctx, sessionKey, sessionVal, 0)
	if err := cmdSet.Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	cmdSAdd := s.redisClient.SAdd(ctx, tokensSetKey, token)
	if err := cmdSAdd.Err(); err != nil {
		return "", err
	}

	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := s.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return false, err
	}

	session, err := parseSession(cmd.Val())
	if err != nil {
		return false, err
	}

	cmdDel := s.redisClient.Del(ctx, sessionKey)
	if err := cmdDel.Err(); err != nil {
		return false, err
	}

	// remove token from the list of sessions
	cmdSRem := s.redisClient.SRem(ctx, tokensSetKey, token)
	if err := cmdSRem.Err(); err != nil {
		return false, err
	}

	return session.CreatedAt.Unix() > 0, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context) {
	cmd := s.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Warnln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Warnf("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		sessionKey := sessionKeyPrefix + token
		cmd := s.redisClient.Get(ctx, sessionKey)
		if err := cmd.Err(); err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		session, err := parseSession(cmd.Val())
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		if time.Since(session.CreatedAt) > s.ttl {
			log.Warnf("=>\twill clean the session with token: %s", token)
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		sessionKey := sessionKeyPrefix + token
		cmdDel := s.redisClient.Del(ctx, sessionKey)
		if err := cmdDel.Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}

		cmdSRem := s.redisClient.SRem(ctx, tokensSetKey, token)
		if err := cmdSRem.Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}
	}
}

func parseSession(val string) (Session, error) {
	parts := strings.SplitN(val, "|", 2)
	if len(parts) != 2 {
		return Session{}, fmt.Errorf("malformed session value: %q", val)
	}

	userID, err := strconv.Atoi(parts[0])
	if err != nil {
		return Session{}, fmt.Errorf("malformed session user id: %w", err)
	}
	createdAtUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("malformed session timestamp: %w", err)
	}

	return Session{
		UserID:    userID,
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}
