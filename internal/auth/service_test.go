package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	m.Run()
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestService_LoginLogout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewService(time.Hour, db)
	service.RandStringFunc = func(s int) (string, error) {
		return "test_token", nil
	}

	createdAt := time.Unix(1700000000, 0)
	sessionKey := sessionKeyPrefix + "test_token"
	sessionVal := fmt.Sprintf("42|%d", createdAt.Unix())

	mock.ExpectSet(sessionKey, sessionVal, 0).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, "test_token").SetVal(1)

	ctx := context.Background()
	token, err := service.Login(ctx, 42, createdAt)
	require.NoError(t, err)
	assert.Equal(t, "test_token", token)

	mock.ExpectGet(sessionKey).SetVal(sessionVal)
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, "test_token").SetVal(1)

	loggedOut, err := service.Logout(ctx, token)
	require.NoError(t, err)
	assert.True(t, loggedOut)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Logout_UnknownToken(t *testing.T) {
	db, mock := redismock.NewClientMock()
	service := NewService(time.Hour, db)

	mock.ExpectGet(sessionKeyPrefix + "nope").RedisNil()

	loggedOut, err := service.Logout(context.Background(), "nope")
	require.Error(t, err)
	assert.False(t, loggedOut)
}

func TestLoginChecker_IsLogged(t *testing.T) {
	db, mock := redismock.NewClientMock()
	checker := NewLoginChecker(time.Hour, db)
	ctx := context.Background()

	freshVal := fmt.Sprintf("42|%d", time.Now().Unix())
	mock.ExpectGet(sessionKeyPrefix + "fresh").SetVal(freshVal)
	logged, err := checker.IsLogged(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, logged)

	staleVal := fmt.Sprintf("42|%d", time.Now().Add(-2*time.Hour).Unix())
	mock.ExpectGet(sessionKeyPrefix + "stale").SetVal(staleVal)
	logged, err = checker.IsLogged(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, logged)

	mock.ExpectGet(sessionKeyPrefix + "missing").RedisNil()
	_, err = checker.IsLogged(ctx, "missing")
	require.Error(t, err)
}

func TestParseSession(t *testing.T) {
	session, err := parseSession("13|1700000000")
	require.NoError(t, err)
	assert.Equal(t, 13, session.UserID)
	assert.Equal(t, int64(1700000000), session.CreatedAt.Unix())

	_, err = parseSession("garbage")
	require.Error(t, err)
	_, err = parseSession("nan|1700000000")
	require.Error(t, err)
	_, err = parseSession("13|nan")
	require.Error(t, err)
}
