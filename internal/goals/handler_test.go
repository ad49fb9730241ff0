package goals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fittrackapp/fittrack/internal/users"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	m.Run()
	goleak.VerifyTestMain(m)
}

type testNoteAppender struct {
	Notes map[int][]string
}

func newTestNoteAppender() *testNoteAppender {
	return &testNoteAppender{Notes: make(map[int][]string)}
}

func (a *testNoteAppender) AppendUserNote(_ context.Context, userID int, content string) error {
	a.Notes[userID] = append(a.Notes[userID], content)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *TestApi, *users.TestApi, *testNoteAppender) {
	t.Helper()
	api := NewTestApi()
	usersApi := users.NewTestApi()
	notes := newTestNoteAppender()
	return NewHandler(api, usersApi, notes), api, usersApi, notes
}

func TestNewGoalsHandler_Routes(t *testing.T) {
	mainRouter := mux.NewRouter()
	handler, _, _, _ := newTestHandler(t)
	handler.SetupRoutes(mainRouter)
	require.NotNil(t, handler)

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"set-goal": {
			name:   "set-goal",
			path:   "/set-goal",
			method: "POST",
		},
		"get-all-goals": {
			name:   "get-all-goals",
			path:   "/goals/get-all-goals",
			method: "GET",
		},
		"set-goal-progress": {
			name:   "set-goal-progress",
			path:   "/goals/set-progress",
			method: "POST",
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			req, err := http.NewRequest(route.method, route.path, nil)
			require.NoError(t, err)

			routeMatch := &mux.RouteMatch{}
			r := mainRouter.Get(route.name)
			require.NotNil(t, r)
			assert.True(t, r.Match(req, routeMatch), caseName)
		})
	}
}

func TestHandleSetGoal(t *testing.T) {
	handler, _, usersApi, notes := newTestHandler(t)

	addedUser, err := usersApi.Add(context.Background(), users.User{Email: "mila@example.com"})
	require.NoError(t, err)

	body := `{"goal_description":"run a 10k","target_date":"2026-12-01T00:00:00Z"}`
	req := httptest.NewRequest("POST", "/set-goal?user_id=1", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.HandleSetGoal(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var addedGoal FitnessGoal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &addedGoal))
	assert.Equal(t, addedUser.ID, addedGoal.UserID)
	assert.Equal(t, "run a 10k", addedGoal.Description)

	require.Len(t, notes.Notes[1], 1)
	assert.Equal(t, "My fitness goal is: run a 10k. I want to achieve it by 2026-12-01.", notes.Notes[1][0])
}

func TestHandleSetGoal_UserNotFound(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	body := `{"goal_description":"run a 10k","target_date":"2026-12-01T00:00:00Z"}`
	req := httptest.NewRequest("POST", "/set-goal?user_id=13", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.HandleSetGoal(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleGetAllGoals(t *testing.T) {
	handler, api, _, _ := newTestHandler(t)

	ctx := context.Background()
	_, err := api.Add(ctx, FitnessGoal{UserID: 1, Description: "goal one"})
	require.NoError(t, err)
	_, err = api.Add(ctx, FitnessGoal{UserID: 2, Description: "other user goal"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/goals/get-all-goals?userId=1", nil)
	rr := httptest.NewRecorder()
	handler.HandleGetAllGoals(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var goalsList []FitnessGoal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &goalsList))
	require.Len(t, goalsList, 1)
	assert.Equal(t, "goal one", goalsList[0].Description)

	// a user without goals gets a 404
	req = httptest.NewRequest("GET", "/goals/get-all-goals?userId=13", nil)
	rr = httptest.NewRecorder()
	handler.HandleGetAllGoals(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleSetProgress(t *testing.T) {
	handler, api, usersApi, _ := newTestHandler(t)

	ctx := context.Background()
	_, err := usersApi.Add(ctx, users.User{Email: "mila@example.com"})
	require.NoError(t, err)
	addedGoal, err := api.Add(ctx, FitnessGoal{UserID: 1, Description: "run a 10k"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/goals/set-progress?userId=1", strings.NewReader(`{"goalId":1,"progress":40}`))
	rr := httptest.NewRecorder()
	handler.HandleSetProgress(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var updatedGoal FitnessGoal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updatedGoal))
	assert.Equal(t, addedGoal.ID, updatedGoal.ID)
	assert.Equal(t, 40, updatedGoal.Progress)
	assert.Equal(t, 40, api.Goals[addedGoal.ID].Progress)
}

func TestHandleSetProgress_NotFound(t *testing.T) {
	handler, api, usersApi, _ := newTestHandler(t)
	ctx := context.Background()

	// unknown user
	req := httptest.NewRequest("POST", "/goals/set-progress?userId=13", strings.NewReader(`{"goalId":1,"progress":40}`))
	rr := httptest.NewRecorder()
	handler.HandleSetProgress(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// known user, unknown goal
	_, err := usersApi.Add(ctx, users.User{Email: "mila@example.com"})
	require.NoError(t, err)
	req = httptest.NewRequest("POST", "/goals/set-progress?userId=1", strings.NewReader(`{"goalId":99,"progress":40}`))
	rr = httptest.NewRecorder()
	handler.HandleSetProgress(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// goal of another user
	_, err = api.Add(ctx, FitnessGoal{UserID: 2, Description: "not yours"})
	require.NoError(t, err)
	req = httptest.NewRequest("POST", "/goals/set-progress?userId=1", strings.NewReader(`{"goalId":1,"progress":40}`))
	rr = httptest.NewRecorder()
	handler.HandleSetProgress(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleSetProgress_InvalidRange(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/goals/set-progress?userId=1", strings.NewReader(`{"goalId":1,"progress":120}`))
	rr := httptest.NewRecorder()
	handler.HandleSetProgress(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
