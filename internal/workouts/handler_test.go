package workouts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

func TestNewWorkoutsHandler_Routes(t *testing.T) {
	mainRouter := mux.NewRouter()
	handler := NewHandler(NewTestApi())
	handler.SetupRoutes(mainRouter)
	require.NotNil(t, handler)

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"get-all": {
			name:   "get-all-workouts",
			path:   "/workouts/get-all",
			method: "GET",
		},
		"get-by-name": {
			name:   "get-workout-by-name",
			path:   "/workouts/get-by-name",
			method: "GET",
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

func TestHandleGetAll(t *testing.T) {
	handler := NewHandler(NewTestApi(
		Workout{ID: 1, Name: "Cardio Blast", Duration: "30 min", Calories: 350, Difficulty: "medium"},
		Workout{ID: 2, Name: "Yoga Flow", Duration: "45 min", Calories: 180, Difficulty: "easy"},
	))

	req := httptest.NewRequest("GET", "/workouts/get-all", nil)
	rr := httptest.NewRecorder()
	handler.HandleGetAll(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var workoutsList []Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &workoutsList))
	require.Len(t, workoutsList, 2)
	assert.Equal(t, "Cardio Blast", workoutsList[0].Name)
}

func TestHandleGetByName(t *testing.T) {
	handler := NewHandler(NewTestApi(
		Workout{
			ID: 1, Name: "Cardio Blast", Duration: "30 min", Calories: 350,
			Difficulty: "medium", Equipment: "jump rope,mat",
			TargetMuscles: "legs,core", Steps: "Warm up\nJump rope\nCool down",
		},
	))

	req := httptest.NewRequest("GET", "/workouts/get-by-name?name=Cardio+Blast", nil)
	rr := httptest.NewRecorder()
	handler.HandleGetByName(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var workout Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &workout))
	assert.Equal(t, 1, workout.ID)

	// unknown name
	req = httptest.NewRequest("GET", "/workouts/get-by-name?name=Nope", nil)
	rr = httptest.NewRecorder()
	handler.HandleGetByName(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// empty name
	req = httptest.NewRequest("GET", "/workouts/get-by-name", nil)
	rr = httptest.NewRecorder()
	handler.HandleGetByName(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
