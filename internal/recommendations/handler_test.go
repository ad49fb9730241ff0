package recommendations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fittrackapp/fittrack/internal/assistant"
	"github.com/fittrackapp/fittrack/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeneratorForHandlerTests(completer assistant.Completer) *Generator {
	return NewGenerator(
		NewTestApi(),
		testCatalog(),
		&testNoteReader{},
		completer,
		"test-model",
		metrics.NewTestManager(),
	)
}

func TestNewRecommendationsHandler_Routes(t *testing.T) {
	mainRouter := mux.NewRouter()
	handler := NewHandler(newGeneratorForHandlerTests(&assistant.TestCompleter{}))
	handler.SetupRoutes(mainRouter)
	require.NotNil(t, handler)

	for caseName, route := range map[string]struct {
		name   string
		path   string
		method string
	}{
		"get-recommendation": {
			name:   "get-recommendation",
			path:   "/recommendations/get-recommendation",
			method: "GET",
		},
		"refresh-recommendations": {
			name:   "refresh-recommendations",
			path:   "/recommendations/refresh-recommendations",
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

func TestHandleGetRecommendation(t *testing.T) {
	completer := &assistant.TestCompleter{
		Replies: []string{"1. Yoga Flow\n2. Cardio Blast"},
	}
	handler := NewHandler(newGeneratorForHandlerTests(completer))

	req := httptest.NewRequest("GET", "/recommendations/get-recommendation?userId=1", nil)
	rr := httptest.NewRecorder()
	handler.HandleGetRecommendation(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var recs []Recommendation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "Yoga Flow", recs[0].WorkoutName)
}

func TestHandleGetRecommendation_BadUserID(t *testing.T) {
	handler := NewHandler(newGeneratorForHandlerTests(&assistant.TestCompleter{}))

	req := httptest.NewRequest("GET", "/recommendations/get-recommendation", nil)
	rr := httptest.NewRecorder()
	handler.HandleGetRecommendation(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleRefreshRecommendations_UpstreamError(t *testing.T) {
	completer := &assistant.TestCompleter{
		Err: &assistant.UpstreamError{StatusCode: 503, Message: "overloaded"},
	}
	handler := NewHandler(newGeneratorForHandlerTests(completer))

	req := httptest.NewRequest("POST", "/recommendations/refresh-recommendations?userId=1", nil)
	rr := httptest.NewRecorder()
	handler.HandleRefreshRecommendations(rr, req)

	require.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "overloaded", strings.TrimSpace(rr.Body.String()))
}
