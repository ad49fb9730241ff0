package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fittrackapp/fittrack/internal/auth"
	"github.com/fittrackapp/fittrack/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	loginChecker := auth.NewLoginTestChecker()
	loginChecker.LoggedSessions["valid-token"] = true
	authMiddleware := middleware.NewAuthMiddlewareHandler(loginChecker)

	testCases := []struct {
		name               string
		path               string
		method             string
		token              string
		expectedStatusCode int
	}{
		{
			name:               "RootWithoutToken",
			path:               "/",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "VersionWithoutToken",
			path:               "/version",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "LoginWithoutToken",
			path:               "/auth/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "SignupWithoutToken",
			path:               "/auth/signup",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "MetricsPrefixWithoutToken",
			path:               "/metrics",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ProtectedPathWithoutToken",
			path:               "/chat/ask",
			method:             "POST",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ProtectedPathValidToken",
			path:               "/chat/ask",
			method:             "POST",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ProtectedPathInvalidToken",
			path:               "/goals/get-all-goals",
			method:             "GET",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "OptionsAlwaysAllowed",
			path:               "/chat/ask",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set(middleware.AuthTokenHeader, tc.token)
			}

			rr := httptest.NewRecorder()
			handler := authMiddleware.AuthCheck()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
		})
	}
}
