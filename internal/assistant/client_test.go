package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

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

func TestClient_Complete(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "Squats and patience."}, "finish_reason": "stop"}
			]
		}`))
		require.NoError(t, err)
	}))
	defer upstream.Close()

	client := NewClient("test-key", upstream.URL, upstream.Client())
	reply, err := client.Complete(context.Background(), "test-model", []Message{
		{Role: RoleUser, Content: "How do I get stronger legs?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Squats and patience.", reply)
}

func TestClient_Complete_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, err := w.Write([]byte(`{"error": {"message": "rate limited", "type": "requests"}}`))
		require.NoError(t, err)
	}))
	defer upstream.Close()

	client := NewClient("test-key", upstream.URL, upstream.Client())
	_, err := client.Complete(context.Background(), "test-model", []Message{
		{Role: RoleUser, Content: "hi"},
	})
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
	assert.Equal(t, "rate limited", upstreamErr.Message)
}

func TestClient_Complete_NoChoices(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"id": "chatcmpl-test", "object": "chat.completion", "choices": []}`))
		require.NoError(t, err)
	}))
	defer upstream.Close()

	client := NewClient("test-key", upstream.URL, upstream.Client())
	_, err := client.Complete(context.Background(), "test-model", []Message{
		{Role: RoleUser, Content: "hi"},
	})

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestClient_Complete_APIKeyMissing(t *testing.T) {
	client := NewClient("", "", nil)
	_, err := client.Complete(context.Background(), "test-model", []Message{
		{Role: RoleUser, Content: "hi"},
	})
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}
