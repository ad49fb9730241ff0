package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
)

// ErrAPIKeyMissing is returned on use, not at startup: a misconfigured
// deployment still serves everything that does not need the upstream API.
var ErrAPIKeyMissing = errors.New("chat completion API key not configured")

const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

type Message struct {
	Role    string
	Content string
}

// UpstreamError carries the upstream error payload message so handlers can
// surface it to the caller verbatim.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("chat completion API error [%d]: %s", e.StatusCode, e.Message)
}

type Completer interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

var _ Completer = (*Client)(nil)

type Client struct {
	openaiClient *openai.Client
	apiKeySet    bool
}

// NewClient creates a chat completion client. A non-empty baseURL overrides
// the default upstream endpoint (used in tests and for compatible providers).
func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &Client{
		openaiClient: openai.NewClientWithConfig(cfg),
		apiKeySet:    apiKey != "",
	}
}

func (c *Client) Complete(ctx context.Context, model string, messages []Message) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "assistant.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("model", model))
	span.SetAttributes(attribute.Int("messages", len(messages)))

	if !c.apiKeySet {
		return "", ErrAPIKeyMissing
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: chatMessages,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
			}
		}
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{
			StatusCode: http.StatusOK,
			Message:    "chat completion response contains no choices",
		}
	}

	return resp.Choices[0].Message.Content, nil
}
