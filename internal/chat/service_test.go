package chat

import (
	"context"
	"testing"

	"github.com/fittrackapp/fittrack/internal/assistant"
	"github.com/fittrackapp/fittrack/internal/telemetry/metrics"

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

func TestAssembler_Ask(t *testing.T) {
	api := NewTestApi()
	completer := &assistant.TestCompleter{
		Replies: []string{"Do more squats."},
	}
	assembler := NewAssembler(api, completer, "test-model", metrics.NewTestManager())

	ctx := context.Background()
	reply, err := assembler.Ask(ctx, 1, "How do I get stronger legs?")
	require.NoError(t, err)
	assert.Equal(t, "Do more squats.", reply)

	// a single conversation, with the question and the reply in order
	require.Len(t, api.Conversations, 1)
	conversation, err := api.GetConversationByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "user 1 conversation", conversation.Title)

	messages, err := api.MessagesByConversationID(ctx, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, SpeakerHuman, messages[0].Speaker)
	assert.Equal(t, "How do I get stronger legs?", messages[0].Content)
	assert.Equal(t, SpeakerAssistant, messages[1].Speaker)
	assert.Equal(t, "Do more squats.", messages[1].Content)

	// prompt: system instruction + new question
	require.Len(t, completer.Calls, 1)
	call := completer.Calls[0]
	assert.Equal(t, "test-model", call.Model)
	require.Len(t, call.Messages, 2)
	assert.Equal(t, assistant.RoleSystem, call.Messages[0].Role)
	assert.Equal(t, SystemInstruction, call.Messages[0].Content)
	assert.Equal(t, assistant.RoleUser, call.Messages[1].Role)
	assert.Equal(t, "How do I get stronger legs?", call.Messages[1].Content)
}

func TestAssembler_Ask_HistoryRoles(t *testing.T) {
	api := NewTestApi()
	completer := &assistant.TestCompleter{
		Replies: []string{"first reply", "second reply"},
	}
	assembler := NewAssembler(api, completer, "test-model", metrics.NewTestManager())

	ctx := context.Background()
	_, err := assembler.Ask(ctx, 1, "first question")
	require.NoError(t, err)
	_, err = assembler.Ask(ctx, 1, "second question")
	require.NoError(t, err)

	// still one conversation
	require.Len(t, api.Conversations, 1)

	// second call: system + history (human -> user, assistant -> system) + new question
	require.Len(t, completer.Calls, 2)
	secondCall := completer.Calls[1]
	require.Len(t, secondCall.Messages, 4)
	assert.Equal(t, assistant.RoleSystem, secondCall.Messages[0].Role)
	assert.Equal(t, assistant.RoleUser, secondCall.Messages[1].Role)
	assert.Equal(t, "first question", secondCall.Messages[1].Content)
	assert.Equal(t, assistant.RoleSystem, secondCall.Messages[2].Role)
	assert.Equal(t, "first reply", secondCall.Messages[2].Content)
	assert.Equal(t, assistant.RoleUser, secondCall.Messages[3].Role)
	assert.Equal(t, "second question", secondCall.Messages[3].Content)
}

func TestAssembler_Ask_UpstreamErrorWritesNothing(t *testing.T) {
	api := NewTestApi()
	completer := &assistant.TestCompleter{
		Err: &assistant.UpstreamError{StatusCode: 429, Message: "rate limited"},
	}
	assembler := NewAssembler(api, completer, "test-model", metrics.NewTestManager())

	ctx := context.Background()
	_, err := assembler.Ask(ctx, 1, "hello")
	require.Error(t, err)

	var upstreamErr *assistant.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, 429, upstreamErr.StatusCode)

	// the conversation exists but no messages were stored
	conversation, err := api.GetConversationByUserID(ctx, 1)
	require.NoError(t, err)
	messages, err := api.MessagesByConversationID(ctx, conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestAssembler_AppendUserNote(t *testing.T) {
	api := NewTestApi()
	assembler := NewAssembler(api, &assistant.TestCompleter{}, "test-model", metrics.NewTestManager())

	ctx := context.Background()
	require.NoError(t, assembler.AppendUserNote(ctx, 7, "My fitness goal is: run a 10k. I want to achieve it by 2026-12-01."))

	conversation, err := api.GetConversationByUserID(ctx, 7)
	require.NoError(t, err)
	messages, err := api.MessagesByConversationID(ctx, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, SpeakerHuman, messages[0].Speaker)
}

func TestAssembler_LatestMessageContent(t *testing.T) {
	api := NewTestApi()
	assembler := NewAssembler(api, &assistant.TestCompleter{}, "test-model", metrics.NewTestManager())
	ctx := context.Background()

	// no conversation yet
	content, err := assembler.LatestMessageContent(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, content)

	// conversation without messages
	_, err = api.GetOrCreateConversation(ctx, 1)
	require.NoError(t, err)
	content, err = assembler.LatestMessageContent(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, content)

	require.NoError(t, assembler.AppendUserNote(ctx, 1, "note one"))
	require.NoError(t, assembler.AppendUserNote(ctx, 1, "note two"))

	content, err = assembler.LatestMessageContent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "note two", content)
}
