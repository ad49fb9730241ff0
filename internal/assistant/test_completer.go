package assistant

import (
	"context"
)

// TestCompleter is an in-memory Completer used in tests. It records every
// call and replays canned replies, or fails with Err when set.
type TestCompleter struct {
	Replies []string
	Err     error

	Calls []CompleteCall
}

type CompleteCall struct {
	Model    string
	Messages []Message
}

func (tc *TestCompleter) Complete(_ context.Context, model string, messages []Message) (string, error) {
	tc.Calls = append(tc.Calls, CompleteCall{
		Model:    model,
		Messages: messages,
	})
	if tc.Err != nil {
		return "", tc.Err
	}
	if len(tc.Replies) == 0 {
		return "", &UpstreamError{
			StatusCode: 0,
			Message:    "no canned replies left",
		}
	}
	reply := tc.Replies[0]
	tc.Replies = tc.Replies[1:]
	return reply, nil
}
