package chat

import (
	"context"
	"time"
)

// TestApi is an in-memory repo used in tests.
type TestApi struct {
	Conversations map[int]*Conversation
	Messages      map[int][]Message

	nextConversationID int
	nextMessageID      int
}

func NewTestApi() *TestApi {
	return &TestApi{
		Conversations: make(map[int]*Conversation),
		Messages:      make(map[int][]Message),
	}
}

func (api *TestApi) GetOrCreateConversation(_ context.Context, userID int) (*Conversation, error) {
	for _, c := range api.Conversations {
		if c.UserID == userID {
			return c, nil
		}
	}
	api.nextConversationID++
	conversation := &Conversation{
		ID:        api.nextConversationID,
		UserID:    userID,
		Title:     DefaultTitle(userID),
		StartedAt: time.Now(),
	}
	api.Conversations[conversation.ID] = conversation
	return conversation, nil
}

func (api *TestApi) GetConversationByUserID(_ context.Context, userID int) (*Conversation, error) {
	for _, c := range api.Conversations {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, ErrConversationNotFound
}

func (api *TestApi) ListConversations(_ context.Context) ([]Conversation, error) {
	conversations := []Conversation{}
	for _, c := range api.Conversations {
		conversations = append(conversations, *c)
	}
	return conversations, nil
}

func (api *TestApi) AddMessage(_ context.Context, message Message) (*Message, error) {
	api.nextMessageID++
	message.ID = api.nextMessageID
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	api.Messages[message.ConversationID] = append(api.Messages[message.ConversationID], message)
	return &message, nil
}

func (api *TestApi) MessagesByConversationID(_ context.Context, conversationID int) ([]Message, error) {
	messages := []Message{}
	messages = append(messages, api.Messages[conversationID]...)
	return messages, nil
}

func (api *TestApi) LatestMessage(_ context.Context, conversationID int) (*Message, error) {
	messages := api.Messages[conversationID]
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	latest := messages[len(messages)-1]
	return &latest, nil
}
