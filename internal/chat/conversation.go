package chat

import (
	"fmt"
	"time"
)

// Speaker says who produced a message. It is not the wire role vocabulary of
// the chat completion API - mapping to wire roles happens only when a prompt
// is assembled.
type Speaker string

const (
	SpeakerHuman     Speaker = "human"
	SpeakerAssistant Speaker = "assistant"
)

type Conversation struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	StartedAt time.Time `json:"started_at"`
}

func DefaultTitle(userID int) string {
	return fmt.Sprintf("user %d conversation", userID)
}

// Message is one turn within a conversation. Rows are immutable and only
// ever appended; reads return them in creation order.
type Message struct {
	ID             int       `json:"id"`
	ConversationID int       `json:"conversation_id"`
	Speaker        Speaker   `json:"speaker"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
