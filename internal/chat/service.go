package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fittrackapp/fittrack/internal/assistant"
	"github.com/fittrackapp/fittrack/internal/telemetry/metrics"
	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// SystemInstruction is the fixed first turn of every assembled prompt.
const SystemInstruction = "You are a fitness assistant for beginners. " +
	"Provide clear, concise and supportive advice. " +
	"Do not answer non fitness related content questions. " +
	"Answer only to the last question asked."

type assemblerRepo interface {
	GetOrCreateConversation(ctx context.Context, userID int) (*Conversation, error)
	GetConversationByUserID(ctx context.Context, userID int) (*Conversation, error)
	ListConversations(ctx context.Context) ([]Conversation, error)
	AddMessage(ctx context.Context, message Message) (*Message, error)
	MessagesByConversationID(ctx context.Context, conversationID int) ([]Message, error)
	LatestMessage(ctx context.Context, conversationID int) (*Message, error)
}

// Assembler threads user questions and assistant replies into the user's
// single conversation: it builds the full prompt sequence for the chat
// completion API and writes the resulting exchange back as two message rows.
type Assembler struct {
	repo           assemblerRepo
	completer      assistant.Completer
	model          string
	metricsManager *metrics.Manager
}

func NewAssembler(
	repo assemblerRepo,
	completer assistant.Completer,
	model string,
	metricsManager *metrics.Manager,
) *Assembler {
	return &Assembler{
		repo:           repo,
		completer:      completer,
		model:          model,
		metricsManager: metricsManager,
	}
}

// Ask submits the user's question, framed with the system instruction and the
// whole conversation history, and persists the question and the reply in that
// order. Any upstream failure aborts before anything is written.
func (a *Assembler) Ask(ctx context.Context, userID int, question string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.chat.ask")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	conversation, err := a.repo.GetOrCreateConversation(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get or create conversation: %w", err)
	}

	history, err := a.repo.MessagesByConversationID(ctx, conversation.ID)
	if err != nil {
		return "", fmt.Errorf("load conversation history: %w", err)
	}

	prompt := make([]assistant.Message, 0, len(history)+2)
	prompt = append(prompt, assistant.Message{
		Role:    assistant.RoleSystem,
		Content: SystemInstruction,
	})
	for _, m := range history {
		prompt = append(prompt, assistant.Message{
			Role:    wireRole(m.Speaker),
			Content: m.Content,
		})
	}
	prompt = append(prompt, assistant.Message{
		Role:    assistant.RoleUser,
		Content: question,
	})

	reply, err := a.complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	if _, err := a.repo.AddMessage(ctx, Message{
		ConversationID: conversation.ID,
		Speaker:        SpeakerHuman,
		Content:        question,
	}); err != nil {
		return "", fmt.Errorf("save question: %w", err)
	}
	if _, err := a.repo.AddMessage(ctx, Message{
		ConversationID: conversation.ID,
		Speaker:        SpeakerAssistant,
		Content:        reply,
	}); err != nil {
		return "", fmt.Errorf("save reply: %w", err)
	}

	if a.metricsManager != nil {
		a.metricsManager.CounterMessagesStored.Add(2)
	}

	return reply, nil
}

// AppendUserNote appends a human message to the user's conversation without
// contacting the assistant - used by the metrics, progress and goal flows to
// keep the assistant context up to date.
func (a *Assembler) AppendUserNote(ctx context.Context, userID int, content string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.chat.appendUserNote")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	conversation, err := a.repo.GetOrCreateConversation(ctx, userID)
	if err != nil {
		return fmt.Errorf("get or create conversation: %w", err)
	}

	if _, err := a.repo.AddMessage(ctx, Message{
		ConversationID: conversation.ID,
		Speaker:        SpeakerHuman,
		Content:        content,
	}); err != nil {
		return fmt.Errorf("save note: %w", err)
	}

	if a.metricsManager != nil {
		a.metricsManager.CounterMessagesStored.Inc()
	}
	return nil
}

// Messages returns the user's whole conversation history in creation order.
func (a *Assembler) Messages(ctx context.Context, userID int) (_ []Message, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.chat.messages")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	conversation, err := a.repo.GetConversationByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.repo.MessagesByConversationID(ctx, conversation.ID)
}

// LatestMessageContent returns the content of the newest message in the
// user's conversation. A user without a conversation, or with an empty one,
// gets an empty string rather than an error.
func (a *Assembler) LatestMessageContent(ctx context.Context, userID int) (string, error) {
	conversation, err := a.repo.GetConversationByUserID(ctx, userID)
	if errors.Is(err, ErrConversationNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	latest, err := a.repo.LatestMessage(ctx, conversation.ID)
	if errors.Is(err, ErrNoMessages) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return latest.Content, nil
}

func (a *Assembler) Conversations(ctx context.Context) ([]Conversation, error) {
	return a.repo.ListConversations(ctx)
}

func (a *Assembler) complete(ctx context.Context, prompt []assistant.Message) (string, error) {
	begin := time.Now()
	reply, err := a.completer.Complete(ctx, a.model, prompt)
	if a.metricsManager != nil {
		a.metricsManager.CounterAssistantCalls.Inc()
		a.metricsManager.HistAssistantCallDuration.Observe(time.Since(begin).Seconds())
	}
	if err != nil {
		return "", err
	}
	return reply, nil
}

// wireRole maps the stored speaker tag onto the role vocabulary the chat
// completion API expects: assistant turns go back into the "system" slot.
func wireRole(speaker Speaker) string {
	if speaker == SpeakerHuman {
		return assistant.RoleUser
	}
	return assistant.RoleSystem
}
