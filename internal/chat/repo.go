package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNoMessages           = errors.New("conversation has no messages")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// GetOrCreateConversation returns the user's single conversation, creating it
// when absent. The conversations table has a unique index on user_id, so two
// concurrent first interactions cannot produce duplicate conversations - the
// upsert makes both observe the same row.
func (r *Repo) GetOrCreateConversation(ctx context.Context, userID int) (_ *Conversation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.getOrCreateConversation")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO conversations (user_id, title, started_at)
			VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, title, started_at;`,
		userID, DefaultTitle(userID), time.Now(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations, err := r.rows2conversations(rows)
	if err != nil {
		return nil, err
	}
	if len(conversations) != 1 {
		return nil, errors.New("unexpected error, conversation upsert returned no row")
	}
	return &conversations[0], nil
}

func (r *Repo) GetConversationByUserID(ctx context.Context, userID int) (_ *Conversation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.getConversationByUserID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, title, started_at FROM conversations WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations, err := r.rows2conversations(rows)
	if err != nil {
		return nil, err
	}
	if len(conversations) != 1 {
		return nil, ErrConversationNotFound
	}
	return &conversations[0], nil
}

func (r *Repo) ListConversations(ctx context.Context) (_ []Conversation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.listConversations")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, title, started_at FROM conversations ORDER BY id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2conversations(rows)
}

func (r *Repo) AddMessage(ctx context.Context, message Message) (_ *Message, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.addMessage")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("conversation.id", message.ConversationID))

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO messages (conversation_id, speaker, content, created_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		message.ConversationID, message.Speaker, message.Content, message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	message.ID = id
	return &message, nil
}

// MessagesByConversationID returns all messages in creation order.
func (r *Repo) MessagesByConversationID(ctx context.Context, conversationID int) (_ []Message, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.messagesByConversationID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("conversation.id", conversationID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, conversation_id, speaker, content, created_at
			FROM messages
			WHERE conversation_id = $1
		ORDER BY id;`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2messages(rows)
}

func (r *Repo) LatestMessage(ctx context.Context, conversationID int) (_ *Message, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.latestMessage")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("conversation.id", conversationID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, conversation_id, speaker, content, created_at
			FROM messages
			WHERE conversation_id = $1
		ORDER BY id DESC
		LIMIT 1;`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := r.rows2messages(rows)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	return &messages[0], nil
}

func (r *Repo) rows2conversations(rows pgx.Rows) ([]Conversation, error) {
	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.StartedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if conversations == nil {
		conversations = make([]Conversation, 0)
	}
	return conversations, nil
}

func (r *Repo) rows2messages(rows pgx.Rows) ([]Message, error) {
	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Speaker, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if messages == nil {
		messages = make([]Message, 0)
	}
	return messages, nil
}
