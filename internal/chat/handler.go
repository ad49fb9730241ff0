package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fittrackapp/fittrack/internal/assistant"
	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"
	"github.com/fittrackapp/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type assembler interface {
	Ask(ctx context.Context, userID int, question string) (string, error)
	Messages(ctx context.Context, userID int) ([]Message, error)
	Conversations(ctx context.Context) ([]Conversation, error)
}

type Handler struct {
	assembler assembler
}

func NewHandler(assembler assembler) *Handler {
	return &Handler{
		assembler: assembler,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	chatRouter := mainRouter.PathPrefix("/chat").Subrouter()
	chatRouter.HandleFunc("/ask", handler.HandleAsk).Methods("POST", "OPTIONS").Name("ask")
	chatRouter.HandleFunc("/get-all-messages", handler.HandleGetAllMessages).Methods("GET", "OPTIONS").Name("get-all-messages")

	conversationsRouter := mainRouter.PathPrefix("/conversations").Subrouter()
	conversationsRouter.HandleFunc("/all", handler.HandleAllConversations).Methods("GET", "OPTIONS").Name("all-conversations")
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Message string `json:"message"`
}

func (handler *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.ask")
	defer span.End()

	userID, err := userIDFromQuery(r, "user_id")
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	var askReq askRequest
	if err := json.NewDecoder(r.Body).Decode(&askReq); err != nil {
		log.Tracef("ask, unmarshal json params: %s", err)
		http.Error(w, "ask failed", http.StatusBadRequest)
		return
	}
	if askReq.Question == "" {
		http.Error(w, "error, question empty", http.StatusBadRequest)
		return
	}

	reply, err := handler.assembler.Ask(ctx, userID, askReq.Question)
	if err != nil {
		var upstreamErr *assistant.UpstreamError
		if errors.As(err, &upstreamErr) {
			log.Errorf("ask, assistant call for user %d: %s", userID, upstreamErr)
			http.Error(w, upstreamErr.Message, http.StatusBadGateway)
			return
		}
		log.Errorf("ask, user %d: %s", userID, err)
		http.Error(w, "ask failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(askResponse{Message: reply})
	if err != nil {
		log.Errorf("ask, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleGetAllMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.getAllMessages")
	defer span.End()

	userID, err := userIDFromQuery(r, "userId")
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	messages, err := handler.assembler.Messages(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		log.Errorf("get all messages, user %d: %s", userID, err)
		http.Error(w, "failed to get messages", http.StatusInternalServerError)
		return
	}

	messagesJson, err := json.Marshal(messages)
	if err != nil {
		log.Errorf("marshal messages: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, messagesJson)
}

func (handler *Handler) HandleAllConversations(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.chat.allConversations")
	defer span.End()

	conversations, err := handler.assembler.Conversations(ctx)
	if err != nil {
		log.Errorf("list conversations: %s", err)
		http.Error(w, "failed to get conversations", http.StatusInternalServerError)
		return
	}

	conversationsJson, err := json.Marshal(conversations)
	if err != nil {
		log.Errorf("marshal conversations: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, conversationsJson)
}

func userIDFromQuery(r *http.Request, param string) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(param))
}
