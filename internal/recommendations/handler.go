package recommendations

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

type generator interface {
	Get(ctx context.Context, userID int) ([]Recommendation, error)
	Refresh(ctx context.Context, userID int) ([]Recommendation, error)
}

type Handler struct {
	generator generator
}

func NewHandler(generator generator) *Handler {
	return &Handler{
		generator: generator,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	recommendationsRouter := mainRouter.PathPrefix("/recommendations").Subrouter()
	recommendationsRouter.HandleFunc("/get-recommendation", handler.HandleGetRecommendation).Methods("GET", "OPTIONS").Name("get-recommendation")
	recommendationsRouter.HandleFunc("/refresh-recommendations", handler.HandleRefreshRecommendations).Methods("POST", "OPTIONS").Name("refresh-recommendations")
}

func (handler *Handler) HandleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recommendations.get")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	recs, err := handler.generator.Get(ctx, userID)
	if err != nil {
		handler.writeError(w, userID, "get recommendations", err)
		return
	}

	recsJson, err := json.Marshal(recs)
	if err != nil {
		log.Errorf("get recommendations, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, recsJson)
}

func (handler *Handler) HandleRefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recommendations.refresh")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	recs, err := handler.generator.Refresh(ctx, userID)
	if err != nil {
		handler.writeError(w, userID, "refresh recommendations", err)
		return
	}

	recsJson, err := json.Marshal(recs)
	if err != nil {
		log.Errorf("refresh recommendations, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, recsJson)
}

func (handler *Handler) writeError(w http.ResponseWriter, userID int, op string, err error) {
	var upstreamErr *assistant.UpstreamError
	switch {
	case errors.As(err, &upstreamErr):
		log.Errorf("%s, assistant call for user %d: %s", op, userID, upstreamErr)
		http.Error(w, upstreamErr.Message, http.StatusBadGateway)
	case errors.Is(err, ErrEmptyCatalog):
		log.Errorf("%s, user %d: %s", op, userID, err)
		http.Error(w, "workout catalog is empty", http.StatusInternalServerError)
	default:
		log.Errorf("%s, user %d: %s", op, userID, err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}
