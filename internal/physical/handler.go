package physical

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"
	"github.com/fittrackapp/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type metricsRepo interface {
	Save(ctx context.Context, m Metrics) (*Metrics, error)
	Get(ctx context.Context, userID int) (*Metrics, error)
}

type noteAppender interface {
	AppendUserNote(ctx context.Context, userID int, content string) error
}

type Handler struct {
	repo  metricsRepo
	notes noteAppender
}

func NewHandler(repo metricsRepo, notes noteAppender) *Handler {
	return &Handler{
		repo:  repo,
		notes: notes,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/save-metrics", handler.HandleSaveMetrics).Methods("POST", "OPTIONS").Name("save-metrics")
	mainRouter.HandleFunc("/get-metrics", handler.HandleGetMetrics).Methods("GET", "OPTIONS").Name("get-metrics")
}

type saveMetricsRequest struct {
	Age        int     `json:"age"`
	Gender     string  `json:"gender"`
	Weight     float64 `json:"weight_kg"`
	Height     float64 `json:"height_cm"`
	BMI        float64 `json:"bmi"`
	BodyFat    float64 `json:"body_fat_percentage"`
	MuscleMass float64 `json:"muscle_mass"`
}

func (handler *Handler) HandleSaveMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.physical.saveMetrics")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	var saveReq saveMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&saveReq); err != nil {
		log.Tracef("save metrics, unmarshal json params: %s", err)
		http.Error(w, "save metrics failed", http.StatusBadRequest)
		return
	}

	derived, err := Derive(Metrics{
		UserID:     userID,
		Age:        saveReq.Age,
		Gender:     saveReq.Gender,
		Weight:     saveReq.Weight,
		Height:     saveReq.Height,
		BMI:        saveReq.BMI,
		BodyFat:    saveReq.BodyFat,
		MuscleMass: saveReq.MuscleMass,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidMetrics) {
			http.Error(w, "error, age, weight and height must be positive", http.StatusBadRequest)
			return
		}
		log.Errorf("save metrics, derive for user %d: %s", userID, err)
		http.Error(w, "save metrics failed", http.StatusInternalServerError)
		return
	}

	savedMetrics, err := handler.repo.Save(ctx, derived)
	if err != nil {
		log.Errorf("save metrics, user %d: %s", userID, err)
		http.Error(w, "save metrics failed", http.StatusInternalServerError)
		return
	}

	// best effort, the metrics row is already stored
	if err := handler.notes.AppendUserNote(ctx, userID, savedMetrics.String()); err != nil {
		log.Errorf("save metrics, append conversation note for user %d: %s", userID, err)
	}

	metricsJson, err := json.Marshal(savedMetrics)
	if err != nil {
		log.Errorf("save metrics, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, metricsJson, http.StatusCreated)
}

func (handler *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.physical.getMetrics")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	userMetrics, err := handler.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrMetricsNotFound) {
			http.Error(w, "metrics not found", http.StatusNotFound)
			return
		}
		log.Errorf("get metrics, user %d: %s", userID, err)
		http.Error(w, "failed to get metrics", http.StatusInternalServerError)
		return
	}

	metricsJson, err := json.Marshal(userMetrics)
	if err != nil {
		log.Errorf("get metrics, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, metricsJson)
}
