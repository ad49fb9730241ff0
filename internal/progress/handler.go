package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fittrackapp/fittrack/internal/physical"
	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"
	"github.com/fittrackapp/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type progressRepo interface {
	Add(ctx context.Context, entry Entry) (*Entry, error)
	ListByUserID(ctx context.Context, userID int) ([]Entry, error)
}

type metricsRepo interface {
	Get(ctx context.Context, userID int) (*physical.Metrics, error)
	Save(ctx context.Context, m physical.Metrics) (*physical.Metrics, error)
}

type noteAppender interface {
	AppendUserNote(ctx context.Context, userID int, content string) error
}

type Handler struct {
	repo        progressRepo
	metricsRepo metricsRepo
	notes       noteAppender
}

func NewHandler(repo progressRepo, metricsRepo metricsRepo, notes noteAppender) *Handler {
	return &Handler{
		repo:        repo,
		metricsRepo: metricsRepo,
		notes:       notes,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	progressRouter := mainRouter.PathPrefix("/progress").Subrouter()
	progressRouter.HandleFunc("/save-progress", handler.HandleSaveProgress).Methods("POST", "OPTIONS").Name("save-progress")
	progressRouter.HandleFunc("/get-full-progress", handler.HandleGetFullProgress).Methods("GET", "OPTIONS").Name("get-full-progress")
}

type saveProgressRequest struct {
	Weight     float64 `json:"weight"`
	Height     float64 `json:"height"`
	BMI        float64 `json:"bmi"`
	BodyFat    float64 `json:"body_fat_percentage"`
	MuscleMass float64 `json:"muscle_mass"`
	Notes      string  `json:"notes"`
}

// HandleSaveProgress appends a progress snapshot and brings the user's
// current physical metrics in line with it.
func (handler *Handler) HandleSaveProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.saveProgress")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	var saveReq saveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&saveReq); err != nil {
		log.Tracef("save progress, unmarshal json params: %s", err)
		http.Error(w, "save progress failed", http.StatusBadRequest)
		return
	}

	// derivation needs age and gender, taken from the user's stored metrics
	// when present, assumed to be a 25 year old male otherwise
	age, gender := 25, physical.GenderMale
	storedMetrics, err := handler.metricsRepo.Get(ctx, userID)
	switch {
	case err == nil:
		age, gender = storedMetrics.Age, storedMetrics.Gender
	case errors.Is(err, physical.ErrMetricsNotFound):
		// keep the defaults
	default:
		log.Errorf("save progress, get metrics for user %d: %s", userID, err)
		http.Error(w, "save progress failed", http.StatusInternalServerError)
		return
	}

	derived, err := physical.Derive(physical.Metrics{
		UserID:     userID,
		Age:        age,
		Gender:     gender,
		Weight:     saveReq.Weight,
		Height:     saveReq.Height,
		BMI:        saveReq.BMI,
		BodyFat:    saveReq.BodyFat,
		MuscleMass: saveReq.MuscleMass,
	})
	if err != nil {
		if errors.Is(err, physical.ErrInvalidMetrics) {
			http.Error(w, "error, age, weight and height must be positive", http.StatusBadRequest)
			return
		}
		log.Errorf("save progress, derive for user %d: %s", userID, err)
		http.Error(w, "save progress failed", http.StatusInternalServerError)
		return
	}

	addedEntry, err := handler.repo.Add(ctx, Entry{
		UserID:     userID,
		Weight:     derived.Weight,
		Height:     derived.Height,
		BMI:        derived.BMI,
		BodyFat:    derived.BodyFat,
		MuscleMass: derived.MuscleMass,
		Notes:      saveReq.Notes,
	})
	if err != nil {
		log.Errorf("save progress, user %d: %s", userID, err)
		http.Error(w, "save progress failed", http.StatusInternalServerError)
		return
	}

	// the current metrics row is updated in place, but never created here
	if storedMetrics != nil {
		if _, err := handler.metricsRepo.Save(ctx, derived); err != nil {
			log.Errorf("save progress, update metrics for user %d: %s", userID, err)
			http.Error(w, "save progress failed", http.StatusInternalServerError)
			return
		}
	}

	// best effort, the progress row is already stored
	if err := handler.notes.AppendUserNote(ctx, userID, addedEntry.Note()); err != nil {
		log.Errorf("save progress, append conversation note for user %d: %s", userID, err)
	}

	entryJson, err := json.Marshal(addedEntry)
	if err != nil {
		log.Errorf("save progress, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (handler *Handler) HandleGetFullProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.getFullProgress")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	entries, err := handler.repo.ListByUserID(ctx, userID)
	if err != nil {
		log.Errorf("get full progress, user %d: %s", userID, err)
		http.Error(w, "failed to get progress", http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		http.Error(w, "no progress found", http.StatusNotFound)
		return
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("get full progress, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, entriesJson)
}
