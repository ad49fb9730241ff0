package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"
	"github.com/fittrackapp/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type workoutsRepo interface {
	ListAll(ctx context.Context) ([]Workout, error)
	GetByName(ctx context.Context, name string) (*Workout, error)
}

type Handler struct {
	repo workoutsRepo
}

func NewHandler(repo workoutsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutsRouter := mainRouter.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("/get-all", handler.HandleGetAll).Methods("GET", "OPTIONS").Name("get-all-workouts")
	workoutsRouter.HandleFunc("/get-by-name", handler.HandleGetByName).Methods("GET", "OPTIONS").Name("get-workout-by-name")
}

func (handler *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.getAll")
	defer span.End()

	workoutsList, err := handler.repo.ListAll(ctx)
	if err != nil {
		log.Errorf("get all workouts: %s", err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	workoutsJson, err := json.Marshal(workoutsList)
	if err != nil {
		log.Errorf("marshal workouts: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutsJson)
}

func (handler *Handler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.getByName")
	defer span.End()

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("get workout by name %q: %s", name, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("marshal workout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, workoutJson)
}
