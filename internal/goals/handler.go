package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"
	"github.com/fittrackapp/fittrack/internal/users"
	"github.com/fittrackapp/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type goalsRepo interface {
	Add(ctx context.Context, goal FitnessGoal) (*FitnessGoal, error)
	ListByUserID(ctx context.Context, userID int) ([]FitnessGoal, error)
	SetProgress(ctx context.Context, userID, goalID, progress int) (*FitnessGoal, error)
}

type userGetter interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

type noteAppender interface {
	AppendUserNote(ctx context.Context, userID int, content string) error
}

type Handler struct {
	repo      goalsRepo
	usersRepo userGetter
	notes     noteAppender
}

func NewHandler(repo goalsRepo, usersRepo userGetter, notes noteAppender) *Handler {
	return &Handler{
		repo:      repo,
		usersRepo: usersRepo,
		notes:     notes,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/set-goal", handler.HandleSetGoal).Methods("POST", "OPTIONS").Name("set-goal")

	goalsRouter := mainRouter.PathPrefix("/goals").Subrouter()
	goalsRouter.HandleFunc("/get-all-goals", handler.HandleGetAllGoals).Methods("GET", "OPTIONS").Name("get-all-goals")
	goalsRouter.HandleFunc("/set-progress", handler.HandleSetProgress).Methods("POST", "OPTIONS").Name("set-goal-progress")
}

type setGoalRequest struct {
	Description string    `json:"goal_description"`
	TargetDate  time.Time `json:"target_date"`
}

func (handler *Handler) HandleSetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.setGoal")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	var setGoalReq setGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&setGoalReq); err != nil {
		log.Tracef("set goal, unmarshal json params: %s", err)
		http.Error(w, "set goal failed", http.StatusBadRequest)
		return
	}
	if setGoalReq.Description == "" {
		http.Error(w, "error, description empty", http.StatusBadRequest)
		return
	}

	if _, err := handler.usersRepo.Get(ctx, userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("set goal, get user %d: %s", userID, err)
		http.Error(w, "set goal failed", http.StatusInternalServerError)
		return
	}

	addedGoal, err := handler.repo.Add(ctx, FitnessGoal{
		UserID:      userID,
		Description: setGoalReq.Description,
		TargetDate:  setGoalReq.TargetDate,
	})
	if err != nil {
		log.Errorf("set goal, user %d: %s", userID, err)
		http.Error(w, "set goal failed", http.StatusInternalServerError)
		return
	}

	// best effort, the goal row is already stored
	if err := handler.notes.AppendUserNote(ctx, userID, addedGoal.String()); err != nil {
		log.Errorf("set goal, append conversation note for user %d: %s", userID, err)
	}

	goalJson, err := json.Marshal(addedGoal)
	if err != nil {
		log.Errorf("set goal, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusCreated)
}

func (handler *Handler) HandleGetAllGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.getAllGoals")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	goalsList, err := handler.repo.ListByUserID(ctx, userID)
	if err != nil {
		log.Errorf("get all goals, user %d: %s", userID, err)
		http.Error(w, "failed to get goals", http.StatusInternalServerError)
		return
	}
	if len(goalsList) == 0 {
		http.Error(w, "no goals found", http.StatusNotFound)
		return
	}

	goalsJson, err := json.Marshal(goalsList)
	if err != nil {
		log.Errorf("get all goals, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, goalsJson)
}

type setProgressRequest struct {
	GoalID   int `json:"goalId"`
	Progress int `json:"progress"`
}

func (handler *Handler) HandleSetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.setProgress")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil {
		http.Error(w, "error, user id NaN", http.StatusBadRequest)
		return
	}

	var setProgressReq setProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&setProgressReq); err != nil {
		log.Tracef("set goal progress, unmarshal json params: %s", err)
		http.Error(w, "set goal progress failed", http.StatusBadRequest)
		return
	}
	if setProgressReq.Progress < 0 || setProgressReq.Progress > 100 {
		http.Error(w, "error, progress must be between 0 and 100", http.StatusBadRequest)
		return
	}

	if _, err := handler.usersRepo.Get(ctx, userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("set goal progress, get user %d: %s", userID, err)
		http.Error(w, "set goal progress failed", http.StatusInternalServerError)
		return
	}

	updatedGoal, err := handler.repo.SetProgress(ctx, userID, setProgressReq.GoalID, setProgressReq.Progress)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("set goal progress, user %d goal %d: %s", userID, setProgressReq.GoalID, err)
		http.Error(w, "set goal progress failed", http.StatusInternalServerError)
		return
	}

	goalJson, err := json.Marshal(updatedGoal)
	if err != nil {
		log.Errorf("set goal progress, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, goalJson)
}
