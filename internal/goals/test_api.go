package goals

import (
	"context"
	"time"
)

// TestApi is an in-memory repo used in tests.
type TestApi struct {
	Goals map[int]*FitnessGoal

	nextID int
}

func NewTestApi() *TestApi {
	return &TestApi{
		Goals: make(map[int]*FitnessGoal),
	}
}

func (api *TestApi) Add(_ context.Context, goal FitnessGoal) (*FitnessGoal, error) {
	api.nextID++
	goal.ID = api.nextID
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	api.Goals[goal.ID] = &goal
	return &goal, nil
}

func (api *TestApi) ListByUserID(_ context.Context, userID int) ([]FitnessGoal, error) {
	goalsList := []FitnessGoal{}
	for _, g := range api.Goals {
		if g.UserID == userID {
			goalsList = append(goalsList, *g)
		}
	}
	return goalsList, nil
}

func (api *TestApi) SetProgress(_ context.Context, userID, goalID, progress int) (*FitnessGoal, error) {
	g, ok := api.Goals[goalID]
	if !ok || g.UserID != userID {
		return nil, ErrGoalNotFound
	}
	g.Progress = progress
	updated := *g
	return &updated, nil
}
