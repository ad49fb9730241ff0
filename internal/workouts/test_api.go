package workouts

import (
	"context"
)

// TestApi is an in-memory catalog used in tests.
type TestApi struct {
	Workouts []Workout
}

func NewTestApi(catalog ...Workout) *TestApi {
	return &TestApi{
		Workouts: catalog,
	}
}

func (api *TestApi) ListAll(_ context.Context) ([]Workout, error) {
	workoutsList := []Workout{}
	workoutsList = append(workoutsList, api.Workouts...)
	return workoutsList, nil
}

func (api *TestApi) GetByName(_ context.Context, name string) (*Workout, error) {
	for i := range api.Workouts {
		if api.Workouts[i].Name == name {
			return &api.Workouts[i], nil
		}
	}
	return nil, ErrWorkoutNotFound
}
