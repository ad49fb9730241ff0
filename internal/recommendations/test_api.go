package recommendations

import (
	"context"
	"time"
)

// TestApi is an in-memory repo used in tests.
type TestApi struct {
	Recommendations []Recommendation

	nextID int
}

func NewTestApi() *TestApi {
	return &TestApi{}
}

func (api *TestApi) Add(_ context.Context, rec Recommendation) (*Recommendation, error) {
	api.nextID++
	rec.ID = api.nextID
	if rec.Status == "" {
		rec.Status = StatusActive
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	api.Recommendations = append(api.Recommendations, rec)
	return &rec, nil
}

func (api *TestApi) ActiveByUserID(_ context.Context, userID int) ([]Recommendation, error) {
	recs := []Recommendation{}
	for _, rec := range api.Recommendations {
		if rec.UserID == userID && rec.Status == StatusActive {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (api *TestApi) AllByUserID(_ context.Context, userID int) ([]Recommendation, error) {
	recs := []Recommendation{}
	for _, rec := range api.Recommendations {
		if rec.UserID == userID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (api *TestApi) DeactivateAllForUser(_ context.Context, userID int) error {
	for i := range api.Recommendations {
		if api.Recommendations[i].UserID == userID && api.Recommendations[i].Status == StatusActive {
			api.Recommendations[i].Status = StatusInactive
		}
	}
	return nil
}
