package physical

import (
	"context"
	"time"
)

// TestApi is an in-memory repo used in tests.
type TestApi struct {
	Metrics map[int]*Metrics

	nextID int
}

func NewTestApi() *TestApi {
	return &TestApi{
		Metrics: make(map[int]*Metrics),
	}
}

func (api *TestApi) Save(_ context.Context, m Metrics) (*Metrics, error) {
	m.MeasuredAt = time.Now()
	if existing, ok := api.Metrics[m.UserID]; ok {
		m.ID = existing.ID
	} else {
		api.nextID++
		m.ID = api.nextID
	}
	api.Metrics[m.UserID] = &m
	return &m, nil
}

func (api *TestApi) Get(_ context.Context, userID int) (*Metrics, error) {
	m, ok := api.Metrics[userID]
	if !ok {
		return nil, ErrMetricsNotFound
	}
	return m, nil
}
