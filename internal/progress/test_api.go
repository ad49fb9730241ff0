package progress

import (
	"context"
	"time"
)

// TestApi is an in-memory repo used in tests.
type TestApi struct {
	Entries map[int][]Entry

	nextID int
}

func NewTestApi() *TestApi {
	return &TestApi{
		Entries: make(map[int][]Entry),
	}
}

func (api *TestApi) Add(_ context.Context, entry Entry) (*Entry, error) {
	api.nextID++
	entry.ID = api.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	api.Entries[entry.UserID] = append(api.Entries[entry.UserID], entry)
	return &entry, nil
}

func (api *TestApi) ListByUserID(_ context.Context, userID int) ([]Entry, error) {
	entries := []Entry{}
	entries = append(entries, api.Entries[userID]...)
	return entries, nil
}
