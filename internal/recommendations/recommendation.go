package recommendations

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Recommendation ties a user to one workout from the catalog. A user has at
// most one active set of recommendations, refreshing retires the old set
// instead of deleting it.
type Recommendation struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	WorkoutName string    `json:"workout_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
