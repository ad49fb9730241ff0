package goals

import (
	"fmt"
	"time"
)

// FitnessGoal is a target the user wants to reach by a given date, with a
// client-reported completion percentage.
type FitnessGoal struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Description string    `json:"description"`
	TargetDate  time.Time `json:"target_date"`
	Progress    int       `json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
}

// String renders the goal as the prose note appended to the user's
// conversation so the assistant can take it into account.
func (g FitnessGoal) String() string {
	return fmt.Sprintf(
		"My fitness goal is: %s. I want to achieve it by %s.",
		g.Description, g.TargetDate.Format("2006-01-02"),
	)
}
