package progress

import (
	"fmt"
	"time"
)

// Entry is one snapshot in the user's append-only progress log. Unlike the
// physical metrics row it is never updated, new measurements always append.
type Entry struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Weight     float64   `json:"weight"`
	Height     float64   `json:"height"`
	BMI        float64   `json:"bmi"`
	BodyFat    float64   `json:"body_fat_percentage"`
	MuscleMass float64   `json:"muscle_mass"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// Note renders the entry as a prose conversation message, so the assistant
// sees the same numbers the progress log stores.
func (e Entry) Note() string {
	note := fmt.Sprintf(
		"Here are my updated metrics: Weight: %.2f kg, Height: %.2f cm, BMI: %.2f, Body fat: %.2f, Muscle mass: %.2f.",
		e.Weight, e.Height, e.BMI, e.BodyFat, e.MuscleMass,
	)
	if e.Notes != "" {
		note += " Notes: " + e.Notes
	}
	return note
}
