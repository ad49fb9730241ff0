package physical

import (
	"fmt"
	"strings"
	"time"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Metrics is the current physical profile of a user. There is exactly one
// row per user, updated in place; historical values live in the progress log.
type Metrics struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Age        int       `json:"age"`
	Gender     string    `json:"gender"`
	Weight     float64   `json:"weight_kg"`
	Height     float64   `json:"height_cm"`
	BMI        float64   `json:"bmi"`
	BodyFat    float64   `json:"body_fat_percentage"`
	MuscleMass float64   `json:"muscle_mass"`
	MeasuredAt time.Time `json:"measured_at"`
}

// String renders the metrics as the prose note appended to the user's
// conversation so the assistant can take them into account.
func (m Metrics) String() string {
	return fmt.Sprintf(
		"Here are my physical metrics: Age: %d, Gender: %s, Weight: %.2f, Height: %.2f, BMI: %.2f, Body fat: %.2f, Muscle mass: %.2f.",
		m.Age, m.Gender, m.Weight, m.Height, m.BMI, m.BodyFat, m.MuscleMass,
	)
}

func (m Metrics) isMale() bool {
	return strings.EqualFold(m.Gender, GenderMale)
}
