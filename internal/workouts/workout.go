package workouts

// Workout is one entry of the shared workout catalog. The catalog is
// read-only and seeded via migrations, recommendations point into it by
// name. Equipment and TargetMuscles are comma-joined lists, Steps is a
// newline-joined list, as seeded.
type Workout struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Duration      string `json:"duration"`
	Calories      int    `json:"calories"`
	Difficulty    string `json:"difficulty"`
	Equipment     string `json:"equipment"`
	TargetMuscles string `json:"target_muscles"`
	Steps         string `json:"steps"`
}
