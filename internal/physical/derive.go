package physical

import "errors"

var ErrInvalidMetrics = errors.New("age, weight and height must be positive")

// Derive fills in the derived fields that the client left unset (zero, or
// the -1 some clients send for "unknown"). Values the client supplied are
// kept as is, even if they disagree with the formulas. Body fat is derived
// from whatever BMI value ends up in place, and muscle mass from the body
// fat value, so a supplied BMI flows into the rest of the derivation.
func Derive(m Metrics) (Metrics, error) {
	if m.Age <= 0 || m.Weight <= 0 || m.Height <= 0 {
		return Metrics{}, ErrInvalidMetrics
	}

	if m.BMI <= 0 {
		heightMeters := m.Height / 100
		m.BMI = m.Weight / (heightMeters * heightMeters)
	}

	if m.BodyFat <= 0 {
		genderConst := 5.4
		if m.isMale() {
			genderConst = 16.2
		}
		m.BodyFat = 1.20*m.BMI + 0.23*float64(m.Age) - genderConst
	}

	if m.MuscleMass <= 0 {
		m.MuscleMass = m.Weight * (1 - m.BodyFat/100) * 0.55
	}

	return m, nil
}
