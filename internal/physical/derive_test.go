package physical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_FillsUnsetFields(t *testing.T) {
	derived, err := Derive(Metrics{
		UserID: 1,
		Age:    30,
		Gender: GenderMale,
		Weight: 80,
		Height: 180,
	})
	require.NoError(t, err)

	assert.InDelta(t, 24.69, derived.BMI, 0.01)
	// 1.20 * BMI + 0.23 * age - 16.2
	assert.InDelta(t, 20.33, derived.BodyFat, 0.01)
	// weight * (1 - bodyFat/100) * 0.55
	assert.InDelta(t, 35.05, derived.MuscleMass, 0.01)
}

func TestDerive_NegativeSentinelTreatedAsUnset(t *testing.T) {
	derived, err := Derive(Metrics{
		UserID:     1,
		Age:        30,
		Gender:     GenderMale,
		Weight:     80,
		Height:     180,
		BMI:        -1,
		BodyFat:    -1,
		MuscleMass: -1,
	})
	require.NoError(t, err)

	assert.InDelta(t, 24.69, derived.BMI, 0.01)
	assert.InDelta(t, 20.33, derived.BodyFat, 0.01)
	assert.InDelta(t, 35.05, derived.MuscleMass, 0.01)
}

func TestDerive_FemaleConstant(t *testing.T) {
	derived, err := Derive(Metrics{
		Age:    25,
		Gender: GenderFemale,
		Weight: 60,
		Height: 165,
	})
	require.NoError(t, err)

	assert.InDelta(t, 22.04, derived.BMI, 0.01)
	assert.InDelta(t, 1.20*derived.BMI+0.23*25-5.4, derived.BodyFat, 0.001)
}

func TestDerive_UnknownGenderUsesFemaleConstant(t *testing.T) {
	derived, err := Derive(Metrics{
		Age:    25,
		Gender: "other",
		Weight: 60,
		Height: 165,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.20*derived.BMI+0.23*25-5.4, derived.BodyFat, 0.001)
}

func TestDerive_KeepsSuppliedValues(t *testing.T) {
	derived, err := Derive(Metrics{
		Age:        30,
		Gender:     GenderMale,
		Weight:     80,
		Height:     180,
		BMI:        22,
		BodyFat:    15,
		MuscleMass: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, 22.0, derived.BMI)
	assert.Equal(t, 15.0, derived.BodyFat)
	assert.Equal(t, 40.0, derived.MuscleMass)
}

func TestDerive_SuppliedBMIFlowsIntoBodyFat(t *testing.T) {
	derived, err := Derive(Metrics{
		Age:    30,
		Gender: GenderMale,
		Weight: 80,
		Height: 180,
		BMI:    20,
	})
	require.NoError(t, err)

	assert.Equal(t, 20.0, derived.BMI)
	assert.InDelta(t, 1.20*20+0.23*30-16.2, derived.BodyFat, 0.001)
}

func TestDerive_RejectsNonPositiveInputs(t *testing.T) {
	for name, m := range map[string]Metrics{
		"zero age":        {Age: 0, Weight: 80, Height: 180},
		"negative age":    {Age: -1, Weight: 80, Height: 180},
		"zero weight":     {Age: 30, Weight: 0, Height: 180},
		"zero height":     {Age: 30, Weight: 80, Height: 0},
		"negative height": {Age: 30, Weight: 80, Height: -180},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Derive(m)
			assert.ErrorIs(t, err, ErrInvalidMetrics)
		})
	}
}

func TestMetrics_ProseNote(t *testing.T) {
	m := Metrics{
		Age:        30,
		Gender:     GenderMale,
		Weight:     80,
		Height:     180,
		BMI:        24.69,
		BodyFat:    20.33,
		MuscleMass: 35.05,
	}
	assert.Equal(
		t,
		"Here are my physical metrics: Age: 30, Gender: male, Weight: 80.00, Height: 180.00, BMI: 24.69, Body fat: 20.33, Muscle mass: 35.05.",
		m.String(),
	)
}
