package learning

import (
	"testing"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestShouldLearn_StableNeverLearns(t *testing.T) {
	outcomes := []Outcome{
		{},
		{DaysElapsed: 365, Improved: boolPtr(true)},
		{DaysElapsed: 365, Improved: boolPtr(false)},
		{DaysElapsed: MinDaysForLearning},
	}
	for _, o := range outcomes {
		assert.False(t, ShouldLearn(models.StateStable, o))
	}
}

func TestShouldLearn_MinimumLatency(t *testing.T) {
	assert.False(t, ShouldLearn(models.StateImproving, Outcome{DaysElapsed: 1, Improved: boolPtr(true)}))
	assert.False(t, ShouldLearn(models.StateImproving, Outcome{DaysElapsed: MinDaysForLearning - 1, Improved: boolPtr(true)}))
	assert.True(t, ShouldLearn(models.StateImproving, Outcome{DaysElapsed: MinDaysForLearning, Improved: boolPtr(true)}))
}

func TestShouldLearn_RequiresConcreteOutcome(t *testing.T) {
	assert.False(t, ShouldLearn(models.StateDeteriorating, Outcome{DaysElapsed: 30}))
	assert.True(t, ShouldLearn(models.StateDeteriorating, Outcome{DaysElapsed: 30, Improved: boolPtr(false)}))
}

func TestShouldLearn_StateVocabulary(t *testing.T) {
	o := Outcome{DaysElapsed: 30, Improved: boolPtr(true)}

	tests := []struct {
		state models.ClinicalState
		want  bool
	}{
		{models.StateImproving, true},
		{models.StateDeteriorating, true},
		{models.StateAtLimit, true},
		{models.StateCritical, true},
		{models.StateStable, false},
		{models.ClinicalState("UNKNOWN"), false},
		{models.ClinicalState(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldLearn(tt.state, o))
		})
	}
}
