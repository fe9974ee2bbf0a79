package evaluator

import (
	"testing"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/specialty"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func conditionsOf(res ConfluenceResult) []models.Condition {
	out := make([]models.Condition, 0, len(res.Confluences))
	for _, c := range res.Confluences {
		out = append(out, c.Condition)
	}
	return out
}

func TestCalculate_BaseScoreOnly(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	res := calc.Calculate(newContext(), registry.Get(models.SpecialtyGeral))

	assert.Equal(t, BaseScore, res.TotalScore)
	assert.NotNil(t, res.Confluences)
	assert.Empty(t, res.Confluences)
}

func TestCalculate_RenalScenario(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	ctx := newContext(
		kpi(models.IndicatorCreatinine, 1.2, 0),
		kpi(models.IndicatorGFR, 70, 0),
		kpi(models.IndicatorCreatinine, 1.5, 30),
		kpi(models.IndicatorGFR, 55, 30),
	)
	ctx.PrescriptionHistory = prescriptions(3)

	res := calc.Calculate(ctx, registry.Get(models.SpecialtyNefrologia))

	assert.Equal(t, []models.Condition{
		models.ConditionCreatinineRising,
		models.ConditionGFRFalling,
		models.ConditionMultipleAdjustments,
	}, conditionsOf(res))
	assert.Equal(t, BaseScore+35+35+15, res.TotalScore)
	assert.Contains(t, res.Confluences[0].Reasoning, "1.20")
	assert.Contains(t, res.Confluences[0].Reasoning, "1.50")
	assert.Contains(t, res.Confluences[1].Reasoning, "70")
	assert.Contains(t, res.Confluences[1].Reasoning, "55")
}

func TestCalculate_SpecialtyGating(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	ctx := newContext(
		kpi(models.IndicatorCreatinine, 1.2, 0),
		kpi(models.IndicatorCreatinine, 1.9, 30),
	)
	ctx.CurrentAssessment.ImreData = &models.ImreData{
		Renal: &models.RenalData{Proteinuria: boolPtr(true)},
	}

	res := calc.Calculate(ctx, registry.Get(models.SpecialtyCannabis))
	assert.Empty(t, res.Confluences)
	assert.Equal(t, BaseScore, res.TotalScore)

	res = calc.Calculate(ctx, registry.Get(models.SpecialtyNefrologia))
	assert.Equal(t, []models.Condition{
		models.ConditionCreatinineRising,
		models.ConditionProteinuriaPositive,
	}, conditionsOf(res))
}

func TestCalculate_SuicidalIdeationGatekeeper(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	ctx := newContext()
	ctx.CurrentAssessment.ImreData = &models.ImreData{
		Psiquiatria: &models.PsychiatricData{IdeacaoSuicida: boolPtr(true)},
	}

	profile := registry.Get(models.SpecialtyPsiquiatria)
	res := calc.Calculate(ctx, profile)

	require.Len(t, res.Confluences, 1)
	c := res.Confluences[0]
	assert.Equal(t, models.ConditionSuicidalIdeation, c.Condition)
	assert.Equal(t, profile.Weight(models.ConditionSuicidalIdeation, 50), c.Points)
	assert.Equal(t, BaseScore+c.Points, res.TotalScore)

	// 默认权重为最大值 50
	points, ok := DefaultPoints(models.ConditionSuicidalIdeation)
	require.True(t, ok)
	assert.Equal(t, 50.0, points)
	res = calc.Calculate(ctx, registry.Get(models.SpecialtyGeral))
	require.Len(t, res.Confluences, 1)
	assert.Equal(t, 50.0, res.Confluences[0].Points)
	assert.Equal(t, 1.0, res.Confluences[0].Weight)

	ctx.CurrentAssessment.ImreData.Psiquiatria.IdeacaoSuicida = boolPtr(false)
	assert.Empty(t, calc.Calculate(ctx, profile).Confluences)
}

func TestCalculate_MissingNestedDataNotTriggered(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	ctx := newContext()
	ctx.CurrentAssessment.ImreData = &models.ImreData{Psiquiatria: &models.PsychiatricData{}}

	res := calc.Calculate(ctx, registry.Get(models.SpecialtyGeral))
	assert.Empty(t, res.Confluences)
}

func TestCalculate_PsychiatricAndCannabisConditions(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	ctx := newContext(
		kpi(models.IndicatorCannabisDose, 10, 0),
		kpi(models.IndicatorPainScore, 6, 0),
		kpi(models.IndicatorSideEffects, 1, 0),
		kpi(models.IndicatorGAD7, 8, 0),
		kpi(models.IndicatorCannabisDose, 20, 30),
		kpi(models.IndicatorPainScore, 6, 30),
		kpi(models.IndicatorSideEffects, 3, 30),
		kpi(models.IndicatorGAD7, 9, 30),
	)

	res := calc.Calculate(ctx, registry.Get(models.SpecialtyGeral))
	// GAD-7 只上升 1 分
	assert.Equal(t, []models.Condition{
		models.ConditionCannabisDoseEscalation,
		models.ConditionSideEffectsRising,
	}, conditionsOf(res))

	ctx.KPIHistory = append(ctx.KPIHistory, kpi(models.IndicatorGAD7, 11, 40))
	res = calc.Calculate(ctx, registry.Get(models.SpecialtyGeral))
	assert.Equal(t, []models.Condition{
		models.ConditionCannabisDoseEscalation,
		models.ConditionSideEffectsRising,
		models.ConditionGAD7Worsening,
	}, conditionsOf(res))
}

func TestCalculate_DoseEscalationWithPainRelief(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	ctx := newContext(
		kpi(models.IndicatorCannabisDose, 10, 0),
		kpi(models.IndicatorPainScore, 7, 0),
		kpi(models.IndicatorCannabisDose, 15, 30),
		kpi(models.IndicatorPainScore, 4, 30),
	)

	res := calc.Calculate(ctx, registry.Get(models.SpecialtyCannabis))
	assert.Empty(t, res.Confluences)
}

func TestCalculate_RescueMedicationAndTimeConditions(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	ctx := newContext()
	ctx.CurrentAssessment.ImreData = &models.ImreData{
		DorCronica: &models.ChronicPainData{UsoResgateSemanal: floatPtr(4)},
	}
	ctx.TimeContext.DaysSinceLastChange = 75

	profile := registry.Get(models.SpecialtyDorCronica)
	res := calc.Calculate(ctx, profile)

	assert.Equal(t, []models.Condition{
		models.ConditionRescueMedicationOveruse,
		models.ConditionProlongedNoChange,
	}, conditionsOf(res))
	assert.Equal(t, BaseScore+35+20, res.TotalScore)
}

func TestCalculate_ScoreIsNotCapped(t *testing.T) {
	calc := NewConfluenceCalculator(zap.NewNop())
	registry := specialty.NewRegistry()

	ctx := newContext(
		kpi(models.IndicatorCreatinine, 1.2, 0),
		kpi(models.IndicatorGFR, 70, 0),
		kpi(models.IndicatorGAD7, 5, 0),
		kpi(models.IndicatorCreatinine, 1.8, 30),
		kpi(models.IndicatorGFR, 40, 30),
		kpi(models.IndicatorGAD7, 15, 30),
		kpi(models.IndicatorRescueMedication, 5, 30),
	)
	ctx.PrescriptionHistory = prescriptions(4)
	ctx.TimeContext.DaysSinceLastChange = 100
	ctx.CurrentAssessment.ImreData = &models.ImreData{
		Renal:       &models.RenalData{Proteinuria: boolPtr(true)},
		Psiquiatria: &models.PsychiatricData{IdeacaoSuicida: boolPtr(true)},
	}

	res := calc.Calculate(ctx, registry.Get(models.SpecialtyGeral))
	assert.Greater(t, res.TotalScore, 100.0)
	assert.Len(t, res.Confluences, 8)
}
