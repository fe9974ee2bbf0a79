package evaluator

import (
	"fmt"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"
)

// 目录阈值
const (
	GAD7WorseningPoints       = 2.0
	ProteinuriaPositiveGrams  = 0.3
	RescueOveruseWeeklyUses   = 3.0
	AdjustmentsConfluenceMin  = 3
	NoChangeConfluenceMinDays = 60
)

// condition 决策目录条目
type condition struct {
	id            models.Condition
	indicator     models.Indicator
	label         string
	defaultPoints float64
	// evaluate 返回 (reasoning, triggered)；数据缺失时视为未触发
	evaluate func(ctx *models.PatientContext) (string, bool)
}

// catalogue 决策目录（声明顺序即证据输出顺序）
var catalogue = []condition{
	{
		id:            models.ConditionCreatinineRising,
		indicator:     models.IndicatorCreatinine,
		label:         "Creatinina em elevação",
		defaultPoints: 30,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			prev, last, ok := lastTwo(ctx, models.IndicatorCreatinine)
			if !ok || last <= prev {
				return "", false
			}
			return fmt.Sprintf("Creatinina subiu de %.2f para %.2f mg/dL", prev, last), true
		},
	},
	{
		id:            models.ConditionGFRFalling,
		indicator:     models.IndicatorGFR,
		label:         "TFG em queda",
		defaultPoints: 30,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			prev, last, ok := lastTwo(ctx, models.IndicatorGFR)
			if !ok || last >= prev {
				return "", false
			}
			return fmt.Sprintf("TFG caiu de %.0f para %.0f mL/min/1.73m²", prev, last), true
		},
	},
	{
		id:            models.ConditionProteinuriaPositive,
		indicator:     models.IndicatorProteinuria,
		label:         "Proteinúria positiva",
		defaultPoints: 25,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			if imre := ctx.CurrentAssessment.ImreData; imre != nil && imre.Renal != nil &&
				imre.Renal.Proteinuria != nil && *imre.Renal.Proteinuria {
				return "Proteinúria positiva na avaliação atual", true
			}
			if last, ok := latest(ctx, models.IndicatorProteinuria); ok && last >= ProteinuriaPositiveGrams {
				return fmt.Sprintf("Proteinúria de %.2f g/24h (limite %.2f)", last, ProteinuriaPositiveGrams), true
			}
			return "", false
		},
	},
	{
		id:            models.ConditionCannabisDoseEscalation,
		indicator:     models.IndicatorCannabisDose,
		label:         "Escalada de dose sem alívio da dor",
		defaultPoints: 30,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			prevDose, lastDose, ok := lastTwo(ctx, models.IndicatorCannabisDose)
			if !ok || lastDose <= prevDose {
				return "", false
			}
			prevPain, lastPain, ok := lastTwo(ctx, models.IndicatorPainScore)
			if !ok || lastPain < prevPain {
				return "", false
			}
			return fmt.Sprintf("Dose aumentou de %.1f para %.1f mg sem alívio (dor %.0f → %.0f)",
				prevDose, lastDose, prevPain, lastPain), true
		},
	},
	{
		id:            models.ConditionSideEffectsRising,
		indicator:     models.IndicatorSideEffects,
		label:         "Efeitos adversos em aumento",
		defaultPoints: 25,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			if prev, last, ok := lastTwo(ctx, models.IndicatorSideEffects); ok && last > prev {
				return fmt.Sprintf("Escore de efeitos adversos subiu de %.0f para %.0f", prev, last), true
			}
			if imre := ctx.CurrentAssessment.ImreData; imre != nil && imre.Cannabis != nil &&
				imre.Cannabis.EfeitosAdversosAumentando != nil && *imre.Cannabis.EfeitosAdversosAumentando {
				return "Aumento de efeitos adversos relatado na avaliação atual", true
			}
			return "", false
		},
	},
	{
		id:            models.ConditionGAD7Worsening,
		indicator:     models.IndicatorGAD7,
		label:         "Piora de ansiedade (GAD-7)",
		defaultPoints: 25,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			prev, last, ok := lastTwo(ctx, models.IndicatorGAD7)
			if !ok || last-prev < GAD7WorseningPoints {
				return "", false
			}
			return fmt.Sprintf("GAD-7 piorou de %.0f para %.0f pontos", prev, last), true
		},
	},
	{
		id:            models.ConditionSuicidalIdeation,
		indicator:     models.IndicatorSuicidalIdeation,
		label:         "Ideação suicida",
		defaultPoints: 50,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			imre := ctx.CurrentAssessment.ImreData
			if imre == nil || imre.Psiquiatria == nil || imre.Psiquiatria.IdeacaoSuicida == nil ||
				!*imre.Psiquiatria.IdeacaoSuicida {
				return "", false
			}
			return "Ideação suicida registrada na avaliação atual", true
		},
	},
	{
		id:            models.ConditionRescueMedicationOveruse,
		indicator:     models.IndicatorRescueMedication,
		label:         "Uso excessivo de medicação de resgate",
		defaultPoints: 25,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			if last, ok := latest(ctx, models.IndicatorRescueMedication); ok && last >= RescueOveruseWeeklyUses {
				return fmt.Sprintf("Medicação de resgate usada %.0f vezes por semana", last), true
			}
			if imre := ctx.CurrentAssessment.ImreData; imre != nil && imre.DorCronica != nil &&
				imre.DorCronica.UsoResgateSemanal != nil && *imre.DorCronica.UsoResgateSemanal >= RescueOveruseWeeklyUses {
				return fmt.Sprintf("Medicação de resgate usada %.0f vezes por semana", *imre.DorCronica.UsoResgateSemanal), true
			}
			return "", false
		},
	},
	{
		id:            models.ConditionMultipleAdjustments,
		indicator:     models.IndicatorAdjustments,
		label:         "Múltiplos ajustes de prescrição",
		defaultPoints: 20,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			n := ctx.Adjustments()
			if n < AdjustmentsConfluenceMin {
				return "", false
			}
			return fmt.Sprintf("%d ajustes de prescrição registrados", n), true
		},
	},
	{
		id:            models.ConditionProlongedNoChange,
		indicator:     models.IndicatorTimeWithoutChange,
		label:         "Tempo prolongado sem alteração",
		defaultPoints: 20,
		evaluate: func(ctx *models.PatientContext) (string, bool) {
			days := ctx.TimeContext.DaysSinceLastChange
			if days <= NoChangeConfluenceMinDays {
				return "", false
			}
			return fmt.Sprintf("%d dias sem alteração do protocolo", days), true
		},
	},
}

// DefaultPoints 返回条件的默认分值
func DefaultPoints(cond models.Condition) (float64, bool) {
	for _, c := range catalogue {
		if c.id == cond {
			return c.defaultPoints, true
		}
	}
	return 0, false
}

// lastTwo 返回指定类型最近两个采样的值（prev, last）
func lastTwo(ctx *models.PatientContext, t models.Indicator) (float64, float64, bool) {
	kpis := ctx.LatestOfType(t, 2)
	if len(kpis) < 2 {
		return 0, 0, false
	}
	return kpis[0].Value, kpis[1].Value, true
}

// latest 返回指定类型最近一个采样的值
func latest(ctx *models.PatientContext, t models.Indicator) (float64, bool) {
	kpis := ctx.LatestOfType(t, 1)
	if len(kpis) == 0 {
		return 0, false
	}
	return kpis[0].Value, true
}
