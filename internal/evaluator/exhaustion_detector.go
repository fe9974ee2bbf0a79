package evaluator

import (
	"fmt"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"

	"go.uber.org/zap"
)

// 饱和检测阈值（全局常量，不随专科变化）
const (
	WarningDays             = 90
	AlertDays               = 180
	StableNoImprovementDays = 60
	MaxAdjustments          = 5
	MinImprovementRate      = 0.3
	MaxAdjustmentsPerMonth  = 2.0
)

// 各规则分值
const (
	stagnationAlertScore   = 30
	stagnationWarningScore = 15
	stableNoGainScore      = 25
	nonResponsiveScore     = 25
	churnScore             = 20
)

// 等级建议文本
const (
	adviceHigh   = "Protocolo possivelmente esgotado: reavaliar estratégia terapêutica."
	adviceMedium = "Sinais de saturação: acompanhar resposta e considerar ajuste."
	adviceLow    = "Sem sinais de saturação do protocolo atual."
)

// ExhaustionResult 饱和检测结果
type ExhaustionResult struct {
	Level          models.ExhaustionLevel `json:"level"`
	Score          int                    `json:"score"`
	Reasons        []string               `json:"reasons"`
	Recommendation string                 `json:"recommendation"`
}

// ExhaustionDetector 检测当前方案是否进入平台期
type ExhaustionDetector struct {
	logger *zap.Logger
}

// NewExhaustionDetector 创建饱和检测器
func NewExhaustionDetector(logger *zap.Logger) *ExhaustionDetector {
	return &ExhaustionDetector{logger: logger}
}

// Detect 检测（规则相互独立，分值累加）
func (d *ExhaustionDetector) Detect(ctx *models.PatientContext) ExhaustionResult {
	var res ExhaustionResult
	days := ctx.TimeContext.DaysSinceLastChange

	// 1. 长期未调整
	switch {
	case days > AlertDays:
		res.Score += stagnationAlertScore
		res.Reasons = append(res.Reasons, fmt.Sprintf("%d dias sem alteração (limite de alerta %d)", days, AlertDays))
	case days > WarningDays:
		res.Score += stagnationWarningScore
		res.Reasons = append(res.Reasons, fmt.Sprintf("%d dias sem alteração (limite de atenção %d)", days, WarningDays))
	}

	// 2. 稳定但没有改善
	t := tallyRecent(ctx)
	if t.stable >= 2 && t.improving == 0 && days > StableNoImprovementDays {
		res.Score += stableNoGainScore
		res.Reasons = append(res.Reasons, "Indicadores estáveis sem melhora recente")
	}

	// 3. 多次调整无响应
	adjustments := ctx.Adjustments()
	if adjustments >= MaxAdjustments && float64(t.improving) < float64(adjustments)*MinImprovementRate {
		res.Score += nonResponsiveScore
		res.Reasons = append(res.Reasons, fmt.Sprintf("%d ajustes com resposta insuficiente", adjustments))
	}

	// 4. 调整过于频繁
	if perMonth := adjustmentsPerMonth(adjustments, ctx.TimeContext.TreatmentDuration); perMonth > MaxAdjustmentsPerMonth {
		res.Score += churnScore
		res.Reasons = append(res.Reasons, fmt.Sprintf("%.1f ajustes por mês", perMonth))
	}

	switch {
	case res.Score >= 50:
		res.Level, res.Recommendation = models.ExhaustionHigh, adviceHigh
	case res.Score >= 30:
		res.Level, res.Recommendation = models.ExhaustionMedium, adviceMedium
	default:
		res.Level, res.Recommendation = models.ExhaustionLow, adviceLow
	}

	d.logger.Debug("Exhaustion detected",
		zap.String("patient_id", ctx.PatientID),
		zap.String("level", string(res.Level)),
		zap.Int("score", res.Score),
	)

	return res
}

// adjustmentsPerMonth 每月调整次数；疗程天数 <= 0 时为 0
func adjustmentsPerMonth(adjustments, durationDays int) float64 {
	if durationDays <= 0 {
		return 0
	}
	return float64(adjustments) / (float64(durationDays) / 30)
}
