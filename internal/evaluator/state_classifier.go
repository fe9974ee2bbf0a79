package evaluator

import (
	"fmt"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"

	"go.uber.org/zap"
)

// LongStableDays 超过该天数未调整时追加一个合成的稳定指标
const LongStableDays = 90

// StateResult 状态分类结果
type StateResult struct {
	State      models.ClinicalState   `json:"state"`
	Confidence models.ConfidenceLevel `json:"confidence"`
	Reasoning  string                 `json:"reasoning"`
	Indicators []TrendIndicator       `json:"indicators"`
}

// StateClassifier 根据最近指标历史推导临床趋势状态
type StateClassifier struct {
	logger *zap.Logger
}

// NewStateClassifier 创建状态分类器
func NewStateClassifier(logger *zap.Logger) *StateClassifier {
	return &StateClassifier{logger: logger}
}

// Classify 分类
//
// 规则（按顺序，首个匹配生效）：
//  1. deteriorating >= 2 → DETERIORATING/HIGH
//  2. deteriorating == 1 且 improving == 0 → DETERIORATING/MEDIUM
//  3. improving >= 2 → IMPROVING/HIGH
//  4. improving == 1 且 deteriorating == 0 → IMPROVING/MEDIUM
//  5. stable >= 2 或 improving == deteriorating → STABLE/HIGH
//  6. 其他 → STABLE/LOW
//
// deteriorating >= 3 时强制 CRITICAL/VERY_HIGH；没有可分类采样时为规则 6
func (c *StateClassifier) Classify(ctx *models.PatientContext) StateResult {
	t := tallyRecent(ctx)

	if ctx.TimeContext.DaysSinceLastChange > LongStableDays {
		t.stable++
		t.indicators = append(t.indicators, TrendIndicator{
			Type:      models.IndicatorTimeWithoutChange,
			Value:     float64(ctx.TimeContext.DaysSinceLastChange),
			Direction: DirectionStable,
			Synthetic: true,
		})
	}

	res := StateResult{Indicators: t.indicators}
	switch {
	case t.deteriorating >= 3:
		res.State, res.Confidence = models.StateCritical, models.ConfidenceVeryHigh
	case t.deteriorating >= 2:
		res.State, res.Confidence = models.StateDeteriorating, models.ConfidenceHigh
	case t.deteriorating == 1 && t.improving == 0:
		res.State, res.Confidence = models.StateDeteriorating, models.ConfidenceMedium
	case t.improving >= 2:
		res.State, res.Confidence = models.StateImproving, models.ConfidenceHigh
	case t.improving == 1 && t.deteriorating == 0:
		res.State, res.Confidence = models.StateImproving, models.ConfidenceMedium
	case len(t.indicators) == 0:
		// 没有可分类的采样
		res.State, res.Confidence = models.StateStable, models.ConfidenceLow
	case t.stable >= 2 || t.improving == t.deteriorating:
		res.State, res.Confidence = models.StateStable, models.ConfidenceHigh
	default:
		res.State, res.Confidence = models.StateStable, models.ConfidenceLow
	}

	res.Reasoning = fmt.Sprintf("%d indicador(es) em melhora, %d em piora, %d estável(is)",
		t.improving, t.deteriorating, t.stable)

	c.logger.Debug("State classified",
		zap.String("patient_id", ctx.PatientID),
		zap.String("state", string(res.State)),
		zap.String("confidence", string(res.Confidence)),
	)

	return res
}
