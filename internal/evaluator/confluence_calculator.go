package evaluator

import (
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"

	"go.uber.org/zap"
)

// BaseScore 中性基础分（累加器无上限）
const BaseScore = 35.0

// ConfluenceResult 证据计分结果
type ConfluenceResult struct {
	Confluences []models.Confluence `json:"confluences"`
	TotalScore  float64             `json:"totalScore"`
}

// ConfluenceCalculator 专科感知的证据计分器
type ConfluenceCalculator struct {
	logger *zap.Logger
}

// NewConfluenceCalculator 创建计分器
func NewConfluenceCalculator(logger *zap.Logger) *ConfluenceCalculator {
	return &ConfluenceCalculator{logger: logger}
}

// Calculate 按目录顺序扫描条件并累加专科加权分值
//
// 不属于专科指标集的条件直接跳过；输出顺序为目录声明顺序
func (c *ConfluenceCalculator) Calculate(ctx *models.PatientContext, profile *models.SpecialtyConfig) ConfluenceResult {
	res := ConfluenceResult{
		Confluences: []models.Confluence{},
		TotalScore:  BaseScore,
	}

	for _, cond := range catalogue {
		// 1. 专科过滤
		if !profile.HasIndicator(cond.indicator) {
			continue
		}

		// 2. 评估触发条件
		reasoning, triggered := cond.evaluate(ctx)
		if !triggered {
			continue
		}

		// 3. 专科加权
		points := profile.Weight(cond.id, cond.defaultPoints)
		res.TotalScore += points
		res.Confluences = append(res.Confluences, models.Confluence{
			Indicator: cond.indicator,
			Condition: cond.id,
			Points:    points,
			Reasoning: cond.label + ": " + reasoning,
			Weight:    points / cond.defaultPoints,
		})

		c.logger.Debug("Confluence triggered",
			zap.String("patient_id", ctx.PatientID),
			zap.String("condition", string(cond.id)),
			zap.Float64("points", points),
		)
	}

	return res
}
