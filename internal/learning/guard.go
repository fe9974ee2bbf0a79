// Package learning 提供结果学习门控
//
// 门控只判断某次结果能否用于后续权重调整，调整过程本身不在本服务内
package learning

import "github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"

// MinDaysForLearning 结果与决策之间的最小因果延迟（天）
const MinDaysForLearning = 14

// Outcome 治疗结果
type Outcome struct {
	DaysElapsed int   `json:"daysElapsed"`
	Improved    *bool `json:"improved,omitempty"` // 必须是明确的布尔值
}

// learnableStates 可学习的状态
var learnableStates = map[models.ClinicalState]struct{}{
	models.StateImproving:     {},
	models.StateDeteriorating: {},
	models.StateAtLimit:       {},
	models.StateCritical:      {},
}

// ShouldLearn 是否允许从该结果学习
//
// STABLE 永远不学习（"没有变化"不提供因果信号）
func ShouldLearn(state models.ClinicalState, outcome Outcome) bool {
	if state == models.StateStable {
		return false
	}
	if _, ok := learnableStates[state]; !ok {
		return false
	}
	if outcome.DaysElapsed < MinDaysForLearning {
		return false
	}
	return outcome.Improved != nil
}
