package models

import "time"

// Mode 运行模式（OBSERVE 禁止报警）
type Mode string

const (
	ModeObserve   Mode = "OBSERVE"
	ModeAssist    Mode = "ASSIST"
	ModeRecommend Mode = "RECOMMEND"
)

// ParseMode 解析模式字符串，未知值返回 false
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeObserve, ModeAssist, ModeRecommend:
		return Mode(s), true
	}
	return "", false
}

// AllowsAlert 当前模式是否允许报警
func (m Mode) AllowsAlert() bool {
	return m == ModeAssist || m == ModeRecommend
}

// ClinicalState 临床趋势状态
type ClinicalState string

const (
	StateStable        ClinicalState = "STABLE"
	StateImproving     ClinicalState = "IMPROVING"
	StateDeteriorating ClinicalState = "DETERIORATING"
	StateAtLimit       ClinicalState = "AT_LIMIT"
	StateCritical      ClinicalState = "CRITICAL"
)

// ConfidenceLevel 状态分类置信度
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "LOW"
	ConfidenceMedium   ConfidenceLevel = "MEDIUM"
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceVeryHigh ConfidenceLevel = "VERY_HIGH"
)

// ExhaustionLevel 方案饱和程度
type ExhaustionLevel string

const (
	ExhaustionLow    ExhaustionLevel = "LOW"
	ExhaustionMedium ExhaustionLevel = "MEDIUM"
	ExhaustionHigh   ExhaustionLevel = "HIGH"
)

// Recommendation 建议（按升级顺序声明）
type Recommendation string

const (
	RecommendationMaintain           Recommendation = "MAINTAIN"
	RecommendationMonitorClosely     Recommendation = "MONITOR_CLOSELY"
	RecommendationConsiderChange     Recommendation = "CONSIDER_CHANGE"
	RecommendationUrgentIntervention Recommendation = "URGENT_INTERVENTION"
)

// Rank 建议的升级序号（MAINTAIN < MONITOR < CONSIDER < URGENT）
func (r Recommendation) Rank() int {
	switch r {
	case RecommendationMonitorClosely:
		return 1
	case RecommendationConsiderChange:
		return 2
	case RecommendationUrgentIntervention:
		return 3
	}
	return 0
}

// UrgencyLevel 紧急程度
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "LOW"
	UrgencyMedium   UrgencyLevel = "MEDIUM"
	UrgencyHigh     UrgencyLevel = "HIGH"
	UrgencyCritical UrgencyLevel = "CRITICAL"
)

// Confluence 一条计分证据
type Confluence struct {
	Indicator Indicator `json:"indicator"`
	Condition Condition `json:"condition"`
	Points    float64   `json:"points"`
	Reasoning string    `json:"reasoning"`
	Weight    float64   `json:"weight"`
}

// OutputMetadata 输出元数据
type OutputMetadata struct {
	AnalysisID       string    `json:"analysisId"`
	Timestamp        time.Time `json:"timestamp"`
	Mode             Mode      `json:"mode"`
	Specialty        Specialty `json:"specialty"`
	CacheHit         bool      `json:"cacheHit"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
}

// ClinicalGovernanceOutput 引擎唯一输出（构建后不再修改）
//
// Confidence 不做上限截断，百分比显示由展示层处理
type ClinicalGovernanceOutput struct {
	ShouldAlert           bool            `json:"shouldAlert"`
	Recommendation        Recommendation  `json:"recommendation"`
	Confidence            float64         `json:"confidence"`
	State                 ClinicalState   `json:"state"`
	ExhaustionLevel       ExhaustionLevel `json:"exhaustionLevel"`
	UrgencyLevel          UrgencyLevel    `json:"urgencyLevel"`
	Confluences           []Confluence    `json:"confluences"`
	ContextualInsight     string          `json:"contextualInsight"`
	SuggestedActionWindow int             `json:"suggestedActionWindow"` // 天
	IsBlocked             bool            `json:"isBlocked"`
	SafeToIntervene       bool            `json:"safeToIntervene"`
	Metadata              OutputMetadata  `json:"metadata"`
}

// Clone 深拷贝输出，避免缓存中的对象被调用方修改
func (o *ClinicalGovernanceOutput) Clone() *ClinicalGovernanceOutput {
	if o == nil {
		return nil
	}
	cp := *o
	if o.Confluences != nil {
		cp.Confluences = make([]Confluence, len(o.Confluences))
		copy(cp.Confluences, o.Confluences)
	}
	return &cp
}
