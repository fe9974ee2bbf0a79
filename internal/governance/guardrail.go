package governance

import "github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"

// 全局护栏阈值
const (
	BlockUnder   = 40.0  // 低于该值不做任何判断
	MinRecommend = 80.0  // CONSIDER_CHANGE 下限
	MinUrgent    = 110.0 // URGENT_INTERVENTION 下限
)

// 建议行动窗口（天）
const (
	windowCritical = 7
	windowHigh     = 14
	windowDefault  = 30
)

// GuardRails 针对某一专科生效的护栏
type GuardRails struct {
	BlockUnder     float64
	MinAlert       float64
	MinRecommend   float64
	MinUrgent      float64
	MinConfluences int
}

// GuardRailsFor 根据专科阈值构建护栏，保证 BlockUnder <= MinAlert <= MinRecommend <= MinUrgent
func GuardRailsFor(profile *models.SpecialtyConfig) GuardRails {
	minAlert := max(profile.Thresholds.MinConfidence, BlockUnder)
	return GuardRails{
		BlockUnder:     BlockUnder,
		MinAlert:       minAlert,
		MinRecommend:   max(MinRecommend, minAlert),
		MinUrgent:      max(MinUrgent, minAlert),
		MinConfluences: profile.Thresholds.MinConfluences,
	}
}

// Decision 护栏判断结果
type Decision struct {
	Recommendation  models.Recommendation
	Urgency         models.UrgencyLevel
	ShouldAlert     bool
	IsBlocked       bool
	SafeToIntervene bool
}

// Decide 三层护栏：硬阻断 / 可报警 / 紧急
func (g GuardRails) Decide(confidence float64, confluences int, mode models.Mode) Decision {
	d := Decision{IsBlocked: confidence < g.BlockUnder}
	d.SafeToIntervene = confidence >= g.MinAlert && confluences >= g.MinConfluences && !d.IsBlocked

	switch {
	case d.SafeToIntervene && confidence >= g.MinUrgent:
		d.Recommendation, d.Urgency, d.ShouldAlert = models.RecommendationUrgentIntervention, models.UrgencyCritical, true
	case d.SafeToIntervene && confidence >= g.MinRecommend:
		d.Recommendation, d.Urgency, d.ShouldAlert = models.RecommendationConsiderChange, models.UrgencyHigh, true
	case confidence >= g.MinAlert:
		d.Recommendation, d.Urgency, d.ShouldAlert = models.RecommendationMonitorClosely, models.UrgencyMedium, mode.AllowsAlert()
	default:
		d.Recommendation, d.Urgency, d.ShouldAlert = models.RecommendationMaintain, models.UrgencyLow, false
	}

	// OBSERVE 模式无条件禁止报警
	if !mode.AllowsAlert() {
		d.ShouldAlert = false
	}
	return d
}

// ActionWindow 建议行动窗口
func ActionWindow(u models.UrgencyLevel) int {
	switch u {
	case models.UrgencyCritical:
		return windowCritical
	case models.UrgencyHigh:
		return windowHigh
	}
	return windowDefault
}
