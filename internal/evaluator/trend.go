package evaluator

import "github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"

// Direction 单个采样的临床方向
type Direction string

const (
	DirectionImproving     Direction = "improving"
	DirectionDeteriorating Direction = "deteriorating"
	DirectionStable        Direction = "stable"
	DirectionUnknown       Direction = "unknown"
)

// polarity 指标极性：+1 升高为好转，-1 升高为恶化
// 不在表中的指标（如剂量）没有临床方向
var polarity = map[models.Indicator]int{
	models.IndicatorGFR:              +1,
	models.IndicatorCreatinine:       -1,
	models.IndicatorProteinuria:      -1,
	models.IndicatorPainScore:        -1,
	models.IndicatorSideEffects:      -1,
	models.IndicatorGAD7:             -1,
	models.IndicatorSuicidalIdeation: -1,
	models.IndicatorRescueMedication: -1,
}

// sampleTrend 返回采样趋势；没有 trend 标记时与同类型上一采样比较
func sampleTrend(ctx *models.PatientContext, index int) (models.Trend, bool) {
	kpi := ctx.KPIHistory[index]
	if kpi.Trend != nil {
		return *kpi.Trend, true
	}

	prev, ok := ctx.PreviousOfType(index)
	if !ok {
		return "", false
	}
	switch {
	case kpi.Value > prev.Value:
		return models.TrendUp, true
	case kpi.Value < prev.Value:
		return models.TrendDown, true
	default:
		return models.TrendStable, true
	}
}

// sampleDirection 按指标极性将采样归类为好转/恶化/稳定
// trend=stable 无论指标类型都视为稳定
func sampleDirection(ctx *models.PatientContext, index int) Direction {
	trend, ok := sampleTrend(ctx, index)
	if !ok {
		return DirectionUnknown
	}
	if trend == models.TrendStable {
		return DirectionStable
	}

	p, ok := polarity[ctx.KPIHistory[index].Type]
	if !ok {
		return DirectionUnknown
	}

	up := trend == models.TrendUp
	if (up && p > 0) || (!up && p < 0) {
		return DirectionImproving
	}
	return DirectionDeteriorating
}

// TrendIndicator 参与分类的单个指标
type TrendIndicator struct {
	Type      models.Indicator `json:"type"`
	Value     float64          `json:"value"`
	Direction Direction        `json:"direction"`
	Synthetic bool             `json:"synthetic,omitempty"`
}

// trendTally 方向计数
type trendTally struct {
	improving     int
	deteriorating int
	stable        int
	indicators    []TrendIndicator
}

// recentWindow 分类时检查的最近采样数
const recentWindow = 3

// tallyRecent 统计最近 recentWindow 个采样的方向
func tallyRecent(ctx *models.PatientContext) trendTally {
	var t trendTally

	start := len(ctx.KPIHistory) - recentWindow
	if start < 0 {
		start = 0
	}
	for i := start; i < len(ctx.KPIHistory); i++ {
		dir := sampleDirection(ctx, i)
		switch dir {
		case DirectionImproving:
			t.improving++
		case DirectionDeteriorating:
			t.deteriorating++
		case DirectionStable:
			t.stable++
		default:
			continue
		}
		t.indicators = append(t.indicators, TrendIndicator{
			Type:      ctx.KPIHistory[i].Type,
			Value:     ctx.KPIHistory[i].Value,
			Direction: dir,
		})
	}
	return t
}
