package models

import "time"

// Indicator 指标类型（KPI 类型 + 决策目录中使用的派生指标）
//
// 决策目录只引用下面声明的常量，未知的指标字符串不会进入任何条件分支
type Indicator string

const (
	IndicatorCreatinine        Indicator = "creatinine"
	IndicatorGFR               Indicator = "gfr"
	IndicatorProteinuria       Indicator = "proteinuria"
	IndicatorCannabisDose      Indicator = "cannabis_dose"
	IndicatorPainScore         Indicator = "pain_score"
	IndicatorSideEffects       Indicator = "side_effects"
	IndicatorGAD7              Indicator = "gad7"
	IndicatorSuicidalIdeation  Indicator = "suicidal_ideation"
	IndicatorRescueMedication  Indicator = "rescue_medication"
	IndicatorAdjustments       Indicator = "adjustments"
	IndicatorTimeWithoutChange Indicator = "time_without_change"
)

// Trend KPI 趋势标记
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// KPI 单个临床指标采样
type KPI struct {
	Type  Indicator `json:"type"`
	Value float64   `json:"value"`
	Date  time.Time `json:"date"`
	Trend *Trend    `json:"trend,omitempty"` // 可选；为空时由同类型上一采样推导
}

// Prescription 处方记录（只用于统计调整次数和频率）
type Prescription struct {
	ID           string    `json:"id"`
	Medications  []string  `json:"medications"`
	ProtocolType string    `json:"protocolType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TimeContext 时间上下文（由调用方预先计算，按原样信任）
type TimeContext struct {
	TreatmentDuration   int        `json:"treatmentDuration"` // 治疗天数
	LastModification    *time.Time `json:"lastModification,omitempty"`
	ChangeFrequency     float64    `json:"changeFrequency"`
	DaysSinceLastChange int        `json:"daysSinceLastChange"`
}

// RenalData 肾内科评估子记录
type RenalData struct {
	Proteinuria *bool `json:"proteinuria,omitempty"`
}

// PsychiatricData 精神科评估子记录
type PsychiatricData struct {
	IdeacaoSuicida *bool `json:"ideacao_suicida,omitempty"`
}

// CannabisData 医用大麻评估子记录
type CannabisData struct {
	EfeitosAdversosAumentando *bool `json:"efeitosAdversosAumentando,omitempty"`
}

// ChronicPainData 慢性疼痛评估子记录
type ChronicPainData struct {
	UsoResgateSemanal *float64 `json:"usoResgateSemanal,omitempty"` // 每周急救药使用次数
}

// ImreData 按专科划分的嵌套评估数据（任何子记录都可能缺失）
type ImreData struct {
	Renal       *RenalData       `json:"renal,omitempty"`
	Psiquiatria *PsychiatricData `json:"psiquiatria,omitempty"`
	Cannabis    *CannabisData    `json:"cannabis,omitempty"`
	DorCronica  *ChronicPainData `json:"dorCronica,omitempty"`
}

// Assessment 当前评估快照
type Assessment struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	ImreData *ImreData `json:"imreData,omitempty"`
}

// PatientContext 引擎唯一输入（调用方所有，引擎只读）
type PatientContext struct {
	PatientID           string         `json:"patientId"`
	CurrentAssessment   Assessment     `json:"currentAssessment"`
	PrescriptionHistory []Prescription `json:"prescriptionHistory"` // 最新在前
	KPIHistory          []KPI          `json:"kpiHistory"`          // 按时间顺序，最新在后
	TimeContext         TimeContext    `json:"timeContext"`
}

// LatestOfType 返回指定类型最近的 n 个采样（按时间顺序，最新在后）
func (c *PatientContext) LatestOfType(t Indicator, n int) []KPI {
	var out []KPI
	for i := len(c.KPIHistory) - 1; i >= 0 && len(out) < n; i-- {
		if c.KPIHistory[i].Type == t {
			out = append(out, c.KPIHistory[i])
		}
	}
	// 反转为时间顺序
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PreviousOfType 返回历史中位于 index 之前的同类型采样
func (c *PatientContext) PreviousOfType(index int) (KPI, bool) {
	if index <= 0 || index >= len(c.KPIHistory) {
		return KPI{}, false
	}
	t := c.KPIHistory[index].Type
	for i := index - 1; i >= 0; i-- {
		if c.KPIHistory[i].Type == t {
			return c.KPIHistory[i], true
		}
	}
	return KPI{}, false
}

// Adjustments 处方调整次数
func (c *PatientContext) Adjustments() int {
	return len(c.PrescriptionHistory)
}
