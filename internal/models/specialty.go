package models

// Specialty 专科
type Specialty string

const (
	SpecialtyNefrologia   Specialty = "nefrologia"
	SpecialtyCannabis     Specialty = "cannabis"
	SpecialtyPsiquiatria  Specialty = "psiquiatria"
	SpecialtyDorCronica   Specialty = "dor_cronica"
	SpecialtyCardiologia  Specialty = "cardiologia"
	SpecialtyOdontologia  Specialty = "odontologia"
	SpecialtyDermatologia Specialty = "dermatologia"
	SpecialtyGeral        Specialty = "geral"
)

// AllSpecialties 所有已知专科
var AllSpecialties = []Specialty{
	SpecialtyNefrologia,
	SpecialtyCannabis,
	SpecialtyPsiquiatria,
	SpecialtyDorCronica,
	SpecialtyCardiologia,
	SpecialtyOdontologia,
	SpecialtyDermatologia,
	SpecialtyGeral,
}

// Condition 决策目录中的条件（权重表的键）
type Condition string

const (
	ConditionCreatinineRising        Condition = "creatinine_rising"
	ConditionGFRFalling              Condition = "gfr_falling"
	ConditionProteinuriaPositive     Condition = "proteinuria_positive"
	ConditionCannabisDoseEscalation  Condition = "cannabis_dose_escalation"
	ConditionSideEffectsRising       Condition = "side_effects_rising"
	ConditionGAD7Worsening           Condition = "gad7_worsening"
	ConditionSuicidalIdeation        Condition = "suicidal_ideation"
	ConditionRescueMedicationOveruse Condition = "rescue_medication_overuse"
	ConditionMultipleAdjustments     Condition = "multiple_adjustments"
	ConditionProlongedNoChange       Condition = "prolonged_no_change"
)

// AllConditions 所有条件（即决策目录声明顺序）
var AllConditions = []Condition{
	ConditionCreatinineRising,
	ConditionGFRFalling,
	ConditionProteinuriaPositive,
	ConditionCannabisDoseEscalation,
	ConditionSideEffectsRising,
	ConditionGAD7Worsening,
	ConditionSuicidalIdeation,
	ConditionRescueMedicationOveruse,
	ConditionMultipleAdjustments,
	ConditionProlongedNoChange,
}

// Thresholds 专科决策阈值
type Thresholds struct {
	MinConfidence  float64 `json:"minConfidence" yaml:"minConfidence"`
	ExhaustionDays int     `json:"exhaustionDays" yaml:"exhaustionDays"`
	MinConfluences int     `json:"minConfluences" yaml:"minConfluences"`
}

// SpecialtyConfig 专科配置
type SpecialtyConfig struct {
	Name       Specialty
	Indicators map[Indicator]struct{}
	Thresholds Thresholds
	Weights    map[Condition]float64
}

// HasIndicator 指标是否属于该专科
func (c *SpecialtyConfig) HasIndicator(ind Indicator) bool {
	_, ok := c.Indicators[ind]
	return ok
}

// Weight 返回条件权重，未配置时使用调用方提供的默认值
func (c *SpecialtyConfig) Weight(cond Condition, def float64) float64 {
	if w, ok := c.Weights[cond]; ok {
		return w
	}
	return def
}
