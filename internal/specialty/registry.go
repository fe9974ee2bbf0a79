// Package specialty 提供专科配置注册表
//
// 注册表在初始化后只读，无需加锁：
// - geral：默认专科，minConfidence 最低，覆盖全部指标
// - psiquiatria：minConfidence 最高（自杀风险保守策略）
// - 未知专科回退到 geral
package specialty

import (
	"fmt"
	"os"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"

	"gopkg.in/yaml.v3"
)

// crossSpecialty 所有专科共享的跨专科指标
var crossSpecialty = []models.Indicator{
	models.IndicatorAdjustments,
	models.IndicatorTimeWithoutChange,
}

// Registry 专科配置注册表
type Registry struct {
	profiles map[models.Specialty]*models.SpecialtyConfig
}

// NewRegistry 使用内置配置创建注册表
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[models.Specialty]*models.SpecialtyConfig)}
	for _, p := range builtinProfiles() {
		r.profiles[p.Name] = p
	}
	return r
}

// NewRegistryFromFile 使用内置配置创建注册表，并应用 YAML 覆盖文件
// path 为空时等价于 NewRegistry
func NewRegistryFromFile(path string) (*Registry, error) {
	r := NewRegistry()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	if err := r.applyOverrides(data); err != nil {
		return nil, err
	}
	return r, nil
}

// Get 返回专科配置；空值或未知专科回退到 geral
func (r *Registry) Get(s models.Specialty) *models.SpecialtyConfig {
	if p, ok := r.profiles[s]; ok {
		return p
	}
	return r.profiles[models.SpecialtyGeral]
}

// Specialties 按声明顺序返回所有专科
func (r *Registry) Specialties() []models.Specialty {
	out := make([]models.Specialty, 0, len(r.profiles))
	for _, s := range models.AllSpecialties {
		if _, ok := r.profiles[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// profileOverride YAML 覆盖项
type profileOverride struct {
	Thresholds *struct {
		MinConfidence  *float64 `yaml:"minConfidence"`
		ExhaustionDays *int     `yaml:"exhaustionDays"`
		MinConfluences *int     `yaml:"minConfluences"`
	} `yaml:"thresholds"`
	Weights map[string]float64 `yaml:"weights"`
}

// applyOverrides 应用覆盖（只允许已知专科和已知条件）
func (r *Registry) applyOverrides(data []byte) error {
	var overrides map[string]profileOverride
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse profiles file: %w", err)
	}

	known := make(map[models.Condition]struct{}, len(models.AllConditions))
	for _, c := range models.AllConditions {
		known[c] = struct{}{}
	}

	for name, o := range overrides {
		p, ok := r.profiles[models.Specialty(name)]
		if !ok {
			return fmt.Errorf("unknown specialty in profiles file: %s", name)
		}
		if o.Thresholds != nil {
			if o.Thresholds.MinConfidence != nil {
				p.Thresholds.MinConfidence = *o.Thresholds.MinConfidence
			}
			if o.Thresholds.ExhaustionDays != nil {
				p.Thresholds.ExhaustionDays = *o.Thresholds.ExhaustionDays
			}
			if o.Thresholds.MinConfluences != nil {
				p.Thresholds.MinConfluences = *o.Thresholds.MinConfluences
			}
		}
		for cond, w := range o.Weights {
			if _, ok := known[models.Condition(cond)]; !ok {
				return fmt.Errorf("unknown condition %q for specialty %s", cond, name)
			}
			p.Weights[models.Condition(cond)] = w
		}
	}
	return nil
}

func newProfile(
	name models.Specialty,
	thresholds models.Thresholds,
	indicators []models.Indicator,
	weights map[models.Condition]float64,
) *models.SpecialtyConfig {
	set := make(map[models.Indicator]struct{}, len(indicators)+len(crossSpecialty))
	for _, ind := range indicators {
		set[ind] = struct{}{}
	}
	for _, ind := range crossSpecialty {
		set[ind] = struct{}{}
	}
	if weights == nil {
		weights = make(map[models.Condition]float64)
	}
	return &models.SpecialtyConfig{
		Name:       name,
		Indicators: set,
		Thresholds: thresholds,
		Weights:    weights,
	}
}

// builtinProfiles 内置专科配置
func builtinProfiles() []*models.SpecialtyConfig {
	return []*models.SpecialtyConfig{
		newProfile(models.SpecialtyNefrologia,
			models.Thresholds{MinConfidence: 75, ExhaustionDays: 90, MinConfluences: 2},
			[]models.Indicator{models.IndicatorCreatinine, models.IndicatorGFR, models.IndicatorProteinuria},
			map[models.Condition]float64{
				models.ConditionCreatinineRising:    35,
				models.ConditionGFRFalling:          35,
				models.ConditionProteinuriaPositive: 25,
				models.ConditionMultipleAdjustments: 15,
				models.ConditionProlongedNoChange:   10,
			},
		),
		newProfile(models.SpecialtyCannabis,
			models.Thresholds{MinConfidence: 70, ExhaustionDays: 90, MinConfluences: 2},
			[]models.Indicator{models.IndicatorCannabisDose, models.IndicatorPainScore, models.IndicatorSideEffects},
			map[models.Condition]float64{
				models.ConditionCannabisDoseEscalation: 35,
				models.ConditionSideEffectsRising:      30,
			},
		),
		newProfile(models.SpecialtyPsiquiatria,
			models.Thresholds{MinConfidence: 85, ExhaustionDays: 60, MinConfluences: 2},
			[]models.Indicator{models.IndicatorGAD7, models.IndicatorSuicidalIdeation},
			map[models.Condition]float64{
				models.ConditionGAD7Worsening:     30,
				models.ConditionSuicidalIdeation:  50,
				models.ConditionProlongedNoChange: 15,
			},
		),
		newProfile(models.SpecialtyDorCronica,
			models.Thresholds{MinConfidence: 70, ExhaustionDays: 90, MinConfluences: 2},
			[]models.Indicator{models.IndicatorPainScore, models.IndicatorRescueMedication, models.IndicatorSideEffects},
			map[models.Condition]float64{
				models.ConditionRescueMedicationOveruse: 35,
				models.ConditionSideEffectsRising:       20,
			},
		),
		newProfile(models.SpecialtyCardiologia,
			models.Thresholds{MinConfidence: 75, ExhaustionDays: 120, MinConfluences: 2},
			[]models.Indicator{models.IndicatorCreatinine, models.IndicatorGFR},
			map[models.Condition]float64{
				models.ConditionCreatinineRising: 25,
				models.ConditionGFRFalling:       25,
			},
		),
		newProfile(models.SpecialtyOdontologia,
			models.Thresholds{MinConfidence: 60, ExhaustionDays: 60, MinConfluences: 2},
			[]models.Indicator{models.IndicatorPainScore, models.IndicatorSideEffects, models.IndicatorRescueMedication},
			nil,
		),
		newProfile(models.SpecialtyDermatologia,
			models.Thresholds{MinConfidence: 60, ExhaustionDays: 120, MinConfluences: 2},
			[]models.Indicator{models.IndicatorSideEffects},
			nil,
		),
		newProfile(models.SpecialtyGeral,
			models.Thresholds{MinConfidence: 55, ExhaustionDays: 120, MinConfluences: 2},
			[]models.Indicator{
				models.IndicatorCreatinine,
				models.IndicatorGFR,
				models.IndicatorProteinuria,
				models.IndicatorCannabisDose,
				models.IndicatorPainScore,
				models.IndicatorSideEffects,
				models.IndicatorGAD7,
				models.IndicatorSuicidalIdeation,
				models.IndicatorRescueMedication,
			},
			nil,
		),
	}
}
