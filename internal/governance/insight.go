package governance

import (
	"fmt"
	"strings"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/evaluator"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"
)

// topConfluences 叙述中引用的证据条数（按目录顺序取前 N 条）
const topConfluences = 3

// composeInsight 根据各子结果生成叙述
func composeInsight(
	pc *models.PatientContext,
	profile *models.SpecialtyConfig,
	state models.ClinicalState,
	stateRes evaluator.StateResult,
	exhaustion evaluator.ExhaustionResult,
	confluences []models.Confluence,
	confidence float64,
	decision Decision,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Estado clínico %s (confiança %s): %s.", state, stateRes.Confidence, stateRes.Reasoning)

	if len(confluences) == 0 {
		b.WriteString(" Nenhuma confluência identificada")
	} else {
		fmt.Fprintf(&b, " %d confluência(s)", len(confluences))
		n := min(len(confluences), topConfluences)
		labels := make([]string, 0, n)
		for _, c := range confluences[:n] {
			labels = append(labels, c.Reasoning)
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(labels, "; "))
	}
	fmt.Fprintf(&b, ", escore %.0f para %s.", confidence, profile.Name)

	fmt.Fprintf(&b, " Saturação %s: %s", exhaustion.Level, exhaustion.Recommendation)

	if days := pc.TimeContext.DaysSinceLastChange; profile.Thresholds.ExhaustionDays > 0 && days > profile.Thresholds.ExhaustionDays {
		fmt.Fprintf(&b, " Protocolo sem alteração há %d dias, acima da janela de %d dias da especialidade.",
			days, profile.Thresholds.ExhaustionDays)
	}

	if decision.IsBlocked {
		b.WriteString(" Evidência insuficiente: análise abaixo do limiar mínimo.")
	} else if !decision.SafeToIntervene && decision.Recommendation != models.RecommendationMaintain {
		b.WriteString(" Evidência ainda insuficiente para intervenção.")
	}

	return b.String()
}
