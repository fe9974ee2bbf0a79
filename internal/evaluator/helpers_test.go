package evaluator

import (
	"time"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"
)

var baseDate = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// kpi 构建采样（day 为相对 baseDate 的天数）
func kpi(t models.Indicator, value float64, day int) models.KPI {
	return models.KPI{Type: t, Value: value, Date: baseDate.AddDate(0, 0, day)}
}

func kpiWithTrend(t models.Indicator, value float64, day int, trend models.Trend) models.KPI {
	k := kpi(t, value, day)
	k.Trend = &trend
	return k
}

func prescriptions(n int) []models.Prescription {
	out := make([]models.Prescription, n)
	for i := range out {
		out[i] = models.Prescription{
			ID:           "rx-" + string(rune('a'+i)),
			Medications:  []string{"med"},
			ProtocolType: "standard",
			CreatedAt:    baseDate.AddDate(0, 0, -i*10),
		}
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}

func newContext(kpis ...models.KPI) *models.PatientContext {
	return &models.PatientContext{
		PatientID:         "patient-1",
		CurrentAssessment: models.Assessment{ID: "assessment-1", Date: baseDate},
		KPIHistory:        kpis,
	}
}
