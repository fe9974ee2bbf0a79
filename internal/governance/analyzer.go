// Package governance 提供临床决策编排（analyzePatientContext）
//
// 流程：
// - 按 (patientId, assessmentId) 查询缓存，命中直接返回
// - 未命中时并行运行状态分类、饱和检测、证据计分
// - 应用护栏阈值得出建议/紧急程度/是否报警
// - 写入缓存后返回
//
// 同一缓存键的并发未命中通过 singleflight 合并为一次计算
package governance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/cache"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/evaluator"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/metrics"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/specialty"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultKeyPrefix 默认缓存键前缀
const DefaultKeyPrefix = "acdss:analysis:"

// analysisNamespace analysisId 的 UUIDv5 命名空间
var analysisNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("acdss.analysis"))

// StateClassifier 状态分类接口
type StateClassifier interface {
	Classify(pc *models.PatientContext) evaluator.StateResult
}

// ExhaustionDetector 饱和检测接口
type ExhaustionDetector interface {
	Detect(pc *models.PatientContext) evaluator.ExhaustionResult
}

// ConfluenceScorer 证据计分接口
type ConfluenceScorer interface {
	Calculate(pc *models.PatientContext, profile *models.SpecialtyConfig) evaluator.ConfluenceResult
}

// Options 编排器可选配置（零值字段使用默认实现）
type Options struct {
	KeyPrefix   string
	DefaultMode models.Mode

	Classifier StateClassifier
	Detector   ExhaustionDetector
	Scorer     ConfluenceScorer

	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Analyzer 临床决策编排器
type Analyzer struct {
	registry *specialty.Registry
	store    cache.Store[*models.ClinicalGovernanceOutput]
	logger   *zap.Logger

	classifier StateClassifier
	detector   ExhaustionDetector
	scorer     ConfluenceScorer
	metrics    *metrics.Metrics

	keyPrefix   string
	defaultMode models.Mode
	now         func() time.Time
	group       singleflight.Group
}

// NewAnalyzer 创建编排器
func NewAnalyzer(
	registry *specialty.Registry,
	store cache.Store[*models.ClinicalGovernanceOutput],
	logger *zap.Logger,
	opts Options,
) *Analyzer {
	a := &Analyzer{
		registry:    registry,
		store:       store,
		logger:      logger,
		classifier:  opts.Classifier,
		detector:    opts.Detector,
		scorer:      opts.Scorer,
		metrics:     opts.Metrics,
		keyPrefix:   opts.KeyPrefix,
		defaultMode: opts.DefaultMode,
		now:         opts.Now,
	}

	if a.classifier == nil {
		a.classifier = evaluator.NewStateClassifier(logger)
	}
	if a.detector == nil {
		a.detector = evaluator.NewExhaustionDetector(logger)
	}
	if a.scorer == nil {
		a.scorer = evaluator.NewConfluenceCalculator(logger)
	}
	if a.keyPrefix == "" {
		a.keyPrefix = DefaultKeyPrefix
	}
	if _, ok := models.ParseMode(string(a.defaultMode)); !ok {
		a.defaultMode = models.ModeAssist
	}
	if a.now == nil {
		a.now = time.Now
	}

	return a
}

// CacheKey 构建缓存键
func (a *Analyzer) CacheKey(patientID, assessmentID string) string {
	return fmt.Sprintf("%s%s:%s", a.keyPrefix, patientID, assessmentID)
}

// Analyze 分析患者上下文
//
// mode 为空或未知时使用默认模式；specialty 为空或未知时使用 geral
// 唯一可能返回的错误是 ctx 取消/超时，此时不写缓存
func (a *Analyzer) Analyze(
	ctx context.Context,
	pc *models.PatientContext,
	mode models.Mode,
	spec models.Specialty,
) (*models.ClinicalGovernanceOutput, error) {
	mode = a.resolveMode(mode)
	key := a.CacheKey(pc.PatientID, pc.CurrentAssessment.ID)

	// 1. 缓存命中直接返回
	if out, ok := a.lookup(ctx, key); ok {
		return hitCopy(out), nil
	}

	// 2. 未命中：合并同键并发计算
	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		// 等待期间其他调用可能已写入缓存
		if out, ok := a.lookup(ctx, key); ok {
			return cachedResult{out: out, hit: true}, nil
		}

		out := a.compute(pc, mode, spec)

		// 发起者截止时间已过：不写缓存，但结果仍交给同键的其他调用方
		if ctx.Err() != nil {
			return cachedResult{out: out}, nil
		}
		if err := a.store.Set(ctx, key, out); err != nil {
			a.logger.Warn("Failed to store analysis in cache",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return cachedResult{out: out}, nil
	})
	if err != nil {
		return nil, err
	}

	// 每个调用方只看自己的 ctx
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := v.(cachedResult)
	if res.hit {
		return hitCopy(res.out), nil
	}
	return res.out.Clone(), nil
}

// Invalidate 删除某患者的全部缓存结果
func (a *Analyzer) Invalidate(ctx context.Context, patientID string) error {
	if err := a.store.ClearPrefix(ctx, a.keyPrefix+patientID+":"); err != nil {
		return fmt.Errorf("failed to invalidate patient cache: %w", err)
	}
	return nil
}

// Reset 清空缓存
func (a *Analyzer) Reset(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

type cachedResult struct {
	out *models.ClinicalGovernanceOutput
	hit bool
}

// lookup 查询缓存；缓存故障不影响分析，直接回落到计算
func (a *Analyzer) lookup(ctx context.Context, key string) (*models.ClinicalGovernanceOutput, bool) {
	out, err := a.store.Get(ctx, key)
	switch {
	case err == nil && out != nil:
		a.metrics.RecordCacheLookup(metrics.CacheHit)
		a.logger.Debug("Analysis cache hit", zap.String("key", key))
		return out, true
	case err == nil, errors.Is(err, cache.ErrCacheMiss):
		a.metrics.RecordCacheLookup(metrics.CacheMiss)
	default:
		a.metrics.RecordCacheLookup(metrics.CacheError)
		a.logger.Warn("Failed to read analysis cache",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return nil, false
}

// hitCopy 命中时返回副本，只把 metadata.cacheHit 置为 true
func hitCopy(out *models.ClinicalGovernanceOutput) *models.ClinicalGovernanceOutput {
	cp := out.Clone()
	cp.Metadata.CacheHit = true
	return cp
}

func (a *Analyzer) resolveMode(mode models.Mode) models.Mode {
	if mode == "" {
		return a.defaultMode
	}
	if m, ok := models.ParseMode(string(mode)); ok {
		return m
	}
	a.logger.Warn("Unknown mode, using default",
		zap.String("mode", string(mode)),
		zap.String("default", string(a.defaultMode)),
	)
	return a.defaultMode
}

// compute 完整计算（纯函数，除时间戳和耗时外只依赖输入）
func (a *Analyzer) compute(pc *models.PatientContext, mode models.Mode, spec models.Specialty) *models.ClinicalGovernanceOutput {
	start := a.now()
	profile := a.registry.Get(spec)

	// 1. 三个子组件相互独立，并行运行
	var (
		stateRes      evaluator.StateResult
		exhaustionRes evaluator.ExhaustionResult
		confluenceRes evaluator.ConfluenceResult
	)
	var g errgroup.Group
	g.Go(recovered(func() { stateRes = a.classifier.Classify(pc) }))
	g.Go(recovered(func() { exhaustionRes = a.detector.Detect(pc) }))
	g.Go(recovered(func() { confluenceRes = a.scorer.Calculate(pc, profile) }))
	if err := g.Wait(); err != nil {
		// 子组件的 panic 在调用方 goroutine 中重新抛出
		var cp *componentPanic
		if errors.As(err, &cp) {
			panic(cp.value)
		}
		panic(err)
	}

	// 2. 护栏判断
	confidence := confluenceRes.TotalScore
	decision := GuardRailsFor(profile).Decide(confidence, len(confluenceRes.Confluences), mode)

	// 3. 稳定但方案已饱和视为平台期
	state := stateRes.State
	if state == models.StateStable && exhaustionRes.Level == models.ExhaustionHigh {
		state = models.StateAtLimit
	}

	confluences := confluenceRes.Confluences
	if confluences == nil {
		confluences = []models.Confluence{}
	}

	out := &models.ClinicalGovernanceOutput{
		ShouldAlert:           decision.ShouldAlert,
		Recommendation:        decision.Recommendation,
		Confidence:            confidence,
		State:                 state,
		ExhaustionLevel:       exhaustionRes.Level,
		UrgencyLevel:          decision.Urgency,
		Confluences:           confluences,
		ContextualInsight:     composeInsight(pc, profile, state, stateRes, exhaustionRes, confluences, confidence, decision),
		SuggestedActionWindow: ActionWindow(decision.Urgency),
		IsBlocked:             decision.IsBlocked,
		SafeToIntervene:       decision.SafeToIntervene,
		Metadata: models.OutputMetadata{
			AnalysisID: analysisID(pc, mode, profile.Name),
			Timestamp:  start,
			Mode:       mode,
			Specialty:  profile.Name,
			CacheHit:   false,
		},
	}

	elapsed := a.now().Sub(start)
	out.Metadata.ProcessingTimeMs = elapsed.Milliseconds()

	a.metrics.RecordAnalysis(string(out.Recommendation), string(mode), elapsed)
	if out.ShouldAlert {
		a.metrics.RecordAlert(string(out.UrgencyLevel))
	}

	a.logger.Info("Patient analysis completed",
		zap.String("patient_id", pc.PatientID),
		zap.String("assessment_id", pc.CurrentAssessment.ID),
		zap.String("specialty", string(profile.Name)),
		zap.String("mode", string(mode)),
		zap.String("recommendation", string(out.Recommendation)),
		zap.Float64("confidence", out.Confidence),
		zap.Bool("should_alert", out.ShouldAlert),
		zap.Duration("duration", elapsed),
	)

	return out
}

// analysisID 由分析身份派生的确定性 ID
func analysisID(pc *models.PatientContext, mode models.Mode, spec models.Specialty) string {
	name := fmt.Sprintf("%s:%s:%s:%s", pc.PatientID, pc.CurrentAssessment.ID, mode, spec)
	return uuid.NewSHA1(analysisNamespace, []byte(name)).String()
}

// componentPanic 子组件 goroutine 中捕获的 panic
type componentPanic struct {
	value interface{}
}

func (p *componentPanic) Error() string {
	return fmt.Sprintf("evaluator panic: %v", p.value)
}

// recovered 将 panic 转为 errgroup 错误
func recovered(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &componentPanic{value: r}
			}
		}()
		fn()
		return nil
	}
}
