package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/cache"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/config"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/governance"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/learning"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/metrics"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/models"
	"github.com/OrbitrumConnect/medcannlab5-sub003/internal/specialty"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "acdss",
		Short:         "Adaptive clinical decision support engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newAnalyzeCmd(cfg, logger),
		newLearnCmd(),
		newProfilesCmd(cfg),
	)
	return root
}

func newAnalyzeCmd(cfg *config.Config, logger *zap.Logger) *cobra.Command {
	var (
		file       string
		mode       string
		spec       string
		metricsOut string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a patient context JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := readPatientContext(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			analyzer, closeFn, err := buildAnalyzer(cfg, logger, reg)
			if err != nil {
				return err
			}
			defer closeFn()

			if spec == "" {
				spec = cfg.Engine.DefaultSpecialty
			}
			out, err := analyzer.Analyze(cmd.Context(), pc, models.Mode(mode), models.Specialty(spec))
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if metricsOut != "" {
				if err := dumpMetrics(reg, metricsOut); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "patient context JSON file (- for stdin)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "OBSERVE, ASSIST or RECOMMEND")
	cmd.Flags().StringVarP(&spec, "specialty", "s", "", "specialty profile name")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus text metrics to this file after the analysis")
	return cmd
}

// dumpMetrics 以 Prometheus 文本格式写出本次运行的指标
func dumpMetrics(g prometheus.Gatherer, path string) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer f.Close()

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func newLearnCmd() *cobra.Command {
	var (
		state    string
		days     int
		improved string
	)

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Check whether an outcome may be used for learning",
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome := learning.Outcome{DaysElapsed: days}
			if improved != "" {
				v, err := strconv.ParseBool(improved)
				if err != nil {
					return fmt.Errorf("invalid --improved value: %w", err)
				}
				outcome.Improved = &v
			}

			ok := learning.ShouldLearn(models.ClinicalState(state), outcome)
			return writeJSON(cmd.OutOrStdout(), map[string]bool{"shouldLearn": ok})
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "clinical state at decision time")
	cmd.Flags().IntVar(&days, "days", 0, "days elapsed since the decision")
	cmd.Flags().StringVar(&improved, "improved", "", "true or false; empty when unknown")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

func newProfilesCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List specialty profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := specialty.NewRegistryFromFile(cfg.Engine.ProfilesFile)
			if err != nil {
				return err
			}

			type profileView struct {
				Name       models.Specialty             `json:"name"`
				Thresholds models.Thresholds            `json:"thresholds"`
				Weights    map[models.Condition]float64 `json:"weights"`
			}
			views := make([]profileView, 0)
			for _, s := range registry.Specialties() {
				p := registry.Get(s)
				views = append(views, profileView{Name: p.Name, Thresholds: p.Thresholds, Weights: p.Weights})
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}
}

// buildAnalyzer 按配置组装编排器
func buildAnalyzer(
	cfg *config.Config,
	logger *zap.Logger,
	reg prometheus.Registerer,
) (*governance.Analyzer, func(), error) {
	registry, err := specialty.NewRegistryFromFile(cfg.Engine.ProfilesFile)
	if err != nil {
		return nil, nil, err
	}

	var store cache.Store[*models.ClinicalGovernanceOutput]
	closeFn := func() {}

	switch cfg.Engine.Cache.Backend {
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		// Redis 不可用不阻止分析，缓存读写失败会回落到直接计算
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, analysis will run uncached",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
		}
		store = cache.NewRedisStore[*models.ClinicalGovernanceOutput](client, cfg.Engine.Cache.KeyPrefix, cfg.Engine.Cache.TTL)
		closeFn = func() {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close redis", zap.Error(err))
			}
		}
	default:
		store = cache.NewMemoryStore[*models.ClinicalGovernanceOutput](cfg.Engine.Cache.TTL)
	}

	analyzer := governance.NewAnalyzer(registry, store, logger, governance.Options{
		KeyPrefix:   cfg.Engine.Cache.KeyPrefix,
		DefaultMode: models.Mode(cfg.Engine.DefaultMode),
		Metrics:     metrics.New(reg),
	})
	return analyzer, closeFn, nil
}

func readPatientContext(stdin io.Reader, file string) (*models.PatientContext, error) {
	var r io.Reader = stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open patient context: %w", err)
		}
		defer f.Close()
		r = f
	}

	var pc models.PatientContext
	if err := json.NewDecoder(r).Decode(&pc); err != nil {
		return nil, fmt.Errorf("failed to decode patient context: %w", err)
	}
	return &pc, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
