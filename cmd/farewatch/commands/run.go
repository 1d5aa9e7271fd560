package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/farewatch/farewatch/internal/config"
	"github.com/farewatch/farewatch/internal/metrics"
	"github.com/farewatch/farewatch/internal/notify"
	"github.com/farewatch/farewatch/internal/output"
	"github.com/farewatch/farewatch/internal/watcher"
	"github.com/farewatch/farewatch/pkg/logger"
)

func RunCmd() *cobra.Command {
	var (
		planPath string
		noNotify bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one search pass and report the results",
		Example: `  farewatch run
  farewatch run --plan plan.yaml --no-notify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(planPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log := logger.NewLogger(cfg.LogLevel).With("run_id", uuid.New().String())
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			reg := metrics.NewRegistry(metricsNamespace)

			flightCache := buildCache(cfg, log)
			defer flightCache.Close()

			w := watcher.NewWatcher(buildClient(cfg, log, reg), watcher.Config{
				Plan:     cfg.Plan,
				Currency: cfg.Currency,
				Cache:    flightCache,
				Logger:   log,
				Metrics:  reg,
			})

			log.Info("run started", "env", cfg.Env, "searches", cfg.Plan.SearchCount())

			result, err := w.Run(ctx)
			if err != nil {
				log.Error("run failed", "error", err)
				pushMetrics(ctx, cfg, reg, log)
				return fmt.Errorf("run failed: %w", err)
			}

			if err := output.JSON(result); err != nil {
				return err
			}

			if !noNotify {
				notify.New(cfg.WebhookURL, log, reg).Notify(ctx, result)
			}
			pushMetrics(ctx, cfg, reg, log)
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "YAML plan file (default $FAREWATCH_PLAN or the built-in plan)")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "Skip the webhook notification")

	return cmd
}
