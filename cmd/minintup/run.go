package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/minintup/internal/adapters/http/api"
	"github.com/okian/minintup/internal/app"
	"github.com/okian/minintup/internal/config"
	"github.com/okian/minintup/pkg/logger"
	"github.com/okian/minintup/pkg/metrics"
)

// HTTP server and updater constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 10 * time.Second
	systemMetricsInterval     = 10 * time.Second
	progressInterval          = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Decorate an input record stream",
		Long: "Reads flat per-event records (JSON lines or CBOR, optionally .zst/.lz4 compressed), " +
			"assigns tag-and-probe roles and weights and writes one output record per event.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDecoration(cmd)
		},
	}
	f := cmd.Flags()
	f.String("config", "", "YAML config file (overrides MINI_CONFIG)")
	f.String("input", "", "input record stream, - for stdin")
	f.String("output", "", "output record stream, - for stdout")
	f.Int("workers", 0, "number of decoration workers")
	f.String("criterion", "", "tie-break for symmetric states: Eta|Pt|TrackIsoOverPt|DeltaRClosestBJet|MassClosestBJet")
	f.Bool("truth-tp", false, "use the truth-based Tag/Probe definition")
	f.Bool("susy-ss-tp", false, "take both tight trigger-matched leptons as Tag in turn")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// loadConfig layers the command line flags over the loaded configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	ctx := cmd.Context()
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	cfg, err := config.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputPath, _ = flags.GetString("input")
	}
	if flags.Changed("output") {
		cfg.OutputPath, _ = flags.GetString("output")
	}
	if flags.Changed("workers") {
		cfg.WorkerCount, _ = flags.GetInt("workers")
	}
	if flags.Changed("criterion") {
		cfg.AmbiguityCriterion, _ = flags.GetString("criterion")
	}
	if flags.Changed("susy-ss-tp") {
		cfg.UseSUSYSSTP, _ = flags.GetBool("susy-ss-tp")
	}
	if flags.Changed("truth-tp") {
		cfg.UseTruthTP, _ = flags.GetBool("truth-tp")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runDecoration(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Get()

	runner, err := app.NewFromConfig(cfg, log)
	if err != nil {
		return err
	}

	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(ctx, cfg.MetricsAddr, runner)
		go func() {
			log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "metrics server failed", logger.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
			}
		}()
	}
	go startSystemMetricsUpdater(bgCtx)
	go startProgressLogger(bgCtx, runner, log)

	sum, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("run %s: %w", sum.RunID, err)
	}
	return nil
}

// newMetricsServer serves the monitoring routes for the given run.
func newMetricsServer(ctx context.Context, addr string, stats api.StatsProvider) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(stats, metrics.Handler()).Register(ctx, mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater periodically publishes process metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// startProgressLogger logs the run counters until ctx is done.
func startProgressLogger(ctx context.Context, runner *app.Runner, log logger.Logger) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logProgress(ctx, runner.Stats(), log)
		}
	}
}

func logProgress(ctx context.Context, s app.Summary, log logger.Logger) {
	metrics.UpdateGeneratedEvents(s.Generated.Raw, s.Generated.Weighted)
	log.Info(ctx, "decoration progress",
		logger.String("run_id", s.RunID),
		logger.Uint64("read", s.Read),
		logger.Uint64("decorated", s.Decorated),
		logger.Uint64("duplicates", s.Duplicates),
		logger.Duration("elapsed", s.Elapsed),
	)
}
