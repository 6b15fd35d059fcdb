// Command builder produces the processed LamaH-CE dataset artifacts: it
// downloads the raw archive when absent, derives the gauge drainage graph for
// the configured outlet, and writes the adjacency and per-gauge statistics
// tables. A small HTTP sidecar exposes health, readiness, build status, and
// Prometheus metrics while the build runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hydrograph/lamah-dataset/internal/acquire"
	httpadapter "github.com/hydrograph/lamah-dataset/internal/adapter/http"
	kafkaadapter "github.com/hydrograph/lamah-dataset/internal/adapter/kafka"
	"github.com/hydrograph/lamah-dataset/internal/config"
	"github.com/hydrograph/lamah-dataset/internal/observability"
	"github.com/hydrograph/lamah-dataset/internal/topology"
)

// buildState tracks the outcome of the build for the HTTP sidecar. It is
// ready once artifacts exist on disk.
type buildState struct {
	mu     sync.Mutex
	result *topology.Result
	err    error
}

func (s *buildState) set(result *topology.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.err = err
}

func (s *buildState) CheckReadiness(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.result == nil {
		return fmt.Errorf("build in progress")
	}
	return nil
}

func (s *buildState) BuildStatus() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	return s.result
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	state := &buildState{}
	srv := httpadapter.NewServer(cfg.HTTPAddr, state, state, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := run(ctx, cfg, logger, metrics, state)

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, state *buildState) int {
	start := time.Now()
	metrics.BuildRunning.Set(1)
	defer metrics.BuildRunning.Set(0)

	acquirer := acquire.New(cfg.ArchiveURL, cfg.RawDir(), logger, metrics)
	if err := acquirer.Ensure(ctx); err != nil {
		logger.Error("raw data acquisition failed", "error", err)
		state.set(nil, err)
		return 1
	}

	builder := topology.NewBuilder(cfg, logger, metrics)
	result, err := builder.Ensure(ctx)
	if err != nil {
		logger.Error("topology build failed", "error", err)
		state.set(nil, err)
		return 1
	}
	state.set(result, nil)

	logger.Info("dataset artifacts ready",
		"rebuilt", result.Rebuilt,
		"feasible_gauges", result.FeasibleGauges,
		"excluded_gauges", result.ExcludedGauges,
		"edges", result.Edges,
		"adjacency", result.AdjacencyPath,
		"statistics", result.StatisticsPath)

	if cfg.KafkaEnabled {
		notify(ctx, cfg, logger, result, time.Since(start))
	}
	return 0
}

// notify publishes a build event. The artifacts are already on disk, so a
// publish failure is logged rather than failing the build.
func notify(ctx context.Context, cfg *config.Config, logger *slog.Logger, result *topology.Result, elapsed time.Duration) {
	writer := kafkaadapter.NewWriter(cfg, logger)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()

	event := kafkaadapter.BuildEvent{
		OutletGaugeID:  cfg.OutletGaugeID,
		Rebuilt:        result.Rebuilt,
		FeasibleGauges: result.FeasibleGauges,
		ExcludedGauges: result.ExcludedGauges,
		Edges:          result.Edges,
		BypassEdges:    result.BypassEdges,
		AdjacencyPath:  result.AdjacencyPath,
		StatisticsPath: result.StatisticsPath,
		Duration:       elapsed.Seconds(),
		CompletedAt:    time.Now().UTC(),
	}
	if err := writer.Publish(ctx, event); err != nil {
		logger.Error("build event publish failed", "error", err)
	}
}
