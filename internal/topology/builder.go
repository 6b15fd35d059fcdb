package topology

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/hydrograph/lamah-dataset/internal/config"
	"github.com/hydrograph/lamah-dataset/internal/lamah"
	"github.com/hydrograph/lamah-dataset/internal/observability"
)

// Builder derives the pruned adjacency and per-gauge statistics artifacts
// from the raw LamaH-CE data.
type Builder struct {
	rawDir       string
	processedDir string
	outletID     int
	refStart     int
	refEnd       int
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// Result summarizes a completed (or skipped) topology build. It is served
// verbatim from the build-status HTTP endpoint.
type Result struct {
	Rebuilt        bool   `json:"rebuilt"`
	FeasibleGauges int    `json:"feasible_gauges"`
	ExcludedGauges int    `json:"excluded_gauges"`
	Edges          int    `json:"edges"`
	BypassEdges    int    `json:"bypass_edges"`
	AdjacencyPath  string `json:"adjacency_path"`
	StatisticsPath string `json:"statistics_path"`
}

// NewBuilder creates a Builder from the service configuration.
func NewBuilder(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		rawDir:       cfg.RawDir(),
		processedDir: cfg.ProcessedDir(),
		outletID:     cfg.OutletGaugeID,
		refStart:     cfg.RefStartYear,
		refEnd:       cfg.RefEndYear,
		logger:       logger,
		metrics:      metrics,
	}
}

// Ensure builds and persists the topology artifacts unless both already
// exist, in which case the cached artifacts are left untouched.
func (b *Builder) Ensure(ctx context.Context) (*Result, error) {
	adjPath := lamah.AdjacencyPath(b.processedDir)
	statsPath := lamah.StatisticsPath(b.processedDir)
	if fileExists(adjPath) && fileExists(statsPath) {
		b.logger.Info("topology artifacts present, skipping build",
			"adjacency", adjPath, "statistics", statsPath)
		return &Result{AdjacencyPath: adjPath, StatisticsPath: statsPath}, nil
	}
	return b.Build(ctx)
}

// Build runs the full topology pipeline: load the raw stream-segment table,
// collect the basin upstream of the outlet, filter gauges by data quality,
// remove infeasible gauges with bypass surgery, recompute slopes, and
// persist the adjacency and statistics tables.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	segments, err := lamah.ReadSegments(lamah.StreamDistPath(b.rawDir))
	if err != nil {
		return nil, err
	}
	graph := NewGraph(segments)
	connected := graph.Nodes()

	basin := graph.Upstream(b.outletID)
	for id := range basin {
		if !connected[id] {
			return nil, fmt.Errorf("upstream gauge %d not in stream-segment table; corrupt input", id)
		}
	}
	b.logger.Info("collected basin", "outlet", b.outletID,
		"basin_gauges", len(basin), "connected_gauges", len(connected))

	feasible, stats, err := b.filterGauges(ctx, basin)
	if err != nil {
		return nil, err
	}
	if !feasible[b.outletID] {
		return nil, fmt.Errorf("outlet gauge %d is not feasible; dataset unusable", b.outletID)
	}
	b.metrics.FeasibleGauges.Set(float64(len(feasible)))
	b.logger.Info("determined feasible gauges", "feasible", len(feasible))

	excluded := make([]int, 0, len(connected))
	for id := range connected {
		if !feasible[id] {
			excluded = append(excluded, id)
		}
	}
	sort.Ints(excluded)

	repairStart := time.Now()
	bypasses := 0
	for _, id := range excluded {
		bypasses += graph.Eliminate(id)
	}
	b.metrics.BypassEdges.Add(float64(bypasses))
	b.metrics.StageDuration.WithLabelValues("repair").Observe(time.Since(repairStart).Seconds())
	b.logger.Info("removed infeasible gauges",
		"excluded", len(excluded), "bypass_edges", bypasses)

	graph.RecomputeSlopes()
	graph.SortByID()

	persistStart := time.Now()
	if err := os.MkdirAll(b.processedDir, 0o755); err != nil {
		return nil, fmt.Errorf("create processed dir: %w", err)
	}
	adjPath := lamah.AdjacencyPath(b.processedDir)
	statsPath := lamah.StatisticsPath(b.processedDir)
	if err := lamah.WriteAdjacency(adjPath, graph.Edges()); err != nil {
		return nil, err
	}
	if err := lamah.WriteStatistics(statsPath, stats); err != nil {
		return nil, err
	}
	b.metrics.StageDuration.WithLabelValues("persist").Observe(time.Since(persistStart).Seconds())
	b.metrics.FinalEdges.Set(float64(len(graph.Edges())))
	b.logger.Info("persisted topology artifacts",
		"adjacency", adjPath, "statistics", statsPath, "edges", len(graph.Edges()))

	return &Result{
		Rebuilt:        true,
		FeasibleGauges: len(feasible),
		ExcludedGauges: len(excluded),
		Edges:          len(graph.Edges()),
		BypassEdges:    bypasses,
		AdjacencyPath:  adjPath,
		StatisticsPath: statsPath,
	}, nil
}

// filterGauges applies the feasibility filter to every basin gauge: the raw
// series must contain no negative or NaN discharge readings and must cover the
// reference period completely, hour by hour. Statistics are computed over
// the reference-period rows of gauges that pass.
func (b *Builder) filterGauges(ctx context.Context, basin map[int]bool) (map[int]bool, map[int]lamah.Statistics, error) {
	ids := make([]int, 0, len(basin))
	for id := range basin {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	expected := 0
	for year := b.refStart; year <= b.refEnd; year++ {
		expected += lamah.HoursInYear(year)
	}
	firstHour := lamah.Timestamp{Year: b.refStart, Month: 1, Day: 1}
	lastHour := lamah.Timestamp{Year: b.refEnd, Month: 12, Day: 31, Hour: 23}

	start := time.Now()
	feasible := make(map[int]bool)
	stats := make(map[int]lamah.Statistics)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		series, err := lamah.ReadSeries(lamah.HourlySeriesPath(b.rawDir, id))
		if err != nil {
			return nil, nil, err
		}
		if series.HasInvalidDischarge() {
			b.metrics.GaugesFiltered.WithLabelValues("invalid_discharge").Inc()
			b.logger.Debug("excluding gauge with invalid discharge", "gauge", id)
			continue
		}

		window := series.SliceYears(b.refStart, b.refEnd)
		if window.Len() != expected ||
			window.Times[0] != firstHour ||
			window.Times[window.Len()-1] != lastHour {
			b.metrics.GaugesFiltered.WithLabelValues("incomplete_coverage").Inc()
			b.logger.Debug("excluding gauge with incomplete coverage",
				"gauge", id, "rows", window.Len(), "expected", expected)
			continue
		}

		feasible[id] = true
		stats[id] = lamah.Summarize(window.Qobs)
		b.metrics.GaugesFiltered.WithLabelValues("feasible").Inc()
	}
	b.metrics.StageDuration.WithLabelValues("filter").Observe(time.Since(start).Seconds())
	return feasible, stats, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
