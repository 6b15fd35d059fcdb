// Package dataset serves fixed-size sliding-window samples over the pruned
// LamaH-CE drainage graph.
//
// A dataset is built once from the persisted topology artifacts and the raw
// hourly series, and is immutable afterwards: the graph structure, the
// normalization statistics, and one discharge matrix per configured year
// (gauges × hours) all live in memory for the dataset's lifetime. That
// upfront cost makes sample retrieval pure O(1) slice work, and makes
// concurrent reads by training-loop consumers safe without locking.
//
// Samples are addressed by a single flat index: the concatenation of each
// year's valid window offsets, in the order the years were configured.
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hydrograph/lamah-dataset/internal/lamah"
)

// ErrIndexOutOfRange is returned by Get for indexes outside [0, Len()).
var ErrIndexOutOfRange = errors.New("sample index out of range")

// Params configure dataset construction.
type Params struct {
	RawDir       string
	ProcessedDir string
	Years        []int
	WindowSize   int  // input window length, hours
	Stride       int  // offset between consecutive window starts, hours
	LeadTime     int  // gap between window end and target, hours; 1 means the target immediately follows
	Normalized   bool // normalize series at load time using the per-gauge statistics
}

func (p Params) validate() error {
	if len(p.Years) == 0 {
		return errors.New("dataset: at least one year required")
	}
	if p.WindowSize < 1 {
		return errors.New("dataset: window size must be at least 1")
	}
	if p.Stride < 1 {
		return errors.New("dataset: stride must be at least 1")
	}
	if p.LeadTime < 1 {
		return errors.New("dataset: lead time must be at least 1")
	}
	for _, year := range p.Years {
		if samplesInYear(year, p) < 1 {
			return fmt.Errorf("dataset: window size %d and lead time %d leave no samples in year %d",
				p.WindowSize, p.LeadTime, year)
		}
	}
	return nil
}

// samplesInYear is the number of valid window starting offsets in a year.
func samplesInYear(year int, p Params) int {
	return (lamah.HoursInYear(year)-p.WindowSize-p.LeadTime)/p.Stride + 1
}

// Dataset is the immutable in-memory dataset. All fields are built once by
// Open and only read afterwards.
type Dataset struct {
	params Params

	gauges    []int     // sorted gauge IDs; the node ordering of every sample
	edgeIndex [2][]int  // per edge: [0] source node position, [1] destination node position
	edgeAttr  [][]float64
	mean, std []float64 // per-gauge normalization statistics, aligned with gauges

	tensors   [][][]float64 // per year: gauges × hours-in-year discharge matrix
	yearSizes []int
}

// Open loads the persisted topology artifacts and every gauge's hourly
// series for the configured years, building the immutable dataset value.
func Open(p Params, logger *slog.Logger) (*Dataset, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	adjacency, err := lamah.ReadAdjacency(lamah.AdjacencyPath(p.ProcessedDir))
	if err != nil {
		return nil, err
	}
	stats, err := lamah.ReadStatistics(lamah.StatisticsPath(p.ProcessedDir))
	if err != nil {
		return nil, err
	}

	d := &Dataset{params: p}
	d.gauges = gaugeOrdering(adjacency)

	position := make(map[int]int, len(d.gauges))
	for i, id := range d.gauges {
		position[id] = i
	}

	d.edgeIndex[0] = make([]int, len(adjacency))
	d.edgeIndex[1] = make([]int, len(adjacency))
	d.edgeAttr = make([][]float64, len(adjacency))
	for i, seg := range adjacency {
		d.edgeIndex[0][i] = position[seg.ID]
		d.edgeIndex[1][i] = position[seg.NextDownID]
		d.edgeAttr[i] = []float64{seg.Dist, seg.ElevDiff, seg.Slope}
	}

	d.mean = make([]float64, len(d.gauges))
	d.std = make([]float64, len(d.gauges))
	for i, id := range d.gauges {
		s, ok := stats[id]
		if !ok {
			return nil, fmt.Errorf("dataset: gauge %d has no statistics; artifacts out of sync", id)
		}
		if s.Std == 0 {
			return nil, fmt.Errorf("dataset: gauge %d has zero discharge variance; cannot normalize", id)
		}
		d.mean[i] = s.Mean
		d.std[i] = s.Std
	}

	logger.Info("loading dataset into memory",
		"gauges", len(d.gauges), "edges", len(adjacency),
		"years", len(p.Years), "normalized", p.Normalized)

	d.tensors = make([][][]float64, len(p.Years))
	for j, year := range p.Years {
		d.tensors[j] = make([][]float64, len(d.gauges))
		d.yearSizes = append(d.yearSizes, samplesInYear(year, p))
	}
	for i, id := range d.gauges {
		series, err := lamah.ReadSeries(lamah.HourlySeriesPath(p.RawDir, id))
		if err != nil {
			return nil, err
		}
		for j, year := range p.Years {
			row := series.YearDischarge(year)
			if len(row) != lamah.HoursInYear(year) {
				return nil, fmt.Errorf("dataset: gauge %d covers %d hours of year %d, want %d",
					id, len(row), year, lamah.HoursInYear(year))
			}
			if p.Normalized {
				normalizeInPlace(row, d.mean[i], d.std[i])
			}
			d.tensors[j][i] = row
		}
	}

	return d, nil
}

// gaugeOrdering is the sorted union of all gauge IDs appearing in the
// adjacency table, as source or destination.
func gaugeOrdering(adjacency []lamah.Segment) []int {
	seen := make(map[int]bool)
	for _, seg := range adjacency {
		seen[seg.ID] = true
		seen[seg.NextDownID] = true
	}
	gauges := make([]int, 0, len(seen))
	for id := range seen {
		gauges = append(gauges, id)
	}
	sort.Ints(gauges)
	return gauges
}

// Len returns the total number of samples across all configured years.
func (d *Dataset) Len() int {
	total := 0
	for _, size := range d.yearSizes {
		total += size
	}
	return total
}

// Gauges returns the node ordering: sorted gauge IDs.
func (d *Dataset) Gauges() []int {
	out := make([]int, len(d.gauges))
	copy(out, d.gauges)
	return out
}

// Years returns the configured years in order.
func (d *Dataset) Years() []int {
	out := make([]int, len(d.params.Years))
	copy(out, d.params.Years)
	return out
}

// YearSizes returns the per-year sample counts, in configured-year order.
func (d *Dataset) YearSizes() []int {
	out := make([]int, len(d.yearSizes))
	copy(out, d.yearSizes)
	return out
}

// Graph returns the static edge index and edge attributes shared by every
// sample. Callers must treat both as read-only.
func (d *Dataset) Graph() ([2][]int, [][]float64) {
	return d.edgeIndex, d.edgeAttr
}

// Get materializes the sample at flat index idx: an input window of
// WindowSize hours per gauge, the target discharge LeadTime hours past the
// window end, and the shared graph structure. The window and target are
// subslices of the year matrix; no data is copied.
func (d *Dataset) Get(idx int) (Sample, error) {
	if idx < 0 || idx >= d.Len() {
		return Sample{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, d.Len())
	}

	yearPos, offset := d.decodeIndex(idx)
	tensor := d.tensors[yearPos]
	end := offset + d.params.WindowSize
	target := end + d.params.LeadTime - 1

	x := make([][]float64, len(d.gauges))
	y := make([]float64, len(d.gauges))
	for i, row := range tensor {
		x[i] = row[offset:end]
		y[i] = row[target]
	}
	return Sample{X: x, Y: y, EdgeIndex: d.edgeIndex, EdgeAttr: d.edgeAttr}, nil
}

// decodeIndex maps a flat sample index to (year position, intra-year hour
// offset) by sequential subtraction of per-year sizes. idx must already be
// bounds-checked; running past the last year means Len and yearSizes
// disagree, which is a logic defect, not an input error.
func (d *Dataset) decodeIndex(idx int) (yearPos, offset int) {
	for i, size := range d.yearSizes {
		if idx < size {
			return i, d.params.Stride * idx
		}
		idx -= size
	}
	panic("dataset: flat index beyond total sample count despite bounds check")
}
