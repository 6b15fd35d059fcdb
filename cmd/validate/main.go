// Command validate performs end-to-end integrity checks on built dataset
// artifacts: it opens the dataset over the processed adjacency and statistics
// tables plus the raw hourly series, then verifies index arithmetic, sample
// shapes and values, graph sharing, and normalization invertibility.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir /data/lamah \
//	  -years 2000-2017 \
//	  -window 24 -stride 1 -lead 6
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hydrograph/lamah-dataset/internal/dataset"
	"github.com/hydrograph/lamah-dataset/internal/lamah"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "", "base data directory containing raw/ and processed/")
	years := flag.String("years", "2000-2017", "year range (inclusive) or comma-separated list")
	window := flag.Int("window", 24, "input window size in hours")
	stride := flag.Int("stride", 1, "hours between consecutive sample starts")
	lead := flag.Int("lead", 6, "hours between window end and prediction target")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	yearList, err := parseYears(*years)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	p := dataset.Params{
		RawDir:       *dataDir + "/raw",
		ProcessedDir: *dataDir + "/processed",
		Years:        yearList,
		WindowSize:   *window,
		Stride:       *stride,
		LeadTime:     *lead,
	}
	if code := run(p); code != 0 {
		os.Exit(code)
	}
}

func run(p dataset.Params) int {
	fmt.Println("=== Dataset Integrity Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := dataset.Open(p, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateIndexArithmetic(d, p),
		validateSampleShapes(d, p),
		validateGraphSharing(d),
		validateNormalization(d),
	}

	fmt.Println()
	allPassed := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", ph.name, status)
	}

	fmt.Println()
	fmt.Printf("Dataset: %d gauges, %d years, %d samples\n",
		len(d.Gauges()), len(d.Years()), d.Len())

	for _, ph := range phases {
		if ph.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", ph.name)
		for i, e := range ph.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Index Arithmetic ──
// Per-year sample counts must follow the closed form, and every index must
// resolve to a sample without error.

func validateIndexArithmetic(d *dataset.Dataset, p dataset.Params) *phase {
	ph := &phase{name: "Phase 1: Index Arithmetic"}

	sizes := d.YearSizes()
	total := 0
	for i, year := range d.Years() {
		want := (lamah.HoursInYear(year)-p.WindowSize-p.LeadTime)/p.Stride + 1
		if sizes[i] != want {
			ph.errorf("year %d: size %d, closed form gives %d", year, sizes[i], want)
		}
		total += sizes[i]
	}
	if d.Len() != total {
		ph.errorf("Len() = %d, sum of year sizes = %d", d.Len(), total)
	}

	// Every index must be materializable, including both edges of each year.
	if _, err := d.Get(0); err != nil {
		ph.errorf("Get(0): %v", err)
	}
	if _, err := d.Get(d.Len() - 1); err != nil {
		ph.errorf("Get(%d): %v", d.Len()-1, err)
	}
	boundary := 0
	for i := range sizes {
		boundary += sizes[i]
		if boundary >= d.Len() {
			break
		}
		if _, err := d.Get(boundary - 1); err != nil {
			ph.errorf("Get(%d) at year-end boundary: %v", boundary-1, err)
		}
		if _, err := d.Get(boundary); err != nil {
			ph.errorf("Get(%d) at year-start boundary: %v", boundary, err)
		}
	}
	if _, err := d.Get(d.Len()); err == nil {
		ph.errorf("Get(%d) past the end succeeded, want error", d.Len())
	}

	return ph
}

// ── Phase 2: Sample Shapes ──

func validateSampleShapes(d *dataset.Dataset, p dataset.Params) *phase {
	ph := &phase{name: "Phase 2: Sample Shapes"}
	gauges := len(d.Gauges())

	// Spot-check a spread of indices rather than the full index space.
	for _, idx := range spotIndices(d.Len()) {
		s, err := d.Get(idx)
		if err != nil {
			ph.errorf("Get(%d): %v", idx, err)
			continue
		}
		if len(s.X) != gauges {
			ph.errorf("sample %d: %d input rows, want %d", idx, len(s.X), gauges)
			continue
		}
		for g := range s.X {
			if len(s.X[g]) != p.WindowSize {
				ph.errorf("sample %d gauge row %d: window length %d, want %d", idx, g, len(s.X[g]), p.WindowSize)
			}
		}
		if len(s.Y) != gauges {
			ph.errorf("sample %d: %d targets, want %d", idx, len(s.Y), gauges)
		}
	}
	return ph
}

// ── Phase 3: Graph Sharing ──
// All samples must reference one shared edge index and attribute set, with
// positions inside the gauge ordering.

func validateGraphSharing(d *dataset.Dataset) *phase {
	ph := &phase{name: "Phase 3: Graph Sharing"}
	gauges := len(d.Gauges())

	edgeIndex, edgeAttr := d.Graph()
	if len(edgeIndex[0]) != len(edgeIndex[1]) {
		ph.errorf("edge index rows disagree: %d vs %d", len(edgeIndex[0]), len(edgeIndex[1]))
	}
	if len(edgeAttr) != len(edgeIndex[0]) {
		ph.errorf("edge attributes: %d rows for %d edges", len(edgeAttr), len(edgeIndex[0]))
	}
	for i := range edgeIndex[0] {
		if edgeIndex[0][i] < 0 || edgeIndex[0][i] >= gauges || edgeIndex[1][i] < 0 || edgeIndex[1][i] >= gauges {
			ph.errorf("edge %d: position (%d→%d) outside [0,%d)", i, edgeIndex[0][i], edgeIndex[1][i], gauges)
		}
	}

	first, err := d.Get(0)
	if err != nil {
		ph.errorf("Get(0): %v", err)
		return ph
	}
	last, err := d.Get(d.Len() - 1)
	if err != nil {
		ph.errorf("Get(%d): %v", d.Len()-1, err)
		return ph
	}
	if len(first.EdgeAttr) > 0 && &first.EdgeAttr[0] != &last.EdgeAttr[0] {
		ph.errorf("edge attributes are copied per sample instead of shared")
	}
	if len(first.EdgeIndex[0]) > 0 && &first.EdgeIndex[0][0] != &last.EdgeIndex[0][0] {
		ph.errorf("edge index is copied per sample instead of shared")
	}
	return ph
}

// ── Phase 4: Normalization ──
// Normalize and Denormalize must be inverse, and normalizing a raw sample's
// target column then denormalizing must recover it.

func validateNormalization(d *dataset.Dataset) *phase {
	ph := &phase{name: "Phase 4: Normalization Inverse"}

	s, err := d.Get(0)
	if err != nil {
		ph.errorf("Get(0): %v", err)
		return ph
	}

	roundTrip := d.Denormalize(d.Normalize(s.X))
	for g := range s.X {
		for h := range s.X[g] {
			if !floatEq(s.X[g][h], roundTrip[g][h]) {
				ph.errorf("gauge row %d hour %d: %g round-trips to %g", g, h, s.X[g][h], roundTrip[g][h])
			}
		}
	}

	yBack := d.DenormalizeColumn(d.NormalizeColumn(s.Y))
	for g := range s.Y {
		if !floatEq(s.Y[g], yBack[g]) {
			ph.errorf("target row %d: %g round-trips to %g", g, s.Y[g], yBack[g])
		}
	}
	return ph
}

// ── Helpers ──

// spotIndices picks a handful of indices spread across the index space.
func spotIndices(n int) []int {
	if n <= 5 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	return []int{0, n / 4, n / 2, 3 * n / 4, n - 1}
}

func parseYears(s string) ([]int, error) {
	if from, to, ok := strings.Cut(s, "-"); ok {
		lo, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid year range %q", s)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil || hi < lo {
			return nil, fmt.Errorf("invalid year range %q", s)
		}
		years := make([]int, 0, hi-lo+1)
		for y := lo; y <= hi; y++ {
			years = append(years, y)
		}
		return years, nil
	}

	var years []int
	for _, part := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, y)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no years given")
	}
	return years, nil
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
