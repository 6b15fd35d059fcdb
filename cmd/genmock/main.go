// Command genmock generates a synthetic LamaH-CE raw data tree for local
// development and testing: a stream-segment table describing a small binary
// drainage tree rooted at the outlet gauge, and a deterministic hourly
// discharge series per gauge. The output is laid out exactly like the real
// archive, so the builder can run against it unchanged.
//
// Usage:
//
//	go run ./cmd/genmock -out data/raw -outlet 399 -depth 3 -start-year 2000 -end-year 2001
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hydrograph/lamah-dataset/internal/lamah"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the raw data tree")
	outlet := flag.Int("outlet", 399, "outlet gauge ID")
	depth := flag.Int("depth", 3, "depth of the generated binary drainage tree")
	startYear := flag.Int("start-year", 2000, "first year of generated hourly data")
	endYear := flag.Int("end-year", 2001, "last year of generated hourly data")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *endYear < *startYear {
		return fmt.Errorf("-end-year %d before -start-year %d", *endYear, *startYear)
	}
	if *depth < 1 || *depth > 8 {
		return fmt.Errorf("-depth %d out of range [1,8]", *depth)
	}

	segments := drainageTree(*outlet, *depth)
	if err := writeStreamDist(*out, segments); err != nil {
		return err
	}
	log.Printf("wrote stream-segment table: %d segments", len(segments))

	gauges := gaugeIDs(*outlet, segments)
	for _, id := range gauges {
		if err := writeHourlySeries(*out, id, *startYear, *endYear); err != nil {
			return err
		}
	}
	log.Printf("wrote hourly series for %d gauges, years %d-%d", len(gauges), *startYear, *endYear)
	log.Printf("raw data tree ready: %s", *out)
	return nil
}

// drainageTree builds a binary tree of stream segments draining into the
// outlet. Gauge IDs start at 1 and skip the outlet; geometry is derived from
// the ID so repeated runs produce identical tables.
func drainageTree(outlet, depth int) []lamah.Segment {
	var segments []lamah.Segment
	nextID := 1
	newID := func() int {
		if nextID == outlet {
			nextID++
		}
		id := nextID
		nextID++
		return id
	}

	// frontier holds the downstream gauge each new level drains into.
	frontier := []int{outlet}
	for level := 0; level < depth; level++ {
		var next []int
		for _, down := range frontier {
			for i := 0; i < 2; i++ {
				id := newID()
				segments = append(segments, lamah.Segment{
					ID:         id,
					NextDownID: down,
					Dist:       5 + float64(id%11),
					ElevDiff:   10 + float64(id%23),
				})
				next = append(next, id)
			}
		}
		frontier = next
	}

	for i := range segments {
		segments[i].Slope = segments[i].ElevDiff / segments[i].Dist
	}
	return segments
}

func gaugeIDs(outlet int, segments []lamah.Segment) []int {
	ids := []int{outlet}
	for _, s := range segments {
		ids = append(ids, s.ID)
	}
	return ids
}

func writeStreamDist(out string, segments []lamah.Segment) error {
	path := lamah.StreamDistPath(out)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("ID;NEXTDOWNID;dist_hdn;elev_diff;strm_slope\n")
	for _, s := range segments {
		fmt.Fprintf(&sb, "%d;%d;%g;%g;%g\n", s.ID, s.NextDownID, s.Dist, s.ElevDiff, s.Slope)
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// writeHourlySeries generates one gauge's discharge file. The signal is a
// daily sine with a gauge-specific base flow and phase, strictly positive so
// every generated gauge passes the feasibility filter.
func writeHourlySeries(out string, gaugeID, startYear, endYear int) error {
	path := lamah.HourlySeriesPath(out, gaugeID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("YYYY;MM;DD;hh;mm;qobs\n")

	base := 5 + float64(gaugeID%17)
	phase := float64(gaugeID%24) * math.Pi / 12

	hour := 0
	ts := time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)
	for ts.Year() <= endYear {
		q := base + 2*math.Sin(2*math.Pi*float64(hour)/24+phase)
		fmt.Fprintf(&sb, "%d;%d;%d;%d;%d;%.3f\n",
			ts.Year(), int(ts.Month()), ts.Day(), ts.Hour(), ts.Minute(), q)
		ts = ts.Add(time.Hour)
		hour++
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}
