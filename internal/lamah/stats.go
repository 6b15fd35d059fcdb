package lamah

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics summarizes one gauge's discharge over the reference period.
// Mean and Std parameterize the per-gauge normalization transform.
type Statistics struct {
	Mean   float64
	Std    float64 // sample standard deviation
	Min    float64
	Median float64
	Max    float64
}

// Summarize computes discharge summary statistics for one gauge.
func Summarize(values []float64) Statistics {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Statistics{
		Mean:   stat.Mean(values, nil),
		Std:    stat.StdDev(values, nil),
		Min:    floats.Min(values),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Max:    floats.Max(values),
	}
}

// WriteStatistics persists per-gauge statistics as a comma-delimited table
// sorted by gauge ID.
func WriteStatistics(path string, stats map[int]Statistics) error {
	ids := make([]int, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ID", "mean", "std", "min", "median", "max"}); err != nil {
		return fmt.Errorf("write statistics header: %w", err)
	}
	for _, id := range ids {
		s := stats[id]
		record := []string{
			strconv.Itoa(id),
			formatFloat(s.Mean),
			formatFloat(s.Std),
			formatFloat(s.Min),
			formatFloat(s.Median),
			formatFloat(s.Max),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write statistics row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	return f.Close()
}

// ReadStatistics loads a persisted statistics table keyed by gauge ID.
func ReadStatistics(path string) (map[int]Statistics, error) {
	rows, header, err := readTable(path, ',')
	if err != nil {
		return nil, fmt.Errorf("read statistics: %w", err)
	}

	cols, err := columnIndex(header, "ID", "mean", "std", "min", "median", "max")
	if err != nil {
		return nil, fmt.Errorf("read statistics %s: %w", path, err)
	}

	stats := make(map[int]Statistics, len(rows))
	for i, row := range rows {
		id, err := strconv.Atoi(row[cols["ID"]])
		if err != nil {
			return nil, fmt.Errorf("read statistics %s: row %d: ID: %w", path, i+2, err)
		}
		var s Statistics
		for _, field := range []struct {
			name string
			dst  *float64
		}{
			{"mean", &s.Mean},
			{"std", &s.Std},
			{"min", &s.Min},
			{"median", &s.Median},
			{"max", &s.Max},
		} {
			v, err := strconv.ParseFloat(row[cols[field.name]], 64)
			if err != nil {
				return nil, fmt.Errorf("read statistics %s: row %d: %s: %w", path, i+2, field.name, err)
			}
			*field.dst = v
		}
		stats[id] = s
	}
	return stats, nil
}
