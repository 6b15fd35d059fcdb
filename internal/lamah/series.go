package lamah

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// Timestamp is the calendar position of one hourly record.
type Timestamp struct {
	Year, Month, Day, Hour, Minute int
}

// Series holds one gauge's hourly discharge records in file order
// (chronological in LamaH-CE).
type Series struct {
	Times []Timestamp
	Qobs  []float64
}

// ReadSeries parses a semicolon-delimited hourly gauge file with columns
// YYYY;MM;DD;hh;mm;qobs. Extra columns are ignored.
func ReadSeries(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read series %s: header: %w", path, err)
	}
	cols, err := columnIndex(header, "YYYY", "MM", "DD", "hh", "mm", "qobs")
	if err != nil {
		return nil, fmt.Errorf("read series %s: %w", path, err)
	}

	s := &Series{}
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read series %s: %w", path, err)
		}
		ts, qobs, err := parseSeriesRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("read series %s: row %d: %w", path, line, err)
		}
		s.Times = append(s.Times, ts)
		s.Qobs = append(s.Qobs, qobs)
	}
	return s, nil
}

// Len returns the number of hourly records.
func (s *Series) Len() int { return len(s.Qobs) }

// HasInvalidDischarge reports whether any discharge reading is negative or
// NaN. LamaH-CE uses negative qobs values as error sentinels, and NaN would
// poison every statistic downstream.
func (s *Series) HasInvalidDischarge() bool {
	for _, q := range s.Qobs {
		if q < 0 || math.IsNaN(q) {
			return true
		}
	}
	return false
}

// SliceYears returns the records whose year falls in [from, to], preserving
// order. The returned series shares no backing storage obligations with the
// receiver beyond read-only use.
func (s *Series) SliceYears(from, to int) *Series {
	out := &Series{}
	for i, ts := range s.Times {
		if ts.Year >= from && ts.Year <= to {
			out.Times = append(out.Times, ts)
			out.Qobs = append(out.Qobs, s.Qobs[i])
		}
	}
	return out
}

// YearDischarge returns the discharge values recorded in the given year.
func (s *Series) YearDischarge(year int) []float64 {
	out := make([]float64, 0, HoursInYear(year))
	for i, ts := range s.Times {
		if ts.Year == year {
			out = append(out, s.Qobs[i])
		}
	}
	return out
}

func parseSeriesRow(row []string, cols map[string]int) (Timestamp, float64, error) {
	if err := checkRowWidth(row, cols); err != nil {
		return Timestamp{}, 0, err
	}
	var ts Timestamp
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"YYYY", &ts.Year},
		{"MM", &ts.Month},
		{"DD", &ts.Day},
		{"hh", &ts.Hour},
		{"mm", &ts.Minute},
	} {
		v, err := strconv.Atoi(row[cols[field.name]])
		if err != nil {
			return Timestamp{}, 0, fmt.Errorf("%s: %w", field.name, err)
		}
		*field.dst = v
	}
	qobs, err := strconv.ParseFloat(row[cols["qobs"]], 64)
	if err != nil {
		return Timestamp{}, 0, fmt.Errorf("qobs: %w", err)
	}
	return ts, qobs, nil
}
