package lamah

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Segment is one directed stream edge from gauge ID to its immediate
// downstream gauge NextDownID.
type Segment struct {
	ID         int
	NextDownID int
	Dist       float64 // hydrological distance along the stream, km
	ElevDiff   float64 // elevation difference, m
	Slope      float64 // ElevDiff / Dist, always recomputed after surgery
}

// ReadSegments parses the raw semicolon-delimited Stream_dist.csv table.
// The raw strm_slope column is intentionally dropped; slopes are recomputed
// from dist_hdn and elev_diff after bypass surgery.
func ReadSegments(path string) ([]Segment, error) {
	rows, header, err := readTable(path, ';')
	if err != nil {
		return nil, fmt.Errorf("read stream segments: %w", err)
	}

	cols, err := columnIndex(header, "ID", "NEXTDOWNID", "dist_hdn", "elev_diff")
	if err != nil {
		return nil, fmt.Errorf("read stream segments %s: %w", path, err)
	}

	segments := make([]Segment, 0, len(rows))
	for i, row := range rows {
		seg, err := parseSegmentRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("read stream segments %s: row %d: %w", path, i+2, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// ReadAdjacency parses a persisted comma-delimited adjacency table,
// including the recomputed slope column.
func ReadAdjacency(path string) ([]Segment, error) {
	rows, header, err := readTable(path, ',')
	if err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}

	cols, err := columnIndex(header, "ID", "NEXTDOWNID", "dist_hdn", "elev_diff", "strm_slope")
	if err != nil {
		return nil, fmt.Errorf("read adjacency %s: %w", path, err)
	}

	segments := make([]Segment, 0, len(rows))
	for i, row := range rows {
		seg, err := parseSegmentRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("read adjacency %s: row %d: %w", path, i+2, err)
		}
		seg.Slope, err = strconv.ParseFloat(row[cols["strm_slope"]], 64)
		if err != nil {
			return nil, fmt.Errorf("read adjacency %s: row %d: strm_slope: %w", path, i+2, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// WriteAdjacency persists segments as the comma-delimited adjacency artifact.
// Callers are expected to pass segments already sorted by ID.
func WriteAdjacency(path string, segments []Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write adjacency: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ID", "NEXTDOWNID", "dist_hdn", "elev_diff", "strm_slope"}); err != nil {
		return fmt.Errorf("write adjacency header: %w", err)
	}
	for _, seg := range segments {
		record := []string{
			strconv.Itoa(seg.ID),
			strconv.Itoa(seg.NextDownID),
			formatFloat(seg.Dist),
			formatFloat(seg.ElevDiff),
			formatFloat(seg.Slope),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write adjacency row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write adjacency: %w", err)
	}
	return f.Close()
}

func parseSegmentRow(row []string, cols map[string]int) (Segment, error) {
	if err := checkRowWidth(row, cols); err != nil {
		return Segment{}, err
	}
	id, err := strconv.Atoi(row[cols["ID"]])
	if err != nil {
		return Segment{}, fmt.Errorf("ID: %w", err)
	}
	next, err := strconv.Atoi(row[cols["NEXTDOWNID"]])
	if err != nil {
		return Segment{}, fmt.Errorf("NEXTDOWNID: %w", err)
	}
	dist, err := strconv.ParseFloat(row[cols["dist_hdn"]], 64)
	if err != nil {
		return Segment{}, fmt.Errorf("dist_hdn: %w", err)
	}
	elev, err := strconv.ParseFloat(row[cols["elev_diff"]], 64)
	if err != nil {
		return Segment{}, fmt.Errorf("elev_diff: %w", err)
	}
	return Segment{ID: id, NextDownID: next, Dist: dist, ElevDiff: elev}, nil
}

// readTable reads a delimited file and returns its data rows and header.
func readTable(path string, comma rune) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1 // raw tables carry trailing columns we ignore

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty table", path)
	}
	return records[1:], records[0], nil
}

// checkRowWidth rejects rows too short to hold every required column. Rows
// may still carry extra trailing fields beyond the required ones.
func checkRowWidth(row []string, cols map[string]int) error {
	for _, i := range cols {
		if i >= len(row) {
			return fmt.Errorf("short row: %d fields", len(row))
		}
	}
	return nil
}

// columnIndex maps required column names to their positions in the header.
func columnIndex(header []string, names ...string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	cols := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[name] = i
	}
	return cols, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
