package lamah

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadSegments(t *testing.T) {
	path := writeFile(t, "Stream_dist.csv",
		"ID;NEXTDOWNID;dist_hdn;elev_diff;strm_slope\n"+
			"1;3;12.5;40;3.2\n"+
			"2;3;8;16;2\n"+
			"3;399;20;10;0.5\n")

	segments, err := ReadSegments(path)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, Segment{ID: 1, NextDownID: 3, Dist: 12.5, ElevDiff: 40}, segments[0])
	assert.Equal(t, Segment{ID: 2, NextDownID: 3, Dist: 8, ElevDiff: 16}, segments[1])
	// Raw slope is dropped, not carried over.
	assert.Zero(t, segments[2].Slope)
}

func TestReadSegments_ExtraColumnsIgnored(t *testing.T) {
	path := writeFile(t, "Stream_dist.csv",
		"ID;NEXTDOWNID;dist_hdn;elev_diff;strm_slope;basin_area\n"+
			"1;2;5;10;2;123.4\n")

	segments, err := ReadSegments(path)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, Segment{ID: 1, NextDownID: 2, Dist: 5, ElevDiff: 10}, segments[0])
}

func TestReadSegments_MissingColumn(t *testing.T) {
	path := writeFile(t, "Stream_dist.csv", "ID;NEXTDOWNID;dist_hdn\n1;2;5\n")

	_, err := ReadSegments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elev_diff")
}

func TestReadSegments_TruncatedRow(t *testing.T) {
	path := writeFile(t, "Stream_dist.csv",
		"ID;NEXTDOWNID;dist_hdn;elev_diff;strm_slope\n"+
			"1;2;10;30;3\n"+
			"5;7\n")

	_, err := ReadSegments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "short row")
}

func TestReadSegments_UnparsableValue(t *testing.T) {
	path := writeFile(t, "Stream_dist.csv",
		"ID;NEXTDOWNID;dist_hdn;elev_diff;strm_slope\n1;2;not-a-number;10;2\n")

	_, err := ReadSegments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dist_hdn")
}

func TestWriteReadAdjacency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adjacency.csv")
	segments := []Segment{
		{ID: 1, NextDownID: 3, Dist: 12.5, ElevDiff: 40, Slope: 3.2},
		{ID: 2, NextDownID: 3, Dist: 8, ElevDiff: 16, Slope: 2},
		{ID: 3, NextDownID: 399, Dist: 20.5, ElevDiff: 10.25, Slope: 0.5},
	}

	require.NoError(t, WriteAdjacency(path, segments))

	got, err := ReadAdjacency(path)
	require.NoError(t, err)
	assert.Equal(t, segments, got)
}

func TestPaths(t *testing.T) {
	assert.Equal(t,
		filepath.Join("raw", "B_basins_intermediate_all", "1_attributes", "Stream_dist.csv"),
		StreamDistPath("raw"))
	assert.Equal(t,
		filepath.Join("raw", "D_gauges", "2_timeseries", "hourly", "ID_399.csv"),
		HourlySeriesPath("raw", 399))
	assert.Equal(t, filepath.Join("processed", "adjacency.csv"), AdjacencyPath("processed"))
	assert.Equal(t, filepath.Join("processed", "statistics.csv"), StatisticsPath("processed"))
}

func TestHoursInYear(t *testing.T) {
	tests := []struct {
		year  int
		hours int
	}{
		{2000, 8784}, // leap, divisible by 400
		{2001, 8760},
		{2004, 8784},
		{1900, 8760}, // century, not leap
		{2016, 8784},
		{2017, 8760},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.hours, HoursInYear(tt.year), "year %d", tt.year)
	}
}
