// Package lamah reads and writes the LamaH-CE hydrological dataset file
// formats.
//
// # Raw data
//
// The Zenodo archive (see config.DefaultArchiveURL) contains, among others,
// two sub-trees this project needs:
//
//	B_basins_intermediate_all/1_attributes   basin attribute tables
//	D_gauges/2_timeseries                    per-gauge discharge time series
//
// Raw tables are semicolon-delimited. Stream_dist.csv describes the stream
// network as directed segments: each row connects a gauge (ID) to its
// immediate downstream neighbor (NEXTDOWNID) with the hydrological distance
// along the stream (dist_hdn, km), the elevation difference (elev_diff, m),
// and a stream slope column that this project ignores and recomputes, since
// raw slope values become inconsistent once bypass edges merge segments.
//
// Hourly series live in D_gauges/2_timeseries/hourly/ID_<gauge>.csv with
// columns YYYY;MM;DD;hh;mm;qobs (plus extra columns that are ignored). qobs
// is the observed discharge in m³/s; negative values are error sentinels.
//
// # Processed artifacts
//
// The topology builder persists two comma-delimited tables: adjacency.csv
// (ID,NEXTDOWNID,dist_hdn,elev_diff,strm_slope) and statistics.csv
// (ID,mean,std,min,median,max), both sorted by ID.
package lamah

import (
	"fmt"
	"path/filepath"
)

// Sub-trees of the raw archive required by the pipeline.
const (
	AttributesSubtree = "B_basins_intermediate_all/1_attributes"
	TimeseriesSubtree = "D_gauges/2_timeseries"
)

// RequiredSubtrees lists the archive sub-trees that must exist locally
// before the pipeline can run.
func RequiredSubtrees() []string {
	return []string{AttributesSubtree, TimeseriesSubtree}
}

// StreamDistPath locates the raw stream-segment table under rawDir.
func StreamDistPath(rawDir string) string {
	return filepath.Join(rawDir, filepath.FromSlash(AttributesSubtree), "Stream_dist.csv")
}

// HourlySeriesPath locates a gauge's raw hourly discharge series under rawDir.
func HourlySeriesPath(rawDir string, gaugeID int) string {
	return filepath.Join(rawDir, filepath.FromSlash(TimeseriesSubtree), "hourly", fmt.Sprintf("ID_%d.csv", gaugeID))
}

// AdjacencyPath locates the persisted adjacency artifact under processedDir.
func AdjacencyPath(processedDir string) string {
	return filepath.Join(processedDir, "adjacency.csv")
}

// StatisticsPath locates the persisted statistics artifact under processedDir.
func StatisticsPath(processedDir string) string {
	return filepath.Join(processedDir, "statistics.csv")
}

// HoursInYear returns 8784 for leap years and 8760 otherwise.
func HoursInYear(year int) int {
	if IsLeapYear(year) {
		return 8784
	}
	return 8760
}

// IsLeapYear implements the Gregorian leap rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
