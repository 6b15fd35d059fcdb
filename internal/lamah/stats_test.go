package lamah

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	// Sample standard deviation (n-1 divisor).
	assert.InDelta(t, 2.13809, s.Std, 1e-5)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
}

func TestSummarize_MedianOddCount(t *testing.T) {
	s := Summarize([]float64{5, 1, 3})
	assert.Equal(t, 3.0, s.Median)
}

func TestSummarize_ConstantSeries(t *testing.T) {
	s := Summarize([]float64{4, 4, 4, 4})

	assert.Equal(t, 4.0, s.Mean)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 4.0, s.Min)
	assert.Equal(t, 4.0, s.Median)
	assert.Equal(t, 4.0, s.Max)
}

func TestWriteReadStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statistics.csv")
	stats := map[int]Statistics{
		399: {Mean: 120.5, Std: 33.25, Min: 10, Median: 115, Max: 890},
		7:   {Mean: 1.5, Std: 0.5, Min: 0.25, Median: 1.5, Max: 3},
	}

	require.NoError(t, WriteStatistics(path, stats))

	got, err := ReadStatistics(path)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestReadStatistics_MissingColumn(t *testing.T) {
	path := writeFile(t, "statistics.csv", "ID,mean,std\n1,2,3\n")

	_, err := ReadStatistics(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "median")
}
