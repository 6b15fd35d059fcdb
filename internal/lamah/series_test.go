package lamah

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seriesHeader = "YYYY;MM;DD;hh;mm;qobs\n"

func TestReadSeries(t *testing.T) {
	path := writeFile(t, "ID_1.csv", seriesHeader+
		"2000;1;1;0;0;1.5\n"+
		"2000;1;1;1;0;2.25\n"+
		"2001;12;31;23;0;0.75\n")

	s, err := ReadSeries(path)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	assert.Equal(t, Timestamp{Year: 2000, Month: 1, Day: 1, Hour: 0, Minute: 0}, s.Times[0])
	assert.Equal(t, Timestamp{Year: 2001, Month: 12, Day: 31, Hour: 23, Minute: 0}, s.Times[2])
	assert.Equal(t, []float64{1.5, 2.25, 0.75}, s.Qobs)
}

func TestReadSeries_ExtraColumnsIgnored(t *testing.T) {
	path := writeFile(t, "ID_1.csv",
		"YYYY;MM;DD;hh;mm;qobs;checked\n2000;1;1;0;0;3.5;1\n")

	s, err := ReadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5}, s.Qobs)
}

func TestReadSeries_UnparsableQobs(t *testing.T) {
	path := writeFile(t, "ID_1.csv", seriesHeader+"2000;1;1;0;0;n/a\n")

	_, err := ReadSeries(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qobs")
}

func TestReadSeries_TruncatedRow(t *testing.T) {
	path := writeFile(t, "ID_1.csv", seriesHeader+
		"2000;1;1;0;0;1.5\n"+
		"2000;1;1\n")

	_, err := ReadSeries(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "short row")
}

func TestSeriesHasInvalidDischarge(t *testing.T) {
	s := &Series{Qobs: []float64{1, 0, 2}}
	assert.False(t, s.HasInvalidDischarge())

	negative := &Series{Qobs: []float64{1, -999, 2}} // LamaH error sentinel
	assert.True(t, negative.HasInvalidDischarge())

	// NaN slips past a plain sign check but is just as unusable.
	gap := &Series{Qobs: []float64{1, math.NaN(), 2}}
	assert.True(t, gap.HasInvalidDischarge())
}

func TestSeriesSliceYears(t *testing.T) {
	s := &Series{
		Times: []Timestamp{
			{Year: 1999, Month: 12, Day: 31, Hour: 23},
			{Year: 2000, Month: 1, Day: 1, Hour: 0},
			{Year: 2001, Month: 1, Day: 1, Hour: 0},
			{Year: 2002, Month: 1, Day: 1, Hour: 0},
		},
		Qobs: []float64{9, 1, 2, 3},
	}

	sub := s.SliceYears(2000, 2001)
	require.Equal(t, 2, sub.Len())
	assert.Equal(t, []float64{1, 2}, sub.Qobs)
	assert.Equal(t, 2000, sub.Times[0].Year)
	assert.Equal(t, 2001, sub.Times[1].Year)
}

func TestSeriesYearDischarge(t *testing.T) {
	s := &Series{
		Times: []Timestamp{{Year: 2000}, {Year: 2000}, {Year: 2001}},
		Qobs:  []float64{1, 2, 3},
	}

	assert.Equal(t, []float64{1, 2}, s.YearDischarge(2000))
	assert.Equal(t, []float64{3}, s.YearDischarge(2001))
	assert.Empty(t, s.YearDischarge(1999))
}
