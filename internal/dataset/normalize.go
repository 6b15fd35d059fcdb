package dataset

import "gonum.org/v1/gonum/floats"

// Normalize maps physical discharge to normalized units per gauge:
// (x − mean) / std, broadcast along the gauge dimension. Rows of x must
// follow the dataset's gauge ordering. The input is not modified.
func (d *Dataset) Normalize(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		r := make([]float64, len(row))
		copy(r, row)
		normalizeInPlace(r, d.mean[i], d.std[i])
		out[i] = r
	}
	return out
}

// Denormalize is the exact inverse of Normalize: std × x + mean per gauge.
// Predictions and targets come back in m³/s.
func (d *Dataset) Denormalize(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		r := make([]float64, len(row))
		copy(r, row)
		floats.Scale(d.std[i], r)
		floats.AddConst(d.mean[i], r)
		out[i] = r
	}
	return out
}

// NormalizeColumn normalizes one value per gauge, e.g. a target vector.
func (d *Dataset) NormalizeColumn(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = (v - d.mean[i]) / d.std[i]
	}
	return out
}

// DenormalizeColumn is the inverse of NormalizeColumn.
func (d *Dataset) DenormalizeColumn(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = d.std[i]*v + d.mean[i]
	}
	return out
}

func normalizeInPlace(row []float64, mean, std float64) {
	floats.AddConst(-mean, row)
	floats.Scale(1/std, row)
}
