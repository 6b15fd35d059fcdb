package dataset

// Sample is one graph sample: per-gauge input windows, per-gauge targets,
// and the static drainage graph.
//
// X and Y view the dataset's year matrices, and EdgeIndex/EdgeAttr are the
// same objects across all samples — none of it may be mutated.
type Sample struct {
	X [][]float64 // node features: one WindowSize-hour discharge window per gauge
	Y []float64   // node targets: discharge LeadTime hours after the window end, per gauge

	EdgeIndex [2][]int    // [0] source and [1] destination node positions, per edge
	EdgeAttr  [][]float64 // per edge: distance, elevation difference, slope
}
