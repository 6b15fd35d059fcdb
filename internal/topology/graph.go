// Package topology builds the pruned drainage graph for the LamaH-CE basin:
// upstream traversal from the outlet gauge, data-quality filtering, and
// bypass surgery that removes infeasible gauges while preserving
// connectivity and path-summed edge attributes.
package topology

import (
	"sort"

	"github.com/hydrograph/lamah-dataset/internal/lamah"
)

// Graph is a directed drainage network held as a parallel-edge list. Edges
// point from a gauge to its immediate downstream neighbor. Parallel edges
// are legal: bypass surgery can produce several distinct paths between the
// same pair of gauges, and all of them are kept.
type Graph struct {
	edges []lamah.Segment
}

// NewGraph wraps segments in a mutable graph. The slice is owned by the
// graph afterwards.
func NewGraph(segments []lamah.Segment) *Graph {
	return &Graph{edges: segments}
}

// Edges returns the current edge list.
func (g *Graph) Edges() []lamah.Segment { return g.edges }

// Nodes returns the set of gauges appearing as source or destination of any
// edge.
func (g *Graph) Nodes() map[int]bool {
	nodes := make(map[int]bool)
	for _, e := range g.edges {
		nodes[e.ID] = true
		nodes[e.NextDownID] = true
	}
	return nodes
}

// Upstream returns the set of gauges whose flow eventually reaches outlet,
// including outlet itself. It walks the reverse adjacency (downstream →
// upstream) with an explicit stack; the stream network is assumed acyclic,
// but the visited set makes the walk terminate regardless.
func (g *Graph) Upstream(outlet int) map[int]bool {
	predecessors := make(map[int][]int)
	for _, e := range g.edges {
		predecessors[e.NextDownID] = append(predecessors[e.NextDownID], e.ID)
	}

	visited := map[int]bool{outlet: true}
	stack := []int{outlet}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, pred := range predecessors[id] {
			if !visited[pred] {
				visited[pred] = true
				stack = append(stack, pred)
			}
		}
	}
	return visited
}

// Eliminate removes gauge id from the graph, bridging every predecessor to
// every successor with a bypass edge whose distance and elevation difference
// are the sums of the two removed segments. Returns the number of bypass
// edges synthesized.
//
// Eliminations operate on the live edge set: a bypass edge created here is
// visible to later eliminations, which makes the final graph independent of
// the order in which a set of gauges is eliminated — chains of eliminated
// gauges collapse into a single summed edge either way.
func (g *Graph) Eliminate(id int) int {
	var incoming, outgoing, rest []lamah.Segment
	for _, e := range g.edges {
		switch {
		case e.NextDownID == id:
			incoming = append(incoming, e)
		case e.ID == id:
			outgoing = append(outgoing, e)
		default:
			rest = append(rest, e)
		}
	}

	created := 0
	for _, in := range incoming {
		for _, out := range outgoing {
			if in.ID == out.NextDownID {
				// Only possible on cyclic input, which is unsupported;
				// dropping the self-loop beats keeping a nonsense edge.
				continue
			}
			rest = append(rest, lamah.Segment{
				ID:         in.ID,
				NextDownID: out.NextDownID,
				Dist:       in.Dist + out.Dist,
				ElevDiff:   in.ElevDiff + out.ElevDiff,
			})
			created++
		}
	}
	g.edges = rest
	return created
}

// RecomputeSlopes derives Slope from the (possibly summed) distance and
// elevation difference of every edge. Raw slope values are never trusted
// because they are inconsistent after bypass merging.
func (g *Graph) RecomputeSlopes() {
	for i := range g.edges {
		g.edges[i].Slope = g.edges[i].ElevDiff / g.edges[i].Dist
	}
}

// SortByID orders edges by source then destination gauge for deterministic
// artifact output.
func (g *Graph) SortByID() {
	sort.SliceStable(g.edges, func(i, j int) bool {
		if g.edges[i].ID != g.edges[j].ID {
			return g.edges[i].ID < g.edges[j].ID
		}
		return g.edges[i].NextDownID < g.edges[j].NextDownID
	})
}
