// Package graph holds the file-level import graph and computes reachability over it.
package graph

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is a directed graph over a fixed candidate set. Node IDs are positions
// in the sorted candidate list, so ID order is path order.
type Graph struct {
	paths    []string
	index    map[string]int64
	directed *simple.DirectedGraph
	edges    int
}

// New creates a graph whose nodes are the given candidates.
func New(candidates []string) *Graph {
	paths := append([]string(nil), candidates...)
	sort.Strings(paths)
	paths = compact(paths)

	g := &Graph{
		paths:    paths,
		index:    make(map[string]int64, len(paths)),
		directed: simple.NewDirectedGraph(),
	}
	for i, p := range paths {
		id := int64(i)
		g.index[p] = id
		g.directed.AddNode(simple.Node(id))
	}
	return g
}

func compact(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of candidate files.
func (g *Graph) Len() int {
	return len(g.paths)
}

// Has reports whether p is a candidate.
func (g *Graph) Has(p string) bool {
	_, ok := g.index[p]
	return ok
}

// Paths returns the sorted candidates.
func (g *Graph) Paths() []string {
	return append([]string(nil), g.paths...)
}

// AddEdge records that from imports to. Edges touching a non-candidate and
// self-imports are ignored. Reports whether a new edge was added.
func (g *Graph) AddEdge(from, to string) bool {
	f, ok := g.index[from]
	if !ok {
		return false
	}
	t, ok := g.index[to]
	if !ok || f == t {
		return false
	}
	if g.directed.HasEdgeFromTo(f, t) {
		return false
	}
	g.directed.SetEdge(simple.Edge{F: simple.Node(f), T: simple.Node(t)})
	g.edges++
	return true
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Successors returns the sorted files p imports.
func (g *Graph) Successors(p string) []string {
	id, ok := g.index[p]
	if !ok {
		return nil
	}
	ids := make([]int64, 0)
	it := g.directed.From(id)
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = g.paths[id]
	}
	return out
}

// OutDegree returns the number of files p imports.
func (g *Graph) OutDegree(p string) int {
	id, ok := g.index[p]
	if !ok {
		return 0
	}
	return g.directed.From(id).Len()
}

// Edges returns every edge sorted by source, then target.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, from := range g.paths {
		for _, to := range g.Successors(from) {
			edges = append(edges, Edge{From: from, To: to, Type: EdgeImport})
		}
	}
	return edges
}

// Reachable runs a breadth-first traversal from roots. Roots that are not
// candidates are ignored. Each node is enqueued at most once, so the
// traversal is O(V+E) and terminates on cyclic graphs.
func (g *Graph) Reachable(roots []string) *Set {
	visited := roaring.New()
	queue := make([]int64, 0, len(roots))

	for _, r := range roots {
		id, ok := g.index[r]
		if !ok || visited.Contains(uint32(id)) {
			continue
		}
		visited.Add(uint32(id))
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		it := g.directed.From(id)
		for it.Next() {
			next := it.Node().ID()
			if visited.CheckedAdd(uint32(next)) {
				queue = append(queue, next)
			}
		}
	}

	return &Set{bitmap: visited, paths: g.paths, index: g.index}
}

// Cycles returns the strongly connected components with more than one file,
// each sorted, ordered by their first file.
func (g *Graph) Cycles() [][]string {
	cycles := make([][]string, 0)
	for _, scc := range topo.TarjanSCC(g.directed) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]int64, len(scc))
		for i, n := range scc {
			ids[i] = n.ID()
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		cycle := make([]string, len(ids))
		for i, id := range ids {
			cycle[i] = g.paths[id]
		}
		cycles = append(cycles, cycle)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// Export builds the serializable graph, marking roots and files reachable from them.
func (g *Graph) Export(roots []string) *DependencyGraph {
	reach := g.Reachable(roots)
	rootSet := make(map[string]bool, len(roots))
	for _, r := range roots {
		rootSet[r] = true
	}

	out := NewDependencyGraph()
	for _, p := range g.paths {
		out.Nodes = append(out.Nodes, Node{
			ID:        p,
			Root:      rootSet[p],
			Reachable: reach.Contains(p),
			OutDegree: g.OutDegree(p),
		})
	}
	out.Edges = g.Edges()
	out.Cycles = g.Cycles()
	return out
}

// Set is a set of candidate files backed by a bitmap over node IDs.
type Set struct {
	bitmap *roaring.Bitmap
	paths  []string
	index  map[string]int64
}

// Contains reports whether p is in the set.
func (s *Set) Contains(p string) bool {
	id, ok := s.index[p]
	return ok && s.bitmap.Contains(uint32(id))
}

// Len returns the set size.
func (s *Set) Len() int {
	return int(s.bitmap.GetCardinality())
}

// Paths returns the members in sorted order.
func (s *Set) Paths() []string {
	out := make([]string, 0, s.Len())
	it := s.bitmap.Iterator()
	for it.HasNext() {
		out = append(out, s.paths[it.Next()])
	}
	return out
}
