package graph

// Node is a candidate file in an exported graph.
type Node struct {
	ID        string `json:"id" toon:"id"`
	Root      bool   `json:"root" toon:"root"`
	Reachable bool   `json:"reachable" toon:"reachable"`
	OutDegree int    `json:"outDegree" toon:"outDegree"`
}

// EdgeType represents the type of dependency.
type EdgeType string

const (
	EdgeImport EdgeType = "import"
)

// String returns the string representation.
func (e EdgeType) String() string {
	return string(e)
}

// Edge is a resolved import between two candidate files.
type Edge struct {
	From string   `json:"from" toon:"from"`
	To   string   `json:"to" toon:"to"`
	Type EdgeType `json:"type" toon:"type"`
}

// DependencyGraph is the serializable form of a Graph.
type DependencyGraph struct {
	Nodes  []Node     `json:"nodes" toon:"nodes"`
	Edges  []Edge     `json:"edges" toon:"edges"`
	Cycles [][]string `json:"cycles" toon:"cycles"`
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes:  make([]Node, 0),
		Edges:  make([]Edge, 0),
		Cycles: make([][]string, 0),
	}
}
