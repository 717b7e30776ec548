package graph

import (
	"slices"

	"github.com/Dima09182/depviz/pkg/apk"
)

// Node is one recorded package.
type Node struct {
	Name         string   // Short name (graph key)
	Qualified    string   // Resolved identifier, e.g. busybox-1.36.1-r29.apk
	Dependencies []string // Declared dependencies, in declaration order
	Depth        int      // BFS depth from the root
}

// Edge is a dependency between two recorded packages.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// DiagnosticKind classifies a per-package failure.
type DiagnosticKind string

const (
	KindUnknownPackage DiagnosticKind = "unknown-package"
	KindFetch          DiagnosticKind = "fetch"
	KindArchive        DiagnosticKind = "archive"
	KindIndex          DiagnosticKind = "index"
	KindBudget         DiagnosticKind = "budget"
)

// Diagnostic reports a failure that degraded the graph.
type Diagnostic struct {
	Package string // Affected package; empty for repository-wide problems
	Kind    DiagnosticKind
	Err     error
}

func (d Diagnostic) String() string {
	if d.Package == "" {
		return string(d.Kind) + ": " + d.Err.Error()
	}
	return d.Package + ": " + string(d.Kind) + ": " + d.Err.Error()
}

// Graph is the result of a traversal.
//
// A Graph is not modified after [Build] returns and is safe for concurrent
// reads.
type Graph struct {
	Root      string // Short name of the root package
	RunID     string // Unique identifier of the traversal
	Source    string // Name of the source the graph was built from
	MaxDepth  int    // Depth bound the traversal used
	Truncated bool   // The traversal stopped early (budget or node limit)

	nodes []*Node
	index map[string]*Node
	diags []Diagnostic
}

// New creates an empty graph rooted at root.
func New(root string) *Graph {
	return &Graph{Root: root, index: make(map[string]*Node)}
}

// Add records n. It returns false if a node with the same name exists.
func (g *Graph) Add(n Node) bool {
	if _, ok := g.index[n.Name]; ok {
		return false
	}
	if n.Dependencies == nil {
		n.Dependencies = []string{}
	}
	node := &n
	g.nodes = append(g.nodes, node)
	g.index[n.Name] = node
	return true
}

// Diagnose records a diagnostic.
func (g *Graph) Diagnose(d Diagnostic) {
	g.diags = append(g.diags, d)
}

// Nodes returns the recorded nodes in discovery order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = *n
		out[i].Dependencies = slices.Clone(n.Dependencies)
	}
	return out
}

// Node returns the node named name.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.index[name]
	if !ok {
		return Node{}, false
	}
	out := *n
	out.Dependencies = slices.Clone(n.Dependencies)
	return out, true
}

// Len returns the number of recorded nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Depth returns the depth of name.
func (g *Graph) Depth(name string) (int, bool) {
	n, ok := g.index[name]
	if !ok {
		return 0, false
	}
	return n.Depth, true
}

// MaxRecordedDepth returns the greatest depth of any node.
func (g *Graph) MaxRecordedDepth() int {
	d := 0
	for _, n := range g.nodes {
		d = max(d, n.Depth)
	}
	return d
}

// Children returns the recorded nodes name depends on, in declaration order
// and without duplicates.
func (g *Graph) Children(name string) []string {
	n, ok := g.index[name]
	if !ok {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, dep := range n.Dependencies {
		c := apk.CanonicalName(dep)
		if _, ok := g.index[c]; !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Edges returns one edge per (package, dependency) pair where both ends are
// recorded, in discovery order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, n := range g.nodes {
		for _, c := range g.Children(n.Name) {
			out = append(out, Edge{From: n.Name, To: c})
		}
	}
	return out
}

// Diagnostics returns the recorded diagnostics in the order they occurred.
func (g *Graph) Diagnostics() []Diagnostic {
	return slices.Clone(g.diags)
}

// Levels groups node names by depth.
func (g *Graph) Levels() [][]string {
	if len(g.nodes) == 0 {
		return nil
	}
	levels := make([][]string, g.MaxRecordedDepth()+1)
	for _, n := range g.nodes {
		levels[n.Depth] = append(levels[n.Depth], n.Name)
	}
	return levels
}
