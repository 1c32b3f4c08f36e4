package regalloc

import "slices"

// Graph is an undirected interference graph over variable names
type Graph struct {
	adjacency map[string]Set
}

func NewGraph() *Graph {
	return &Graph{adjacency: make(map[string]Set)}
}

func (g *Graph) AddNode(name string) {
	if _, ok := g.adjacency[name]; !ok {
		g.adjacency[name] = newSet()
	}
}

// AddEdge connects a and b; self edges are ignored
func (g *Graph) AddEdge(a, b string) {
	g.AddNode(a)
	g.AddNode(b)
	if a == b {
		return
	}
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
}

func (g *Graph) Interferes(a, b string) bool {
	return g.adjacency[a].Has(b)
}

// Nodes returns every node in sorted order
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.adjacency))
	for name := range g.adjacency {
		nodes = append(nodes, name)
	}
	slices.Sort(nodes)
	return nodes
}

// Neighbors returns the neighbours of name in sorted order
func (g *Graph) Neighbors(name string) []string {
	return g.adjacency[name].Sorted()
}

func (g *Graph) Degree(name string) int {
	return len(g.adjacency[name])
}

// BuildGraph connects every pair of variables that are simultaneously in
// live-in ∪ live-out ∪ defs of some instruction. Every variable of the method
// gets a node, live or not.
func BuildGraph(vars []string, lv *Liveness) *Graph {
	g := NewGraph()
	for _, name := range vars {
		g.AddNode(name)
	}
	for i := range lv.In {
		live := newSet()
		for _, s := range []Set{lv.In[i], lv.Out[i], lv.Defs[i]} {
			for name := range s {
				live[name] = struct{}{}
			}
		}
		names := live.Sorted()
		for x, a := range names {
			for _, b := range names[x+1:] {
				g.AddEdge(a, b)
			}
		}
	}
	return g
}
