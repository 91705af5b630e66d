package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/hyperifyio/lattes/internal/identity"
)

// ErrUnknownOwner reports an owner name that is not a graph node.
var ErrUnknownOwner = errors.New("owner not in collaboration graph")

// person is a graph node named by an owner display name.
type person struct {
	id   int64
	name string
}

func (p person) ID() int64      { return p.id }
func (p person) DOTID() string  { return p.name }
func (p person) String() string { return p.name }

// collaboration is an undirected edge weighted by shared publications.
type collaboration struct {
	f, t person
	w    float64
}

func (e collaboration) From() graph.Node         { return e.f }
func (e collaboration) To() graph.Node           { return e.t }
func (e collaboration) ReversedEdge() graph.Edge { return collaboration{f: e.t, t: e.f, w: e.w} }
func (e collaboration) Weight() float64          { return e.w }

func (e collaboration) Attributes() []encoding.Attribute {
	w := strconv.FormatFloat(e.w, 'f', -1, 64)
	return []encoding.Attribute{{Key: "weight", Value: w}, {Key: "label", Value: w}}
}

// Graph is the co-authorship graph between record owners.
type Graph struct {
	g     *simple.WeightedUndirectedGraph
	nodes map[string]person
}

func newGraph(names []string) *Graph {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	gr := &Graph{
		g:     simple.NewWeightedUndirectedGraph(0, 0),
		nodes: make(map[string]person, len(sorted)),
	}
	for _, name := range sorted {
		if _, ok := gr.nodes[identity.Key(name)]; ok {
			continue
		}
		p := person{id: int64(len(gr.nodes)), name: name}
		gr.nodes[identity.Key(name)] = p
		gr.g.AddNode(p)
	}
	return gr
}

func (gr *Graph) add(a, b string, w float64) {
	pa, pb := gr.nodes[identity.Key(a)], gr.nodes[identity.Key(b)]
	if pa.id == pb.id {
		return
	}
	if e := gr.g.WeightedEdge(pa.id, pb.id); e != nil {
		w += e.Weight()
	}
	gr.g.SetWeightedEdge(collaboration{f: pa, t: pb, w: w})
}

// Build returns a graph with one node per professor of pubs and one edge
// per co-authoring pair, weighted by the number of shared publications.
func Build(pubs []Publication) *Graph {
	var names []string
	for _, p := range pubs {
		names = append(names, p.Professors...)
	}
	gr := newGraph(names)
	for _, p := range pubs {
		for i, a := range p.Professors {
			for _, b := range p.Professors[i+1:] {
				gr.add(a, b, 1)
			}
		}
	}
	return gr
}

// Names returns the node names, sorted.
func (gr *Graph) Names() []string {
	out := make([]string, 0, len(gr.nodes))
	for _, p := range gr.nodes {
		out = append(out, p.name)
	}
	sort.Strings(out)
	return out
}

// Weight returns the number of publications a and b share.
func (gr *Graph) Weight(a, b string) int {
	pa, okA := gr.nodes[identity.Key(a)]
	pb, okB := gr.nodes[identity.Key(b)]
	if !okA || !okB {
		return 0
	}
	e := gr.g.WeightedEdge(pa.id, pb.id)
	if e == nil {
		return 0
	}
	return int(e.Weight())
}

// Collaborators returns the neighbours of owner with their edge weights.
// The owner is matched case-insensitively.
func (gr *Graph) Collaborators(owner string) (string, map[string]int, error) {
	p, ok := gr.nodes[identity.Key(owner)]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownOwner, owner)
	}
	out := make(map[string]int)
	it := gr.g.From(p.id)
	for it.Next() {
		n := it.Node().(person)
		out[n.name] = int(gr.g.WeightedEdge(p.id, n.id).Weight())
	}
	return p.name, out, nil
}

// Ego returns the star graph of owner and the collaborators with at least
// minWeight shared publications.
func (gr *Graph) Ego(owner string, minWeight int) (*Graph, error) {
	root, collab, err := gr.Collaborators(owner)
	if err != nil {
		return nil, err
	}
	names := []string{root}
	for name, w := range collab {
		if w >= minWeight {
			names = append(names, name)
		}
	}
	ego := newGraph(names)
	for _, name := range names[1:] {
		ego.add(root, name, float64(collab[name]))
	}
	return ego, nil
}

// DOT renders the graph in Graphviz format.
func (gr *Graph) DOT(name string) ([]byte, error) {
	b, err := dot.Marshal(gr.g, name, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("marshal dot: %w", err)
	}
	return b, nil
}
