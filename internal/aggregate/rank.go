package aggregate

import (
	"container/heap"
	"math/bits"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// nodeNamespace derives stable node IDs from display names.
var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lattes.cnpq.br/"))

// NodeID returns the stable identifier of a named node.
func NodeID(name string) string {
	return uuid.NewSHA1(nodeNamespace, []byte(name)).String()
}

// Root summarizes the ranked owner.
type Root struct {
	Name                string `json:"name"`
	TotalCollaborations int    `json:"total_collaborations"`
	UniqueCollaborators int    `json:"unique_collaborators"`
	NodeID              string `json:"node_id"`
}

// Collaborator is one ranked neighbour of the owner.
type Collaborator struct {
	Name           string `json:"name"`
	Collaborations int    `json:"collaborations"`
	NodeID         string `json:"node_id"`
	// ParentIndex is the heap position of this entry's parent; the root is 0.
	ParentIndex int `json:"parent_index"`
}

// Properties are summary statistics over the ranked collaborators.
type Properties struct {
	TotalNodes        int     `json:"total_nodes"`
	MaxCollaborations int     `json:"max_collaborations"`
	MinCollaborations int     `json:"min_collaborations"`
	AvgCollaborations float64 `json:"avg_collaborations"`
	HeapHeight        int     `json:"heap_height"`
}

// Ranking lists an owner's collaborators by shared publications.
type Ranking struct {
	Root          Root           `json:"root"`
	Collaborators []Collaborator `json:"collaborators"`
	Properties    Properties     `json:"properties"`
}

// byWeight is a max-heap on collaborations, ties broken by ascending name.
type byWeight []Collaborator

func (h byWeight) Len() int { return len(h) }
func (h byWeight) Less(i, j int) bool {
	if h[i].Collaborations != h[j].Collaborations {
		return h[i].Collaborations > h[j].Collaborations
	}
	return h[i].Name < h[j].Name
}
func (h byWeight) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *byWeight) Push(x any)   { *h = append(*h, x.(Collaborator)) }
func (h *byWeight) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Rank orders the collaborators of owner having at least minWeight shared
// publications. The root totals cover only the kept collaborators.
func Rank(gr *Graph, owner string, minWeight int) (Ranking, error) {
	root, collab, err := gr.Collaborators(owner)
	if err != nil {
		return Ranking{}, err
	}
	h := &byWeight{}
	for name, w := range collab {
		if w >= minWeight {
			*h = append(*h, Collaborator{Name: name, Collaborations: w, NodeID: NodeID(name)})
		}
	}
	heap.Init(h)

	r := Ranking{
		Root:          Root{Name: root, NodeID: NodeID(root)},
		Collaborators: make([]Collaborator, 0, h.Len()),
	}
	weights := make([]float64, 0, h.Len())
	for h.Len() > 0 {
		c := heap.Pop(h).(Collaborator)
		// Index 0 is the root; the entry lands at len+1.
		c.ParentIndex = len(r.Collaborators) / 2
		r.Collaborators = append(r.Collaborators, c)
		r.Root.TotalCollaborations += c.Collaborations
		weights = append(weights, float64(c.Collaborations))
	}
	r.Root.UniqueCollaborators = len(r.Collaborators)
	r.Properties = properties(weights)
	return r, nil
}

func properties(weights []float64) Properties {
	p := Properties{TotalNodes: len(weights) + 1}
	p.HeapHeight = bits.Len(uint(p.TotalNodes))
	if len(weights) == 0 {
		p.HeapHeight = 0
		return p
	}
	p.MaxCollaborations = int(floats.Max(weights))
	p.MinCollaborations = int(floats.Min(weights))
	p.AvgCollaborations = stat.Mean(weights, nil)
	return p
}
