package aggregate

import (
	"errors"
	"strings"
	"testing"

	"github.com/hyperifyio/lattes/internal/record"
)

func prof(name string, citations []string, prods ...record.Production) record.Professor {
	return record.Professor{
		Identification: record.Identification{Name: name, CitationNames: citations},
		Productions:    prods,
	}
}

func prod(title string, authors ...string) record.Production {
	return record.Production{Title: title, Authors: authors}
}

func sampleRecords() []record.Professor {
	year := "2021"
	aleatorios := prod("Grafos Aleatorios", "SOUZA, J", "LIMA, B.")
	aleatorios.Year = &year
	return []record.Professor{
		prof("Ana Costa", []string{"COSTA, A."},
			prod("Redes Neurais", "COSTA, A.", "SOUZA, J."),
			prod("Grafos", "Costa, Ana", "LIMA, B."),
			prod("Aprendizado", "COSTA, A.", "SOUZA, João", "PEREIRA, X."),
		),
		prof("João Souza", []string{"SOUZA, J.", "SOUZA, JOÃO"},
			prod("Redes neurais.", "COSTA, A", "SOUZA, J."),
			prod("Grafos Aleatórios", "SOUZA, J.", "LIMA, B."),
		),
		prof("Bruno Lima", []string{"LIMA, B."},
			prod("Grafos", "COSTA, A.", "LIMA, B."),
			aleatorios,
		),
	}
}

func TestCitationKey(t *testing.T) {
	cases := map[string]string{
		"Souza, João":      "SOUZA,JOAO",
		"B. A. M.":         "BAM",
		"  conceição  da ": "CONCEICAODA",
		"":                 "",
	}
	for in, want := range cases {
		if got := CitationKey(in); got != want {
			t.Fatalf("CitationKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnify(t *testing.T) {
	pubs := Unify(sampleRecords())
	want := []struct {
		title      string
		professors string
	}{
		{"Aprendizado", "Ana Costa,João Souza"},
		{"Grafos", "Ana Costa,Bruno Lima"},
		{"Grafos Aleatórios", "Bruno Lima,João Souza"},
		{"Redes Neurais", "Ana Costa,João Souza"},
	}
	if len(pubs) != len(want) {
		t.Fatalf("expected %d publications, got %#v", len(want), pubs)
	}
	for i, w := range want {
		if pubs[i].Title != w.title || strings.Join(pubs[i].Professors, ",") != w.professors {
			t.Fatalf("publication %d = %#v, want %v", i, pubs[i], w)
		}
	}
	if pubs[2].Year == nil || *pubs[2].Year != "2021" {
		t.Fatalf("year should come from the first production that has one")
	}
}

func TestUnify_AmbiguousKeysAreDropped(t *testing.T) {
	recs := []record.Professor{
		prof("Maria Silva", []string{"SILVA, M."}, prod("Estudo", "SILVA, M.", "SANTOS, P.")),
		prof("Marcos Silva", []string{"SILVA, M."}),
		prof("Paulo Santos", []string{"SANTOS, P."}),
		prof("", nil, prod("Órfão", "SANTOS, P.")),
	}
	pubs := Unify(recs)
	if len(pubs) != 1 || strings.Join(pubs[0].Professors, ",") != "Maria Silva,Paulo Santos" {
		t.Fatalf("unexpected publications %#v", pubs)
	}
}

func TestBuildAndRank(t *testing.T) {
	g := Build(Unify(sampleRecords()))
	if got := strings.Join(g.Names(), ","); got != "Ana Costa,Bruno Lima,João Souza" {
		t.Fatalf("names = %s", got)
	}
	if w := g.Weight("Ana Costa", "João Souza"); w != 2 {
		t.Fatalf("Ana/João weight = %d", w)
	}
	if w := g.Weight("Ana Costa", "Nobody"); w != 0 {
		t.Fatalf("unknown weight = %d", w)
	}

	r, err := Rank(g, "ANA COSTA", 1)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if r.Root.Name != "Ana Costa" || r.Root.TotalCollaborations != 3 || r.Root.UniqueCollaborators != 2 {
		t.Fatalf("root = %#v", r.Root)
	}
	if len(r.Collaborators) != 2 || r.Collaborators[0].Name != "João Souza" || r.Collaborators[1].Name != "Bruno Lima" {
		t.Fatalf("collaborators = %#v", r.Collaborators)
	}
	p := r.Properties
	if p.TotalNodes != 3 || p.MaxCollaborations != 2 || p.MinCollaborations != 1 || p.AvgCollaborations != 1.5 || p.HeapHeight != 2 {
		t.Fatalf("properties = %#v", p)
	}
	if r.Root.NodeID != NodeID("Ana Costa") || r.Collaborators[0].NodeID == r.Collaborators[1].NodeID {
		t.Fatalf("node ids must be stable and distinct")
	}

	filtered, err := Rank(g, "Ana Costa", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered.Collaborators) != 1 || filtered.Root.TotalCollaborations != 2 {
		t.Fatalf("min weight not applied: %#v", filtered)
	}
}

func TestRank_TiesBrokenByName(t *testing.T) {
	g := Build(Unify(sampleRecords()))
	r, err := Rank(g, "Bruno Lima", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Collaborators[0].Name != "Ana Costa" || r.Collaborators[1].Name != "João Souza" {
		t.Fatalf("ties must be ordered by name: %#v", r.Collaborators)
	}
	if r.Collaborators[0].ParentIndex != 0 || r.Collaborators[1].ParentIndex != 0 {
		t.Fatalf("first two entries are children of the root: %#v", r.Collaborators)
	}
}

func TestRank_NoCollaborators(t *testing.T) {
	g := Build([]Publication{{Title: "Solo", Professors: []string{"Ana Costa"}}})
	r, err := Rank(g, "Ana Costa", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Collaborators) != 0 || r.Collaborators == nil || r.Properties.TotalNodes != 1 || r.Properties.HeapHeight != 0 {
		t.Fatalf("unexpected ranking %#v", r)
	}
	if _, err := Rank(g, "Nobody", 1); !errors.Is(err, ErrUnknownOwner) {
		t.Fatalf("expected ErrUnknownOwner, got %v", err)
	}
}

func TestEgoAndDOT(t *testing.T) {
	g := Build(Unify(sampleRecords()))
	ego, err := g.Ego("Ana Costa", 2)
	if err != nil {
		t.Fatalf("ego: %v", err)
	}
	if got := strings.Join(ego.Names(), ","); got != "Ana Costa,João Souza" {
		t.Fatalf("ego names = %s", got)
	}
	b, err := ego.DOT("colaboracoes")
	if err != nil {
		t.Fatalf("dot: %v", err)
	}
	out := string(b)
	for _, want := range []string{"graph colaboracoes {", `"Ana Costa"`, `"João Souza"`, "--", "weight=2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dot output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Bruno") {
		t.Fatalf("filtered collaborator rendered:\n%s", out)
	}
}
