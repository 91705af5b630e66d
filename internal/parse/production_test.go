package parse

import (
	"strings"
	"testing"
)

func productionsDoc(t *testing.T, blocks ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<div class="title-wrapper"><a name="ProducaoBibliografica"></a><div class="layout-cell layout-cell-12 data-cell">`)
	for _, block := range blocks {
		b.WriteString(`<div class="layout-cell layout-cell-11"><div class="layout-cell-pad-5"><span class="transform">`)
		b.WriteString(block)
		b.WriteString(`</span></div></div>`)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func TestProductions(t *testing.T) {
	got := Productions(loadProfile(t))
	if len(got) != 2 {
		t.Fatalf("expected 2 productions, got %d: %#v", len(got), got)
	}
	p := got[0]
	if !equalStrings(p.Authors, []string{"BARBOSA, Y. A. M.", "SILVA, M.", "Souza, João"}) {
		t.Fatalf("authors = %q", p.Authors)
	}
	if !strings.HasPrefix(p.Title, "Extração de dados em currículos.") {
		t.Fatalf("title = %q", p.Title)
	}
	if strings.Contains(p.Title, "1,2") {
		t.Fatalf("badge text leaked: %q", p.Title)
	}
	if deref(p.Year) != "2021" || deref(p.DOI) != "10.1000/rbc.2021.10" || deref(p.Pages) != "1-12" {
		t.Fatalf("year/doi/pages: %q %q %q", deref(p.Year), deref(p.DOI), deref(p.Pages))
	}
	if deref(p.Journal) != "Revista Brasileira de Computação, v" {
		t.Fatalf("journal = %q", deref(p.Journal))
	}

	q := got[1]
	if !equalStrings(q.Authors, []string{"COSTA, A.", "BARBOSA, Y.A.M.", "SILVA, M."}) {
		t.Fatalf("ordinal prefix not stripped: %q", q.Authors)
	}
	if deref(q.Year) != "2019" || q.DOI != nil || q.Journal != nil || q.Pages != nil {
		t.Fatalf("unexpected optional fields: %#v", q)
	}
}

func TestProductions_NoSeparatorYieldsNothing(t *testing.T) {
	doc := mustDoc(t, productionsDoc(t,
		"12. SILVA, J.; SOUZA, M. Um título sem separador. 2020.",
		"SILVA, J. .",
	))
	if got := Productions(doc); len(got) != 0 {
		t.Fatalf("expected no productions, got %#v", got)
	}
	if got := Coauthors(doc, owner{}); len(got) != 0 {
		t.Fatalf("expected no coauthors, got %q", got)
	}
}

func TestCoauthors(t *testing.T) {
	got := Coauthors(loadProfile(t), fixtureOwner)
	want := []string{"COSTA, A.", "SILVA, M.", "Souza, João"}
	if !equalStrings(got, want) {
		t.Fatalf("coauthors = %q, want %q", got, want)
	}
}

func TestCoauthors_LengthLimit(t *testing.T) {
	long := strings.Repeat("A", MaxCoauthorLength-1)
	tooLong := strings.Repeat("Á", MaxCoauthorLength)
	doc := mustDoc(t, productionsDoc(t, long+" ; "+tooLong+" ; LIMA, P. . Título. 2020."))
	got := Coauthors(doc, owner{})
	if !equalStrings(got, []string{long, "LIMA, P."}) {
		t.Fatalf("coauthors = %q", got)
	}
}

func TestCoauthors_StripsMarkupRemnants(t *testing.T) {
	doc := mustDoc(t, productionsDoc(t, "&lt;b&gt;BARBOSA, Y. A. M.&lt;/b&gt; ; COSTA, A. &amp; LIMA, P. . Título. 2020."))
	got := Coauthors(doc, fixtureOwner)
	if !equalStrings(got, []string{"COSTA, A. & LIMA, P."}) {
		t.Fatalf("coauthors = %q", got)
	}
}
