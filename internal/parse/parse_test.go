package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/lattes/internal/extract"
)

// owner matches names case-insensitively against a fixed set.
type owner map[string]bool

func (o owner) IsOwner(name string) bool { return o[strings.ToUpper(name)] }

var fixtureOwner = owner{
	"YURI ALVES DE MONTEIRO BARBOSA": true,
	"BARBOSA, Y. A. M.":              true,
	"BARBOSA, Y.A.M.":                true,
}

func loadProfile(t *testing.T) extract.Document {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "profile.html"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return mustDoc(t, string(b))
}

func mustDoc(t *testing.T, s string) extract.Document {
	t.Helper()
	doc, err := extract.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func equalStrings(a, b []string) bool {
	return strings.Join(a, "\x00") == strings.Join(b, "\x00") && len(a) == len(b)
}

func TestMissingSectionsYieldEmpty(t *testing.T) {
	doc := mustDoc(t, `<html><body><h2 class="nome">Fulano</h2><div class="title-wrapper"><h1>Sem âncora</h1></div></body></html>`)
	if got := Education(doc); got == nil || len(got) != 0 {
		t.Fatalf("education: %#v", got)
	}
	if got := PostDocs(doc); got == nil || len(got) != 0 {
		t.Fatalf("post docs: %#v", got)
	}
	if got := ComplementaryFormation(doc); got == nil || len(got) != 0 {
		t.Fatalf("complementary: %#v", got)
	}
	if got := Bonds(doc); got == nil || len(got) != 0 {
		t.Fatalf("bonds: %#v", got)
	}
	if got := ResearchProjects(doc); got == nil || len(got) != 0 {
		t.Fatalf("research: %#v", got)
	}
	if got := ExtensionProjects(doc); got == nil || len(got) != 0 {
		t.Fatalf("extension: %#v", got)
	}
	if got := Productions(doc); got == nil || len(got) != 0 {
		t.Fatalf("productions: %#v", got)
	}
	if got := Coauthors(doc, owner{}); got == nil || len(got) != 0 {
		t.Fatalf("coauthors: %#v", got)
	}
	if got := Collaborators(doc, owner{}); got == nil || len(got) != 0 {
		t.Fatalf("collaborators: %#v", got)
	}
	id := Identification(doc)
	if id.Name != "Fulano" || id.CitationField != "" || id.Nationality != "" || id.ORCID != "" || id.LattesID != "" {
		t.Fatalf("identification: %#v", id)
	}
	if Address(doc) != "" || Summary(doc) != "" {
		t.Fatalf("address/summary should be empty")
	}
}

func TestZeroDocument(t *testing.T) {
	var doc extract.Document
	if len(Education(doc)) != 0 || len(Productions(doc)) != 0 || Summary(doc) != "" || Identification(doc).Name != "" {
		t.Fatalf("zero document must read as empty")
	}
}
