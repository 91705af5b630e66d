package identity

import (
	"strings"
	"testing"
)

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"Yuri Alves de Monteiro Barbosa": "BARBOSA, Y.A.M.",
		"Yuri Alves Monteiro Barbosa":    "BARBOSA, Y.A.M.",
		"  maria   das  Dores e Silva ":  "SILVA, M.D.",
		"Élida Araújo":                   "ARAÚJO, É.",
		"Platão":                         "PLATÃO",
		"":                               "",
	}
	for in, want := range cases {
		if got := Canonical(in); got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKey(t *testing.T) {
	// Decomposed "é" normalizes to the composed form.
	if got, want := Key("jose\u0301  da silva"), "JOSÉ DA SILVA"; got != want {
		t.Fatalf("Key = %q, want %q", got, want)
	}
}

func TestSplitCitationField(t *testing.T) {
	got := SplitCitationField(" BARBOSA, Y. A. M.;Barbosa, Yuri; ;barbosa, y. a. m.;YURI BARBOSA")
	want := []string{"BARBOSA, Y. A. M.", "BARBOSA, YURI", "YURI BARBOSA"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("SplitCitationField = %q, want %q", got, want)
	}
}

func TestResolver(t *testing.T) {
	r := New("Yuri Alves de Monteiro Barbosa", "BARBOSA, Y. A. M.;Barbosa, Yuri")
	if r.Name() != "Yuri Alves de Monteiro Barbosa" {
		t.Fatalf("name = %q", r.Name())
	}
	want := []string{"BARBOSA, Y. A. M.", "BARBOSA, Y.A.M.", "BARBOSA, YURI"}
	if got := r.Variants(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("variants = %q, want %q", got, want)
	}
	for _, name := range []string{
		"Yuri Alves de Monteiro Barbosa",
		"YURI ALVES DE MONTEIRO BARBOSA",
		"barbosa, y. a. m.",
		"Barbosa, Y.A.M.",
		" Barbosa,  Yuri ",
	} {
		if !r.IsOwner(name) {
			t.Fatalf("IsOwner(%q) = false", name)
		}
	}
	for _, name := range []string{
		"",
		"BARBOSA, Y.",
		"Barbosa, Y. A.",
		"Yuri Alves de Monteiro Barbos", // near miss is not the owner
		"SILVA, J.",
	} {
		if r.IsOwner(name) {
			t.Fatalf("IsOwner(%q) = true", name)
		}
	}
}

func TestResolver_EmptyField(t *testing.T) {
	r := New("Ana Costa", "")
	if got := r.Variants(); len(got) != 1 || got[0] != "COSTA, A." {
		t.Fatalf("variants = %q", got)
	}
	if !r.IsOwner("ana costa") || !r.IsOwner("COSTA, A.") {
		t.Fatalf("owner not recognized")
	}
	empty := New("", "")
	if empty.Variants() == nil || len(empty.Variants()) != 0 || empty.IsOwner("") {
		t.Fatalf("empty resolver should match nothing")
	}
}
