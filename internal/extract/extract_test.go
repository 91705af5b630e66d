package extract

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, s string) Document {
	t.Helper()
	doc, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestText_JoinsNormalizedFragments(t *testing.T) {
	doc := mustParse(t, `<div id="x">  <b>SILVA,   J.</b>;
	   SOUZA, M. . <i>Um   título</i>  <script>var x = 1;</script></div>`)
	got := Text(doc.Find("#x"), " ")
	want := "SILVA, J. ; SOUZA, M. . Um título"
	if got != want {
		t.Fatalf("Text = %q, want %q", got, want)
	}
}

func TestText_NilAndEmptySelection(t *testing.T) {
	doc := mustParse(t, `<p>hello</p>`)
	if got := Text(doc.Find("#missing"), " "); got != "" {
		t.Fatalf("expected empty text for empty selection, got %q", got)
	}
	if got := Text(nil, " "); got != "" {
		t.Fatalf("expected empty text for nil selection, got %q", got)
	}
}

func TestText_NonBreakingSpacesCollapse(t *testing.T) {
	doc := mustParse(t, "<p id=\"p\"> Rua   das Flores </p>")
	if got := Text(doc.Find("#p"), " "); got != "Rua das Flores" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestLines_SplitsOnBreaks(t *testing.T) {
	doc := mustParse(t, `<div id="d">Disciplinas ministradas<br class="clear">Cálculo I<br class="clear"> Álgebra <b>Linear</b><br/></div>`)
	got := Lines(doc.Find("#d"))
	want := []string{"Disciplinas ministradas", "Cálculo I", "Álgebra Linear"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Lines = %q, want %q", got, want)
	}
}

func TestStrip_RemovesDecorativeNodes(t *testing.T) {
	doc := mustParse(t, `<div id="d">Doutorado em Física. <a class="tooltip-oasis">?<span>Dica</span></a>Título: X.</div>`)
	sel := Strip(doc.Find("#d"), "a.tooltip-oasis")
	got := Text(sel, " ")
	if strings.Contains(got, "Dica") || strings.Contains(got, "?") {
		t.Fatalf("tooltip text leaked: %q", got)
	}
	if got != "Doutorado em Física. Título: X." {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestParse_TranscodesLatin1(t *testing.T) {
	// "Graduação em Computação" encoded as ISO-8859-1.
	latin1 := []byte("<html><body><p id=\"p\">Gradua\xe7\xe3o em Computa\xe7\xe3o pela Universidade Federal da Para\xedba. " +
		"Possui mestrado em Inform\xe1tica e doutorado em Ci\xeancia da Computa\xe7\xe3o, atuando em intelig\xeancia " +
		"artificial, aprendizagem de m\xe1quina e sistemas de informa\xe7\xe3o para educa\xe7\xe3o e sa\xfade p\xfablica.</p></body></html>")
	doc := mustParse(t, string(latin1))
	got := Text(doc.Find("#p"), " ")
	if !strings.HasPrefix(got, "Graduação em Computação") {
		t.Fatalf("expected transcoded text, got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"  a  ":            "a",
		"a\n\t b":          "a b",
		" x y ": "x y",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
