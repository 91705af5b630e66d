package parse

import (
	"testing"
)

func TestIdentification(t *testing.T) {
	id := Identification(loadProfile(t))
	if id.Name != "Yuri Alves de Monteiro Barbosa" {
		t.Fatalf("name = %q", id.Name)
	}
	if id.CitationField != "BARBOSA, Y. A. M.;Barbosa, Yuri;YURI BARBOSA" {
		t.Fatalf("citation field = %q", id.CitationField)
	}
	if id.LattesID != "http://lattes.cnpq.br/1234567890123456" {
		t.Fatalf("lattes id = %q", id.LattesID)
	}
	if id.Nationality != "Brasil" {
		t.Fatalf("nationality = %q", id.Nationality)
	}
	if id.ORCID != "0000-0002-1825-009X" {
		t.Fatalf("orcid = %q", id.ORCID)
	}
}

func TestORCIDFromText(t *testing.T) {
	doc := mustDoc(t, `<div class="layout-cell layout-cell-3"><div class="layout-cell-pad-5"><b>Orcid iD</b></div></div>
	<div class="layout-cell layout-cell-9"><div class="layout-cell-pad-5">https://orcid.org/0000-0001-2345-6789</div></div>`)
	if got := Identification(doc).ORCID; got != "0000-0001-2345-6789" {
		t.Fatalf("orcid = %q", got)
	}
}

func TestAddressAndSummary(t *testing.T) {
	doc := loadProfile(t)
	if got := Address(doc); got != "Universidade Federal da Paraíba, Centro de Informática. Rua dos Escoteiros, s/n 58055000 - João Pessoa, PB - Brasil" {
		t.Fatalf("address = %q", got)
	}
	want := "Possui graduação em Ciência da Computação e doutorado em Informática. Atua em extração de informação."
	if got := Summary(doc); got != want {
		t.Fatalf("summary = %q", got)
	}
}

func TestSummary_NoteCaseInsensitive(t *testing.T) {
	doc := mustDoc(t, `<p class="resumo">Professor. (TEXTO INFORMADO PELO AUTOR) </p>`)
	if got := Summary(doc); got != "Professor." {
		t.Fatalf("summary = %q", got)
	}
}
