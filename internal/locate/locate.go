// Package locate finds the content region of a named profile section.
//
// Every lookup returns a Result that is either Found or NotFound. Steps
// chain on a Result and a NotFound input always yields NotFound, so an
// absent anchor, label or sibling never surfaces as an error.
package locate

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/hyperifyio/lattes/internal/extract"
)

// Section anchors present on profile pages.
const (
	AnchorEducation     = "FormacaoAcademicaTitulacao"
	AnchorPostDoc       = "FormacaoAcademicaPosDoutorado"
	AnchorComplementary = "FormacaoComplementar"
	AnchorProfessional  = "AtuacaoProfissional"
	AnchorResearch      = "ProjetosPesquisa"
	AnchorExtension     = "ProjetosExtensao"
	AnchorProductions   = "ProducaoBibliografica"
)

// Field labels that share the label-based traversal.
const (
	LabelAddress       = "Endereço Profissional"
	LabelNationality   = "País de Nacionalidade"
	LabelORCID         = "Orcid iD"
	LabelCitationNames = "Nome em citações bibliográficas"
)

const (
	titleWrapper  = "div.title-wrapper"
	dataContainer = "div.layout-cell-12"
	paddedCell    = "div.layout-cell-pad-5"
	outerCell     = "div.layout-cell"
	valueCell     = "div.layout-cell-9"
)

// Result is the outcome of one lookup step.
type Result struct {
	sel *goquery.Selection
}

// NotFound is the empty Result.
var NotFound = Result{}

// Found wraps a non-empty selection; an empty one is NotFound.
func Found(sel *goquery.Selection) Result {
	if sel == nil || sel.Length() == 0 {
		return NotFound
	}
	return Result{sel: sel.First()}
}

// OK reports whether the lookup succeeded.
func (r Result) OK() bool { return r.sel != nil }

// Selection returns the located node, or an empty selection when NotFound.
// The empty selection is safe to query.
func (r Result) Selection() *goquery.Selection {
	if r.sel == nil {
		return &goquery.Selection{}
	}
	return r.sel
}

// Text is extract.Text over the located node, "" when NotFound.
func (r Result) Text() string {
	if !r.OK() {
		return ""
	}
	return extract.Text(r.sel, " ")
}

// Ascend moves to the nearest strict ancestor matching selector.
func (r Result) Ascend(selector string) Result {
	if !r.OK() {
		return NotFound
	}
	return Found(r.sel.Parent().Closest(selector))
}

// NextSibling moves to the first following sibling matching selector.
func (r Result) NextSibling(selector string) Result {
	if !r.OK() {
		return NotFound
	}
	return Found(r.sel.NextAllFiltered(selector))
}

// NextInDocument moves to the first element after the current node's start
// tag, in document order, that matches selector. The current node's own
// descendants are visited before the nodes that follow it.
func (r Result) NextInDocument(selector string) Result {
	if !r.OK() {
		return NotFound
	}
	match, err := cascadia.Compile(selector)
	if err != nil {
		return NotFound
	}
	for n := preorderNext(r.sel.Get(0)); n != nil; n = preorderNext(n) {
		if n.Type == html.ElementNode && match.Match(n) {
			return Found(top(r.sel).FindNodes(n))
		}
	}
	return NotFound
}

func preorderNext(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// top returns the outermost element containing sel, so FindNodes can reach
// any node of the same tree.
func top(sel *goquery.Selection) *goquery.Selection {
	if p := sel.Parents(); p.Length() > 0 {
		return p.Last()
	}
	return sel
}

// Anchor locates the data container of the section whose marker is
// <a name="name">: the marker's title wrapper, then the next container in
// document order.
func Anchor(doc extract.Document, name string) Result {
	if doc.Document == nil {
		return NotFound
	}
	marker := Found(doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, ok := s.Attr("name")
		return ok && v == name
	}))
	return marker.Ascend(titleWrapper).NextInDocument(dataContainer)
}

// Label locates the value cell of a labelled field: the bold label whose
// normalized text equals label exactly, its padded cell, that cell's outer
// cell, then the outer cell's next value sibling.
func Label(doc extract.Document, label string) Result {
	if doc.Document == nil || doc.Root == nil {
		return NotFound
	}
	var hit *html.Node
	for _, b := range htmlquery.Find(doc.Root, "//b") {
		if extract.Normalize(htmlquery.InnerText(b)) == label {
			hit = b
			break
		}
	}
	if hit == nil {
		return NotFound
	}
	return Found(doc.FindNodes(hit)).
		Ascend(paddedCell).
		Ascend(outerCell).
		NextSibling(valueCell)
}
