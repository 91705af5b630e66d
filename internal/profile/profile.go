// Package profile assembles one record per profile document.
//
// Assembly is all or nothing: Assemble returns either a complete record or
// an error, never a partially filled record.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hyperifyio/lattes/internal/extract"
	"github.com/hyperifyio/lattes/internal/identity"
	"github.com/hyperifyio/lattes/internal/parse"
	"github.com/hyperifyio/lattes/internal/record"
)

var (
	// ErrEmptyIdentity is returned when a document assembles but names no
	// owner.
	ErrEmptyIdentity = errors.New("empty owner name")
	// ErrNotHTML rejects payloads that are not text, such as PDFs or error
	// images saved in place of a profile.
	ErrNotHTML = errors.New("not an html document")
	// ErrEmptyDocument rejects empty or whitespace-only input.
	ErrEmptyDocument = errors.New("empty document")
	// ErrPanic marks an extraction step that panicked.
	ErrPanic = errors.New("extraction panicked")
)

// AssemblyError reports a document that could not be assembled.
type AssemblyError struct {
	DocID string
	Cause error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble %s: %v", e.DocID, e.Cause)
}

func (e *AssemblyError) Unwrap() error { return e.Cause }

// assembly is the working state of one Assemble call.
type assembly struct {
	doc   extract.Document
	owner *identity.Resolver
	rec   record.Professor
}

type step struct {
	name string
	run  func(*assembly)
}

// steps run in order; identification comes first because the filtered name
// lists depend on the owner.
var steps = []step{
	{"identification", func(a *assembly) {
		id := parse.Identification(a.doc)
		a.owner = identity.New(id.Name, id.CitationField)
		a.rec.Identification = record.Identification{
			Name:          a.owner.Name(),
			CitationNames: a.owner.Variants(),
			LattesID:      id.LattesID,
			Nationality:   id.Nationality,
			ORCID:         record.Ptr(id.ORCID),
		}
	}},
	{"address", func(a *assembly) { a.rec.Address = parse.Address(a.doc) }},
	{"summary", func(a *assembly) { a.rec.Summary = parse.Summary(a.doc) }},
	{"education", func(a *assembly) { a.rec.Education = parse.Education(a.doc) }},
	{"post-docs", func(a *assembly) { a.rec.PostDocs = parse.PostDocs(a.doc) }},
	{"complementary", func(a *assembly) { a.rec.ComplementaryFormation = parse.ComplementaryFormation(a.doc) }},
	{"bonds", func(a *assembly) { a.rec.Bonds = parse.Bonds(a.doc) }},
	{"research-projects", func(a *assembly) { a.rec.ResearchProjects = parse.ResearchProjects(a.doc) }},
	{"extension-projects", func(a *assembly) { a.rec.ExtensionProjects = parse.ExtensionProjects(a.doc) }},
	{"productions", func(a *assembly) { a.rec.Productions = parse.Productions(a.doc) }},
	{"coauthors", func(a *assembly) { a.rec.Coauthors = parse.Coauthors(a.doc, a.owner) }},
	{"collaborators", func(a *assembly) { a.rec.ProjectCollaborators = parse.Collaborators(a.doc, a.owner) }},
}

// Assembler runs every extractor over a document. The zero value is not
// usable; call New.
type Assembler struct {
	steps []step
}

// New returns an Assembler with the full extraction pipeline.
func New() *Assembler {
	return &Assembler{steps: steps}
}

// Assemble builds the record of one document. Input that is empty or not
// text, and any panic raised while extracting, yield an *AssemblyError. A
// document without an owner name yields an error wrapping ErrEmptyIdentity.
// Assemble is safe for concurrent use.
func (a *Assembler) Assemble(docID string, content []byte) (rec record.Professor, err error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return record.Professor{}, &AssemblyError{DocID: docID, Cause: ErrEmptyDocument}
	}
	if mt := mimetype.Detect(content); !strings.HasPrefix(mt.String(), "text/") {
		return record.Professor{}, &AssemblyError{DocID: docID, Cause: fmt.Errorf("%w: detected %s", ErrNotHTML, mt.String())}
	}
	doc, err := extract.Parse(content)
	if err != nil {
		return record.Professor{}, &AssemblyError{DocID: docID, Cause: err}
	}

	state := &assembly{doc: doc}
	current := ""
	defer func() {
		if p := recover(); p != nil {
			rec = record.Professor{}
			err = &AssemblyError{DocID: docID, Cause: fmt.Errorf("%w in %s: %v", ErrPanic, current, p)}
		}
	}()
	for _, s := range a.steps {
		current = s.name
		s.run(state)
	}

	if state.rec.Identification.Name == "" {
		return record.Professor{}, fmt.Errorf("%s: %w", docID, ErrEmptyIdentity)
	}
	return state.rec, nil
}
