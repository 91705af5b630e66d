package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/lattes/internal/record"
)

// WriteRosterPDF renders a one-section-per-record roster to path.
func WriteRosterPDF(path string, recs []record.Professor) error {
	pdf := rosterPDF(recs)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// RenderRosterPDF writes the roster to w.
func RenderRosterPDF(w io.Writer, recs []record.Professor) error {
	return rosterPDF(recs).Output(w)
}

func rosterPDF(recs []record.Professor) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Lattes roster", true)
	pdf.SetCreator("lattes-parse", true)
	// Core fonts are cp1252; the translator keeps Portuguese accents.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	if len(recs) == 0 {
		pdf.MultiCell(0, 5, tr("No records."), "", "L", false)
		return pdf
	}
	for i, rec := range recs {
		if i > 0 {
			pdf.Ln(4)
		}
		id := rec.Identification
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr(id.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		if id.LattesID != "" {
			pdf.CellFormat(0, 5, tr("Lattes: "+id.LattesID), "", 1, "L", false, 0, "")
		}
		if id.ORCID != nil {
			pdf.WriteLinkString(5, tr("ORCID: "+*id.ORCID), "https://orcid.org/"+*id.ORCID)
			pdf.Ln(5)
		}
		if id.Nationality != "" {
			pdf.CellFormat(0, 5, tr("Nacionalidade: "+id.Nationality), "", 1, "L", false, 0, "")
		}
		counts := fmt.Sprintf("Formações: %d   Vínculos: %d   Projetos: %d   Produções: %d",
			len(rec.Education), len(rec.Bonds), len(rec.ResearchProjects)+len(rec.ExtensionProjects), len(rec.Productions))
		pdf.CellFormat(0, 5, tr(counts), "", 1, "L", false, 0, "")
		if len(rec.Coauthors) > 0 {
			pdf.MultiCell(0, 5, tr("Coautores: "+strings.Join(rec.Coauthors, "; ")), "", "L", false)
		}
		if len(rec.ProjectCollaborators) > 0 {
			pdf.MultiCell(0, 5, tr("Colaboradores: "+strings.Join(rec.ProjectCollaborators, "; ")), "", "L", false)
		}
	}
	return pdf
}
