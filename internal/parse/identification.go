package parse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/lattes/internal/extract"
	"github.com/hyperifyio/lattes/internal/locate"
)

var (
	reORCID       = regexp.MustCompile(`https://orcid\.org/(\d{4}-\d{4}-\d{4}-\d{3}[\dX])`)
	reAuthorsNote = regexp.MustCompile(`(?i)\s*\((?:Texto informado pelo autor)\)\s*$`)
)

// Identity is the raw identification block of a profile, before citation
// names are case-normalized.
type Identity struct {
	Name string
	// CitationField is the unsplit value of the citation-names field.
	CitationField string
	LattesID      string
	Nationality   string
	ORCID         string
}

// Identification reads the owner's name, citation-names field, Lattes ID,
// nationality and ORCID. Missing pieces are empty strings.
func Identification(doc extract.Document) Identity {
	if doc.Document == nil {
		return Identity{}
	}
	return Identity{
		Name:          text(doc.Find("h2.nome").First()),
		CitationField: locate.Label(doc, locate.LabelCitationNames).Text(),
		LattesID:      text(doc.Find(`span[style*="#326C99"]`).First()),
		Nationality:   locate.Label(doc, locate.LabelNationality).Text(),
		ORCID:         orcid(locate.Label(doc, locate.LabelORCID)),
	}
}

// orcid finds an orcid.org identifier in the value cell text, then in its
// links.
func orcid(cell locate.Result) string {
	if id := capture(reORCID, cell.Text()); id != "" {
		return id
	}
	var id string
	cell.Selection().Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		id = capture(reORCID, href)
		return id == ""
	})
	return id
}

// Address returns the professional address field.
func Address(doc extract.Document) string {
	return locate.Label(doc, locate.LabelAddress).Text()
}

// Summary returns the profile summary without the trailing
// "(Texto informado pelo autor)" note.
func Summary(doc extract.Document) string {
	if doc.Document == nil {
		return ""
	}
	return strings.TrimSpace(reAuthorsNote.ReplaceAllString(text(doc.Find("p.resumo").First()), ""))
}
