package parse

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hyperifyio/lattes/internal/extract"
	"github.com/hyperifyio/lattes/internal/locate"
	"github.com/hyperifyio/lattes/internal/record"
)

const (
	productionBlock  = "div.layout-cell-11"
	productionMarker = "span.transform"
	productionBadge  = "span.informacao-artigo"
	authorsSeparator = " . "
)

// MaxCoauthorLength bounds co-author tokens in runes. Longer tokens come from
// author lists that failed to split and are not names.
const MaxCoauthorLength = 70

var (
	reOrdinal = regexp.MustCompile(`^\d+\.\s*`)
	reYear    = regexp.MustCompile(`\b(20\d{2})\b`)
	reJournal = regexp.MustCompile(`Revista:\s*([^.]+)`)
	reDOI     = regexp.MustCompile(`DOI:\s*(\S+)`)
	rePages   = regexp.MustCompile(`Páginas:\s*(\S+)`)
)

var markup = bluemonday.StrictPolicy()

// citation is one production block split into its author list and the rest.
type citation struct {
	full    string
	authors string
	title   string
}

// citations visits every genuine production block in document order.
// Blocks without the marker element, or without the author separator, are
// skipped.
func citations(doc extract.Document, visit func(citation)) {
	container := locate.Anchor(doc, locate.AnchorProductions)
	if !container.OK() {
		return
	}
	container.Selection().Find(productionBlock).Each(func(_ int, block *goquery.Selection) {
		if block.Find(productionMarker).Length() == 0 {
			return
		}
		full := text(extract.Strip(block, productionBadge))
		parts := strings.Split(strings.TrimSpace(reOrdinal.ReplaceAllString(full, "")), authorsSeparator)
		if len(parts) < 2 {
			return
		}
		visit(citation{full: full, authors: parts[0], title: parts[1]})
	})
}

// Productions extracts the bibliographic production section.
func Productions(doc extract.Document) []record.Production {
	out := []record.Production{}
	citations(doc, func(c citation) {
		authors := []string{}
		for _, a := range strings.Split(c.authors, ";") {
			if a = strings.TrimSpace(a); a != "" {
				authors = append(authors, a)
			}
		}
		out = append(out, record.Production{
			Title:   c.title,
			Authors: authors,
			Year:    record.Ptr(capture(reYear, c.full)),
			Journal: record.Ptr(capture(reJournal, c.full)),
			DOI:     record.Ptr(capture(reDOI, c.full)),
			Pages:   record.Ptr(capture(rePages, c.full)),
		})
	})
	return out
}

// Coauthors returns the distinct authors of the owner's productions other
// than the owner, sorted ascending. Tokens of MaxCoauthorLength runes or
// more are ignored.
func Coauthors(doc extract.Document, owner OwnerMatcher) []string {
	seen := map[string]struct{}{}
	citations(doc, func(c citation) {
		for _, token := range strings.Split(c.authors, ";") {
			name := cleanAuthor(token)
			if name == "" || utf8.RuneCountInString(name) >= MaxCoauthorLength || owner.IsOwner(name) {
				continue
			}
			seen[name] = struct{}{}
		}
	})
	return sortedSet(seen)
}

// cleanAuthor removes markup remnants such as escaped <b> tags.
func cleanAuthor(token string) string {
	return strings.TrimSpace(html.UnescapeString(markup.Sanitize(token)))
}
