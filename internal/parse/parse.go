// Package parse turns located profile sections into typed entries.
//
// Each extractor takes a parsed document, finds its section with the locate
// package and returns zero or more entries in document order. A missing
// section yields an empty, non-nil slice; a sub-field that does not match
// its pattern is left nil.
package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/lattes/internal/extract"
	"github.com/hyperifyio/lattes/internal/locate"
)

const (
	periodCell      = "div.layout-cell-3"
	descriptionCell = "div.layout-cell-9"
)

// OwnerMatcher reports whether a name refers to the profile owner.
type OwnerMatcher interface {
	IsOwner(name string) bool
}

// capture returns the trimmed first group of re in s, or "".
func capture(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// pairs visits each direct-child period cell of container together with its
// first following description cell.
func pairs(container locate.Result, visit func(period, desc *goquery.Selection)) {
	if !container.OK() {
		return
	}
	container.Selection().ChildrenFiltered(periodCell).Each(func(_ int, period *goquery.Selection) {
		desc := period.NextAllFiltered(descriptionCell).First()
		if desc.Length() == 0 {
			return
		}
		visit(period, desc)
	})
}

// sortedSet deduplicates names and sorts them ascending.
func sortedSet(seen map[string]struct{}) []string {
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func text(sel *goquery.Selection) string { return extract.Text(sel, " ") }
