package parse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/lattes/internal/extract"
	"github.com/hyperifyio/lattes/internal/locate"
	"github.com/hyperifyio/lattes/internal/record"
)

// UntitledProject is the title given to a project cell with no text.
const UntitledProject = "Título não encontrado"

var (
	reStatus  = regexp.MustCompile(`Situação:\s*([^;]+);`)
	reNature  = regexp.MustCompile(`Natureza:\s*([^.]+)\.`)
	reMembers = regexp.MustCompile(`Integrantes:\s*([^|]+)`)
)

// Prefixes of bibliographic fragments that sometimes land in project cells.
var misplacedPrefixes = []string{"Periódico:", "Grande área:"}

// ResearchProjects extracts the research projects section.
func ResearchProjects(doc extract.Document) []record.Project {
	return projects(locate.Anchor(doc, locate.AnchorResearch))
}

// ExtensionProjects extracts the extension projects section.
func ExtensionProjects(doc extract.Document) []record.Project {
	return projects(locate.Anchor(doc, locate.AnchorExtension))
}

func projects(container locate.Result) []record.Project {
	out := []record.Project{}
	if !container.OK() {
		return out
	}
	periods := container.Selection().Find(periodCell)
	descs := container.Selection().Find(descriptionCell)
	n := min(periods.Length(), descs.Length())
	for i := 0; i < n; i++ {
		lines := extract.Strings(descs.Eq(i))
		title := UntitledProject
		if len(lines) > 0 {
			title = lines[0]
		}
		if misplaced(title) {
			continue
		}
		full := strings.Join(lines, " ")
		out = append(out, record.Project{
			Period:  text(periods.Eq(i)),
			Title:   title,
			Status:  record.Ptr(capture(reStatus, full)),
			Nature:  record.Ptr(capture(reNature, full)),
			Members: Members(full),
		})
	}
	return out
}

func misplaced(title string) bool {
	for _, p := range misplacedPrefixes {
		if strings.HasPrefix(title, p) {
			return true
		}
	}
	return false
}

// Members parses the "Integrantes:" field of a project description: entries
// separated by "/", each "Name - Role". Names keep document order and are
// not filtered against the owner.
func Members(description string) []string {
	out := []string{}
	m := reMembers.FindStringSubmatch(description)
	if m == nil {
		return out
	}
	for _, entry := range strings.Split(m[1], "/") {
		name, _, _ := strings.Cut(entry, " - ")
		name = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(name), "."))
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Collaborators returns the distinct project participants other than the
// owner, sorted ascending. The research section is used; the extension
// section is consulted only when the research section is absent.
func Collaborators(doc extract.Document, owner OwnerMatcher) []string {
	container := locate.Anchor(doc, locate.AnchorResearch)
	if !container.OK() {
		container = locate.Anchor(doc, locate.AnchorExtension)
	}
	seen := map[string]struct{}{}
	container.Selection().Find(descriptionCell).Each(func(_ int, desc *goquery.Selection) {
		for _, name := range Members(text(desc)) {
			if !owner.IsOwner(name) {
				seen[name] = struct{}{}
			}
		}
	})
	return sortedSet(seen)
}
