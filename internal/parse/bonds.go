package parse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/lattes/internal/extract"
	"github.com/hyperifyio/lattes/internal/locate"
	"github.com/hyperifyio/lattes/internal/record"
)

const (
	institutionHeader = "div.inst_back"
	bondPeriodCell    = "div.layout-cell-3.text-align-right"
	bondMarker        = "Vínculo:"
)

var (
	reBondKind  = regexp.MustCompile(`Vínculo:\s*([^,]+)`)
	reFramework = regexp.MustCompile(`Enquadramento Funcional:\s*([^,]+)`)
	reWorkload  = regexp.MustCompile(`Carga horária:\s*([^,]+)`)
	reRegime    = regexp.MustCompile(`Regime:\s*([^.]+)`)
)

// Activity field labels. A labelled block ends where the next one starts.
const (
	labelRole          = "Cargo ou função"
	labelCourses       = "Disciplinas ministradas"
	labelResearchLines = "Linhas de pesquisa"
	labelSpecification = "Especificação"
)

var activityLabels = []string{labelRole, labelCourses, labelResearchLines, labelSpecification}

// Bonds extracts the professional section: one Bond per "Vínculo:" entry,
// each carrying the activities listed under it.
//
// Activities listed under an institution before its first bond are kept
// aside and attached to that bond once it opens. If the institution never
// opens a bond they are dropped.
func Bonds(doc extract.Document) []record.Bond {
	out := []record.Bond{}
	container := locate.Anchor(doc, locate.AnchorProfessional)
	if !container.OK() {
		return out
	}
	container.Selection().Find(institutionHeader).Each(func(_ int, header *goquery.Selection) {
		institution := text(header.Find("b").First())
		var (
			open    *record.Bond
			pending []record.Activity
		)
		flush := func() {
			if open != nil {
				out = append(out, *open)
				open = nil
			}
		}
		header.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			if sib.Is(institutionHeader) {
				return false
			}
			if !sib.Is(bondPeriodCell) {
				return true
			}
			desc := sib.NextAllFiltered(descriptionCell).First()
			if desc.Length() == 0 {
				return true
			}
			period := text(sib)
			lines := extract.Lines(desc)
			description := strings.Join(lines, " ")
			if description == "" {
				// Sub-heading rows such as "Atividades".
				return true
			}
			if strings.Contains(description, bondMarker) {
				flush()
				open = newBond(institution, period, description)
				open.Activities = append(open.Activities, pending...)
				pending = nil
				return true
			}
			activity := newActivity(period, description, lines)
			if open != nil {
				open.Activities = append(open.Activities, activity)
			} else {
				pending = append(pending, activity)
			}
			return true
		})
		flush()
		if len(pending) > 0 {
			log.Debug().Str("institution", institution).Int("activities", len(pending)).Msg("activities without a bond dropped")
		}
	})
	return out
}

func newBond(institution, period, description string) *record.Bond {
	return &record.Bond{
		Institution: institution,
		Period:      period,
		Kind:        capture(reBondKind, description),
		Framework:   capture(reFramework, description),
		Workload:    record.Ptr(capture(reWorkload, description)),
		Regime:      record.Ptr(capture(reRegime, description)),
		Activities:  []record.Activity{},
	}
}

func newActivity(period, description string, lines []string) record.Activity {
	block := strings.Join(lines, "\n")
	a := record.Activity{
		Period:        period,
		Description:   description,
		Courses:       splitBlock(labelled(block, labelCourses)),
		ResearchLines: splitBlock(labelled(block, labelResearchLines)),
	}
	if role, ok := labelledOK(block, labelRole); ok {
		a.Role = record.Ptr(extract.Normalize(role))
	}
	return a
}

func labelled(block, label string) string {
	s, _ := labelledOK(block, label)
	return s
}

// labelledOK returns the text following label up to the next activity label
// or the end of block.
func labelledOK(block, label string) (string, bool) {
	i := strings.Index(block, label)
	if i < 0 {
		return "", false
	}
	rest := block[i+len(label):]
	end := len(rest)
	for _, other := range activityLabels {
		if j := strings.Index(rest, other); j >= 0 && j < end {
			end = j
		}
	}
	return rest[:end], true
}

// splitBlock splits a labelled block on line breaks and semicolons.
func splitBlock(block string) []string {
	out := []string{}
	for _, line := range strings.Split(block, "\n") {
		for _, item := range strings.Split(line, ";") {
			if item = extract.Normalize(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
