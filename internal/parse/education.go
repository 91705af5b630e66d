package parse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/lattes/internal/extract"
	"github.com/hyperifyio/lattes/internal/locate"
	"github.com/hyperifyio/lattes/internal/record"
)

// educationRules is checked in order; the first rule with a matching keyword
// decides the type.
var educationRules = []struct {
	kind     record.EducationType
	keywords []string
}{
	{record.EducationDoctorate, []string{"Doutorado"}},
	{record.EducationMasters, []string{"Mestrado"}},
	{record.EducationSpecialization, []string{"Especialização"}},
	{record.EducationUndergraduate, []string{"Graduação"}},
	{record.EducationPostDoctorate, []string{"Pós-Doutorado", "Pós-doutorado"}},
	{record.EducationImprovement, []string{"Aperfeiçoamento"}},
	{record.EducationTechnical, []string{"Curso técnico/profissionalizante"}},
}

var (
	reTitle       = regexp.MustCompile(`Título:\s*([^.]+)`)
	reAdvisor     = regexp.MustCompile(`Orientador:\s*([^.]+)`)
	reScholarship = regexp.MustCompile(`Bolsista do\(a\):\s*([^.]+)`)
)

// ClassifyEducation returns the type of the first rule whose keyword occurs
// in description.
func ClassifyEducation(description string) record.EducationType {
	for _, rule := range educationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(description, kw) {
				return rule.kind
			}
		}
	}
	return record.EducationUnidentified
}

// Education extracts the academic formation section.
func Education(doc extract.Document) []record.Education {
	out := []record.Education{}
	pairs(locate.Anchor(doc, locate.AnchorEducation), func(period, desc *goquery.Selection) {
		description := text(extract.Strip(desc, "a.tooltip-oasis"))
		out = append(out, record.Education{
			Period:      text(period),
			Type:        ClassifyEducation(description),
			Description: description,
			Title:       record.Ptr(capture(reTitle, description)),
			Advisor:     record.Ptr(capture(reAdvisor, description)),
			Scholarship: record.Ptr(capture(reScholarship, description)),
		})
	})
	return out
}

// PostDocs extracts post-doctoral stays.
func PostDocs(doc extract.Document) []record.Formation {
	return formations(doc, locate.AnchorPostDoc)
}

// ComplementaryFormation extracts short courses and other complementary
// formation.
func ComplementaryFormation(doc extract.Document) []record.Formation {
	return formations(doc, locate.AnchorComplementary)
}

func formations(doc extract.Document, anchor string) []record.Formation {
	out := []record.Formation{}
	pairs(locate.Anchor(doc, anchor), func(period, desc *goquery.Selection) {
		out = append(out, record.Formation{Period: text(period), Description: text(desc)})
	})
	return out
}
