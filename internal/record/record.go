// Package record defines the structured output produced for one profile
// document. Values are built once by the assembler and never mutated after.
package record

// EducationType is the classified kind of an academic formation entry.
type EducationType string

const (
	EducationDoctorate      EducationType = "Doutorado"
	EducationMasters        EducationType = "Mestrado"
	EducationSpecialization EducationType = "Especialização"
	EducationUndergraduate  EducationType = "Graduação"
	EducationPostDoctorate  EducationType = "Pós-doutorado"
	EducationImprovement    EducationType = "Aperfeiçoamento"
	EducationTechnical      EducationType = "Técnico/Profissionalizante"
	EducationUnidentified   EducationType = "Não identificado"
)

// Identification holds who the profile belongs to.
type Identification struct {
	Name string `json:"name"`
	// CitationNames are upper-cased variants the owner is credited under.
	CitationNames []string `json:"citation_names"`
	LattesID      string   `json:"lattes_id"`
	Nationality   string   `json:"nationality"`
	ORCID         *string  `json:"orcid"`
}

type Education struct {
	Period      string        `json:"period"`
	Type        EducationType `json:"type"`
	Description string        `json:"description"`
	Title       *string       `json:"title"`
	Advisor     *string       `json:"advisor"`
	Scholarship *string       `json:"scholarship"`
}

// Formation is a period/description pair with no further structure. It is
// used for post-doctoral stays and complementary formation.
type Formation struct {
	Period      string `json:"period"`
	Description string `json:"description"`
}

type Activity struct {
	Period        string   `json:"period"`
	Description   string   `json:"description"`
	Role          *string  `json:"role"`
	Courses       []string `json:"courses"`
	ResearchLines []string `json:"research_lines"`
}

// Bond is an employment or affiliation period at one institution.
type Bond struct {
	Institution string     `json:"institution"`
	Period      string     `json:"period"`
	Kind        string     `json:"kind"`
	Framework   string     `json:"framework"`
	Workload    *string    `json:"workload"`
	Regime      *string    `json:"regime"`
	Activities  []Activity `json:"activities"`
}

type Project struct {
	Period string  `json:"period"`
	Title  string  `json:"title"`
	Status *string `json:"status"`
	Nature *string `json:"nature"`
	// Members is the raw participant list; the owner may appear here.
	Members []string `json:"members"`
}

type Production struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Year    *string  `json:"year"`
	Journal *string  `json:"journal"`
	DOI     *string  `json:"doi"`
	Pages   *string  `json:"pages"`
}

// Professor is the aggregate record for one profile document.
type Professor struct {
	Identification         Identification `json:"identification"`
	Address                string         `json:"address"`
	Summary                string         `json:"summary"`
	Education              []Education    `json:"education"`
	PostDocs               []Formation    `json:"post_docs"`
	ComplementaryFormation []Formation    `json:"complementary_formation"`
	Bonds                  []Bond         `json:"bonds"`
	ResearchProjects       []Project      `json:"research_projects"`
	ExtensionProjects      []Project      `json:"extension_projects"`
	Productions            []Production   `json:"productions"`
	// Coauthors and ProjectCollaborators never contain the owner; both are
	// deduplicated and sorted ascending.
	Coauthors            []string `json:"coauthors"`
	ProjectCollaborators []string `json:"project_collaborators"`
}

// Ptr returns a pointer to s, or nil when s is empty.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
