// Package identity resolves which names refer to a profile's owner.
//
// Matching is exact after case normalization. Spelling variants that differ
// in anything but letter case (accents, missing initials, typos) are not
// recognized as the owner.
package identity

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/lattes/internal/extract"
)

// Name particles that do not contribute an initial to the canonical form.
var particles = map[string]bool{
	"de": true, "da": true, "do": true, "das": true, "dos": true, "e": true,
}

// Key is the comparison form of a name: NFC, whitespace-collapsed and
// upper-cased.
func Key(name string) string {
	return cases.Upper(language.Und).String(norm.NFC.String(extract.Normalize(name)))
}

// Canonical builds the formal citation form of a display name: the last
// word upper-cased, ", ", then the initial of each remaining given name
// followed by a period. "Yuri Alves de Monteiro Barbosa" becomes
// "BARBOSA, Y.A.M.". A single-word name is returned upper-cased.
func Canonical(displayName string) string {
	words := strings.Fields(extract.Normalize(displayName))
	if len(words) == 0 {
		return ""
	}
	surname := Key(words[len(words)-1])
	if len(words) == 1 {
		return surname
	}
	var initials strings.Builder
	for _, w := range words[:len(words)-1] {
		if particles[strings.ToLower(w)] {
			continue
		}
		r := []rune(Key(w))
		initials.WriteRune(r[0])
		initials.WriteByte('.')
	}
	if initials.Len() == 0 {
		return surname
	}
	return surname + ", " + initials.String()
}

// SplitCitationField splits the semicolon-delimited citation-names field
// into distinct keys in field order.
func SplitCitationField(field string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(field, ";") {
		k := Key(part)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Resolver holds the name variants of one owner.
type Resolver struct {
	name     string
	variants []string
	keys     map[string]struct{}
}

// New builds a Resolver from the owner's display name and the raw
// citation-names field. The variant set is the split field plus the
// canonical form of the display name; the display name itself is also
// matched.
func New(displayName, citationField string) *Resolver {
	r := &Resolver{name: extract.Normalize(displayName), keys: map[string]struct{}{}}
	variants := SplitCitationField(citationField)
	if c := Canonical(displayName); c != "" {
		variants = append(variants, c)
	}
	for _, v := range variants {
		if _, dup := r.keys[v]; dup {
			continue
		}
		r.keys[v] = struct{}{}
		r.variants = append(r.variants, v)
	}
	sort.Strings(r.variants)
	if k := Key(displayName); k != "" {
		r.keys[k] = struct{}{}
	}
	return r
}

// Name returns the owner's display name.
func (r *Resolver) Name() string { return r.name }

// Variants returns the case-normalized citation names, sorted. The slice is
// never nil.
func (r *Resolver) Variants() []string {
	out := make([]string, len(r.variants))
	copy(out, r.variants)
	return out
}

// IsOwner reports whether name equals the display name or a citation
// variant, ignoring case.
func (r *Resolver) IsOwner(name string) bool {
	k := Key(name)
	if k == "" {
		return false
	}
	_, ok := r.keys[k]
	return ok
}
