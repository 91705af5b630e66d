// Package aggregate merges the productions of many records into shared
// publications and builds the co-authorship graph between record owners.
package aggregate

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/lattes/internal/identity"
	"github.com/hyperifyio/lattes/internal/record"
)

var (
	fold  = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	upper = cases.Upper(language.Und)
)

func stripAccents(s string) string {
	out, _, err := transform.String(fold, s)
	if err != nil {
		return s
	}
	return out
}

// CitationKey folds a citation name for matching spellings across records:
// accents, spaces and dots are removed and the result is upper-cased.
// It is used only here, never to decide record ownership.
func CitationKey(name string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '.' {
			return -1
		}
		return r
	}, stripAccents(name))
	return upper.String(s)
}

// titleKey folds a production title to letters and digits.
func titleKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(stripAccents(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Publication is one production shared by one or more record owners.
type Publication struct {
	Title      string   `json:"title"`
	Year       *string  `json:"year"`
	Professors []string `json:"professors"`
}

// authorIndex maps citation keys to owner display names. Keys claimed by
// two owners are dropped.
func authorIndex(recs []record.Professor) map[string]string {
	idx := make(map[string]string)
	ambiguous := make(map[string]bool)
	claim := func(key, owner string) {
		if key == "" || ambiguous[key] {
			return
		}
		if prev, ok := idx[key]; ok && prev != owner {
			log.Debug().Str("key", key).Str("a", prev).Str("b", owner).Msg("ambiguous citation key dropped")
			delete(idx, key)
			ambiguous[key] = true
			return
		}
		idx[key] = owner
	}
	for _, rec := range recs {
		owner := rec.Identification.Name
		if owner == "" {
			continue
		}
		claim(CitationKey(owner), owner)
		claim(CitationKey(identity.Canonical(owner)), owner)
		for _, c := range rec.Identification.CitationNames {
			claim(CitationKey(c), owner)
		}
	}
	return idx
}

// Unify merges the productions of recs by folded title. Each publication
// lists the record owners among its authors, sorted. Publications are
// ordered by folded title.
func Unify(recs []record.Professor) []Publication {
	idx := authorIndex(recs)
	type merged struct {
		pub  Publication
		seen map[string]bool
	}
	byKey := make(map[string]*merged)
	for _, rec := range recs {
		owner := rec.Identification.Name
		if owner == "" {
			continue
		}
		for _, p := range rec.Productions {
			key := titleKey(p.Title)
			if key == "" {
				continue
			}
			m, ok := byKey[key]
			if !ok {
				m = &merged{pub: Publication{Title: p.Title}, seen: make(map[string]bool)}
				byKey[key] = m
			}
			if m.pub.Year == nil && p.Year != nil {
				y := *p.Year
				m.pub.Year = &y
			}
			m.seen[owner] = true
			for _, a := range p.Authors {
				if name, ok := idx[CitationKey(a)]; ok {
					m.seen[name] = true
				}
			}
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pubs := make([]Publication, 0, len(keys))
	for _, k := range keys {
		m := byKey[k]
		for name := range m.seen {
			m.pub.Professors = append(m.pub.Professors, name)
		}
		sort.Strings(m.pub.Professors)
		pubs = append(pubs, m.pub)
	}
	return pubs
}
