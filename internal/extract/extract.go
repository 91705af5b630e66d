// Package extract parses profile pages into documents and reads their
// visible text with whitespace normalized.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

// Document is a parsed profile page. The embedded goquery document shares
// its tree with Root, so XPath and CSS lookups see the same nodes.
type Document struct {
	*goquery.Document
	Root *html.Node
}

// Parse decodes input to UTF-8 when needed and parses it as HTML. Fragments
// without <html>/<body> are accepted; the parser synthesizes the wrappers.
func Parse(input []byte) (Document, error) {
	decoded, err := toUTF8(input)
	if err != nil {
		return Document{}, err
	}
	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}
	return Document{Document: goquery.NewDocumentFromNode(root), Root: root}, nil
}

// toUTF8 passes valid UTF-8 through untouched and transcodes anything else
// using the detected charset. Profile pages are frequently served as
// ISO-8859-1.
func toUTF8(input []byte) ([]byte, error) {
	if utf8.Valid(input) {
		return input, nil
	}
	name := "windows-1252"
	if res, err := chardet.NewHtmlDetector().DetectBest(input); err == nil && res != nil && res.Charset != "" {
		name = res.Charset
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		enc, _ = htmlindex.Get("windows-1252")
	}
	out, err := enc.NewDecoder().Bytes(input)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

// Text returns the visible text of every node in sel. Each text node is
// whitespace-collapsed and trimmed, empty pieces are dropped, and the rest
// are joined with sep.
func Text(sel *goquery.Selection, sep string) string {
	return strings.Join(Strings(sel), sep)
}

// Strings returns the non-empty normalized text fragments of sel in
// document order.
func Strings(sel *goquery.Selection) []string {
	if sel == nil {
		return nil
	}
	var out []string
	for _, n := range sel.Nodes {
		collectText(n, func(s string) { out = append(out, s) }, nil)
	}
	return out
}

// Lines is like Strings but splits on <br> elements: fragments between two
// breaks are joined by a single space and each resulting line is returned.
func Lines(sel *goquery.Selection) []string {
	if sel == nil {
		return nil
	}
	var lines []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
			cur = nil
		}
	}
	for _, n := range sel.Nodes {
		collectText(n, func(s string) { cur = append(cur, s) }, flush)
	}
	flush()
	return lines
}

// Strip removes every descendant of sel matching one of the selectors. It is
// used to drop decorative nodes (tooltip icons, badges) whose text would
// otherwise leak into descriptions. Strip mutates the underlying document.
func Strip(sel *goquery.Selection, selectors ...string) *goquery.Selection {
	if sel == nil {
		return sel
	}
	for _, s := range selectors {
		sel.Find(s).Remove()
	}
	return sel
}

// Normalize collapses internal whitespace runs to single spaces and trims
// both ends.
func Normalize(s string) string {
	return strings.TrimSpace(collapseSpaces(s))
}

func collectText(n *html.Node, emit func(string), lineBreak func()) {
	switch n.Type {
	case html.TextNode:
		if s := Normalize(n.Data); s != "" {
			emit(s)
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template":
			return
		case "br":
			if lineBreak != nil {
				lineBreak()
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, emit, lineBreak)
	}
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
