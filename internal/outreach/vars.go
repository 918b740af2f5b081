package outreach

import (
	"regexp"
	"sort"
	"strings"
)

// The three personalization syntaxes seen across providers. Double-brace
// must be stripped before single-brace runs or its interior would match
// twice.
var (
	doubleBracePattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)
	bracketPattern     = regexp.MustCompile(`\[\[\s*([^\[\]]+?)\s*\]\]`)
	singleBracePattern = regexp.MustCompile(`\{\s*([^{}]+?)\s*\}`)
)

// ExtractVariables pulls personalization variable names out of template
// text. It recognizes {{name}}, [[name]], and {name}, deduplicates, and
// preserves first-appearance order across the given texts (subject first,
// then body, by convention).
func ExtractVariables(texts ...string) []string {
	var vars []string
	seen := make(map[string]struct{})

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		vars = append(vars, name)
	}

	type hit struct {
		pos  int
		name string
	}

	for _, text := range texts {
		if text == "" {
			continue
		}
		var hits []hit
		for _, m := range doubleBracePattern.FindAllStringSubmatchIndex(text, -1) {
			hits = append(hits, hit{m[0], text[m[2]:m[3]]})
		}
		// Blank double-brace spans (same length, so offsets hold) so {name}
		// doesn't re-match their interiors.
		remainder := doubleBracePattern.ReplaceAllStringFunc(text, func(s string) string {
			return strings.Repeat(" ", len(s))
		})
		for _, m := range bracketPattern.FindAllStringSubmatchIndex(remainder, -1) {
			hits = append(hits, hit{m[0], remainder[m[2]:m[3]]})
		}
		for _, m := range singleBracePattern.FindAllStringSubmatchIndex(remainder, -1) {
			hits = append(hits, hit{m[0], remainder[m[2]:m[3]]})
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
		for _, h := range hits {
			add(h.name)
		}
	}

	return vars
}
