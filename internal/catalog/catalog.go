// Package catalog maps natural-language trigger phrases to shell command templates.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"voxterm/internal/transcript"
)

// Template is one canonical shell command plus its registered trigger phrases.
//
// Templates are immutable after catalog construction. A template may carry at
// most one braced parameter slot (for example "mkdir {name}").
type Template struct {
	Command  string
	Category string
	Phrases  []string

	// Param is the placeholder name inside Command, empty for fixed commands.
	Param string

	order int
}

// Fill substitutes the parameter slot with value.
func (t *Template) Fill(value string) string {
	if t.Param == "" {
		return t.Command
	}
	return strings.ReplaceAll(t.Command, "{"+t.Param+"}", value)
}

// Candidate is one scored match produced by Lookup.
type Candidate struct {
	Template *Template
	Phrase   string
	Score    int

	// ParamValue is the extracted slot value, empty when absent or not needed.
	ParamValue string
}

type phraseEntry struct {
	tpl    *Template
	raw    string
	words  []string
	phrase int
}

// Catalog is the immutable indexed trigger-phrase lookup structure.
type Catalog struct {
	templates []*Template
	fillers   [][]string

	// index maps the first word of each trigger phrase to its entries,
	// shortlisting candidates without a full scan per utterance.
	index map[string][]phraseEntry
}

var placeholderPattern = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)

// paramPrepositions introduce a slot value directly after a matched phrase.
var paramPrepositions = map[string]bool{"to": true, "called": true, "named": true}

// trailingFillers are trimmed from the end of extracted slot values.
var trailingFillers = map[string]bool{"please": true, "now": true}

func build(templates []*Template, fillerPhrases []string) (*Catalog, error) {
	c := &Catalog{
		templates: templates,
		index:     make(map[string][]phraseEntry),
	}

	for i, tpl := range templates {
		tpl.order = i
		if strings.TrimSpace(tpl.Command) == "" {
			return nil, fmt.Errorf("category %q: empty command", tpl.Category)
		}

		placeholders := placeholderPattern.FindAllStringSubmatch(tpl.Command, -1)
		if len(placeholders) > 1 {
			return nil, fmt.Errorf("command %q: more than one parameter slot", tpl.Command)
		}
		if len(placeholders) == 1 {
			tpl.Param = placeholders[0][1]
		}

		if len(tpl.Phrases) == 0 {
			return nil, fmt.Errorf("command %q: no trigger phrases", tpl.Command)
		}
		for j, phrase := range tpl.Phrases {
			normalized := transcript.Normalize(phrase)
			words := transcript.Words(normalized)
			if len(words) == 0 {
				return nil, fmt.Errorf("command %q: empty trigger phrase", tpl.Command)
			}
			tpl.Phrases[j] = strings.Join(words, " ")
			c.index[words[0]] = append(c.index[words[0]], phraseEntry{
				tpl:    tpl,
				raw:    tpl.Phrases[j],
				words:  words,
				phrase: j,
			})
		}
	}

	for _, filler := range fillerPhrases {
		words := transcript.Words(transcript.Normalize(filler))
		if len(words) == 0 {
			continue
		}
		c.fillers = append(c.fillers, words)
	}

	return c, nil
}

// Templates returns catalog entries in declaration order.
func (c *Catalog) Templates() []*Template {
	return c.templates
}

// Lookup scores trigger phrases against a normalized transcript fragment.
//
// A phrase matches when all of its words appear in the fragment in order,
// possibly with intervening words. Score is the phrase word count minus the
// intervening word count; ties order by declaration, then shorter command.
// An empty result means the fragment is unresolved, not an error.
func (c *Catalog) Lookup(fragment string) []Candidate {
	words := transcript.Words(transcript.Normalize(fragment))
	if len(words) == 0 {
		return nil
	}

	seenWords := make(map[string]bool)
	type scored struct {
		entry Candidate
		order int
		idx   int
	}
	var results []scored
	type phraseKey struct {
		tpl *Template
		raw string
	}
	seenPhrase := make(map[phraseKey]bool)

	for _, w := range words {
		if seenWords[w] {
			continue
		}
		seenWords[w] = true

		for _, entry := range c.index[w] {
			key := phraseKey{tpl: entry.tpl, raw: entry.raw}
			if seenPhrase[key] {
				continue
			}
			seenPhrase[key] = true

			end, gaps, ok := matchOrdered(words, entry.words)
			if !ok {
				continue
			}
			score := len(entry.words) - gaps
			if score <= 0 {
				continue
			}

			cand := Candidate{
				Template: entry.tpl,
				Phrase:   entry.raw,
				Score:    score,
			}
			if entry.tpl.Param != "" {
				cand.ParamValue = extractParam(words, end)
			}
			results = append(results, scored{entry: cand, order: entry.tpl.order, idx: entry.phrase})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.entry.Score != b.entry.Score {
			return a.entry.Score > b.entry.Score
		}
		if a.order != b.order {
			return a.order < b.order
		}
		if len(a.entry.Template.Command) != len(b.entry.Template.Command) {
			return len(a.entry.Template.Command) < len(b.entry.Template.Command)
		}
		return a.idx < b.idx
	})

	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, r.entry)
	}
	return out
}

// matchOrdered finds the tightest in-order occurrence of phrase within words.
// It returns the end index of the match and the count of intervening words.
func matchOrdered(words []string, phrase []string) (end int, gaps int, ok bool) {
	bestGaps := -1
	bestEnd := -1

	for start := 0; start <= len(words)-len(phrase); start++ {
		if words[start] != phrase[0] {
			continue
		}
		k := 1
		i := start + 1
		for i < len(words) && k < len(phrase) {
			if words[i] == phrase[k] {
				k++
			}
			i++
		}
		if k != len(phrase) {
			continue
		}
		matchEnd := i - 1
		span := matchEnd - start + 1
		g := span - len(phrase)
		if bestGaps == -1 || g < bestGaps {
			bestGaps = g
			bestEnd = matchEnd
		}
	}

	if bestGaps == -1 {
		return 0, 0, false
	}
	return bestEnd, bestGaps, true
}

// extractParam captures the slot value following "to"/"called"/"named"
// immediately after the matched trigger phrase, trimming trailing filler.
func extractParam(words []string, matchEnd int) string {
	next := matchEnd + 1
	if next >= len(words) || !paramPrepositions[words[next]] {
		return ""
	}

	value := words[next+1:]
	for len(value) > 0 && trailingFillers[value[len(value)-1]] {
		value = value[:len(value)-1]
	}
	return strings.Join(value, " ")
}

// IsFiller reports whether the normalized text consists entirely of
// registered conversational filler phrases.
func (c *Catalog) IsFiller(normalized string) bool {
	words := transcript.Words(normalized)
	if len(words) == 0 {
		return false
	}

	i := 0
	for i < len(words) {
		advanced := 0
		for _, filler := range c.fillers {
			if len(filler) > advanced && hasPrefix(words[i:], filler) {
				advanced = len(filler)
			}
		}
		if advanced == 0 {
			return false
		}
		i += advanced
	}
	return true
}

func hasPrefix(words []string, phrase []string) bool {
	if len(words) < len(phrase) {
		return false
	}
	for i := range phrase {
		if words[i] != phrase[i] {
			return false
		}
	}
	return true
}
