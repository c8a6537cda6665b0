package analysis

import "strings"

// SectionMarker prefixes suggestion entries that open a new section.
const SectionMarker = "###"

type SuggestionKind int

const (
	SuggestionBullet SuggestionKind = iota
	SuggestionHeader
)

func (k SuggestionKind) String() string {
	if k == SuggestionHeader {
		return "header"
	}
	return "bullet"
}

// Suggestion is one entry of the suggestions list, already classified.
type Suggestion struct {
	Kind SuggestionKind
	Text string
}

// Result is a validated fit assessment. It is never modified after decoding.
type Result struct {
	Score         int
	Verdict       string
	Summary       string
	MatchedSkills []string
	MissingSkills []string
	Suggestions   []Suggestion
}

// ParseSuggestions classifies raw entries in their original order. Headers lose the marker and
// surrounding whitespace; bullets are kept verbatim.
func ParseSuggestions(entries []string) []Suggestion {
	out := make([]Suggestion, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry, SectionMarker) {
			out = append(out, Suggestion{
				Kind: SuggestionHeader,
				Text: strings.TrimSpace(strings.TrimPrefix(entry, SectionMarker)),
			})
			continue
		}
		out = append(out, Suggestion{Kind: SuggestionBullet, Text: entry})
	}
	return out
}
