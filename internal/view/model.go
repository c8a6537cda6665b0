// Package view maps analysis results and progress values to what the terminal shows.
package view

import "github.com/spigell/resume-matcher/internal/analysis"

// Band is the qualitative grouping of a score.
type Band int

const (
	BandNone Band = iota
	BandNegative
	BandNeutral
	BandPositive
)

const (
	positiveFrom = 80
	neutralFrom  = 60
)

func (b Band) String() string {
	switch b {
	case BandPositive:
		return "positive"
	case BandNeutral:
		return "neutral"
	case BandNegative:
		return "negative"
	default:
		return "none"
	}
}

// BandFor bands a score: 80 and above is positive, 60 to 79 neutral, below 60 negative.
func BandFor(score int) Band {
	switch {
	case score >= positiveFrom:
		return BandPositive
	case score >= neutralFrom:
		return BandNeutral
	default:
		return BandNegative
	}
}

// Model is the display form of one analysis result.
type Model struct {
	Score         int
	Verdict       string
	Band          Band
	Summary       string
	MatchedSkills []string
	MissingSkills []string
	Suggestions   []analysis.Suggestion
}

// Section is a run of bullets under an optional header.
type Section struct {
	Title   string
	Bullets []string
}

// Build maps a result to its display model. A nil result yields the zero Model.
func Build(result *analysis.Result) Model {
	if result == nil {
		return Model{}
	}

	return Model{
		Score:         result.Score,
		Verdict:       result.Verdict,
		Band:          BandFor(result.Score),
		Summary:       result.Summary,
		MatchedSkills: append([]string{}, result.MatchedSkills...),
		MissingSkills: append([]string{}, result.MissingSkills...),
		Suggestions:   append([]analysis.Suggestion{}, result.Suggestions...),
	}
}

// IsZero reports whether the model carries no result.
func (m Model) IsZero() bool { return m.Band == BandNone }

// Sections groups suggestions in received order. Bullets that come before the first
// header form an untitled section; a header with no bullets still yields a section.
func (m Model) Sections() []Section {
	var sections []Section

	for _, s := range m.Suggestions {
		switch s.Kind {
		case analysis.SuggestionHeader:
			sections = append(sections, Section{Title: s.Text})
		default:
			if len(sections) == 0 {
				sections = append(sections, Section{})
			}
			last := &sections[len(sections)-1]
			last.Bullets = append(last.Bullets, s.Text)
		}
	}

	return sections
}
