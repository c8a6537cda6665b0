package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// RenderOptions tune the terminal output.
type RenderOptions struct {
	Color bool
}

type styles struct {
	title    func(interface{}) string
	positive func(interface{}) string
	neutral  func(interface{}) string
	negative func(interface{}) string
	matched  func(interface{}) string
	missing  func(interface{}) string
}

func plain(v interface{}) string { return fmt.Sprint(v) }

func newStyles(color bool) styles {
	if !color {
		return styles{plain, plain, plain, plain, plain, plain}
	}

	return styles{
		title:    promptui.Styler(promptui.FGBold),
		positive: promptui.Styler(promptui.FGGreen, promptui.FGBold),
		neutral:  promptui.Styler(promptui.FGYellow, promptui.FGBold),
		negative: promptui.Styler(promptui.FGRed, promptui.FGBold),
		matched:  promptui.Styler(promptui.FGGreen),
		missing:  promptui.Styler(promptui.FGRed),
	}
}

func (s styles) badge(b Band) func(interface{}) string {
	switch b {
	case BandPositive:
		return s.positive
	case BandNeutral:
		return s.neutral
	default:
		return s.negative
	}
}

// Render writes the model as a terminal report. The zero Model renders nothing.
func Render(w io.Writer, m Model, opts RenderOptions) error {
	if m.IsZero() {
		return nil
	}

	st := newStyles(opts.Color)

	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n", st.title(fmt.Sprintf("%d%%", m.Score)), st.badge(m.Band)(m.Verdict))

	fmt.Fprintln(&b, st.title("Executive Summary"))
	fmt.Fprintf(&b, "%s\n\n", m.Summary)

	fmt.Fprintln(&b, st.title("Matched Skills"))
	fmt.Fprintf(&b, "%s\n\n", chips(m.MatchedSkills, st.matched))

	fmt.Fprintln(&b, st.title("Missing / To Improve"))
	fmt.Fprintf(&b, "%s\n", chips(m.MissingSkills, st.missing))

	sections := m.Sections()
	if len(sections) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.title("Improvement Suggestions"))
	}
	for _, section := range sections {
		if section.Title != "" {
			fmt.Fprintf(&b, "\n  %s\n", st.title(section.Title))
		}
		for _, bullet := range section.Bullets {
			fmt.Fprintf(&b, "  - %s\n", bullet)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func chips(items []string, style func(interface{}) string) string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, style("["+item+"]"))
	}
	return strings.Join(labels, " ")
}
