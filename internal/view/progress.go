package view

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-matcher/internal/progress"
)

// ProgressCaption names the stage shown next to the bar.
func ProgressCaption(v progress.Value) string {
	switch {
	case v < 30:
		return "Extracting text..."
	case v < 60:
		return "Generating embeddings..."
	case v < 90:
		return "Matching skills & experience..."
	default:
		return "Finalizing verdict..."
	}
}

// ProgressBar draws v as a fixed width bar followed by the percentage.
func ProgressBar(v progress.Value, width int) string {
	if width <= 0 {
		width = 30
	}

	switch {
	case v < progress.Zero:
		v = progress.Zero
	case v > progress.Complete:
		v = progress.Complete
	}

	filled := int(v) * width / int(progress.Complete)

	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat("-", width-filled), v)
}
