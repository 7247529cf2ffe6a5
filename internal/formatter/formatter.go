// Package formatter turns raw model output into a wrapped, emphasis-annotated
// string ready to be dropped into the chat transcript.
package formatter

import (
	"regexp"
	"strings"
)

const (
	// LineWidth is the column at which long lines are wrapped.
	LineWidth = 80

	// MinLineLength is the trimmed length a line must exceed to be kept.
	// Short answers such as "Yes." are dropped along with punctuation noise.
	MinLineLength = 5
)

var emphasisPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Markup describes how the rendering surface expresses a line break and
// strong emphasis.
type Markup struct {
	LineBreak   string
	StrongOpen  string
	StrongClose string
}

// HTML is the markup used by the web transcript.
var HTML = Markup{LineBreak: "<br>", StrongOpen: "<strong>", StrongClose: "</strong>"}

// Plain keeps real newlines and leaves emphasis markers in place.
var Plain = Markup{LineBreak: "\n", StrongOpen: "**", StrongClose: "**"}

type Formatter struct {
	markup Markup
}

func New(markup Markup) *Formatter {
	return &Formatter{markup: markup}
}

// Format renders text with HTML markup.
func Format(text string) string {
	return New(HTML).Format(text)
}

func (f *Formatter) Format(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = wrapLine(lines, line)
	}

	joined := strings.Join(lines, f.markup.LineBreak)
	return emphasisPattern.ReplaceAllString(joined, f.markup.StrongOpen+"${1}"+f.markup.StrongClose)
}

// wrapLine appends the wrapped segments of line to out. Segments produced by
// a break are kept as is; only the final remainder goes through the
// short-line filter.
func wrapLine(out []string, line string) []string {
	runes := []rune(line)
	for len(runes) > LineWidth {
		split := lastSpaceBefore(runes, LineWidth)
		if split == -1 {
			split = LineWidth
		}
		out = append(out, string(runes[:split]))
		runes = []rune(strings.TrimSpace(string(runes[split:])))
	}

	rest := string(runes)
	if len([]rune(strings.TrimSpace(rest))) > MinLineLength {
		out = append(out, rest)
	}
	return out
}

func lastSpaceBefore(runes []rune, limit int) int {
	for i := limit - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
