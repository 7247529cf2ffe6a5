package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty input", "", ""},
		{"short unmarked line unchanged", "Hello there, how are you?", "Hello there, how are you?"},
		{"short lines dropped", "ok\nhello there\n", "hello there"},
		{"one word answer dropped", "Yes.", ""},
		{"lines joined with br", "first line here\nsecond line here", "first line here<br>second line here"},
		{"emphasis", "This is **important** text", "This is <strong>important</strong> text"},
		{"emphasis is non-greedy", "**one** and **two**", "<strong>one</strong> and <strong>two</strong>"},
		{"unmatched marker left alone", "**one** and **two", "<strong>one</strong> and **two"},
		{"emphasis across lines", "**Title line**\nbody text here", "<strong>Title line</strong><br>body text here"},
		{"surrounding whitespace of kept line preserved", "  indented text", "  indented text"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Format(tc.input))
		})
	}
}

func TestFormat_HardBreakWithoutSpaces(t *testing.T) {
	input := strings.Repeat("x", 95)

	got := Format(input)

	assert.Equal(t, strings.Repeat("x", 80)+"<br>"+strings.Repeat("x", 15), got)
}

func TestFormat_BreaksAtLastSpace(t *testing.T) {
	input := strings.Repeat("a", 78) + " " + strings.Repeat("b", 11)
	assert.Len(t, input, 90)

	got := Format(input)

	assert.Equal(t, strings.Repeat("a", 78)+"<br>"+strings.Repeat("b", 11), got)
}

func TestFormat_WrapsRepeatedly(t *testing.T) {
	word := "lorem "
	input := strings.TrimSpace(strings.Repeat(word, 39))

	got := Format(input)

	for _, line := range strings.Split(got, "<br>") {
		assert.LessOrEqual(t, len(line), LineWidth)
		assert.False(t, strings.HasPrefix(line, " "), "line %q should be trimmed", line)
	}
	assert.Equal(t, input, strings.ReplaceAll(got, "<br>", " "))
}

func TestFormat_ShortRemainderAfterWrapDropped(t *testing.T) {
	input := strings.Repeat("a", 80) + " abc"

	assert.Equal(t, strings.Repeat("a", 80), Format(input))
}

func TestFormat_CountsRunes(t *testing.T) {
	input := strings.Repeat("é", 90)

	got := Format(input)

	assert.Equal(t, strings.Repeat("é", 80)+"<br>"+strings.Repeat("é", 10), got)
}

func TestFormatter_PlainMarkup(t *testing.T) {
	f := New(Plain)

	got := f.Format("ok\nThis is **important** text\nsecond line here")

	assert.Equal(t, "This is **important** text\nsecond line here", got)
}

func TestFormat_Deterministic(t *testing.T) {
	input := "A **bold** claim\n" + strings.Repeat("word ", 30)
	assert.Equal(t, Format(input), Format(input))
}
