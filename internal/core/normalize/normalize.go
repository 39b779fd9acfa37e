// Package normalize cleans raw report text and indexes its lines.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHSpace     = regexp.MustCompile(`[ \t\f\v]+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// Text is a normalized report with a byte offset for the start of every line.
type Text struct {
	s     string
	lines []int
}

// Normalize cleans s and builds its line index. It fails only when nothing is
// left after trimming.
func Normalize(s string) (Text, error) {
	if strings.TrimSpace(s) == "" {
		return Text{}, common.ErrEmptyInput
	}
	s = Clean(s)
	if s == "" {
		return Text{}, common.ErrEmptyInput
	}
	return Text{s: s, lines: indexLines(s)}, nil
}

// Clean applies the normalization rules without building an index.
// Line breaks are kept; runs of blank lines collapse into one.
func Clean(s string) string {
	if s == "" {
		return s
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\ufffd")
	}
	s = norm.NFC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.Map(mapSpace, s)
	s = reHSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// mapSpace folds Unicode spacing and drops control runes other than newline and tab.
func mapSpace(r rune) rune {
	switch {
	case r == '\n' || r == '\t':
		return r
	case r == '\u2028' || r == '\u2029' || r == '\u0085':
		return '\n'
	case r == '\u200b' || r == '\ufeff':
		return -1
	case unicode.IsSpace(r):
		return ' '
	case unicode.IsControl(r):
		return -1
	}
	return r
}

func indexLines(s string) []int {
	offsets := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// String returns the normalized text.
func (t Text) String() string { return t.s }

// Len is the byte length of the normalized text.
func (t Text) Len() int { return len(t.s) }

// LineCount returns the number of lines.
func (t Text) LineCount() int { return len(t.lines) }

// LineStart returns the byte offset at which line i begins.
func (t Text) LineStart(i int) int {
	if i >= len(t.lines) {
		return len(t.s)
	}
	return t.lines[i]
}

// Line returns line i without its trailing newline.
func (t Text) Line(i int) string {
	if i < 0 || i >= len(t.lines) {
		return ""
	}
	end := t.LineStart(i + 1)
	if end > t.lines[i] && end <= len(t.s) && end-1 >= 0 && t.s[end-1] == '\n' {
		end--
	}
	return t.s[t.lines[i]:end]
}

// Lines returns every line in order.
func (t Text) Lines() []string {
	out := make([]string, len(t.lines))
	for i := range t.lines {
		out[i] = t.Line(i)
	}
	return out
}

// Slice returns lines [from, to) as one string, trimmed.
func (t Text) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(t.lines) {
		to = len(t.lines)
	}
	if from >= to {
		return ""
	}
	return strings.TrimSpace(t.s[t.LineStart(from):t.LineStart(to)])
}

// LineAt returns the index of the line containing byte offset off.
func (t Text) LineAt(off int) int {
	lo, hi := 0, len(t.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.lines[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
