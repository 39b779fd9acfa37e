package extract

import (
	"strings"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/normalize"
)

// Section is a header-bounded region. Content lines are [Start, End).
type Section struct {
	Kind   constants.SectionKind
	Title  string
	Line   int // header line, -1 for the preamble
	Start  int
	End    int
	Inline string
}

// Index is the section layout of one normalized report.
type Index struct {
	text     normalize.Text
	sections []Section
}

// BuildIndex runs the header matcher over every line and slices the text
// into sections. Text before the first header becomes the preamble.
func BuildIndex(text normalize.Text) *Index {
	idx := &Index{text: text}
	n := text.LineCount()
	cur := Section{Kind: constants.SectionPreamble, Line: -1, Start: 0}
	for i := 0; i < n; i++ {
		ms := headerMatcher.Match(text.Line(i))
		if len(ms) == 0 {
			continue
		}
		cur.End = i
		idx.push(cur)
		h := ms[0]
		cur = Section{Kind: h.Section, Title: h.Label, Line: i, Start: i + 1, Inline: h.Inline}
	}
	cur.End = n
	idx.push(cur)
	return idx
}

func (x *Index) push(s Section) {
	if s.Kind == constants.SectionPreamble && s.Start >= s.End {
		return
	}
	if s.Kind == constants.SectionPreamble && x.text.Slice(s.Start, s.End) == "" {
		return
	}
	x.sections = append(x.sections, s)
}

// Text returns the indexed text.
func (x *Index) Text() normalize.Text { return x.text }

// Sections returns every section in document order.
func (x *Index) Sections() []Section { return x.sections }

// Find returns the sections of the given kind in document order.
func (x *Index) Find(kind constants.SectionKind) []Section {
	var out []Section
	for _, s := range x.sections {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether a section of kind exists.
func (x *Index) Has(kind constants.SectionKind) bool {
	for _, s := range x.sections {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// HeaderCount is the number of recognized headers, unknown ones excluded.
func (x *Index) HeaderCount() int {
	n := 0
	for _, s := range x.sections {
		if s.Kind != constants.SectionPreamble && s.Kind != constants.SectionUnknown {
			n++
		}
	}
	return n
}

// Lines returns the section's inline content, if any, followed by its lines.
func (x *Index) Lines(s Section) []string {
	var out []string
	if s.Inline != "" {
		out = append(out, s.Inline)
	}
	for i := s.Start; i < s.End; i++ {
		out = append(out, x.text.Line(i))
	}
	return out
}

// Content returns the section body as one trimmed string.
func (x *Index) Content(s Section) string {
	body := x.text.Slice(s.Start, s.End)
	switch {
	case s.Inline == "":
		return body
	case body == "":
		return s.Inline
	}
	return s.Inline + "\n" + body
}

// ContentOf joins the content of every section of kind with a blank line.
func (x *Index) ContentOf(kind constants.SectionKind) string {
	var parts []string
	for _, s := range x.Find(kind) {
		if c := x.Content(s); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n\n")
}
