package llm

import (
	"strings"

	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

// ResolveSpans locates each mention in text, searching forward from the
// previous hit so repeated mentions get distinct spans. Mentions that cannot
// be found keep a zero span.
func ResolveSpans(text string, mentions []entity.Entity) []entity.Entity {
	lower := strings.ToLower(text)
	out := make([]entity.Entity, 0, len(mentions))
	cursor := 0
	for _, m := range mentions {
		needle := strings.ToLower(m.Text)
		if needle == "" {
			continue
		}
		at := -1
		if cursor < len(lower) {
			if i := strings.Index(lower[cursor:], needle); i >= 0 {
				at = cursor + i
			}
		}
		if at < 0 {
			at = strings.Index(lower, needle)
		}
		if at >= 0 {
			m.Span = entity.Span{Start: at, End: at + len(needle)}
			if at+len(needle) <= len(text) {
				m.Text = text[at : at+len(needle)]
			}
			cursor = at + len(needle)
		}
		out = append(out, m)
	}
	return out
}
