package summarize

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/extract"
)

// Ellipsis joins the kept head and tail of a truncated input.
const Ellipsis = " … "

// BuildInput selects the summarizer input: HPI followed by Assessment/Plan
// when either exists, otherwise the whole document. The result fits maxChars.
func BuildInput(idx *extract.Index, maxChars int) string {
	head := flatten(idx.ContentOf(constants.SectionHPI))
	tail := flatten(idx.ContentOf(constants.SectionAssessment))
	if head == "" && tail == "" {
		head = flatten(idx.Text().String())
	}
	return Truncate(head, tail, maxChars)
}

// Truncate joins head and tail within maxChars runes. When they do not fit,
// tail keeps up to half the budget, head gets the rest, both are cut at word
// boundaries and joined with Ellipsis.
func Truncate(head, tail string, maxChars int) string {
	full := head
	switch {
	case head == "":
		full = tail
	case tail != "":
		full = head + " " + tail
	}
	if maxChars <= 0 || utf8.RuneCountInString(full) <= maxChars {
		return full
	}
	if tail == "" || head == "" {
		return cutWords(full, maxChars)
	}

	sep := utf8.RuneCountInString(Ellipsis)
	tailBudget := utf8.RuneCountInString(tail)
	if half := maxChars / 2; tailBudget > half {
		tailBudget = half
	}
	headBudget := maxChars - tailBudget - sep
	if headBudget <= 0 {
		return cutWords(tail, maxChars)
	}
	h := cutWords(head, headBudget)
	t := cutWords(tail, tailBudget)
	switch {
	case h == "":
		return t
	case t == "":
		return h
	}
	return h + Ellipsis + t
}

// cutWords returns the longest prefix of s within n runes that ends at a word
// boundary. A single word longer than n is cut mid-word.
func cutWords(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	prefix := string(runes[:n])
	if runes[n] == ' ' {
		return strings.TrimSpace(prefix)
	}
	if i := strings.LastIndexByte(prefix, ' '); i > 0 {
		return strings.TrimSpace(prefix[:i])
	}
	return prefix
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
