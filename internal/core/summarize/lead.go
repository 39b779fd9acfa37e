package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/llm"
)

var _ llm.Summarizer = Lead{}

// Lead is the local summarizer: it condenses text to its leading informative
// sentences. Output is deterministic for a given input.
type Lead struct {
	MaxSentences int
	MinWords     int
}

// NewLead returns a Lead summarizer keeping maxSentences sentences.
func NewLead(maxSentences int) Lead {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return Lead{MaxSentences: maxSentences, MinWords: 3}
}

// Summarize implements llm.Summarizer.
func (l Lead) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return "", fmt.Errorf("%w: nothing to summarize", common.ErrInvalidInput)
	}
	var kept []string
	for _, s := range sentences {
		if len(strings.Fields(s)) < l.MinWords {
			continue
		}
		kept = append(kept, s)
		if len(kept) == l.MaxSentences {
			break
		}
	}
	if len(kept) == 0 {
		kept = sentences[:1]
	}
	return strings.Join(kept, " "), nil
}
