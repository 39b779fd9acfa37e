package llm

import (
	"strconv"
	"strings"
)

// maxPromptChars bounds how much report text goes into a single prompt.
const maxPromptChars = 6000

// BuildEntitySystemPrompt instructs the model to list typed clinical mentions.
func BuildEntitySystemPrompt() string {
	parts := []string{
		"You are a clinical named-entity recognizer. Return ONLY JSON that matches the provided JSON Schema.",
		"Find mentions of diagnoses (type 'diagnosis'), medications with their dose when written (type 'medication'),",
		"and laboratory tests with their value when written (type 'lab').",
		"Skip conditions the report denies, rules out or lists only as history, and medications it says the patient is not taking.",
		"Also report the medical record number ('mrn'), age ('age') and gender ('gender') when stated.",
		"Copy 'text' exactly as it appears in the report; do not paraphrase, expand abbreviations or infer anything not written.",
		"List entities in the order they appear. If nothing is found return {\"entities\": []}.",
	}
	return strings.Join(parts, " ")
}

// BuildSummarySystemPrompt instructs the model to write a bounded narrative.
func BuildSummarySystemPrompt(maxSentences int) string {
	if maxSentences < 1 {
		maxSentences = 1
	}
	parts := []string{
		"You summarize clinical reports for clinicians. Return ONLY JSON of the form {\"summary\": \"...\"}.",
		"Write at most " + strconv.Itoa(maxSentences) + " plain sentences.",
		"State only what the text says: no diagnosis, advice or facts that are not written in it.",
		"Do not include the patient's name or identifiers.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt wraps the report text.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Report text:\n")
	t := strings.TrimSpace(text)
	if len(t) > maxPromptChars {
		b.WriteString(t[:maxPromptChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(t)
	}
	return b.String()
}
