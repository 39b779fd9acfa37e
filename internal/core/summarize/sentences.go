package summarize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations are tokens whose trailing period does not end a sentence.
var abbreviations = map[string]bool{
	"dr.": true, "mr.": true, "mrs.": true, "ms.": true, "vs.": true, "e.g.": true, "i.e.": true,
	"approx.": true, "pt.": true, "hx.": true, "no.": true, "st.": true, "etc.": true,
}

// SplitSentences splits text at '.', '!' or '?' followed by whitespace.
func SplitSentences(text string) []string {
	var out []string
	words := strings.Fields(text)
	var cur []string
	for i, w := range words {
		cur = append(cur, w)
		if !endsSentence(w) {
			continue
		}
		if i+1 < len(words) && !startsSentence(words[i+1]) {
			continue
		}
		out = append(out, strings.Join(cur, " "))
		cur = nil
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func endsSentence(w string) bool {
	w = strings.TrimRight(w, `"')]`)
	if w == "" {
		return false
	}
	switch w[len(w)-1] {
	case '!', '?':
		return true
	case '.':
		return !abbreviations[strings.ToLower(w)]
	}
	return false
}

func startsSentence(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune(`"'(`, r)
}

// BoundSentences keeps at most n sentences of text.
func BoundSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 || text == "" {
		return text
	}
	s := SplitSentences(text)
	if len(s) <= n {
		return strings.Join(s, " ")
	}
	return strings.Join(s[:n], " ")
}
