// Package ner holds the local entity recognizer: a gazetteer model loaded once
// at process start.
package ner

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/goccy/go-json"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
	"github.com/joseph-ayodele/medreport-summarizer/internal/llm"
)

//go:embed data/lexicon.json
var defaultLexicon []byte

var _ llm.EntityRecognizer = (*Lexicon)(nil)

// Lexicon recognizes diagnosis, medication and lab mentions by whole-word,
// case-insensitive longest match against a term list.
type Lexicon struct {
	terms    map[string]string // lower-case phrase -> entity type
	maxWords int
	log      *slog.Logger
}

// lexiconFile is the on-disk shape: entity type -> terms.
type lexiconFile map[string][]string

// LoadLexicon reads a lexicon from path, or the embedded default when path is empty.
func LoadLexicon(path string, logger *slog.Logger) (*Lexicon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data := defaultLexicon
	source := "embedded"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read lexicon: %w", err)
		}
		data, source = b, path
	}
	var f lexiconFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}
	lx, err := NewLexicon(f, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("ner.lexicon.loaded", "source", source, "terms", len(lx.terms), "max_words", lx.maxWords)
	return lx, nil
}

// NewLexicon builds a recognizer from type -> terms.
func NewLexicon(byType map[string][]string, logger *slog.Logger) (*Lexicon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lx := &Lexicon{terms: make(map[string]string), log: logger}
	for typ, terms := range byType {
		switch typ {
		case constants.EntityDiagnosis, constants.EntityMedication, constants.EntityLab:
		default:
			return nil, fmt.Errorf("lexicon: unsupported entity type %q", typ)
		}
		for _, term := range terms {
			words := tokenize(term)
			if len(words) == 0 {
				continue
			}
			key := joinTokens(term, words)
			lx.terms[key] = typ
			if len(words) > lx.maxWords {
				lx.maxWords = len(words)
			}
		}
	}
	if len(lx.terms) == 0 {
		return nil, fmt.Errorf("lexicon: no terms")
	}
	return lx, nil
}

// RecognizeEntities implements llm.EntityRecognizer.
func (lx *Lexicon) RecognizeEntities(ctx context.Context, text string) ([]entity.Entity, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	toks := tokenize(text)
	var out []entity.Entity
	for i := 0; i < len(toks); {
		n, typ := lx.longestAt(text, toks, i)
		if n == 0 {
			i++
			continue
		}
		span := entity.Span{Start: toks[i].start, End: toks[i+n-1].end}
		term := text[span.Start:span.End]
		ext := extension(typ, text[span.End:])
		span.End += ext
		i += n
		if typ == constants.EntityLab && ext == 0 {
			// a lab name without a value is not a result
			continue
		}
		out = append(out, entity.Entity{Text: text[span.Start:span.End], Type: typ, Term: term, Span: span})
		for i < len(toks) && toks[i].start < span.End {
			i++
		}
	}
	out = append(out, demographicMentions(text)...)
	lx.log.Debug("ner.lexicon.ok", "entities", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (lx *Lexicon) longestAt(text string, toks []token, i int) (int, string) {
	maxN := lx.maxWords
	if rest := len(toks) - i; rest < maxN {
		maxN = rest
	}
	for n := maxN; n >= 1; n-- {
		key := joinTokens(text, toks[i:i+n])
		if typ, ok := lx.terms[key]; ok {
			return n, typ
		}
	}
	return 0, ""
}

type token struct {
	start, end int
}

// tokenize splits s into words of letters and digits. Inner hyphens and
// apostrophes stay part of a word.
func tokenize(s string) []token {
	var toks []token
	start := -1
	runes := []rune(s)
	offsets := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		offsets[i] = off
		off += len(string(r))
	}
	offsets[len(runes)] = off
	isWord := func(i int) bool {
		r := runes[i]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
		if (r == '-' || r == '\'') && i > 0 && i+1 < len(runes) {
			prev, next := runes[i-1], runes[i+1]
			return (unicode.IsLetter(prev) || unicode.IsDigit(prev)) && (unicode.IsLetter(next) || unicode.IsDigit(next))
		}
		return false
	}
	for i := range runes {
		if isWord(i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			toks = append(toks, token{offsets[start], offsets[i]})
			start = -1
		}
	}
	if start >= 0 {
		toks = append(toks, token{offsets[start], offsets[len(runes)]})
	}
	return toks
}

func joinTokens(s string, toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = strings.ToLower(s[t.start:t.end])
	}
	return strings.Join(parts, " ")
}

var (
	reDose     = regexp.MustCompile(`(?i)^\s*\d+(?:\.\d+)?\s*(?:mg|mcg|µg|g|ml|units?|iu|meq|mmol|%)\b`)
	reLabValue = regexp.MustCompile(`(?i)^\s*(?::|=|of|was|is)?\s*[<>]?\d+(?:\.\d+)?(?:\s*(?:g/dl|mg/dl|mmol/l|meq/l|ng/ml|pg/ml|mg/l|iu/l|u/l|k/ul|x10\^\d+/l|%))?`)
)

// extension returns how many bytes of rest belong to the mention: the dose
// after a medication, the value after a lab.
func extension(typ, rest string) int {
	var re *regexp.Regexp
	switch typ {
	case constants.EntityMedication:
		re = reDose
	case constants.EntityLab:
		re = reLabValue
	default:
		return 0
	}
	loc := re.FindStringIndex(rest)
	if loc == nil {
		return 0
	}
	return loc[1]
}

var (
	reMRNMention    = regexp.MustCompile(`(?i)\b(?:mrn|medical record (?:number|no\.?))\s*[:#]?\s*([A-Z0-9][A-Z0-9-]{3,})`)
	reAgeMention    = regexp.MustCompile(`(?i)\b(\d{1,3})(?:[- ](?:year|yr)s?[- ]old|\s?(?:y/o|yo)\b)`)
	reGenderMention = regexp.MustCompile(`(?i)\b(male|female)\b`)
)

// demographicMentions finds MRN, age and gender mentions anywhere in the text.
// Only the first of each is reported.
func demographicMentions(text string) []entity.Entity {
	var out []entity.Entity
	add := func(re *regexp.Regexp, typ string) {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			return
		}
		s, e := loc[2], loc[3]
		out = append(out, entity.Entity{Text: text[s:e], Type: typ, Span: entity.Span{Start: s, End: e}})
	}
	add(reMRNMention, constants.EntityMRN)
	add(reAgeMention, constants.EntityAge)
	add(reGenderMention, constants.EntityGender)
	return out
}
