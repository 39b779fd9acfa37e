// Package flags evaluates the critical-finding rule table over a report.
package flags

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

// Input is what the rules look at: the normalized text plus reconciled fields.
type Input struct {
	Text           string
	Vitals         entity.VitalSigns
	LabResults     []string
	Diagnoses      []string
	ChiefComplaint string
}

// Detector evaluates a fixed rule table.
type Detector struct {
	rules []Rule
}

// NewDetector returns a detector over rules, or DefaultRules when none are given.
func NewDetector(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Detector{rules: rules}
}

// Detect evaluates every rule in table order. Each rule contributes at most
// one flag. The result is never nil.
func (d *Detector) Detect(in Input) []string {
	out := make([]string, 0, 4)
	for _, r := range d.rules {
		if msg, ok := r.Eval(&in); ok {
			out = append(out, msg)
		}
	}
	return out
}

// highRiskDiagnoses are matched against diagnoses and the chief complaint.
var highRiskDiagnoses = []string{
	"myocardial infarction", "STEMI", "NSTEMI", "acute coronary syndrome", "cardiac arrest",
	"sepsis", "septic shock", "stroke", "cerebrovascular accident", "intracranial hemorrhage",
	"pulmonary embolism", "aortic dissection", "anaphylaxis", "diabetic ketoacidosis",
	"respiratory failure", "status epilepticus", "tension pneumothorax", "hypertensive emergency",
	"GI bleed", "meningitis",
}

// emergentTerms are matched anywhere in the text unless negated.
var emergentTerms = []string{
	"chest pain", "shortness of breath", "difficulty breathing", "altered mental status",
	"loss of consciousness", "unresponsive", "suicidal ideation", "homicidal ideation",
	"allergic reaction", "hemoptysis", "hematemesis", "syncope", "seizure", "severe bleeding",
}

var (
	reNegationCue  = regexp.MustCompile(`(?i)\b(?:denies|denied|no|not|negative for|without|free of)\b`)
	reQualifierCue = regexp.MustCompile(`(?i)\b(?:history of|h/o|rule out|r/o|ruled out|family history of|no|not|negative for|without|resolved)\b`)
	reScopeBreak   = regexp.MustCompile(`(?i)\b(?:but|however|reports|endorses|complains of|presents with|admits to)\b|;`)
	reSentenceEnd  = regexp.MustCompile(`[.!?]\s+|\n+`)
)

func termPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(term), " ", `\s+`) + `\b`)
}

func diagnosisRule(keyword string) Rule {
	re := termPattern(keyword)
	return Rule{ID: "dx:" + strings.ToLower(keyword), Eval: func(in *Input) (string, bool) {
		candidates := append([]string{in.ChiefComplaint}, in.Diagnoses...)
		for _, c := range candidates {
			if c == "" {
				continue
			}
			if mentionedAffirmatively(c, re, reQualifierCue) {
				return fmt.Sprintf("High-risk diagnosis: %s", keyword), true
			}
		}
		return "", false
	}}
}

func emergentRule(term string) Rule {
	re := termPattern(term)
	return Rule{ID: "text:" + term, Eval: func(in *Input) (string, bool) {
		for _, sentence := range reSentenceEnd.Split(in.Text, -1) {
			if mentionedAffirmatively(sentence, re, reNegationCue) {
				return fmt.Sprintf("Emergent finding mentioned: %s", term), true
			}
		}
		return "", false
	}}
}

// Negated reports whether a mention at byte offset pos in text falls in the
// scope of a negation cue earlier in the same sentence.
func Negated(text string, pos int) bool {
	return negated(sentenceBefore(text, pos), reNegationCue)
}

// Qualified is Negated widened to hedges such as "history of" and "rule out".
func Qualified(text string, pos int) bool {
	return negated(sentenceBefore(text, pos), reQualifierCue)
}

func sentenceBefore(text string, pos int) string {
	before := text[:pos]
	if ends := reSentenceEnd.FindAllStringIndex(before, -1); len(ends) > 0 {
		before = before[ends[len(ends)-1][1]:]
	}
	return before
}

// mentionedAffirmatively reports whether re matches s at a position that is
// not inside the scope of a preceding cue. A cue's scope runs to the match
// unless a scope break ("but", "reports", ";") comes between them.
func mentionedAffirmatively(s string, re, cue *regexp.Regexp) bool {
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if !negated(s[:loc[0]], cue) {
			return true
		}
	}
	return false
}

func negated(before string, cue *regexp.Regexp) bool {
	cues := cue.FindAllStringIndex(before, -1)
	if len(cues) == 0 {
		return false
	}
	last := cues[len(cues)-1]
	return !reScopeBreak.MatchString(before[last[1]:])
}
