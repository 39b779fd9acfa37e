// Package assemble reconciles extraction, entities, narrative and flags into
// the final summary record.
package assemble

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/extract"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/flags"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

// Inputs is everything the stages produced for one report.
type Inputs struct {
	Text      string
	Fields    extract.Fields
	Entities  []entity.Entity
	Narrative string
	Notices   []string // degraded-stage notices
}

// Assembler builds records. Rule extraction is authoritative for structured
// fields; entities only add list items and raise warnings.
type Assembler struct {
	detector *flags.Detector
	log      *slog.Logger
}

func New(detector *flags.Detector, logger *slog.Logger) *Assembler {
	if detector == nil {
		detector = flags.NewDetector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{detector: detector, log: logger}
}

// Build runs reconciliation in three phases: structure from extraction,
// augmentation from entities, then flags and the narrative fallback.
func (a *Assembler) Build(in Inputs) *entity.SummaryRecord {
	f := in.Fields
	rec := &entity.SummaryRecord{
		PatientInfo:     f.Patient,
		VitalSigns:      f.Vitals,
		Diagnoses:       clone(f.Diagnoses),
		Medications:     clone(f.Medications),
		LabResults:      clone(f.LabResults),
		Allergies:       clone(f.Allergies),
		Procedures:      clone(f.Procedures),
		Recommendations: clone(f.Recommendations),
	}
	if f.ChiefComplaintExplicit {
		rec.ChiefComplaint = entity.StrPtr(f.ChiefComplaint)
	}

	ents, dropped := Affirmed(in.Text, in.Entities)
	added := Augment(rec, ents)
	warnings := append([]string(nil), in.Notices...)
	warnings = append(warnings, CrossCheck(rec.PatientInfo, in.Entities)...)

	rec.CriticalFlags = a.detector.Detect(flags.Input{
		Text:           in.Text,
		Vitals:         rec.VitalSigns,
		LabResults:     rec.LabResults,
		Diagnoses:      rec.Diagnoses,
		ChiefComplaint: entity.Deref(rec.ChiefComplaint),
	})

	if narrative := strings.TrimSpace(in.Narrative); narrative != "" {
		rec.Narrative = &narrative
		if rec.ChiefComplaint == nil {
			rec.ChiefComplaint = entity.StrPtr(narrative)
		}
	}
	rec.Warnings = warnings

	a.log.Debug("assemble.done",
		"entities_added", added,
		"entities_qualified", dropped,
		"flags", len(rec.CriticalFlags),
		"warnings", len(rec.Warnings),
	)
	return entity.Normalize(rec)
}

// Affirmed drops diagnosis mentions that the sentence denies or hedges
// ("no history of stroke", "rule out sepsis") and medication mentions it
// denies ("not on aspirin"). Mentions without a span in text are kept.
func Affirmed(text string, ents []entity.Entity) ([]entity.Entity, int) {
	out := make([]entity.Entity, 0, len(ents))
	for _, e := range ents {
		if spanIn(text, e.Span) && qualified(text, e) {
			continue
		}
		out = append(out, e)
	}
	return out, len(ents) - len(out)
}

func spanIn(text string, s entity.Span) bool {
	return s.Start >= 0 && s.End > s.Start && s.End <= len(text)
}

func qualified(text string, e entity.Entity) bool {
	switch e.Type {
	case constants.EntityDiagnosis:
		return flags.Qualified(text, e.Span.Start)
	case constants.EntityMedication:
		return flags.Negated(text, e.Span.Start)
	}
	return false
}

// Augment appends diagnosis, medication and lab entities not already listed
// in the matching list. The list is checked as it grows. It returns the number
// of items added.
func Augment(rec *entity.SummaryRecord, ents []entity.Entity) int {
	added := 0
	for _, e := range ents {
		var list *[]string
		switch e.Type {
		case constants.EntityDiagnosis:
			list = &rec.Diagnoses
		case constants.EntityMedication:
			list = &rec.Medications
		case constants.EntityLab:
			list = &rec.LabResults
		default:
			continue
		}
		text := collapse(e.Text)
		if text == "" || listed(*list, e) {
			continue
		}
		*list = append(*list, text)
		added++
	}
	return added
}

// listed reports whether an item already names the entity: the item contains
// the entity text, or a medication item contains the drug name without its
// dose, or the whole item appears as words inside the entity text.
func listed(items []string, e entity.Entity) bool {
	text := strings.ToLower(collapse(e.Text))
	name := ""
	if e.Type == constants.EntityMedication && e.Term != "" {
		name = strings.ToLower(collapse(e.Term))
	}
	for _, it := range items {
		item := strings.ToLower(collapse(it))
		if item == "" {
			continue
		}
		if strings.Contains(item, text) || containsWords(text, item) {
			return true
		}
		if name != "" && containsWords(item, name) {
			return true
		}
	}
	return false
}

func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

// containsWords reports whether needle occurs in hay with no letter or digit
// directly on either side.
func containsWords(hay, needle string) bool {
	for off := 0; ; {
		i := strings.Index(hay[off:], needle)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(needle)
		if !wordRuneBefore(hay, start) && !wordRuneAt(hay, end) {
			return true
		}
		off = start + 1
	}
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordRuneAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// CrossCheck compares demographic entities with extracted patient fields and
// describes every disagreement. Fields are never changed.
func CrossCheck(p entity.PatientInfo, ents []entity.Entity) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range ents {
		var extracted *string
		var same func(a, b string) bool
		switch e.Type {
		case constants.EntityMRN:
			extracted, same = p.MRN, sameMRN
		case constants.EntityAge:
			extracted, same = p.Age, sameAge
		case constants.EntityGender:
			extracted, same = p.Gender, sameGender
		default:
			continue
		}
		if extracted == nil || seen[e.Type] || same(*extracted, e.Text) {
			continue
		}
		seen[e.Type] = true
		out = append(out, fmt.Sprintf("%s mismatch: extracted %q, recognized %q", e.Type, *extracted, e.Text))
	}
	return out
}

func sameMRN(a, b string) bool { return alnumUpper(a) == alnumUpper(b) }

func sameAge(a, b string) bool {
	da, db := leadingDigits(a), leadingDigits(b)
	return da == "" || db == "" || da == db
}

func sameGender(a, b string) bool {
	ga, gb := genderCode(a), genderCode(b)
	return ga == 0 || gb == 0 || ga == gb
}

func alnumUpper(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func leadingDigits(s string) string {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func genderCode(s string) byte {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "man":
		return 'm'
	case "f", "female", "woman":
		return 'f'
	}
	return 0
}

func clone(s []string) []string {
	if len(s) == 0 {
		return []string{}
	}
	return append([]string(nil), s...)
}
