// Package export renders summary records for people: a plain-text report
// and XLSX workbooks.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

// MaxListedMedications caps the medications shown in the text rendering.
const MaxListedMedications = 10

const (
	rule    = "============================================================"
	subrule = "------------------------------"
)

// FormatText renders rec as the plain-text summary returned in
// formatted_summary. Empty sections are omitted.
func FormatText(rec *entity.SummaryRecord, generatedAt time.Time) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	section := func(title string) {
		line("")
		line(title)
		line(subrule)
	}

	line(rule)
	line("MEDICAL REPORT SUMMARY")
	line(rule)

	section("PATIENT INFORMATION")
	p := rec.PatientInfo
	for _, kv := range []struct {
		label string
		v     *string
	}{
		{"Name", p.Name}, {"Age", p.Age}, {"Gender", p.Gender}, {"MRN", p.MRN}, {"DOB", p.DOB},
	} {
		if kv.v != nil {
			line(kv.label + ": " + *kv.v)
		}
	}

	if len(rec.CriticalFlags) > 0 {
		section("CRITICAL FLAGS")
		for _, f := range rec.CriticalFlags {
			line("! " + f)
		}
	}
	if rec.ChiefComplaint != nil {
		section("CHIEF COMPLAINT")
		line(*rec.ChiefComplaint)
	}
	if rec.Narrative != nil {
		section("SUMMARY")
		line(*rec.Narrative)
	}
	numbered("DIAGNOSES", rec.Diagnoses, 0, section, line)

	if rec.VitalSigns.Len() > 0 {
		section("VITAL SIGNS")
		for _, k := range rec.VitalSigns.Keys() {
			v, _ := rec.VitalSigns.Get(k)
			line(k + ": " + v)
		}
	}

	numbered("MEDICATIONS", rec.Medications, MaxListedMedications, section, line)
	if n := len(rec.Medications) - MaxListedMedications; n > 0 {
		line(fmt.Sprintf("(+%d more)", n))
	}
	bulleted("LABORATORY RESULTS", rec.LabResults, section, line)
	bulleted("ALLERGIES", rec.Allergies, section, line)
	bulleted("PROCEDURES", rec.Procedures, section, line)
	bulleted("RECOMMENDATIONS", rec.Recommendations, section, line)
	bulleted("NOTES", rec.Warnings, section, line)

	line("")
	line(rule)
	b.WriteString("Generated on: " + generatedAt.Format("2006-01-02 15:04:05"))
	return b.String()
}

func numbered(title string, items []string, limit int, section, line func(string)) {
	if len(items) == 0 {
		return
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	section(title)
	for i, it := range items {
		line(fmt.Sprintf("%d. %s", i+1, it))
	}
}

func bulleted(title string, items []string, section, line func(string)) {
	if len(items) == 0 {
		return
	}
	section(title)
	for _, it := range items {
		line("• " + it)
	}
}
