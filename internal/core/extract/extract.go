// Package extract implements rule-based field extraction over a section index.
package extract

import (
	"strings"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

// Fields is everything rule extraction recovered from a report.
type Fields struct {
	Patient        entity.PatientInfo
	ChiefComplaint string
	HPI            string
	Vitals         entity.VitalSigns

	Diagnoses       []string
	Medications     []string
	LabResults      []string
	Allergies       []string
	Procedures      []string
	Recommendations []string

	// ChiefComplaintExplicit is set when a Chief Complaint section had content.
	ChiefComplaintExplicit bool
}

// Extract applies the key-value and list-item matchers to the indexed sections.
func Extract(idx *Index) Fields {
	var f Fields
	f.Patient = extractPatient(idx)
	f.Vitals = extractVitals(idx)

	if cc := oneLine(idx.ContentOf(constants.SectionChiefComplaint)); cc != "" {
		f.ChiefComplaint = cc
		f.ChiefComplaintExplicit = true
	}
	f.HPI = idx.ContentOf(constants.SectionHPI)

	f.Diagnoses = listOf(idx, constants.SectionAssessment)
	f.Medications = listOf(idx, constants.SectionMedications)
	f.Allergies = listOf(idx, constants.SectionAllergies)
	f.Procedures = listOf(idx, constants.SectionProcedures)
	f.Recommendations = listOf(idx, constants.SectionPlan)
	if idx.Has(constants.SectionLabResults) {
		f.LabResults = listOf(idx, constants.SectionLabResults)
	} else {
		f.LabResults = scanLabs(idx)
	}
	return f
}

func extractPatient(idx *Index) entity.PatientInfo {
	var p entity.PatientInfo
	for _, s := range idx.Sections() {
		if s.Kind != constants.SectionPreamble && s.Kind != constants.SectionDemographics {
			continue
		}
		for _, line := range idx.Lines(s) {
			for _, m := range demographicMatcher.Match(line) {
				setPatientField(&p, m.Field, m.Value)
			}
		}
	}
	return p
}

// setPatientField keeps the first value seen for each field.
func setPatientField(p *entity.PatientInfo, f constants.Field, v string) {
	var dst **string
	switch f {
	case constants.FieldName:
		dst = &p.Name
	case constants.FieldAge:
		dst = &p.Age
	case constants.FieldGender:
		dst = &p.Gender
	case constants.FieldMRN:
		dst = &p.MRN
	case constants.FieldDOB:
		dst = &p.DOB
	default:
		return
	}
	if *dst == nil {
		*dst = entity.StrPtr(v)
	}
}

func extractVitals(idx *Index) entity.VitalSigns {
	var v entity.VitalSigns
	var lines []string
	if idx.Has(constants.SectionVitalSigns) {
		for _, s := range idx.Find(constants.SectionVitalSigns) {
			lines = append(lines, idx.Lines(s)...)
		}
	} else {
		lines = idx.Text().Lines()
	}
	for _, line := range lines {
		for _, m := range vitalMatcher.Match(line) {
			v.Set(string(m.Field), m.Value)
		}
	}
	return v
}

func scanLabs(idx *Index) []string {
	var out []string
	for _, line := range idx.Text().Lines() {
		for _, m := range labMatcher.Match(line) {
			out = append(out, strings.Join(strings.Fields(m.Label), " ")+": "+m.Value)
		}
	}
	return out
}

func listOf(idx *Index, kind constants.SectionKind) []string {
	var out []string
	for _, s := range idx.Find(kind) {
		out = append(out, SplitList(idx.Lines(s))...)
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
