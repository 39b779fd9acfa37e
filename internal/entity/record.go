package entity

import (
	"github.com/goccy/go-json"
)

// PatientInfo holds demographics. Every field is independently optional.
type PatientInfo struct {
	Name   *string `json:"name"`
	Age    *string `json:"age"`
	Gender *string `json:"gender"`
	MRN    *string `json:"mrn"`
	DOB    *string `json:"dob"`
}

// IsEmpty reports whether no demographic field was found.
func (p PatientInfo) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Gender == nil && p.MRN == nil && p.DOB == nil
}

// SummaryRecord is the canonical per-request output.
// Lists are never nil once built through NewSummaryRecord or serialized.
type SummaryRecord struct {
	PatientInfo     PatientInfo `json:"patient_info"`
	ChiefComplaint  *string     `json:"chief_complaint"`
	Diagnoses       []string    `json:"diagnoses"`
	Medications     []string    `json:"medications"`
	VitalSigns      VitalSigns  `json:"vital_signs"`
	LabResults      []string    `json:"lab_results"`
	CriticalFlags   []string    `json:"critical_flags"`
	Allergies       []string    `json:"allergies"`
	Procedures      []string    `json:"procedures"`
	Recommendations []string    `json:"recommendations"`
	Narrative       *string     `json:"narrative"`
	Warnings        []string    `json:"warnings"`
}

// NewSummaryRecord returns a record with every container initialized.
func NewSummaryRecord() *SummaryRecord {
	r := &SummaryRecord{}
	r.fillContainers()
	return r
}

func (r *SummaryRecord) fillContainers() {
	for _, p := range []*[]string{
		&r.Diagnoses, &r.Medications, &r.LabResults, &r.CriticalFlags,
		&r.Allergies, &r.Procedures, &r.Recommendations, &r.Warnings,
	} {
		if *p == nil {
			*p = []string{}
		}
	}
}

// MarshalJSON emits [] for nil lists so the consumer never sees null containers.
func (r SummaryRecord) MarshalJSON() ([]byte, error) {
	type alias SummaryRecord
	cp := r
	cp.fillContainers()
	return json.Marshal(alias(cp))
}

// StrPtr returns nil for blank strings.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" for nil.
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Normalize fills every nil container of r and returns it.
func Normalize(r *SummaryRecord) *SummaryRecord {
	r.fillContainers()
	return r
}
