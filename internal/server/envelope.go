package server

import (
	"time"

	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
	"github.com/joseph-ayodele/medreport-summarizer/internal/export"
)

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	MedicalReport *string `json:"medical_report" validate:"required"`
}

// Envelope is the JSON shape of every summarize response.
type Envelope struct {
	Success bool         `json:"success"`
	Summary *SummaryView `json:"summary,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// SummaryView is a SummaryRecord plus its text rendering.
type SummaryView struct {
	PatientInfo      entity.PatientInfo `json:"patient_info"`
	ChiefComplaint   *string            `json:"chief_complaint"`
	Diagnoses        []string           `json:"diagnoses"`
	Medications      []string           `json:"medications"`
	VitalSigns       entity.VitalSigns  `json:"vital_signs"`
	LabResults       []string           `json:"lab_results"`
	CriticalFlags    []string           `json:"critical_flags"`
	Allergies        []string           `json:"allergies"`
	Procedures       []string           `json:"procedures"`
	Recommendations  []string           `json:"recommendations"`
	Narrative        *string            `json:"narrative"`
	Warnings         []string           `json:"warnings"`
	FormattedSummary string             `json:"formatted_summary"`
}

func newSummaryView(rec *entity.SummaryRecord, at time.Time) *SummaryView {
	rec = entity.Normalize(rec)
	return &SummaryView{
		PatientInfo:      rec.PatientInfo,
		ChiefComplaint:   rec.ChiefComplaint,
		Diagnoses:        rec.Diagnoses,
		Medications:      rec.Medications,
		VitalSigns:       rec.VitalSigns,
		LabResults:       rec.LabResults,
		CriticalFlags:    rec.CriticalFlags,
		Allergies:        rec.Allergies,
		Procedures:       rec.Procedures,
		Recommendations:  rec.Recommendations,
		Narrative:        rec.Narrative,
		Warnings:         rec.Warnings,
		FormattedSummary: export.FormatText(rec, at),
	}
}

func successEnvelope(rec *entity.SummaryRecord, at time.Time) Envelope {
	return Envelope{Success: true, Summary: newSummaryView(rec, at)}
}

func failureEnvelope(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}
