package extract

import (
	"reflect"
	"testing"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/normalize"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

func index(t *testing.T, report string) *Index {
	t.Helper()
	txt, err := normalize.Normalize(report)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return BuildIndex(txt)
}

func TestHeaderMatcher(t *testing.T) {
	tests := []struct {
		line   string
		kind   constants.SectionKind
		inline string
		ok     bool
	}{
		{"Chief Complaint: chest pain", constants.SectionChiefComplaint, "chest pain", true},
		{"CHIEF COMPLAINT", constants.SectionChiefComplaint, "", true},
		{"## Medications", constants.SectionMedications, "", true},
		{"**Assessment and Plan:**", constants.SectionAssessment, "", true},
		{"Vital Signs - BP 120/80", constants.SectionVitalSigns, "BP 120/80", true},
		{"HPI: 3 days of cough", constants.SectionHPI, "3 days of cough", true},
		{"Physical Exam:", constants.SectionOther, "", true},
		{"Discharge Instructions:", constants.SectionUnknown, "", true},
		{"Patient: Jane Doe", "", "", false},
		{"Age:", "", "", false},
		{"O2 Sat: 85%", "", "", false},
		{"the patient reports:", "", "", false},
		{"1. Aspirin 81mg", "", "", false},
	}
	for _, tt := range tests {
		ms := HeaderMatcher{}.Match(tt.line)
		if (len(ms) > 0) != tt.ok {
			t.Errorf("Match(%q) matched=%v, want %v", tt.line, len(ms) > 0, tt.ok)
			continue
		}
		if !tt.ok {
			continue
		}
		if ms[0].Section != tt.kind || ms[0].Inline != tt.inline {
			t.Errorf("Match(%q) = (%s, %q), want (%s, %q)", tt.line, ms[0].Section, ms[0].Inline, tt.kind, tt.inline)
		}
	}
}

func TestVitalMatcherSeveralPerLine(t *testing.T) {
	ms := vitalMatcher.Match("BP: 150/95 mmHg, HR 110 bpm, Temp 101.2F, RR: 22, SpO2 93% on RA")
	got := map[constants.Field]string{}
	var order []constants.Field
	for _, m := range ms {
		got[m.Field] = m.Value
		order = append(order, m.Field)
	}
	want := map[constants.Field]string{
		constants.VitalBP:    "150/95 mmHg",
		constants.VitalHR:    "110 bpm",
		constants.VitalTemp:  "101.2F",
		constants.VitalRR:    "22",
		constants.VitalO2Sat: "93%",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("vitals = %v, want %v", got, want)
	}
	wantOrder := []constants.Field{constants.VitalBP, constants.VitalHR, constants.VitalTemp, constants.VitalRR, constants.VitalO2Sat}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Errorf("order = %v, want %v", order, wantOrder)
	}
}

func TestVitalMatcherIgnoresProse(t *testing.T) {
	for _, line := range []string{
		"heart rate was elevated on arrival",
		"pain in the left arm",
		"Respiratory distress noted",
	} {
		if ms := vitalMatcher.Match(line); len(ms) != 0 {
			t.Errorf("Match(%q) = %+v, want none", line, ms)
		}
	}
}

func TestDemographicMatcherRequiresColon(t *testing.T) {
	if ms := demographicMatcher.Match("Patient is a 45 year old male"); len(ms) != 0 {
		t.Fatalf("unexpected match %+v", ms)
	}
	ms := demographicMatcher.Match("Name: John Smith Age: 45 Sex: M")
	if len(ms) != 3 {
		t.Fatalf("got %d matches, want 3: %+v", len(ms), ms)
	}
	if ms[0].Value != "John Smith" || ms[1].Value != "45" || ms[2].Field != constants.FieldGender {
		t.Errorf("unexpected matches %+v", ms)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{"numbered", []string{"1. Aspirin 81mg", "2) Metoprolol 25mg"}, []string{"Aspirin 81mg", "Metoprolol 25mg"}},
		{"bullets", []string{"- CHF", "* COPD", "• HTN"}, []string{"CHF", "COPD", "HTN"}},
		{"letters", []string{"a. first", "b. second"}, []string{"first", "second"}},
		{"continuation", []string{"1. Community acquired", "pneumonia, right lower lobe", "2. Sepsis"}, []string{"Community acquired pneumonia, right lower lobe", "Sepsis"}},
		{"unmarked", []string{"Aspirin 81mg", "", "Lisinopril 10mg"}, []string{"Aspirin 81mg", "Lisinopril 10mg"}},
		{"semicolons", []string{"Penicillin; sulfa ; latex"}, []string{"Penicillin", "sulfa", "latex"}},
		{"blank ends marked list", []string{"1. CHF", "", "Patient counseled at length."}, []string{"CHF"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitList(tt.lines); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitList = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJaneDoe(t *testing.T) {
	idx := index(t, "Patient: Jane Doe\nAge: 30\nVital Signs:\nO2 Sat: 85%\nMedications:\n1. Aspirin 81mg")
	f := Extract(idx)

	if entity.Deref(f.Patient.Name) != "Jane Doe" || entity.Deref(f.Patient.Age) != "30" {
		t.Errorf("patient = %q/%q", entity.Deref(f.Patient.Name), entity.Deref(f.Patient.Age))
	}
	if f.Patient.Gender != nil || f.Patient.MRN != nil {
		t.Errorf("unexpected gender/mrn")
	}
	if v, ok := f.Vitals.Get("O2 Sat"); !ok || v != "85%" || f.Vitals.Len() != 1 {
		t.Errorf("vitals = %v", f.Vitals.Keys())
	}
	if !reflect.DeepEqual(f.Medications, []string{"Aspirin 81mg"}) {
		t.Errorf("medications = %q", f.Medications)
	}
}

func TestExtractFullReport(t *testing.T) {
	report := `Patient Information:
Name: John Smith
Age: 67
Gender: Male
MRN: MR123456

Chief Complaint: Chest pain for 2 hours

History of Present Illness:
67 year old male with crushing substernal chest pain radiating to the left arm.

Vital Signs:
BP: 185/100, HR: 112, Temp: 98.6 F
RR 20, O2 Sat: 94%
HR: 118

Laboratory Results:
- Troponin: 2.5 ng/mL
- Glucose: 180 mg/dL

Assessment and Plan:
1. Acute STEMI
2. Hypertension

Medications:
1. Aspirin 325mg
2. Heparin drip

Allergies: Penicillin; Sulfa

Physical Exam:
Diaphoretic, S1 S2 regular.`

	idx := index(t, report)
	f := Extract(idx)

	if got := entity.Deref(f.Patient.MRN); got != "MR123456" {
		t.Errorf("mrn = %q", got)
	}
	if f.ChiefComplaint != "Chest pain for 2 hours" || !f.ChiefComplaintExplicit {
		t.Errorf("chief complaint = %q explicit=%v", f.ChiefComplaint, f.ChiefComplaintExplicit)
	}
	if f.HPI == "" {
		t.Error("hpi empty")
	}
	if got := f.Vitals.Keys(); !reflect.DeepEqual(got, []string{"BP", "HR", "Temp", "RR", "O2 Sat"}) {
		t.Errorf("vital order = %q", got)
	}
	if hr, _ := f.Vitals.Get("HR"); hr != "118" {
		t.Errorf("HR = %q, want last value", hr)
	}
	if !reflect.DeepEqual(f.Diagnoses, []string{"Acute STEMI", "Hypertension"}) {
		t.Errorf("diagnoses = %q", f.Diagnoses)
	}
	if !reflect.DeepEqual(f.LabResults, []string{"Troponin: 2.5 ng/mL", "Glucose: 180 mg/dL"}) {
		t.Errorf("labs = %q", f.LabResults)
	}
	if !reflect.DeepEqual(f.Allergies, []string{"Penicillin", "Sulfa"}) {
		t.Errorf("allergies = %q", f.Allergies)
	}
	if len(f.Medications) != 2 {
		t.Errorf("medications = %q", f.Medications)
	}
	if idx.HeaderCount() != 9 {
		t.Errorf("header count = %d, want 9", idx.HeaderCount())
	}
}

func TestExtractNoHeaders(t *testing.T) {
	idx := index(t, "The patient came in feeling unwell and was sent home after a short observation period.")
	f := Extract(idx)
	if !f.Patient.IsEmpty() {
		t.Error("patient should be empty")
	}
	if f.ChiefComplaint != "" || f.ChiefComplaintExplicit {
		t.Error("chief complaint should be empty")
	}
	if f.Vitals.Len() != 0 || len(f.Diagnoses)+len(f.Medications)+len(f.LabResults) != 0 {
		t.Errorf("unexpected fields %+v", f)
	}
	if idx.HeaderCount() != 0 {
		t.Errorf("header count = %d", idx.HeaderCount())
	}
}

func TestExtractLabsWithoutSection(t *testing.T) {
	idx := index(t, "Admitted overnight.\nGlucose: 42 mg/dL, Potassium: 6.8\nHemoglobin 6.5")
	f := Extract(idx)
	want := []string{"Glucose: 42 mg/dL", "Potassium: 6.8"}
	if !reflect.DeepEqual(f.LabResults, want) {
		t.Errorf("labs = %q, want %q", f.LabResults, want)
	}
}

func TestEmptySectionGivesEmptyField(t *testing.T) {
	f := Extract(index(t, "Medications:\nChief Complaint:\nAllergies:"))
	if len(f.Medications) != 0 || f.ChiefComplaintExplicit || len(f.Allergies) != 0 {
		t.Errorf("expected empty fields, got %+v", f)
	}
}
