package flags

import (
	"strings"
	"testing"

	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
)

func vitals(kv ...string) entity.VitalSigns {
	var v entity.VitalSigns
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func hasFlag(flags []string, substr string) bool {
	for _, f := range flags {
		if strings.Contains(strings.ToLower(f), strings.ToLower(substr)) {
			return true
		}
	}
	return false
}

func TestVitalThresholds(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name  string
		in    entity.VitalSigns
		want  string
		fires bool
	}{
		{"spo2 low", vitals("O2 Sat", "85%"), "low oxygen saturation", true},
		{"spo2 boundary", vitals("O2 Sat", "90%"), "low oxygen saturation", false},
		{"tachycardia", vitals("HR", "128 bpm"), "tachycardia", true},
		{"hr boundary", vitals("HR", "120"), "tachycardia", false},
		{"bradycardia", vitals("HR", "42"), "bradycardia", true},
		{"severe htn systolic", vitals("BP", "185/100"), "severe hypertension", true},
		{"severe htn diastolic", vitals("BP", "170/125 mmHg"), "severe hypertension", true},
		{"htn boundary", vitals("BP", "180/120"), "severe hypertension", false},
		{"elevated systolic", vitals("BP", "150/95"), "elevated blood pressure", true},
		{"elevated diastolic", vitals("BP", "138/92"), "elevated blood pressure", true},
		{"elevated boundary", vitals("BP", "140/90"), "elevated blood pressure", false},
		{"severe is not also elevated", vitals("BP", "185/100"), "elevated blood pressure", false},
		{"hypotension", vitals("BP", "82/50"), "hypotension", true},
		{"fever f", vitals("Temp", "103.1 F"), "high fever", true},
		{"fever c", vitals("Temp", "39.5 °C"), "high fever", true},
		{"fever c boundary", vitals("Temp", "39.4"), "high fever", true},
		{"no fever", vitals("Temp", "101.2F"), "high fever", false},
		{"hypothermia c", vitals("Temp", "34.5"), "hypothermia", true},
		{"normal c", vitals("Temp", "36.8 C"), "hypothermia", false},
		{"tachypnea", vitals("RR", "32"), "tachypnea", true},
		{"bradypnea", vitals("RR", "6"), "bradypnea", true},
		{"unparseable", vitals("HR", "irregular"), "cardia", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(Input{Vitals: tt.in})
			if hasFlag(got, tt.want) != tt.fires {
				t.Errorf("flags = %q, want %q fired=%v", got, tt.want, tt.fires)
			}
		})
	}
}

func TestLabThresholds(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name  string
		in    Input
		want  string
		fires bool
	}{
		{"glucose low", Input{LabResults: []string{"Glucose: 42 mg/dL"}}, "hypoglycemia", true},
		{"glucose mmol", Input{LabResults: []string{"Glucose: 2.5 mmol/L"}}, "hypoglycemia", true},
		{"glucose high text", Input{Text: "Blood glucose was 520 on arrival."}, "hyperglycemia", true},
		{"glucose normal", Input{LabResults: []string{"Glucose: 110"}}, "glycemia", false},
		{"potassium abbrev item", Input{LabResults: []string{"K: 6.8"}}, "hyperkalemia", true},
		{"potassium plus", Input{LabResults: []string{"K+ 2.1"}}, "hypokalemia", true},
		{"vitamin k in text", Input{Text: "Given vitamin K 2 mg IV."}, "hypokalemia", false},
		{"sodium", Input{Text: "Sodium 116 mEq/L"}, "hyponatremia", true},
		{"hemoglobin", Input{LabResults: []string{"Hgb: 6.2 g/dL"}}, "anemia", true},
		{"hemoglobin g/l", Input{LabResults: []string{"Hemoglobin: 95 g/L"}}, "anemia", false},
		{"a1c not hemoglobin", Input{LabResults: []string{"Hemoglobin A1c: 6.5%"}}, "anemia", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.in)
			if hasFlag(got, tt.want) != tt.fires {
				t.Errorf("flags = %q, want %q fired=%v", got, tt.want, tt.fires)
			}
		})
	}
}

func TestDiagnosisKeywords(t *testing.T) {
	d := NewDetector()
	got := d.Detect(Input{Diagnoses: []string{"Acute STEMI", "History of stroke"}, ChiefComplaint: "rule out sepsis"})
	if !hasFlag(got, "high-risk diagnosis: STEMI") {
		t.Errorf("missing STEMI flag: %q", got)
	}
	if hasFlag(got, ": NSTEMI") {
		t.Errorf("NSTEMI should not fire on STEMI: %q", got)
	}
	if hasFlag(got, "stroke") || hasFlag(got, "sepsis") {
		t.Errorf("qualified diagnoses should not fire: %q", got)
	}
}

func TestEmergentTermsWithNegation(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		text  string
		term  string
		fires bool
	}{
		{"Presents with crushing chest pain.", "chest pain", true},
		{"Denies chest pain or shortness of breath.", "chest pain", false},
		{"Denies chest pain or shortness of breath.", "shortness of breath", false},
		{"Denies fever but reports chest pain.", "chest pain", true},
		{"No chest pain.\nShortness of breath on exertion.", "shortness of breath", true},
		{"Negative for syncope.", "syncope", false},
		{"Patient without allergic reaction after dose.", "allergic reaction", false},
	}
	for _, tt := range tests {
		got := d.Detect(Input{Text: tt.text})
		if hasFlag(got, "mentioned: "+tt.term) != tt.fires {
			t.Errorf("%q: flags = %q, want %s fired=%v", tt.text, got, tt.term, tt.fires)
		}
	}
}

func TestEachRuleFiresOnceInTableOrder(t *testing.T) {
	d := NewDetector()
	in := Input{
		Text:       "Chest pain. More chest pain. Glucose 30. Glucose 35.",
		Vitals:     vitals("O2 Sat", "85%", "HR", "130"),
		LabResults: []string{"Glucose: 40"},
	}
	got := d.Detect(in)
	want := []string{
		"Low oxygen saturation (O2 Sat 85%)",
		"Tachycardia (HR 130)",
		"Critical hypoglycemia (Glucose: 40)",
		"Emergent finding mentioned: chest pain",
	}
	if len(got) != len(want) {
		t.Fatalf("flags = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("flag[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDetectNeverNil(t *testing.T) {
	if got := NewDetector().Detect(Input{}); got == nil || len(got) != 0 {
		t.Errorf("Detect(empty) = %#v", got)
	}
}
