package constants

import (
	"sort"
	"strings"
)

// Field is a canonical key-value label recognized in demographics and vitals blocks.
type Field string

const (
	FieldName   Field = "name"
	FieldAge    Field = "age"
	FieldGender Field = "gender"
	FieldMRN    Field = "mrn"
	FieldDOB    Field = "dob"

	VitalBP     Field = "BP"
	VitalHR     Field = "HR"
	VitalTemp   Field = "Temp"
	VitalRR     Field = "RR"
	VitalO2Sat  Field = "O2 Sat"
	VitalWeight Field = "Weight"
	VitalHeight Field = "Height"
	VitalBMI    Field = "BMI"
	VitalPain   Field = "Pain"
)

var demographicFields = []Field{FieldName, FieldAge, FieldGender, FieldMRN, FieldDOB}

var vitalFields = []Field{
	VitalBP, VitalHR, VitalTemp, VitalRR, VitalO2Sat,
	VitalWeight, VitalHeight, VitalBMI, VitalPain,
}

// synonyms maps lower-case label spellings to canonical fields.
var synonyms = map[string]Field{
	"name":                  FieldName,
	"patient":               FieldName,
	"patient name":          FieldName,
	"age":                   FieldAge,
	"gender":                FieldGender,
	"sex":                   FieldGender,
	"mrn":                   FieldMRN,
	"medical record number": FieldMRN,
	"medical record no":     FieldMRN,
	"dob":                   FieldDOB,
	"date of birth":         FieldDOB,

	"bp":                VitalBP,
	"blood pressure":    VitalBP,
	"hr":                VitalHR,
	"heart rate":        VitalHR,
	"pulse":             VitalHR,
	"temp":              VitalTemp,
	"temperature":       VitalTemp,
	"rr":                VitalRR,
	"resp":              VitalRR,
	"respiratory rate":  VitalRR,
	"o2 sat":            VitalO2Sat,
	"o2 sats":           VitalO2Sat,
	"o2 saturation":     VitalO2Sat,
	"oxygen saturation": VitalO2Sat,
	"spo2":              VitalO2Sat,
	"sao2":              VitalO2Sat,
	"sp02":              VitalO2Sat,
	"weight":            VitalWeight,
	"wt":                VitalWeight,
	"height":            VitalHeight,
	"ht":                VitalHeight,
	"bmi":               VitalBMI,
	"pain":              VitalPain,
	"pain score":        VitalPain,
}

// DemographicLabels returns the label spellings for patient fields, longest first.
func DemographicLabels() []string { return labelsFor(demographicFields) }

// VitalLabels returns the label spellings for vital signs, longest first.
func VitalLabels() []string { return labelsFor(vitalFields) }

// IsKnownLabel reports whether label is any recognized key-value label.
func IsKnownLabel(label string) bool {
	_, ok := Canonicalize(label)
	return ok
}

// Canonicalize maps a label as written to its canonical field.
func Canonicalize(input string) (Field, bool) {
	if input == "" {
		return "", false
	}
	normalized := strings.ToLower(strings.Join(strings.Fields(input), " "))
	f, ok := synonyms[normalized]
	return f, ok
}

func labelsFor(fields []Field) []string {
	want := make(map[Field]struct{}, len(fields))
	for _, f := range fields {
		want[f] = struct{}{}
	}
	var out []string
	for label, f := range synonyms {
		if _, ok := want[f]; ok {
			out = append(out, label)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// labNames are lab labels recognized as "Name: value" pairs outside a lab section.
var labNames = []string{
	"hemoglobin a1c", "white blood cell count", "white blood cells", "white blood cell",
	"hemoglobin", "hgb", "hba1c", "a1c", "wbc", "platelets", "plt", "glucose", "blood glucose",
	"creatinine", "bun", "cholesterol", "potassium", "sodium", "chloride", "bicarbonate",
	"troponin", "inr", "lactate", "magnesium", "calcium", "bnp", "alt", "ast", "tsh",
}

// LabLabels returns the lab names, longest first.
func LabLabels() []string {
	out := append([]string(nil), labNames...)
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
