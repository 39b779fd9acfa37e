package flags

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
)

// Rule is one row of the flag table. Eval returns the flag text when the rule fires.
type Rule struct {
	ID   string
	Eval func(in *Input) (string, bool)
}

// DefaultRules returns the rule table in output order.
func DefaultRules() []Rule {
	rules := []Rule{
		vitalRule("low_spo2", constants.VitalO2Sat, func(v float64) bool { return v < 90 }, "Low oxygen saturation"),
		vitalRule("tachycardia", constants.VitalHR, func(v float64) bool { return v > 120 }, "Tachycardia"),
		vitalRule("bradycardia", constants.VitalHR, func(v float64) bool { return v < 50 }, "Bradycardia"),
		{ID: "severe_hypertension", Eval: severeHypertension},
		{ID: "elevated_bp", Eval: elevatedPressure},
		{ID: "hypotension", Eval: hypotension},
		{ID: "high_fever", Eval: temperatureRule(103, 39.4, true, "High fever")},
		{ID: "hypothermia", Eval: temperatureRule(95, 35, false, "Hypothermia")},
		vitalRule("tachypnea", constants.VitalRR, func(v float64) bool { return v > 28 }, "Tachypnea"),
		vitalRule("bradypnea", constants.VitalRR, func(v float64) bool { return v < 8 }, "Bradypnea"),
		labRule("critical_hypoglycemia", labGlucose, func(v float64) bool { return v < 54 }, "Critical hypoglycemia"),
		labRule("critical_hyperglycemia", labGlucose, func(v float64) bool { return v > 400 }, "Critical hyperglycemia"),
		labRule("critical_hypokalemia", labPotassium, func(v float64) bool { return v < 2.5 }, "Critical hypokalemia"),
		labRule("critical_hyperkalemia", labPotassium, func(v float64) bool { return v > 6.0 }, "Critical hyperkalemia"),
		labRule("critical_hyponatremia", labSodium, func(v float64) bool { return v < 120 }, "Critical hyponatremia"),
		labRule("critical_hypernatremia", labSodium, func(v float64) bool { return v > 160 }, "Critical hypernatremia"),
		labRule("severe_anemia", labHemoglobin, func(v float64) bool { return v < 7 }, "Severe anemia"),
	}
	for _, kw := range highRiskDiagnoses {
		rules = append(rules, diagnosisRule(kw))
	}
	for _, term := range emergentTerms {
		rules = append(rules, emergentRule(term))
	}
	return rules
}

// ---------- vitals ----------

var (
	reNumber  = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
	reBP      = regexp.MustCompile(`(\d{2,3})\s*/\s*(\d{2,3})`)
	reCelsius = regexp.MustCompile(`(?i)(?:°\s*c\b|\bc\b|celsius|\d\s*c\b)`)
	reFahr    = regexp.MustCompile(`(?i)(?:°\s*f\b|\bf\b|fahrenheit|\d\s*f\b)`)
)

func firstNumber(s string) (float64, bool) {
	m := reNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	return v, err == nil
}

func vitalRule(id string, field constants.Field, fires func(float64) bool, label string) Rule {
	return Rule{ID: id, Eval: func(in *Input) (string, bool) {
		raw, ok := in.Vitals.Get(string(field))
		if !ok {
			return "", false
		}
		v, ok := firstNumber(raw)
		if !ok || !fires(v) {
			return "", false
		}
		return fmt.Sprintf("%s (%s %s)", label, field, raw), true
	}}
}

func bloodPressure(in *Input) (sys, dia float64, raw string, ok bool) {
	raw, ok = in.Vitals.Get(string(constants.VitalBP))
	if !ok {
		return 0, 0, "", false
	}
	m := reBP.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, "", false
	}
	sys, _ = strconv.ParseFloat(m[1], 64)
	dia, _ = strconv.ParseFloat(m[2], 64)
	return sys, dia, raw, true
}

func severeHypertension(in *Input) (string, bool) {
	sys, dia, raw, ok := bloodPressure(in)
	if !ok || (sys <= 180 && dia <= 120) {
		return "", false
	}
	return fmt.Sprintf("Severe hypertension (BP %s)", raw), true
}

// elevatedPressure covers readings above 140/90 that are not severe.
func elevatedPressure(in *Input) (string, bool) {
	sys, dia, raw, ok := bloodPressure(in)
	if !ok || (sys <= 140 && dia <= 90) || sys > 180 || dia > 120 {
		return "", false
	}
	return fmt.Sprintf("Elevated blood pressure (BP %s)", raw), true
}

func hypotension(in *Input) (string, bool) {
	sys, _, raw, ok := bloodPressure(in)
	if !ok || sys >= 90 {
		return "", false
	}
	return fmt.Sprintf("Hypotension (BP %s)", raw), true
}

// temperature reads a temperature value. It is Celsius when the unit says so
// or when no unit is given and the number is below 50.
func temperature(raw string) (v float64, celsius, ok bool) {
	v, ok = firstNumber(raw)
	if !ok {
		return 0, false, false
	}
	switch {
	case reCelsius.MatchString(raw):
		return v, true, true
	case reFahr.MatchString(raw):
		return v, false, true
	}
	return v, v < 50, true
}

// temperatureRule fires when the reading crosses limitF, or limitC for Celsius readings.
func temperatureRule(limitF, limitC float64, above bool, label string) func(*Input) (string, bool) {
	return func(in *Input) (string, bool) {
		raw, ok := in.Vitals.Get(string(constants.VitalTemp))
		if !ok {
			return "", false
		}
		v, celsius, ok := temperature(raw)
		if !ok {
			return "", false
		}
		limit := limitF
		if celsius {
			limit = limitC
		}
		if (above && v < limit) || (!above && v >= limit) {
			return "", false
		}
		return fmt.Sprintf("%s (Temp %s)", label, raw), true
	}
}

// ---------- labs ----------

type labKind struct {
	inText *regexp.Regexp // applied to free text
	inItem *regexp.Regexp // applied to lab result items, abbreviations allowed
	scale  func(v float64, unit string) float64
}

func labPattern(names string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + names + `)\+?\s*(?:level)?\s*(?::|=|of|was|is)?\s*([<>]?\s*\d+(?:\.\d+)?)\s*([a-zµ/]*(?:/[a-z]+)?)`)
}

func newLab(names, abbrev string, scale func(float64, string) float64) labKind {
	k := labKind{inText: labPattern(names), inItem: labPattern(names), scale: scale}
	if abbrev != "" {
		k.inItem = labPattern(names + "|" + abbrev)
	}
	return k
}

var (
	labGlucose = newLab(`blood glucose|glucose`, `bg`, func(v float64, unit string) float64 {
		if strings.Contains(strings.ToLower(unit), "mmol") {
			return v * 18
		}
		return v
	})
	labPotassium  = newLab(`potassium`, `k`, nil)
	labSodium     = newLab(`sodium`, `na`, nil)
	labHemoglobin = newLab(`hemoglobin|haemoglobin|hgb`, `hb`, func(v float64, unit string) float64 {
		if strings.EqualFold(unit, "g/l") {
			return v / 10
		}
		return v
	})
)

// values returns every reading of the lab found in the lab results, then the text.
func (k labKind) values(in *Input) []labReading {
	var out []labReading
	scan := func(re *regexp.Regexp, s string) {
		for _, m := range re.FindAllStringSubmatch(s, -1) {
			num := strings.TrimLeft(strings.TrimSpace(m[1]), "<>")
			v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				continue
			}
			if k.scale != nil {
				v = k.scale(v, m[2])
			}
			out = append(out, labReading{value: v, raw: strings.TrimSpace(m[0])})
		}
	}
	for _, item := range in.LabResults {
		scan(k.inItem, item)
	}
	scan(k.inText, in.Text)
	return out
}

type labReading struct {
	value float64
	raw   string
}

func labRule(id string, kind labKind, fires func(float64) bool, label string) Rule {
	return Rule{ID: id, Eval: func(in *Input) (string, bool) {
		for _, r := range kind.values(in) {
			if fires(r.value) {
				return fmt.Sprintf("%s (%s)", label, r.raw), true
			}
		}
		return "", false
	}}
}
