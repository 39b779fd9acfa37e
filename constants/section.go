package constants

import (
	"sort"
	"strings"
)

// SectionKind identifies a recognized region of a clinical report.
type SectionKind string

const (
	SectionPreamble       SectionKind = "preamble" // text before the first header
	SectionDemographics   SectionKind = "demographics"
	SectionChiefComplaint SectionKind = "chief_complaint"
	SectionHPI            SectionKind = "history_of_present_illness"
	SectionVitalSigns     SectionKind = "vital_signs"
	SectionAssessment     SectionKind = "assessment_and_plan"
	SectionMedications    SectionKind = "medications"
	SectionLabResults     SectionKind = "laboratory_results"
	SectionAllergies      SectionKind = "allergies"
	SectionProcedures     SectionKind = "procedures"
	SectionPlan           SectionKind = "plan"
	SectionOther          SectionKind = "other" // known header whose content is not extracted
	SectionUnknown        SectionKind = "unknown"
)

// sectionAliases is the header vocabulary. Aliases are lower case, single spaced.
// Extend by adding entries; matching is case-insensitive.
var sectionAliases = map[SectionKind][]string{
	SectionDemographics: {
		"patient information", "patient info", "patient details", "patient demographics",
		"demographics", "identifying data",
	},
	SectionChiefComplaint: {
		"chief complaint", "chief complaints", "cc", "presenting complaint", "presenting problem",
		"reason for visit", "reason for admission",
	},
	SectionHPI: {
		"history of present illness", "history of presenting illness", "hpi", "present illness",
	},
	SectionVitalSigns: {
		"vital signs", "vitals", "vital sign",
	},
	SectionAssessment: {
		"assessment and plan", "assessment & plan", "assessment/plan", "a/p", "a&p", "assessment",
		"impression", "impression and plan", "diagnosis", "diagnoses", "working diagnosis",
		"discharge diagnosis", "discharge diagnoses", "problem list",
	},
	SectionMedications: {
		"medications", "medication", "current medications", "home medications", "meds",
		"discharge medications", "medication list", "rx",
	},
	SectionLabResults: {
		"laboratory results", "laboratory", "laboratory data", "lab results", "labs", "lab data",
		"laboratory findings",
	},
	SectionAllergies: {
		"allergies", "allergy", "drug allergies", "allergies/adverse reactions",
	},
	SectionProcedures: {
		"procedures", "procedure", "procedures performed",
	},
	SectionPlan: {
		"plan", "recommendations", "follow up", "follow-up", "disposition",
	},
	SectionOther: {
		"physical exam", "physical examination", "exam", "review of systems", "ros",
		"past medical history", "pmh", "past surgical history", "psh", "social history",
		"family history", "imaging", "hospital course",
	},
}

type headerAlias struct {
	alias string
	kind  SectionKind
}

var orderedAliases = buildOrderedAliases()

// buildOrderedAliases sorts aliases longest first so that "assessment and plan"
// wins over "assessment" when both are candidates.
func buildOrderedAliases() []headerAlias {
	var out []headerAlias
	for kind, aliases := range sectionAliases {
		for _, a := range aliases {
			out = append(out, headerAlias{alias: a, kind: kind})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].alias) != len(out[j].alias) {
			return len(out[i].alias) > len(out[j].alias)
		}
		return out[i].alias < out[j].alias
	})
	return out
}

// HeaderAliases returns every (alias, kind) pair, longest alias first.
func HeaderAliases() []struct {
	Alias string
	Kind  SectionKind
} {
	out := make([]struct {
		Alias string
		Kind  SectionKind
	}, len(orderedAliases))
	for i, a := range orderedAliases {
		out[i].Alias = a.alias
		out[i].Kind = a.kind
	}
	return out
}

// LookupSection maps a header label (any case, extra spaces allowed) to its kind.
func LookupSection(label string) (SectionKind, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(label), " "))
	for _, a := range orderedAliases {
		if a.alias == normalized {
			return a.kind, true
		}
	}
	return SectionUnknown, false
}

// IsListSection reports whether a section's content is split into items.
func IsListSection(k SectionKind) bool {
	switch k {
	case SectionAssessment, SectionMedications, SectionLabResults,
		SectionAllergies, SectionProcedures, SectionPlan:
		return true
	}
	return false
}
