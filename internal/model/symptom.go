package model

import "strings"

// Domain is one of the three MRS symptom groups.
type Domain string

const (
	DomainSomatic       Domain = "somatic"
	DomainPsychological Domain = "psychological"
	DomainUrogenital    Domain = "urogenital"
)

// DomainPriority is the fixed order domains are worked through during an
// assessment. Somatic symptoms come first because they are usually the
// easiest for users to recognize.
var DomainPriority = []Domain{DomainSomatic, DomainPsychological, DomainUrogenital}

// Symptom is one of the eleven MRS questionnaire items.
type Symptom string

const (
	SymptomHotFlashes            Symptom = "hot_flashes"
	SymptomHeartDiscomfort       Symptom = "heart_discomfort"
	SymptomSleepProblems         Symptom = "sleep_problems"
	SymptomJointMuscleDiscomfort Symptom = "joint_muscle_discomfort"
	SymptomDepressiveMood        Symptom = "depressive_mood"
	SymptomIrritability          Symptom = "irritability"
	SymptomAnxiety               Symptom = "anxiety"
	SymptomMentalExhaustion      Symptom = "mental_exhaustion"
	SymptomSexualProblems        Symptom = "sexual_problems"
	SymptomBladderProblems       Symptom = "bladder_problems"
	SymptomVaginalDryness        Symptom = "vaginal_dryness"
)

// Catalog assigns each symptom to exactly one domain. The assignment and the
// per-domain order are fixed for the lifetime of the process.
var Catalog = map[Domain][]Symptom{
	DomainSomatic: {
		SymptomHotFlashes,
		SymptomHeartDiscomfort,
		SymptomSleepProblems,
		SymptomJointMuscleDiscomfort,
	},
	DomainPsychological: {
		SymptomDepressiveMood,
		SymptomIrritability,
		SymptomAnxiety,
		SymptomMentalExhaustion,
	},
	DomainUrogenital: {
		SymptomSexualProblems,
		SymptomBladderProblems,
		SymptomVaginalDryness,
	},
}

// MRS severity bounds: 0 = not present, 4 = very severe.
const (
	MinMRSScore = 0
	MaxMRSScore = 4
)

// ValidMRSScore reports whether n is a legal MRS severity value.
func ValidMRSScore(n int) bool {
	return n >= MinMRSScore && n <= MaxMRSScore
}

// DomainOf returns the domain a symptom belongs to.
func DomainOf(s Symptom) (Domain, bool) {
	for _, domain := range DomainPriority {
		for _, symptom := range Catalog[domain] {
			if symptom == s {
				return domain, true
			}
		}
	}
	return "", false
}

// AllSymptoms returns every catalog symptom in enumeration order.
func AllSymptoms() []Symptom {
	all := make([]Symptom, 0, 11)
	for _, domain := range DomainPriority {
		all = append(all, Catalog[domain]...)
	}
	return all
}

// Display converts a symptom identifier to its human-readable form,
// e.g. "hot_flashes" -> "hot flashes".
func (s Symptom) Display() string {
	return strings.ReplaceAll(string(s), "_", " ")
}
