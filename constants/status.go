package constants

// RunStatus is the canonical status for rows in summary_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusOK       RunStatus = "OK"       // record produced
	RunStatusRejected RunStatus = "REJECTED" // empty input, never entered the pipeline
	RunStatusTimeout  RunStatus = "TIMEOUT"  // request deadline expired, no record
	RunStatusFailed   RunStatus = "FAILED"   // unexpected internal error
)

// Entity types produced by recognizers.
const (
	EntityDiagnosis  = "diagnosis"
	EntityMedication = "medication"
	EntityLab        = "lab"
	EntityMRN        = "mrn"
	EntityAge        = "age"
	EntityGender     = "gender"
)

// EntityTypes lists every entity type a recognizer may emit.
var EntityTypes = []string{
	EntityDiagnosis, EntityMedication, EntityLab, EntityMRN, EntityAge, EntityGender,
}

// Model backend names.
const (
	BackendLexicon = "lexicon"
	BackendOpenAI  = "openai"
	BackendLead    = "lead"
	BackendNone    = "none"
)
