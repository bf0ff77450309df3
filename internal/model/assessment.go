package model

import "time"

// Record is one symptom's assessment state. A nil MRSScore means the user
// has not scored the symptom yet; IsAddressed is set once the symptom has
// been either scored or defaulted to zero after being asked.
type Record struct {
	MRSScore    *int `json:"mrs_score" bson:"mrs_score"`
	IsAddressed bool `json:"is_addressed" bson:"is_addressed"`
}

// TrackerExport is the serialized form of the full records table.
type TrackerExport map[Domain]map[Symptom]Record

// FlowStatus is the outcome of one assessment turn, consumed by the
// dispatcher to decide where the next turn should be routed.
type FlowStatus string

const (
	StatusAskingNextSymptom       FlowStatus = "asking_next_symptom"
	StatusClarificationNeeded     FlowStatus = "clarification_needed"
	StatusZeroConfirmationPending FlowStatus = "zero_confirmation_pending"
	StatusExitConfirmationPending FlowStatus = "exit_confirmation_pending"
	StatusContinueAssessment      FlowStatus = "continue_assessment"
	StatusScoringCompleted        FlowStatus = "scoring_completed_and_exited"
	StatusExitConfirmed           FlowStatus = "exit_confirmed"
	StatusError                   FlowStatus = "error"
)

// FlowSymptomAssessment labels turn results produced by the MRS flow.
const FlowSymptomAssessment = "symptom_assessment"

// TurnResult is what the assessment flow returns for one user utterance.
type TurnResult struct {
	Status  FlowStatus `json:"status"`
	Message string     `json:"message"`
	Flow    string     `json:"flow"`
	// MRSScore is set only on scoring_completed_and_exited.
	MRSScore *int `json:"mrs_score,omitempty"`
	// OriginalQuestion is set on exit_confirmed when the exit was triggered
	// by an utterance the dispatcher should re-route elsewhere.
	OriginalQuestion string `json:"original_question,omitempty"`
	// Records is the final table snapshot, set alongside MRSScore so the
	// completed assessment can be persisted after the session resets.
	Records TrackerExport `json:"records,omitempty"`
}

// DomainProgress summarizes one domain's completion state.
type DomainProgress struct {
	Addressed  int     `json:"addressed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// TotalProgress summarizes the whole questionnaire.
type TotalProgress struct {
	Addressed  int     `json:"addressed"`
	Scored     int     `json:"scored"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ProgressReport is the full progress snapshot exposed on the progress
// endpoint and computed by the tracker.
type ProgressReport struct {
	Total      TotalProgress             `json:"total_progress"`
	ByDomain   map[Domain]DomainProgress `json:"domain_progress"`
	IsComplete bool                      `json:"is_complete"`
}

// AssessmentReport is a completed assessment persisted to MongoDB.
type AssessmentReport struct {
	ID             string        `json:"id" bson:"_id,omitempty"`
	SessionID      string        `json:"sessionId" bson:"session_id"`
	UserID         string        `json:"userId,omitempty" bson:"user_id,omitempty"`
	TotalScore     int           `json:"totalScore" bson:"total_score"`
	Interpretation string        `json:"interpretation" bson:"interpretation"`
	Records        TrackerExport `json:"records" bson:"records"`
	CompletedAt    time.Time     `json:"completedAt" bson:"completed_at"`
}
