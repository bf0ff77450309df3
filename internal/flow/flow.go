package flow

import (
	"context"
	"fmt"
	"strings"

	"thalia/internal/model"
	"thalia/internal/oracle"
	"thalia/internal/prompt"
)

// bundleSize caps how many same-domain symptoms one question covers.
const bundleSize = 2

// Flow drives one symptom-assessment session. It behaves as a three-state
// machine: awaiting input (the default), pending zero confirmation, and
// pending exit confirmation; the two pending flags are mutually exclusive.
// A Flow is not safe for concurrent use; the caller must serialize turns
// within a session, and each session needs its own instance.
type Flow struct {
	tracker   *Tracker
	collector *Collector
	scorer    *Scorer
	oracle    oracle.Generator
	templates prompt.Renderer

	pendingZeroConfirmation bool
	pendingExitConfirmation bool
	originalQuestion        string
}

// New creates a fresh assessment flow.
func New(gen oracle.Generator, templates prompt.Renderer) *Flow {
	return &Flow{
		tracker:   NewTracker(),
		collector: NewCollector(gen, templates),
		scorer:    NewScorer(gen, templates),
		oracle:    gen,
		templates: templates,
	}
}

// Reset returns the session to its initial state: fresh tracker, cleared
// confirmation flags, no remembered question. Called exactly when the flow
// reaches a terminal outcome.
func (f *Flow) Reset() {
	f.tracker = NewTracker()
	f.collector.Reset()
	f.pendingZeroConfirmation = false
	f.pendingExitConfirmation = false
	f.originalQuestion = ""
}

// Tracker exposes the session's records table.
func (f *Flow) Tracker() *Tracker {
	return f.tracker
}

// Progress returns the current completion statistics.
func (f *Flow) Progress() model.ProgressReport {
	return f.tracker.Progress()
}

// PendingZeroConfirmation reports whether the flow is waiting for the user
// to confirm defaulted zero scores.
func (f *Flow) PendingZeroConfirmation() bool {
	return f.pendingZeroConfirmation
}

// PendingExitConfirmation reports whether the flow is waiting for the user
// to confirm leaving the assessment.
func (f *Flow) PendingExitConfirmation() bool {
	return f.pendingExitConfirmation
}

// ProcessInput handles one user utterance and returns a structured result.
// It never returns a Go error; oracle and template failures surface as the
// error status with the tracker left untouched.
func (f *Flow) ProcessInput(ctx context.Context, userInput string) model.TurnResult {
	if f.pendingZeroConfirmation {
		return f.handleZeroConfirmation(ctx, userInput)
	}
	if f.pendingExitConfirmation {
		return f.handleExitConfirmation(ctx, userInput)
	}

	parsed := f.collector.Collect(ctx, userInput)
	switch parsed.Action {
	case ActionEmergencyExit:
		return f.exitFlow("")

	case ActionExitIntent:
		f.pendingExitConfirmation = true
		f.originalQuestion = userInput
		return f.result(model.StatusExitConfirmationPending, parsed.Message)

	case ActionSeverityUnclear:
		return f.result(model.StatusClarificationNeeded, parsed.Message)

	case ActionSeverityClear:
		f.tracker.Update(f.collector.LastAsked(), parsed.Scored)
		return f.askNextQuestion(ctx, parsed.Message)

	default:
		return f.errorResult(parsed.Message)
	}
}

// handleZeroConfirmation resolves the batched "I assumed these are absent"
// prompt. Only an affirmative reply finalizes scoring; anything else is
// treated as a correction and the flow re-asks the next question (which, for
// a complete tracker, re-issues the zero-confirmation prompt).
func (f *Flow) handleZeroConfirmation(ctx context.Context, userInput string) model.TurnResult {
	if classifyConfirmation(userInput) == replyAffirmative {
		f.pendingZeroConfirmation = false
		return f.scoreAndRespond(ctx)
	}
	return f.askNextQuestion(ctx, "")
}

// handleExitConfirmation resolves the "do you want to leave?" prompt. An
// ambiguous reply fails open to continuing with the next question.
func (f *Flow) handleExitConfirmation(ctx context.Context, userInput string) model.TurnResult {
	f.pendingExitConfirmation = false
	switch classifyConfirmation(userInput) {
	case replyAffirmative:
		return f.exitFlow(f.originalQuestion)
	case replyNegative:
		message := strings.TrimSpace("Great, let's continue. " + f.collector.PreviousQuestion())
		return f.result(model.StatusContinueAssessment, message)
	default:
		return f.askNextQuestion(ctx, "")
	}
}

type questionPayload struct {
	NextQuestion string `json:"next_question"`
}

// askNextQuestion advances the dialogue: checks for completion, otherwise
// obtains the next bundle and has the oracle phrase a question for it. The
// lead text, when present, is prepended to the generated question.
func (f *Flow) askNextQuestion(ctx context.Context, lead string) model.TurnResult {
	if f.tracker.IsComplete() {
		return f.checkZeroBeforeScore(ctx)
	}

	bundle, _ := f.tracker.NextBundle(bundleSize)
	if len(bundle) == 0 {
		return f.checkZeroBeforeScore(ctx)
	}

	rendered, err := f.templates.Render(prompt.TemplateQuestionGenerator, map[string]any{
		"target_symptoms": bundle,
	})
	if err != nil {
		return f.errorResult("prompt template loading failed")
	}

	output, err := f.oracle.Generate(ctx, rendered)
	if err != nil {
		return f.errorResult("language model call failed")
	}

	var payload questionPayload
	if err := decodePayload(output, &payload); err != nil || payload.NextQuestion == "" {
		return f.errorResult("language model output parsing failed")
	}

	f.collector.SetAsked(payload.NextQuestion, bundle)
	return f.result(model.StatusAskingNextSymptom, strings.TrimSpace(lead+" "+payload.NextQuestion))
}

// checkZeroBeforeScore gates scoring behind a confirmation of every
// defaulted or explicit zero, batched into one message.
func (f *Flow) checkZeroBeforeScore(ctx context.Context) model.TurnResult {
	zeros := f.tracker.ZeroScored()
	if len(zeros) == 0 {
		return f.scoreAndRespond(ctx)
	}

	f.pendingZeroConfirmation = true
	readable := make([]string, len(zeros))
	for i, symptom := range zeros {
		readable[i] = symptom.Display()
	}
	message := fmt.Sprintf(
		"Assessment completed! Before calculating your score, I assumed you don't have these symptoms: %s. "+
			"Is this accurate? (yes) If not, please share any updates and I'll make adjustments.",
		strings.Join(readable, ", "))
	return f.result(model.StatusZeroConfirmationPending, message)
}

// scoreAndRespond finalizes the assessment: scores the full table, resets
// the session, and returns the terminal result. Scoring failures still
// terminate the session, carrying the error text as the interpretation.
func (f *Flow) scoreAndRespond(ctx context.Context) model.TurnResult {
	table := f.tracker.Export()
	scored := f.scorer.Score(ctx, table)
	f.Reset()

	total := scored.TotalScore
	return model.TurnResult{
		Status:   model.StatusScoringCompleted,
		Message:  scored.Interpretation + " (Session finished. Assessment exited.)",
		Flow:     model.FlowSymptomAssessment,
		MRSScore: &total,
		Records:  table,
	}
}

// exitFlow terminates the assessment, optionally carrying forward the
// utterance that triggered the exit so the dispatcher can re-route it.
func (f *Flow) exitFlow(originalQuestion string) model.TurnResult {
	f.Reset()
	return model.TurnResult{
		Status:           model.StatusExitConfirmed,
		Message:          "Assessment ended. Is there anything else you'd like to talk about?",
		Flow:             model.FlowSymptomAssessment,
		OriginalQuestion: originalQuestion,
	}
}

func (f *Flow) result(status model.FlowStatus, message string) model.TurnResult {
	return model.TurnResult{
		Status:  status,
		Message: message,
		Flow:    model.FlowSymptomAssessment,
	}
}

func (f *Flow) errorResult(message string) model.TurnResult {
	return model.TurnResult{
		Status:  model.StatusError,
		Message: "Error: " + message,
		Flow:    model.FlowSymptomAssessment,
	}
}
