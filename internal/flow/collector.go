package flow

import (
	"context"
	"fmt"

	"thalia/internal/model"
	"thalia/internal/oracle"
	"thalia/internal/prompt"
)

// Action is the collector's reading of the user's intent for one reply.
type Action string

const (
	ActionSeverityClear   Action = "severity_clear"
	ActionSeverityUnclear Action = "severity_unclear"
	ActionExitIntent      Action = "exit_intent"
	ActionEmergencyExit   Action = "emergency_exit"
	ActionError           Action = "error"
)

// Collection is the structured interpretation of one free-text reply.
// For ActionError, Message holds the failure explanation; for the other
// actions it holds the model's follow-up text.
type Collection struct {
	Action  Action
	Scored  []ScoredSymptom
	Message string
}

// Collector turns one user utterance plus the previously asked question into
// a structured Collection via the oracle. It remembers which question was
// asked and which symptoms it covered so the tracker can default-zero asked
// but unscored symptoms.
type Collector struct {
	oracle    oracle.Generator
	templates prompt.Renderer

	previousQuestion string
	lastAsked        []model.Symptom
}

// NewCollector creates a collector with no question asked yet.
func NewCollector(gen oracle.Generator, templates prompt.Renderer) *Collector {
	return &Collector{oracle: gen, templates: templates}
}

// SetAsked records the question just posed to the user and the symptoms it
// covered.
func (c *Collector) SetAsked(question string, symptoms []model.Symptom) {
	c.previousQuestion = question
	c.lastAsked = symptoms
}

// PreviousQuestion returns the text of the last question asked.
func (c *Collector) PreviousQuestion() string {
	return c.previousQuestion
}

// LastAsked returns the symptoms covered by the last question.
func (c *Collector) LastAsked() []model.Symptom {
	return c.lastAsked
}

// Reset clears the asked-question bookkeeping.
func (c *Collector) Reset() {
	c.previousQuestion = ""
	c.lastAsked = nil
}

type analyzerPayload struct {
	ActionType     string          `json:"action_type"`
	SymptomsScored []ScoredSymptom `json:"symptoms_scored"`
	NextMessage    string          `json:"next_message"`
}

// Collect analyzes one utterance. Template, oracle, and parse failures are
// all returned as ActionError with a human-readable message; Collect never
// returns a Go error and never mutates the tracker.
func (c *Collector) Collect(ctx context.Context, userInput string) Collection {
	rendered, err := c.templates.Render(prompt.TemplateResponseAnalyzer, map[string]any{
		"user_input":        userInput,
		"previous_question": c.previousQuestion,
	})
	if err != nil {
		return errorCollection("prompt template loading failed")
	}

	output, err := c.oracle.Generate(ctx, rendered)
	if err != nil {
		return errorCollection("language model call failed")
	}

	var payload analyzerPayload
	if err := decodePayload(output, &payload); err != nil {
		return errorCollection("language model output parsing failed")
	}

	action := Action(payload.ActionType)
	switch action {
	case ActionSeverityClear, ActionSeverityUnclear, ActionExitIntent, ActionEmergencyExit:
	default:
		return errorCollection("language model output parsing failed")
	}

	for _, item := range payload.SymptomsScored {
		if _, ok := model.DomainOf(item.Symptom); !ok {
			return errorCollection(fmt.Sprintf("unknown symptom %q in model output", item.Symptom))
		}
		if !model.ValidMRSScore(item.MRSScore) {
			return errorCollection(fmt.Sprintf("score %d for %q out of range", item.MRSScore, item.Symptom))
		}
	}

	return Collection{
		Action:  action,
		Scored:  payload.SymptomsScored,
		Message: payload.NextMessage,
	}
}

func errorCollection(message string) Collection {
	return Collection{Action: ActionError, Message: message}
}
