package service

import (
	"context"
	"log"
	"strings"

	"thalia/internal/oracle"
	"thalia/internal/prompt"
)

// Intent is the classifier's label for a user message.
type Intent string

const (
	IntentSymptomAssessment Intent = "SYMPTOM_ASSESSMENT"
	IntentKnowledgeQuery    Intent = "KNOWLEDGE_QUERY"
	IntentEmotionalSupport  Intent = "EMOTIONAL_SUPPORT"
	IntentOutOfScope        Intent = "OUT_OF_SCOPE"
)

// IntentClassifier routes a message to a conversational mode via the oracle,
// falling back to keyword matching when the oracle is unavailable or fails.
type IntentClassifier struct {
	oracle    oracle.Generator
	templates prompt.Renderer
}

// NewIntentClassifier creates a classifier.
func NewIntentClassifier(gen oracle.Generator, templates prompt.Renderer) *IntentClassifier {
	return &IntentClassifier{oracle: gen, templates: templates}
}

// Classify labels one user message.
func (c *IntentClassifier) Classify(ctx context.Context, userInput string) Intent {
	rendered, err := c.templates.Render(prompt.TemplateIntentClassifier, map[string]any{
		"user_input": userInput,
	})
	if err != nil {
		log.Printf("intent template error: %v", err)
		return keywordFallback(userInput)
	}

	output, err := c.oracle.Generate(ctx, rendered)
	if err != nil {
		log.Printf("intent classification error: %v", err)
		return keywordFallback(userInput)
	}

	intent := Intent(strings.ToUpper(strings.TrimSpace(output)))
	switch intent {
	case IntentSymptomAssessment, IntentKnowledgeQuery, IntentEmotionalSupport, IntentOutOfScope:
		return intent
	}
	return keywordFallback(userInput)
}

// keywordFallback is the degraded classifier used when no model is reachable.
func keywordFallback(userInput string) Intent {
	lower := strings.ToLower(userInput)

	switch {
	case containsAny(lower, "symptom", "having", "experience", "assess", "evaluate"):
		return IntentSymptomAssessment
	case containsAny(lower, "worried", "scared", "anxious", "feel", "emotional"):
		return IntentEmotionalSupport
	case containsAny(lower, "what", "how", "why", "explain", "tell me"):
		return IntentKnowledgeQuery
	default:
		return IntentOutOfScope
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
