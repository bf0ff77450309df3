package flow

import (
	"context"

	"thalia/internal/model"
	"thalia/internal/oracle"
	"thalia/internal/prompt"
)

// ScoreResult is the composite MRS outcome delivered to the user.
type ScoreResult struct {
	TotalScore     int    `json:"total_score"`
	Interpretation string `json:"interpretation"`
}

// Scorer turns a completed records table into a total score and a narrative
// interpretation via the oracle.
type Scorer struct {
	oracle    oracle.Generator
	templates prompt.Renderer
}

// NewScorer creates a scorer.
func NewScorer(gen oracle.Generator, templates prompt.Renderer) *Scorer {
	return &Scorer{oracle: gen, templates: templates}
}

// Score computes the final result for table. On any failure it returns a
// zero score with an "Error: ..." interpretation rather than an error.
func (s *Scorer) Score(ctx context.Context, table model.TrackerExport) ScoreResult {
	rendered, err := s.templates.Render(prompt.TemplateScoreCalculator, map[string]any{
		"user_records": table,
	})
	if err != nil {
		return errorScore("prompt template loading failed")
	}

	output, err := s.oracle.Generate(ctx, rendered)
	if err != nil {
		return errorScore("language model call failed")
	}

	var result ScoreResult
	if err := decodePayload(output, &result); err != nil {
		return errorScore("language model output parsing failed")
	}
	return result
}

func errorScore(message string) ScoreResult {
	return ScoreResult{TotalScore: 0, Interpretation: "Error: " + message}
}
