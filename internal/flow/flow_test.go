package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"thalia/internal/model"
	"thalia/internal/prompt"
)

func newTestFlow(outputs ...string) (*Flow, *fakeOracle) {
	gen := &fakeOracle{outputs: outputs}
	return New(gen, prompt.NewStore()), gen
}

func analyzerClear(scored, nextMessage string) string {
	return `{"action_type": "severity_clear", "symptoms_scored": [` + scored + `], "next_message": "` + nextMessage + `"}`
}

const questionOut = `{"next_question": "Have you noticed any heart discomfort or trouble sleeping?"}`

// allScored lists every catalog symptom with the given score, as analyzer
// payload fragments.
func allScored(score string) string {
	var parts []string
	for _, symptom := range model.AllSymptoms() {
		parts = append(parts, `{"symptom": "`+string(symptom)+`", "mrs_score": `+score+`}`)
	}
	return strings.Join(parts, ", ")
}

func TestProcessInputAsksNextQuestion(t *testing.T) {
	f, _ := newTestFlow(
		analyzerClear(`{"symptom": "hot_flashes", "mrs_score": 3}`, "Got it."),
		questionOut,
	)

	got := f.ProcessInput(context.Background(), "my hot flashes are pretty bad")
	if got.Status != model.StatusAskingNextSymptom {
		t.Fatalf("status = %s, want asking_next_symptom", got.Status)
	}
	if !strings.HasPrefix(got.Message, "Got it. ") {
		t.Errorf("message %q does not lead with the acknowledgement", got.Message)
	}
	if !strings.Contains(got.Message, "heart discomfort") {
		t.Errorf("message %q missing generated question", got.Message)
	}

	record, _ := f.Tracker().Record(model.SymptomHotFlashes)
	if record.MRSScore == nil || *record.MRSScore != 3 {
		t.Errorf("hot_flashes record = %+v, want score 3", record)
	}
}

func TestProcessInputClarification(t *testing.T) {
	f, _ := newTestFlow(`{"action_type": "severity_unclear", "symptoms_scored": [], "next_message": "Could you say more about how often that happens?"}`)

	got := f.ProcessInput(context.Background(), "sometimes I guess")
	if got.Status != model.StatusClarificationNeeded {
		t.Fatalf("status = %s, want clarification_needed", got.Status)
	}
	if got.Message == "" {
		t.Error("clarification carries no message")
	}
	// Nothing was recorded.
	if got := len(f.Tracker().MissingSymptoms("")); got != 11 {
		t.Errorf("missing = %d after clarification, want 11", got)
	}
}

func TestErrorLeavesStateUntouched(t *testing.T) {
	gen := &fakeOracle{err: errors.New("network down")}
	f := New(gen, prompt.NewStore())

	// Seed some progress first.
	f.Tracker().Update(nil, []ScoredSymptom{{Symptom: model.SymptomHotFlashes, MRSScore: 2}})
	before := f.Progress()

	got := f.ProcessInput(context.Background(), "my sleep is terrible")
	if got.Status != model.StatusError {
		t.Fatalf("status = %s, want error", got.Status)
	}
	if !strings.HasPrefix(got.Message, "Error: ") {
		t.Errorf("message = %q, want Error: prefix", got.Message)
	}

	after := f.Progress()
	if before.Total != after.Total {
		t.Errorf("progress changed across failed turn: %+v -> %+v", before.Total, after.Total)
	}
	if f.PendingZeroConfirmation() || f.PendingExitConfirmation() {
		t.Error("failed turn set a pending confirmation flag")
	}
}

func TestCompletionWithZerosAsksConfirmation(t *testing.T) {
	// One turn scores everything; two symptoms land on zero.
	var parts []string
	for _, symptom := range model.AllSymptoms() {
		score := `2`
		if symptom == model.SymptomBladderProblems || symptom == model.SymptomVaginalDryness {
			score = `0`
		}
		parts = append(parts, `{"symptom": "`+string(symptom)+`", "mrs_score": `+score+`}`)
	}
	f, _ := newTestFlow(analyzerClear(strings.Join(parts, ", "), "Thanks."))

	got := f.ProcessInput(context.Background(), "here is everything at once")
	if got.Status != model.StatusZeroConfirmationPending {
		t.Fatalf("status = %s, want zero_confirmation_pending", got.Status)
	}
	if !f.PendingZeroConfirmation() {
		t.Error("pending zero flag not set")
	}
	if !strings.Contains(got.Message, "bladder problems") || !strings.Contains(got.Message, "vaginal dryness") {
		t.Errorf("message %q does not name the zero-scored symptoms", got.Message)
	}
	if strings.Contains(got.Message, "hot flashes") {
		t.Errorf("message %q names a non-zero symptom", got.Message)
	}
}

func TestZeroConfirmationYesScoresAndResets(t *testing.T) {
	f, _ := newTestFlow(
		analyzerClear(allScored("0"), "Thanks."),
		`{"total_score": 0, "interpretation": "No menopausal symptoms reported."}`,
	)

	got := f.ProcessInput(context.Background(), "none of those bother me")
	if got.Status != model.StatusZeroConfirmationPending {
		t.Fatalf("setup status = %s", got.Status)
	}

	got = f.ProcessInput(context.Background(), "yes")
	if got.Status != model.StatusScoringCompleted {
		t.Fatalf("status = %s, want scoring_completed_and_exited", got.Status)
	}
	if got.MRSScore == nil || *got.MRSScore != 0 {
		t.Errorf("score = %v, want 0", got.MRSScore)
	}
	if !strings.Contains(got.Message, "No menopausal symptoms reported.") {
		t.Errorf("message = %q", got.Message)
	}
	if !strings.Contains(got.Message, "Session finished") {
		t.Errorf("message %q missing session-finished suffix", got.Message)
	}
	if got.Records == nil {
		t.Error("terminal result carries no records snapshot")
	}

	// The session reset for the next assessment.
	if f.PendingZeroConfirmation() || f.Tracker().IsComplete() {
		t.Error("flow did not reset after scoring")
	}
}

func TestZeroConfirmationCorrectionReasksWhileComplete(t *testing.T) {
	// The tracker is complete, so a non-affirmative reply routes back through
	// the completion check and re-issues the confirmation prompt.
	f, _ := newTestFlow(analyzerClear(allScored("0"), "Thanks."))

	f.ProcessInput(context.Background(), "none of those bother me")
	got := f.ProcessInput(context.Background(), "actually wait")

	if got.Status != model.StatusZeroConfirmationPending {
		t.Fatalf("status = %s, want zero_confirmation_pending again", got.Status)
	}
	if !f.PendingZeroConfirmation() {
		t.Error("pending zero flag dropped on correction")
	}
}

func TestCompletionWithoutZerosScoresDirectly(t *testing.T) {
	f, _ := newTestFlow(
		analyzerClear(allScored("2"), "Thanks."),
		`{"total_score": 22, "interpretation": "Moderate symptoms across all domains."}`,
	)

	got := f.ProcessInput(context.Background(), "everything is moderate")
	if got.Status != model.StatusScoringCompleted {
		t.Fatalf("status = %s, want scoring_completed_and_exited", got.Status)
	}
	if got.MRSScore == nil || *got.MRSScore != 22 {
		t.Errorf("score = %v, want 22", got.MRSScore)
	}
}

func TestScoringFailureStillTerminates(t *testing.T) {
	f, _ := newTestFlow(
		analyzerClear(allScored("2"), "Thanks."),
		"not json at all",
	)

	got := f.ProcessInput(context.Background(), "everything is moderate")
	if got.Status != model.StatusScoringCompleted {
		t.Fatalf("status = %s, want terminal status even on scoring failure", got.Status)
	}
	if got.MRSScore == nil || *got.MRSScore != 0 {
		t.Errorf("score = %v, want defaulted 0", got.MRSScore)
	}
	if !strings.Contains(got.Message, "Error:") {
		t.Errorf("message = %q, want error interpretation", got.Message)
	}
	if f.Tracker().IsComplete() {
		t.Error("flow did not reset after terminal scoring failure")
	}
}

func TestExitIntentConfirmationBranches(t *testing.T) {
	exitOut := `{"action_type": "exit_intent", "symptoms_scored": [], "next_message": "It sounds like you want to stop. Should we end the assessment?"}`

	t.Run("confirmed", func(t *testing.T) {
		f, _ := newTestFlow(exitOut)

		got := f.ProcessInput(context.Background(), "can we talk about treatments instead")
		if got.Status != model.StatusExitConfirmationPending {
			t.Fatalf("status = %s, want exit_confirmation_pending", got.Status)
		}
		if !f.PendingExitConfirmation() {
			t.Error("pending exit flag not set")
		}

		got = f.ProcessInput(context.Background(), "yes")
		if got.Status != model.StatusExitConfirmed {
			t.Fatalf("status = %s, want exit_confirmed", got.Status)
		}
		if got.OriginalQuestion != "can we talk about treatments instead" {
			t.Errorf("original question = %q", got.OriginalQuestion)
		}
		if f.PendingExitConfirmation() || f.Tracker().IsComplete() {
			t.Error("flow not reset after confirmed exit")
		}
	})

	t.Run("declined", func(t *testing.T) {
		f, _ := newTestFlow(
			analyzerClear(`{"symptom": "hot_flashes", "mrs_score": 1}`, "Noted."),
			questionOut,
			exitOut,
		)

		// Establish a previous question first.
		f.ProcessInput(context.Background(), "mild hot flashes")
		f.ProcessInput(context.Background(), "actually never mind this")

		got := f.ProcessInput(context.Background(), "no")
		if got.Status != model.StatusContinueAssessment {
			t.Fatalf("status = %s, want continue_assessment", got.Status)
		}
		if !strings.HasPrefix(got.Message, "Great, let's continue.") {
			t.Errorf("message = %q", got.Message)
		}
		if !strings.Contains(got.Message, "heart discomfort") {
			t.Errorf("message %q does not repeat the previous question", got.Message)
		}
		if f.PendingExitConfirmation() {
			t.Error("pending exit flag survived a declined exit")
		}
	})

	t.Run("ambiguous continues with next question", func(t *testing.T) {
		f, _ := newTestFlow(exitOut, questionOut)

		f.ProcessInput(context.Background(), "hmm maybe stop")
		got := f.ProcessInput(context.Background(), "well, the weather is nice")

		if got.Status != model.StatusAskingNextSymptom {
			t.Fatalf("status = %s, want asking_next_symptom", got.Status)
		}
		if f.PendingExitConfirmation() {
			t.Error("pending exit flag survived an ambiguous reply")
		}
	})
}

func TestEmergencyExitEndsImmediately(t *testing.T) {
	f, _ := newTestFlow(`{"action_type": "emergency_exit", "symptoms_scored": [], "next_message": ""}`)

	got := f.ProcessInput(context.Background(), "STOP NOW")
	if got.Status != model.StatusExitConfirmed {
		t.Fatalf("status = %s, want exit_confirmed", got.Status)
	}
	if got.OriginalQuestion != "" {
		t.Errorf("emergency exit carried original question %q", got.OriginalQuestion)
	}
	if f.PendingExitConfirmation() {
		t.Error("emergency exit left the confirmation flag set")
	}
}

func TestDefaultToNegativeOnPartialAnswer(t *testing.T) {
	// First turn scores 9 symptoms; the generated question covers the two
	// remaining urogenital symptoms. The second reply scores only one of
	// them, so the other defaults to zero and the assessment completes.
	var first []string
	for _, symptom := range model.AllSymptoms() {
		if symptom == model.SymptomBladderProblems || symptom == model.SymptomVaginalDryness {
			continue
		}
		first = append(first, `{"symptom": "`+string(symptom)+`", "mrs_score": 2}`)
	}

	f, _ := newTestFlow(
		analyzerClear(strings.Join(first, ", "), "Almost done."),
		`{"next_question": "Any bladder problems or vaginal dryness?"}`,
		analyzerClear(`{"symptom": "vaginal_dryness", "mrs_score": 1}`, "Thanks."),
	)

	got := f.ProcessInput(context.Background(), "long list of symptoms")
	if got.Status != model.StatusAskingNextSymptom {
		t.Fatalf("first turn status = %s", got.Status)
	}

	got = f.ProcessInput(context.Background(), "just some dryness")
	if got.Status != model.StatusZeroConfirmationPending {
		t.Fatalf("second turn status = %s, want zero_confirmation_pending", got.Status)
	}
	if !strings.Contains(got.Message, "bladder problems") {
		t.Errorf("message %q does not name the defaulted symptom", got.Message)
	}
	if strings.Contains(got.Message, "vaginal dryness") {
		t.Errorf("message %q names the explicitly scored symptom", got.Message)
	}
}

func TestQuestionGenerationFailureIsError(t *testing.T) {
	f, _ := newTestFlow(
		analyzerClear(`{"symptom": "hot_flashes", "mrs_score": 3}`, "Got it."),
		`{"next_question": ""}`,
	)

	got := f.ProcessInput(context.Background(), "bad hot flashes")
	if got.Status != model.StatusError {
		t.Fatalf("status = %s, want error for empty generated question", got.Status)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	f, _ := newTestFlow(analyzerClear(`{"symptom": "anxiety", "mrs_score": 4}`, "Noted."), questionOut)
	f.ProcessInput(context.Background(), "very anxious")

	f.Reset()
	f.Reset()

	if got := len(f.Tracker().MissingSymptoms("")); got != 11 {
		t.Errorf("missing after reset = %d, want 11", got)
	}
	if f.PendingZeroConfirmation() || f.PendingExitConfirmation() {
		t.Error("reset left a pending flag set")
	}
}
